package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/net-idea/huette9/internal/app"
	"github.com/net-idea/huette9/internal/domain"
)

//go:embed templates
var pageTemplateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler is a container for application dependencies that are required by HTTP handlers.
// By embedding the application's dependency injection container, it provides handlers
// with access to services, repositories, and configuration.
type Handler struct {
	container *app.Container
	pages     map[string]*template.Template // one parsed set per locale
}

// NewHandler creates and returns a new Handler instance.
// It parses the embedded page templates once, per locale, so render calls
// never touch the filesystem.
func NewHandler(container *app.Container) (*Handler, error) {
	pages := make(map[string]*template.Template)

	for _, locale := range container.Config.Site.SupportedLocales {
		tmpl, err := template.ParseFS(pageTemplateFS, "templates/"+locale+"/*.tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s page templates: %w", locale, err)
		}
		pages[locale] = tmpl
	}

	return &Handler{container: container, pages: pages}, nil
}

// pageData is the payload every page template receives.
type pageData struct {
	Title    string
	SiteName string
	Locale   string
	Path     string
	Year     int
	CSRFName string            // initial value of the CSRF form field
	Flash    string            // post-redirect status: submitted, mail_error, db_error, rate_limited
	Form     map[string]string // sticky form values on re-render
	Errors   map[string]string // per-field validation messages
	Outcome  string            // confirmation page outcome
}

// newPageData seeds the common fields; handlers fill in the rest.
func (h *Handler) newPageData(r *http.Request, title string) *pageData {
	return &pageData{
		Title:    title,
		SiteName: h.container.Config.Site.Name,
		Locale:   localeFrom(r.Context(), h.container.Config.Site.DefaultLocale),
		Path:     r.URL.Path,
		Year:     time.Now().Year(),
		Form:     map[string]string{},
		Errors:   map[string]string{},
	}
}

// render executes a page template into a buffer first so a template error can
// still become a clean 500 instead of a half-written page.
func (h *Handler) render(w http.ResponseWriter, status int, page string, data *pageData) {
	tmpl, ok := h.pages[data.Locale]
	if !ok {
		tmpl = h.pages[h.container.Config.Site.DefaultLocale]
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page+".html.tmpl", data); err != nil {
		slog.Error("Failed to render page", "page", page, "locale", data.Locale, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// limitRequestBody wraps a request body with MaxBytesReader to limit its size.
// This prevents abuse via oversized request bodies; ParseForm surfaces the
// limit as an error the handler turns into 400.
func limitRequestBody(w http.ResponseWriter, r *http.Request, maxBytes int64) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
}

// clientKey resolves the request to the hashed identifier used for rate
// limiting and submission metadata.
func (h *Handler) clientKey(r *http.Request) string {
	return hashIP(getIPWithTrustedProxies(r, h.container.Config.Security.TrustedProxies))
}

// submissionMeta captures where a form submission came from, with the client
// address already hashed.
func (h *Handler) submissionMeta(r *http.Request) *domain.SubmissionMeta {
	return &domain.SubmissionMeta{
		IPHash:    h.clientKey(r),
		UserAgent: r.UserAgent(),
		Host:      r.Host,
		Time:      time.Now().UTC().Format(time.RFC3339),
	}
}
