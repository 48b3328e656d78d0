package web

import (
	"net/http"
	"net/url"
)

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home", h.newPageData(r, pick(r, "Willkommen", "Welcome")))
}

// Imprint renders the legal notice, reachable under both language paths.
func (h *Handler) Imprint(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "imprint", h.newPageData(r, pick(r, "Impressum", "Imprint")))
}

// Privacy renders the privacy policy, reachable under both language paths.
func (h *Handler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "privacy", h.newPageData(r, pick(r, "Datenschutz", "Privacy")))
}

// SetLocale pins the visitor's language in a cookie and sends them back to
// where they came from. Unsupported locales are ignored but still redirect.
func (h *Handler) SetLocale(w http.ResponseWriter, r *http.Request) {
	locale := r.PathValue("locale")

	supported := false
	for _, l := range h.container.Config.Site.SupportedLocales {
		if l == locale {
			supported = true
			break
		}
	}

	if supported {
		http.SetCookie(w, &http.Cookie{
			Name:     localeCookie,
			Value:    locale,
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.container.Config.Security.SecureCookies,
			HttpOnly: true,
		})
	}

	target := "/"
	if ref := r.Referer(); ref != "" {
		// Only follow same-site referers
		if u, err := url.Parse(ref); err == nil && u.Host == r.Host {
			target = u.Path
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
