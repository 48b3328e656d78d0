package web

import (
	"net/http"
	"time"

	"github.com/net-idea/huette9/internal/app"
	"github.com/net-idea/huette9/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux creates and configures the HTTP router / Crée et configure le routeur HTTP
// The returned Middleware owns background resources; call Stop on shutdown.
func NewMux(h *Handler, conf *config.Config, container *app.Container) (http.Handler, *Middleware) {
	mux := http.NewServeMux()
	mw := NewMiddleware(conf, container.Metrics)

	// Health check endpoints (no rate limiting concerns for load balancers)
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /readiness", h.ReadinessCheck)

	// Prometheus metrics endpoint. The site has no authenticated surface, so
	// keep this reachable only from inside the deployment (firewall or
	// reverse proxy rule); it is not linked from any page.
	mux.Handle("GET /metrics", promhttp.Handler())

	// Static assets shipped inside the binary
	mux.Handle("GET /static/", http.FileServer(http.FS(staticFS)))

	// Public pages
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /impressum", h.Imprint)
	mux.HandleFunc("GET /imprint", h.Imprint)
	mux.HandleFunc("GET /datenschutz", h.Privacy)
	mux.HandleFunc("GET /privacy", h.Privacy)
	mux.HandleFunc("GET /locale/{locale}", h.SetLocale)

	// Booking flow: form, submission, mail confirmation link
	mux.HandleFunc("GET /booking", h.BookingPage)
	mux.Handle("POST /booking", chain(h.BookingSubmit, mw.CSRF))
	mux.HandleFunc("GET /booking/confirm/{token}", h.BookingConfirm)

	// Contact flow
	mux.HandleFunc("GET /contact", h.ContactPage)
	mux.Handle("POST /contact", chain(h.ContactSubmit, mw.CSRF))

	// Global middlewares - applied in reverse order / Middlewares globaux appliqués en ordre inverse
	var handler http.Handler = mux
	handler = mw.MetricsMiddleware(handler) // Metrics first to capture everything
	handler = mw.RateLimit(handler)
	handler = mw.Locale(handler)
	handler = mw.SecurityHeaders(handler)
	handler = Timeout(30 * time.Second)(handler) // 30s timeout for all requests / Timeout de 30s pour toutes les requêtes
	handler = Logging(handler)                   // Logging includes request ID
	handler = RequestID(handler)                 // RequestID first - generates ID for all middleware

	return handler, mw
}

// chain applies middleware to HTTP handler / Applique les middlewares au gestionnaire HTTP
func chain(f http.HandlerFunc, middlewares ...func(http.Handler) http.Handler) http.Handler {
	var handler http.Handler = f

	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}
