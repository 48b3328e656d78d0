package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/net-idea/huette9/internal/config"
	"github.com/net-idea/huette9/internal/metrics"
	"github.com/net-idea/huette9/internal/ratelimit"
	"golang.org/x/text/language"
)

const (
	RequestIDHeader = "X-Request-ID"
	localeCookie    = "_locale"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// RequestID generates unique request ID / Génère un ID unique pour la requête
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		r = r.WithContext(ctx)

		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}

// GetRequestID extracts request ID from context / Extrait l'ID de la requête du contexte
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}

// Logging logs HTTP requests / Enregistre les requêtes HTTP
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Info("request",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// MetricsMiddleware tracks HTTP request metrics / Suit les métriques des requêtes HTTP
func (mw *Middleware) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		mw.metrics.IncrementActiveConnections()
		defer mw.metrics.DecrementActiveConnections()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		mw.metrics.RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode)
		mw.metrics.RecordHTTPDuration(r.Method, r.URL.Path, duration)
	})
}

// Timeout adds request timeout / Ajoute un timeout aux requêtes
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(w, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					slog.Warn("request timeout", "path", r.URL.Path, "timeout", duration)
					http.Error(w, "request timeout", http.StatusGatewayTimeout)
				}
			}
		})
	}
}

// Middleware holds middleware configuration and dependencies / Contient la configuration middleware
type Middleware struct {
	conf          *config.Config
	globalLimiter *ratelimit.Limiter
	metrics       *metrics.Metrics
	localeMatcher language.Matcher
}

// responseWriter wraps ResponseWriter to capture status / Encapsule ResponseWriter pour capturer le statut
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures status code / Capture le code de statut
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// NewMiddleware creates middleware with rate limiter and locale matcher / Crée le middleware avec limiteur et résolveur de locale
func NewMiddleware(conf *config.Config, metrics *metrics.Metrics) *Middleware {
	mw := &Middleware{
		conf:          conf,
		metrics:       metrics,
		localeMatcher: newLocaleMatcher(conf.Site.SupportedLocales),
	}

	if conf.RateLimiter.Enabled {
		mw.globalLimiter = ratelimit.NewLimiter(
			context.Background(),
			conf.RateLimiter.RPS,
			conf.RateLimiter.Burst,
		)
	}

	return mw
}

// Stop releases middleware background resources.
func (mw *Middleware) Stop() {
	if mw.globalLimiter != nil {
		mw.globalLimiter.Stop()
	}
}

// newLocaleMatcher builds a matcher over the supported locales, in
// configuration order so the first entry wins ties.
func newLocaleMatcher(locales []string) language.Matcher {
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.Make(l))
	}
	return language.NewMatcher(tags)
}

// Locale resolves the request language and stores it in the context.
// The explicit cookie set by the locale switch wins; otherwise the
// Accept-Language header is matched against the supported locales; failing
// both, the configured default applies.
func (mw *Middleware) Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := mw.conf.Site.DefaultLocale

		if cookie, err := r.Cookie(localeCookie); err == nil && mw.supported(cookie.Value) {
			locale = cookie.Value
		} else if accept := r.Header.Get("Accept-Language"); accept != "" {
			if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
				_, index, conf := mw.localeMatcher.Match(tags...)
				if conf > language.No {
					locale = mw.conf.Site.SupportedLocales[index]
				}
			}
		}

		ctx := context.WithValue(r.Context(), LocaleContextKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// supported reports whether the locale is configured.
func (mw *Middleware) supported(locale string) bool {
	for _, l := range mw.conf.Site.SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// localeFrom reads the resolved locale from the context, falling back to the
// given default when the middleware did not run.
func localeFrom(ctx context.Context, fallback string) string {
	if locale, ok := ctx.Value(LocaleContextKey).(string); ok && locale != "" {
		return locale
	}
	return fallback
}

// CSRF rejects state-changing requests whose double-submit pair does not
// verify / Rejette les requêtes dont la paire double-submit ne se vérifie pas
func (mw *Middleware) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !verifyCSRF(r) {
			mw.metrics.RecordCSRFFailure()
			slog.Warn("CSRF verification failed", "path", r.URL.Path, "remote", r.RemoteAddr)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders adds security headers / Ajoute les en-têtes de sécurité
func (mw *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Content Security Policy - the site serves its own assets only.
		// Inline styles are allowed in development for quicker iteration.
		cspValue := "default-src 'self'; frame-ancestors 'none'; object-src 'none'"
		if mw.conf.IsProd() {
			cspValue += "; script-src 'self'; style-src 'self'"
		} else {
			cspValue += "; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'"
		}
		cspValue += "; img-src 'self' data:; font-src 'self'; connect-src 'self'"
		w.Header().Set("Content-Security-Policy", cspValue)

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Referrer Policy - Only send referrer to same origin
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Permissions Policy - Restrict browser features
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")

		// Strict Transport Security - Enforce HTTPS (only in production)
		if mw.conf.IsProd() {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}

		next.ServeHTTP(w, r)
	})
}
