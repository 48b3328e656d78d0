package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric collectors / Contient tous les collecteurs de métriques Prometheus
type Metrics struct {
	// Form metrics
	BookingSubmissions *prometheus.CounterVec // Booking submissions by outcome (success/validation/mail-error/db-error/rate-limited/honeypot)
	BookingConfirms    *prometheus.CounterVec // Confirmation attempts by status (confirmed/already_confirmed/invalid)
	ContactSubmissions *prometheus.CounterVec // Contact submissions by outcome
	MailDeliveries     *prometheus.CounterVec // Outgoing mails by kind and status (sent/failed)

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec   // Total HTTP requests by method, path, status
	HTTPRequestDuration *prometheus.HistogramVec // HTTP request latency in seconds
	ActiveConnections   prometheus.Gauge         // Current number of active HTTP connections

	// Security metrics
	RateLimitHits prometheus.Counter // Rate limit violations on form submissions
	CSRFFailures  prometheus.Counter // CSRF validation failures

	// System metrics
	DatabaseConnections prometheus.Gauge     // Current database connection pool size
	BackgroundTasks     *prometheus.GaugeVec // Status of background tasks (running/stopped)
}

// NewMetrics initializes Metrics instance / Initialise une instance Metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		// Form metrics
		BookingSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forms_booking_submissions_total",
				Help: "Total number of booking form submissions by outcome (success, validation, mail_error, db_error, rate_limited, honeypot)",
			},
			[]string{"outcome"},
		),

		BookingConfirms: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forms_booking_confirmations_total",
				Help: "Total number of booking confirmation attempts by status (confirmed, already_confirmed, invalid)",
			},
			[]string{"status"},
		),

		ContactSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forms_contact_submissions_total",
				Help: "Total number of contact form submissions by outcome",
			},
			[]string{"outcome"},
		),

		MailDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mail_deliveries_total",
				Help: "Total number of outgoing mails by kind and delivery status",
			},
			[]string{"kind", "status"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				// Buckets optimized for page and form response times: 10ms to 10s
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Current number of active HTTP connections",
			},
		),

		// Security metrics
		RateLimitHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "security_rate_limit_hits_total",
				Help: "Total number of rate limit violations on form submissions",
			},
		),

		CSRFFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "security_csrf_failures_total",
				Help: "Total number of CSRF validation failures",
			},
		),

		// System metrics
		DatabaseConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "database_connections_active",
				Help: "Current number of active database connections",
			},
		),

		BackgroundTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "background_tasks_status",
				Help: "Status of background tasks (1=running, 0=stopped)",
			},
			[]string{"task_name"},
		),
	}

	return m
}

// RecordBookingSubmission records a booking submission with the given outcome.
// Outcome can be: "success", "validation", "mail_error", "db_error", "rate_limited", or "honeypot"
func (m *Metrics) RecordBookingSubmission(outcome string) {
	m.BookingSubmissions.WithLabelValues(outcome).Inc()
}

// RecordBookingConfirmation records a confirmation attempt.
// Status can be: "confirmed", "already_confirmed", or "invalid"
func (m *Metrics) RecordBookingConfirmation(status string) {
	m.BookingConfirms.WithLabelValues(status).Inc()
}

// RecordContactSubmission records a contact form submission with the given outcome.
func (m *Metrics) RecordContactSubmission(outcome string) {
	m.ContactSubmissions.WithLabelValues(outcome).Inc()
}

// RecordMailDelivery records an outgoing mail attempt.
// Status can be: "sent" or "failed"
func (m *Metrics) RecordMailDelivery(kind, status string) {
	m.MailDeliveries.WithLabelValues(kind, status).Inc()
}

// RecordHTTPRequest records an HTTP request with method, path, and status code.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(statusCode)).Inc()
}

// RecordHTTPDuration records the duration of an HTTP request.
func (m *Metrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementActiveConnections increments the active connections gauge.
func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

// DecrementActiveConnections decrements the active connections gauge.
func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

// RecordRateLimitHit increments the submission rate limit counter.
func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHits.Inc()
}

// RecordCSRFFailure increments the CSRF failure counter.
func (m *Metrics) RecordCSRFFailure() {
	m.CSRFFailures.Inc()
}

// UpdateDatabaseConnections updates the database connections gauge.
func (m *Metrics) UpdateDatabaseConnections(count int) {
	m.DatabaseConnections.Set(float64(count))
}

// SetBackgroundTaskStatus sets the status of a background task.
// Status: 1 for running, 0 for stopped.
func (m *Metrics) SetBackgroundTaskStatus(taskName string, running bool) {
	status := 0.0
	if running {
		status = 1.0
	}
	m.BackgroundTasks.WithLabelValues(taskName).Set(status)
}

// statusCodeToString converts HTTP status code to string / Convertit le code de statut HTTP en chaîne
func statusCodeToString(code int) string {
	// Common status codes as exact strings
	switch code {
	case 200:
		return "200"
	case 302:
		return "302"
	case 303:
		return "303"
	case 400:
		return "400"
	case 404:
		return "404"
	case 429:
		return "429"
	case 500:
		return "500"
	case 503:
		return "503"
	default:
		// Group others by range
		if code >= 200 && code < 300 {
			return "2xx"
		} else if code >= 300 && code < 400 {
			return "3xx"
		} else if code >= 400 && code < 500 {
			return "4xx"
		} else if code >= 500 && code < 600 {
			return "5xx"
		}
		return "unknown"
	}
}
