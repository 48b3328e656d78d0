package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/net-idea/huette9/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	assert.NotNil(t, m)
	// Check a few metrics to make sure they are initialized
	assert.NotNil(t, m.BookingSubmissions)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.DatabaseConnections)
}

func TestRecordBookingSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordBookingSubmission("success")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingSubmissions.WithLabelValues("success")))
	m.RecordBookingSubmission("mail_error")
	m.RecordBookingSubmission("mail_error")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingSubmissions.WithLabelValues("mail_error")))
}

func TestRecordBookingConfirmation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordBookingConfirmation("confirmed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConfirms.WithLabelValues("confirmed")))
	m.RecordBookingConfirmation("invalid")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConfirms.WithLabelValues("invalid")))
}

func TestRecordContactSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordContactSubmission("success")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactSubmissions.WithLabelValues("success")))
}

func TestRecordMailDelivery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordMailDelivery("booking_confirm_request", "sent")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailDeliveries.WithLabelValues("booking_confirm_request", "sent")))
	m.RecordMailDelivery("booking_confirm_request", "failed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailDeliveries.WithLabelValues("booking_confirm_request", "failed")))
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordHTTPRequest("GET", "/test", 200)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/test", "200")))
}

func TestRecordHTTPDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordHTTPDuration("GET", "/test", 1*time.Second)

	expected := `
# HELP http_request_duration_seconds HTTP request latency in seconds
# TYPE http_request_duration_seconds histogram
http_request_duration_seconds_bucket{method="GET",path="/test",le="0.01"} 0
http_request_duration_seconds_bucket{method="GET",path="/test",le="0.05"} 0
http_request_duration_seconds_bucket{method="GET",path="/test",le="0.1"} 0
http_request_duration_seconds_bucket{method="GET",path="/test",le="0.25"} 0
http_request_duration_seconds_bucket{method="GET",path="/test",le="0.5"} 0
http_request_duration_seconds_bucket{method="GET",path="/test",le="1"} 1
http_request_duration_seconds_bucket{method="GET",path="/test",le="2.5"} 1
http_request_duration_seconds_bucket{method="GET",path="/test",le="5"} 1
http_request_duration_seconds_bucket{method="GET",path="/test",le="10"} 1
http_request_duration_seconds_bucket{method="GET",path="/test",le="+Inf"} 1
http_request_duration_seconds_sum{method="GET",path="/test"} 1
http_request_duration_seconds_count{method="GET",path="/test"} 1
`
	err := testutil.CollectAndCompare(m.HTTPRequestDuration, strings.NewReader(expected), "http_request_duration_seconds")
	assert.NoError(t, err)
}

func TestIncrementDecrementActiveConnections(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.IncrementActiveConnections()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveConnections))
	m.DecrementActiveConnections()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveConnections))
}

func TestRecordRateLimitHit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordRateLimitHit()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits))
}

func TestRecordCSRFFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordCSRFFailure()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CSRFFailures))
}

func TestUpdateDatabaseConnections(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.UpdateDatabaseConnections(10)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.DatabaseConnections))
}

func TestSetBackgroundTaskStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.SetBackgroundTaskStatus("test_task", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("test_task")))
	m.SetBackgroundTaskStatus("test_task", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("test_task")))
}
