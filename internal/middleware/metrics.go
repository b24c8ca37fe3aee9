package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	reportsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safereport_reports_submitted_total",
			Help: "Reports accepted, by category and anonymity",
		},
		[]string{"category", "anonymous"},
	)

	attachmentUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safereport_attachment_uploads_total",
			Help: "Attachment upload attempts by result",
		},
		[]string{"result"},
	)

	statusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safereport_report_status_updates_total",
			Help: "Admin status changes by target status",
		},
		[]string{"status"},
	)
)

// MetricsMiddleware records request count, latency and in-flight gauge.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Route template keeps label cardinality bounded.
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func RecordReportSubmitted(category string, anonymous bool) {
	reportsSubmittedTotal.WithLabelValues(category, strconv.FormatBool(anonymous)).Inc()
}

func RecordAttachmentUpload(success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	attachmentUploadsTotal.WithLabelValues(result).Inc()
}

func RecordStatusUpdate(status string) {
	statusUpdatesTotal.WithLabelValues(status).Inc()
}
