package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Envelope metrics
	EnvelopesProcessed *prometheus.CounterVec
	EnvelopeDuration   *prometheus.HistogramVec
	EnvelopesDead      *prometheus.CounterVec

	// Payment posting metrics
	PaymentsPosted  *prometheus.CounterVec
	PaymentAttempts *prometheus.CounterVec

	// Case store metrics
	CcdRequests        *prometheus.CounterVec
	CcdRequestDuration *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := prometheus.WrapRegistererWith(nil, reg)

	m := &Metrics{
		EnvelopesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "envelopes_processed_total",
				Help:      "Total number of envelopes processed by classification and outcome",
			},
			[]string{"classification", "action"},
		),
		EnvelopeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "envelope_processing_duration_seconds",
				Help:      "Envelope processing duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"classification"},
		),
		EnvelopesDead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "envelopes_dead_lettered_total",
				Help:      "Total number of envelopes sent to the dead-letter stream",
			},
			[]string{"reason"},
		),
		PaymentsPosted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_posted_total",
				Help:      "Total number of payment rows resolved by type and status",
			},
			[]string{"type", "status"},
		),
		PaymentAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_post_attempts_total",
				Help:      "Total number of payment posting attempts",
			},
			[]string{"type"},
		),
		CcdRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ccd_requests_total",
				Help:      "Total number of case store requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		CcdRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ccd_request_duration_seconds",
				Help:      "Case store request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	factory.MustRegister(
		m.EnvelopesProcessed,
		m.EnvelopeDuration,
		m.EnvelopesDead,
		m.PaymentsPosted,
		m.PaymentAttempts,
		m.CcdRequests,
		m.CcdRequestDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
