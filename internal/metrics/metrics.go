package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Conversion outcomes used as label values.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Collector holds the gateway's metric instruments.
type Collector struct {
	registry *prometheus.Registry

	conversions  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	payloadBytes prometheus.Histogram
	rateLimited  prometheus.Counter
}

// NewCollector builds an instrumented collector on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onnxgate",
			Name:      "conversions_total",
			Help:      "Total conversion requests by source format and outcome",
		}, []string{"format", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "onnxgate",
			Name:      "conversion_duration_seconds",
			Help:      "Conversion wall-clock duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 60, 120, 300},
		}, []string{"format"}),
		payloadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "onnxgate",
			Name:      "payload_bytes",
			Help:      "Uploaded model artifact size in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "onnxgate",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// ObserveConversion records one finished conversion attempt.
func (c *Collector) ObserveConversion(format, outcome string, payloadSize int, elapsed time.Duration) {
	c.conversions.WithLabelValues(format, outcome).Inc()
	c.duration.WithLabelValues(format).Observe(elapsed.Seconds())
	c.payloadBytes.Observe(float64(payloadSize))
}

// ObserveRateLimited counts a request refused by the rate limiter.
func (c *Collector) ObserveRateLimited() {
	c.rateLimited.Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
