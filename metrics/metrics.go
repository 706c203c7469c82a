// Package metrics provides Prometheus metrics for the dosage API.
// It tracks inbound HTTP traffic, the per-IP rate limiter, and outbound
// requests against the openFDA source:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - openfda_request_total: Counter with operation and outcome labels
//   - openfda_request_duration_seconds: Histogram with operation label
//   - openfda_source_up: Gauge set by the source monitor
//
// All metrics register with the Prometheus default registry during package
// initialization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen recently)",
		},
	)

	OpenFDARequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfda_request_total",
			Help: "Total outbound requests to the openFDA source",
		},
		[]string{"operation", "outcome"},
	)

	OpenFDARequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "openfda_request_duration_seconds",
			Help:    "openFDA request latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	OpenFDASourceUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "openfda_source_up",
			Help: "Whether the last openFDA probe succeeded (1) or failed (0)",
		},
	)
)

// ObserveSourceRequest records one outbound openFDA request.
func ObserveSourceRequest(operation, outcome string, duration time.Duration) {
	OpenFDARequestTotals.WithLabelValues(operation, outcome).Inc()
	OpenFDARequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetSourceUp publishes the monitor's view of upstream reachability.
func SetSourceUp(up bool) {
	if up {
		OpenFDASourceUp.Set(1)
	} else {
		OpenFDASourceUp.Set(0)
	}
}

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(OpenFDARequestTotals)
	prometheus.MustRegister(OpenFDARequestDuration)
	prometheus.MustRegister(OpenFDASourceUp)
}
