// Package metrics reports dispatch activity using Prometheus primitives.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the router's collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	dispatches  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	rateLimited prometheus.Counter
}

// NewRecorder creates the collectors and registers them on registry.
func NewRecorder(registry *prometheus.Registry) (*Recorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &Recorder{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_router_dispatches_total",
			Help: "Total number of dispatched commands by provider and outcome kind",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_router_provider_latency_seconds",
			Help:    "Backend call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 45, 90},
		}, []string{"provider"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ai_router_rate_limited_total",
			Help: "Total number of commands rejected by the origin rate limiter",
		}),
	}

	for _, collector := range []prometheus.Collector{r.dispatches, r.latency, r.rateLimited} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveDispatch counts one finished dispatch. Unresolved providers are recorded as "none".
func (r *Recorder) ObserveDispatch(provider, outcome string) {
	if r == nil {
		return
	}
	if provider == "" {
		provider = "none"
	}
	r.dispatches.WithLabelValues(provider, outcome).Inc()
}

// ObserveProviderLatency records how long a backend call took, successful or not.
func (r *Recorder) ObserveProviderLatency(provider string, d time.Duration) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveRateLimited counts one admission denial.
func (r *Recorder) ObserveRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}

// Handler exposes registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
