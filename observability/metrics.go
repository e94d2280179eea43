package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StakingMetrics records JSON-RPC staking operation activity.
type StakingMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var (
	stakingMetricsOnce sync.Once
	stakingRegistry    *StakingMetrics
)

// Metrics returns the lazily-initialised staking metrics registry.
func Metrics() *StakingMetrics {
	stakingMetricsOnce.Do(func() {
		stakingRegistry = &StakingMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "voip",
				Subsystem: "staking",
				Name:      "requests_total",
				Help:      "Total staking operations segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "voip",
				Subsystem: "staking",
				Name:      "errors_total",
				Help:      "Total staking operation failures segmented by method and error kind.",
			}, []string{"method", "kind"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "voip",
				Subsystem: "staking",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for staking operation handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			stakingRegistry.requests,
			stakingRegistry.errors,
			stakingRegistry.latency,
		)
	})
	return stakingRegistry
}

// ObserveRequest records one handled operation.
func (m *StakingMetrics) ObserveRequest(method, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// ObserveError records one failed operation with its taxonomy kind.
func (m *StakingMetrics) ObserveError(method, kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, kind).Inc()
}
