package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"taskforge-hq/taskforge/pkg/routing"
)

// RoutingMetrics tracks routing outcomes.
//
// Metrics:
//   - taskforge_routing_requests_total: Requests by strategy, model and outcome
//   - taskforge_routing_fallbacks_total: Requests that used the fallback chain
//   - taskforge_routing_budget_rejections_total: Requests stopped by the budget gate
//   - taskforge_routing_duration_seconds: End-to-end routing latency
type RoutingMetrics struct {
	requestsTotal    *prometheus.CounterVec
	fallbacksTotal   prometheus.Counter
	budgetRejections prometheus.Counter
	duration         *prometheus.HistogramVec
}

// RoutingMetrics plugs into the router as its outcome observer.
var _ routing.Observer = (*RoutingMetrics)(nil)

func newRoutingMetrics(registry *prometheus.Registry) *RoutingMetrics {
	m := &RoutingMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "routing_requests_total",
				Help:      "Routed requests by strategy, model and outcome",
			},
			[]string{"strategy", "model", "outcome"},
		),
		fallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "routing_fallbacks_total",
				Help:      "Requests that advanced into the fallback chain",
			},
		),
		budgetRejections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "routing_budget_rejections_total",
				Help:      "Requests rejected by the budget gate",
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "routing_duration_seconds",
				Help:      "End-to-end routing latency in seconds",
				// Generation calls routinely take tens of seconds.
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"strategy", "model"},
		),
	}

	registry.MustRegister(m.requestsTotal, m.fallbacksTotal, m.budgetRejections, m.duration)
	return m
}

// ObserveRequest records one routed request.
func (m *RoutingMetrics) ObserveRequest(strategy, model, outcome string, seconds float64) {
	m.requestsTotal.WithLabelValues(strategy, model, outcome).Inc()
	m.duration.WithLabelValues(strategy, model).Observe(seconds)
}

// IncFallback records a request that advanced into the fallback chain.
func (m *RoutingMetrics) IncFallback() {
	m.fallbacksTotal.Inc()
}

// IncBudgetRejection records a request stopped by the budget gate.
func (m *RoutingMetrics) IncBudgetRejection() {
	m.budgetRejections.Inc()
}
