package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"taskforge-hq/taskforge/pkg/cost"
)

// CostMetrics tracks spending.
//
// Metrics:
//   - taskforge_cost_cents_total: Total cost in cents by model
//   - taskforge_cost_tokens_total: Tokens by model and direction
//   - taskforge_cost_budget_remaining_dollars: Remaining budget by window
type CostMetrics struct {
	costCentsTotal  *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	budgetRemaining *prometheus.GaugeVec

	mu        sync.Mutex
	published int
}

func newCostMetrics(registry *prometheus.Registry) *CostMetrics {
	m := &CostMetrics{
		costCentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cost_cents_total",
				Help:      "Total cost in cents by model",
			},
			[]string{"model"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cost_tokens_total",
				Help:      "Token counts by model and direction",
			},
			[]string{"model", "direction"},
		),
		budgetRemaining: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "cost_budget_remaining_dollars",
				Help:      "Remaining budget in dollars by window (daily, monthly)",
			},
			[]string{"window"},
		),
	}

	registry.MustRegister(m.costCentsTotal, m.tokensTotal, m.budgetRemaining)
	return m
}

// ObserveUsage records one metered call.
func (m *CostMetrics) ObserveUsage(record cost.UsageRecord) {
	m.costCentsTotal.WithLabelValues(record.Model).Add(float64(record.CostCents))
	m.tokensTotal.WithLabelValues(record.Model, "input").Add(float64(record.InputTokens))
	m.tokensTotal.WithLabelValues(record.Model, "output").Add(float64(record.OutputTokens))
}

// Refresh publishes every usage record the tracker has accumulated since
// the previous call and updates the remaining-budget gauges. The tracker's
// history is append-only, so an offset into it identifies the new records.
func (m *CostMetrics) Refresh(tracker *cost.Tracker) {
	history := tracker.UsageHistory()

	m.mu.Lock()
	pending := history[m.published:]
	m.published = len(history)
	m.mu.Unlock()

	for _, record := range pending {
		m.ObserveUsage(record)
	}
	m.UpdateBudgets(tracker)
}

// UpdateBudgets refreshes the remaining-budget gauges from a tracker.
func (m *CostMetrics) UpdateBudgets(tracker *cost.Tracker) {
	m.budgetRemaining.WithLabelValues("daily").Set(tracker.DailyRemaining())
	m.budgetRemaining.WithLabelValues("monthly").Set(tracker.MonthlyRemaining())
}
