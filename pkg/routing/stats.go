package routing

import (
	"sync"
	"sync/atomic"
	"time"
)

// routerStats tracks routing outcomes with atomic counters so the hot path
// never takes a lock for plain increments.
type routerStats struct {
	totalRequests      atomic.Int64
	successfulRequests atomic.Int64
	failedRequests     atomic.Int64
	budgetRejections   atomic.Int64
	fallbacksUsed      atomic.Int64

	// selectionsByModel counts primary selections per model.
	selectionsByModel sync.Map // map[string]*atomic.Int64

	startedAt time.Time
}

func newRouterStats() *routerStats {
	return &routerStats{startedAt: time.Now()}
}

func (s *routerStats) recordSelection(model string) {
	val, _ := s.selectionsByModel.LoadOrStore(model, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}

// Stats is a snapshot of routing counters.
type Stats struct {
	// TotalRequests is the number of Route calls.
	TotalRequests int64

	// SuccessfulRequests is the number of calls that returned a response.
	SuccessfulRequests int64

	// FailedRequests is the number of calls that returned an error,
	// budget rejections included.
	FailedRequests int64

	// BudgetRejections is the number of calls stopped by the budget gate.
	BudgetRejections int64

	// FallbacksUsed is the number of calls where at least one provider
	// beyond the primary selection was attempted.
	FallbacksUsed int64

	// SelectionsByModel counts primary selections per model.
	SelectionsByModel map[string]int64

	// Uptime is the time since the router was created.
	Uptime time.Duration
}

func (s *routerStats) snapshot() Stats {
	byModel := make(map[string]int64)
	s.selectionsByModel.Range(func(key, value any) bool {
		byModel[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})
	return Stats{
		TotalRequests:      s.totalRequests.Load(),
		SuccessfulRequests: s.successfulRequests.Load(),
		FailedRequests:     s.failedRequests.Load(),
		BudgetRejections:   s.budgetRejections.Load(),
		FallbacksUsed:      s.fallbacksUsed.Load(),
		SelectionsByModel:  byModel,
		Uptime:             time.Since(s.startedAt),
	}
}
