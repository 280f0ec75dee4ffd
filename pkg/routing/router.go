package routing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"taskforge-hq/taskforge/pkg/cost"
	"taskforge-hq/taskforge/pkg/providers"
)

// Default budgets for routers created without an explicit cost tracker,
// in dollars.
const (
	DefaultDailyBudget   = 100.0
	DefaultMonthlyBudget = 1000.0
)

// Router routes generation requests to providers.
type Router interface {
	// Route selects a model for the request, executes it with fallback,
	// and records its cost. The hint may be nil.
	Route(ctx context.Context, req *providers.GenerationRequest, hint *TaskHint) (*providers.GenerationResponse, error)

	// AvailableModels lists the registered model identifiers in
	// registration order.
	AvailableModels() []string
}

// Observer receives routing outcomes as they happen. Implementations must
// be safe for concurrent use.
type Observer interface {
	// ObserveRequest records one completed request with its strategy, the
	// model that served it, the outcome ("success" or "error"), and the
	// end-to-end duration in seconds.
	ObserveRequest(strategy, model, outcome string, seconds float64)

	// IncFallback records a request that advanced into the fallback chain.
	IncFallback()

	// IncBudgetRejection records a request stopped by the budget gate.
	IncBudgetRejection()
}

// providerEntry pairs a provider with the model it serves.
type providerEntry struct {
	provider providers.Provider
	model    string
}

// MultiModelRouter routes requests across registered providers using a
// pluggable strategy, a fallback chain, and a budget gate.
//
// The budget is checked before any model selection; a request rejected by
// the gate never reaches a provider. On failure, the fallback chain is
// advanced only for transient errors; permanent errors propagate unchanged.
// When the same model is registered more than once, the latest registration
// wins.
type MultiModelRouter struct {
	mu           sync.RWMutex
	entries      []providerEntry
	capabilities map[string]ModelCapabilities
	strategy     Strategy
	fallback     []string
	observer     Observer

	tracker *cost.Tracker

	roundRobinCounter   atomic.Uint64
	experimentalCounter atomic.Uint64

	stats *routerStats
}

var _ Router = (*MultiModelRouter)(nil)

// New creates a router with the given strategy and a default cost tracker
// ($100 daily, $1000 monthly).
func New(strategy Strategy) *MultiModelRouter {
	return NewWithTracker(strategy, cost.NewTracker(DefaultDailyBudget, DefaultMonthlyBudget))
}

// NewWithTracker creates a router sharing an existing cost tracker.
func NewWithTracker(strategy Strategy, tracker *cost.Tracker) *MultiModelRouter {
	return &MultiModelRouter{
		capabilities: make(map[string]ModelCapabilities),
		strategy:     strategy,
		tracker:      tracker,
		stats:        newRouterStats(),
	}
}

// AddProvider registers a provider serving the given model. Registering a
// model again overrides the earlier entry for lookups.
func (r *MultiModelRouter) AddProvider(p providers.Provider, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, providerEntry{provider: p, model: model})
}

// AddModelCapabilities registers capability and pricing data for a model.
func (r *MultiModelRouter) AddModelCapabilities(caps ModelCapabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[caps.Name] = caps
}

// SetFallbackChain sets the ordered list of models tried after the primary
// selection fails transiently.
func (r *MultiModelRouter) SetFallbackChain(models []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = append([]string(nil), models...)
}

// SetObserver registers an observer notified of routing outcomes. A nil
// observer disables notification.
func (r *MultiModelRouter) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

func (r *MultiModelRouter) currentObserver() Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.observer
}

// CostTracker returns the router's cost tracker.
func (r *MultiModelRouter) CostTracker() *cost.Tracker {
	return r.tracker
}

// Strategy returns the current routing strategy.
func (r *MultiModelRouter) Strategy() Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strategy
}

// SetStrategy replaces the routing strategy.
func (r *MultiModelRouter) SetStrategy(strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategy = strategy
}

// Stats returns a snapshot of routing counters.
func (r *MultiModelRouter) Stats() Stats {
	return r.stats.snapshot()
}

// AvailableModels lists registered models in registration order.
func (r *MultiModelRouter) AvailableModels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	models := make([]string, len(r.entries))
	for i, e := range r.entries {
		models[i] = e.model
	}
	return models
}

// Route implements the Router interface.
func (r *MultiModelRouter) Route(ctx context.Context, req *providers.GenerationRequest, hint *TaskHint) (*providers.GenerationResponse, error) {
	return r.RouteTask(ctx, req, hint, "")
}

// RouteTask routes like Route and attributes the recorded cost to the
// given task. An empty taskID records unattributed usage.
func (r *MultiModelRouter) RouteTask(ctx context.Context, req *providers.GenerationRequest, hint *TaskHint, taskID string) (*providers.GenerationResponse, error) {
	start := time.Now()
	obs := r.currentObserver()
	r.stats.totalRequests.Add(1)

	if r.tracker.IsOverBudget() {
		r.stats.budgetRejections.Add(1)
		r.stats.failedRequests.Add(1)
		if obs != nil {
			obs.IncBudgetRejection()
		}
		return nil, &BudgetExceededError{
			Daily:   r.tracker.IsOverDailyBudget(),
			Monthly: r.tracker.IsOverMonthlyBudget(),
		}
	}

	r.mu.RLock()
	model, err := r.selectModelLocked(req, hint)
	strategyName := r.strategy.Name()
	r.mu.RUnlock()
	if err != nil {
		r.stats.failedRequests.Add(1)
		return nil, err
	}

	r.stats.recordSelection(model)
	slog.Debug("selected model for request",
		"model", model,
		"strategy", strategyName,
	)

	resp, err := r.executeWithFallback(ctx, req, model, taskID)
	seconds := time.Since(start).Seconds()
	if err != nil {
		r.stats.failedRequests.Add(1)
		if obs != nil {
			obs.ObserveRequest(strategyName, model, "error", seconds)
		}
		return nil, err
	}
	r.stats.successfulRequests.Add(1)
	if obs != nil {
		served := model
		if resp.Model != "" {
			served = resp.Model
		}
		obs.ObserveRequest(strategyName, served, "success", seconds)
	}
	return resp, nil
}

// selectModelLocked picks a model per the current strategy.
// Caller must hold at least the read lock.
func (r *MultiModelRouter) selectModelLocked(req *providers.GenerationRequest, hint *TaskHint) (string, error) {
	if len(r.entries) == 0 {
		return "", ErrNoProviders
	}

	switch s := r.strategy.(type) {
	case RoundRobin:
		return r.selectRoundRobin(), nil
	case CostOptimized:
		return r.selectCostOptimized(req, hint), nil
	case CapabilityBased:
		return r.selectCapabilityBased(req, hint), nil
	case Experimental:
		return r.selectExperimental(s), nil
	default:
		return "", &NoMatchingModelError{Reason: "unknown routing strategy"}
	}
}

func (r *MultiModelRouter) selectRoundRobin() string {
	index := r.roundRobinCounter.Add(1) - 1
	return r.entries[index%uint64(len(r.entries))].model
}

func (r *MultiModelRouter) selectCostOptimized(req *providers.GenerationRequest, hint *TaskHint) string {
	inputTokens := EstimateInputTokens(req.Messages)
	outputTokens := outputEstimate(hint)
	requiredContext := inputTokens + outputTokens

	type candidate struct {
		model string
		cost  float64
	}
	var eligible []candidate
	for name, caps := range r.capabilities {
		if caps.MaxContext < requiredContext {
			continue
		}
		if hint != nil {
			if hint.RequiresCodeGeneration && caps.CodingScore < minCodingScore {
				continue
			}
			if hint.RequiresLongContext && caps.MaxContext < longContextThreshold {
				continue
			}
		}
		if !r.hasProviderLocked(name) {
			continue
		}
		eligible = append(eligible, candidate{
			model: name,
			cost:  caps.EstimateCost(inputTokens, outputTokens),
		})
	}

	if len(eligible) == 0 {
		// No capability record satisfies the request; fall back to the
		// first registered provider rather than failing.
		return r.entries[0].model
	}

	// Ties break on model name so selection is deterministic.
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].cost != eligible[j].cost {
			return eligible[i].cost < eligible[j].cost
		}
		return eligible[i].model < eligible[j].model
	})
	return eligible[0].model
}

func (r *MultiModelRouter) selectCapabilityBased(req *providers.GenerationRequest, hint *TaskHint) string {
	inputTokens := EstimateInputTokens(req.Messages)
	requiredContext := inputTokens + outputEstimate(hint)

	type candidate struct {
		model string
		score float64
	}
	var scored []candidate
	for name, caps := range r.capabilities {
		if caps.MaxContext < requiredContext || !r.hasProviderLocked(name) {
			continue
		}

		var score float64
		if hint != nil {
			if hint.RequiresCodeGeneration {
				score += caps.CodingScore * 3.0
			}
			if hint.isHardTask() {
				score += caps.ReasoningScore * 2.0
			}
			if hint.isEasyTask() {
				score += caps.SpeedScore * 1.5
			}
		} else {
			score = caps.CodingScore + caps.ReasoningScore + caps.SpeedScore
		}
		scored = append(scored, candidate{model: name, score: score})
	}

	if len(scored) == 0 {
		return r.entries[0].model
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].model < scored[j].model
	})
	return scored[0].model
}

func (r *MultiModelRouter) selectExperimental(s Experimental) string {
	counter := r.experimentalCounter.Add(1) - 1
	ratioPercent := uint64(math.Round(s.SplitRatio * 100))
	if counter%100 < ratioPercent && r.hasProviderLocked(s.Treatment) {
		return s.Treatment
	}
	return s.Control
}

// hasProviderLocked reports whether any entry serves the model.
// Caller must hold at least the read lock.
func (r *MultiModelRouter) hasProviderLocked(model string) bool {
	for _, e := range r.entries {
		if e.model == model {
			return true
		}
	}
	return false
}

// providerForLocked returns the provider serving the model. The scan runs
// backwards so the latest registration wins on duplicates.
// Caller must hold at least the read lock.
func (r *MultiModelRouter) providerForLocked(model string) (providers.Provider, bool) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].model == model {
			return r.entries[i].provider, true
		}
	}
	return nil, false
}

// executeWithFallback runs the request against the primary model, advancing
// through the fallback chain only on transient failures.
func (r *MultiModelRouter) executeWithFallback(ctx context.Context, req *providers.GenerationRequest, primary, taskID string) (*providers.GenerationResponse, error) {
	r.mu.RLock()
	chain := make([]string, 0, 1+len(r.fallback))
	chain = append(chain, primary)
	for _, model := range r.fallback {
		if model != primary {
			chain = append(chain, model)
		}
	}
	r.mu.RUnlock()

	var attempted []string
	var lastErr error

	for _, model := range chain {
		r.mu.RLock()
		provider, ok := r.providerForLocked(model)
		caps, hasCaps := r.capabilities[model]
		r.mu.RUnlock()
		if !ok {
			continue
		}

		if len(attempted) == 1 {
			r.stats.fallbacksUsed.Add(1)
			if obs := r.currentObserver(); obs != nil {
				obs.IncFallback()
			}
		}
		attempted = append(attempted, model)

		resp, err := provider.Generate(ctx, req.WithModel(model))
		if err == nil {
			// Cost is recorded only when the model has a capability
			// record; without one the pricing is unknown.
			if hasCaps {
				r.tracker.RecordUsageWithTask(model,
					resp.Usage.PromptTokens,
					resp.Usage.CompletionTokens,
					caps.CostPer1MInput,
					caps.CostPer1MOutput,
					taskID,
				)
			}
			return resp, nil
		}

		if !providers.IsTransient(err) {
			return nil, err
		}

		slog.Warn("provider failed, trying next in fallback chain",
			"model", model,
			"error", err,
		)
		lastErr = err
	}

	return nil, &AllProvidersFailedError{Attempted: attempted, LastError: lastErr}
}
