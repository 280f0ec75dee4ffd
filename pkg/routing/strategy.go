package routing

import "fmt"

// Strategy decides which model serves a request. The set of strategies is
// closed: only the types in this package implement it.
type Strategy interface {
	// Name returns the strategy's identifier for logs and configuration.
	Name() string

	isStrategy()
}

// Strategy names as they appear in configuration.
const (
	StrategyRoundRobin      = "round_robin"
	StrategyCostOptimized   = "cost_optimized"
	StrategyCapabilityBased = "capability_based"
	StrategyExperimental    = "experimental"
)

// RoundRobin rotates across registered providers in order.
type RoundRobin struct{}

// NewRoundRobin creates the round-robin strategy.
func NewRoundRobin() RoundRobin { return RoundRobin{} }

// Name returns "round_robin".
func (RoundRobin) Name() string { return StrategyRoundRobin }

func (RoundRobin) isStrategy() {}

// CostOptimized picks the cheapest model meeting the request's estimated
// context requirement and hinted capabilities.
type CostOptimized struct{}

// NewCostOptimized creates the cost-optimized strategy.
func NewCostOptimized() CostOptimized { return CostOptimized{} }

// Name returns "cost_optimized".
func (CostOptimized) Name() string { return StrategyCostOptimized }

func (CostOptimized) isStrategy() {}

// CapabilityBased scores models against the task hint and picks the best.
type CapabilityBased struct{}

// NewCapabilityBased creates the capability-based strategy.
func NewCapabilityBased() CapabilityBased { return CapabilityBased{} }

// Name returns "capability_based".
func (CapabilityBased) Name() string { return StrategyCapabilityBased }

func (CapabilityBased) isStrategy() {}

// Experimental runs a deterministic A/B split between two models.
// A counter, not randomness, drives the split so that a given request
// sequence is reproducible.
type Experimental struct {
	// Control is the model serving the control group.
	Control string

	// Treatment is the model serving the treatment group. When it has no
	// registered provider, traffic falls back to the control model.
	Treatment string

	// SplitRatio is the fraction of requests sent to the treatment model,
	// in [0, 1], applied at percent granularity.
	SplitRatio float64
}

// NewExperimental creates an A/B testing strategy.
func NewExperimental(control, treatment string, splitRatio float64) Experimental {
	return Experimental{Control: control, Treatment: treatment, SplitRatio: splitRatio}
}

// Name returns "experimental".
func (Experimental) Name() string { return StrategyExperimental }

func (Experimental) isStrategy() {}

// String describes the experiment for logging.
func (e Experimental) String() string {
	return fmt.Sprintf("experimental(control=%s, treatment=%s, split=%.2f)",
		e.Control, e.Treatment, e.SplitRatio)
}
