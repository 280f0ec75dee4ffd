package routing

// Capability defaults for models registered without explicit scores.
const (
	defaultMaxContext = 8192
	defaultScore      = 0.5
)

// longContextThreshold is the minimum context window for tasks hinted as
// requiring long context.
const longContextThreshold = 32_000

// minCodingScore is the minimum coding quality for tasks hinted as
// requiring code generation.
const minCodingScore = 0.5

// ModelCapabilities describes a model's quality scores, context window and
// pricing for routing decisions.
type ModelCapabilities struct {
	// Name is the model identifier (e.g. "anthropic/claude-3-opus").
	Name string `yaml:"name"`

	// MaxContext is the context window size in tokens.
	MaxContext int `yaml:"max_context"`

	// CodingScore rates code generation quality, 0 to 1.
	CodingScore float64 `yaml:"coding_score"`

	// ReasoningScore rates reasoning quality, 0 to 1.
	ReasoningScore float64 `yaml:"reasoning_score"`

	// SpeedScore rates latency, 0 to 1, higher is faster.
	SpeedScore float64 `yaml:"speed_score"`

	// CostPer1MInput is the input price in dollars per million tokens.
	CostPer1MInput float64 `yaml:"cost_per_1m_input"`

	// CostPer1MOutput is the output price in dollars per million tokens.
	CostPer1MOutput float64 `yaml:"cost_per_1m_output"`
}

// NewModelCapabilities creates capabilities with middle-of-the-road defaults:
// an 8192 token window, 0.5 for every score, and zero pricing.
func NewModelCapabilities(name string) ModelCapabilities {
	return ModelCapabilities{
		Name:           name,
		MaxContext:     defaultMaxContext,
		CodingScore:    defaultScore,
		ReasoningScore: defaultScore,
		SpeedScore:     defaultScore,
	}
}

// WithMaxContext returns a copy with the context window set.
func (c ModelCapabilities) WithMaxContext(maxContext int) ModelCapabilities {
	c.MaxContext = maxContext
	return c
}

// WithCodingScore returns a copy with the coding score set, clamped to [0, 1].
func (c ModelCapabilities) WithCodingScore(score float64) ModelCapabilities {
	c.CodingScore = clampScore(score)
	return c
}

// WithReasoningScore returns a copy with the reasoning score set, clamped
// to [0, 1].
func (c ModelCapabilities) WithReasoningScore(score float64) ModelCapabilities {
	c.ReasoningScore = clampScore(score)
	return c
}

// WithSpeedScore returns a copy with the speed score set, clamped to [0, 1].
func (c ModelCapabilities) WithSpeedScore(score float64) ModelCapabilities {
	c.SpeedScore = clampScore(score)
	return c
}

// WithPricing returns a copy with input and output prices set, in dollars
// per million tokens.
func (c ModelCapabilities) WithPricing(costPer1MInput, costPer1MOutput float64) ModelCapabilities {
	c.CostPer1MInput = costPer1MInput
	c.CostPer1MOutput = costPer1MOutput
	return c
}

// EstimateCost returns the estimated dollar cost of a call.
func (c ModelCapabilities) EstimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1_000_000*c.CostPer1MInput +
		float64(outputTokens)/1_000_000*c.CostPer1MOutput
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
