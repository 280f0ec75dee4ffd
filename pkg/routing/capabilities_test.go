package routing

import (
	"math"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
		{"123456789", 3},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestModelCapabilitiesDefaults(t *testing.T) {
	caps := NewModelCapabilities("test-model")

	if caps.MaxContext != 8192 {
		t.Errorf("MaxContext = %d, want 8192", caps.MaxContext)
	}
	for _, score := range []float64{caps.CodingScore, caps.ReasoningScore, caps.SpeedScore} {
		if score != 0.5 {
			t.Errorf("default score = %v, want 0.5", score)
		}
	}
	if caps.CostPer1MInput != 0 || caps.CostPer1MOutput != 0 {
		t.Error("default pricing must be zero")
	}
}

func TestModelCapabilitiesBuilder(t *testing.T) {
	caps := NewModelCapabilities("test-model").
		WithMaxContext(32000).
		WithCodingScore(0.9).
		WithReasoningScore(0.85).
		WithSpeedScore(0.7).
		WithPricing(3.0, 15.0)

	if caps.MaxContext != 32000 {
		t.Errorf("MaxContext = %d, want 32000", caps.MaxContext)
	}
	if caps.CodingScore != 0.9 || caps.ReasoningScore != 0.85 || caps.SpeedScore != 0.7 {
		t.Errorf("scores = %v/%v/%v", caps.CodingScore, caps.ReasoningScore, caps.SpeedScore)
	}
	if caps.CostPer1MInput != 3.0 || caps.CostPer1MOutput != 15.0 {
		t.Errorf("pricing = %v/%v", caps.CostPer1MInput, caps.CostPer1MOutput)
	}
}

func TestModelCapabilitiesClampScores(t *testing.T) {
	caps := NewModelCapabilities("m").
		WithCodingScore(1.5).
		WithReasoningScore(-0.5)

	if caps.CodingScore != 1 {
		t.Errorf("CodingScore = %v, want clamped to 1", caps.CodingScore)
	}
	if caps.ReasoningScore != 0 {
		t.Errorf("ReasoningScore = %v, want clamped to 0", caps.ReasoningScore)
	}
}

func TestEstimateCost(t *testing.T) {
	caps := NewModelCapabilities("m").WithPricing(3.0, 15.0)

	// 1M input at $3 plus 500K output at $15 is $10.50.
	got := caps.EstimateCost(1_000_000, 500_000)
	if math.Abs(got-10.5) > 1e-9 {
		t.Errorf("EstimateCost = %v, want 10.5", got)
	}
}

func TestTaskHintBuilder(t *testing.T) {
	hint := NewTaskHint().
		WithCategory("code_generation").
		WithDifficulty(DifficultyHard).
		WithEstimatedTokens(1200).
		WithLongContext().
		WithCodeGeneration()

	if hint.Category != "code_generation" {
		t.Errorf("Category = %q", hint.Category)
	}
	if hint.Difficulty != DifficultyHard {
		t.Errorf("Difficulty = %q", hint.Difficulty)
	}
	if hint.EstimatedTokens != 1200 {
		t.Errorf("EstimatedTokens = %d", hint.EstimatedTokens)
	}
	if !hint.RequiresLongContext || !hint.RequiresCodeGeneration {
		t.Error("boolean hints must be set")
	}
}

func TestOutputEstimateDefault(t *testing.T) {
	if got := outputEstimate(nil); got != DefaultOutputTokens {
		t.Errorf("outputEstimate(nil) = %d, want %d", got, DefaultOutputTokens)
	}
	hint := NewTaskHint()
	if got := outputEstimate(&hint); got != DefaultOutputTokens {
		t.Errorf("outputEstimate(zero hint) = %d, want %d", got, DefaultOutputTokens)
	}
	hint = hint.WithEstimatedTokens(750)
	if got := outputEstimate(&hint); got != 750 {
		t.Errorf("outputEstimate = %d, want 750", got)
	}
}
