package templates

import (
	"fmt"
	"strings"

	"taskforge-hq/taskforge/pkg/routing"
)

// TaskTemplate describes one category of benchmark task: what the task is
// about, how hard it is, and the instruction scaffold stages prompt from.
type TaskTemplate struct {
	// Name uniquely identifies the template. Defaults to the file name
	// (without extension) when omitted.
	Name string `yaml:"name"`

	// Category is the task category (e.g. "code_generation").
	Category string `yaml:"category"`

	// Difficulty is the task difficulty level (e.g. "easy", "hard").
	Difficulty string `yaml:"difficulty"`

	// Skills lists the skills the task exercises.
	Skills []string `yaml:"skills"`

	// Instructions is the instruction scaffold handed to generation stages.
	Instructions string `yaml:"instructions"`

	// EstimatedOutputTokens is the expected response length. Zero means
	// unknown.
	EstimatedOutputTokens int `yaml:"estimated_output_tokens"`

	// RequiresLongContext marks tasks needing a large context window.
	RequiresLongContext bool `yaml:"requires_long_context"`

	// RequiresCodeGeneration marks tasks needing code generation quality.
	RequiresCodeGeneration bool `yaml:"requires_code_generation"`
}

// Validate checks the template for usability.
func (t *TaskTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name cannot be empty")
	}
	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("template %q: category cannot be empty", t.Name)
	}
	if strings.TrimSpace(t.Instructions) == "" {
		return fmt.Errorf("template %q: instructions cannot be empty", t.Name)
	}
	if t.EstimatedOutputTokens < 0 {
		return fmt.Errorf("template %q: estimated_output_tokens cannot be negative", t.Name)
	}
	return nil
}

// Hint converts the template into a routing hint.
func (t *TaskTemplate) Hint() routing.TaskHint {
	hint := routing.NewTaskHint().
		WithCategory(t.Category).
		WithDifficulty(t.Difficulty).
		WithEstimatedTokens(t.EstimatedOutputTokens)
	if t.RequiresLongContext {
		hint = hint.WithLongContext()
	}
	if t.RequiresCodeGeneration {
		hint = hint.WithCodeGeneration()
	}
	return hint
}
