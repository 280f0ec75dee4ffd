package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskforge-hq/taskforge/pkg/cache"
	"taskforge-hq/taskforge/pkg/providers"
	"taskforge-hq/taskforge/pkg/routing"
)

const codegenStage = "code_generation"

const codegenSystemPrompt = "You implement benchmark task environments. " +
	"Respond with a single fenced code block and no additional text."

// CodeGenConfig configures the code generation agent.
type CodeGenConfig struct {
	// Temperature for code generation calls. Code generation runs cold
	// for reproducible structure. Default: 0.2
	Temperature float64

	// MaxTokens caps the response length. Default: 4000
	MaxTokens int
}

// DefaultCodeGenConfig returns the default code generation configuration.
func DefaultCodeGenConfig() *CodeGenConfig {
	return &CodeGenConfig{
		Temperature: 0.2,
		MaxTokens:   4000,
	}
}

// CodeGenAgent turns task ideas into code artifacts.
type CodeGenAgent struct {
	core
	config *CodeGenConfig
}

// NewCodeGenAgent creates a code generation agent. The prompt cache may
// be nil to disable caching; config may be nil for defaults.
func NewCodeGenAgent(router Router, promptCache *cache.PromptCache, config *CodeGenConfig) *CodeGenAgent {
	if config == nil {
		config = DefaultCodeGenConfig()
	}
	return &CodeGenAgent{
		core: core{
			router: router,
			cache:  promptCache,
			logger: slog.Default().With("component", "agents.codegen"),
		},
		config: config,
	}
}

// GenerateCode produces the code artifact for an idea. Cost is attributed
// to the idea's task ID, so ideation and code generation spending for one
// task share a ledger key.
func (a *CodeGenAgent) GenerateCode(ctx context.Context, idea *TaskIdea) (*GeneratedTask, error) {
	hint := routing.NewTaskHint().
		WithDifficulty(idea.Difficulty).
		WithCodeGeneration()

	req := &providers.GenerationRequest{
		Messages: []providers.Message{
			providers.SystemMessage(codegenSystemPrompt),
			providers.UserMessage(buildCodegenPrompt(idea)),
		},
	}
	req = req.WithTemperature(a.config.Temperature).WithMaxTokens(a.config.MaxTokens)

	var task *GeneratedTask
	err := a.runStage(ctx, codegenStage, func(ctx context.Context) error {
		resp, err := a.route(ctx, req, &hint, idea.ID)
		if err != nil {
			return err
		}

		content, ok := resp.FirstContent()
		if !ok || strings.TrimSpace(content) == "" {
			return ErrEmptyResponse
		}

		code := extractCodeBlock(content)
		if code == "" {
			return &ParseError{Stage: codegenStage, Message: "no code in response"}
		}

		task = &GeneratedTask{
			Idea:      *idea,
			Code:      code,
			Model:     resp.Model,
			CreatedAt: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("task code generated",
		"task_id", task.Idea.ID,
		"model", task.Model,
		"code_bytes", len(task.Code),
	)
	return task, nil
}

func buildCodegenPrompt(idea *TaskIdea) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n\n%s\n", idea.Title, idea.Description)
	if len(idea.Skills) > 0 {
		fmt.Fprintf(&b, "\nThe implementation should exercise: %s\n", strings.Join(idea.Skills, ", "))
	}
	if len(idea.AntiPatterns) > 0 {
		fmt.Fprintf(&b, "\nAvoid these approaches: %s\n", strings.Join(idea.AntiPatterns, ", "))
	}
	b.WriteString("\nImplement the task environment described above.")
	return b.String()
}
