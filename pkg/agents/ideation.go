package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskforge-hq/taskforge/pkg/cache"
	"taskforge-hq/taskforge/pkg/providers"
	"taskforge-hq/taskforge/pkg/templates"
)

const ideationStage = "ideation"

const ideationSystemPrompt = "You design benchmark tasks. " +
	"Respond with a single JSON object and no additional text."

// IdeationConfig configures the ideation agent.
type IdeationConfig struct {
	// Temperature for ideation calls. Ideation runs hot so repeated calls
	// produce diverse ideas. Default: 0.9
	Temperature float64

	// MaxTokens caps the response length. Default: 1200
	MaxTokens int
}

// DefaultIdeationConfig returns the default ideation configuration.
func DefaultIdeationConfig() *IdeationConfig {
	return &IdeationConfig{
		Temperature: 0.9,
		MaxTokens:   1200,
	}
}

// IdeationAgent turns task templates into concrete task ideas.
type IdeationAgent struct {
	core
	config *IdeationConfig
}

// NewIdeationAgent creates an ideation agent. The prompt cache may be nil
// to disable caching; config may be nil for defaults.
func NewIdeationAgent(router Router, promptCache *cache.PromptCache, config *IdeationConfig) *IdeationAgent {
	if config == nil {
		config = DefaultIdeationConfig()
	}
	return &IdeationAgent{
		core: core{
			router: router,
			cache:  promptCache,
			logger: slog.Default().With("component", "agents.ideation"),
		},
		config: config,
	}
}

// ideaPayload is the JSON shape the model is asked to produce.
type ideaPayload struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	EstimatedDifficulty string   `json:"estimated_difficulty"`
	RequiredSkills      []string `json:"required_skills"`
	AntiPatterns        []string `json:"anti_patterns"`
}

// GenerateIdea produces one task idea from the template. The whole
// attempt, including response parsing, is retried on failure.
func (a *IdeationAgent) GenerateIdea(ctx context.Context, tmpl *templates.TaskTemplate) (*TaskIdea, error) {
	taskID := uuid.NewString()
	hint := tmpl.Hint()

	req := &providers.GenerationRequest{
		Messages: []providers.Message{
			providers.SystemMessage(ideationSystemPrompt),
			providers.UserMessage(buildIdeationPrompt(tmpl)),
		},
	}
	req = req.WithTemperature(a.config.Temperature).WithMaxTokens(a.config.MaxTokens)

	var idea *TaskIdea
	err := a.runStage(ctx, ideationStage, func(ctx context.Context) error {
		resp, err := a.route(ctx, req, &hint, taskID)
		if err != nil {
			return err
		}

		content, ok := resp.FirstContent()
		if !ok || strings.TrimSpace(content) == "" {
			return ErrEmptyResponse
		}

		payload, err := parseIdeaPayload(content)
		if err != nil {
			return err
		}

		idea = &TaskIdea{
			ID:           taskID,
			TemplateName: tmpl.Name,
			Title:        payload.Title,
			Description:  payload.Description,
			Difficulty:   payload.EstimatedDifficulty,
			Skills:       payload.RequiredSkills,
			AntiPatterns: payload.AntiPatterns,
			CreatedAt:    time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("task idea generated",
		"task_id", idea.ID,
		"template", idea.TemplateName,
		"title", idea.Title,
	)
	return idea, nil
}

func buildIdeationPrompt(tmpl *templates.TaskTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", tmpl.Category)
	if tmpl.Difficulty != "" {
		fmt.Fprintf(&b, "Target difficulty: %s\n", tmpl.Difficulty)
	}
	if len(tmpl.Skills) > 0 {
		fmt.Fprintf(&b, "Skills to exercise: %s\n", strings.Join(tmpl.Skills, ", "))
	}
	b.WriteString("\n")
	b.WriteString(tmpl.Instructions)
	b.WriteString("\n\nOutput as JSON with fields: " +
		`"title", "description", "estimated_difficulty", "required_skills", "anti_patterns".`)
	return b.String()
}

func parseIdeaPayload(content string) (*ideaPayload, error) {
	raw, ok := extractJSONObject(content)
	if !ok {
		return nil, &ParseError{Stage: ideationStage, Message: "no JSON object in response"}
	}

	var payload ideaPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &ParseError{Stage: ideationStage, Message: err.Error()}
	}
	if strings.TrimSpace(payload.Title) == "" {
		return nil, &ParseError{Stage: ideationStage, Message: "missing title"}
	}
	if strings.TrimSpace(payload.Description) == "" {
		return nil, &ParseError{Stage: ideationStage, Message: "missing description"}
	}
	return &payload, nil
}
