package agents

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"taskforge-hq/taskforge/pkg/cache"
	"taskforge-hq/taskforge/pkg/providers"
	"taskforge-hq/taskforge/pkg/routing"
)

// maxStageAttempts bounds whole-stage retries. Transport-level retries
// happen inside the provider client; these retries cover content-level
// failures such as unparseable model output.
const maxStageAttempts = 3

// baseRetryDelay is the first inter-attempt delay. Later attempts wait
// proportionally longer, plus jitter.
const baseRetryDelay = 200 * time.Millisecond

// Router is the routing surface agents call.
type Router interface {
	RouteTask(ctx context.Context, req *providers.GenerationRequest, hint *routing.TaskHint, taskID string) (*providers.GenerationResponse, error)
}

var _ Router = (*routing.MultiModelRouter)(nil)

// core carries the collaborators every stage agent shares.
type core struct {
	router Router
	cache  *cache.PromptCache
	logger *slog.Logger
}

// route sends the request through the prompt cache (when configured) and
// on to the router. The full message list always reaches the provider;
// the cache only deduplicates storage and counts reuse.
func (c *core) route(ctx context.Context, req *providers.GenerationRequest, hint *routing.TaskHint, taskID string) (*providers.GenerationResponse, error) {
	if c.cache != nil {
		cached := c.cache.CacheMessages(req.Messages)
		messages := make([]providers.Message, len(cached))
		for i, m := range cached {
			messages[i] = m.Message
		}
		clone := *req
		clone.Messages = messages
		req = &clone
	}
	return c.router.RouteTask(ctx, req, hint, taskID)
}

// runStage retries fn up to maxStageAttempts times with jittered backoff.
// Context cancellation stops retrying immediately.
func (c *core) runStage(ctx context.Context, stage string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxStageAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		c.logger.Warn("stage attempt failed",
			"stage", stage,
			"attempt", attempt,
			"error", err,
		)

		if attempt == maxStageAttempts {
			break
		}
		select {
		case <-time.After(stageRetryDelay(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return &StageFailedError{Stage: stage, Attempts: maxStageAttempts, LastError: lastErr}
}

func stageRetryDelay(attempt int) time.Duration {
	base := baseRetryDelay * time.Duration(attempt)
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	return base + jitter
}
