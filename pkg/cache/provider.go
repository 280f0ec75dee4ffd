package cache

import (
	"context"
	"fmt"
	"log/slog"

	"taskforge-hq/taskforge/pkg/providers"
)

// CachingProvider decorates a provider with prompt caching. Request messages
// are run through the cache before the call, so repeated system prompts are
// recognized and counted; the full message list is still sent upstream.
// Failures on the provider side never disturb the cache.
type CachingProvider struct {
	inner providers.Provider
	cache *PromptCache
}

var _ providers.Provider = (*CachingProvider)(nil)

// WrapProvider decorates a provider with the given prompt cache.
func WrapProvider(inner providers.Provider, cache *PromptCache) *CachingProvider {
	return &CachingProvider{inner: inner, cache: cache}
}

// Name returns the wrapped provider's name.
func (c *CachingProvider) Name() string {
	return c.inner.Name()
}

// Cache returns the underlying prompt cache.
func (c *CachingProvider) Cache() *PromptCache {
	return c.cache
}

// Generate caches eligible request messages, then delegates to the wrapped
// provider with the same conversation.
func (c *CachingProvider) Generate(ctx context.Context, req *providers.GenerationRequest) (*providers.GenerationResponse, error) {
	if req == nil {
		return c.inner.Generate(ctx, req)
	}

	cached := c.cache.CacheMessages(req.Messages)

	stats := c.cache.Stats()
	slog.Debug("cache stats after processing messages",
		"provider", c.inner.Name(),
		"hits", stats.Hits,
		"misses", stats.Misses,
		"hit_rate", fmt.Sprintf("%.2f%%", stats.HitRate()*100),
		"tokens_saved", stats.TokensSaved,
	)

	messages := make([]providers.Message, len(cached))
	for i, cm := range cached {
		messages[i] = cm.Message
	}
	next := *req
	next.Messages = messages

	return c.inner.Generate(ctx, &next)
}
