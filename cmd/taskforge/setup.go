package main

import (
	"fmt"
	"os"

	"taskforge-hq/taskforge/pkg/cache"
	"taskforge-hq/taskforge/pkg/config"
	"taskforge-hq/taskforge/pkg/cost"
	"taskforge-hq/taskforge/pkg/providers"
	"taskforge-hq/taskforge/pkg/routing"
)

// buildStrategy maps the configured strategy name to a routing strategy.
func buildStrategy(cfg config.RoutingConfig) (routing.Strategy, error) {
	switch cfg.Strategy {
	case routing.StrategyRoundRobin:
		return routing.NewRoundRobin(), nil
	case routing.StrategyCostOptimized:
		return routing.NewCostOptimized(), nil
	case routing.StrategyCapabilityBased:
		return routing.NewCapabilityBased(), nil
	case routing.StrategyExperimental:
		return routing.NewExperimental(
			cfg.Experimental.Control,
			cfg.Experimental.Treatment,
			cfg.Experimental.SplitRatio,
		), nil
	default:
		return nil, fmt.Errorf("unknown routing strategy %q", cfg.Strategy)
	}
}

// buildRouter constructs the router, its providers and its cost tracker
// from configuration. Every configured model gets one client per provider
// endpoint and a capability registration.
func buildRouter(cfg *config.Config) (*routing.MultiModelRouter, error) {
	strategy, err := buildStrategy(cfg.Routing)
	if err != nil {
		return nil, err
	}

	tracker := cost.NewTracker(cfg.Budget.Daily, cfg.Budget.Monthly)
	router := routing.NewWithTracker(strategy, tracker)

	for name, providerCfg := range cfg.Providers {
		client, err := providers.NewClient(providers.ClientConfig{
			Name:       name,
			BaseURL:    providerCfg.BaseURL,
			APIKey:     os.Getenv(providerCfg.APIKeyEnv),
			Timeout:    providerCfg.Timeout,
			MaxRetries: providerCfg.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}

		for _, model := range providerCfg.Models {
			router.AddProvider(client, model.Name)
			router.AddModelCapabilities(routing.ModelCapabilities{
				Name:            model.Name,
				MaxContext:      model.MaxContext,
				CodingScore:     model.CodingScore,
				ReasoningScore:  model.ReasoningScore,
				SpeedScore:      model.SpeedScore,
				CostPer1MInput:  model.CostPer1MInput,
				CostPer1MOutput: model.CostPer1MOutput,
			})
		}
	}

	router.SetFallbackChain(cfg.Routing.FallbackChain)
	return router, nil
}

// buildCache constructs the prompt cache from configuration.
func buildCache(cfg config.CacheConfig) *cache.PromptCache {
	cacheCfg := cache.Config{
		MaxEntries:             cfg.MaxEntries,
		TTL:                    cfg.TTL,
		CacheUserMessages:      cfg.CacheUserMessages,
		CacheAssistantMessages: cfg.CacheAssistantMessages,
	}
	if cfg.CacheSystemPrompts != nil {
		cacheCfg.CacheSystemPrompts = *cfg.CacheSystemPrompts
	} else {
		cacheCfg.CacheSystemPrompts = true
	}
	return cache.NewWithConfig(cacheCfg)
}
