package main

import (
	"os"
	"path/filepath"
	"testing"

	"taskforge-hq/taskforge/pkg/config"
	"taskforge-hq/taskforge/pkg/routing"
)

const validTestConfig = `
providers:
  openrouter:
    base_url: https://openrouter.ai/api/v1
    api_key_env: TASKFORGE_API_KEY
    default_model: openai/gpt-4o-mini
    models:
      - name: openai/gpt-4o-mini
        max_context: 128000
        coding_score: 0.7
        speed_score: 0.9
        cost_per_1m_input: 0.15
        cost_per_1m_output: 0.6
      - name: openai/gpt-4o
        max_context: 128000
        coding_score: 0.9
        reasoning_score: 0.9
        cost_per_1m_input: 3.0
        cost_per_1m_output: 15.0
routing:
  strategy: cost_optimized
  fallback_chain:
    - openai/gpt-4o
budget:
  daily: 10
  monthly: 100
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(validTestConfig), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"run", "validate", "report", "version"} {
		if !names[want] {
			t.Errorf("command %q not registered", want)
		}
	}
}

func TestBuildStrategy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RoutingConfig
		wantName string
		wantErr  bool
	}{
		{
			name:     "round robin",
			cfg:      config.RoutingConfig{Strategy: "round_robin"},
			wantName: "round_robin",
		},
		{
			name:     "cost optimized",
			cfg:      config.RoutingConfig{Strategy: "cost_optimized"},
			wantName: "cost_optimized",
		},
		{
			name:     "capability based",
			cfg:      config.RoutingConfig{Strategy: "capability_based"},
			wantName: "capability_based",
		},
		{
			name: "experimental",
			cfg: config.RoutingConfig{
				Strategy: "experimental",
				Experimental: config.ExperimentalConfig{
					Control: "a", Treatment: "b", SplitRatio: 0.2,
				},
			},
			wantName: "experimental",
		},
		{
			name:    "unknown",
			cfg:     config.RoutingConfig{Strategy: "chaos"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := buildStrategy(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildStrategy failed: %v", err)
			}
			if strategy.Name() != tt.wantName {
				t.Errorf("strategy name = %s, want %s", strategy.Name(), tt.wantName)
			}
		})
	}
}

func TestBuildRouter(t *testing.T) {
	t.Setenv("TASKFORGE_API_KEY", "test-key")

	cfg, err := config.LoadConfig(writeTestConfig(t))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	router, err := buildRouter(cfg)
	if err != nil {
		t.Fatalf("buildRouter failed: %v", err)
	}

	models := router.AvailableModels()
	if len(models) != 2 {
		t.Errorf("expected 2 models, got %v", models)
	}
	if router.Strategy().Name() != routing.StrategyCostOptimized {
		t.Errorf("strategy = %s, want cost_optimized", router.Strategy().Name())
	}
	if router.CostTracker().DailyBudget() != 10 {
		t.Errorf("daily budget = %f, want 10", router.CostTracker().DailyBudget())
	}
}

func TestBuildCache(t *testing.T) {
	enabled := false
	cacheCfg := config.CacheConfig{
		MaxEntries:         50,
		CacheSystemPrompts: &enabled,
		CacheUserMessages:  true,
	}

	promptCache := buildCache(cacheCfg)
	got := promptCache.Config()
	if got.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d, want 50", got.MaxEntries)
	}
	if got.CacheSystemPrompts {
		t.Error("expected explicit false to disable system prompt caching")
	}
	if !got.CacheUserMessages {
		t.Error("expected user message caching enabled")
	}
}

func TestVersionCommandExists(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Run == nil {
		t.Error("versionCmd.Run should not be nil")
	}
}
