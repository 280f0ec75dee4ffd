package config

import "time"

// Config is the root configuration structure for taskforge.
// It contains all configuration sections for providers, routing, budgets,
// caching, task templates, the usage ledger, and telemetry.
type Config struct {
	// Providers contains configuration for LLM provider endpoints.
	// Keys are provider names (e.g., "openrouter").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Routing contains routing strategy and fallback configuration.
	Routing RoutingConfig `yaml:"routing"`

	// Budget contains daily and monthly spending limits.
	Budget BudgetConfig `yaml:"budget"`

	// Cache contains prompt cache configuration.
	Cache CacheConfig `yaml:"cache"`

	// Templates contains task template registry configuration.
	Templates TemplatesConfig `yaml:"templates"`

	// Ledger contains usage ledger persistence configuration.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProviderConfig describes one OpenAI-compatible provider endpoint and the
// models it serves.
type ProviderConfig struct {
	// BaseURL is the API root (e.g. "https://openrouter.ai/api/v1").
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// Keys never appear in configuration files.
	// Default: "TASKFORGE_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// DefaultModel is substituted when a request has no model.
	DefaultModel string `yaml:"default_model"`

	// Timeout bounds a single generation round trip.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for transient failures.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// Models lists the models served by this provider together with
	// their capabilities and pricing.
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig describes a model's capabilities and pricing for routing.
type ModelConfig struct {
	// Name is the model identifier (e.g. "anthropic/claude-3-opus").
	Name string `yaml:"name"`

	// MaxContext is the context window in tokens.
	// Default: 8192
	MaxContext int `yaml:"max_context"`

	// CodingScore rates code generation quality, 0 to 1.
	// Default: 0.5
	CodingScore float64 `yaml:"coding_score"`

	// ReasoningScore rates reasoning quality, 0 to 1.
	// Default: 0.5
	ReasoningScore float64 `yaml:"reasoning_score"`

	// SpeedScore rates latency, 0 to 1, higher is faster.
	// Default: 0.5
	SpeedScore float64 `yaml:"speed_score"`

	// CostPer1MInput is the input price in dollars per million tokens.
	CostPer1MInput float64 `yaml:"cost_per_1m_input"`

	// CostPer1MOutput is the output price in dollars per million tokens.
	CostPer1MOutput float64 `yaml:"cost_per_1m_output"`
}

// RoutingConfig selects the routing strategy and fallback behavior.
type RoutingConfig struct {
	// Strategy is one of "round_robin", "cost_optimized",
	// "capability_based", or "experimental".
	// Default: "round_robin"
	Strategy string `yaml:"strategy"`

	// FallbackChain is the ordered list of models tried after the primary
	// selection fails transiently.
	FallbackChain []string `yaml:"fallback_chain"`

	// Experimental configures the A/B split. Only consulted when
	// Strategy is "experimental".
	Experimental ExperimentalConfig `yaml:"experimental"`
}

// ExperimentalConfig configures A/B testing between two models.
type ExperimentalConfig struct {
	// Control is the model serving the control group.
	Control string `yaml:"control"`

	// Treatment is the model serving the treatment group.
	Treatment string `yaml:"treatment"`

	// SplitRatio is the fraction of traffic sent to the treatment,
	// in [0, 1].
	SplitRatio float64 `yaml:"split_ratio"`
}

// BudgetConfig holds spending limits in dollars.
type BudgetConfig struct {
	// Daily is the daily budget in dollars.
	// Default: 100
	Daily float64 `yaml:"daily"`

	// Monthly is the monthly budget in dollars.
	// Default: 1000
	Monthly float64 `yaml:"monthly"`
}

// CacheConfig controls the prompt cache.
type CacheConfig struct {
	// MaxEntries is the cache capacity.
	// Default: 1000
	MaxEntries int `yaml:"max_entries"`

	// TTL is the entry lifetime.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`

	// CacheSystemPrompts enables caching of system messages.
	// Default: true
	CacheSystemPrompts *bool `yaml:"cache_system_prompts"`

	// CacheUserMessages enables caching of user messages.
	// Default: false
	CacheUserMessages bool `yaml:"cache_user_messages"`

	// CacheAssistantMessages enables caching of assistant messages.
	// Default: false
	CacheAssistantMessages bool `yaml:"cache_assistant_messages"`
}

// TemplatesConfig points at the task template registry.
type TemplatesConfig struct {
	// Dir is the directory holding template YAML files.
	// Default: "./templates"
	Dir string `yaml:"dir"`

	// Watch enables hot reloading of templates on file changes.
	// Default: false
	Watch bool `yaml:"watch"`
}

// LedgerConfig controls usage ledger persistence.
type LedgerConfig struct {
	// Enabled turns the ledger on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/ledger.db"
	Path string `yaml:"path"`

	// FlushInterval is how often tracker history is mirrored to disk.
	// Default: 30s
	FlushInterval time.Duration `yaml:"flush_interval"`

	// RetentionDays is how long records are kept before pruning.
	// Zero disables pruning.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for the retention job.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns metrics collection on.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// ListenAddress is where the metrics endpoint listens.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path serving metrics.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
