package config

import "time"

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProviderTimeout    = 120 * time.Second
	DefaultProviderMaxRetries = 2
	DefaultAPIKeyEnv          = "TASKFORGE_API_KEY"

	// Model defaults
	DefaultModelMaxContext = 8192
	DefaultModelScore      = 0.5

	// Routing defaults
	DefaultRoutingStrategy = "round_robin"

	// Budget defaults, in dollars
	DefaultDailyBudget   = 100.0
	DefaultMonthlyBudget = 1000.0

	// Cache defaults
	DefaultCacheMaxEntries = 1000
	DefaultCacheTTL        = time.Hour

	// Templates defaults
	DefaultTemplatesDir = "./templates"

	// Ledger defaults
	DefaultLedgerPath          = "data/ledger.db"
	DefaultLedgerFlushInterval = 30 * time.Second
	DefaultLedgerRetentionDays = 90
	DefaultLedgerPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// ApplyDefaults fills in default values for any zero-valued fields.
// It is called by LoadConfig after parsing and can be used directly on
// programmatically constructed configurations.
func ApplyDefaults(cfg *Config) {
	for name, p := range cfg.Providers {
		if p.APIKeyEnv == "" {
			p.APIKeyEnv = DefaultAPIKeyEnv
		}
		if p.Timeout <= 0 {
			p.Timeout = DefaultProviderTimeout
		}
		if p.MaxRetries == 0 {
			p.MaxRetries = DefaultProviderMaxRetries
		}
		for i, m := range p.Models {
			if m.MaxContext <= 0 {
				m.MaxContext = DefaultModelMaxContext
			}
			if m.CodingScore == 0 {
				m.CodingScore = DefaultModelScore
			}
			if m.ReasoningScore == 0 {
				m.ReasoningScore = DefaultModelScore
			}
			if m.SpeedScore == 0 {
				m.SpeedScore = DefaultModelScore
			}
			p.Models[i] = m
		}
		cfg.Providers[name] = p
	}

	if cfg.Routing.Strategy == "" {
		cfg.Routing.Strategy = DefaultRoutingStrategy
	}

	if cfg.Budget.Daily <= 0 {
		cfg.Budget.Daily = DefaultDailyBudget
	}
	if cfg.Budget.Monthly <= 0 {
		cfg.Budget.Monthly = DefaultMonthlyBudget
	}

	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.CacheSystemPrompts == nil {
		enabled := true
		cfg.Cache.CacheSystemPrompts = &enabled
	}

	if cfg.Templates.Dir == "" {
		cfg.Templates.Dir = DefaultTemplatesDir
	}

	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = DefaultLedgerPath
	}
	if cfg.Ledger.FlushInterval <= 0 {
		cfg.Ledger.FlushInterval = DefaultLedgerFlushInterval
	}
	if cfg.Ledger.RetentionDays == 0 {
		cfg.Ledger.RetentionDays = DefaultLedgerRetentionDays
	}
	if cfg.Ledger.PruneSchedule == "" {
		cfg.Ledger.PruneSchedule = DefaultLedgerPruneSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		enabled := DefaultMetricsEnabled
		cfg.Telemetry.Metrics.Enabled = &enabled
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
