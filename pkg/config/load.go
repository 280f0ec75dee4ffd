package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention TASKFORGE_SECTION_FIELD (e.g. TASKFORGE_ROUTING_STRATEGY) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies TASKFORGE_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	// Routing overrides
	if val := os.Getenv("TASKFORGE_ROUTING_STRATEGY"); val != "" {
		cfg.Routing.Strategy = val
	}

	// Budget overrides
	if val := os.Getenv("TASKFORGE_BUDGET_DAILY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Budget.Daily = f
		}
	}
	if val := os.Getenv("TASKFORGE_BUDGET_MONTHLY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Budget.Monthly = f
		}
	}

	// Cache overrides
	if val := os.Getenv("TASKFORGE_CACHE_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxEntries = i
		}
	}
	if val := os.Getenv("TASKFORGE_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.TTL = d
		}
	}

	// Templates overrides
	if val := os.Getenv("TASKFORGE_TEMPLATES_DIR"); val != "" {
		cfg.Templates.Dir = val
	}
	if val := os.Getenv("TASKFORGE_TEMPLATES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Templates.Watch = b
		}
	}

	// Ledger overrides
	if val := os.Getenv("TASKFORGE_LEDGER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ledger.Enabled = b
		}
	}
	if val := os.Getenv("TASKFORGE_LEDGER_PATH"); val != "" {
		cfg.Ledger.Path = val
	}
	if val := os.Getenv("TASKFORGE_LEDGER_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Ledger.RetentionDays = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("TASKFORGE_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TASKFORGE_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TASKFORGE_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}

	// Provider overrides
	for name, p := range cfg.Providers {
		if val := os.Getenv("TASKFORGE_PROVIDER_" + envName(name) + "_BASE_URL"); val != "" {
			p.BaseURL = val
		}
		if val := os.Getenv("TASKFORGE_PROVIDER_" + envName(name) + "_DEFAULT_MODEL"); val != "" {
			p.DefaultModel = val
		}
		cfg.Providers[name] = p
	}
}

// envName maps a provider name to its environment variable fragment.
func envName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r-('a'-'A'))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
