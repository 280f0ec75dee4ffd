package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "routing.strategy").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

var validStrategies = map[string]bool{
	"round_robin":      true,
	"cost_optimized":   true,
	"capability_based": true,
	"experimental":     true,
}

// Validate checks the whole configuration and returns a ValidationError
// listing every rule violation found, or nil when the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateRouting(&cfg.Routing, cfg.Providers)...)
	errs = append(errs, validateBudget(&cfg.Budget)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateProviders(provs map[string]ProviderConfig) []FieldError {
	var errs []FieldError
	for name, p := range provs {
		prefix := fmt.Sprintf("providers.%s", name)
		if p.BaseURL == "" {
			errs = append(errs, FieldError{prefix + ".base_url", "must not be empty"})
		} else if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{prefix + ".base_url", fmt.Sprintf("invalid URL %q", p.BaseURL)})
		}
		seen := make(map[string]bool)
		for i, m := range p.Models {
			mPrefix := fmt.Sprintf("%s.models[%d]", prefix, i)
			if m.Name == "" {
				errs = append(errs, FieldError{mPrefix + ".name", "must not be empty"})
			}
			if seen[m.Name] {
				errs = append(errs, FieldError{mPrefix + ".name", fmt.Sprintf("duplicate model %q", m.Name)})
			}
			seen[m.Name] = true
			for field, score := range map[string]float64{
				"coding_score":    m.CodingScore,
				"reasoning_score": m.ReasoningScore,
				"speed_score":     m.SpeedScore,
			} {
				if score < 0 || score > 1 {
					errs = append(errs, FieldError{mPrefix + "." + field, "must be between 0 and 1"})
				}
			}
			if m.CostPer1MInput < 0 || m.CostPer1MOutput < 0 {
				errs = append(errs, FieldError{mPrefix + ".cost_per_1m_input", "pricing must not be negative"})
			}
		}
	}
	return errs
}

func validateRouting(r *RoutingConfig, provs map[string]ProviderConfig) []FieldError {
	var errs []FieldError
	if !validStrategies[r.Strategy] {
		errs = append(errs, FieldError{"routing.strategy",
			fmt.Sprintf("unknown strategy %q (valid: round_robin, cost_optimized, capability_based, experimental)", r.Strategy)})
	}
	if r.Strategy == "experimental" {
		if r.Experimental.Control == "" {
			errs = append(errs, FieldError{"routing.experimental.control", "must not be empty"})
		}
		if r.Experimental.Treatment == "" {
			errs = append(errs, FieldError{"routing.experimental.treatment", "must not be empty"})
		}
		if r.Experimental.SplitRatio < 0 || r.Experimental.SplitRatio > 1 {
			errs = append(errs, FieldError{"routing.experimental.split_ratio", "must be between 0 and 1"})
		}
	}
	return errs
}

func validateBudget(b *BudgetConfig) []FieldError {
	var errs []FieldError
	if b.Daily < 0 {
		errs = append(errs, FieldError{"budget.daily", "must not be negative"})
	}
	if b.Monthly < 0 {
		errs = append(errs, FieldError{"budget.monthly", "must not be negative"})
	}
	if b.Daily > b.Monthly && b.Monthly > 0 {
		errs = append(errs, FieldError{"budget.daily", "must not exceed the monthly budget"})
	}
	return errs
}

func validateLedger(l *LedgerConfig) []FieldError {
	var errs []FieldError
	if !l.Enabled {
		return nil
	}
	if l.Path == "" {
		errs = append(errs, FieldError{"ledger.path", "must not be empty"})
	}
	if l.RetentionDays < 0 {
		errs = append(errs, FieldError{"ledger.retention_days", "must not be negative"})
	}
	if l.PruneSchedule != "" {
		if _, err := cron.ParseStandard(l.PruneSchedule); err != nil {
			errs = append(errs, FieldError{"ledger.prune_schedule",
				fmt.Sprintf("invalid cron expression %q: %v", l.PruneSchedule, err)})
		}
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError
	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q (valid: debug, info, warn, error)", t.Logging.Level)})
	}
	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q (valid: json, text)", t.Logging.Format)})
	}
	return errs
}
