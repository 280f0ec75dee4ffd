// Package config defines the taskforge configuration structure and loading.
//
// Configuration is YAML with a fixed loading sequence: parse, apply
// defaults, apply TASKFORGE_* environment overrides, validate. Validation
// collects every violation instead of stopping at the first one.
package config
