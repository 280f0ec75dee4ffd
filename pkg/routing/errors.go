package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoProviders is returned when no providers are registered.
	ErrNoProviders = errors.New("no providers available")

	// ErrBudgetExceeded is returned when a budget gate rejects a request.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrNoMatchingModel is returned when no model satisfies a selection.
	ErrNoMatchingModel = errors.New("no model matches requirements")

	// ErrAllProvidersFailed is returned when every provider in the
	// fallback chain failed transiently.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// BudgetExceededError is returned before any model selection when spending
// has reached a budget. At least one of Daily and Monthly is true.
type BudgetExceededError struct {
	// Daily is true when the daily budget has been reached.
	Daily bool

	// Monthly is true when the monthly budget has been reached.
	Monthly bool
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: daily=%t, monthly=%t", e.Daily, e.Monthly)
}

// Is implements error matching for errors.Is().
func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

// NoMatchingModelError is returned when a selection strategy finds no model
// meeting the request's requirements.
type NoMatchingModelError struct {
	// Reason describes the unmet requirement.
	Reason string
}

// Error implements the error interface.
func (e *NoMatchingModelError) Error() string {
	return fmt.Sprintf("no model matches requirements: %s", e.Reason)
}

// Is implements error matching for errors.Is().
func (e *NoMatchingModelError) Is(target error) bool {
	return target == ErrNoMatchingModel
}

// AllProvidersFailedError is returned when the whole fallback chain was
// exhausted by transient failures.
type AllProvidersFailedError struct {
	// Attempted lists the models tried, in order.
	Attempted []string

	// LastError is the final provider failure, nil when no provider in
	// the chain had a registered implementation.
	LastError error
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	if e.LastError == nil {
		return "all providers failed: no providers tried"
	}
	return fmt.Sprintf("all providers failed (attempted: %s), last error: %v",
		strings.Join(e.Attempted, ", "), e.LastError)
}

// Is implements error matching for errors.Is().
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Unwrap returns the last provider failure for error chain inspection.
func (e *AllProvidersFailedError) Unwrap() error {
	return e.LastError
}
