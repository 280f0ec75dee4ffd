package providers

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RequestError represents a transport-level failure: the HTTP request could
// not be completed (network error, timeout, connection refused).
type RequestError struct {
	// Provider is the name of the provider where the failure occurred
	Provider string

	// Message describes the failure
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("provider %q request failed: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// RateLimitError represents a rate limit response (HTTP 429).
// It includes the retry-after duration if the provider supplied one.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request
	Provider string

	// RetryAfter is the duration to wait before retrying (0 if not provided)
	RetryAfter time.Duration

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limited (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limited: %s", e.Provider, e.Message)
}

// APIError represents a structured error response from the provider's API
// (non-2xx status with a parseable or raw body).
type APIError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// Code is the HTTP status code
	Code int

	// Message is the error message from the response body
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("provider %q API error (%d): %s", e.Provider, e.Code, e.Message)
}

// ParseError represents a response that could not be decoded.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying decode error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid provider configuration.
type ConfigError struct {
	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider configuration error for field %q: %s", e.Field, e.Message)
}

// IsTransient reports whether an error is worth retrying on a different
// provider. Transient errors are: request failures whose message indicates a
// network-level problem, rate limits, and server-side API errors (5xx or 429).
// Everything else (auth failures, malformed requests, parse errors) is
// permanent and must abort a fallback chain.
func IsTransient(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.Message
		return strings.Contains(msg, "timeout") ||
			strings.Contains(msg, "connection") ||
			strings.Contains(msg, "temporarily") ||
			strings.Contains(msg, "Connection refused")
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500 || apiErr.Code == 429
	}

	return false
}
