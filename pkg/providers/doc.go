// Package providers defines the LLM provider contract and an OpenAI-compatible
// HTTP client implementing it.
//
// A Provider exposes a single Generate operation over chat-style messages.
// Failures are reported through a small set of typed errors (RequestError,
// RateLimitError, APIError, ParseError, ConfigError) so that callers can
// distinguish transient conditions, which are worth retrying or falling back
// over, from permanent ones. IsTransient encodes that classification.
package providers
