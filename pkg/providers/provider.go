package providers

import "context"

// Provider is the contract every LLM provider adapter must implement.
// It is intentionally narrow: the router only needs a single generation
// operation and a name for logging and attribution.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation: when the context is cancelled the call returns promptly with
// the context's error wrapped in a *RequestError.
//
// Implementations must keep transient and permanent failures distinguishable
// through the typed errors in this package (see IsTransient); the router's
// fallback behavior depends on that classification.
type Provider interface {
	// Generate sends a generation request and returns the response.
	// The request's Model field is expected to be non-empty; providers may
	// substitute their configured default when it is not.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider's configured name (e.g. "openrouter").
	Name() string
}
