// Package llmtest provides test doubles for the provider contract.
package llmtest

import (
	"context"
	"sync"
	"sync/atomic"

	"taskforge-hq/taskforge/pkg/providers"
)

// MockProvider is a configurable Provider implementation for tests.
// It records every request it receives and can be scripted to fail a fixed
// number of times or permanently.
type MockProvider struct {
	name string

	mu       sync.Mutex
	requests []*providers.GenerationRequest

	calls atomic.Int64

	// failures left before the provider starts succeeding.
	failuresRemaining atomic.Int64
	failWith          error

	response *providers.GenerationResponse
}

var _ providers.Provider = (*MockProvider)(nil)

// NewMockProvider creates a healthy mock that answers every request with a
// canned response.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name: name,
		response: &providers.GenerationResponse{
			ID:    "mock-response",
			Model: name + "/mock-model",
			Choices: []providers.Choice{
				{Message: providers.AssistantMessage("mock response"), FinishReason: "stop"},
			},
			Usage: providers.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		},
	}
}

// FailWith makes the provider return err on every call until FailTimes or
// Succeed overrides it.
func (m *MockProvider) FailWith(err error) *MockProvider {
	m.failWith = err
	m.failuresRemaining.Store(int64(^uint64(0) >> 1))
	return m
}

// FailTimes makes the provider return err for the next n calls, then succeed.
func (m *MockProvider) FailTimes(n int, err error) *MockProvider {
	m.failWith = err
	m.failuresRemaining.Store(int64(n))
	return m
}

// Succeed clears any scripted failures.
func (m *MockProvider) Succeed() *MockProvider {
	m.failuresRemaining.Store(0)
	return m
}

// RespondWith replaces the canned response.
func (m *MockProvider) RespondWith(resp *providers.GenerationResponse) *MockProvider {
	m.response = resp
	return m
}

// Name returns the mock's name.
func (m *MockProvider) Name() string {
	return m.name
}

// Calls returns the number of Generate invocations so far.
func (m *MockProvider) Calls() int {
	return int(m.calls.Load())
}

// Requests returns a copy of every request seen, in order.
func (m *MockProvider) Requests() []*providers.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*providers.GenerationRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or nil if none were made.
func (m *MockProvider) LastRequest() *providers.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Generate records the request and returns either the scripted failure or
// the canned response echoing the request's model.
func (m *MockProvider) Generate(ctx context.Context, req *providers.GenerationRequest) (*providers.GenerationResponse, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &providers.RequestError{Provider: m.name, Message: "request cancelled", Cause: err}
	}

	if m.failuresRemaining.Load() > 0 {
		m.failuresRemaining.Add(-1)
		return nil, m.failWith
	}

	resp := *m.response
	if req != nil && req.Model != "" {
		resp.Model = req.Model
	}
	return &resp, nil
}
