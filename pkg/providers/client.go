package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Default client settings. The generation timeout is generous because large
// completions routinely take over a minute on slower models.
const (
	DefaultTimeout             = 120 * time.Second
	DefaultMaxRetries          = 2
	DefaultRetryBackoff        = 500 * time.Millisecond
	DefaultMaxIdleConns        = 32
	DefaultMaxIdleConnsPerHost = 8
	DefaultIdleConnTimeout     = 90 * time.Second
)

// Environment variables consulted by FromEnv.
const (
	EnvAPIBase      = "TASKFORGE_API_BASE"
	EnvAPIKey       = "TASKFORGE_API_KEY"
	EnvDefaultModel = "TASKFORGE_DEFAULT_MODEL"
)

// ClientConfig configures an OpenAI-compatible chat completions client.
type ClientConfig struct {
	// Name identifies the provider in logs and errors (e.g. "openrouter").
	Name string

	// BaseURL is the API root, e.g. "https://openrouter.ai/api/v1".
	// The client appends "/chat/completions".
	BaseURL string

	// APIKey is sent as a bearer token on every request.
	APIKey string

	// DefaultModel is substituted when a request leaves Model empty.
	DefaultModel string

	// Timeout bounds a single HTTP round trip. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after a transient
	// failure. Zero means DefaultMaxRetries; a negative value disables
	// retries entirely.
	MaxRetries int

	// RetryBackoff is the base delay for exponential backoff between
	// attempts. Zero means DefaultRetryBackoff.
	RetryBackoff time.Duration

	// Connection pool tuning. Zero values take the package defaults.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Client is an OpenAI-compatible chat completions provider.
// It implements the Provider interface and is safe for concurrent use.
type Client struct {
	config ClientConfig
	client *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a provider client for an OpenAI-compatible endpoint.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Name == "" {
		config.Name = "openrouter"
	}
	if config.BaseURL == "" {
		return nil, &ConfigError{Field: "base_url", Message: "must not be empty"}
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &ConfigError{Field: "base_url", Message: fmt.Sprintf("invalid URL %q", config.BaseURL)}
	}
	if config.APIKey == "" {
		return nil, &ConfigError{Field: "api_key", Message: "must not be empty"}
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultRetryBackoff
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = DefaultMaxIdleConns
	}
	if config.MaxIdleConnsPerHost <= 0 {
		config.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if config.IdleConnTimeout <= 0 {
		config.IdleConnTimeout = DefaultIdleConnTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}, nil
}

// FromEnv creates a client from TASKFORGE_API_BASE, TASKFORGE_API_KEY and
// TASKFORGE_DEFAULT_MODEL.
func FromEnv() (*Client, error) {
	base := os.Getenv(EnvAPIBase)
	if base == "" {
		return nil, &ConfigError{Field: "base_url", Message: EnvAPIBase + " is not set"}
	}
	key := os.Getenv(EnvAPIKey)
	if key == "" {
		return nil, &ConfigError{Field: "api_key", Message: EnvAPIKey + " is not set"}
	}
	return NewClient(ClientConfig{
		BaseURL:      base,
		APIKey:       key,
		DefaultModel: os.Getenv(EnvDefaultModel),
	})
}

// Name returns the provider's configured name.
func (c *Client) Name() string {
	return c.config.Name
}

// DefaultModel returns the model substituted for requests without one.
func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

// Close releases idle connections held by the client's pool.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// completionRequest is the wire format for the chat completions endpoint.
type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
}

// apiErrorBody is the error envelope returned by OpenAI-compatible servers.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Generate sends a chat completion request, retrying transient failures with
// exponential backoff. The retry loop respects context cancellation.
func (c *Client) Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, &RequestError{Provider: c.config.Name, Message: "request has no messages"}
	}

	model := req.Model
	if model == "" {
		model = c.config.DefaultModel
	}
	if model == "" {
		return nil, &ConfigError{Field: "default_model", Message: "no model in request and no default configured"}
	}

	body, err := json.Marshal(completionRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	})
	if err != nil {
		return nil, &RequestError{Provider: c.config.Name, Message: "failed to encode request", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.config.RetryBackoff
			slog.Debug("retrying generation request",
				"provider", c.config.Name,
				"model", model,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, &RequestError{Provider: c.config.Name, Message: "request cancelled during backoff", Cause: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		resp, err := c.doOnce(ctx, body, model)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		slog.Warn("generation request failed, will retry",
			"provider", c.config.Name,
			"model", model,
			"attempt", attempt+1,
			"error", err,
		)
	}
	return nil, lastErr
}

// doOnce performs a single round trip and classifies any failure.
func (c *Client) doOnce(ctx context.Context, body []byte, model string) (*GenerationResponse, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Provider: c.config.Name, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Provider: c.config.Name, Message: "connection failed while reading response", Cause: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			Provider:   c.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    errorMessageFrom(respBody),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Provider: c.config.Name,
			Code:     resp.StatusCode,
			Message:  errorMessageFrom(respBody),
		}
	}

	var out GenerationResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ParseError{
			Provider:    c.config.Name,
			RawResponse: string(respBody),
			Cause:       err,
		}
	}
	if out.Model == "" {
		out.Model = model
	}
	return &out, nil
}

// classifyTransportError maps transport failures onto RequestError with a
// message that keeps the transient classification intact (see IsTransient).
func (c *Client) classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{Provider: c.config.Name, Message: "request timeout", Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Provider: c.config.Name, Message: "request timeout", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &RequestError{Provider: c.config.Name, Message: "request cancelled", Cause: err}
	}
	return &RequestError{Provider: c.config.Name, Message: "connection failed", Cause: err}
}

// errorMessageFrom extracts the message from an OpenAI-style error envelope,
// falling back to the raw body when the envelope is absent or malformed.
func errorMessageFrom(body []byte) string {
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date form. Unparseable values yield zero.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}
