package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func successBody(model, content string) string {
	resp := GenerationResponse{
		ID:    "gen-123",
		Model: model,
		Choices: []Choice{
			{Index: 0, Message: AssistantMessage(content), FinishReason: "stop"},
		},
		Usage: Usage{PromptTokens: 12, CompletionTokens: 34, TotalTokens: 46},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestClient(t *testing.T, serverURL string, mutate func(*ClientConfig)) *Client {
	t.Helper()
	cfg := ClientConfig{
		Name:         "testprovider",
		BaseURL:      serverURL,
		APIKey:       "test-key",
		DefaultModel: "test/default-model",
		MaxRetries:   -1,
		RetryBackoff: time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientGenerateSuccess(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(successBody("test/model-a", "hello there")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	req := NewGenerationRequest("test/model-a", []Message{
		SystemMessage("you are a helpful assistant"),
		UserMessage("say hello"),
	}).WithTemperature(0.7)

	resp, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if gotBody.Model != "test/model-a" {
		t.Errorf("sent model = %q, want test/model-a", gotBody.Model)
	}
	if gotBody.Temperature == nil || *gotBody.Temperature != 0.7 {
		t.Errorf("sent temperature = %v, want 0.7", gotBody.Temperature)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != RoleSystem {
		t.Errorf("sent messages = %+v", gotBody.Messages)
	}

	content, ok := resp.FirstContent()
	if !ok || content != "hello there" {
		t.Errorf("FirstContent = %q, %v", content, ok)
	}
	if resp.Usage.TotalTokens != 46 {
		t.Errorf("TotalTokens = %d, want 46", resp.Usage.TotalTokens)
	}
}

func TestClientDefaultModelSubstitution(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body completionRequest
		json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Write([]byte(successBody(body.Model, "ok")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	req := NewGenerationRequest("", []Message{UserMessage("hi")})

	if _, err := client.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotModel != "test/default-model" {
		t.Errorf("sent model = %q, want the configured default", gotModel)
	}
}

func TestClientRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded","code":429}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	_, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected *RateLimitError, got %T: %v", err, err)
	}
	if rateErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %s, want 7s", rateErr.RetryAfter)
	}
	if rateErr.Message != "slow down" {
		t.Errorf("Message = %q, want the envelope message", rateErr.Message)
	}
}

func TestClientAPIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error","code":"model_not_found"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	_, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != http.StatusBadRequest {
		t.Errorf("Code = %d, want 400", apiErr.Code)
	}
	if apiErr.Message != "model not found" {
		t.Errorf("Message = %q, want the envelope message", apiErr.Message)
	}
	if IsTransient(err) {
		t.Error("a 400 must not be classified transient")
	}
}

func TestClientAPIErrorRawFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	_, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("Message = %q, want the raw body", apiErr.Message)
	}
	if !IsTransient(err) {
		t.Error("a 502 must be classified transient")
	}
}

func TestClientRetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error","code":503}}`))
			return
		}
		w.Write([]byte(successBody("m", "finally")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *ClientConfig) {
		cfg.MaxRetries = 2
	})

	resp, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
	if content, _ := resp.FirstContent(); content != "finally" {
		t.Errorf("FirstContent = %q, want finally", content)
	}
}

func TestClientDoesNotRetryPermanentErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"auth_error","code":401}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *ClientConfig) {
		cfg.MaxRetries = 3
	})

	_, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 *APIError, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1 (no retries)", got)
	}
}

func TestClientParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("certainly not JSON"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)
	_, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.RawResponse != "certainly not JSON" {
		t.Errorf("RawResponse = %q", parseErr.RawResponse)
	}
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(successBody("m", "late")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *ClientConfig) {
		cfg.Timeout = 20 * time.Millisecond
	})

	_, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if !IsTransient(err) {
		t.Errorf("timeout must be classified transient, message = %q", reqErr.Message)
	}
}

func TestClientConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url, nil)
	_, err := client.Generate(context.Background(), NewGenerationRequest("m", []Message{UserMessage("hi")}))

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if !IsTransient(err) {
		t.Errorf("connection failure must be classified transient, message = %q", reqErr.Message)
	}
}

func TestClientEmptyRequest(t *testing.T) {
	client := newTestClient(t, "http://localhost:0", nil)
	_, err := client.Generate(context.Background(), NewGenerationRequest("m", nil))

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError for empty messages, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    ClientConfig
		wantField string
	}{
		{
			name:      "missing base url",
			config:    ClientConfig{APIKey: "k"},
			wantField: "base_url",
		},
		{
			name:      "relative base url",
			config:    ClientConfig{BaseURL: "openrouter.ai/api", APIKey: "k"},
			wantField: "base_url",
		},
		{
			name:      "missing api key",
			config:    ClientConfig{BaseURL: "https://openrouter.ai/api/v1"},
			wantField: "api_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvAPIBase, "https://openrouter.ai/api/v1")
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvDefaultModel, "env/model")

	client, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if client.DefaultModel() != "env/model" {
		t.Errorf("DefaultModel = %q, want env/model", client.DefaultModel())
	}
}

func TestFromEnvMissingKey(t *testing.T) {
	t.Setenv(EnvAPIBase, "https://openrouter.ai/api/v1")
	t.Setenv(EnvAPIKey, "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error when the API key env var is unset")
	}
}
