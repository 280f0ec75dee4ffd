package providers

// Message represents a single message in a conversation.
// It matches the OpenAI chat-completions wire format.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SystemMessage creates a message with the system role.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a message with the user role.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates a message with the assistant role.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// GenerationRequest represents a text generation request.
// A request is immutable once constructed; the router clones it with a
// different model via WithModel for each fallback attempt.
type GenerationRequest struct {
	// Model is the target model identifier. Empty means "use the
	// router's (or the provider's default) choice".
	Model string `json:"model"`

	// Messages is the ordered conversation history.
	Messages []Message `json:"messages"`

	// Temperature controls sampling randomness (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`
}

// NewGenerationRequest creates a generation request with default sampling
// parameters.
func NewGenerationRequest(model string, messages []Message) *GenerationRequest {
	return &GenerationRequest{
		Model:    model,
		Messages: messages,
	}
}

// WithTemperature returns a copy of the request with the temperature set.
func (r *GenerationRequest) WithTemperature(temperature float64) *GenerationRequest {
	req := r.clone()
	req.Temperature = &temperature
	return req
}

// WithMaxTokens returns a copy of the request with max tokens set.
func (r *GenerationRequest) WithMaxTokens(maxTokens int) *GenerationRequest {
	req := r.clone()
	req.MaxTokens = &maxTokens
	return req
}

// WithTopP returns a copy of the request with top_p set.
func (r *GenerationRequest) WithTopP(topP float64) *GenerationRequest {
	req := r.clone()
	req.TopP = &topP
	return req
}

// WithModel returns a copy of the request targeting a different model.
// The message slice is shared, not copied; messages are never mutated.
func (r *GenerationRequest) WithModel(model string) *GenerationRequest {
	req := r.clone()
	req.Model = model
	return req
}

func (r *GenerationRequest) clone() *GenerationRequest {
	req := *r
	return &req
}

// GenerationResponse represents a completed generation.
type GenerationResponse struct {
	// ID is the unique response identifier assigned by the provider.
	ID string `json:"id"`

	// Model is the model that actually served the request.
	Model string `json:"model"`

	// Choices is the ordered list of generated completions.
	Choices []Choice `json:"choices"`

	// Usage contains the token accounting for the call.
	Usage Usage `json:"usage"`
}

// FirstContent returns the content of the first choice.
// The second return value is false when the response has no choices.
func (r *GenerationResponse) FirstContent() (string, bool) {
	if len(r.Choices) == 0 {
		return "", false
	}
	return r.Choices[0].Message.Content, true
}

// Choice is a single generated completion within a response.
type Choice struct {
	// Index of this choice in the response.
	Index int `json:"index"`

	// Message is the generated message.
	Message Message `json:"message"`

	// FinishReason indicates why generation stopped (stop, length, ...).
	FinishReason string `json:"finish_reason"`
}

// Usage tracks token consumption for a single call.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens generated.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is prompt plus completion tokens.
	TotalTokens int `json:"total_tokens"`
}
