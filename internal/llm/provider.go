package llm

import (
	"context"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Generate sends one request and returns the model's text output.
	// When OutputSchema is set the provider MUST enforce it so the text is valid JSON.
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	InputArray    []map[string]any
	ReasoningMode string
	SystemPrompt  string
	// Structured output schema, optional
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// Usage is the token accounting of one call
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput string `json:"-"` // text output, JSON when OutputSchema was set
	Model     string `json:"model"`
	Usage     Usage  `json:"usage"`
}

// UserMessage builds a single-item input array
func UserMessage(content string) []map[string]any {
	return []map[string]any{{"role": userRole, "content": content}}
}
