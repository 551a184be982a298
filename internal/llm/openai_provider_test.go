package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	provider := NewOpenAIProvider("test-api-key")
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.NotNil(t, provider.client)
}

func TestOpenAIProvider_BuildRequestParams(t *testing.T) {
	provider := NewOpenAIProvider("test-key")

	tests := []struct {
		name    string
		request *GenerationRequest
		checks  func(t *testing.T, provider *OpenAIProvider, request *GenerationRequest)
	}{
		{
			name: "basic request with user message",
			request: &GenerationRequest{
				Model:        "gpt-4.1-mini",
				SystemPrompt: "test system prompt",
				InputArray:   UserMessage("test content"),
			},
			checks: func(t *testing.T, provider *OpenAIProvider, request *GenerationRequest) {
				t.Helper()
				params := provider.buildRequestParams(request)
				assert.Equal(t, "gpt-4.1-mini", params.Model)
				assert.Equal(t, "test system prompt", params.Instructions.Value)
				assert.Len(t, params.Input.OfInputItemList, 1)
				assert.Empty(t, params.Reasoning.Effort, "gpt-4.1-mini takes no reasoning parameter")
			},
		},
		{
			name: "invalid items are skipped",
			request: &GenerationRequest{
				Model: "gpt-5-mini",
				InputArray: []map[string]any{
					{"role": "developer", "content": "dev message"},
					{"role": "user"},
				},
			},
			checks: func(t *testing.T, provider *OpenAIProvider, request *GenerationRequest) {
				t.Helper()
				params := provider.buildRequestParams(request)
				assert.Len(t, params.Input.OfInputItemList, 1)
			},
		},
		{
			name: "request with output schema",
			request: &GenerationRequest{
				Model:      "gpt-5-mini",
				InputArray: UserMessage("test"),
				OutputSchema: &OutputSchema{
					Name:   TempoSchemaName,
					Schema: GetTempoOutputSchema(),
				},
			},
			checks: func(t *testing.T, provider *OpenAIProvider, request *GenerationRequest) {
				t.Helper()
				params := provider.buildRequestParams(request)
				require.NotNil(t, params.Text.Format.OfJSONSchema)
				assert.Equal(t, TempoSchemaName, params.Text.Format.OfJSONSchema.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checks(t, provider, tt.request)
		})
	}
}

func TestOpenAIProvider_ReasoningModeMapping(t *testing.T) {
	tests := []struct {
		mode     string
		expected string
	}{
		{"minimal", "minimal"},
		{"min", "minimal"},
		{"low", "low"},
		{"medium", "medium"},
		{"med", "medium"},
		{"high", "high"},
		{"", "low"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(reasoningEffort(tt.mode)))
		})
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp_1",
			"object": "response",
			"created_at": 1700000000,
			"model": "gpt-4.1-mini",
			"status": "completed",
			"output": [{
				"type": "message",
				"id": "msg_1",
				"role": "assistant",
				"status": "completed",
				"content": [{"type": "output_text", "text": "{\"found\":true,\"bpm\":124,\"confidence\":0.8}", "annotations": []}]
			}],
			"usage": {
				"input_tokens": 40,
				"input_tokens_details": {"cached_tokens": 0},
				"output_tokens": 12,
				"output_tokens_details": {"reasoning_tokens": 0},
				"total_tokens": 52
			}
		}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	resp, err := provider.Generate(context.Background(), &GenerationRequest{
		Model:        "gpt-4.1-mini",
		SystemPrompt: "answer with the tempo",
		InputArray:   UserMessage("Daft Punk - Around the World"),
		OutputSchema: &OutputSchema{Name: TempoSchemaName, Schema: GetTempoOutputSchema()},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"found":true,"bpm":124,"confidence":0.8}`, resp.RawOutput)
	assert.Equal(t, int64(52), resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4.1-mini", body["model"])
	assert.Equal(t, "answer with the tempo", body["instructions"])
}

func TestOpenAIProvider_GenerateError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("bad", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	_, err := provider.Generate(context.Background(), &GenerationRequest{Model: "gpt-4.1-mini", InputArray: UserMessage("x")})
	assert.Error(t, err)
}
