package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpilot/internal/types"
)

var sortTool = []types.ToolDefinition{{
	Name:        "sort_data",
	Description: "Sort rows by a column",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"column": map[string]interface{}{"type": "string"},
			"order":  map[string]interface{}{"type": "string"},
		},
	},
}}

func TestGeminiCompleteWithTools(t *testing.T) {
	t.Run("extracts function call and usage", func(t *testing.T) {
		var gotReq geminiRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"candidates": [{
					"content": {"parts": [
						{"functionCall": {"name": "sort_data", "args": {"column": "sales", "order": "desc"}}}
					], "role": "model"},
					"finishReason": "STOP"
				}],
				"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 5, "totalTokenCount": 17}
			}`))
		}))
		defer server.Close()

		client := NewGeminiClient(Config{APIKey: "test-key", BaseURL: server.URL})
		resp, err := client.CompleteWithTools(context.Background(), "system", "sort by sales", sortTool)
		require.NoError(t, err)

		require.Len(t, resp.ToolCalls, 1)
		assert.Equal(t, "sort_data", resp.ToolCalls[0].Name)
		assert.Equal(t, "sales", resp.ToolCalls[0].Input["column"])
		assert.Equal(t, 17, resp.Usage.TotalTokens)

		require.Len(t, gotReq.Tools, 1)
		require.Len(t, gotReq.Tools[0].FunctionDeclarations, 1)
		assert.Equal(t, "sort_data", gotReq.Tools[0].FunctionDeclarations[0].Name)
		require.NotNil(t, gotReq.SystemInstruction)
	})

	t.Run("status code is preserved in the error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "slow down"}}`))
		}))
		defer server.Close()

		client := NewGeminiClient(Config{APIKey: "test-key", BaseURL: server.URL})
		_, err := client.CompleteWithTools(context.Background(), "", "hi", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("missing API key fails fast", func(t *testing.T) {
		client := NewGeminiClient(Config{})
		_, err := client.CompleteWithTools(context.Background(), "", "hi", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("SetModel changes the endpoint model", func(t *testing.T) {
		client := NewGeminiClient(Config{APIKey: "k"})
		assert.Equal(t, "gemini-2.5-flash", client.Model())
		client.SetModel("gemini-2.5-pro")
		assert.Equal(t, "gemini-2.5-pro", client.Model())
		client.SetModel("")
		assert.Equal(t, "gemini-2.5-pro", client.Model())
	})
}

func TestOpenAICompleteWithTools(t *testing.T) {
	t.Run("decodes JSON-string arguments", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"choices": [{
					"message": {
						"role": "assistant",
						"content": "",
						"tool_calls": [{
							"id": "call_1", "type": "function",
							"function": {"name": "sort_data", "arguments": "{\"column\":\"sales\",\"order\":\"asc\"}"}
						}]
					},
					"finish_reason": "tool_calls"
				}],
				"usage": {"prompt_tokens": 8, "completion_tokens": 3, "total_tokens": 11}
			}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
		resp, err := client.CompleteWithTools(context.Background(), "system", "sort", sortTool)
		require.NoError(t, err)

		require.Len(t, resp.ToolCalls, 1)
		assert.Equal(t, "asc", resp.ToolCalls[0].Input["order"])
		assert.Equal(t, "tool_use", resp.StopReason)
	})

	t.Run("malformed arguments surface an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"choices": [{
					"message": {"role": "assistant", "content": "", "tool_calls": [{
						"id": "call_1", "type": "function",
						"function": {"name": "sort_data", "arguments": "{not json"}
					}]},
					"finish_reason": "tool_calls"
				}]
			}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
		_, err := client.CompleteWithTools(context.Background(), "", "sort", sortTool)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sort_data")
	})
}

func TestFactory(t *testing.T) {
	t.Run("builds known providers", func(t *testing.T) {
		c, err := New(Gemini, Config{APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &GeminiClient{}, c)

		c, err = New(OpenAI, Config{APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &OpenAIClient{}, c)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		_, err := New("anthropic", Config{})
		require.Error(t, err)
	})

	t.Run("env detection prefers gemini", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g")
		t.Setenv("OPENAI_API_KEY", "o")
		name, key, err := DetectFromEnv()
		require.NoError(t, err)
		assert.Equal(t, Gemini, name)
		assert.Equal(t, "g", key)
	})

	t.Run("no keys is an error", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "")
		_, _, err := DetectFromEnv()
		require.Error(t, err)
	})
}
