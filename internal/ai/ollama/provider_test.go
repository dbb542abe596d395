package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/relnotes/internal/ai"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/models"
)

type capturedChat struct {
	Model    string           `json:"model"`
	Stream   *bool            `json:"stream"`
	Messages []map[string]any `json:"messages"`
	Tools    []map[string]any `json:"tools"`
}

func newTestProvider(t *testing.T, reply string, captured *capturedChat) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(Options{Model: "llama3.1", Host: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)
	return p
}

func testRequest() ai.ChatRequest {
	rc := ai.NewRequestContext("/repo", "", 50, "en")
	rc.AddToolResult(models.ToolResultRecord{
		CallID:    "ollama_0",
		Tool:      "get_git_commits",
		Arguments: map[string]any{"directory": "/repo"},
		Result:    "Found 1 commits:\nabc1234 fix bug",
	})
	return ai.ChatRequest{
		SystemPrompt: rc.SystemPrompt,
		Messages:     rc.Messages(),
		Tools: []models.ToolDefinition{{
			Name:        "get_git_commits",
			Description: "Fetch history",
			Parameters: models.ToolParameters{
				Type: "object",
				Properties: map[string]models.ToolProperty{
					"directory": {Type: "string", Description: "Absolute path"},
				},
				Required: []string{"directory"},
			},
		}},
	}
}

func TestNewOllamaProvider(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		_, err := NewOllamaProvider(Options{})
		assert.True(t, errors.Is(err, domainErrors.ErrModelMissing))
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("OLLAMA_HOST", "http://127.0.0.1:11434")
		p, err := NewOllamaProvider(Options{Model: "llama3.1"})
		require.NoError(t, err)
		assert.Equal(t, "ollama", p.GetProviderName())
		assert.Equal(t, "llama3.1", p.GetModelName())
	})
}

func TestOllamaProvider_Complete_ToolCall(t *testing.T) {
	// Arrange
	var captured capturedChat
	p := newTestProvider(t, `{"model":"llama3.1","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"get_git_commits","arguments":{"directory":"/repo","max_commits":20}}}]},"done":true,"prompt_eval_count":30,"eval_count":5}`, &captured)

	// Act
	resp, err := p.Complete(context.Background(), testRequest())

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_git_commits", resp.ToolCalls[0].Name)
	assert.Equal(t, "/repo", resp.ToolCalls[0].Arguments["directory"])
	assert.Equal(t, float64(20), resp.ToolCalls[0].Arguments["max_commits"])
	assert.Empty(t, resp.Text)
	assert.Equal(t, 35, resp.Usage.TotalTokens)

	assert.Equal(t, "llama3.1", captured.Model)
	require.NotNil(t, captured.Stream)
	assert.False(t, *captured.Stream)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0]["role"])
	assert.Equal(t, "user", captured.Messages[1]["role"])
	assert.Equal(t, "assistant", captured.Messages[2]["role"])
	assert.NotEmpty(t, captured.Messages[2]["tool_calls"])
	assert.Equal(t, "tool", captured.Messages[3]["role"])
	assert.Equal(t, "Found 1 commits:\nabc1234 fix bug", captured.Messages[3]["content"])
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "function", captured.Tools[0]["type"])
}

func TestOllamaProvider_Complete_Text(t *testing.T) {
	p := newTestProvider(t, `{"model":"llama3.1","message":{"role":"assistant","content":"## Fixes\n- fix bug"},"done":true}`, nil)

	resp, err := p.Complete(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "## Fixes\n- fix bug", resp.Text)
	assert.Empty(t, resp.ToolCalls)
}

func TestOllamaProvider_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama3.1' not found"}`))
	}))
	defer server.Close()

	p, err := NewOllamaProvider(Options{Model: "llama3.1", Host: server.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), testRequest())

	assert.True(t, errors.Is(err, domainErrors.ErrAIGeneration))
	assert.Contains(t, err.Error(), "not found")
}

func TestToMessages_AddsSystemPromptWhenMissing(t *testing.T) {
	msgs := toMessages("sys", []models.Message{{Role: models.RoleUser, Content: "hi"}})

	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "sys", msgs[0].Content)
}

func TestToTools_Empty(t *testing.T) {
	tools, err := toTools(nil)
	require.NoError(t, err)
	assert.Nil(t, tools)
}
