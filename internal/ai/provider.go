package ai

import (
	"context"

	"github.com/thomas-vilte/relnotes/internal/models"
)

// ChatRequest is one turn sent to a model.
type ChatRequest struct {
	Model        string
	SystemPrompt string
	// Messages may start with a system message; providers that take the
	// system prompt separately skip it.
	Messages []models.Message
	Tools    []models.ToolDefinition
}

// ChatResponse is the model's reply to a turn. A reply with tool calls
// asks the host to run them and send the results back.
type ChatResponse struct {
	Text      string
	ToolCalls []models.ToolCall
	Usage     *models.TokenUsage
}

// ChatProvider sends a single turn to a language model.
type ChatProvider interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
