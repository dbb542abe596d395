package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/relnotes/internal/models"
)

func steppingClock(step time.Duration) func() time.Time {
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

func TestTrackingProvider_StampsUsage(t *testing.T) {
	inner := new(MockChatProvider)
	inner.On("Complete", mock.Anything, mock.Anything).Return(&ChatResponse{
		Text:  "done",
		Usage: &models.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil)

	wrapper := NewTrackingProvider(inner, "groq", "gpt-oss-120b")
	wrapper.now = steppingClock(250 * time.Millisecond)

	resp, err := wrapper.Complete(context.Background(), ChatRequest{Model: "gpt-oss-120b"})

	require.NoError(t, err)
	assert.Equal(t, "done", resp.Text)
	assert.Equal(t, "gpt-oss-120b", resp.Usage.Model)
	assert.Equal(t, int64(250), resp.Usage.DurationMs)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Same(t, inner, wrapper.Unwrap())
}

func TestTrackingProvider_MissingUsage(t *testing.T) {
	inner := new(MockChatProvider)
	inner.On("Complete", mock.Anything, mock.Anything).Return(&ChatResponse{Text: "done"}, nil)

	resp, err := NewTrackingProvider(inner, "ollama", "llama3.1").Complete(context.Background(), ChatRequest{})

	require.NoError(t, err)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, "llama3.1", resp.Usage.Model)
	assert.Zero(t, resp.Usage.TotalTokens)
}

func TestTrackingProvider_PassesErrorsThrough(t *testing.T) {
	inner := new(MockChatProvider)
	boom := errors.New("boom")
	inner.On("Complete", mock.Anything, mock.Anything).Return(nil, boom)

	resp, err := NewTrackingProvider(inner, "gemini", "gemini-2.5-flash").Complete(context.Background(), ChatRequest{})

	assert.Nil(t, resp)
	assert.Same(t, boom, err)
}
