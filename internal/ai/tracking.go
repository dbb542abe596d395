package ai

import (
	"context"
	"time"

	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
)

// TrackingProvider wraps a ChatProvider and records every call: it logs the
// tokens spent and the latency, and tags the usage with the model name.
type TrackingProvider struct {
	provider ChatProvider
	name     string
	model    string
	now      func() time.Time
}

func NewTrackingProvider(provider ChatProvider, name, model string) *TrackingProvider {
	return &TrackingProvider{
		provider: provider,
		name:     name,
		model:    model,
		now:      time.Now,
	}
}

// Unwrap returns the wrapped provider.
func (w *TrackingProvider) Unwrap() ChatProvider {
	return w.provider
}

func (w *TrackingProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := w.now()

	resp, err := w.provider.Complete(ctx, req)
	durationMs := w.now().Sub(start).Milliseconds()
	if err != nil {
		logger.Debug(ctx, "provider call failed",
			"provider", w.name,
			"model", w.model,
			"duration_ms", durationMs,
			"error", err)
		return nil, err
	}

	if resp.Usage == nil {
		resp.Usage = &models.TokenUsage{}
	}
	if resp.Usage.Model == "" {
		resp.Usage.Model = w.model
	}
	resp.Usage.DurationMs = durationMs

	logger.Debug(ctx, "provider call completed",
		"provider", w.name,
		"model", w.model,
		"messages", len(req.Messages),
		"tool_calls", len(resp.ToolCalls),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration_ms", durationMs)
	return resp, nil
}
