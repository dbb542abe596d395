package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
)

// DefaultMaxTurns bounds the number of model calls in one run.
const DefaultMaxTurns = 8

// Agent drives the conversation between a ChatProvider and a ToolSet.
// It holds no per-run state and is safe for concurrent use.
type Agent struct {
	provider ChatProvider
	tools    *ToolSet
	model    string
	maxTurns int
}

type AgentOption func(*Agent)

func WithModel(model string) AgentOption {
	return func(a *Agent) {
		a.model = model
	}
}

// WithMaxTurns overrides DefaultMaxTurns. Values below 1 are ignored.
func WithMaxTurns(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

func NewAgent(provider ChatProvider, tools *ToolSet, opts ...AgentOption) *Agent {
	a := &Agent{
		provider: provider,
		tools:    tools,
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunResult is the outcome of a finished run.
type RunResult struct {
	Text      string
	Turns     int
	ToolCalls int
	Usage     *models.TokenUsage
}

// Run sends rc to the model until it answers without tool calls. Tool
// results are appended to rc in the order the calls were made.
func (a *Agent) Run(ctx context.Context, rc *models.RequestContext) (*RunResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	result := &RunResult{
		Usage: &models.TokenUsage{Model: a.model},
	}
	defs := a.tools.Definitions()

	for turn := 1; turn <= a.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug("sending turn to model",
			"turn", turn,
			"model", a.model,
			"tool_results", len(rc.ToolResults))

		resp, err := a.provider.Complete(ctx, ChatRequest{
			Model:        a.model,
			SystemPrompt: rc.SystemPrompt,
			Messages:     rc.Messages(),
			Tools:        defs,
		})
		if err != nil {
			return nil, wrapProviderError(err)
		}

		result.Turns = turn
		result.Usage.Add(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			result.Usage.DurationMs = time.Since(start).Milliseconds()
			if strings.TrimSpace(resp.Text) == "" {
				return nil, domainErrors.ErrAgentNoOutput.WithContext("turns", turn)
			}
			result.Text = resp.Text

			log.Debug("agent finished",
				"turn", turn,
				"tool_calls", result.ToolCalls,
				"duration_ms", result.Usage.DurationMs)
			return result, nil
		}

		for i, call := range resp.ToolCalls {
			if call.ID == "" {
				call.ID = fmt.Sprintf("call_%d_%d", turn, i)
			}

			toolStart := time.Now()
			text, err := a.tools.Invoke(ctx, call.Name, call.Arguments)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				text = fmt.Sprintf("Error: %s", err)
			}

			log.Debug("tool executed",
				"turn", turn,
				"tool", call.Name,
				"duration_ms", time.Since(toolStart).Milliseconds())

			rc.AddToolResult(models.ToolResultRecord{
				CallID:    call.ID,
				Tool:      call.Name,
				Arguments: call.Arguments,
				Result:    text,
			})
			result.ToolCalls++
		}
	}

	return nil, domainErrors.ErrAgentMaxTurns.WithContext("max_turns", a.maxTurns)
}

func wrapProviderError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domainErrors.ErrAIGeneration.WithError(err)
}
