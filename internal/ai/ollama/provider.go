package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/thomas-vilte/relnotes/internal/ai"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
)

var _ ai.ChatProvider = (*OllamaProvider)(nil)

// OllamaProvider answers agent turns with a local Ollama server.
type OllamaProvider struct {
	client      *api.Client
	model       string
	temperature float64
}

type Options struct {
	Model string
	// Host overrides OLLAMA_HOST, e.g. http://localhost:11434.
	Host       string
	HTTPClient *http.Client
}

func NewOllamaProvider(opts Options) (*OllamaProvider, error) {
	if opts.Model == "" {
		return nil, domainErrors.ErrModelMissing.WithContext("provider", "ollama")
	}

	var client *api.Client
	if opts.Host != "" {
		base, err := url.Parse(opts.Host)
		if err != nil {
			return nil, domainErrors.ErrInvalidConfig.WithError(err).WithContext("ollama_host", opts.Host)
		}
		httpClient := opts.HTTPClient
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		client = api.NewClient(base, httpClient)
	} else {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, domainErrors.ErrInvalidConfig.WithError(fmt.Errorf("failed to create Ollama client: %w", err))
		}
		client = c
	}

	return &OllamaProvider{
		client:      client,
		model:       opts.Model,
		temperature: 0.3,
	}, nil
}

func (p *OllamaProvider) GetModelName() string {
	return p.model
}

func (p *OllamaProvider) GetProviderName() string {
	return "ollama"
}

func (p *OllamaProvider) Complete(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	tools, err := toTools(req.Tools)
	if err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(err)
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: toMessages(req.SystemPrompt, req.Messages),
		Tools:    tools,
		Stream:   &stream,
		Options:  map[string]any{"temperature": p.temperature},
	}

	start := time.Now()
	var final api.ChatResponse
	var content string
	err = p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		final = resp
		return nil
	})
	if err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("ollama chat: %w", err))
	}

	out := &ai.ChatResponse{
		Usage: &models.TokenUsage{
			InputTokens:  final.PromptEvalCount,
			OutputTokens: final.EvalCount,
			TotalTokens:  final.PromptEvalCount + final.EvalCount,
			Model:        model,
			DurationMs:   time.Since(start).Milliseconds(),
		},
	}

	for i, call := range final.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:        fmt.Sprintf("ollama_%d", i),
			Name:      call.Function.Name,
			Arguments: map[string]any(call.Function.Arguments),
		})
	}
	if len(out.ToolCalls) == 0 {
		out.Text = content
	}

	logger.Debug(ctx, "ollama turn completed",
		"model", model,
		"tool_calls", len(out.ToolCalls),
		"duration_ms", out.Usage.DurationMs)

	return out, nil
}

// toMessages converts the transcript, putting the system prompt first when
// the transcript does not already carry one.
func toMessages(systemPrompt string, messages []models.Message) []api.Message {
	out := make([]api.Message, 0, len(messages)+1)
	if systemPrompt != "" && (len(messages) == 0 || messages[0].Role != models.RoleSystem) {
		out = append(out, api.Message{Role: string(models.RoleSystem), Content: systemPrompt})
	}

	for _, m := range messages {
		msg := api.Message{Role: string(m.Role), Content: m.Content}
		for _, call := range m.ToolCalls {
			var tc api.ToolCall
			tc.Function.Name = call.Name
			tc.Function.Arguments = call.Arguments
			msg.ToolCalls = append(msg.ToolCalls, tc)
		}
		out = append(out, msg)
	}
	return out
}

type toolSpec struct {
	Type     string                `json:"type"`
	Function models.ToolDefinition `json:"function"`
}

// toTools goes through JSON so the tool schema matches whatever shape the
// api package declares for it.
func toTools(defs []models.ToolDefinition) (api.Tools, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	specs := make([]toolSpec, 0, len(defs))
	for _, d := range defs {
		specs = append(specs, toolSpec{Type: "function", Function: d})
	}

	raw, err := json.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("encode tools: %w", err)
	}

	var tools api.Tools
	if err := json.Unmarshal(raw, &tools); err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}
	return tools, nil
}
