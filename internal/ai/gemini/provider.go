package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thomas-vilte/relnotes/internal/ai"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
	"google.golang.org/genai"
)

var _ ai.ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider answers agent turns with the Gemini API.
type GeminiProvider struct {
	Client *genai.Client
	model  string
}

type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeminiProvider(ctx context.Context, opts Options) (*GeminiProvider, error) {
	if opts.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.WithContext("provider", "gemini")
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("error creating gemini client: %w", err))
	}

	return &GeminiProvider{
		Client: client,
		model:  opts.Model,
	}, nil
}

func (g *GeminiProvider) GetModelName() string {
	return g.model
}

func (g *GeminiProvider) GetProviderName() string {
	return "gemini"
}

func (g *GeminiProvider) Complete(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	start := time.Now()
	resp, err := g.Client.Models.GenerateContent(ctx, model,
		toContents(req.Messages),
		GetGenerateConfig(req.SystemPrompt, toFunctionDeclarations(req.Tools)))
	if err != nil {
		return nil, classifyError(err)
	}

	out := &ai.ChatResponse{
		Usage: extractUsage(resp),
	}
	if out.Usage != nil {
		out.Usage.Model = model
		out.Usage.DurationMs = time.Since(start).Milliseconds()
	}

	for _, call := range resp.FunctionCalls() {
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Args,
		})
	}
	if len(out.ToolCalls) == 0 {
		out.Text = resp.Text()
	}

	logger.Debug(ctx, "gemini turn completed",
		"model", model,
		"tool_calls", len(out.ToolCalls),
		"duration_ms", time.Since(start).Milliseconds())

	return out, nil
}

func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota") || strings.Contains(msg, "429") {
		return domainErrors.ErrQuotaExceeded.WithError(err)
	}
	return domainErrors.ErrAIGeneration.WithError(err)
}
