package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thomas-vilte/relnotes/internal/ai"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
)

var _ ai.ChatProvider = (*Client)(nil)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a minimal HTTP client for OpenAI-compatible chat completions
// APIs (OpenAI, Groq).
type Client struct {
	provider    string
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	httpClient  HTTPClient
}

type Options struct {
	// Provider names the service in logs and errors.
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient HTTPClient
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.WithContext("provider", opts.Provider)
	}
	if opts.BaseURL == "" {
		return nil, domainErrors.ErrInvalidConfig.WithContext("provider", opts.Provider).
			WithSuggestion("Set base_url in the configuration file")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	return &Client{
		provider:    opts.Provider,
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       opts.Model,
		temperature: 0.3,
		httpClient:  httpClient,
	}, nil
}

func (c *Client) GetModelName() string {
	return c.model
}

func (c *Client) GetProviderName() string {
	return c.provider
}

type chatFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  *models.ToolParameters `json:"parameters,omitempty"`
	// Arguments is a JSON-encoded object.
	Arguments string `json:"arguments,omitempty"`
}

type chatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) Complete(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages, err := toMessages(req.SystemPrompt, req.Messages)
	if err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(err)
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Tools:       toTools(req.Tools),
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("marshal %s payload: %w", c.provider, err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("call %s: %w", c.provider, err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("read %s response: %w", c.provider, err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.statusError(resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("decode %s response: %w", c.provider, err))
	}
	if len(parsed.Choices) == 0 {
		return nil, domainErrors.ErrAIGeneration.WithError(fmt.Errorf("%s returned no choices", c.provider))
	}

	msg := parsed.Choices[0].Message
	out := &ai.ChatResponse{}
	if parsed.Usage != nil {
		out.Usage = &models.TokenUsage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
			Model:        model,
			DurationMs:   time.Since(start).Milliseconds(),
		}
	}

	for _, call := range msg.ToolCalls {
		args := map[string]any{}
		if strings.TrimSpace(call.Function.Arguments) != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				// handed to the tool as-is; it reports invalid input back to the model
				args = map[string]any{"_raw": call.Function.Arguments}
			}
		}
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	if len(out.ToolCalls) == 0 && msg.Content != nil {
		out.Text = *msg.Content
	}

	logger.Debug(ctx, "chat completion finished",
		"provider", c.provider,
		"model", model,
		"tool_calls", len(out.ToolCalls),
		"duration_ms", time.Since(start).Milliseconds())

	return out, nil
}

func (c *Client) statusError(status int, body []byte) error {
	var parsed errorResponse
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	err := fmt.Errorf("%s responded with status %d: %s", c.provider, status, message)

	switch status {
	case http.StatusTooManyRequests:
		return domainErrors.ErrQuotaExceeded.WithError(err).WithContext("provider", c.provider)
	case http.StatusUnauthorized, http.StatusForbidden:
		return domainErrors.ErrAPIKeyMissing.WithError(err).
			WithContext("provider", c.provider).
			WithSuggestion("Check that the API key is valid")
	default:
		return domainErrors.ErrAIGeneration.WithError(err).WithContext("status", status)
	}
}

func toMessages(systemPrompt string, messages []models.Message) ([]chatMessage, error) {
	out := make([]chatMessage, 0, len(messages)+1)
	if systemPrompt != "" && (len(messages) == 0 || messages[0].Role != models.RoleSystem) {
		out = append(out, chatMessage{Role: string(models.RoleSystem), Content: strPtr(systemPrompt)})
	}

	for _, m := range messages {
		msg := chatMessage{Role: string(m.Role), ToolCallID: m.ToolCallID}
		if m.Content != "" || len(m.ToolCalls) == 0 {
			msg.Content = strPtr(m.Content)
		}
		for _, call := range m.ToolCalls {
			arguments := call.Arguments
			if arguments == nil {
				arguments = map[string]any{}
			}
			args, err := json.Marshal(arguments)
			if err != nil {
				return nil, fmt.Errorf("encode arguments of %s: %w", call.Name, err)
			}
			msg.ToolCalls = append(msg.ToolCalls, chatToolCall{
				ID:   call.ID,
				Type: "function",
				Function: chatFunction{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		out = append(out, msg)
	}
	return out, nil
}

func toTools(defs []models.ToolDefinition) []chatTool {
	if len(defs) == 0 {
		return nil
	}
	tools := make([]chatTool, 0, len(defs))
	for _, d := range defs {
		params := d.Parameters
		tools = append(tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  &params,
			},
		})
	}
	return tools
}

func strPtr(s string) *string {
	return &s
}
