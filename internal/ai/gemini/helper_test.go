package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/relnotes/internal/models"
	"google.golang.org/genai"
)

func TestExtractUsage(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		assert.Nil(t, extractUsage(nil))
	})

	t.Run("nil UsageMetadata", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{}
		assert.Nil(t, extractUsage(resp))
	})

	t.Run("valid UsageMetadata", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 20,
				TotalTokenCount:      30,
			},
		}
		usage := extractUsage(resp)
		assert.NotNil(t, usage)
		assert.Equal(t, 10, usage.InputTokens)
		assert.Equal(t, 20, usage.OutputTokens)
		assert.Equal(t, 30, usage.TotalTokens)
	})
}

func TestGetGenerateConfig(t *testing.T) {
	t.Run("with system prompt", func(t *testing.T) {
		cfg := GetGenerateConfig("be brief", nil)
		assert.Equal(t, float32(0.3), *cfg.Temperature)
		require.NotNil(t, cfg.SystemInstruction)
		assert.Equal(t, "be brief", cfg.SystemInstruction.Parts[0].Text)
	})

	t.Run("without system prompt", func(t *testing.T) {
		cfg := GetGenerateConfig("", nil)
		assert.Nil(t, cfg.SystemInstruction)
	})
}

func TestToFunctionDeclarations(t *testing.T) {
	assert.Nil(t, toFunctionDeclarations(nil))

	tools := toFunctionDeclarations([]models.ToolDefinition{{
		Name:        "get_git_commits",
		Description: "Fetch history",
		Parameters: models.ToolParameters{
			Type: "object",
			Properties: map[string]models.ToolProperty{
				"directory":   {Type: "string", Description: "repo"},
				"max_commits": {Type: "integer"},
				"weird":       {Type: "unknown"},
			},
			Required: []string{"directory"},
		},
	}})

	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)
	decl := tools[0].FunctionDeclarations[0]
	assert.Equal(t, "get_git_commits", decl.Name)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["directory"].Type)
	assert.Equal(t, genai.TypeInteger, decl.Parameters.Properties["max_commits"].Type)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["weird"].Type)
	assert.Equal(t, []string{"directory"}, decl.Parameters.Required)
}

func TestToContents(t *testing.T) {
	rc := &models.RequestContext{SystemPrompt: "sys", UserRequest: "generate"}
	rc.AddToolResult(models.ToolResultRecord{
		CallID:    "c1",
		Tool:      "get_git_commits",
		Arguments: map[string]any{"directory": "/repo"},
		Result:    "Found 1 commits:\nabc fix",
	})

	contents := toContents(rc.Messages())

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "generate", contents[0].Parts[0].Text)

	assert.Equal(t, "model", contents[1].Role)
	require.NotNil(t, contents[1].Parts[0].FunctionCall)
	assert.Equal(t, "get_git_commits", contents[1].Parts[0].FunctionCall.Name)
	assert.Equal(t, "/repo", contents[1].Parts[0].FunctionCall.Args["directory"])

	assert.Equal(t, "user", contents[2].Role)
	require.NotNil(t, contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "get_git_commits", contents[2].Parts[0].FunctionResponse.Name)
	assert.Equal(t, "Found 1 commits:\nabc fix", contents[2].Parts[0].FunctionResponse.Response["output"])
}
