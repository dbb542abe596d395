package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_Messages(t *testing.T) {
	rc := &RequestContext{SystemPrompt: "sys", UserRequest: "user"}

	msgs := rc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: RoleSystem, Content: "sys"}, msgs[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "user"}, msgs[1])

	rc.AddToolResult(ToolResultRecord{CallID: "1", Tool: "get_git_commits", Arguments: map[string]any{"directory": "/r"}, Result: "first"})
	rc.AddToolResult(ToolResultRecord{CallID: "2", Tool: "get_git_commits", Result: "second"})

	msgs = rc.Messages()
	require.Len(t, msgs, 6)

	assert.Equal(t, RoleAssistant, msgs[2].Role)
	require.Len(t, msgs[2].ToolCalls, 1)
	assert.Equal(t, "1", msgs[2].ToolCalls[0].ID)
	assert.Equal(t, "/r", msgs[2].ToolCalls[0].Arguments["directory"])

	assert.Equal(t, RoleTool, msgs[3].Role)
	assert.Equal(t, "first", msgs[3].Content)
	assert.Equal(t, "1", msgs[3].ToolCallID)
	assert.Equal(t, "get_git_commits", msgs[3].ToolName)

	assert.Equal(t, "second", msgs[5].Content)
	assert.Equal(t, "2", msgs[5].ToolCallID)
}

func TestRequestContext_AddToolResultKeepsEarlierEntries(t *testing.T) {
	rc := &RequestContext{}
	for _, r := range []string{"a", "b", "c"} {
		rc.AddToolResult(ToolResultRecord{Tool: "t", Result: r})
	}

	results := make([]string, 0, len(rc.ToolResults))
	for _, r := range rc.ToolResults {
		results = append(results, r.Result)
	}
	assert.Equal(t, []string{"a", "b", "c"}, results)
}

func TestTokenUsage_Add(t *testing.T) {
	total := &TokenUsage{}
	total.Add(&TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	total.Add(nil)
	total.Add(&TokenUsage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3})

	assert.Equal(t, 11, total.InputTokens)
	assert.Equal(t, 7, total.OutputTokens)
	assert.Equal(t, 18, total.TotalTokens)
}
