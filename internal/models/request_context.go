package models

// ToolResultRecord is one tool call the model made during a run and the text it got back.
type ToolResultRecord struct {
	CallID    string         `json:"call_id,omitempty"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result"`
}

// RequestContext is everything sent to the model in a single run.
// ToolResults only grows; entries keep the order in which the calls happened.
type RequestContext struct {
	SystemPrompt string             `json:"system_prompt"`
	UserRequest  string             `json:"user_request"`
	ToolResults  []ToolResultRecord `json:"tool_results"`
}

func (c *RequestContext) AddToolResult(record ToolResultRecord) {
	c.ToolResults = append(c.ToolResults, record)
}

// Messages renders the context as a transcript: system, user, then one
// assistant tool-call message and one tool message per recorded result.
func (c *RequestContext) Messages() []Message {
	messages := make([]Message, 0, 2+2*len(c.ToolResults))
	messages = append(messages,
		Message{Role: RoleSystem, Content: c.SystemPrompt},
		Message{Role: RoleUser, Content: c.UserRequest},
	)

	for _, r := range c.ToolResults {
		messages = append(messages,
			Message{
				Role: RoleAssistant,
				ToolCalls: []ToolCall{{
					ID:        r.CallID,
					Name:      r.Tool,
					Arguments: r.Arguments,
				}},
			},
			Message{
				Role:       RoleTool,
				Content:    r.Result,
				ToolCallID: r.CallID,
				ToolName:   r.Tool,
			},
		)
	}

	return messages
}
