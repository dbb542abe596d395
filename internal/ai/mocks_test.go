package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/relnotes/internal/models"
)

type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*ChatResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTool struct {
	mock.Mock
	name string
}

func (m *MockTool) Name() string {
	return m.name
}

func (m *MockTool) Description() string {
	return "mock tool " + m.name
}

func (m *MockTool) Parameters() models.ToolParameters {
	return models.ToolParameters{
		Type:       "object",
		Properties: map[string]models.ToolProperty{"directory": {Type: "string"}},
		Required:   []string{"directory"},
	}
}

func (m *MockTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	ret := m.Called(ctx, args)
	return ret.String(0), ret.Error(1)
}
