package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/relnotes/internal/ai"
	"github.com/thomas-vilte/relnotes/internal/git"
)

type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) Complete(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*ai.ChatResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, args ...string) (git.CommandResult, error) {
	ret := m.Called(ctx, args)
	return ret.Get(0).(git.CommandResult), ret.Error(1)
}
