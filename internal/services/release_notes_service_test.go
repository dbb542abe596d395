package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/relnotes/internal/ai"
	"github.com/thomas-vilte/relnotes/internal/config"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/git"
	"github.com/thomas-vilte/relnotes/internal/models"
)

const testNotes = "## Features\n- add feature\n\n## Fixes\n- fix bug"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.APIKey = "gsk_test"
	return cfg
}

// scriptTwoTurns makes the model request commits once and then answer.
func scriptTwoTurns(provider *MockChatProvider, directory string, answer string) {
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req ai.ChatRequest) bool {
		return len(req.Messages) == 2
	})).Return(&ai.ChatResponse{
		ToolCalls: []models.ToolCall{{
			ID:        "call_1",
			Name:      "get_git_commits",
			Arguments: map[string]any{"directory": directory, "path": "", "max_commits": float64(50)},
		}},
		Usage: &models.TokenUsage{InputTokens: 100, OutputTokens: 10, TotalTokens: 110},
	}, nil).Once()

	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req ai.ChatRequest) bool {
		return len(req.Messages) == 4
	})).Return(&ai.ChatResponse{
		Text:  answer,
		Usage: &models.TokenUsage{InputTokens: 200, OutputTokens: 40, TotalTokens: 240},
	}, nil).Once()
}

func newCommitTool(runner *MockCommandRunner) *git.CommitHistoryTool {
	return git.NewCommitHistoryTool(git.WithRunner(runner))
}

func TestNewReleaseNotesAgent(t *testing.T) {
	t.Run("missing credential", func(t *testing.T) {
		cfg := config.Default()

		agent, err := NewReleaseNotesAgent(cfg, &MockChatProvider{}, nil)

		assert.Nil(t, agent)
		assert.True(t, errors.Is(err, domainErrors.ErrAPIKeyMissing))
		var appErr *domainErrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Contains(t, appErr.Suggestion, "GROQ_API_KEY")
	})

	t.Run("ollama needs no credential", func(t *testing.T) {
		cfg := config.Default()
		cfg.SetProvider(config.ProviderOllama)

		agent, err := NewReleaseNotesAgent(cfg, &MockChatProvider{}, nil)

		require.NoError(t, err)
		assert.NotNil(t, agent)
	})

	t.Run("nil configuration", func(t *testing.T) {
		_, err := NewReleaseNotesAgent(nil, &MockChatProvider{}, nil)
		assert.True(t, errors.Is(err, domainErrors.ErrInvalidConfig))
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewReleaseNotesAgent(testConfig(), nil, nil)
		assert.True(t, errors.Is(err, domainErrors.ErrInvalidConfig))
	})
}

func TestReleaseNotesAgent_Generate(t *testing.T) {
	// Arrange
	repo := t.TempDir()
	provider := &MockChatProvider{}
	runner := &MockCommandRunner{}
	scriptTwoTurns(provider, repo, testNotes)

	runner.On("Run", mock.Anything, []string{"-C", repo, "log", "--oneline", "--no-decorate", "-50"}).
		Return(git.CommandResult{Stdout: "abc1234 fix bug\ndef5678 add feature\n"}, nil).Once()

	var observed *models.TokenUsage
	agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(runner),
		WithUsageObserver(func(u *models.TokenUsage) { observed = u }))
	require.NoError(t, err)

	// Act
	notes, err := agent.Generate(context.Background(), repo, "", 50)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, testNotes, notes)
	require.NotNil(t, observed)
	assert.Equal(t, 350, observed.TotalTokens)

	provider.AssertExpectations(t)
	runner.AssertExpectations(t)

	lastReq := provider.Calls[1].Arguments.Get(1).(ai.ChatRequest)
	assert.Equal(t, "tool", string(lastReq.Messages[3].Role))
	assert.Equal(t, "Found 2 commits:\nabc1234 fix bug\ndef5678 add feature", lastReq.Messages[3].Content)
	assert.Contains(t, lastReq.Messages[1].Content, repo)
	assert.Contains(t, lastReq.Messages[1].Content, "File filter: entire repository")
}

func TestReleaseNotesAgent_Generate_IsStateless(t *testing.T) {
	repo := t.TempDir()
	provider := &MockChatProvider{}
	runner := &MockCommandRunner{}
	scriptTwoTurns(provider, repo, "first")
	scriptTwoTurns(provider, repo, "second")
	runner.On("Run", mock.Anything, mock.Anything).Return(git.CommandResult{Stdout: "abc1234 fix bug\n"}, nil)

	agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(runner))
	require.NoError(t, err)

	first, err := agent.Generate(context.Background(), repo, "", 50)
	require.NoError(t, err)
	second, err := agent.Generate(context.Background(), repo, "", 50)
	require.NoError(t, err)

	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)

	// each run starts from system + user only
	secondRunFirstTurn := provider.Calls[2].Arguments.Get(1).(ai.ChatRequest)
	assert.Len(t, secondRunFirstTurn.Messages, 2)
}

func TestReleaseNotesAgent_Generate_ToolErrorReachesModel(t *testing.T) {
	provider := &MockChatProvider{}
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req ai.ChatRequest) bool {
		return len(req.Messages) == 2
	})).Return(&ai.ChatResponse{ToolCalls: []models.ToolCall{{
		Name:      "get_git_commits",
		Arguments: map[string]any{"directory": "relative/path"},
	}}}, nil).Once()
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req ai.ChatRequest) bool {
		return len(req.Messages) == 4 &&
			req.Messages[3].Content == "Error accessing repository: Directory must be an absolute path"
	})).Return(&ai.ChatResponse{Text: "I could not read the repository."}, nil).Once()

	runner := &MockCommandRunner{}
	agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(runner))
	require.NoError(t, err)

	notes, err := agent.Generate(context.Background(), "relative/path", "", 0)

	require.NoError(t, err)
	assert.Equal(t, "I could not read the repository.", notes)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	provider.AssertExpectations(t)
}

func TestReleaseNotesAgent_Generate_ProviderFailure(t *testing.T) {
	provider := &MockChatProvider{}
	provider.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(&MockCommandRunner{}))
	require.NoError(t, err)

	_, err = agent.Generate(context.Background(), "/repo", "", 10)

	assert.True(t, errors.Is(err, domainErrors.ErrAIGeneration))
}

func TestReleaseNotesAgent_Generate_UsesConfiguredLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCommits = 15
	provider := &MockChatProvider{}
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req ai.ChatRequest) bool {
		return len(req.Messages) == 2 && strings.Contains(req.Messages[1].Content, "Max commits to analyze: 15")
	})).Return(&ai.ChatResponse{Text: "notes"}, nil).Once()

	agent, err := NewReleaseNotesAgent(cfg, provider, newCommitTool(&MockCommandRunner{}))
	require.NoError(t, err)

	_, err = agent.Generate(context.Background(), "/repo", "", 0)

	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestReleaseNotesAgent_GenerateReport(t *testing.T) {
	repo := t.TempDir()
	provider := &MockChatProvider{}
	runner := &MockCommandRunner{}
	scriptTwoTurns(provider, repo, testNotes)
	runner.On("Run", mock.Anything, mock.Anything).Return(git.CommandResult{Stdout: "abc1234 fix bug\n"}, nil)

	fixed := time.Date(2026, 1, 14, 10, 30, 0, 0, time.FixedZone("ART", -3*60*60))
	agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(runner),
		WithClock(func() time.Time { return fixed }),
		WithRepositoryInspector(func(path string) (models.RepositoryInfo, error) {
			return models.RepositoryInfo{Root: path, Branch: "main", Head: "abc1234"}, nil
		}))
	require.NoError(t, err)

	report, err := agent.GenerateReport(context.Background(), repo, "src/app.go", 0)

	require.NoError(t, err)
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, repo, report.Repository)
	assert.Equal(t, "src/app.go", report.FilePath)
	assert.Equal(t, 50, report.MaxCommits)
	assert.Equal(t, testNotes, report.ReleaseNotes)
	assert.Equal(t, fixed.UTC(), report.GeneratedAt)
	assert.Equal(t, time.UTC, report.GeneratedAt.Location())
	assert.Equal(t, "groq", report.Provider)
	assert.Equal(t, "openai/gpt-oss-120b", report.Model)
	assert.Equal(t, "main", report.Branch)
	assert.Equal(t, "abc1234", report.Head)
	assert.Equal(t, 350, report.Usage.TotalTokens)
}

func TestReleaseNotesAgent_GenerateReport_MetadataIsOptional(t *testing.T) {
	provider := &MockChatProvider{}
	provider.On("Complete", mock.Anything, mock.Anything).Return(&ai.ChatResponse{Text: "notes"}, nil).Once()

	agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(&MockCommandRunner{}),
		WithRepositoryInspector(func(string) (models.RepositoryInfo, error) {
			return models.RepositoryInfo{}, domainErrors.ErrOpenRepository
		}))
	require.NoError(t, err)

	report, err := agent.GenerateReport(context.Background(), "/not/a/repo", "", 5)

	require.NoError(t, err)
	assert.Equal(t, "notes", report.ReleaseNotes)
	assert.Empty(t, report.Branch)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestReleaseNotesAgent_GenerateToFile(t *testing.T) {
	t.Run("writes the notes", func(t *testing.T) {
		provider := &MockChatProvider{}
		provider.On("Complete", mock.Anything, mock.Anything).Return(&ai.ChatResponse{Text: testNotes}, nil).Once()
		agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(&MockCommandRunner{}))
		require.NoError(t, err)

		output := filepath.Join(t.TempDir(), "dist", "RELEASE_NOTES.md")
		notes, err := agent.GenerateToFile(context.Background(), "/repo", "", output)

		require.NoError(t, err)
		assert.Equal(t, testNotes, notes)
		written, err := os.ReadFile(output)
		require.NoError(t, err)
		assert.Equal(t, testNotes, string(written))
	})

	t.Run("no output only returns", func(t *testing.T) {
		provider := &MockChatProvider{}
		provider.On("Complete", mock.Anything, mock.Anything).Return(&ai.ChatResponse{Text: testNotes}, nil).Once()
		agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(&MockCommandRunner{}))
		require.NoError(t, err)

		notes, err := agent.GenerateToFile(context.Background(), "/repo", "", "")

		require.NoError(t, err)
		assert.Equal(t, testNotes, notes)
	})

	t.Run("write failure", func(t *testing.T) {
		provider := &MockChatProvider{}
		provider.On("Complete", mock.Anything, mock.Anything).Return(&ai.ChatResponse{Text: testNotes}, nil).Once()
		agent, err := NewReleaseNotesAgent(testConfig(), provider, newCommitTool(&MockCommandRunner{}))
		require.NoError(t, err)
		agent.writeFile = func(string, []byte, os.FileMode) error { return os.ErrPermission }

		_, err = agent.GenerateToFile(context.Background(), "/repo", "", filepath.Join(t.TempDir(), "notes.md"))

		assert.True(t, errors.Is(err, domainErrors.ErrWriteOutput))
		assert.True(t, errors.Is(err, os.ErrPermission))
	})
}
