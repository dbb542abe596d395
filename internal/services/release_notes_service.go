package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thomas-vilte/relnotes/internal/ai"
	"github.com/thomas-vilte/relnotes/internal/config"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/git"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
)

// RepositoryInspector reads best-effort metadata for a repository path.
type RepositoryInspector func(path string) (models.RepositoryInfo, error)

// UsageObserver receives the token usage of every finished run.
type UsageObserver func(usage *models.TokenUsage)

// ReleaseNotesAgent turns a repository's commit history into release notes.
// It keeps no state between calls; every call builds a fresh request context.
type ReleaseNotesAgent struct {
	config    *config.Config
	agent     *ai.Agent
	inspect   RepositoryInspector
	onUsage   UsageObserver
	now       func() time.Time
	writeFile func(name string, data []byte, perm os.FileMode) error
}

type ReleaseNotesOption func(*ReleaseNotesAgent)

func WithRepositoryInspector(fn RepositoryInspector) ReleaseNotesOption {
	return func(a *ReleaseNotesAgent) {
		a.inspect = fn
	}
}

func WithUsageObserver(fn UsageObserver) ReleaseNotesOption {
	return func(a *ReleaseNotesAgent) {
		a.onUsage = fn
	}
}

func WithClock(now func() time.Time) ReleaseNotesOption {
	return func(a *ReleaseNotesAgent) {
		a.now = now
	}
}

// NewReleaseNotesAgent wires provider and tool into an agent. The provider
// must already be built for cfg; cfg is not read again for credentials.
func NewReleaseNotesAgent(cfg *config.Config, provider ai.ChatProvider, tool ai.Tool, opts ...ReleaseNotesOption) (*ReleaseNotesAgent, error) {
	if cfg == nil {
		return nil, domainErrors.ErrInvalidConfig.WithError(fmt.Errorf("configuration is required"))
	}
	if config.RequiresAPIKey(cfg.Provider) && cfg.APIKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing.
			WithContext("provider", string(cfg.Provider)).
			WithSuggestion(fmt.Sprintf("Export the %s key: export %s=<key>", cfg.Provider, config.APIKeyEnvVar(cfg.Provider)))
	}
	if provider == nil {
		return nil, domainErrors.ErrInvalidConfig.WithError(fmt.Errorf("model provider is required"))
	}
	if tool == nil {
		tool = git.NewCommitHistoryTool()
	}

	tools, err := ai.NewToolSet(tool)
	if err != nil {
		return nil, err
	}

	a := &ReleaseNotesAgent{
		config:    cfg,
		agent:     ai.NewAgent(provider, tools, ai.WithModel(cfg.Model), ai.WithMaxTurns(cfg.MaxTurns)),
		inspect:   git.Inspect,
		now:       time.Now,
		writeFile: os.WriteFile,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *ReleaseNotesAgent) maxCommits(requested int) int {
	if requested > 0 {
		return requested
	}
	if a.config.MaxCommits > 0 {
		return a.config.MaxCommits
	}
	return models.DefaultMaxCommits
}

func (a *ReleaseNotesAgent) run(ctx context.Context, repository, file string, maxCommits int) (*ai.RunResult, error) {
	ctx = logger.With(ctx,
		"repository", repository,
		"file_path", file,
		"max_commits", maxCommits)
	log := logger.FromContext(ctx)

	log.Info("generating release notes",
		"provider", string(a.config.Provider),
		"model", a.config.Model,
		"prompt_version", ai.PromptVersion)

	rc := ai.NewRequestContext(repository, file, maxCommits, a.config.Language)

	start := time.Now()
	result, err := a.agent.Run(ctx, rc)
	if err != nil {
		log.Error("release notes generation failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	log.Info("release notes generated",
		"turns", result.Turns,
		"tool_calls", result.ToolCalls,
		"tokens", result.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds())

	if a.onUsage != nil {
		a.onUsage(result.Usage)
	}
	return result, nil
}

// Generate returns the model's release notes for the repository, verbatim.
// A non-positive maxCommits uses the configured limit.
func (a *ReleaseNotesAgent) Generate(ctx context.Context, repository, file string, maxCommits int) (string, error) {
	result, err := a.run(ctx, repository, file, a.maxCommits(maxCommits))
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// GenerateReport runs the same generation as Generate and wraps the notes
// with repository metadata. Metadata that cannot be read is left empty.
func (a *ReleaseNotesAgent) GenerateReport(ctx context.Context, repository, file string, maxCommits int) (*models.ReleaseNotesReport, error) {
	maxCommits = a.maxCommits(maxCommits)

	result, err := a.run(ctx, repository, file, maxCommits)
	if err != nil {
		return nil, err
	}

	report := &models.ReleaseNotesReport{
		Status:       models.ReportStatusSuccess,
		Repository:   repository,
		FilePath:     file,
		MaxCommits:   maxCommits,
		ReleaseNotes: result.Text,
		GeneratedAt:  a.now().UTC(),
		Provider:     string(a.config.Provider),
		Model:        a.config.Model,
		Usage:        result.Usage,
	}

	if a.inspect != nil {
		info, err := a.inspect(repository)
		if err != nil {
			logger.Debug(ctx, "repository metadata unavailable", "repository", repository, "error", err)
		} else {
			report.Branch = info.Branch
			report.Head = info.Head
		}
	}

	return report, nil
}

// GenerateToFile generates notes with the configured commit limit and, when
// output is set, writes them there. The notes are returned either way.
func (a *ReleaseNotesAgent) GenerateToFile(ctx context.Context, repository, file, output string) (string, error) {
	notes, err := a.Generate(ctx, repository, file, 0)
	if err != nil {
		return "", err
	}

	if output == "" {
		return notes, nil
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", domainErrors.ErrWriteOutput.WithError(err).WithContext("file", output)
		}
	}
	if err := a.writeFile(output, []byte(notes), 0644); err != nil {
		return "", domainErrors.ErrWriteOutput.WithError(err).WithContext("file", output)
	}

	logger.Info(ctx, "release notes written", "file", output)
	return notes, nil
}
