package release

import (
	"context"
	"io"
	"os"

	"github.com/thomas-vilte/relnotes/internal/ai"
	cfg "github.com/thomas-vilte/relnotes/internal/config"
	"github.com/thomas-vilte/relnotes/internal/git"
	"github.com/thomas-vilte/relnotes/internal/i18n"
	"github.com/thomas-vilte/relnotes/internal/models"
	"github.com/thomas-vilte/relnotes/internal/providers"
	"github.com/thomas-vilte/relnotes/internal/services"
	"github.com/thomas-vilte/relnotes/internal/vcs"
	"github.com/urfave/cli/v3"
)

// NotesGenerator is the part of the release notes service the commands use.
type NotesGenerator interface {
	GenerateToFile(ctx context.Context, repository, file, output string) (string, error)
	GenerateReport(ctx context.Context, repository, file string, maxCommits int) (*models.ReleaseNotesReport, error)
}

// CommitQuerier runs the commit history tool without a model.
type CommitQuerier interface {
	Query(ctx context.Context, q models.CommitQuery) models.CommitQueryResult
}

type (
	GeneratorFactory func(ctx context.Context, config *cfg.Config, onUsage services.UsageObserver) (NotesGenerator, error)
	PublisherFactory func(config *cfg.Config, info models.RepositoryInfo) (vcs.ReleasePublisher, error)
)

type ReleaseCommandFactory struct {
	config       func() *cfg.Config
	newGenerator GeneratorFactory
	newPublisher PublisherFactory
	inspect      services.RepositoryInspector
	commits      CommitQuerier
	stdout       io.Writer
	stderr       io.Writer
}

type Option func(*ReleaseCommandFactory)

func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(r *ReleaseCommandFactory) {
		r.newGenerator = f
	}
}

func WithPublisherFactory(f PublisherFactory) Option {
	return func(r *ReleaseCommandFactory) {
		r.newPublisher = f
	}
}

func WithRepositoryInspector(fn services.RepositoryInspector) Option {
	return func(r *ReleaseCommandFactory) {
		r.inspect = fn
	}
}

func WithCommitQuerier(q CommitQuerier) Option {
	return func(r *ReleaseCommandFactory) {
		r.commits = q
	}
}

// WithOutput sets where notes (stdout) and progress (stderr) are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *ReleaseCommandFactory) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewReleaseCommandFactory builds the commands. config is called when a
// command runs, after the root command has loaded the configuration.
func NewReleaseCommandFactory(config func() *cfg.Config, opts ...Option) *ReleaseCommandFactory {
	r := &ReleaseCommandFactory{
		config:       config,
		newGenerator: NewNotesGenerator,
		newPublisher: providers.NewReleasePublisher,
		inspect:      git.Inspect,
		commits:      git.NewCommitHistoryTool(),
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ReleaseCommandFactory) CreateCommands(t *i18n.Translations) []*cli.Command {
	return []*cli.Command{
		r.newGenerateCommand(t),
		r.newCommitsCommand(t),
	}
}

// NewNotesGenerator builds the model provider for config and the agent around it.
func NewNotesGenerator(ctx context.Context, config *cfg.Config, onUsage services.UsageObserver) (NotesGenerator, error) {
	provider, err := providers.NewChatProvider(ctx, config)
	if err != nil {
		return nil, err
	}

	var tool ai.Tool = git.NewCommitHistoryTool()
	agent, err := services.NewReleaseNotesAgent(config, provider, tool, services.WithUsageObserver(onUsage))
	if err != nil {
		return nil, err
	}
	return agent, nil
}
