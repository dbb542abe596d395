package release

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/relnotes/internal/i18n"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
	"github.com/urfave/cli/v3"
)

func (r *ReleaseCommandFactory) newCommitsCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "commits",
		Aliases: []string{"c"},
		Usage:   t.GetMessage("commits.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "repo",
				Usage:   t.GetMessage("flags.repo", 0, nil),
				Sources: cli.EnvVars("REPO_PATH"),
			},
			&cli.StringFlag{
				Name:    "path",
				Usage:   t.GetMessage("flags.path", 0, nil),
				Sources: cli.EnvVars("FILE_PATH"),
			},
			&cli.IntFlag{
				Name:  "max-commits",
				Usage: t.GetMessage("flags.max_commits", 0, nil),
				Value: models.DefaultMaxCommits,
			},
		},
		Action: r.commitsAction(),
	}
}

// commitsAction prints exactly the text the model receives from the tool.
func (r *ReleaseCommandFactory) commitsAction() cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		config, err := r.commandConfig(cmd)
		if err != nil {
			return err
		}

		result := r.commits.Query(ctx, models.CommitQuery{
			Directory:  config.RepoPath,
			Path:       config.FilePath,
			MaxCommits: config.MaxCommits,
		})
		logger.Debug(ctx, "commit history queried",
			"repository", config.RepoPath,
			"status", string(result.Status),
			"count", result.CommitCount)

		_, _ = fmt.Fprintln(r.stdout, result.ToContext())
		return nil
	}
}
