package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cfg "github.com/thomas-vilte/relnotes/internal/config"
	domainErrors "github.com/thomas-vilte/relnotes/internal/errors"
	"github.com/thomas-vilte/relnotes/internal/i18n"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/models"
	"github.com/thomas-vilte/relnotes/internal/ui"
	"github.com/thomas-vilte/relnotes/internal/vcs/github"
	"github.com/urfave/cli/v3"
)

func (r *ReleaseCommandFactory) newGenerateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   t.GetMessage("generate.usage", 0, nil),
		Flags:   generateFlags(t),
		Action:  r.generateAction(t),
	}
}

func generateFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
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
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   t.GetMessage("flags.output", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: t.GetMessage("flags.json", 0, nil),
		},
		&cli.StringFlag{
			Name:  "lang",
			Usage: t.GetMessage("flags.lang", 0, nil),
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: t.GetMessage("flags.model", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "publish",
			Usage: t.GetMessage("flags.publish", 0, nil),
		},
		&cli.StringFlag{
			Name:  "tag",
			Usage: t.GetMessage("flags.tag", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "draft",
			Usage: t.GetMessage("flags.draft", 0, nil),
			Value: true,
		},
	}
}

// commandConfig copies the loaded configuration and applies the flags set on cmd.
func (r *ReleaseCommandFactory) commandConfig(cmd *cli.Command) (*cfg.Config, error) {
	config := cfg.Default()
	if loaded := r.config(); loaded != nil {
		c := *loaded
		config = &c
	}

	if cmd.IsSet("model") {
		config.SetModelName(cmd.String("model"))
	}
	if cmd.IsSet("max-commits") {
		config.MaxCommits = int(cmd.Int("max-commits"))
	}
	if cmd.IsSet("lang") {
		config.Language = cmd.String("lang")
	}
	if cmd.IsSet("path") {
		config.FilePath = cmd.String("path")
	}
	if cmd.IsSet("repo") {
		config.RepoPath = cmd.String("repo")
	}

	repo, err := resolveRepository(config.RepoPath)
	if err != nil {
		return nil, err
	}
	config.RepoPath = repo
	return config, nil
}

// resolveRepository makes path absolute, defaulting to the working directory.
func resolveRepository(path string) (string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", domainErrors.ErrRepositoryPath.WithError(err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", domainErrors.ErrRepositoryPath.WithError(err).WithContext("path", path)
	}
	return abs, nil
}

func (r *ReleaseCommandFactory) generateAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		log := logger.FromContext(ctx)
		start := time.Now()

		config, err := r.commandConfig(cmd)
		if err != nil {
			return err
		}
		if err := config.Validate(); err != nil {
			return err
		}

		publish := cmd.Bool("publish")
		tag := cmd.String("tag")
		if publish {
			if tag == "" {
				return fmt.Errorf("%s", t.GetMessage("publish.tag_required", 0, nil))
			}
			if err := github.ValidateTag(tag); err != nil {
				return err
			}
		}

		log.Info("executing generate command",
			"repository", config.RepoPath,
			"file_path", config.FilePath,
			"max_commits", config.MaxCommits,
			"model", config.ModelName())

		generator, err := r.newGenerator(ctx, config, func(usage *models.TokenUsage) {
			ui.PrintTokenUsage(r.stderr, usage, t)
		})
		if err != nil {
			return err
		}

		message := t.GetMessage("generate.generating", 0, struct{ Repository string }{config.RepoPath})
		output := cmd.String("output")

		var notes string
		if cmd.Bool("json") {
			var report *models.ReleaseNotesReport
			err = ui.WithSpinner(r.stderr, message, func() error {
				var genErr error
				report, genErr = generator.GenerateReport(ctx, config.RepoPath, config.FilePath, config.MaxCommits)
				return genErr
			})
			if err != nil {
				log.Error("failed to generate release notes", "error", err, "duration_ms", time.Since(start).Milliseconds())
				return err
			}
			if err := writeJSON(r.stdout, report); err != nil {
				return fmt.Errorf("%s", t.GetMessage("generate.error_json", 0, struct{ Error string }{err.Error()}))
			}
			notes = report.ReleaseNotes
		} else {
			err = ui.WithSpinner(r.stderr, message, func() error {
				var genErr error
				notes, genErr = generator.GenerateToFile(ctx, config.RepoPath, config.FilePath, output)
				return genErr
			})
			if err != nil {
				log.Error("failed to generate release notes", "error", err, "duration_ms", time.Since(start).Milliseconds())
				return err
			}
			if output != "" {
				ui.PrintSuccess(r.stderr, t.GetMessage("generate.notes_saved", 0, struct{ File string }{output}))
			} else {
				_, _ = fmt.Fprintln(r.stdout, notes)
			}
		}

		if publish {
			if err := r.publish(ctx, config, tag, cmd.Bool("draft"), notes, t); err != nil {
				return err
			}
		}

		log.Info("generate command completed",
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	}
}

func (r *ReleaseCommandFactory) publish(ctx context.Context, config *cfg.Config, tag string, draft bool, notes string, t *i18n.Translations) error {
	info, err := r.inspect(config.RepoPath)
	if err != nil {
		logger.Debug(ctx, "repository metadata unavailable", "error", err)
		info = models.RepositoryInfo{Root: config.RepoPath}
	}

	publisher, err := r.newPublisher(config, info)
	if err != nil {
		return err
	}

	var published *models.PublishedRelease
	err = ui.WithSpinner(r.stderr, t.GetMessage("publish.publishing", 0, struct{ Tag string }{tag}), func() error {
		var pubErr error
		published, pubErr = publisher.PublishRelease(ctx, models.ReleaseDraft{
			Tag:   tag,
			Name:  tag,
			Body:  notes,
			Draft: draft,
		})
		return pubErr
	})
	if err != nil {
		return err
	}

	ui.PrintSuccess(r.stderr, t.GetMessage("publish.published", 0, struct{ Tag, URL string }{published.Tag, published.URL}))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
