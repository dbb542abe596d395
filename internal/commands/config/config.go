package config

import (
	"context"
	"fmt"
	"io"
	"os"

	cfg "github.com/thomas-vilte/relnotes/internal/config"
	"github.com/thomas-vilte/relnotes/internal/i18n"
	"github.com/thomas-vilte/relnotes/internal/ui"
	"github.com/urfave/cli/v3"
)

type ConfigCommandFactory struct {
	config func() *cfg.Config
	stdout io.Writer
}

func NewConfigCommandFactory(config func() *cfg.Config) *ConfigCommandFactory {
	return &ConfigCommandFactory{config: config, stdout: os.Stdout}
}

// WithOutput redirects the command output, for tests.
func (c *ConfigCommandFactory) WithOutput(w io.Writer) *ConfigCommandFactory {
	c.stdout = w
	return c
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t),
			c.newInitCommand(t),
		},
	}
}

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Action: func(_ context.Context, _ *cli.Command) error {
			loaded := c.config()
			if loaded == nil {
				loaded = cfg.Default()
			}
			printConfig(c.stdout, loaded, t)
			return nil
		},
	}
}

func printConfig(w io.Writer, c *cfg.Config, t *i18n.Translations) {
	ui.PrintSectionBanner(w, t.GetMessage("config.show_title", 0, nil))

	source := c.PathFile
	if source == "" {
		source = t.GetMessage("config.no_file", 0, nil)
	}
	ui.PrintKeyValue(w, t.GetMessage("config.file_label", 0, nil), source)
	ui.PrintKeyValue(w, "provider", string(c.Provider))
	ui.PrintKeyValue(w, "model", c.Model)
	ui.PrintKeyValue(w, "base_url", c.BaseURL)
	ui.PrintKeyValue(w, "api_key", mask(c.APIKey))
	ui.PrintKeyValue(w, "language", c.Language)
	ui.PrintKeyValue(w, "max_commits", fmt.Sprint(c.MaxCommits))
	ui.PrintKeyValue(w, "max_turns", fmt.Sprint(c.MaxTurns))
	ui.PrintKeyValue(w, "repo_path", c.RepoPath)
	ui.PrintKeyValue(w, "file_path", c.FilePath)
	ui.PrintKeyValue(w, "github.owner", c.GitHub.Owner)
	ui.PrintKeyValue(w, "github.repo", c.GitHub.Repo)
	ui.PrintKeyValue(w, "github.token", mask(c.GitHub.Token))
}

// mask keeps the last four characters of a secret.
func mask(secret string) string {
	switch {
	case secret == "":
		return "-"
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}
