package config

import (
	"context"
	"fmt"
	"os"

	cfg "github.com/thomas-vilte/relnotes/internal/config"
	"github.com/thomas-vilte/relnotes/internal/i18n"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config.init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: t.GetMessage("config.init_path_flag", 0, nil),
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: t.GetMessage("flags.model", 0, nil),
			},
			&cli.StringFlag{
				Name:  "lang",
				Usage: t.GetMessage("flags.lang", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: t.GetMessage("config.init_force_flag", 0, nil),
			},
		},
		Action: c.initAction(t),
	}
}

// initAction writes a configuration file with defaults and the given model and
// language. Credentials are never written; they come from the environment.
func (c *ConfigCommandFactory) initAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.String("path")
		if path == "" {
			p, err := cfg.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}

		if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
			return fmt.Errorf("%s", t.GetMessage("config.init_exists", 0, struct{ Path string }{path}))
		}

		newConfig := cfg.Default()
		if model := cmd.String("model"); model != "" {
			newConfig.SetModelName(model)
		}
		if lang := cmd.String("lang"); lang != "" {
			newConfig.Language = lang
		}

		if err := cfg.Save(newConfig, path); err != nil {
			return err
		}

		logger.Info(ctx, "configuration file written", "path", path)
		ui.PrintSuccess(c.stdout, t.GetMessage("config.init_saved", 0, struct{ Path string }{path}))
		if env := cfg.APIKeyEnvVar(newConfig.Provider); env != "" {
			ui.PrintInfo(c.stdout, t.GetMessage("config.init_key_hint", 0, struct{ EnvVar string }{env}))
		}
		return nil
	}
}
