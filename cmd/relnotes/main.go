package main

import (
	"bytes"
	"context"
	"log"
	"os"

	configcmd "github.com/thomas-vilte/relnotes/internal/commands/config"
	"github.com/thomas-vilte/relnotes/internal/commands/release"
	cfg "github.com/thomas-vilte/relnotes/internal/config"
	"github.com/thomas-vilte/relnotes/internal/i18n"
	"github.com/thomas-vilte/relnotes/internal/logger"
	"github.com/thomas-vilte/relnotes/internal/services"
	"github.com/thomas-vilte/relnotes/internal/ui"
	"github.com/thomas-vilte/relnotes/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, translations, err := initializeApp()
	if err != nil {
		log.Fatalf("Error starting relnotes: %v", err)
	}

	ctx := context.Background()

	// The notice is buffered so it never interleaves with the command output.
	var notice bytes.Buffer
	checked := make(chan struct{})
	go func() {
		defer close(checked)
		services.NewVersionChecker(version.FullVersion(), translations).CheckForUpdates(ctx, &notice)
	}()

	if err := app.Run(ctx, os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}

	<-checked
	_, _ = notice.WriteTo(os.Stderr)
}

func initializeApp() (*cli.Command, *i18n.Translations, error) {
	lang := os.Getenv("RELNOTES_LANG")
	if lang == "" {
		lang = "en"
	}
	translations, err := i18n.NewTranslations(lang, "")
	if err != nil {
		return nil, nil, err
	}

	var loaded *cfg.Config
	factory := release.NewReleaseCommandFactory(func() *cfg.Config { return loaded })

	commands := factory.CreateCommands(translations)
	commands = append(commands, configcmd.NewConfigCommandFactory(func() *cfg.Config { return loaded }).CreateCommand(translations))

	app := &cli.Command{
		Name:                  "relnotes",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Description:           translations.GetMessage("app_description", 0, nil),
		Version:               version.FullVersion(),
		Commands:              commands,
		DefaultCommand:        "generate",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   translations.GetMessage("flags.config", 0, nil),
				Sources: cli.EnvVars("RELNOTES_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flags.debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flags.verbose", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			l := logger.Initialize(os.Stderr, cmd.Bool("debug"), cmd.Bool("verbose"))
			ctx = logger.WithLogger(ctx, l)

			config, err := cfg.Load(cmd.String("config"))
			if err != nil {
				return ctx, err
			}
			loaded = config

			if err := translations.SetLanguage(config.Language); err != nil {
				l.Debug("keeping default language", "language", config.Language, "error", err)
			}
			return ctx, nil
		},
	}
	return app, translations, nil
}
