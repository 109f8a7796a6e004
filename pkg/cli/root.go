/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/movie-relay/relay/pkg/api"
	"github.com/movie-relay/relay/pkg/config"
	"github.com/movie-relay/relay/pkg/logging"
	"github.com/movie-relay/relay/pkg/serializer"
	"github.com/movie-relay/relay/pkg/server"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML or JSON config file",
		Sources: cli.EnvVars(config.EnvConfigFile),
	}

	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Usage: "dotenv file loaded before the environment (empty disables)",
		Value: config.DefaultEnvFile,
	}

	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Sources: cli.EnvVars(logging.EnvLogLevel),
		Value:   "info",
	}

	portFlag = &cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Usage:   "HTTP listen port",
		Sources: cli.EnvVars("PORT"),
		Value:   server.DefaultPort,
	}
)

// Execute runs the root command with the process arguments and exits
// non-zero on error. Called by main.main().
func Execute() {
	if err := newRootCmd().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	version, commit, date := api.Version()

	return &cli.Command{
		Name:    api.Name(),
		Usage:   "movie catalog relay",
		Version: version,
		Description: fmt.Sprintf(`Relays the upstream popular movies list to browser clients and serves
static files.

Version: %s
Commit:  %s
Built:   %s`, version, commit, date),
		Flags: []cli.Flag{
			configFlag,
			envFileFlag,
			logLevelFlag,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(api.Name(), version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			configCmd(),
		},
		DefaultCommand: "serve",
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP relay (default)",
		Flags: []cli.Flag{
			portFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var opts []server.Option
			if cmd.IsSet("port") {
				opts = append(opts, server.WithPort(cmd.Int("port")))
			}

			return api.Serve(ctx, cfg, opts...)
		},
	}
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration with secrets masked",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "Output format (yaml, json)",
				Value:   string(serializer.FormatYAML),
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			w, err := serializer.NewWriter(serializer.Format(cmd.String("format")), cmd.Root().Writer)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return w.Serialize(cfg.Redacted())
		},
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(
		config.WithEnvFile(cmd.String("env-file")),
		config.WithConfigFile(cmd.String("config")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Debug("configuration loaded", "config", cfg)
	return cfg, nil
}
