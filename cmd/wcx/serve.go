package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pthm/wcx/internal/app"
	"github.com/pthm/wcx/internal/config"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("WCX_CONFIG_FILE"),
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.NewDefault()
	if err := config.LoadOrDefault(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the component store HTTP server",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := app.Run(ctx, app.WithConfig(cfg), app.WithVersion(version)); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the component store to MCP clients over stdio",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// stdout carries the protocol; logs go to stderr.
			logger := cfg.Log.NewLogger(stderrOf(cmd))
			return app.RunMCP(ctx, app.WithConfig(cfg), app.WithLogger(logger), app.WithVersion(version))
		},
	}
}

func stderrOf(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
