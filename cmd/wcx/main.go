// Command wcx generates, exports, imports and serves web components.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/pthm/wcx"
)

const version = "0.1.0"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		slog.Error("wcx failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "wcx",
		Usage:     "Portable web components: define once, export anywhere",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Log debug output to stderr",
				Sources: cli.EnvVars("WCX_VERBOSE"),
			},
		},
		Commands: []*cli.Command{
			generateCommand(),
			cleanCommand(),
			exportCommand(),
			importCommand(),
			serveCommand(),
			mcpCommand(),
			{
				Name:  "version",
				Usage: "Print version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintf(cmd.Root().Writer, "wcx version %s\n", version)
					return err
				},
			},
		},
	}
}

// endpointFlags configure the component store client.
func endpointFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "Component store base URL",
			Sources: cli.EnvVars("WCX_API_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Bearer token for the component store",
			Sources: cli.EnvVars("WCX_API_TOKEN"),
		},
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Root().Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.Root().ErrWriter, &slog.HandlerOptions{Level: level}))
}

func newBuilder(cmd *cli.Command, opts ...wcx.Option) *wcx.Builder {
	cfg := wcx.DefaultConfig()
	cfg.APIEndpoint = cmd.String("endpoint")
	cfg.APIToken = cmd.String("token")
	return wcx.New(append([]wcx.Option{wcx.WithConfig(cfg), wcx.WithLogger(newLogger(cmd))}, opts...)...)
}
