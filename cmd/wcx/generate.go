package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pthm/wcx"
	"github.com/pthm/wcx/lib/generator"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate artifacts next to *.wc.yaml definition files",
		ArgsUsage: "[patterns] (e.g. ./... or ./components)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: "Artifact formats: script, json",
				Value: []string{"script"},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be generated without writing files",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Regenerate when definition files change",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var formats []wcx.Format
			for _, s := range cmd.StringSlice("format") {
				f, err := wcx.ParseFormat(s)
				if err != nil {
					return err
				}
				formats = append(formats, f)
			}
			gen, err := generator.New(generator.Options{
				DryRun:  cmd.Bool("dry-run"),
				Formats: formats,
				Out:     cmd.Root().Writer,
				Logger:  newLogger(cmd),
			})
			if err != nil {
				return err
			}

			patterns := cmd.Args().Slice()
			if !cmd.Bool("watch") {
				return gen.Generate(patterns...)
			}
			return gen.Watch(ctx, func(ev generator.WatchEvent) {
				if ev.Err != nil {
					fmt.Fprintf(cmd.Root().ErrWriter, "%s: %v\n", ev.Path, ev.Err)
				}
			}, patterns...)
		},
	}
}

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     "Remove generated *.wc.js and *.wc.json files",
		ArgsUsage: "[patterns]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Show what would be removed"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			gen, err := generator.New(generator.Options{
				DryRun:  cmd.Bool("dry-run"),
				Formats: []wcx.Format{wcx.FormatScript, wcx.FormatJSON},
				Out:     cmd.Root().Writer,
			})
			if err != nil {
				return err
			}
			return gen.Clean(cmd.Args().Slice()...)
		},
	}
}
