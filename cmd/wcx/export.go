package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/pthm/wcx"
	"github.com/pthm/wcx/lib/generator"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Print an artifact for a definition file, or save it to the component store",
		ArgsUsage: "FILE (*.wc.yaml or a JSON record)",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "script, json or cloud",
				Value:   "script",
			},
		}, endpointFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("export takes exactly one FILE")
			}
			format, err := wcx.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			rec, err := loadRecordFile(cmd.Args().First())
			if err != nil {
				return err
			}

			b := newBuilder(cmd)
			if _, err := b.Import(ctx, wcx.RecordSource{Record: rec}, wcx.ImportOptions{SkipRegister: true}); err != nil {
				return err
			}
			art, err := b.Export(ctx, rec.Name, wcx.ExportOptions{Format: format})
			if err != nil {
				return err
			}
			body, err := art.Bytes()
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			if _, err := w.Write(body); err != nil {
				return err
			}
			if !strings.HasSuffix(string(body), "\n") {
				_, err = fmt.Fprintln(w)
			}
			return err
		},
	}
}

// loadRecordFile reads a definition file or a JSON record.
func loadRecordFile(path string) (*wcx.Record, error) {
	if generator.IsDefinition(path) {
		return generator.LoadDefinition(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if ext := filepath.Ext(path); ext != ".json" {
		return nil, fmt.Errorf("%s: expected *.wc.yaml or *.json, got %q", path, ext)
	}
	return wcx.ParseRecord(data)
}
