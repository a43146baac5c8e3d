package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/pthm/wcx"
	"github.com/pthm/wcx/lib/dom"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Reconstruct a component, mount it in an in-memory document and print its shadow content",
		ArgsUsage: "SOURCE (a URL, JSON text, a local file, or a name in the component store)",
		Flags: append([]cli.Flag{
			&cli.StringMapFlag{
				Name:    "attr",
				Aliases: []string{"a"},
				Usage:   "Element attribute as name=value (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "call",
				Usage: "Method to call after mounting (repeatable, in order)",
			},
		}, endpointFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("import takes exactly one SOURCE")
			}
			src, err := sourceFor(cmd.Args().First())
			if err != nil {
				return err
			}

			doc := dom.NewDocument()
			b := newBuilder(cmd, wcx.WithElements(doc.CustomElements()))
			def, err := b.Import(ctx, src, wcx.ImportOptions{})
			if err != nil {
				return err
			}

			el := doc.CreateElement(def.Name)
			attrs := cmd.StringMap("attr")
			names := make([]string, 0, len(attrs))
			for k := range attrs {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				if err := el.SetAttribute(k, attrs[k]); err != nil {
					return err
				}
			}
			if err := doc.Append(el); err != nil {
				return err
			}

			live, ok := el.Callbacks().(*wcx.Element)
			if !ok && len(cmd.StringSlice("call")) > 0 {
				return fmt.Errorf("element %s has no callable methods", def.Name)
			}
			for _, m := range cmd.StringSlice("call") {
				if _, err := live.Call(m); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, el.ShadowHTML())
			return err
		},
	}
}

// sourceFor classifies arg, treating an existing local file as a record.
func sourceFor(arg string) (wcx.Source, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		rec, err := loadRecordFile(arg)
		if err != nil {
			return nil, err
		}
		return wcx.RecordSource{Record: rec}, nil
	}
	return wcx.ClassifySource(arg), nil
}
