// Package generator turns component definition files (*.wc.yaml) into
// export artifacts that sit next to them: a self-registering script
// (*.wc.js) and a JSON document (*.wc.json).
package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm/wcx"
)

// Definition file suffixes.
const (
	SuffixYAML = ".wc.yaml"
	SuffixYML  = ".wc.yml"
)

// Output suffixes per format.
var outputSuffix = map[wcx.Format]string{
	wcx.FormatScript: ".wc.js",
	wcx.FormatJSON:   ".wc.json",
}

// scriptHeader marks generated scripts.
const scriptHeader = "// Code generated by wcx generate. DO NOT EDIT.\n"

// Options configures the generator.
type Options struct {
	// DryRun reports what would be written without touching files.
	DryRun bool
	// Formats to emit. Defaults to script only.
	Formats []wcx.Format
	// Out receives one progress line per file. Defaults to os.Stdout.
	Out io.Writer
	// Logger receives watch mode diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Generator generates artifacts from definition files.
type Generator struct {
	opts Options
}

// New creates a generator. Cloud is not a file format and is rejected.
func New(opts Options) (*Generator, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = []wcx.Format{wcx.FormatScript}
	}
	for _, f := range opts.Formats {
		if _, ok := outputSuffix[f]; !ok {
			return nil, fmt.Errorf("generator: format %q cannot be written to a file", f)
		}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{opts: opts}, nil
}

// Generate writes artifacts for every definition file matched by
// patterns. A pattern is a file, a directory, or a directory followed by
// "/..." for a recursive walk. Every file is attempted; the errors are
// joined.
func (g *Generator) Generate(patterns ...string) error {
	files, err := FindDefinitions(patterns)
	if err != nil {
		return err
	}
	var errs []error
	for _, file := range files {
		if _, err := g.GenerateFile(file); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GenerateFile writes the artifacts for one definition file and returns
// their paths.
func (g *Generator) GenerateFile(path string) ([]string, error) {
	rec, err := LoadDefinition(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var written []string
	for _, format := range g.opts.Formats {
		out := OutputPath(path, format)
		fmt.Fprintf(g.opts.Out, "generating %s\n", out)
		if g.opts.DryRun {
			written = append(written, out)
			continue
		}
		data, err := render(rec, format)
		if err != nil {
			return written, fmt.Errorf("%s: %w", path, err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

// Clean removes the artifacts generated for definition files matched by
// patterns.
func (g *Generator) Clean(patterns ...string) error {
	files, err := FindDefinitions(patterns)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := g.cleanFile(file); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) cleanFile(path string) error {
	for _, suffix := range sortedSuffixes() {
		out := trimDefinitionSuffix(path) + suffix
		if _, err := os.Stat(out); err != nil {
			continue
		}
		fmt.Fprintf(g.opts.Out, "removing %s\n", out)
		if g.opts.DryRun {
			continue
		}
		if err := os.Remove(out); err != nil {
			return err
		}
	}
	return nil
}

// LoadDefinition reads a definition file into a record with defaults
// filled and checks that it compiles.
func LoadDefinition(path string) (*wcx.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDefinition(data)
}

// ParseDefinition decodes YAML definition data.
func ParseDefinition(data []byte) (*wcx.Record, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", wcx.ErrInvalidRecord, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: empty definition", wcx.ErrInvalidRecord)
	}
	// The JSON form is the record's canonical document; going through it
	// fills defaults the same way imports do.
	doc, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wcx.ErrInvalidRecord, err)
	}
	rec, err := wcx.ParseRecord(doc)
	if err != nil {
		return nil, err
	}
	if err := wcx.Check(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func render(rec *wcx.Record, format wcx.Format) ([]byte, error) {
	art := &wcx.Artifact{Format: format, Record: rec}
	switch format {
	case wcx.FormatScript:
		script, err := wcx.GenerateScript(rec)
		if err != nil {
			return nil, err
		}
		art.Script = scriptHeader + script
	case wcx.FormatJSON:
		art.Document = wcx.GenerateDocument(rec)
	}
	data, err := art.Bytes()
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(string(data), "\n") {
		data = append(data, '\n')
	}
	return data, nil
}

// OutputPath returns the artifact path for a definition file.
func OutputPath(path string, format wcx.Format) string {
	return trimDefinitionSuffix(path) + outputSuffix[format]
}

// IsDefinition reports whether path names a definition file.
func IsDefinition(path string) bool {
	return strings.HasSuffix(path, SuffixYAML) || strings.HasSuffix(path, SuffixYML)
}

func trimDefinitionSuffix(path string) string {
	if s, ok := strings.CutSuffix(path, SuffixYAML); ok {
		return s
	}
	return strings.TrimSuffix(path, SuffixYML)
}

func sortedSuffixes() []string {
	out := make([]string, 0, len(outputSuffix))
	for _, s := range outputSuffix {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// FindDefinitions resolves patterns to definition files, sorted and
// without duplicates.
func FindDefinitions(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, pattern := range patterns {
		if root, ok := strings.CutSuffix(pattern, "/..."); ok {
			if root == "" {
				root = "."
			}
			err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if path != root && skipDir(d.Name()) {
						return filepath.SkipDir
					}
					return nil
				}
				if IsDefinition(path) {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !IsDefinition(pattern) {
				return nil, fmt.Errorf("generator: %s is not a %s file", pattern, SuffixYAML)
			}
			add(pattern)
			continue
		}
		entries, err := os.ReadDir(pattern)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && IsDefinition(e.Name()) {
				add(filepath.Join(pattern, e.Name()))
			}
		}
	}
	slices.Sort(files)
	return files, nil
}

// skipDir skips hidden, vendored and fixture directories.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" || name == "node_modules"
}
