package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm/wcx"
)

const tableDefinition = `name: data-table
props: [headers, data]
template: |
  <table>%{ for row in props.data }<tr>${row}</tr>%{ endfor }</table>
styles: "table { width: 100% }"
methods:
  clear: set_state({rows = []})
initialState:
  rows: []
author: ui-team
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newGenerator(t *testing.T, opts Options) (*Generator, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts.Out = &out
	g, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return g, &out
}

func TestParseDefinition(t *testing.T) {
	rec, err := ParseDefinition([]byte(tableDefinition))
	if err != nil {
		t.Fatalf("ParseDefinition failed: %v", err)
	}
	if rec.Name != "data-table" || rec.Version != "1.0.0" {
		t.Errorf("record = %+v", rec)
	}
	if strings.Join(rec.Props, ",") != "headers,data" {
		t.Errorf("Props = %v", rec.Props)
	}
	if rec.Methods["clear"] != "set_state({rows = []})" {
		t.Errorf("Methods = %v", rec.Methods)
	}
	if rec.Extra["author"] != "ui-team" {
		t.Errorf("Extra = %v", rec.Extra)
	}
	if rec.Events == nil {
		t.Error("events should default to an empty list")
	}
}

func TestParseDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", wcx.ErrInvalidRecord},
		{"not yaml", "name: [", wcx.ErrInvalidRecord},
		{"no template", "name: x-y\n", wcx.ErrInvalidRecord},
		{"bad name", "name: nohyphen\ntemplate: x\n", wcx.ErrInvalidRecord},
		{"malformed template", "name: x-y\ntemplate: \"${\"\n", wcx.ErrMalformedBehavior},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewRejectsCloud(t *testing.T) {
	if _, err := New(Options{Formats: []wcx.Format{wcx.FormatCloud}}); err == nil {
		t.Error("expected error for cloud format")
	}
}

func TestGenerateAndClean(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "ui", "table.wc.yaml")
	writeFile(t, def, tableDefinition)
	writeFile(t, filepath.Join(dir, ".hidden", "skip.wc.yaml"), tableDefinition)

	g, out := newGenerator(t, Options{Formats: []wcx.Format{wcx.FormatScript, wcx.FormatJSON}})
	if err := g.Generate(dir + "/..."); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	script, err := os.ReadFile(filepath.Join(dir, "ui", "table.wc.js"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(script), scriptHeader) {
		t.Error("script missing generated header")
	}
	if !strings.Contains(string(script), `customElements.define("data-table", DataTable)`) {
		t.Error("script missing define call")
	}

	raw, err := os.ReadFile(filepath.Join(dir, "ui", "table.wc.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc wcx.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Type != "json" || doc.Data.Name != "data-table" {
		t.Errorf("document = %+v", doc)
	}

	if _, err := os.Stat(filepath.Join(dir, ".hidden", "skip.wc.js")); err == nil {
		t.Error("hidden directory was processed")
	}
	if strings.Count(out.String(), "generating ") != 2 {
		t.Errorf("output = %q", out.String())
	}

	if err := g.Clean(dir + "/..."); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	for _, p := range []string{"table.wc.js", "table.wc.json"} {
		if _, err := os.Stat(filepath.Join(dir, "ui", p)); !os.IsNotExist(err) {
			t.Errorf("%s not removed", p)
		}
	}
	if _, err := os.Stat(def); err != nil {
		t.Error("definition file removed")
	}
}

func TestGenerateDryRun(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "table.wc.yaml")
	writeFile(t, def, tableDefinition)

	g, out := newGenerator(t, Options{DryRun: true})
	written, err := g.GenerateFile(def)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 1 || written[0] != filepath.Join(dir, "table.wc.js") {
		t.Errorf("written = %v", written)
	}
	if _, err := os.Stat(written[0]); !os.IsNotExist(err) {
		t.Error("dry run wrote a file")
	}
	if !strings.Contains(out.String(), "generating") {
		t.Errorf("output = %q", out.String())
	}
}

func TestGenerateCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wc.yaml"), "name: a-b\ntemplate: \"${\"\n")
	writeFile(t, filepath.Join(dir, "b.wc.yaml"), tableDefinition)
	writeFile(t, filepath.Join(dir, "c.wc.yml"), "name: c\n")

	g, _ := newGenerator(t, Options{})
	err := g.Generate(dir)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "a.wc.yaml") || !strings.Contains(err.Error(), "c.wc.yml") {
		t.Errorf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.wc.js")); err != nil {
		t.Error("valid definition was not generated")
	}
}

func TestFindDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.wc.yaml"), "")
	writeFile(t, filepath.Join(dir, "sub", "b.wc.yml"), "")
	writeFile(t, filepath.Join(dir, "sub", "notes.yaml"), "")
	writeFile(t, filepath.Join(dir, "node_modules", "c.wc.yaml"), "")

	files, err := FindDefinitions([]string{dir + "/...", filepath.Join(dir, "a.wc.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.wc.yaml"), filepath.Join(dir, "sub", "b.wc.yml")}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("files = %v, want %v", files, want)
	}

	if _, err := FindDefinitions([]string{filepath.Join(dir, "sub", "notes.yaml")}); err == nil {
		t.Error("non-definition file should be rejected")
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("x/card.wc.yaml", wcx.FormatScript); got != "x/card.wc.js" {
		t.Errorf("OutputPath = %q", got)
	}
	if got := OutputPath("card.wc.yml", wcx.FormatJSON); got != "card.wc.json" {
		t.Errorf("OutputPath = %q", got)
	}
}

func TestWatchRegenerates(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "table.wc.yaml")
	writeFile(t, def, tableDefinition)

	g, _ := newGenerator(t, Options{})
	events := make(chan WatchEvent, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Watch(ctx, func(ev WatchEvent) { events <- ev }, dir) }()

	out := filepath.Join(dir, "table.wc.js")
	waitFor(t, func() bool { _, err := os.Stat(out); return err == nil })

	// The watcher may not be registered yet; keep touching the file until
	// an event arrives.
	updated := strings.Replace(tableDefinition, "<table>", "<table class=\"v2\">", 1)
	var ev WatchEvent
	deadline := time.After(5 * time.Second)
loop:
	for {
		writeFile(t, def, updated)
		select {
		case ev = <-events:
			break loop
		case <-time.After(300 * time.Millisecond):
		case <-deadline:
			t.Fatal("no watch event")
		}
	}
	if ev.Err != nil || ev.Path != def {
		t.Errorf("event = %+v", ev)
	}
	script, _ := os.ReadFile(out)
	if !strings.Contains(string(script), `class=\"v2\"`) {
		t.Error("script not regenerated")
	}

	if err := os.Remove(def); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { _, err := os.Stat(out); return os.IsNotExist(err) })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
