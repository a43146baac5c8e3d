package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cardDefinition = `name: hello-card
props: [name]
template: "<p>Hello ${props.name}! (${state.clicks})</p>"
methods:
  click: set_state({clicks = state.clicks + 1})
initialState:
  clicks: 0
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), append([]string{"wcx"}, args...))
	return stdout.String(), err
}

func writeDefinition(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "card.wc.yaml")
	if err := os.WriteFile(path, []byte(cardDefinition), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "wcx version "+version+"\n" {
		t.Errorf("out = %q", out)
	}
}

func TestRootFlags(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"-v"}, {"--verbose", "version"}} {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if out != "wcx version "+version+"\n" {
			t.Errorf("%v: out = %q", args, out)
		}
	}
}

func TestExport(t *testing.T) {
	path := writeDefinition(t)

	out, err := run(t, "export", "--format", "json", path)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	if !strings.Contains(out, `"type": "json"`) || !strings.Contains(out, `<hello-card name=\"value\"></hello-card>`) {
		t.Errorf("out = %s", out)
	}

	out, err = run(t, "export", path)
	if err != nil {
		t.Fatalf("export script: %v", err)
	}
	if !strings.Contains(out, "class HelloCard extends HTMLElement") {
		t.Error("script missing class")
	}

	if _, err := run(t, "export", "--format", "cloud", path); err == nil || !strings.Contains(err.Error(), "apiEndpoint") {
		t.Errorf("cloud without endpoint err = %v", err)
	}
}

func TestImportRendersShadowContent(t *testing.T) {
	path := writeDefinition(t)

	out, err := run(t, "import", "--attr", "name=Ada", "--call", "click", "--call", "click", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if strings.TrimSpace(out) != "<style></style><p>Hello Ada! (2)</p>" {
		t.Errorf("out = %q", out)
	}

	out, err = run(t, "import", `{"name":"json-card","template":"<i>ok</i>"}`)
	if err != nil {
		t.Fatalf("import json: %v", err)
	}
	if strings.TrimSpace(out) != "<style></style><i>ok</i>" {
		t.Errorf("out = %q", out)
	}

	if _, err := run(t, "import", "some-name"); err == nil || !strings.Contains(err.Error(), "apiEndpoint") {
		t.Errorf("name import without endpoint err = %v", err)
	}
}

func TestGenerateAndClean(t *testing.T) {
	path := writeDefinition(t)
	dir := filepath.Dir(path)

	out, err := run(t, "generate", "--format", "script", "--format", "json", dir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Count(out, "generating") != 2 {
		t.Errorf("out = %q", out)
	}
	for _, name := range []string{"card.wc.js", "card.wc.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not generated", name)
		}
	}

	out, err = run(t, "import", "--attr", "name=Bo", filepath.Join(dir, "card.wc.json"))
	if err != nil {
		t.Fatalf("import generated document: %v", err)
	}
	if strings.TrimSpace(out) != "<style></style><p>Hello Bo! (0)</p>" {
		t.Errorf("out = %q", out)
	}

	if _, err := run(t, "clean", dir); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "card.wc.js")); !os.IsNotExist(err) {
		t.Error("card.wc.js not removed")
	}
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	if _, err := run(t, "generate", "--format", "pdf", t.TempDir()); err == nil {
		t.Error("expected error")
	}
}
