package wcx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPascalName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my-component", "MyComponent"},
		{"test-component-name", "TestComponentName"},
		{"simple", "Simple"},
		{"data-table", "DataTable"},
		{"x--y", "XY"},
	}
	for _, tt := range tests {
		if got := PascalName(tt.in); got != tt.want {
			t.Errorf("PascalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassNameSanitizes(t *testing.T) {
	if got := className("ui.kit-button"); got != "Ui_kitButton" {
		t.Errorf("className = %q", got)
	}
}

func TestExportScriptDataTable(t *testing.T) {
	b := New(WithClock(func() time.Time { return testNow }))
	_, err := b.Define(&Definition{
		Name:     "data-table",
		Props:    []string{"headers", "data"},
		Template: MustTemplate(`<table data-rows="${length(props.data)}"><caption>${props.headers}</caption></table>`),
		Styles:   "table { border-collapse: collapse; }",
		Methods: map[string]*Method{
			"clear": MustMethod(`set_state({rows = []})`),
		},
	})
	if err != nil {
		t.Fatalf("Define failed: %v", err)
	}

	art, err := b.Export(context.Background(), "data-table", ExportOptions{Format: FormatScript})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	script := art.Script

	for _, want := range []string{
		`data-table`,
		`customElements.get("data-table")`,
		`customElements.define("data-table", DataTable)`,
		`class DataTable extends HTMLElement`,
		`return ["headers","data"];`,
		`window.DataTable = DataTable;`,
		`["clear"](...args)`,
		`this.setState(({"rows": []}))`,
		`attributeChangedCallback(name, oldValue, newValue)`,
		`if (oldValue === newValue) return;`,
		`<data-table headers="value" data="value"></data-table>`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}

	if strings.Index(script, `customElements.get(`) > strings.Index(script, `class DataTable`) {
		t.Error("registration guard must run before the class is defined")
	}
	if art.ContentType() != "application/javascript; charset=utf-8" {
		t.Errorf("ContentType = %q", art.ContentType())
	}
}

func TestGenerateScriptInlinesState(t *testing.T) {
	rec, err := Serialize(counterDefinition(), testNow)
	if err != nil {
		t.Fatal(err)
	}
	script, err := GenerateScript(rec)
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if !strings.Contains(script, `this.state = {"count":0};`) {
		t.Error("initial state not inlined")
	}
	if !strings.Contains(script, `"<style>" + "button { font: inherit }" + "</style>"`) {
		t.Error("styles not inlined")
	}
}

func TestGenerateScriptEscapesUsageComment(t *testing.T) {
	rec := &Record{Name: "odd-one", Version: "1.0.0", Template: "x", Props: []string{"a*/b"}}
	script, err := GenerateScript(rec)
	if err != nil {
		t.Fatal(err)
	}
	body := strings.TrimSuffix(strings.TrimSpace(script), "*/")
	if strings.Contains(body[strings.LastIndex(body, "/*"):], "*/") {
		t.Error("usage comment terminated early")
	}
}

func TestGenerateScriptNotPortable(t *testing.T) {
	rec := &Record{
		Name:     "group-by",
		Version:  "1.0.0",
		Template: "x",
		Methods:  map[string]string{"group": `{for k, v in args : v => k...}`},
	}
	_, err := GenerateScript(rec)
	if !errors.Is(err, ErrNotPortable) {
		t.Errorf("expected ErrNotPortable, got %v", err)
	}
	if !strings.Contains(err.Error(), "methods.group") {
		t.Errorf("error should name the field: %v", err)
	}
}
