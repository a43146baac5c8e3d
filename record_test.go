package wcx

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRecordJSONRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exported := created.Add(time.Hour)
	rec := &Record{
		Name:          "data-table",
		Version:       "2.1.0",
		Props:         []string{"headers", "data"},
		Template:      "<table>${props.headers}</table>",
		Styles:        "table { width: 100% }",
		Methods:       map[string]string{"sort": `set_state({sorted = true})`},
		Events:        []string{"row-click"},
		Created:       created,
		ExportedAt:    &exported,
		ExportOptions: map[string]any{"format": "json"},
		Extra: map[string]any{
			"author": "ada",
			"tags":   []any{"grid", "ui"},
		},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var top map[string]any
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("Unmarshal map failed: %v", err)
	}
	if top["author"] != "ada" {
		t.Errorf("extension field not flattened: %v", top)
	}
	if _, ok := top["exportedAt"]; !ok {
		t.Error("exportedAt missing")
	}

	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(rec, &got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordJSONOmitsExportFields(t *testing.T) {
	data, err := json.Marshal(&Record{Name: "a-b", Template: "x"})
	if err != nil {
		t.Fatal(err)
	}
	var top map[string]any
	_ = json.Unmarshal(data, &top)
	for _, k := range []string{"exportedAt", "exportOptions", "created"} {
		if _, ok := top[k]; ok {
			t.Errorf("%s should be omitted", k)
		}
	}
	if _, ok := top["methods"].(map[string]any); !ok {
		t.Error("methods should always be an object")
	}
}

func TestRecordDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"name not string", `{"name": 5, "template": "x"}`},
		{"props not list", `{"name": "a-b", "props": "title"}`},
		{"prop not string", `{"name": "a-b", "props": ["ok", 1]}`},
		{"methods not object", `{"name": "a-b", "methods": ["x"]}`},
		{"method not string", `{"name": "a-b", "methods": {"x": 1}}`},
		{"bad timestamp", `{"name": "a-b", "created": "yesterday"}`},
		{"null document", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			err := json.Unmarshal([]byte(tt.doc), &rec)
			if !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestRecordValidate(t *testing.T) {
	valid := func() *Record {
		return &Record{Name: "my-widget", Version: "1.0.0", Template: "<p></p>", Props: []string{"title"}}
	}

	tests := []struct {
		name   string
		mutate func(*Record)
		ok     bool
	}{
		{"valid", func(*Record) {}, true},
		{"prerelease version", func(r *Record) { r.Version = "1.2.3-beta.1" }, true},
		{"missing hyphen", func(r *Record) { r.Name = "widget" }, false},
		{"uppercase", func(r *Record) { r.Name = "My-widget" }, false},
		{"reserved", func(r *Record) { r.Name = "font-face" }, false},
		{"bad version", func(r *Record) { r.Version = "v1" }, false},
		{"short version", func(r *Record) { r.Version = "1.0" }, false},
		{"empty template", func(r *Record) { r.Template = "" }, false},
		{"bad prop", func(r *Record) { r.Props = []string{"a b"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid()
			tt.mutate(rec)
			err := rec.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"my-component", true},
		{"x-1", true},
		{"math-α", true},
		{"simple", false},
		{"-leading", false},
		{"1-digit", false},
		{"has space-x", false},
		{"annotation-xml", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.ok != (err == nil) {
				t.Errorf("ValidateName(%q) = %v", tt.name, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("expected ErrInvalidName, got %v", err)
			}
		})
	}
}

func TestRecordClone(t *testing.T) {
	rec := &Record{
		Name:    "a-b",
		Props:   []string{"x"},
		Methods: map[string]string{"m": "1"},
		Extra:   map[string]any{"nested": map[string]any{"k": "v"}},
	}
	c := rec.Clone()
	c.Props[0] = "changed"
	c.Methods["m"] = "2"
	c.Extra["nested"].(map[string]any)["k"] = "changed"

	if rec.Props[0] != "x" || rec.Methods["m"] != "1" {
		t.Error("clone shares slices or maps")
	}
	if rec.Extra["nested"].(map[string]any)["k"] != "v" {
		t.Error("clone shares nested extension data")
	}
}

func TestCompareVersions(t *testing.T) {
	if CompareVersions("1.2.0", "1.10.0") >= 0 {
		t.Error("1.2.0 should sort before 1.10.0")
	}
	if CompareVersions("2.0.0", "2.0.0-rc.1") <= 0 {
		t.Error("release should sort after prerelease")
	}
}
