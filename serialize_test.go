package wcx

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func counterDefinition() *Definition {
	return &Definition{
		Name:     "click-counter",
		Version:  "1.1.0",
		Props:    []string{"label"},
		Template: MustTemplate(`<button>${props.label}: ${state.count}</button>`),
		Styles:   "button { font: inherit }",
		Methods: map[string]*Method{
			"increment": MustMethod(`set_state({count = state.count + 1})`),
			"describe":  MustMethod(`"${props.label} at ${state.count} (${length(args)} args)"`),
		},
		Events:       []string{"changed"},
		InitialState: map[string]any{"count": 0},
		Extra:        map[string]any{"author": "ada", "name": "ignored"},
	}
}

func TestSerializeDefaults(t *testing.T) {
	def := &Definition{Name: "bare-widget", Template: MustTemplate("<p>hi</p>")}

	rec, err := Serialize(def, testNow)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	want := &Record{
		Name:     "bare-widget",
		Version:  "1.0.0",
		Props:    []string{},
		Template: "<p>hi</p>",
		Styles:   "",
		Methods:  map[string]string{},
		Events:   []string{},
		Created:  testNow,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeCapturesSource(t *testing.T) {
	def := counterDefinition()
	rec, err := Serialize(def, testNow)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if rec.Template != `<button>${props.label}: ${state.count}</button>` {
		t.Errorf("Template = %q", rec.Template)
	}
	if rec.Methods["increment"] != `set_state({count = state.count + 1})` {
		t.Errorf("increment = %q", rec.Methods["increment"])
	}
	if rec.Extra["author"] != "ada" {
		t.Errorf("extension field lost: %v", rec.Extra)
	}
	if rec.Name != "click-counter" {
		t.Errorf("reserved extension key overrode name: %q", rec.Name)
	}
	if got := rec.Extra[InitialStateField]; !cmp.Equal(got, map[string]any{"count": 0}) {
		t.Errorf("initialState = %v", got)
	}
}

func TestSerializeDoesNotMutateInput(t *testing.T) {
	def := counterDefinition()
	before := *def

	rec, err := Serialize(def, testNow)
	if err != nil {
		t.Fatal(err)
	}
	rec.Props[0] = "changed"
	rec.Extra[InitialStateField].(map[string]any)["count"] = 99

	if def.Props[0] != "label" {
		t.Error("Serialize shares props with the definition")
	}
	if def.InitialState["count"] != 0 {
		t.Error("Serialize shares initial state with the definition")
	}
	if def.Version != before.Version || len(def.Methods) != len(before.Methods) {
		t.Error("definition modified")
	}
}

func TestSerializeStampsCreated(t *testing.T) {
	def := counterDefinition()
	later := testNow.Add(48 * time.Hour)

	rec, _ := Serialize(def, testNow)
	rec2, _ := Serialize(def, later)
	if !rec.Created.Equal(testNow) || !rec2.Created.Equal(later) {
		t.Errorf("Created = %v, %v", rec.Created, rec2.Created)
	}
}

func TestSerializeMissingTemplate(t *testing.T) {
	_, err := Serialize(&Definition{Name: "a-b"}, testNow)
	var mb *MalformedBehaviorError
	if !errors.As(err, &mb) || mb.Field != "template" {
		t.Errorf("expected malformed template, got %v", err)
	}
}

// Serializing then reconstructing must render and behave identically.
func TestRoundTripLaw(t *testing.T) {
	def := counterDefinition()
	rec, err := Serialize(def, testNow)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Reconstruct(rec)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	inputs := []struct {
		props map[string]any
		state map[string]any
	}{
		{map[string]any{"label": "Clicks"}, map[string]any{"count": 0}},
		{map[string]any{"label": "<b>"}, map[string]any{"count": 41}},
		{map[string]any{"label": ""}, map[string]any{"count": -3.5}},
	}
	for _, in := range inputs {
		want, err := def.Render(in.props, in.state)
		if err != nil {
			t.Fatal(err)
		}
		got, err := back.Render(in.props, in.state)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("render mismatch: %q vs %q", got, want)
		}

		for name, m := range def.Methods {
			scope := Scope{Props: in.props, State: in.state, Args: []any{"a", 2}}
			wantRes, err := m.Call(scope)
			if err != nil {
				t.Fatal(err)
			}
			gotRes, err := back.Methods[name].Call(scope)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(wantRes, gotRes); diff != "" {
				t.Errorf("method %s mismatch (-want +got):\n%s", name, diff)
			}
		}
	}

	if !cmp.Equal(back.InitialState, def.InitialState) {
		t.Errorf("InitialState = %v", back.InitialState)
	}
	if back.Extra["author"] != "ada" {
		t.Errorf("Extra = %v", back.Extra)
	}
}

func TestReconstructMalformed(t *testing.T) {
	tests := []struct {
		name  string
		rec   *Record
		field string
	}{
		{
			name:  "template syntax",
			rec:   &Record{Name: "a-b", Template: "${props.x"},
			field: "template",
		},
		{
			name:  "empty template",
			rec:   &Record{Name: "a-b"},
			field: "template",
		},
		{
			name: "method syntax",
			rec: &Record{Name: "a-b", Template: "ok", Methods: map[string]string{
				"good": "1 + 1",
				"bad":  "set_state({",
			}},
			field: "methods.bad",
		},
		{
			name:  "unknown function",
			rec:   &Record{Name: "a-b", Template: "ok", Methods: map[string]string{"run": "exec(1)"}},
			field: "methods.run",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Reconstruct(tt.rec)
			if def != nil {
				t.Error("expected no definition")
			}
			var mb *MalformedBehaviorError
			if !errors.As(err, &mb) {
				t.Fatalf("expected MalformedBehaviorError, got %v", err)
			}
			if mb.Field != tt.field {
				t.Errorf("Field = %q, want %q", mb.Field, tt.field)
			}
		})
	}
}

func TestReconstructInitialStateType(t *testing.T) {
	_, err := Reconstruct(&Record{Name: "a-b", Template: "x", Extra: map[string]any{InitialStateField: "nope"}})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}
