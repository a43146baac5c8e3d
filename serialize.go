package wcx

import (
	"errors"
	"time"
)

var errMissingBehavior = errors.New("no behavior supplied")

// Serialize converts a live definition into a record. Behavior is captured
// as source text, absent fields get their defaults and Created is set to
// now. The definition is not modified.
func Serialize(def *Definition, now time.Time) (*Record, error) {
	if def == nil {
		return nil, errors.New("wcx: nil definition")
	}
	if def.Template == nil {
		return nil, &MalformedBehaviorError{Field: "template", Err: errMissingBehavior}
	}

	rec := &Record{
		Name:     def.Name,
		Version:  def.Version,
		Props:    append([]string(nil), def.Props...),
		Template: def.Template.Source(),
		Styles:   def.Styles,
		Methods:  make(map[string]string, len(def.Methods)),
		Events:   append([]string(nil), def.Events...),
		Created:  now,
	}
	for name, m := range def.Methods {
		if m == nil {
			return nil, &MalformedBehaviorError{Field: "methods." + name, Err: errMissingBehavior}
		}
		rec.Methods[name] = m.Source()
	}

	for k, v := range def.Extra {
		if reservedFields[k] || k == InitialStateField {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any)
		}
		rec.Extra[k] = deepCopy(v)
	}
	if def.InitialState != nil {
		if rec.Extra == nil {
			rec.Extra = make(map[string]any)
		}
		rec.Extra[InitialStateField] = deepCopy(def.InitialState)
	}

	applyDefaults(rec)
	return rec, nil
}

// applyDefaults fills absent fields: version "1.0.0", empty props, events
// and methods.
func applyDefaults(rec *Record) {
	if rec.Version == "" {
		rec.Version = DefaultVersion
	}
	if rec.Props == nil {
		rec.Props = []string{}
	}
	if rec.Events == nil {
		rec.Events = []string{}
	}
	if rec.Methods == nil {
		rec.Methods = map[string]string{}
	}
}
