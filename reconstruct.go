package wcx

import "fmt"

// Reconstruct compiles a record back into a live definition. The first
// template or method that fails to compile is reported as a
// MalformedBehaviorError naming the field. Methods are compiled in name
// order so the reported field is deterministic.
func Reconstruct(rec *Record) (*Definition, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}

	tpl, err := CompileTemplate(rec.Template)
	if err != nil {
		return nil, wrapBehaviorError("template", err)
	}

	methods := make(map[string]*Method, len(rec.Methods))
	for _, name := range rec.MethodNames() {
		m, err := CompileMethod(rec.Methods[name])
		if err != nil {
			return nil, wrapBehaviorError("methods."+name, err)
		}
		methods[name] = m
	}

	def := &Definition{
		Name:     rec.Name,
		Version:  rec.Version,
		Props:    append([]string{}, rec.Props...),
		Template: tpl,
		Styles:   rec.Styles,
		Methods:  methods,
		Events:   append([]string{}, rec.Events...),
	}
	if def.Version == "" {
		def.Version = DefaultVersion
	}

	for k, v := range rec.Extra {
		if k == InitialStateField {
			state, ok := asMap(v)
			if !ok && v != nil {
				return nil, fieldError(InitialStateField, "an object", v)
			}
			def.InitialState = state
			continue
		}
		if def.Extra == nil {
			def.Extra = make(map[string]any)
		}
		def.Extra[k] = deepCopy(v)
	}
	return def, nil
}

// Check validates rec, including its element name, and compiles its
// behavior without keeping the result. Stores call it before accepting a
// record.
func Check(rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := ValidateName(rec.Name); err != nil {
		return err
	}
	_, err := Reconstruct(rec)
	return err
}
