package wcx

// InitialStateField is the extension field that carries a definition's
// initial state through serialization.
const InitialStateField = "initialState"

// Definition is the live, executable form of a component.
//
//	var Counter = &wcx.Definition{
//	    Name:     "click-counter",
//	    Props:    []string{"label"},
//	    Template: wcx.MustTemplate(`<button>${props.label}: ${state.count}</button>`),
//	    Methods: map[string]*wcx.Method{
//	        "increment": wcx.MustMethod(`set_state({count = state.count + 1})`),
//	    },
//	    InitialState: map[string]any{"count": 0},
//	}
//
// Mounted is invoked once per element, the first time it is connected. It
// has no source form and does not survive serialization.
type Definition struct {
	Name         string
	Version      string
	Props        []string
	Template     *Template
	Styles       string
	Methods      map[string]*Method
	Events       []string
	InitialState map[string]any
	Mounted      func()

	// Extra holds extension fields carried through serialization.
	// Keys that collide with record fields are dropped.
	Extra map[string]any
}

// Render evaluates the template for the given inputs.
func (d *Definition) Render(props, state map[string]any) (string, error) {
	if d.Template == nil {
		return "", &MalformedBehaviorError{Field: "template", Err: errMissingBehavior}
	}
	return d.Template.Render(props, state)
}
