// Package wcx defines web components once and moves them between
// execution contexts as portable records.
//
// A component is a Definition: observed props, styles, a render template,
// named methods and an optional initial state. Defining it stores a Record
// (the serialized form, with behavior as source text) and registers a
// custom element on the attached rendering target. Exporting turns the
// record into an artifact another context can consume without sharing any
// Go code.
//
// # Core Concepts
//
// Behavior is declarative. Templates are HCL string templates evaluated
// with props and state in scope; methods are HCL expressions that also see
// args and may call set_state to merge into the element's state:
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
// Because behavior is data rather than closures, Serialize captures it as
// text and Reconstruct compiles it back with identical results. Nothing
// reconstructed can run arbitrary code.
//
// # Artifacts
//
// Export produces one of three artifacts from a stored record:
//   - FormatScript: a standalone JavaScript file that defines and
//     registers the element, safe to load twice
//   - FormatJSON: a Document envelope with the record and usage text
//   - FormatCloud: the record saved to a component store
//
// Import accepts a RecordSource, URLSource, JSONSource or NameSource.
// ClassifySource picks one from a string.
//
// # Rendering Targets
//
// The element lifecycle runs against the narrow ElementRegistry, Host and
// ShadowRoot interfaces. lib/dom provides an in-memory document; Static
// renders a declarative shadow root for server-side previews.
//
// # Ownership
//
// Every Builder owns its Store. There is no package-level registry, and a
// name registered on a rendering target stays registered: registering it
// again is a logged no-op, and redefining it does not touch elements that
// are already live.
package wcx
