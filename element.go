package wcx

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/a-h/templ"
)

// ElementRegistry is the rendering target's custom element registry.
type ElementRegistry interface {
	// Get returns the class registered under name, or nil.
	Get(name string) ElementClass
	// Define registers class under name.
	Define(name string, class ElementClass) error
}

// ElementClass is a registrable element type.
type ElementClass interface {
	// ObservedAttributes lists the attributes whose changes the target
	// reports through ElementCallbacks.AttributeChanged.
	ObservedAttributes() []string
	// New constructs an element instance for host.
	New(host Host) ElementCallbacks
}

// Host is the element as seen by its implementation.
type Host interface {
	Attribute(name string) (string, bool)
	AttachShadow() ShadowRoot
}

// ShadowRoot is an element's isolated content region.
type ShadowRoot interface {
	SetInnerHTML(html string)
}

// ElementCallbacks receives lifecycle notifications from the target.
type ElementCallbacks interface {
	Connected() error
	AttributeChanged(name, oldValue, newValue string) error
}

type elementClass struct {
	def *Definition
}

// NewElementClass binds def to the element lifecycle. Instances capture def
// at construction; redefining the component later does not affect them.
func NewElementClass(def *Definition) ElementClass {
	return &elementClass{def: def}
}

func (c *elementClass) ObservedAttributes() []string {
	return append([]string(nil), c.def.Props...)
}

func (c *elementClass) New(host Host) ElementCallbacks {
	return NewElement(c.def, host)
}

// Element is a mounted component instance. It is not safe for concurrent
// use; the rendering target delivers callbacks one at a time.
type Element struct {
	def       *Definition
	host      Host
	shadow    ShadowRoot
	props     map[string]any
	state     map[string]any
	connected bool
	mounted   bool
	renders   int
}

// NewElement constructs an element for host: the shadow root is attached
// and state is seeded from the definition's initial state.
func NewElement(def *Definition, host Host) *Element {
	state := make(map[string]any, len(def.InitialState))
	for k, v := range def.InitialState {
		state[k] = deepCopy(v)
	}
	return &Element{
		def:    def,
		host:   host,
		shadow: host.AttachShadow(),
		props:  make(map[string]any, len(def.Props)),
		state:  state,
	}
}

// Connected reads every prop from the host's attributes (missing ones are
// ""), renders, and runs the mounted hook the first time.
func (e *Element) Connected() error {
	for _, name := range e.def.Props {
		v, _ := e.host.Attribute(name)
		e.props[name] = v
	}
	e.connected = true
	if err := e.render(); err != nil {
		return err
	}
	if !e.mounted {
		e.mounted = true
		if e.def.Mounted != nil {
			e.def.Mounted()
		}
	}
	return nil
}

// AttributeChanged updates a prop and re-renders when the value actually
// changed. Changes before the element is connected are picked up on
// connect.
func (e *Element) AttributeChanged(name, oldValue, newValue string) error {
	if !e.connected || oldValue == newValue {
		return nil
	}
	if cur, ok := e.props[name]; ok && cur == newValue {
		return nil
	}
	e.props[name] = newValue
	return e.render()
}

// SetState shallow-merges partial into the state and re-renders.
func (e *Element) SetState(partial map[string]any) error {
	for k, v := range partial {
		e.state[k] = v
	}
	if !e.connected {
		return nil
	}
	return e.render()
}

// Call runs a named method. Each set_state the method performs is applied
// in order, with a re-render after each.
func (e *Element) Call(method string, args ...any) (any, error) {
	m, ok := e.def.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: method %q on %s", ErrNotFound, method, e.def.Name)
	}
	res, err := m.Call(Scope{Props: e.Props(), State: e.State(), Args: args})
	if err != nil {
		return nil, fmt.Errorf("wcx: %s.%s: %w", e.def.Name, method, err)
	}
	for _, partial := range res.Merges {
		if err := e.SetState(partial); err != nil {
			return nil, err
		}
	}
	return res.Value, nil
}

// Props returns a copy of the current props.
func (e *Element) Props() map[string]any {
	return copyMap(e.props)
}

// State returns a copy of the current state.
func (e *Element) State() map[string]any {
	return copyMap(e.state)
}

// Renders returns how many times the element has rendered.
func (e *Element) Renders() int {
	return e.renders
}

// Mounted reports whether the element has been connected at least once.
func (e *Element) Mounted() bool {
	return e.mounted
}

func (e *Element) render() error {
	markup, err := e.def.Render(e.props, e.state)
	if err != nil {
		return fmt.Errorf("wcx: render %s: %w", e.def.Name, err)
	}
	e.shadow.SetInnerHTML(shadowContent(e.def.Styles, markup))
	e.renders++
	return nil
}

func shadowContent(styles, markup string) string {
	return "<style>" + styles + "</style>" + markup
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Static renders def server-side as its custom element tag with a
// declarative shadow root, so the content displays before any script runs.
// attrs supplies prop values; props without a value render as "".
func Static(def *Definition, attrs map[string]string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		props := make(map[string]any, len(def.Props))
		for _, p := range def.Props {
			props[p] = attrs[p]
		}
		state := make(map[string]any, len(def.InitialState))
		for k, v := range def.InitialState {
			state[k] = deepCopy(v)
		}
		markup, err := def.Render(props, state)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(attrs))
		for k := range attrs {
			names = append(names, k)
		}
		sort.Strings(names)

		if _, err := io.WriteString(w, "<"+def.Name); err != nil {
			return err
		}
		for _, k := range names {
			if _, err := fmt.Fprintf(w, ` %s="%s"`, templ.EscapeString(k), templ.EscapeString(attrs[k])); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `><template shadowrootmode="open">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, shadowContent(def.Styles, markup)); err != nil {
			return err
		}
		_, err = io.WriteString(w, "</template></"+def.Name+">")
		return err
	})
}
