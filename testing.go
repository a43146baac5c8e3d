package wcx

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// TestResult holds rendered output for assertions.
type TestResult struct {
	HTML string
}

// TestRender renders a definition's template directly, without mounting.
//
//	result, err := wcx.TestRender(Counter, map[string]any{"label": "Clicks"}, nil)
//	if !result.HTMLContains("Clicks: 0") {
//	    t.Fatal("missing count")
//	}
//
// A nil state uses the definition's initial state.
func TestRender(def *Definition, props, state map[string]any) (*TestResult, error) {
	if state == nil {
		state = def.InitialState
	}
	html, err := def.Render(props, state)
	if err != nil {
		return nil, err
	}
	return &TestResult{HTML: html}, nil
}

// TestStatic renders the server-side preview of a definition.
func TestStatic(def *Definition, attrs map[string]string) (*TestResult, error) {
	var buf bytes.Buffer
	if err := Static(def, attrs).Render(context.Background(), &buf); err != nil {
		return nil, err
	}
	return &TestResult{HTML: buf.String()}, nil
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// TestHost is an in-memory Host and ShadowRoot. Every SetInnerHTML call is
// recorded, so tests can count renders.
type TestHost struct {
	Attrs   map[string]string
	History []string
	shadows int
}

// NewTestHost creates a host with the given attributes.
func NewTestHost(attrs map[string]string) *TestHost {
	h := &TestHost{Attrs: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		h.Attrs[k] = v
	}
	return h
}

// Attribute implements Host.
func (h *TestHost) Attribute(name string) (string, bool) {
	v, ok := h.Attrs[name]
	return v, ok
}

// AttachShadow implements Host.
func (h *TestHost) AttachShadow() ShadowRoot {
	h.shadows++
	return h
}

// SetInnerHTML implements ShadowRoot.
func (h *TestHost) SetInnerHTML(html string) {
	h.History = append(h.History, html)
}

// HTML returns the current shadow content.
func (h *TestHost) HTML() string {
	if len(h.History) == 0 {
		return ""
	}
	return h.History[len(h.History)-1]
}

// MountedElement is an element connected to a TestHost.
type MountedElement struct {
	*Element
	Host *TestHost
}

// TestMount constructs def on a TestHost with attrs and connects it.
//
//	el, err := wcx.TestMount(Counter, map[string]string{"label": "Clicks"})
//	_, err = el.Call("increment")
//	if !strings.Contains(el.Host.HTML(), "Clicks: 1") { ... }
func TestMount(def *Definition, attrs map[string]string) (*MountedElement, error) {
	host := NewTestHost(attrs)
	el := NewElement(def, host)
	if err := el.Connected(); err != nil {
		return nil, err
	}
	return &MountedElement{Element: el, Host: host}, nil
}

// SetAttribute changes an attribute the way a rendering target would,
// notifying the element when the attribute is observed.
func (m *MountedElement) SetAttribute(name, value string) error {
	old := m.Host.Attrs[name]
	m.Host.Attrs[name] = value
	if !m.observes(name) {
		return nil
	}
	return m.AttributeChanged(name, old, value)
}

// RemoveAttribute removes an attribute; the element sees "".
func (m *MountedElement) RemoveAttribute(name string) error {
	old, ok := m.Host.Attrs[name]
	if !ok {
		return nil
	}
	delete(m.Host.Attrs, name)
	if !m.observes(name) {
		return nil
	}
	return m.AttributeChanged(name, old, "")
}

func (m *MountedElement) observes(name string) bool {
	for _, p := range m.def.Props {
		if p == name {
			return true
		}
	}
	return false
}

// TestRegistry is an in-memory ElementRegistry. It refuses to redefine a
// name, like a browser's customElements.
type TestRegistry struct {
	mu      sync.Mutex
	classes map[string]ElementClass
	Defines int
}

// NewTestRegistry creates an empty registry.
func NewTestRegistry() *TestRegistry {
	return &TestRegistry{classes: make(map[string]ElementClass)}
}

// Get implements ElementRegistry.
func (r *TestRegistry) Get(name string) ElementClass {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classes[name]
}

// Define implements ElementRegistry.
func (r *TestRegistry) Define(name string, class ElementClass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[name]; ok {
		return fmt.Errorf("%q has already been defined", name)
	}
	r.classes[name] = class
	r.Defines++
	return nil
}

// Names returns the registered names in lexical order.
func (r *TestRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.classes))
	for k := range r.classes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
