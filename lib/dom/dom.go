// Package dom is a small in-memory document that implements the wcx
// rendering-target contract. It backs the import command and tests that
// need a registry and connected elements without a browser.
package dom

import (
	"fmt"
	"slices"
	"sort"

	"github.com/pthm/wcx"
)

// Document owns a custom element registry and a flat list of connected
// elements.
type Document struct {
	registry *Registry
	elements []*Element
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.registry = &Registry{doc: d, classes: map[string]wcx.ElementClass{}}
	return d
}

// CustomElements returns the document's element registry.
func (d *Document) CustomElements() *Registry {
	return d.registry
}

// CreateElement creates a detached element. If tag is already defined the
// element is upgraded immediately.
func (d *Document) CreateElement(tag string) *Element {
	el := &Element{doc: d, tag: tag, attrs: map[string]string{}}
	if class := d.registry.Get(tag); class != nil {
		el.upgrade(class)
	}
	return el
}

// Append connects el to the document.
func (d *Document) Append(el *Element) error {
	if el.connected {
		return nil
	}
	if el.doc != d {
		return fmt.Errorf("dom: element <%s> belongs to another document", el.tag)
	}
	el.connected = true
	d.elements = append(d.elements, el)
	if el.callbacks != nil {
		return el.callbacks.Connected()
	}
	return nil
}

// Elements returns the connected elements in insertion order.
func (d *Document) Elements() []*Element {
	return slices.Clone(d.elements)
}

// Registry implements wcx.ElementRegistry. Definitions are permanent.
type Registry struct {
	doc     *Document
	classes map[string]wcx.ElementClass
}

var _ wcx.ElementRegistry = (*Registry)(nil)

// Get returns the class defined for name, or nil.
func (r *Registry) Get(name string) wcx.ElementClass {
	return r.classes[name]
}

// Define registers class under name and upgrades existing elements with
// that tag. Defining a name twice is an error.
func (r *Registry) Define(name string, class wcx.ElementClass) error {
	if _, ok := r.classes[name]; ok {
		return fmt.Errorf("dom: %q has already been defined", name)
	}
	r.classes[name] = class
	for _, el := range r.doc.elements {
		if el.tag == name && el.callbacks == nil {
			el.upgrade(class)
			if err := el.callbacks.Connected(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Names returns the defined names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Element is a node in the document. It implements wcx.Host.
type Element struct {
	doc       *Document
	tag       string
	attrs     map[string]string
	shadow    *ShadowRoot
	class     wcx.ElementClass
	callbacks wcx.ElementCallbacks
	connected bool
}

var _ wcx.Host = (*Element)(nil)

func (e *Element) upgrade(class wcx.ElementClass) {
	e.class = class
	e.callbacks = class.New(e)
}

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Connected reports whether the element has been appended.
func (e *Element) Connected() bool { return e.connected }

// Upgraded reports whether a custom element class is bound.
func (e *Element) Upgraded() bool { return e.callbacks != nil }

// Callbacks returns the bound implementation, or nil.
func (e *Element) Callbacks() wcx.ElementCallbacks { return e.callbacks }

// Attribute implements wcx.Host.
func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// AttachShadow implements wcx.Host. Repeated calls return the same root.
func (e *Element) AttachShadow() wcx.ShadowRoot {
	if e.shadow == nil {
		e.shadow = &ShadowRoot{}
	}
	return e.shadow
}

// SetAttribute sets an attribute and notifies the element if the attribute
// is observed.
func (e *Element) SetAttribute(name, value string) error {
	old := e.attrs[name]
	e.attrs[name] = value
	return e.notify(name, old, value)
}

// RemoveAttribute removes an attribute. Removal is reported as a change to
// the empty string.
func (e *Element) RemoveAttribute(name string) error {
	old, ok := e.attrs[name]
	if !ok {
		return nil
	}
	delete(e.attrs, name)
	return e.notify(name, old, "")
}

func (e *Element) notify(name, old, value string) error {
	if e.callbacks == nil || !slices.Contains(e.class.ObservedAttributes(), name) {
		return nil
	}
	return e.callbacks.AttributeChanged(name, old, value)
}

// ShadowHTML returns the current shadow content, or "" without a root.
func (e *Element) ShadowHTML() string {
	if e.shadow == nil {
		return ""
	}
	return e.shadow.html
}

// RenderLog returns every shadow content assignment in order.
func (e *Element) RenderLog() []string {
	if e.shadow == nil {
		return nil
	}
	return slices.Clone(e.shadow.log)
}

// ShadowRoot implements wcx.ShadowRoot.
type ShadowRoot struct {
	html string
	log  []string
}

// SetInnerHTML replaces the root's content.
func (s *ShadowRoot) SetInnerHTML(html string) {
	s.html = html
	s.log = append(s.log, html)
}
