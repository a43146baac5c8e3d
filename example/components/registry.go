// Package components defines the example's web components.
package components

import "github.com/pthm/wcx"

// All lists every component in dependency order.
var All = []*wcx.Definition{TodoItem, TodoList, AddTodo}

// Init defines every component on b.
func Init(b *wcx.Builder) error {
	for _, def := range All {
		if _, err := b.Define(def); err != nil {
			return err
		}
	}
	return nil
}
