package components

import "github.com/pthm/wcx"

// AddTodo is the input row. It emits "add" with the entered label.
var AddTodo = &wcx.Definition{
	Name:  "add-todo",
	Props: []string{"placeholder"},
	Template: wcx.MustTemplate(
		`<form><input name="label" placeholder="${props.placeholder}"><button>Add</button></form>`),
	Events: []string{"add"},
	Extra:  map[string]any{"category": "forms"},
}
