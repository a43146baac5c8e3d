package components

import "github.com/pthm/wcx"

// TodoItem renders one entry. done is the string "true" or "false".
var TodoItem = &wcx.Definition{
	Name:  "todo-item",
	Props: []string{"label", "done"},
	Template: wcx.MustTemplate(
		`<li class="${props.done == "true" ? "done" : "open"}">${props.label}</li>`),
	Styles: ".done { text-decoration: line-through }",
}
