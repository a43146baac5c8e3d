package components

import "github.com/pthm/wcx"

// TodoList keeps its items in state as a label -> done map. It renders a
// todo-item per entry, so the browser needs both scripts loaded.
var TodoList = &wcx.Definition{
	Name:  "todo-list",
	Props: []string{"title"},
	Template: wcx.MustTemplate(`<section>
<h2>${props.title}</h2>
<p>${length(state.items)} items</p>
<ul>%{ for label, done in state.items }<todo-item label="${label}" done="${done}"></todo-item>%{ endfor }</ul>
</section>`),
	Styles: "ul { list-style: none; padding: 0 }",
	Methods: map[string]*wcx.Method{
		"add":    wcx.MustMethod(`set_state({items = merge(state.items, {(args[0]) = false})})`),
		"toggle": wcx.MustMethod(`set_state({items = merge(state.items, {(args[0]) = !state.items[args[0]]})})`),
		"clear":  wcx.MustMethod(`set_state({items = {}})`),
	},
	Events:       []string{"change"},
	InitialState: map[string]any{"items": map[string]any{}},
}
