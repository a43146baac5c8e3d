package mcpserver

// RecordFormat describes a component record for LLM clients that create
// components through save_component.
const RecordFormat = `# wcx Component Record Format

A record is a JSON object:

` + "```" + `json
{
  "name": "click-counter",
  "version": "1.0.0",
  "props": ["label"],
  "template": "<button>${props.label}: ${state.count}</button>",
  "styles": "button { font: inherit }",
  "methods": {
    "increment": "set_state({count = state.count + 1})"
  },
  "events": ["change"],
  "initialState": {"count": 0}
}
` + "```" + `

## Rules

1. **name** is required: lowercase, starts with a letter, contains a hyphen.
2. **version** is MAJOR.MINOR.PATCH and defaults to 1.0.0.
3. **template** is required. It is markup with ${...} interpolations and
   %{for x in ...}...%{endfor} / %{if ...}...%{endif} directives.
   ` + "`props`" + ` and ` + "`state`" + ` are in scope.
4. **methods** map a name to one expression. ` + "`props`" + `, ` + "`state`" + ` and
   ` + "`args`" + ` (the call arguments as a list) are in scope.
   ` + "`set_state({...})`" + ` shallow-merges into state and re-renders.
5. Functions: upper, lower, trimspace, join, length, contains, keys,
   values, merge, coalesce, replace, min, max, jsonencode, jsondecode,
   tostring, tonumber.
6. Any other top-level key is kept as an extension field.
`
