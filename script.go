package wcx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/pthm/wcx/lib/behavior"
)

// PascalName derives a JavaScript identifier from a component name:
// "data-table" becomes "DataTable".
func PascalName(name string) string {
	var b strings.Builder
	for _, seg := range strings.Split(name, "-") {
		if seg == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(seg)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(seg[size:])
	}
	return b.String()
}

// className is PascalName with characters that are not valid in a
// JavaScript identifier replaced by '_'.
func className(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, PascalName(name))
}

// scriptMethod is a method body inlined into the generated class.
type scriptMethod struct {
	Name string // JSON-quoted
	Body string
}

type scriptData struct {
	Name      string // JSON-quoted
	Class     string
	Observed  string // JSON array
	Styles    string // JSON-quoted
	State     string // JSON object
	Template  string
	Methods   []scriptMethod
	Helpers   string
	Usage     string
	Duplicate string // JSON-quoted warning
}

var scriptTemplate = template.Must(template.New("script").Parse(`(() => {
  if (customElements.get({{.Name}})) {
    console.warn({{.Duplicate}});
    return;
  }

  {{.Helpers}}

  class {{.Class}} extends HTMLElement {
    static get observedAttributes() {
      return {{.Observed}};
    }

    constructor() {
      super();
      this.attachShadow({ mode: "open" });
      this.props = {};
      this.state = {{.State}};
    }

    connectedCallback() {
      for (const name of {{.Class}}.observedAttributes) {
        this.props[name] = this.getAttribute(name) ?? "";
      }
      this.render();
    }

    attributeChangedCallback(name, oldValue, newValue) {
      if (oldValue === newValue) return;
      this.props[name] = newValue ?? "";
      if (this.isConnected) this.render();
    }

    setState(partial) {
      this.state = { ...this.state, ...partial };
      this.render();
      return partial;
    }

    template(props, state) {
      return __s({{.Template}});
    }

    render() {
      this.shadowRoot.innerHTML = "<style>" + {{.Styles}} + "</style>" + this.template(this.props, this.state);
    }
{{range .Methods}}
    [{{.Name}}](...args) {
      const props = this.props;
      const state = this.state;
      return {{.Body}};
    }
{{end}}  }

  customElements.define({{.Name}}, {{.Class}});
  window.{{.Class}} = {{.Class}};
})();

/*
{{.Usage}}
*/
`))

// GenerateScript renders rec as a self-registering script. Template and
// method bodies are translated to JavaScript and inlined; a behavior with
// no JavaScript equivalent fails with ErrNotPortable.
func GenerateScript(rec *Record) (string, error) {
	def, err := Reconstruct(rec)
	if err != nil {
		return "", err
	}
	if err := ValidateName(rec.Name); err != nil {
		return "", err
	}

	tplJS, err := def.Template.JS()
	if err != nil {
		return "", wrapBehaviorError("template", err)
	}

	methods := make([]scriptMethod, 0, len(def.Methods))
	for _, name := range rec.MethodNames() {
		body, err := def.Methods[name].JS()
		if err != nil {
			return "", wrapBehaviorError("methods."+name, err)
		}
		methods = append(methods, scriptMethod{Name: jsString(name), Body: body})
	}

	state := def.InitialState
	if state == nil {
		state = map[string]any{}
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("%w: initialState: %v", ErrInvalidRecord, err)
	}
	observed, err := json.Marshal(def.Props)
	if err != nil {
		return "", err
	}

	data := scriptData{
		Name:      jsString(rec.Name),
		Class:     className(rec.Name),
		Observed:  string(observed),
		Styles:    jsString(rec.Styles),
		State:     string(stateJSON),
		Template:  tplJS,
		Methods:   methods,
		Helpers:   strings.ReplaceAll(behavior.JSHelpers, "\n", "\n  "),
		Usage:     strings.ReplaceAll(Usage(rec), "*/", "* /"),
		Duplicate: jsString(fmt.Sprintf("custom element %q is already registered", rec.Name)),
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("wcx: render script: %w", err)
	}
	return buf.String(), nil
}

// jsString quotes s as a JavaScript string literal. json.Marshal escapes
// <, > and & so the result is also safe inside a script element.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
