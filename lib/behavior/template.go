// Package behavior compiles the portable parts of a component (its render
// template and its methods) from source text into callable values.
//
// Source text uses the HCL native syntax: templates are HCL string
// templates and methods are HCL expressions. Evaluation never runs
// arbitrary code; the only side effect available is set_state, which a
// method uses to request a shallow state merge. Both kinds of behavior can
// also be translated into JavaScript for standalone script artifacts.
package behavior

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Template is a compiled render function taking (props, state) and
// returning markup text.
//
//	tpl, err := behavior.CompileTemplate(`<h1>${props.title}</h1>`)
//	html, err := tpl.Render(map[string]any{"title": "Hi"}, nil)
type Template struct {
	src  string
	expr hclsyntax.Expression
}

// CompileTemplate parses template source text.
func CompileTemplate(src string) (*Template, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptySource
	}
	expr, diags := hclsyntax.ParseTemplate([]byte(src), "template", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, diags.Error())
	}
	if err := checkFunctions(expr, false); err != nil {
		return nil, err
	}
	useDoubles(expr)
	return &Template{src: src, expr: expr}, nil
}

// MustTemplate is like CompileTemplate but panics on error.
// Intended for package-level component definitions.
func MustTemplate(src string) *Template {
	t, err := CompileTemplate(src)
	if err != nil {
		panic(fmt.Sprintf("behavior: %v", err))
	}
	return t
}

// Source returns the template source text exactly as compiled.
func (t *Template) Source() string {
	return t.src
}

// Render evaluates the template. A null result renders as "".
func (t *Template) Render(props, state map[string]any) (string, error) {
	ctx, err := evalContext(props, state, nil, nil)
	if err != nil {
		return "", err
	}
	val, diags := t.expr.Value(ctx)
	if diags.HasErrors() {
		return "", fmt.Errorf("%w: %s", ErrEvaluation, diags.Error())
	}
	if val.IsNull() {
		return "", nil
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%w: template result is %s, not a string", ErrEvaluation, val.Type().FriendlyName())
	}
	if str.IsNull() {
		return "", nil
	}
	return str.AsString(), nil
}

// JS returns a JavaScript expression equivalent to the template, written
// in terms of the free variables props and state.
func (t *Template) JS() (string, error) {
	return newEmitter("props", "state").emit(t.expr)
}

// evalContext builds the variable scope shared by templates and methods.
// args is nil for templates.
func evalContext(props, state map[string]any, args []any, merges *[]map[string]any) (*hcl.EvalContext, error) {
	p, err := toCty(orEmpty(props))
	if err != nil {
		return nil, fmt.Errorf("%w: props: %v", ErrEvaluation, err)
	}
	s, err := toCty(orEmpty(state))
	if err != nil {
		return nil, fmt.Errorf("%w: state: %v", ErrEvaluation, err)
	}
	vars := map[string]cty.Value{"props": p, "state": s}

	if merges == nil {
		return &hcl.EvalContext{Variables: vars, Functions: functions(nil)}, nil
	}

	if args == nil {
		args = []any{}
	}
	a, err := toCty(args)
	if err != nil {
		return nil, fmt.Errorf("%w: args: %v", ErrEvaluation, err)
	}
	vars["args"] = a
	setState := newSetState(merges)
	return &hcl.EvalContext{Variables: vars, Functions: functions(&setState)}, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// checkFunctions rejects calls to functions outside the builtin table.
func checkFunctions(expr hclsyntax.Expression, allowSetState bool) error {
	var unknown []string
	hclsyntax.VisitAll(expr, func(n hclsyntax.Node) hcl.Diagnostics {
		call, ok := n.(*hclsyntax.FunctionCallExpr)
		if !ok {
			return nil
		}
		if _, ok := builtins[call.Name]; ok {
			return nil
		}
		if allowSetState && call.Name == SetStateFunc {
			return nil
		}
		unknown = append(unknown, call.Name)
		return nil
	})
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownFunction, strings.Join(unknown, ", "))
	}
	return nil
}
