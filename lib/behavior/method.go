package behavior

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Method is a compiled component method. Its source is a single HCL
// expression evaluated with props, state and args in scope:
//
//	set_state({count = state.count + 1})
//	"${props.label}: ${args[0]}"
type Method struct {
	src  string
	expr hclsyntax.Expression
}

// Scope is the input to a method call.
type Scope struct {
	Props map[string]any
	State map[string]any
	Args  []any
}

// Result is the outcome of a method call.
type Result struct {
	// Value is the expression's value as plain Go data.
	Value any
	// Merges holds the objects passed to set_state, in call order.
	Merges []map[string]any
}

// CompileMethod parses method source text.
func CompileMethod(src string) (*Method, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptySource
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "method", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, diags.Error())
	}
	if err := checkFunctions(expr, true); err != nil {
		return nil, err
	}
	useDoubles(expr)
	return &Method{src: src, expr: expr}, nil
}

// MustMethod is like CompileMethod but panics on error.
func MustMethod(src string) *Method {
	m, err := CompileMethod(src)
	if err != nil {
		panic(fmt.Sprintf("behavior: %v", err))
	}
	return m
}

// Source returns the method source text exactly as compiled.
func (m *Method) Source() string {
	return m.src
}

// Call evaluates the method. Merges are only reported when the whole
// expression evaluates successfully.
func (m *Method) Call(scope Scope) (Result, error) {
	var merges []map[string]any
	ctx, err := evalContext(scope.Props, scope.State, scope.Args, &merges)
	if err != nil {
		return Result{}, err
	}
	val, diags := m.expr.Value(ctx)
	if diags.HasErrors() {
		return Result{}, fmt.Errorf("%w: %s", ErrEvaluation, diags.Error())
	}
	native, err := fromCty(val)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	return Result{Value: native, Merges: merges}, nil
}

// JS returns a JavaScript expression equivalent to the method, written in
// terms of props, state, args and this.setState.
func (m *Method) JS() (string, error) {
	e := newEmitter("props", "state", "args")
	e.setState = true
	return e.emit(m.expr)
}
