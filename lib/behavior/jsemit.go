package behavior

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// JSHelpers is the JavaScript prelude that emitted expressions rely on.
// It must be in scope wherever the output of Template.JS or Method.JS runs.
const JSHelpers = `const __s = (v) => v == null ? "" : (typeof v === "object" ? JSON.stringify(v) : String(v));
const __len = (v) => v == null ? 0 : (typeof v === "string" || Array.isArray(v) ? v.length : Object.keys(v).length);
const __each = (c) => Array.isArray(c) ? c.map((v, i) => [i, v]) : Object.keys(c ?? {}).sort().map((k) => [k, c[k]]);
const __eq = (a, b) => {
  if (a === b) return true;
  if (a == null || b == null) return a == b;
  if (typeof a !== "object" || typeof b !== "object" || Array.isArray(a) !== Array.isArray(b)) return false;
  const ka = Object.keys(a), kb = Object.keys(b);
  return ka.length === kb.length && ka.every((k) => Object.prototype.hasOwnProperty.call(b, k) && __eq(a[k], b[k]));
};`

var binaryOps = map[*hclsyntax.Operation]string{
	hclsyntax.OpLogicalOr:          "||",
	hclsyntax.OpLogicalAnd:         "&&",
	hclsyntax.OpGreaterThan:        ">",
	hclsyntax.OpGreaterThanOrEqual: ">=",
	hclsyntax.OpLessThan:           "<",
	hclsyntax.OpLessThanOrEqual:    "<=",
	hclsyntax.OpAdd:                "+",
	hclsyntax.OpSubtract:           "-",
	hclsyntax.OpMultiply:           "*",
	hclsyntax.OpDivide:             "/",
	hclsyntax.OpModulo:             "%",
}

// numeric operators coerce both sides with Number() to match HCL, which
// converts operands of arithmetic and ordering to numbers.
var numericOps = map[*hclsyntax.Operation]bool{
	hclsyntax.OpGreaterThan:        true,
	hclsyntax.OpGreaterThanOrEqual: true,
	hclsyntax.OpLessThan:           true,
	hclsyntax.OpLessThanOrEqual:    true,
	hclsyntax.OpAdd:                true,
	hclsyntax.OpSubtract:           true,
	hclsyntax.OpMultiply:           true,
	hclsyntax.OpDivide:             true,
	hclsyntax.OpModulo:             true,
}

type emitter struct {
	roots    map[string]bool
	locals   map[string]string
	anon     map[*hclsyntax.AnonSymbolExpr]string
	setState bool
	splats   int
}

func newEmitter(roots ...string) *emitter {
	e := &emitter{
		roots:  make(map[string]bool, len(roots)),
		locals: make(map[string]string),
		anon:   make(map[*hclsyntax.AnonSymbolExpr]string),
	}
	for _, r := range roots {
		e.roots[r] = true
	}
	return e
}

func (e *emitter) emit(expr hclsyntax.Expression) (string, error) {
	switch x := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return jsLiteral(x.Val)

	case *hclsyntax.TemplateExpr:
		return e.template(x)

	case *hclsyntax.TemplateWrapExpr:
		return e.emit(x.Wrapped)

	case *hclsyntax.TemplateJoinExpr:
		tuple, err := e.emit(x.Tuple)
		if err != nil {
			return "", err
		}
		return "(" + tuple + ").map(__s).join(\"\")", nil

	case *hclsyntax.ParenthesesExpr:
		inner, err := e.emit(x.Expression)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil

	case *hclsyntax.ScopeTraversalExpr:
		return e.traversal("", x.Traversal)

	case *hclsyntax.RelativeTraversalExpr:
		src, err := e.emit(x.Source)
		if err != nil {
			return "", err
		}
		return e.traversal(src, x.Traversal)

	case *hclsyntax.IndexExpr:
		coll, err := e.emit(x.Collection)
		if err != nil {
			return "", err
		}
		key, err := e.emit(x.Key)
		if err != nil {
			return "", err
		}
		return coll + "?.[" + key + "]", nil

	case *hclsyntax.FunctionCallExpr:
		return e.call(x)

	case *hclsyntax.ConditionalExpr:
		cond, err := e.emit(x.Condition)
		if err != nil {
			return "", err
		}
		t, err := e.emit(x.TrueResult)
		if err != nil {
			return "", err
		}
		f, err := e.emit(x.FalseResult)
		if err != nil {
			return "", err
		}
		return "(" + cond + " ? " + t + " : " + f + ")", nil

	case *hclsyntax.BinaryOpExpr:
		base := baseOp(x.Op)
		lhs, err := e.emit(x.LHS)
		if err != nil {
			return "", err
		}
		rhs, err := e.emit(x.RHS)
		if err != nil {
			return "", err
		}
		switch base {
		case hclsyntax.OpEqual:
			return "__eq(" + lhs + ", " + rhs + ")", nil
		case hclsyntax.OpNotEqual:
			return "(!__eq(" + lhs + ", " + rhs + "))", nil
		}
		op, ok := binaryOps[base]
		if !ok {
			return "", fmt.Errorf("%w: binary operator", ErrNotPortable)
		}
		if numericOps[base] {
			lhs, rhs = "Number("+lhs+")", "Number("+rhs+")"
		}
		return "(" + lhs + " " + op + " " + rhs + ")", nil

	case *hclsyntax.UnaryOpExpr:
		val, err := e.emit(x.Val)
		if err != nil {
			return "", err
		}
		switch x.Op {
		case hclsyntax.OpLogicalNot:
			return "(!" + val + ")", nil
		case hclsyntax.OpNegate:
			return "(-Number(" + val + "))", nil
		}
		return "", fmt.Errorf("%w: unary operator", ErrNotPortable)

	case *hclsyntax.TupleConsExpr:
		parts := make([]string, len(x.Exprs))
		for i, el := range x.Exprs {
			s, err := e.emit(el)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil

	case *hclsyntax.ObjectConsExpr:
		return e.object(x)

	case *hclsyntax.ForExpr:
		return e.forExpr(x)

	case *hclsyntax.SplatExpr:
		src, err := e.emit(x.Source)
		if err != nil {
			return "", err
		}
		name := "__it" + strconv.Itoa(e.splats)
		e.splats++
		e.anon[x.Item] = name
		each, err := e.emit(x.Each)
		delete(e.anon, x.Item)
		if err != nil {
			return "", err
		}
		return "[].concat(" + src + " ?? []).map((" + name + ") => " + each + ")", nil

	case *hclsyntax.AnonSymbolExpr:
		name, ok := e.anon[x]
		if !ok {
			return "", fmt.Errorf("%w: splat symbol outside splat", ErrNotPortable)
		}
		return name, nil

	default:
		return "", fmt.Errorf("%w: %T", ErrNotPortable, expr)
	}
}

func (e *emitter) template(x *hclsyntax.TemplateExpr) (string, error) {
	if len(x.Parts) == 0 {
		return `""`, nil
	}
	parts := make([]string, len(x.Parts))
	for i, p := range x.Parts {
		s, err := e.emit(p)
		if err != nil {
			return "", err
		}
		if lit, ok := p.(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type() == cty.String {
			parts[i] = s
			continue
		}
		parts[i] = "__s(" + s + ")"
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " + ") + ")", nil
}

func (e *emitter) traversal(src string, t hcl.Traversal) (string, error) {
	var b strings.Builder
	b.WriteString(src)
	for _, step := range t {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			if local, ok := e.locals[s.Name]; ok {
				b.WriteString(local)
				continue
			}
			if !e.roots[s.Name] {
				return "", fmt.Errorf("%w: unknown variable %q", ErrNotPortable, s.Name)
			}
			b.WriteString(s.Name)
		case hcl.TraverseAttr:
			b.WriteString("?.[" + quote(s.Name) + "]")
		case hcl.TraverseIndex:
			key, err := jsLiteral(s.Key)
			if err != nil {
				return "", err
			}
			b.WriteString("?.[" + key + "]")
		default:
			return "", fmt.Errorf("%w: traversal step %T", ErrNotPortable, step)
		}
	}
	return b.String(), nil
}

func (e *emitter) call(x *hclsyntax.FunctionCallExpr) (string, error) {
	if x.ExpandFinal {
		return "", fmt.Errorf("%w: argument expansion in call to %s", ErrNotPortable, x.Name)
	}
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		s, err := e.emit(a)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	if x.Name == SetStateFunc {
		if !e.setState || len(args) != 1 {
			return "", fmt.Errorf("%w: %s", ErrNotPortable, SetStateFunc)
		}
		return "this.setState(" + args[0] + ")", nil
	}

	b, ok := builtins[x.Name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFunction, x.Name)
	}
	if b.arity >= 0 && len(args) != b.arity {
		return "", fmt.Errorf("%w: %s with %d arguments", ErrNotPortable, x.Name, len(args))
	}
	return b.js(args), nil
}

func (e *emitter) object(x *hclsyntax.ObjectConsExpr) (string, error) {
	if len(x.Items) == 0 {
		return "({})", nil
	}
	items := make([]string, len(x.Items))
	for i, item := range x.Items {
		key, err := e.objectKey(item.KeyExpr)
		if err != nil {
			return "", err
		}
		val, err := e.emit(item.ValueExpr)
		if err != nil {
			return "", err
		}
		items[i] = key + ": " + val
	}
	return "({" + strings.Join(items, ", ") + "})", nil
}

func (e *emitter) objectKey(expr hclsyntax.Expression) (string, error) {
	if ock, ok := expr.(*hclsyntax.ObjectConsKeyExpr); ok {
		if !ock.ForceNonLiteral {
			if kw := hcl.ExprAsKeyword(ock.Wrapped); kw != "" {
				return quote(kw), nil
			}
		}
		expr = ock.Wrapped
	}
	s, err := e.emit(expr)
	if err != nil {
		return "", err
	}
	return "[__s(" + s + ")]", nil
}

func (e *emitter) forExpr(x *hclsyntax.ForExpr) (string, error) {
	if x.Group {
		return "", fmt.Errorf("%w: grouping for expression", ErrNotPortable)
	}
	coll, err := e.emit(x.CollExpr)
	if err != nil {
		return "", err
	}

	saved := make(map[string]string, len(e.locals))
	for k, v := range e.locals {
		saved[k] = v
	}
	defer func() { e.locals = saved }()

	keyName := "__k"
	if x.KeyVar != "" {
		keyName = localName(x.KeyVar)
		e.locals[x.KeyVar] = keyName
	}
	valName := localName(x.ValVar)
	e.locals[x.ValVar] = valName
	params := "([" + keyName + ", " + valName + "])"

	var b strings.Builder
	b.WriteString("__each(" + coll + ")")
	if x.CondExpr != nil {
		cond, err := e.emit(x.CondExpr)
		if err != nil {
			return "", err
		}
		b.WriteString(".filter(" + params + " => " + cond + ")")
	}

	val, err := e.emit(x.ValExpr)
	if err != nil {
		return "", err
	}
	if x.KeyExpr == nil {
		b.WriteString(".map(" + params + " => " + val + ")")
		return b.String(), nil
	}
	key, err := e.emit(x.KeyExpr)
	if err != nil {
		return "", err
	}
	b.WriteString(".map(" + params + " => [__s(" + key + "), " + val + "])")
	return "Object.fromEntries(" + b.String() + ")", nil
}

func localName(hclName string) string {
	return "$" + strings.ReplaceAll(hclName, "-", "_")
}

func quote(s string) string {
	out, _ := marshalJS(s)
	return out
}

// marshalJS encodes v as JSON without HTML escaping, which is also a valid
// JavaScript literal.
func marshalJS(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func jsLiteral(v cty.Value) (string, error) {
	if v.IsNull() {
		return "null", nil
	}
	if v.Type() == cty.Number {
		return v.AsBigFloat().Text('g', -1), nil
	}
	native, err := fromCty(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPortable, err)
	}
	out, err := marshalJS(native)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPortable, err)
	}
	return out, nil
}
