package behavior

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// SetStateFunc is the name of the state-merge function available to methods.
const SetStateFunc = "set_state"

// builtin pairs a cty implementation with its JavaScript rendering.
// js receives the already-emitted argument expressions.
type builtin struct {
	fn    function.Function
	arity int // -1 for variadic
	js    func(args []string) string
}

var builtins = map[string]builtin{
	"upper": {stdlib.UpperFunc, 1, func(a []string) string {
		return "__s(" + a[0] + ").toUpperCase()"
	}},
	"lower": {stdlib.LowerFunc, 1, func(a []string) string {
		return "__s(" + a[0] + ").toLowerCase()"
	}},
	"trimspace": {stdlib.TrimSpaceFunc, 1, func(a []string) string {
		return "__s(" + a[0] + ").trim()"
	}},
	"join": {stdlib.JoinFunc, 2, func(a []string) string {
		return "(" + a[1] + ").map(__s).join(__s(" + a[0] + "))"
	}},
	"length": {lengthFunc, 1, func(a []string) string {
		return "__len(" + a[0] + ")"
	}},
	"contains": {stdlib.ContainsFunc, 2, func(a []string) string {
		return "(" + a[0] + ").includes(" + a[1] + ")"
	}},
	"keys": {stdlib.KeysFunc, 1, func(a []string) string {
		return "Object.keys(" + a[0] + ").sort()"
	}},
	"values": {stdlib.ValuesFunc, 1, func(a []string) string {
		return "((o) => Object.keys(o).sort().map((k) => o[k]))(" + a[0] + ")"
	}},
	"merge": {stdlib.MergeFunc, -1, func(a []string) string {
		spread := make([]string, len(a))
		for i, arg := range a {
			spread[i] = "..." + arg
		}
		return "({" + strings.Join(spread, ", ") + "})"
	}},
	"coalesce": {stdlib.CoalesceFunc, -1, func(a []string) string {
		return "([" + strings.Join(a, ", ") + "].find((v) => v != null) ?? null)"
	}},
	"replace": {stdlib.ReplaceFunc, 3, func(a []string) string {
		return "__s(" + a[0] + ").split(__s(" + a[1] + ")).join(__s(" + a[2] + "))"
	}},
	"min": {stdlib.MinFunc, -1, func(a []string) string {
		return "Math.min(" + numbers(a) + ")"
	}},
	"max": {stdlib.MaxFunc, -1, func(a []string) string {
		return "Math.max(" + numbers(a) + ")"
	}},
	"jsonencode": {stdlib.JSONEncodeFunc, 1, func(a []string) string {
		return "JSON.stringify(" + a[0] + ")"
	}},
	"jsondecode": {stdlib.JSONDecodeFunc, 1, func(a []string) string {
		return "JSON.parse(__s(" + a[0] + "))"
	}},
	"tostring": {convertFunc("tostring", cty.String), 1, func(a []string) string {
		return "__s(" + a[0] + ")"
	}},
	"tonumber": {convertFunc("tonumber", cty.Number), 1, func(a []string) string {
		return "Number(" + a[0] + ")"
	}},
}

func numbers(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = "Number(" + a + ")"
	}
	return strings.Join(out, ", ")
}

// FunctionNames lists the functions available to templates and methods,
// excluding set_state.
func FunctionNames() []string {
	return sortedKeys(builtins)
}

// functions builds the cty function table for an evaluation.
// setState is nil for templates.
func functions(setState *function.Function) map[string]function.Function {
	fns := make(map[string]function.Function, len(builtins)+1)
	for name, b := range builtins {
		fns[name] = b.fn
	}
	if setState != nil {
		fns[SetStateFunc] = *setState
	}
	return fns
}

// lengthFunc counts characters of strings, attributes of objects and
// elements of collections.
var lengthFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "value", Type: cty.DynamicPseudoType},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		v := args[0]
		ty := v.Type()
		switch {
		case ty == cty.String:
			return stdlib.Strlen(v)
		case ty.IsObjectType():
			return cty.NumberIntVal(int64(len(ty.AttributeTypes()))), nil
		case ty.IsTupleType() || ty.IsListType() || ty.IsMapType() || ty.IsSetType():
			return v.Length(), nil
		default:
			return cty.NilVal, fmt.Errorf("cannot take the length of %s", ty.FriendlyName())
		}
	},
})

func convertFunc(name string, want cty.Type) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "value", Type: cty.DynamicPseudoType, AllowNull: true},
		},
		Type: function.StaticReturnType(want),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			out, err := convert.Convert(args[0], want)
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", name, err)
			}
			return out, nil
		},
	})
}

// newSetState returns a set_state function that appends each merged
// object to *merges in call order.
func newSetState(merges *[]map[string]any) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "partial", Type: cty.DynamicPseudoType},
		},
		Type: func(args []cty.Value) (cty.Type, error) {
			return args[0].Type(), nil
		},
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			v := args[0]
			if !v.Type().IsObjectType() && !v.Type().IsMapType() {
				return cty.NilVal, fmt.Errorf("%s requires an object, got %s", SetStateFunc, v.Type().FriendlyName())
			}
			native, err := fromCty(v)
			if err != nil {
				return cty.NilVal, err
			}
			*merges = append(*merges, native.(map[string]any))
			return v, nil
		},
	})
}
