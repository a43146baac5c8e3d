package behavior

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Numbers follow IEEE 754 double semantics so that a component renders the
// same text in Go as in its generated script. cty computes with 512-bit
// floats; every numeric literal and every arithmetic or ordering operation
// is rounded to float64 instead.

// doubleOps maps HCL's operations to their float64-rounding replacements.
var doubleOps = map[*hclsyntax.Operation]*hclsyntax.Operation{}

// hclOps maps a replacement back to the HCL operation it stands for.
var hclOps = map[*hclsyntax.Operation]*hclsyntax.Operation{}

func init() {
	for _, op := range []*hclsyntax.Operation{
		hclsyntax.OpAdd,
		hclsyntax.OpSubtract,
		hclsyntax.OpMultiply,
		hclsyntax.OpDivide,
		hclsyntax.OpModulo,
		hclsyntax.OpGreaterThan,
		hclsyntax.OpGreaterThanOrEqual,
		hclsyntax.OpLessThan,
		hclsyntax.OpLessThanOrEqual,
	} {
		d := doubleOp(op)
		doubleOps[op] = d
		hclOps[d] = op
	}
}

func doubleOp(op *hclsyntax.Operation) *hclsyntax.Operation {
	impl := op.Impl
	return &hclsyntax.Operation{
		Type:         op.Type,
		ShortCircuit: op.ShortCircuit,
		Impl: function.New(&function.Spec{
			Params: impl.Params(),
			Type:   function.StaticReturnType(op.Type),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				rounded := make([]cty.Value, len(args))
				for i, a := range args {
					rounded[i] = toDouble(a)
				}
				v, err := impl.Call(rounded)
				if err != nil {
					return cty.NilVal, err
				}
				return toDouble(v), nil
			},
		}),
	}
}

// baseOp returns the HCL operation behind op.
func baseOp(op *hclsyntax.Operation) *hclsyntax.Operation {
	if base, ok := hclOps[op]; ok {
		return base
	}
	return op
}

// toDouble rounds a known number to the nearest float64. The result has
// 53 bits of precision, so it also prints in shortest round-trip form.
func toDouble(v cty.Value) cty.Value {
	if !v.IsKnown() || v.IsNull() || v.Type() != cty.Number || v.IsMarked() {
		return v
	}
	f, _ := v.AsBigFloat().Float64()
	return cty.NumberFloatVal(f)
}

// useDoubles rewrites a parsed expression in place to double semantics.
func useDoubles(expr hclsyntax.Expression) {
	hclsyntax.VisitAll(expr, func(n hclsyntax.Node) hcl.Diagnostics {
		switch x := n.(type) {
		case *hclsyntax.LiteralValueExpr:
			x.Val = toDouble(x.Val)
		case *hclsyntax.BinaryOpExpr:
			if d, ok := doubleOps[x.Op]; ok {
				x.Op = d
			}
		}
		return nil
	})
}
