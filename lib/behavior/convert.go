package behavior

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// toCty converts a native Go value into its cty counterpart.
//
// Maps become objects (so attribute access like props.title works) and
// slices become tuples, which lets heterogeneous JSON-ish data flow into
// templates without declaring a schema.
func toCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int8:
		return cty.NumberIntVal(int64(x)), nil
	case int16:
		return cty.NumberIntVal(int64(x)), nil
	case int32:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case uint:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint64:
		return cty.NumberUIntVal(x), nil
	case float32:
		return cty.NumberFloatVal(float64(x)), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case json.Number:
		f, ok := new(big.Float).SetString(x.String())
		if !ok {
			return cty.NilVal, fmt.Errorf("invalid number %q", x.String())
		}
		return cty.NumberVal(f), nil
	case []string:
		vals := make([]cty.Value, len(x))
		for i, s := range x {
			vals[i] = cty.StringVal(s)
		}
		return tupleVal(vals), nil
	case []any:
		vals := make([]cty.Value, len(x))
		for i, el := range x {
			cv, err := toCty(el)
			if err != nil {
				return cty.NilVal, fmt.Errorf("index %d: %w", i, err)
			}
			vals[i] = cv
		}
		return tupleVal(vals), nil
	case map[string]string:
		attrs := make(map[string]cty.Value, len(x))
		for k, s := range x {
			attrs[k] = cty.StringVal(s)
		}
		return objectVal(attrs), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(x))
		for k, el := range x {
			cv, err := toCty(el)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return objectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", v)
	}
}

func tupleVal(vals []cty.Value) cty.Value {
	if len(vals) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(vals)
}

func objectVal(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// fromCty converts a cty value back into plain Go data: strings, bools,
// int64 for integral numbers, float64 otherwise, []any and map[string]any.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			nv, err := fromCty(el)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			k, el := it.Element()
			nv, err := fromCty(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = nv
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
