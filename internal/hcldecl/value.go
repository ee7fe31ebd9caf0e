package hcldecl

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ctyToGo converts an evaluated HCL value to its native Go representation:
// strings, bools, int64/float64 numbers, []any sequences and map[string]any
// mappings. Declared constants and config defaults cross into the engine
// through this conversion, so operators never see cty values.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known at load time")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if n, acc := bf.Int64(); acc == big.Exact {
			return n, nil
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		elems := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			converted, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			elems = append(elems, converted)
		}
		return elems, nil
	case ty.IsMapType() || ty.IsObjectType():
		mapped := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			converted, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			mapped[key.AsString()] = converted
		}
		return mapped, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

// stringMap evaluates an expression expected to be a map/object of strings,
// e.g. the inputs attribute of a node block.
func stringMap(val cty.Value) (map[string]string, error) {
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsMapType() && !ty.IsObjectType() {
		return nil, fmt.Errorf("expected a map of strings, got %s", ty.FriendlyName())
	}
	out := make(map[string]string, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		key, elem := it.Element()
		if elem.Type() != cty.String || elem.IsNull() {
			return nil, fmt.Errorf("binding %q must be a string source name", key.AsString())
		}
		out[key.AsString()] = elem.AsString()
	}
	return out, nil
}
