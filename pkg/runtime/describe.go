package runtime

import (
	"strconv"
	"strings"
)

// Describe renders a value the way print and the REPL show it.
func Describe(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case UnitValue:
		return "()"
	case IntegerValue:
		if val.Unsigned {
			return strconv.FormatUint(uint64(val.Val), 10)
		}
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case CharValue:
		return string(val.Val)
	case StringValue:
		return val.Val
	case *VariantValue:
		if val.Nullary() {
			return val.Variant
		}
		parts := make([]string, 0, len(val.Fields))
		for _, f := range val.Fields {
			parts = append(parts, quoteIfString(f))
		}
		return val.Variant + "(" + strings.Join(parts, ", ") + ")"
	case *TupleValue:
		parts := make([]string, 0, len(val.Elements))
		for _, el := range val.Elements {
			parts = append(parts, quoteIfString(el))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ClosureValue:
		if val.Name != "" {
			return "<fun " + val.Name + "/" + strconv.Itoa(len(val.Params)) + ">"
		}
		return "<fun/" + strconv.Itoa(len(val.Params)) + ">"
	case NativeFunctionValue:
		return "<builtin " + val.Name + ">"
	case EffectToken:
		return "<io#" + strconv.FormatUint(val.Generation, 10) + ">"
	default:
		return "<" + v.Kind().String() + ">"
	}
}

func quoteIfString(v Value) string {
	if s, ok := v.(StringValue); ok {
		return strconv.Quote(s.Val)
	}
	return Describe(v)
}

// Equal is structural equality over data values. Functions and effect tokens
// are only equal to themselves.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case UnitValue:
		_, ok := b.(UnitValue)
		return ok
	case IntegerValue:
		bv, ok := b.(IntegerValue)
		return ok && av == bv
	case FloatValue:
		bv, ok := b.(FloatValue)
		return ok && av.Val == bv.Val
	case CharValue:
		bv, ok := b.(CharValue)
		return ok && av == bv
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av == bv
	case *VariantValue:
		bv, ok := b.(*VariantValue)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		if av.TypeName != bv.TypeName || av.Tag != bv.Tag || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if !Equal(av.Fields[i], bv.Fields[i]) {
				return false
			}
		}
		return true
	case *TupleValue:
		bv, ok := b.(*TupleValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *ClosureValue:
		bv, ok := b.(*ClosureValue)
		return ok && av == bv
	case EffectToken:
		bv, ok := b.(EffectToken)
		return ok && av == bv
	default:
		return false
	}
}
