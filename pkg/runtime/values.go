package runtime

import (
	"fmt"

	"sumcore/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUnit Kind = iota
	KindInteger
	KindFloat
	KindChar
	KindString
	KindVariant
	KindTuple
	KindClosure
	KindNativeFunction
	KindEffectToken
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindVariant:
		return "variant"
	case KindTuple:
		return "tuple"
	case KindClosure:
		return "closure"
	case KindNativeFunction:
		return "native_function"
	case KindEffectToken:
		return "effect_token"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. Values are immutable
// once constructed.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type UnitValue struct{}

func (UnitValue) Kind() Kind { return KindUnit }

type IntegerValue struct {
	Val      int64
	Unsigned bool
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type CharValue struct {
	Val rune
}

func (v CharValue) Kind() Kind { return KindChar }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Variants
//-----------------------------------------------------------------------------

// Tag is the constant-size discriminant of a variant within its type.
type Tag uint64

// VariantValue is a value of a declared Sum, Enum or Product type. Nullary
// variants are interned by the type registry, so two nullary values of the
// same (type, variant) pair are the same pointer.
type VariantValue struct {
	TypeName string
	Variant  string
	Tag      Tag
	Fields   []Value
}

func (v *VariantValue) Kind() Kind { return KindVariant }

// Nullary reports whether the variant carries no payload.
func (v *VariantValue) Nullary() bool {
	return len(v.Fields) == 0
}

// Payload returns the value a match binder sees: unit for nullary variants,
// the sole field for single-field variants, a tuple otherwise.
func (v *VariantValue) Payload() Value {
	switch len(v.Fields) {
	case 0:
		return UnitValue{}
	case 1:
		return v.Fields[0]
	default:
		return &TupleValue{Elements: v.Fields}
	}
}

// TupleValue carries the fields of a multi-field payload.
type TupleValue struct {
	Elements []Value
}

func (v *TupleValue) Kind() Kind { return KindTuple }

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// ClosureValue pairs a function expression with the environment captured at
// its creation point.
type ClosureValue struct {
	Params []string
	Body   ast.Expression
	Env    *Environment
	Name   string
}

func (v *ClosureValue) Kind() Kind { return KindClosure }

// MakeClosure captures env for the given parameter names and body.
func MakeClosure(params []string, body ast.Expression, env *Environment) *ClosureValue {
	copied := append([]string(nil), params...)
	return &ClosureValue{Params: copied, Body: body, Env: env}
}

// NativeCallContext provides hooks for native functions.
type NativeCallContext struct {
	Env   *Environment
	World *World
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

// NativeFunctionValue is a host-provided callable. Arity < 0 marks a variadic
// function accepting at least -Arity-1 arguments.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

// MinArity returns the least number of arguments the function accepts.
func (v NativeFunctionValue) MinArity() int {
	if v.Arity < 0 {
		return -v.Arity - 1
	}
	return v.Arity
}

// Variadic reports whether the function accepts trailing arguments.
func (v NativeFunctionValue) Variadic() bool {
	return v.Arity < 0
}

//-----------------------------------------------------------------------------
// Effects
//-----------------------------------------------------------------------------

// EffectToken is the zero-information IO marker. The generation ties each
// token to a single position in its world's effect chain.
type EffectToken struct {
	Generation uint64
	world      *World
}

func (v EffectToken) Kind() Kind { return KindEffectToken }
