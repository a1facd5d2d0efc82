package typechecker

import "strings"

// Type represents a type understood by the checker.
type Type interface {
	Name() string
}

type PrimitiveKind string

const (
	PrimitiveUnit   PrimitiveKind = "Unit"
	PrimitiveInt    PrimitiveKind = "Int"
	PrimitiveUInt   PrimitiveKind = "UInt"
	PrimitiveFloat  PrimitiveKind = "Float"
	PrimitiveChar   PrimitiveKind = "Char"
	PrimitiveString PrimitiveKind = "String"
	PrimitiveIO     PrimitiveKind = "IO"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p PrimitiveType) Name() string { return string(p.Kind) }

// NamedType is a declared sum, enum or product type.
type NamedType struct {
	TypeName string
}

func (n NamedType) Name() string { return n.TypeName }

type FunctionType struct {
	Params []Type
	Return Type
}

func (f FunctionType) Name() string {
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		parts = append(parts, typeName(p))
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + typeName(f.Return)
}

// TupleType is the payload of a variant with more than one field.
type TupleType struct {
	Elements []Type
}

func (t TupleType) Name() string {
	parts := make([]string, 0, len(t.Elements))
	for _, el := range t.Elements {
		parts = append(parts, typeName(el))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// UnknownType stands for Any, unannotated parameters and builtins. It is
// assignable in both directions.
type UnknownType struct{}

func (UnknownType) Name() string { return "Any" }
