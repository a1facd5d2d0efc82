package ast

// TypeKind distinguishes the declared shape of a nominal type.
type TypeKind string

const (
	TypeKindSum     TypeKind = "sum"
	TypeKindEnum    TypeKind = "enum"
	TypeKindProduct TypeKind = "product"
)

// Representation is fixed at declaration time for the lifetime of the type.
type Representation string

const (
	RepresentationPrimitive Representation = "primitive"
	RepresentationAtomic    Representation = "atomic"
	RepresentationBoxed     Representation = "boxed"
)

// Nullary reports whether values of this representation carry no payload.
func (r Representation) Nullary() bool {
	return r == RepresentationPrimitive || r == RepresentationAtomic
}

type VariantDeclaration struct {
	nodeImpl

	ID             *Identifier      `json:"id"`
	Representation Representation   `json:"representation"`
	Fields         []TypeExpression `json:"fields,omitempty"`
	AsSize         *uint64          `json:"asSize,omitempty"`
}

func NewVariantDeclaration(id *Identifier, repr Representation, fields []TypeExpression, asSize *uint64) *VariantDeclaration {
	return &VariantDeclaration{
		nodeImpl:       newNodeImpl(NodeVariantDeclaration),
		ID:             id,
		Representation: repr,
		Fields:         fields,
		AsSize:         asSize,
	}
}

type TypeDeclaration struct {
	nodeImpl

	ID       *Identifier           `json:"id"`
	Kind     TypeKind              `json:"kind"`
	Variants []*VariantDeclaration `json:"variants"`
}

func NewTypeDeclaration(id *Identifier, kind TypeKind, variants []*VariantDeclaration) *TypeDeclaration {
	return &TypeDeclaration{nodeImpl: newNodeImpl(NodeTypeDeclaration), ID: id, Kind: kind, Variants: variants}
}

// Name returns the declared type name, tolerating a missing identifier.
func (d *TypeDeclaration) Name() string {
	if d == nil || d.ID == nil {
		return ""
	}
	return d.ID.Name
}

// Clone returns a deep copy so registry state cannot be mutated through a
// declaration the caller still holds.
func (d *TypeDeclaration) Clone() *TypeDeclaration {
	if d == nil {
		return nil
	}
	out := &TypeDeclaration{nodeImpl: d.nodeImpl, Kind: d.Kind}
	if d.ID != nil {
		out.ID = NewIdentifier(d.ID.Name)
	}
	out.Variants = make([]*VariantDeclaration, 0, len(d.Variants))
	for _, v := range d.Variants {
		if v == nil {
			out.Variants = append(out.Variants, nil)
			continue
		}
		cp := &VariantDeclaration{nodeImpl: v.nodeImpl, Representation: v.Representation}
		if v.ID != nil {
			cp.ID = NewIdentifier(v.ID.Name)
		}
		if v.AsSize != nil {
			size := *v.AsSize
			cp.AsSize = &size
		}
		cp.Fields = append([]TypeExpression(nil), v.Fields...)
		out.Variants = append(out.Variants, cp)
	}
	return out
}

type ValueDeclaration struct {
	nodeImpl

	ID    *Identifier    `json:"id"`
	Value Expression     `json:"value"`
	Type  TypeExpression `json:"valueType,omitempty"`
}

func NewValueDeclaration(id *Identifier, value Expression, typ TypeExpression) *ValueDeclaration {
	return &ValueDeclaration{nodeImpl: newNodeImpl(NodeValueDeclaration), ID: id, Value: value, Type: typ}
}
