package registry

import (
	"fmt"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/runtime"
)

// Nullary returns the interned value of a primitive or atomic variant.
func (r *Registry) Nullary(typeName, variantName string) (*runtime.VariantValue, bool) {
	entry, ok := r.types[typeName]
	if !ok {
		return nil, false
	}
	v, ok := entry.nullary[variantName]
	return v, ok
}

// MakePrimitive yields the interned value of a primitive variant.
func (r *Registry) MakePrimitive(typeName, variantName string) (*runtime.VariantValue, error) {
	return r.makeNullary(typeName, variantName, ast.RepresentationPrimitive)
}

// MakeAtomic yields the interned value of an atomic variant.
func (r *Registry) MakeAtomic(typeName, variantName string) (*runtime.VariantValue, error) {
	return r.makeNullary(typeName, variantName, ast.RepresentationAtomic)
}

func (r *Registry) makeNullary(typeName, variantName string, want ast.Representation) (*runtime.VariantValue, error) {
	info, err := r.lookupVariant(typeName, variantName)
	if err != nil {
		return nil, err
	}
	if info.Representation != want {
		return nil, fmt.Errorf("%w: %s.%s is %s, not %s", ErrRepresentationMismatch, typeName, variantName, info.Representation, want)
	}
	v, _ := r.Nullary(typeName, variantName)
	return v, nil
}

// MakeBoxed allocates a boxed variant holding fields in declaration order.
func (r *Registry) MakeBoxed(typeName, variantName string, fields ...runtime.Value) (*runtime.VariantValue, error) {
	info, err := r.lookupVariant(typeName, variantName)
	if err != nil {
		return nil, err
	}
	if info.Representation != ast.RepresentationBoxed {
		return nil, fmt.Errorf("%w: %s.%s is %s, not boxed", ErrRepresentationMismatch, typeName, variantName, info.Representation)
	}
	if len(fields) != len(info.Fields) {
		return nil, &ArityError{TypeName: typeName, Variant: variantName, Expected: len(info.Fields), Got: len(fields)}
	}
	return &runtime.VariantValue{
		TypeName: typeName,
		Variant:  variantName,
		Tag:      info.Tag,
		Fields:   append([]runtime.Value(nil), fields...),
	}, nil
}

// Construct builds a variant of any representation. Passing fields to a
// nullary variant is an arity error.
func (r *Registry) Construct(typeName, variantName string, fields ...runtime.Value) (*runtime.VariantValue, error) {
	info, err := r.lookupVariant(typeName, variantName)
	if err != nil {
		return nil, err
	}
	if info.Nullary() {
		if len(fields) != 0 {
			return nil, &ArityError{TypeName: typeName, Variant: variantName, Expected: 0, Got: len(fields)}
		}
		v, _ := r.Nullary(typeName, variantName)
		return v, nil
	}
	return r.MakeBoxed(typeName, variantName, fields...)
}

func (r *Registry) lookupVariant(typeName, variantName string) (*VariantInfo, error) {
	info, ok := r.Variant(typeName, variantName)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownVariant, typeName, variantName)
	}
	return info, nil
}
