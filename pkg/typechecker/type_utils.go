package typechecker

import (
	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/registry"
	"sumcore/interpreter-go/pkg/runtime"
)

// typeName returns a human-readable identifier for a type, tolerating nil.
func typeName(t Type) string {
	if t == nil {
		return "Any"
	}
	return t.Name()
}

func isUnknownType(t Type) bool {
	if t == nil {
		return true
	}
	_, ok := t.(UnknownType)
	return ok
}

// typeAssignable reports whether a value of type actual may flow where
// expected is required.
func typeAssignable(actual, expected Type) bool {
	if isUnknownType(actual) || isUnknownType(expected) {
		return true
	}
	switch e := expected.(type) {
	case PrimitiveType:
		a, ok := actual.(PrimitiveType)
		return ok && a.Kind == e.Kind
	case NamedType:
		a, ok := actual.(NamedType)
		return ok && a.TypeName == e.TypeName
	case FunctionType:
		a, ok := actual.(FunctionType)
		if !ok || len(a.Params) != len(e.Params) {
			return false
		}
		for i := range e.Params {
			if !typeAssignable(e.Params[i], a.Params[i]) {
				return false
			}
		}
		return typeAssignable(a.Return, e.Return)
	case TupleType:
		a, ok := actual.(TupleType)
		if !ok || len(a.Elements) != len(e.Elements) {
			return false
		}
		for i := range e.Elements {
			if !typeAssignable(a.Elements[i], e.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// mergeBranchTypes returns the common type of case arms, or Unknown when the
// arms disagree.
func mergeBranchTypes(types []Type) Type {
	var merged Type
	for _, t := range types {
		if isUnknownType(t) {
			continue
		}
		if merged == nil {
			merged = t
			continue
		}
		if !typeAssignable(t, merged) {
			return UnknownType{}
		}
	}
	if merged == nil {
		return UnknownType{}
	}
	return merged
}

// payloadType is the type an arm binder receives for a variant.
func payloadType(fields []Type) Type {
	switch len(fields) {
	case 0:
		return PrimitiveType{Kind: PrimitiveUnit}
	case 1:
		return fields[0]
	default:
		return TupleType{Elements: fields}
	}
}

// resolveTypeExpression converts a type annotation. ok is false when the
// annotation names a type the registry does not know.
func resolveTypeExpression(reg *registry.Registry, expr ast.TypeExpression) (Type, bool) {
	switch t := expr.(type) {
	case nil:
		return UnknownType{}, true
	case *ast.SimpleTypeExpression:
		if t.Name == nil {
			return UnknownType{}, false
		}
		switch t.Name.Name {
		case registry.TypeAny:
			return UnknownType{}, true
		case registry.TypeUnit, registry.TypeInt, registry.TypeUInt, registry.TypeFloat,
			registry.TypeChar, registry.TypeString, registry.TypeIO:
			return PrimitiveType{Kind: PrimitiveKind(t.Name.Name)}, true
		}
		if reg.Has(t.Name.Name) {
			return NamedType{TypeName: t.Name.Name}, true
		}
		return UnknownType{}, false
	case *ast.FunctionTypeExpression:
		ok := true
		params := make([]Type, 0, len(t.ParamTypes))
		for _, p := range t.ParamTypes {
			pt, pok := resolveTypeExpression(reg, p)
			ok = ok && pok
			params = append(params, pt)
		}
		ret, rok := resolveTypeExpression(reg, t.ReturnType)
		return FunctionType{Params: params, Return: ret}, ok && rok
	}
	return UnknownType{}, false
}

// TypeOfValue describes a runtime value declared by the host.
func TypeOfValue(v runtime.Value) Type {
	switch val := v.(type) {
	case runtime.UnitValue:
		return PrimitiveType{Kind: PrimitiveUnit}
	case runtime.IntegerValue:
		if val.Unsigned {
			return PrimitiveType{Kind: PrimitiveUInt}
		}
		return PrimitiveType{Kind: PrimitiveInt}
	case runtime.FloatValue:
		return PrimitiveType{Kind: PrimitiveFloat}
	case runtime.CharValue:
		return PrimitiveType{Kind: PrimitiveChar}
	case runtime.StringValue:
		return PrimitiveType{Kind: PrimitiveString}
	case runtime.EffectToken:
		return PrimitiveType{Kind: PrimitiveIO}
	case *runtime.VariantValue:
		return NamedType{TypeName: val.TypeName}
	case *runtime.ClosureValue:
		params := make([]Type, len(val.Params))
		for i := range params {
			params[i] = UnknownType{}
		}
		return FunctionType{Params: params, Return: UnknownType{}}
	}
	return UnknownType{}
}
