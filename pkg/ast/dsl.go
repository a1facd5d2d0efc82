package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Unit() *UnitLiteral {
	return NewUnitLiteral()
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value, false)
}

func UInt(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value, true)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Chr(value rune) *CharLiteral {
	return NewCharLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

// Ctor references variant of typeName.
func Ctor(typeName, variant string) *ConstructorRef {
	return NewConstructorRef(ID(typeName), ID(variant))
}

// Function helpers.

func Param(name string, typ TypeExpression) *FunctionParameter {
	return NewFunctionParameter(ID(name), typ)
}

// Fn builds an unannotated function from parameter names.
func Fn(params []string, body Expression) *FunctionExpression {
	out := make([]*FunctionParameter, 0, len(params))
	for _, p := range params {
		out = append(out, Param(p, nil))
	}
	return NewFunctionExpression(out, nil, body)
}

func FnTyped(params []*FunctionParameter, returnType TypeExpression, body Expression) *FunctionExpression {
	return NewFunctionExpression(params, returnType, body)
}

func App(callee Expression, args ...Expression) *Application {
	return NewApplication(callee, args)
}

// Call applies the named function.
func Call(name string, args ...Expression) *Application {
	return NewApplication(ID(name), args)
}

func Bind(name string, value Expression) *LetBinding {
	return NewLetBinding(ID(name), value)
}

func Let(bindings []*LetBinding, body Expression) *LetExpression {
	return NewLetExpression(bindings, body)
}

// Let1 is a let with a single binding.
func Let1(name string, value, body Expression) *LetExpression {
	return NewLetExpression([]*LetBinding{Bind(name, value)}, body)
}

// Case helpers.

func VarP(typeName, variant string) *VariantPattern {
	var typ *Identifier
	if typeName != "" {
		typ = ID(typeName)
	}
	return NewVariantPattern(typ, ID(variant))
}

// Arm builds `match Type.Variant fun binder body`; an empty binder is allowed.
func Arm(typeName, variant, binder string, body Expression) *MatchArm {
	var b *Identifier
	if binder != "" {
		b = ID(binder)
	}
	return NewMatchArm(VarP(typeName, variant), b, body)
}

func Case(scrutinee Expression, arms ...*MatchArm) *CaseExpression {
	return NewCaseExpression(scrutinee, arms)
}

func Field(target Expression, index int) *FieldAccess {
	return NewFieldAccess(target, index)
}

// Type expression helpers.

func Ty(name string) *SimpleTypeExpression {
	return NewSimpleTypeExpression(ID(name))
}

func FnType(params []TypeExpression, returnType TypeExpression) *FunctionTypeExpression {
	return NewFunctionTypeExpression(params, returnType)
}

// Declaration helpers.

func Atomic(name string) *VariantDeclaration {
	return NewVariantDeclaration(ID(name), RepresentationAtomic, nil, nil)
}

func Primitive(name string) *VariantDeclaration {
	return NewVariantDeclaration(ID(name), RepresentationPrimitive, nil, nil)
}

// Sized attaches an explicit asSize tag.
func Sized(v *VariantDeclaration, size uint64) *VariantDeclaration {
	v.AsSize = &size
	return v
}

func Boxed(name string, fields ...TypeExpression) *VariantDeclaration {
	return NewVariantDeclaration(ID(name), RepresentationBoxed, fields, nil)
}

func SumDef(name string, variants ...*VariantDeclaration) *TypeDeclaration {
	return NewTypeDeclaration(ID(name), TypeKindSum, variants)
}

func EnumDef(name string, variants ...*VariantDeclaration) *TypeDeclaration {
	return NewTypeDeclaration(ID(name), TypeKindEnum, variants)
}

// ProdDef declares a product type whose single implicit variant shares its name.
func ProdDef(name string, fields ...TypeExpression) *TypeDeclaration {
	variant := Boxed(name, fields...)
	if len(fields) == 0 {
		variant = Atomic(name)
	}
	return NewTypeDeclaration(ID(name), TypeKindProduct, []*VariantDeclaration{variant})
}

func Val(name string, value Expression) *ValueDeclaration {
	return NewValueDeclaration(ID(name), value, nil)
}

func Mod(types []*TypeDeclaration, values ...*ValueDeclaration) *Module {
	return NewModule("", types, values)
}
