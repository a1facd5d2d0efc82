package typechecker

import (
	"fmt"

	"sumcore/interpreter-go/pkg/ast"
)

func (c *Checker) checkExpression(env *Environment, expr ast.Expression) ([]Diagnostic, Type) {
	switch e := expr.(type) {
	case nil:
		return []Diagnostic{{Message: "typechecker: missing expression"}}, UnknownType{}
	case *ast.UnitLiteral:
		return c.literal(e, PrimitiveUnit)
	case *ast.IntegerLiteral:
		if e.Unsigned {
			return c.literal(e, PrimitiveUInt)
		}
		return c.literal(e, PrimitiveInt)
	case *ast.FloatLiteral:
		return c.literal(e, PrimitiveFloat)
	case *ast.CharLiteral:
		return c.literal(e, PrimitiveChar)
	case *ast.StringLiteral:
		return c.literal(e, PrimitiveString)
	case *ast.Identifier:
		typ, ok := env.Lookup(e.Name)
		if !ok {
			return []Diagnostic{{
				Message: fmt.Sprintf("typechecker: undefined identifier '%s'", e.Name),
				Node:    e,
			}}, UnknownType{}
		}
		c.infer.set(e, typ)
		return nil, typ
	case *ast.ConstructorRef:
		return c.checkConstructorRef(e)
	case *ast.FunctionExpression:
		return c.checkFunctionExpression(env, e)
	case *ast.Application:
		return c.checkApplication(env, e)
	case *ast.LetExpression:
		return c.checkLetExpression(env, e)
	case *ast.CaseExpression:
		return c.checkCaseExpression(env, e)
	case *ast.FieldAccess:
		return c.checkFieldAccess(env, e)
	default:
		return []Diagnostic{{
			Message: fmt.Sprintf("typechecker: unsupported expression %s", expr.NodeType()),
			Node:    expr,
		}}, UnknownType{}
	}
}

func (c *Checker) literal(node ast.Expression, kind PrimitiveKind) ([]Diagnostic, Type) {
	typ := PrimitiveType{Kind: kind}
	c.infer.set(node, typ)
	return nil, typ
}

func (c *Checker) checkConstructorRef(ref *ast.ConstructorRef) ([]Diagnostic, Type) {
	if ref.Variant == nil {
		return []Diagnostic{{Message: "typechecker: constructor reference without variant", Node: ref}}, UnknownType{}
	}
	owner := ""
	if ref.TypeName != nil {
		owner = ref.TypeName.Name
	} else if found, ok := c.reg.FindVariant(ref.Variant.Name); ok {
		owner = found
	}
	info, ok := c.reg.Variant(owner, ref.Variant.Name)
	if !ok {
		return []Diagnostic{{
			Message: fmt.Sprintf("typechecker: unknown constructor %s", describeRef(ref)),
			Node:    ref,
		}}, UnknownType{}
	}
	result := NamedType{TypeName: owner}
	if info.Nullary() {
		c.infer.set(ref, result)
		return nil, result
	}
	params := make([]Type, 0, len(info.Fields))
	for _, f := range info.Fields {
		ft, _ := resolveTypeExpression(c.reg, f)
		params = append(params, ft)
	}
	typ := FunctionType{Params: params, Return: result}
	c.infer.set(ref, typ)
	return nil, typ
}

func describeRef(ref *ast.ConstructorRef) string {
	if ref.TypeName != nil {
		return ref.TypeName.Name + "." + ref.Variant.Name
	}
	return ref.Variant.Name
}

func (c *Checker) checkFunctionExpression(env *Environment, fn *ast.FunctionExpression) ([]Diagnostic, Type) {
	var diags []Diagnostic
	fnEnv := env.Extend()
	params := make([]Type, 0, len(fn.Params))
	seen := make(map[string]struct{}, len(fn.Params))
	for idx, p := range fn.Params {
		if p == nil || p.Name == nil || p.Name.Name == "" {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: parameter %d has no name", idx), Node: fn})
			params = append(params, UnknownType{})
			continue
		}
		if _, dup := seen[p.Name.Name]; dup {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: duplicate parameter '%s'", p.Name.Name),
				Node:    p,
			})
		}
		seen[p.Name.Name] = struct{}{}
		pt, ok := resolveTypeExpression(c.reg, p.ParamType)
		if !ok {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: unknown type for parameter '%s'", p.Name.Name),
				Node:    p.ParamType,
			})
		}
		fnEnv.Define(p.Name.Name, pt)
		params = append(params, pt)
	}
	bodyDiags, bodyType := c.checkExpression(fnEnv, fn.Body)
	diags = append(diags, bodyDiags...)

	ret := bodyType
	if fn.ReturnType != nil {
		declared, ok := resolveTypeExpression(c.reg, fn.ReturnType)
		if !ok {
			diags = append(diags, Diagnostic{Message: "typechecker: unknown return type", Node: fn.ReturnType})
		} else if !typeAssignable(bodyType, declared) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: function returns %s, declared %s", typeName(bodyType), typeName(declared)),
				Node:    fn,
			})
		}
		ret = declared
	}
	typ := FunctionType{Params: params, Return: ret}
	c.infer.set(fn, typ)
	return diags, typ
}

func (c *Checker) checkApplication(env *Environment, app *ast.Application) ([]Diagnostic, Type) {
	diags, calleeType := c.checkExpression(env, app.Callee)
	argTypes := make([]Type, 0, len(app.Arguments))
	for _, arg := range app.Arguments {
		argDiags, argType := c.checkExpression(env, arg)
		diags = append(diags, argDiags...)
		argTypes = append(argTypes, argType)
	}

	var result Type = UnknownType{}
	switch ct := calleeType.(type) {
	case FunctionType:
		if len(ct.Params) != len(argTypes) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: arity mismatch: expected %d argument(s), got %d", len(ct.Params), len(argTypes)),
				Node:    app,
			})
			break
		}
		for i, want := range ct.Params {
			if !typeAssignable(argTypes[i], want) {
				diags = append(diags, Diagnostic{
					Message: fmt.Sprintf("typechecker: argument %d has type %s, expected %s", i+1, typeName(argTypes[i]), typeName(want)),
					Node:    app.Arguments[i],
				})
			}
		}
		result = ct.Return
	case UnknownType:
	default:
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot call a value of type %s", typeName(calleeType)),
			Node:    app.Callee,
		})
	}
	c.infer.set(app, result)
	return diags, result
}

// checkLetExpression checks every binding in the enclosing scope; bindings do
// not see each other.
func (c *Checker) checkLetExpression(env *Environment, let *ast.LetExpression) ([]Diagnostic, Type) {
	var diags []Diagnostic
	letEnv := env.Extend()
	for _, b := range let.Bindings {
		if b == nil || b.Name == nil {
			diags = append(diags, Diagnostic{Message: "typechecker: let binding requires a name", Node: let})
			continue
		}
		valueDiags, valueType := c.checkExpression(env, b.Value)
		diags = append(diags, valueDiags...)
		letEnv.Define(b.Name.Name, valueType)
	}
	bodyDiags, bodyType := c.checkExpression(letEnv, let.Body)
	diags = append(diags, bodyDiags...)
	c.infer.set(let, bodyType)
	return diags, bodyType
}

func (c *Checker) checkFieldAccess(env *Environment, fa *ast.FieldAccess) ([]Diagnostic, Type) {
	diags, targetType := c.checkExpression(env, fa.Target)
	var elements []Type
	switch t := targetType.(type) {
	case TupleType:
		elements = t.Elements
	case NamedType:
		variants := c.reg.Variants(t.TypeName)
		if len(variants) != 1 {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: field access on %s, which has more than one variant", t.TypeName),
				Node:    fa,
			})
			return diags, UnknownType{}
		}
		for _, f := range variants[0].Fields {
			ft, _ := resolveTypeExpression(c.reg, f)
			elements = append(elements, ft)
		}
	case UnknownType:
		c.infer.set(fa, UnknownType{})
		return diags, UnknownType{}
	default:
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot access fields of %s", typeName(targetType)),
			Node:    fa,
		})
		return diags, UnknownType{}
	}
	if fa.Index < 0 || fa.Index >= len(elements) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: field index %d out of range for %s", fa.Index, typeName(targetType)),
			Node:    fa,
		})
		return diags, UnknownType{}
	}
	typ := elements[fa.Index]
	c.infer.set(fa, typ)
	return diags, typ
}
