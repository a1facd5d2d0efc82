package typechecker

import (
	"fmt"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/match"
)

func (c *Checker) checkCaseExpression(env *Environment, expr *ast.CaseExpression) ([]Diagnostic, Type) {
	diags, subjectType := c.checkExpression(env, expr.Scrutinee)

	scrutineeType, ok := c.scrutineeTypeName(subjectType, expr.Arms)
	if !ok {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot match on a value of type %s", typeName(subjectType)),
			Node:    expr,
			Err:     match.ErrScrutineeTypeMismatch,
		})
		return diags, UnknownType{}
	}

	table, err := match.Compile(c.reg, scrutineeType, expr.Arms)
	if err != nil {
		diags = append(diags, Diagnostic{
			Message: "typechecker: " + err.Error(),
			Node:    expr,
			Err:     err,
		})
		return diags, UnknownType{}
	}
	c.tables[expr] = table

	branchTypes := make([]Type, 0, len(expr.Arms))
	for _, arm := range expr.Arms {
		armEnv := env.Extend()
		if arm.Binder != nil && arm.Binder.Name != "" {
			armEnv.Define(arm.Binder.Name, c.binderType(scrutineeType, arm.Pattern.Variant.Name))
		}
		bodyDiags, bodyType := c.checkExpression(armEnv, arm.Body)
		diags = append(diags, bodyDiags...)
		branchTypes = append(branchTypes, bodyType)
	}

	resultType := mergeBranchTypes(branchTypes)
	c.infer.set(expr, resultType)
	return diags, resultType
}

// scrutineeTypeName picks the declared type a case dispatches on: the
// inferred scrutinee type when known, else the type the first arm names.
func (c *Checker) scrutineeTypeName(subject Type, arms []*ast.MatchArm) (string, bool) {
	switch t := subject.(type) {
	case NamedType:
		return t.TypeName, true
	case UnknownType:
	default:
		return "", false
	}
	if len(arms) == 0 || arms[0] == nil || arms[0].Pattern == nil {
		return "", false
	}
	pat := arms[0].Pattern
	if pat.TypeName != nil {
		return pat.TypeName.Name, c.reg.Has(pat.TypeName.Name)
	}
	if pat.Variant == nil {
		return "", false
	}
	return c.reg.FindVariant(pat.Variant.Name)
}

func (c *Checker) binderType(typeName, variant string) Type {
	info, ok := c.reg.Variant(typeName, variant)
	if !ok {
		return UnknownType{}
	}
	fields := make([]Type, 0, len(info.Fields))
	for _, f := range info.Fields {
		ft, _ := resolveTypeExpression(c.reg, f)
		fields = append(fields, ft)
	}
	return payloadType(fields)
}
