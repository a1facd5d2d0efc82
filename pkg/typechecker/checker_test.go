package typechecker

import (
	"errors"
	"strings"
	"testing"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/match"
	"sumcore/interpreter-go/pkg/registry"
)

func newBoolChecker(t *testing.T) (*Checker, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	if err := reg.DeclareType(ast.EnumDef("Bool", ast.Primitive("False"), ast.Primitive("True"))); err != nil {
		t.Fatalf("declare Bool: %v", err)
	}
	if err := reg.DeclareType(ast.SumDef("Result", ast.Boxed("Ok", ast.Ty("Any")), ast.Boxed("Err", ast.Ty("String")))); err != nil {
		t.Fatalf("declare Result: %v", err)
	}
	return New(reg), reg
}

func hasDiagnostic(diags []Diagnostic, fragment string) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, fragment) {
			return true
		}
	}
	return false
}

func TestCaseOnBoolCompilesTable(t *testing.T) {
	checker, _ := newBoolChecker(t)
	caseExpr := ast.Case(ast.Ctor("Bool", "True"),
		ast.Arm("", "True", "p", ast.Int(1)),
		ast.Arm("", "False", "p", ast.Int(0)),
	)
	module := ast.Mod(nil, ast.Val("answer", caseExpr))
	diags, err := checker.CheckModule(module)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if _, ok := checker.Tables().Lookup(caseExpr); !ok {
		t.Fatalf("expected a compiled table for the case expression")
	}
	typ, ok := checker.Global().Lookup("answer")
	if !ok || typ.Name() != "Int" {
		t.Fatalf("expected answer to be Int, got %v", typ)
	}
}

func TestCaseMissingVariantIsNonExhaustive(t *testing.T) {
	checker, _ := newBoolChecker(t)
	module := ast.Mod(nil, ast.Val("bad", ast.Case(ast.Ctor("Bool", "True"),
		ast.Arm("", "True", "", ast.Int(1)),
	)))
	diags, err := checker.CheckModule(module)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkErr := AsError(diags)
	if !errors.Is(checkErr, match.ErrNonExhaustiveMatch) {
		t.Fatalf("expected NonExhaustiveMatch, got %v", checkErr)
	}
	if !hasDiagnostic(diags, "missing False") {
		t.Fatalf("expected missing variant to be named: %v", diags)
	}
}

func TestCaseExtraArmIsUnreachable(t *testing.T) {
	checker, _ := newBoolChecker(t)
	module := ast.Mod(nil, ast.Val("bad", ast.Case(ast.Ctor("Bool", "False"),
		ast.Arm("", "True", "", ast.Int(1)),
		ast.Arm("", "False", "", ast.Int(0)),
		ast.Arm("", "False", "", ast.Int(2)),
	)))
	diags, _ := checker.CheckModule(module)
	if !errors.Is(AsError(diags), match.ErrUnreachableArm) {
		t.Fatalf("expected UnreachableArm, got %v", diags)
	}
}

func TestCaseArmsNamingAnotherTypeAreUnreachable(t *testing.T) {
	checker, _ := newBoolChecker(t)
	module := ast.Mod(nil, ast.Val("bad", ast.Case(ast.Ctor("Bool", "False"),
		ast.Arm("Result", "Ok", "", ast.Int(1)),
		ast.Arm("Result", "Err", "", ast.Int(0)),
	)))
	diags, _ := checker.CheckModule(module)
	if !errors.Is(AsError(diags), match.ErrUnreachableArm) {
		t.Fatalf("expected UnreachableArm, got %v", diags)
	}
}

func TestUnannotatedScrutineeUsesFirstArmType(t *testing.T) {
	checker, _ := newBoolChecker(t)
	unwrap := ast.Fn([]string{"r"}, ast.Case(ast.ID("r"),
		ast.Arm("Result", "Ok", "t", ast.Call("id", ast.ID("t"))),
		ast.Arm("Result", "Err", "e", ast.Call("panic", ast.ID("e"))),
	))
	checker.Define("id", UnknownType{})
	checker.Define("panic", UnknownType{})
	diags, _ := checker.CheckModule(ast.Mod(nil, ast.Val("unwrap", unwrap)))
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(checker.Tables()) != 1 {
		t.Fatalf("expected one compiled table, got %d", len(checker.Tables()))
	}
}

func TestBinderReceivesPayloadType(t *testing.T) {
	checker, _ := newBoolChecker(t)
	fn := ast.FnTyped(
		[]*ast.FunctionParameter{ast.Param("r", ast.Ty("Result"))},
		ast.Ty("String"),
		ast.Case(ast.ID("r"),
			ast.Arm("", "Ok", "t", ast.Str("fine")),
			ast.Arm("", "Err", "e", ast.ID("e")),
		),
	)
	diags, _ := checker.CheckModule(ast.Mod(nil, ast.Val("describe", fn)))
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestUndefinedIdentifierIsReported(t *testing.T) {
	checker, _ := newBoolChecker(t)
	diags, _ := checker.CheckModule(ast.Mod(nil, ast.Val("x", ast.ID("missing"))))
	if !hasDiagnostic(diags, "undefined identifier 'missing'") {
		t.Fatalf("expected undefined identifier diagnostic, got %v", diags)
	}
}

func TestLetBindingsDoNotSeeEachOther(t *testing.T) {
	checker, _ := newBoolChecker(t)
	let := ast.Let([]*ast.LetBinding{
		ast.Bind("a", ast.Int(1)),
		ast.Bind("b", ast.ID("a")),
	}, ast.ID("b"))
	diags, _ := checker.CheckModule(ast.Mod(nil, ast.Val("x", let)))
	if !hasDiagnostic(diags, "undefined identifier 'a'") {
		t.Fatalf("expected non-recursive let diagnostic, got %v", diags)
	}
}

func TestStaticArityMismatch(t *testing.T) {
	checker, _ := newBoolChecker(t)
	module := ast.Mod(nil,
		ast.Val("pair", ast.Fn([]string{"a", "b"}, ast.ID("a"))),
		ast.Val("x", ast.Call("pair", ast.Int(1))),
	)
	diags, _ := checker.CheckModule(module)
	if !hasDiagnostic(diags, "arity mismatch") {
		t.Fatalf("expected arity diagnostic, got %v", diags)
	}
}

func TestBoxedConstructorArgumentTypes(t *testing.T) {
	checker, _ := newBoolChecker(t)
	module := ast.Mod(nil, ast.Val("e", ast.App(ast.Ctor("Result", "Err"), ast.Int(3))))
	diags, _ := checker.CheckModule(module)
	if !hasDiagnostic(diags, "expected String") {
		t.Fatalf("expected argument type diagnostic, got %v", diags)
	}
}

func TestTopLevelRecursionIsVisible(t *testing.T) {
	checker, _ := newBoolChecker(t)
	loop := ast.Fn([]string{"b"}, ast.Case(ast.ID("b"),
		ast.Arm("Bool", "True", "", ast.Call("loop", ast.Ctor("Bool", "False"))),
		ast.Arm("Bool", "False", "", ast.Unit()),
	))
	diags, _ := checker.CheckModule(ast.Mod(nil, ast.Val("loop", loop)))
	if len(diags) != 0 {
		t.Fatalf("expected recursive reference to check, got %v", diags)
	}
}

func TestFieldAccessOnProduct(t *testing.T) {
	checker, reg := newBoolChecker(t)
	if err := reg.DeclareType(ast.ProdDef("Point", ast.Ty("Int"), ast.Ty("Float"))); err != nil {
		t.Fatalf("declare Point: %v", err)
	}
	point := ast.App(ast.Ctor("Point", "Point"), ast.Int(1), ast.Flt(2.5))
	module := ast.Mod(nil,
		ast.Val("y", ast.Field(point, 1)),
		ast.Val("z", ast.Field(point, 2)),
	)
	diags, _ := checker.CheckModule(module)
	if len(diags) != 1 || !hasDiagnostic(diags, "out of range") {
		t.Fatalf("expected a single out-of-range diagnostic, got %v", diags)
	}
	typ, _ := checker.Global().Lookup("y")
	if typ.Name() != "Float" {
		t.Fatalf("expected y to be Float, got %s", typ.Name())
	}
}

func TestCheckExpressionRecordsTypes(t *testing.T) {
	checker, _ := newBoolChecker(t)
	expr := ast.Ctor("", "True")
	expr.TypeName = nil
	diags, typ := checker.CheckExpression(nil, expr)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if typ.Name() != "Bool" {
		t.Fatalf("expected Bool, got %s", typ.Name())
	}
	if recorded, ok := checker.TypeOf(expr); !ok || recorded.Name() != "Bool" {
		t.Fatalf("expected recorded type Bool, got %v", recorded)
	}
}
