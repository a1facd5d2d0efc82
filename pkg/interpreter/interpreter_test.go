package interpreter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/match"
	"sumcore/interpreter-go/pkg/registry"
	"sumcore/interpreter-go/pkg/runtime"
)

func boolType() *ast.TypeDeclaration {
	return ast.EnumDef("Bool", ast.Primitive("False"), ast.Primitive("True"))
}

func resultType() *ast.TypeDeclaration {
	return ast.SumDef("Result", ast.Boxed("Ok", ast.Ty("Any")), ast.Boxed("Err", ast.Ty("String")))
}

func mustLoad(t *testing.T, interp *Interpreter, module *ast.Module) {
	t.Helper()
	if err := interp.LoadModule(module); err != nil {
		t.Fatalf("load failed: %v", err)
	}
}

func globalValue(t *testing.T, interp *Interpreter, name string) runtime.Value {
	t.Helper()
	val, ok := interp.GlobalEnvironment().Lookup(name)
	if !ok {
		t.Fatalf("global %s not defined", name)
	}
	return val
}

func expectInt(t *testing.T, val runtime.Value, want int64) {
	t.Helper()
	iv, ok := val.(runtime.IntegerValue)
	if !ok || iv.Val != want {
		t.Fatalf("expected integer %d, got %s", want, runtime.Describe(val))
	}
}

func TestCaseOnTrueAndFalse(t *testing.T) {
	pick := func(variant string) ast.Expression {
		return ast.Case(ast.Ctor("Bool", variant),
			ast.Arm("", "True", "p", ast.Int(1)),
			ast.Arm("", "False", "p", ast.Int(0)),
		)
	}
	interp := New()
	mustLoad(t, interp, ast.Mod([]*ast.TypeDeclaration{boolType()},
		ast.Val("onTrue", pick("True")),
		ast.Val("onFalse", pick("False")),
	))
	expectInt(t, globalValue(t, interp, "onTrue"), 1)
	expectInt(t, globalValue(t, interp, "onFalse"), 0)
}

func TestCaseArmOrderDoesNotMatter(t *testing.T) {
	interp := New()
	mustLoad(t, interp, ast.Mod([]*ast.TypeDeclaration{boolType()},
		ast.Val("x", ast.Case(ast.Ctor("Bool", "True"),
			ast.Arm("", "False", "", ast.Int(0)),
			ast.Arm("", "True", "", ast.Int(1)),
		)),
	))
	expectInt(t, globalValue(t, interp, "x"), 1)
}

func unwrapFn() ast.Expression {
	return ast.Fn([]string{"r"}, ast.Case(ast.ID("r"),
		ast.Arm("Result", "Ok", "t", ast.Call("id", ast.ID("t"))),
		ast.Arm("Result", "Err", "e", ast.Call("panic", ast.ID("e"))),
	))
}

func TestUnwrapReturnsPayload(t *testing.T) {
	interp := New()
	mustLoad(t, interp, ast.Mod([]*ast.TypeDeclaration{resultType()},
		ast.Val("unwrap", unwrapFn()),
		ast.Val("v", ast.Call("unwrap", ast.App(ast.Ctor("Result", "Ok"), ast.Int(42)))),
	))
	expectInt(t, globalValue(t, interp, "v"), 42)
}

func TestUnwrapOnErrAborts(t *testing.T) {
	interp := New()
	err := interp.LoadModule(ast.Mod([]*ast.TypeDeclaration{resultType()},
		ast.Val("unwrap", unwrapFn()),
		ast.Val("v", ast.Call("unwrap", ast.App(ast.Ctor("Result", "Err"), ast.Str("boom")))),
	))
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected Aborted, got %v", err)
	}
	if reason, ok := AbortReason(err); !ok || reason != "boom" {
		t.Fatalf("expected abort reason boom, got %q", reason)
	}
}

func TestSequentialEffectsAreOrdered(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	main := ast.Fn([]string{"io1"}, ast.Let1("io2",
		ast.Call("print", ast.ID("io1"), ast.Str("a")),
		ast.Call("print", ast.ID("io2"), ast.Str("b")),
	))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", main)))

	result, err := interp.EvalMain()
	if err != nil {
		t.Fatalf("evalMain failed: %v", err)
	}
	if out.String() != "ab" {
		t.Fatalf("expected output ab, got %q", out.String())
	}
	if !interp.World().Current(result) {
		t.Fatalf("expected the returned token to be current")
	}
	if interp.World().Effects() != 2 {
		t.Fatalf("expected 2 effects, got %d", interp.World().Effects())
	}
}

func TestReusedTokenIsRejected(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	main := ast.Fn([]string{"io1"}, ast.Let1("io2",
		ast.Call("print", ast.ID("io1"), ast.Str("a")),
		ast.Call("print", ast.ID("io1"), ast.Str("b")),
	))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", main)))

	_, err := interp.EvalMain()
	if !errors.Is(err, ErrStaleEffectToken) {
		t.Fatalf("expected StaleEffectToken, got %v", err)
	}
	if out.String() != "a" {
		t.Fatalf("expected only the first effect to happen, got %q", out.String())
	}
}

func TestSwappedTokensAreRejected(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	// io3 comes from io2, then the program goes back to io2 and returns io3.
	main := ast.Fn([]string{"io1"},
		ast.Let1("io2", ast.Call("print", ast.ID("io1"), ast.Str("a")),
			ast.Let1("io3", ast.Call("print", ast.ID("io2"), ast.Str("b")),
				ast.Let1("io4", ast.Call("print", ast.ID("io2"), ast.Str("c")),
					ast.ID("io3")))))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", main)))

	if _, err := interp.EvalMain(); !errors.Is(err, ErrStaleEffectToken) {
		t.Fatalf("expected StaleEffectToken, got %v", err)
	}
	if out.String() != "ab" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestConsumedTokenIsNotAFinalToken(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	main := ast.Fn([]string{"io1"},
		ast.Let1("io2", ast.Call("print", ast.ID("io1"), ast.Str("a")),
			ast.ID("io1")))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", main)))

	if _, err := interp.EvalMain(); !errors.Is(err, ErrStaleEffectToken) {
		t.Fatalf("expected StaleEffectToken, got %v", err)
	}
	if out.String() != "a" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestEntryWithoutEffectsReturnsItsToken(t *testing.T) {
	interp := New()
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", ast.Fn([]string{"io"}, ast.ID("io")))))
	result, err := interp.EvalMain()
	if err != nil {
		t.Fatalf("evalMain failed: %v", err)
	}
	if !interp.World().Current(result) {
		t.Fatalf("expected the returned token to be current")
	}
}

func TestPrintFormatsPlaceholders(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	if err := interp.DeclareType(ast.ProdDef("Pair", ast.Ty("Int"), ast.Ty("Char"))); err != nil {
		t.Fatalf("declare: %v", err)
	}
	main := ast.Fn([]string{"io"}, ast.Case(ast.App(ast.Ctor("Pair", "Pair"), ast.Int(7), ast.Chr('z')),
		ast.Arm("Pair", "Pair", "p", ast.Call("println", ast.ID("io"), ast.Str("a: {}, b: {}"), ast.ID("p"))),
	))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", main)))
	if _, err := interp.EvalMain(); err != nil {
		t.Fatalf("evalMain failed: %v", err)
	}
	if out.String() != "a: 7, b: z\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestArityMismatchIsNotPartialApplication(t *testing.T) {
	interp := New()
	pair := ast.Fn([]string{"a", "b"}, ast.ID("a"))
	// Routing the closure through id hides its arity from the checker.
	mustLoad(t, interp, ast.Mod(nil, ast.Val("pair", ast.Call("id", pair))))

	_, err := interp.Eval(ast.Call("pair", ast.Int(1)), nil)
	if !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("expected ArityMismatch, got %v", err)
	}
}

func TestBoxedConstructorArity(t *testing.T) {
	interp := New()
	if err := interp.DeclareType(resultType()); err != nil {
		t.Fatalf("declare: %v", err)
	}
	_, err := interp.Eval(ast.App(ast.Ctor("Result", "Ok")), nil)
	if !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("expected ArityMismatch, got %v", err)
	}
}

func TestUnboundVariable(t *testing.T) {
	interp := New()
	_, err := interp.Eval(ast.ID("nowhere"), nil)
	if !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("expected UnboundVariable, got %v", err)
	}
}

func TestNotCallable(t *testing.T) {
	interp := New()
	_, err := interp.Eval(ast.App(ast.Int(3), ast.Int(4)), nil)
	if !errors.Is(err, ErrNotCallable) {
		t.Fatalf("expected NotCallable, got %v", err)
	}
}

func TestNotCallableStopsBeforeArguments(t *testing.T) {
	interp := New()
	ticks := 0
	tick := runtime.NativeFunctionValue{
		Name: "tick",
		Impl: func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
			ticks++
			return runtime.UnitValue{}, nil
		},
	}
	if err := interp.DeclareValue("tick", tick); err != nil {
		t.Fatalf("declare: %v", err)
	}
	_, err := interp.Eval(ast.App(ast.Int(3), ast.Call("tick")), nil)
	if !errors.Is(err, ErrNotCallable) {
		t.Fatalf("expected NotCallable, got %v", err)
	}
	if ticks != 0 {
		t.Fatalf("arguments were evaluated %d time(s)", ticks)
	}
}

func TestUncheckedCaseIsRefused(t *testing.T) {
	interp := New()
	if err := interp.DeclareType(boolType()); err != nil {
		t.Fatalf("declare: %v", err)
	}
	expr := ast.Case(ast.Ctor("Bool", "True"), ast.Arm("", "True", "", ast.Int(1)))
	if _, err := interp.Eval(expr, nil); !errors.Is(err, ErrUncheckedCase) {
		t.Fatalf("expected UncheckedCase, got %v", err)
	}
	if _, err := interp.EvalExpression(expr); !errors.Is(err, match.ErrNonExhaustiveMatch) {
		t.Fatalf("expected NonExhaustiveMatch from the checker, got %v", err)
	}
}

func TestNonExhaustiveCaseAbortsLoadBeforeEvaluation(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	module := ast.Mod([]*ast.TypeDeclaration{boolType()},
		ast.Val("first", ast.Call("panic", ast.Str("must not run"))),
		ast.Val("bad", ast.Case(ast.Ctor("Bool", "True"), ast.Arm("", "True", "", ast.Int(1)))),
	)
	err := interp.LoadModule(module)
	if !errors.Is(err, match.ErrNonExhaustiveMatch) {
		t.Fatalf("expected NonExhaustiveMatch, got %v", err)
	}
	if errors.Is(err, ErrAborted) {
		t.Fatalf("no value should have been evaluated")
	}
}

func TestTypeErrorsAbortLoad(t *testing.T) {
	interp := New()
	module := ast.Mod([]*ast.TypeDeclaration{
		ast.SumDef("Wrapper", ast.Boxed("Wrap", ast.Ty("Missing"))),
	}, ast.Val("x", ast.Int(1)))
	err := interp.LoadModule(module)
	if !errors.Is(err, registry.ErrUnknownConstituentType) {
		t.Fatalf("expected UnknownConstituentType, got %v", err)
	}
	if _, ok := interp.GlobalEnvironment().Lookup("x"); ok {
		t.Fatalf("value declared despite failed load")
	}
}

func TestFailedLoadCanBeRetried(t *testing.T) {
	interp := New()
	broken := ast.Mod([]*ast.TypeDeclaration{
		boolType(),
		ast.SumDef("Wrapper", ast.Boxed("Wrap", ast.Ty("Missing"))),
	})
	if err := interp.LoadModule(broken); !errors.Is(err, registry.ErrUnknownConstituentType) {
		t.Fatalf("expected UnknownConstituentType, got %v", err)
	}
	if got := interp.Registry().Types(); len(got) != 0 {
		t.Fatalf("types left behind by failed load: %v", got)
	}

	partial := ast.Mod([]*ast.TypeDeclaration{boolType()},
		ast.Val("bad", ast.Case(ast.Ctor("Bool", "True"), ast.Arm("", "True", "", ast.Int(1)))),
	)
	if err := interp.LoadModule(partial); !errors.Is(err, match.ErrNonExhaustiveMatch) {
		t.Fatalf("expected NonExhaustiveMatch, got %v", err)
	}
	if interp.Registry().Has("Bool") {
		t.Fatalf("Bool survived a failed check")
	}

	fixed := ast.Mod([]*ast.TypeDeclaration{boolType()},
		ast.Val("good", ast.Case(ast.Ctor("Bool", "True"),
			ast.Arm("", "True", "", ast.Int(1)),
			ast.Arm("", "False", "", ast.Int(0)),
		)),
	)
	mustLoad(t, interp, fixed)
	expectInt(t, globalValue(t, interp, "good"), 1)
}

func TestLetIsNonRecursive(t *testing.T) {
	interp := New()
	_ = interp.DeclareValue("a", runtime.IntegerValue{Val: 10})
	let := ast.Let([]*ast.LetBinding{
		ast.Bind("a", ast.Int(1)),
		ast.Bind("b", ast.ID("a")),
	}, ast.ID("b"))
	val, err := interp.EvalExpression(let)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	expectInt(t, val, 10)
}

func TestClosuresCaptureDefinitionScope(t *testing.T) {
	interp := New()
	adder := ast.Fn([]string{"x"}, ast.Fn([]string{"y"}, ast.ID("x")))
	mustLoad(t, interp, ast.Mod(nil,
		ast.Val("constant", adder),
		ast.Val("five", ast.Call("constant", ast.Int(5))),
		ast.Val("v", ast.Let1("x", ast.Int(99), ast.Call("five", ast.Int(0)))),
	))
	expectInt(t, globalValue(t, interp, "v"), 5)
}

func TestDeepTailRecursionRunsInConstantStack(t *testing.T) {
	interp := New()
	if err := interp.DeclareType(ast.SumDef("Nat", ast.Atomic("Zero"), ast.Boxed("Succ", ast.Ty("Any")))); err != nil {
		t.Fatalf("declare: %v", err)
	}
	// count(n, acc) walks a Succ chain back to Zero in tail position.
	count := ast.Fn([]string{"n", "acc"}, ast.Case(ast.ID("n"),
		ast.Arm("Nat", "Zero", "", ast.ID("acc")),
		ast.Arm("Nat", "Succ", "m", ast.Call("count", ast.ID("m"), ast.ID("acc"))),
	))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("count", count)))

	zero, _ := interp.Registry().Nullary("Nat", "Zero")
	var n runtime.Value = zero
	for k := 0; k < 200000; k++ {
		next, err := interp.Registry().MakeBoxed("Nat", "Succ", n)
		if err != nil {
			t.Fatalf("make: %v", err)
		}
		n = next
	}
	if err := interp.DeclareValue("big", n); err != nil {
		t.Fatalf("declare big: %v", err)
	}
	val, err := interp.EvalExpression(ast.Call("count", ast.ID("big"), ast.Str("done")))
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "done" {
		t.Fatalf("unexpected result %s", runtime.Describe(val))
	}
}

func TestNullaryConstructorsAreIdentical(t *testing.T) {
	interp := New()
	if err := interp.DeclareType(boolType()); err != nil {
		t.Fatalf("declare: %v", err)
	}
	a, err := interp.Eval(ast.Ctor("Bool", "True"), nil)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	b, err := interp.EvalExpression(ast.Ctor("Bool", "True"))
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if a != b {
		t.Fatalf("expected interned nullary values")
	}
}

func TestLoadPhaseEndsAtEvalMain(t *testing.T) {
	interp := New()
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", ast.Fn([]string{"io"}, ast.ID("io")))))
	if _, err := interp.EvalMain(); err != nil {
		t.Fatalf("evalMain failed: %v", err)
	}
	if err := interp.DeclareType(boolType()); !errors.Is(err, ErrLoadPhaseOver) {
		t.Fatalf("expected ErrLoadPhaseOver, got %v", err)
	}
	if err := interp.DeclareValue("late", runtime.UnitValue{}); !errors.Is(err, ErrLoadPhaseOver) {
		t.Fatalf("expected ErrLoadPhaseOver, got %v", err)
	}
}

func TestEntryMustReturnIO(t *testing.T) {
	interp := New(WithEntry("start"))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("start", ast.Fn([]string{"io"}, ast.Int(0)))))
	_, err := interp.EvalMain()
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}

func TestMissingEntry(t *testing.T) {
	interp := New()
	if _, err := interp.EvalMain(); !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("expected UnboundVariable for missing main, got %v", err)
	}
}

func TestEvalMainContextCancellation(t *testing.T) {
	interp := New()
	if err := interp.DeclareType(boolType()); err != nil {
		t.Fatalf("declare: %v", err)
	}
	spin := ast.Fn([]string{"io"}, ast.Case(ast.Ctor("Bool", "True"),
		ast.Arm("", "True", "", ast.Call("main", ast.ID("io"))),
		ast.Arm("", "False", "", ast.ID("io")),
	))
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", spin)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := interp.EvalMainContext(ctx)
	if !errors.Is(err, ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Interrupted wrapping context.Canceled, got %v", err)
	}
}

func TestFieldAccess(t *testing.T) {
	interp := New()
	if err := interp.DeclareType(ast.ProdDef("Point", ast.Ty("Int"), ast.Ty("Int"))); err != nil {
		t.Fatalf("declare: %v", err)
	}
	val, err := interp.EvalExpression(ast.Field(ast.App(ast.Ctor("Point", "Point"), ast.Int(3), ast.Int(4)), 1))
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	expectInt(t, val, 4)
}

func TestClosureDescriptionCarriesDeclaredName(t *testing.T) {
	interp := New()
	mustLoad(t, interp, ast.Mod(nil, ast.Val("main", ast.Fn([]string{"io"}, ast.ID("io")))))
	desc := runtime.Describe(globalValue(t, interp, "main"))
	if !strings.Contains(desc, "main/1") {
		t.Fatalf("unexpected closure description %q", desc)
	}
}
