package interpreter

import (
	"errors"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/match"
	"sumcore/interpreter-go/pkg/registry"
	"sumcore/interpreter-go/pkg/runtime"
)

// evaluate reduces node in env. Expressions in tail position replace node
// and env and go around the loop instead of recursing.
func (i *Interpreter) evaluate(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	for {
		if err := i.checkContext(node); err != nil {
			return nil, err
		}
		switch n := node.(type) {
		case nil:
			return nil, evalErrorf(TypeMismatch, nil, "missing expression")
		case *ast.UnitLiteral:
			return runtime.UnitValue{}, nil
		case *ast.IntegerLiteral:
			return runtime.IntegerValue{Val: n.Value, Unsigned: n.Unsigned}, nil
		case *ast.FloatLiteral:
			return runtime.FloatValue{Val: n.Value}, nil
		case *ast.CharLiteral:
			return runtime.CharValue{Val: n.Value}, nil
		case *ast.StringLiteral:
			return runtime.StringValue{Val: n.Value}, nil
		case *ast.Identifier:
			val, ok := env.Lookup(n.Name)
			if !ok {
				return nil, evalErrorf(UnboundVariable, n, "'%s' is not bound", n.Name)
			}
			return val, nil
		case *ast.ConstructorRef:
			return i.evaluateConstructorRef(n)
		case *ast.FunctionExpression:
			return i.evaluateFunctionExpression(n, env)
		case *ast.FieldAccess:
			return i.evaluateFieldAccess(n, env)

		case *ast.Application:
			callee, err := i.evaluate(n.Callee, env)
			if err != nil {
				return nil, err
			}
			if !callable(callee) {
				return nil, evalErrorf(NotCallable, n, "cannot call %s", runtime.Describe(callee))
			}
			args := make([]runtime.Value, 0, len(n.Arguments))
			for _, argExpr := range n.Arguments {
				val, err := i.evaluate(argExpr, env)
				if err != nil {
					return nil, err
				}
				args = append(args, val)
			}
			closure, ok := callee.(*runtime.ClosureValue)
			if !ok {
				return i.apply(callee, args, n)
			}
			callEnv, err := bindClosure(closure, args, n)
			if err != nil {
				return nil, err
			}
			node, env = closure.Body, callEnv

		case *ast.LetExpression:
			names := make([]string, 0, len(n.Bindings))
			values := make([]runtime.Value, 0, len(n.Bindings))
			for _, b := range n.Bindings {
				val, err := i.evaluate(b.Value, env)
				if err != nil {
					return nil, err
				}
				names = append(names, b.Name.Name)
				values = append(values, val)
			}
			node, env = n.Body, env.Extend(names, values)

		case *ast.CaseExpression:
			table, ok := i.tables.Lookup(n)
			if !ok {
				return nil, evalErrorf(UncheckedCase, n, "case expression was not checked")
			}
			scrutinee, err := i.evaluate(n.Scrutinee, env)
			if err != nil {
				return nil, err
			}
			arm, err := table.Resolve(scrutinee)
			if err != nil {
				return nil, &EvalError{Kind: TypeMismatch, Node: n, Reason: err.Error(), Err: err}
			}
			if arm.Binder != nil && arm.Binder.Name != "" {
				env = env.Bind(arm.Binder.Name, match.Payload(scrutinee))
			}
			node = arm.Body

		default:
			return nil, evalErrorf(TypeMismatch, node, "unsupported expression %s", node.NodeType())
		}
	}
}

func (i *Interpreter) evaluateFunctionExpression(fn *ast.FunctionExpression, env *runtime.Environment) (runtime.Value, error) {
	params := make([]string, 0, len(fn.Params))
	for idx, p := range fn.Params {
		if p == nil || p.Name == nil {
			return nil, evalErrorf(TypeMismatch, fn, "parameter %d has no name", idx)
		}
		params = append(params, p.Name.Name)
	}
	return runtime.MakeClosure(params, fn.Body, env), nil
}

// bindClosure builds the frame a closure body runs in. There is no partial
// application: the argument count must equal the parameter count.
func bindClosure(fn *runtime.ClosureValue, args []runtime.Value, call ast.Node) (*runtime.Environment, error) {
	if len(args) != len(fn.Params) {
		return nil, evalErrorf(ArityMismatch, call, "%s expects %d argument(s), got %d", runtime.Describe(fn), len(fn.Params), len(args))
	}
	return fn.Env.Extend(fn.Params, args), nil
}

// apply calls any callable value. Closure bodies run in a fresh evaluation
// loop, so apply is for calls that are not in tail position.
func (i *Interpreter) apply(callee runtime.Value, args []runtime.Value, call ast.Node) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.ClosureValue:
		env, err := bindClosure(fn, args, call)
		if err != nil {
			return nil, err
		}
		return i.evaluate(fn.Body, env)
	case runtime.NativeFunctionValue:
		return i.callNative(fn, args, call)
	default:
		return nil, evalErrorf(NotCallable, call, "cannot call %s", runtime.Describe(callee))
	}
}

func callable(v runtime.Value) bool {
	switch v.(type) {
	case *runtime.ClosureValue, runtime.NativeFunctionValue:
		return true
	}
	return false
}

func (i *Interpreter) callNative(fn runtime.NativeFunctionValue, args []runtime.Value, call ast.Node) (runtime.Value, error) {
	if fn.Variadic() {
		if len(args) < fn.MinArity() {
			return nil, evalErrorf(ArityMismatch, call, "%s expects at least %d argument(s), got %d", fn.Name, fn.MinArity(), len(args))
		}
	} else if len(args) != fn.Arity {
		return nil, evalErrorf(ArityMismatch, call, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
	}
	ctx := &runtime.NativeCallContext{Env: i.global, World: i.world}
	result, err := fn.Impl(ctx, args)
	if err != nil {
		return nil, nativeError(err, call)
	}
	return result, nil
}

// nativeError classifies errors surfaced by host functions.
func nativeError(err error, call ast.Node) error {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		if evalErr.Node == nil {
			evalErr.Node = call
		}
		return evalErr
	}
	var arity *registry.ArityError
	switch {
	case errors.Is(err, runtime.ErrStaleToken):
		return &EvalError{Kind: StaleEffectToken, Node: call, Reason: err.Error(), Err: err}
	case errors.As(err, &arity):
		return &EvalError{Kind: ArityMismatch, Node: call, Reason: err.Error(), Err: err}
	default:
		return &EvalError{Kind: TypeMismatch, Node: call, Reason: err.Error(), Err: err}
	}
}

// evaluateConstructorRef yields the interned value of a nullary variant or a
// constructor function for a boxed one.
func (i *Interpreter) evaluateConstructorRef(ref *ast.ConstructorRef) (runtime.Value, error) {
	if ref.Variant == nil {
		return nil, evalErrorf(UnboundVariable, ref, "constructor reference without variant")
	}
	typeName := ""
	if ref.TypeName != nil {
		typeName = ref.TypeName.Name
	} else if owner, ok := i.reg.FindVariant(ref.Variant.Name); ok {
		typeName = owner
	}
	info, ok := i.reg.Variant(typeName, ref.Variant.Name)
	if !ok {
		return nil, evalErrorf(UnboundVariable, ref, "unknown constructor %s", ref.Variant.Name)
	}
	if info.Nullary() {
		v, _ := i.reg.Nullary(typeName, info.Name)
		return v, nil
	}
	key := typeName + "." + info.Name
	if ctor, ok := i.ctors[key]; ok {
		return ctor, nil
	}
	reg, variant := i.reg, info.Name
	ctor := runtime.NativeFunctionValue{
		Name:  key,
		Arity: len(info.Fields),
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return reg.MakeBoxed(typeName, variant, args...)
		},
	}
	i.ctors[key] = ctor
	return ctor, nil
}

func (i *Interpreter) evaluateFieldAccess(fa *ast.FieldAccess, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evaluate(fa.Target, env)
	if err != nil {
		return nil, err
	}
	var fields []runtime.Value
	switch t := target.(type) {
	case *runtime.VariantValue:
		fields = t.Fields
	case *runtime.TupleValue:
		fields = t.Elements
	default:
		return nil, evalErrorf(TypeMismatch, fa, "cannot access fields of %s", target.Kind())
	}
	if fa.Index < 0 || fa.Index >= len(fields) {
		return nil, evalErrorf(TypeMismatch, fa, "field index %d out of range (%d field(s))", fa.Index, len(fields))
	}
	return fields[fa.Index], nil
}
