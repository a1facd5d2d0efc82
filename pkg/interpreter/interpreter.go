package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/match"
	"sumcore/interpreter-go/pkg/registry"
	"sumcore/interpreter-go/pkg/runtime"
	"sumcore/interpreter-go/pkg/typechecker"
)

// DefaultEntry is the conventional name of the program entry function.
const DefaultEntry = "main"

// ErrLoadPhaseOver is returned by load-time operations after the interpreter
// has been sealed.
var ErrLoadPhaseOver = errors.New("load phase is over")

// Interpreter drives evaluation of checked modules.
type Interpreter struct {
	reg     *registry.Registry
	checker *typechecker.Checker
	global  *runtime.Environment
	world   *runtime.World
	tables  match.Tables
	ctors   map[string]runtime.NativeFunctionValue
	entry   string
	sealed  bool
	ctx     context.Context
	steps   uint64
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput directs effectful builtins to w.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		i.world = runtime.NewWorld(w)
	}
}

// WithEntry changes the name EvalMain runs.
func WithEntry(name string) Option {
	return func(i *Interpreter) {
		if name != "" {
			i.entry = name
		}
	}
}

// New returns an interpreter with an empty registry and the builtins bound in
// its global environment. Output defaults to stdout.
func New(opts ...Option) *Interpreter {
	reg := registry.New()
	i := &Interpreter{
		reg:     reg,
		checker: typechecker.New(reg),
		global:  runtime.NewEnvironment(nil),
		world:   runtime.NewWorld(os.Stdout),
		ctors:   make(map[string]runtime.NativeFunctionValue),
		entry:   DefaultEntry,
	}
	i.tables = i.checker.Tables()
	for _, opt := range opts {
		opt(i)
	}
	i.installBuiltins()
	return i
}

// Registry exposes the type registry (read-only once sealed).
func (i *Interpreter) Registry() *registry.Registry {
	return i.reg
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Checker returns the checker holding the global typing scope.
func (i *Interpreter) Checker() *typechecker.Checker {
	return i.checker
}

// World returns the effect world tokens are drawn from.
func (i *Interpreter) World() *runtime.World {
	return i.world
}

// Entry is the name EvalMain runs.
func (i *Interpreter) Entry() string {
	return i.entry
}

// SetEntry changes the name EvalMain runs. An empty name is ignored.
func (i *Interpreter) SetEntry(name string) {
	if name != "" {
		i.entry = name
	}
}

// DeclareType registers a type declaration.
func (i *Interpreter) DeclareType(decl *ast.TypeDeclaration) error {
	if i.sealed {
		return ErrLoadPhaseOver
	}
	return i.reg.DeclareType(decl)
}

// DeclareValue binds a host-provided value in the global environment.
func (i *Interpreter) DeclareValue(name string, value runtime.Value) error {
	if i.sealed {
		return ErrLoadPhaseOver
	}
	if name == "" {
		return fmt.Errorf("declare value: name is empty")
	}
	if value == nil {
		return fmt.Errorf("declare value %s: value is nil", name)
	}
	if err := i.global.Define(name, value); err != nil {
		return err
	}
	i.checker.Define(name, typechecker.TypeOfValue(value))
	return nil
}

// LoadModule declares the module's types, checks its values and evaluates
// them in declaration order. A type or check error aborts loading before any
// value is evaluated and withdraws the module's types, so a corrected module
// can be loaded afterwards.
func (i *Interpreter) LoadModule(module *ast.Module) error {
	if i.sealed {
		return ErrLoadPhaseOver
	}
	if module == nil {
		return fmt.Errorf("load: module is nil")
	}
	if err := i.declareAndCheck(module); err != nil {
		return err
	}
	for _, decl := range module.Values {
		value, err := i.Eval(decl.Value, i.global)
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", decl.ID.Name, err)
		}
		if closure, ok := value.(*runtime.ClosureValue); ok && closure.Name == "" {
			named := *closure
			named.Name = decl.ID.Name
			value = &named
		}
		if err := i.global.Define(decl.ID.Name, value); err != nil {
			return err
		}
		tracer().Debugf("defined %s = %s", decl.ID.Name, runtime.Describe(value))
	}
	if module.Entry != "" {
		i.entry = module.Entry
	}
	tracer().Infof("loaded module %q: %d type(s), %d value(s)", module.Name, len(module.Types), len(module.Values))
	return nil
}

func (i *Interpreter) declareAndCheck(module *ast.Module) (err error) {
	cp := i.reg.Checkpoint()
	defer func() {
		if err != nil {
			i.reg.Rollback(cp)
		}
	}()
	for _, decl := range module.Types {
		if err = i.reg.DeclareType(decl); err != nil {
			return err
		}
	}
	diags, err := i.checker.CheckModule(module)
	if err != nil {
		return err
	}
	return typechecker.AsError(diags)
}

// Seal ends the load phase. Registry and global environment become read-only.
func (i *Interpreter) Seal() {
	if i.sealed {
		return
	}
	i.reg.Seal()
	i.global.Seal()
	i.sealed = true
}

// Sealed reports whether the load phase is over.
func (i *Interpreter) Sealed() bool {
	return i.sealed
}

// EvalMain runs the entry function with a fresh effect token and returns the
// final token.
func (i *Interpreter) EvalMain() (runtime.Value, error) {
	return i.EvalMainContext(context.Background())
}

// EvalMainContext is EvalMain bounded by ctx. Cancellation is observed
// between reduction steps.
func (i *Interpreter) EvalMainContext(ctx context.Context) (runtime.Value, error) {
	i.Seal()
	return i.EvalEntryContext(ctx, i.entry, i.world.Begin())
}

// EvalEntry runs the named IO -> IO function with token.
func (i *Interpreter) EvalEntry(name string, token runtime.Value) (runtime.Value, error) {
	return i.EvalEntryContext(context.Background(), name, token)
}

// EvalEntryContext is EvalEntry bounded by ctx.
func (i *Interpreter) EvalEntryContext(ctx context.Context, name string, token runtime.Value) (runtime.Value, error) {
	fn, ok := i.global.Lookup(name)
	if !ok {
		return nil, evalErrorf(UnboundVariable, nil, "entry function %s is not defined", name)
	}
	restore := i.withContext(ctx)
	defer restore()

	tracer().Debugf("running %s", name)
	result, err := i.apply(fn, []runtime.Value{token}, nil)
	if err != nil {
		return nil, err
	}
	if _, ok := result.(runtime.EffectToken); !ok {
		return nil, evalErrorf(TypeMismatch, nil, "%s must return IO, got %s", name, result.Kind())
	}
	if !i.world.Current(result) {
		return nil, evalErrorf(StaleEffectToken, nil, "%s returned a consumed effect token", name)
	}
	return result, nil
}

// Eval reduces expr in env. Case expressions must have been checked.
func (i *Interpreter) Eval(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if env == nil {
		env = i.global
	}
	return i.evaluate(expr, env)
}

// EvalExpression checks expr against the global scope and evaluates it.
func (i *Interpreter) EvalExpression(expr ast.Expression) (runtime.Value, error) {
	diags, _ := i.checker.CheckExpression(nil, expr)
	if err := typechecker.AsError(diags); err != nil {
		return nil, err
	}
	return i.evaluate(expr, i.global)
}

func (i *Interpreter) withContext(ctx context.Context) func() {
	prev := i.ctx
	i.ctx = ctx
	return func() { i.ctx = prev }
}

// checkContext polls the run context every few hundred steps.
func (i *Interpreter) checkContext(node ast.Node) error {
	i.steps++
	if i.ctx == nil || i.steps%256 != 0 {
		return nil
	}
	if err := i.ctx.Err(); err != nil {
		return &EvalError{Kind: Interrupted, Node: node, Reason: err.Error(), Err: err}
	}
	return nil
}
