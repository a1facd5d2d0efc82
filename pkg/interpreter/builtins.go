package interpreter

import (
	"fmt"
	"io"
	"strings"

	"sumcore/interpreter-go/pkg/runtime"
)

// BuiltinNames lists the natively implemented globals.
var BuiltinNames = []string{"print", "println", "panic", "id"}

func (i *Interpreter) installBuiltins() {
	builtins := []runtime.NativeFunctionValue{
		{Name: "print", Arity: -3, Impl: printBuiltin(false)},
		{Name: "println", Arity: -3, Impl: printBuiltin(true)},
		{Name: "panic", Arity: 1, Impl: panicBuiltin},
		{Name: "id", Arity: 1, Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return args[0], nil
		}},
	}
	for _, fn := range builtins {
		if err := i.DeclareValue(fn.Name, fn); err != nil {
			panic(fmt.Sprintf("install builtin %s: %v", fn.Name, err))
		}
	}
}

// printBuiltin implements print(io, format, args...) -> io. Each "{}" in
// format is replaced by the next argument; a single tuple argument spreads
// over several placeholders. The token is consumed only once the output is
// known to be well formed.
func printBuiltin(newline bool) runtime.NativeFunc {
	return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		format, ok := args[1].(runtime.StringValue)
		if !ok {
			return nil, evalErrorf(TypeMismatch, nil, "print format must be a String, got %s", args[1].Kind())
		}
		text, err := formatPlaceholders(format.Val, args[2:])
		if err != nil {
			return nil, err
		}
		if newline {
			text += "\n"
		}
		next, err := ctx.World.Advance(args[0])
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(ctx.World.Output(), text); err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		return next, nil
	}
}

func formatPlaceholders(format string, args []runtime.Value) (string, error) {
	holes := strings.Count(format, "{}")
	if len(args) == 1 && holes > 1 {
		if tuple, ok := args[0].(*runtime.TupleValue); ok {
			args = tuple.Elements
		}
	}
	if holes != len(args) {
		return "", evalErrorf(ArityMismatch, nil, "format %q expects %d argument(s), got %d", format, holes, len(args))
	}
	var sb strings.Builder
	rest := format
	for _, arg := range args {
		idx := strings.Index(rest, "{}")
		sb.WriteString(rest[:idx])
		sb.WriteString(runtime.Describe(arg))
		rest = rest[idx+2:]
	}
	sb.WriteString(rest)
	return sb.String(), nil
}

// panicBuiltin aborts the evaluation with the described argument as reason.
func panicBuiltin(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	return nil, &EvalError{Kind: Aborted, Reason: runtime.Describe(args[0])}
}
