package interpreter

import (
	"errors"
	"fmt"

	"sumcore/interpreter-go/pkg/ast"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	UnboundVariable ErrorKind = iota + 1
	NotCallable
	ArityMismatch
	Aborted
	StaleEffectToken
	TypeMismatch
	UncheckedCase
	Interrupted
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundVariable:
		return "UnboundVariable"
	case NotCallable:
		return "NotCallable"
	case ArityMismatch:
		return "ArityMismatch"
	case Aborted:
		return "Aborted"
	case StaleEffectToken:
		return "StaleEffectToken"
	case TypeMismatch:
		return "TypeMismatch"
	case UncheckedCase:
		return "UncheckedCase"
	case Interrupted:
		return "Interrupted"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// EvalError terminates an evaluation. Reason carries the abort message of
// Aborted errors and a description otherwise.
type EvalError struct {
	Kind   ErrorKind
	Reason string
	Node   ast.Node
	Err    error
}

func (e *EvalError) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Reason
}

// Is matches any EvalError of the same kind.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	return ok && t.Kind == e.Kind
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

var (
	ErrUnboundVariable  = &EvalError{Kind: UnboundVariable}
	ErrNotCallable      = &EvalError{Kind: NotCallable}
	ErrArityMismatch    = &EvalError{Kind: ArityMismatch}
	ErrAborted          = &EvalError{Kind: Aborted}
	ErrStaleEffectToken = &EvalError{Kind: StaleEffectToken}
	ErrTypeMismatch     = &EvalError{Kind: TypeMismatch}
	ErrUncheckedCase    = &EvalError{Kind: UncheckedCase}
	ErrInterrupted      = &EvalError{Kind: Interrupted}
)

func evalErrorf(kind ErrorKind, node ast.Node, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Node: node, Reason: fmt.Sprintf(format, args...)}
}

// AbortReason returns the reason of an Aborted error.
func AbortReason(err error) (string, bool) {
	var ee *EvalError
	if !errors.As(err, &ee) || ee.Kind != Aborted {
		return "", false
	}
	return ee.Reason, true
}
