package match

import (
	"fmt"
	"strings"
)

// ErrorKind classifies match failures.
type ErrorKind int

const (
	NonExhaustiveMatch ErrorKind = iota + 1
	UnreachableArm
	ScrutineeTypeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case NonExhaustiveMatch:
		return "NonExhaustiveMatch"
	case UnreachableArm:
		return "UnreachableArm"
	case ScrutineeTypeMismatch:
		return "ScrutineeTypeMismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// MatchError reports a case expression that cannot dispatch. Missing lists
// the uncovered variants of a NonExhaustiveMatch; Arm is the offending arm
// index of an UnreachableArm, or -1.
type MatchError struct {
	Kind     ErrorKind
	TypeName string
	Missing  []string
	Arm      int
	Detail   string
}

func (e *MatchError) Error() string {
	var sb strings.Builder
	sb.WriteString("match error: ")
	sb.WriteString(e.Kind.String())
	if e.TypeName != "" {
		sb.WriteString(" on ")
		sb.WriteString(e.TypeName)
	}
	if len(e.Missing) > 0 {
		sb.WriteString(": missing ")
		sb.WriteString(strings.Join(e.Missing, ", "))
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

// Is matches any MatchError of the same kind.
func (e *MatchError) Is(target error) bool {
	t, ok := target.(*MatchError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNonExhaustiveMatch    = &MatchError{Kind: NonExhaustiveMatch, Arm: -1}
	ErrUnreachableArm        = &MatchError{Kind: UnreachableArm, Arm: -1}
	ErrScrutineeTypeMismatch = &MatchError{Kind: ScrutineeTypeMismatch, Arm: -1}
)

func unreachable(typeName string, arm int, format string, args ...any) *MatchError {
	return &MatchError{Kind: UnreachableArm, TypeName: typeName, Arm: arm, Detail: fmt.Sprintf(format, args...)}
}
