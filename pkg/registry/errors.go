package registry

import (
	"errors"
	"fmt"
)

// TypeErrorKind classifies declaration failures.
type TypeErrorKind int

const (
	DuplicateType TypeErrorKind = iota + 1
	DuplicateVariantTag
	UnknownConstituentType
	MalformedType
)

func (k TypeErrorKind) String() string {
	switch k {
	case DuplicateType:
		return "DuplicateType"
	case DuplicateVariantTag:
		return "DuplicateVariantTag"
	case UnknownConstituentType:
		return "UnknownConstituentType"
	case MalformedType:
		return "MalformedType"
	default:
		return fmt.Sprintf("TypeErrorKind(%d)", int(k))
	}
}

// TypeError reports a rejected type declaration.
type TypeError struct {
	Kind     TypeErrorKind
	TypeName string
	Variant  string
	Detail   string
}

func (e *TypeError) Error() string {
	msg := "type error: " + e.Kind.String()
	if e.TypeName != "" {
		msg += " in " + e.TypeName
		if e.Variant != "" {
			msg += "." + e.Variant
		}
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any TypeError of the same kind, so callers can test against the
// Err* sentinels with errors.Is.
func (e *TypeError) Is(target error) bool {
	t, ok := target.(*TypeError)
	return ok && t.Kind == e.Kind
}

var (
	ErrDuplicateType          = &TypeError{Kind: DuplicateType}
	ErrDuplicateVariantTag    = &TypeError{Kind: DuplicateVariantTag}
	ErrUnknownConstituentType = &TypeError{Kind: UnknownConstituentType}
	ErrMalformedType          = &TypeError{Kind: MalformedType}
)

// ErrRegistrySealed is returned by DeclareType once the load phase is over.
var ErrRegistrySealed = errors.New("type registry is sealed")

// Construction errors.
var (
	ErrUnknownVariant         = errors.New("unknown variant")
	ErrRepresentationMismatch = errors.New("representation mismatch")
)

// ArityError reports a boxed construction with the wrong number of fields.
type ArityError struct {
	TypeName string
	Variant  string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s.%s expects %d field(s), got %d", e.TypeName, e.Variant, e.Expected, e.Got)
}

func malformed(typeName, variant, format string, args ...any) *TypeError {
	return &TypeError{Kind: MalformedType, TypeName: typeName, Variant: variant, Detail: fmt.Sprintf(format, args...)}
}
