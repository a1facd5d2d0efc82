/*
Package registry stores the nominal types of a program: sums, enums and
products together with their variants, tags and representations.

Types are declared once, during the load phase, and the registry is sealed
before evaluation starts. After sealing it is read-only, so the checker, the
match engine and the evaluator share one *Registry without locking. The
registry is always passed explicitly; there is no process-wide instance.

Nullary variants (primitive or atomic representation) are interned here: the
registry creates one *runtime.VariantValue per (type, variant) pair when the
type is declared, and every construction of that variant returns it.
*/
package registry

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'sumcore.registry'.
func tracer() tracing.Trace {
	return tracing.Select("sumcore.registry")
}
