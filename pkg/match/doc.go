/*
Package match resolves case expressions against variant values.

Case expressions are compiled once, at load time, against the declared type
of their scrutinee. Compilation enforces exhaustiveness: the arm patterns must
name every variant of the type exactly once. A compiled Table can then be
resolved against any value of that type without further checks, and the
resolution is deterministic: exactly one arm matches.

Arm order has no meaning beyond duplicate detection. Dispatch goes by tag.
*/
package match

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'sumcore.match'.
func tracer() tracing.Trace {
	return tracing.Select("sumcore.match")
}
