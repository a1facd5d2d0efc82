/*
Package interpreter evaluates checked programs.

An Interpreter owns the type registry, the global environment, the checker
and the effect world of one run. Loading happens in phases: types are
declared, value declarations are checked (which also compiles every case
expression into a dispatch table), then top-level values are evaluated in
order. Nothing is evaluated unless the whole module checked cleanly.

EvalMain seals the load phase and calls the entry function with a fresh
effect token. Evaluation is single-threaded; tail positions (function
bodies, let bodies and case arms) run in a loop rather than recursing.
*/
package interpreter

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'sumcore.interpreter'.
func tracer() tracing.Trace {
	return tracing.Select("sumcore.interpreter")
}
