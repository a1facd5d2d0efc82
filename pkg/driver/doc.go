/*
Package driver locates and decodes sumcore programs.

A program is either a single YAML program file or a directory holding a
sumcore.yml manifest that names the program files to load. Program files
describe a module as plain YAML: a list of type declarations, a list of value
declarations, and expressions written as tagged mappings.

	module: bools
	types:
	  - enum: Bool
	    variants: [False, True]
	values:
	  - name: main
	    value:
	      fun: [io]
	      body:
	        call: println
	        args: [io, {str: "hello"}]

The driver produces ast.Module values; it does not evaluate anything.
*/
package driver

import "github.com/npillmayer/schuko/tracing"

func tracer() tracing.Trace {
	return tracing.Select("sumcore.driver")
}
