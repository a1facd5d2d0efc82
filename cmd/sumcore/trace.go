package main

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"sumcore/interpreter-go/pkg/driver"
)

var traceKeys = []string{
	"sumcore.registry",
	"sumcore.match",
	"sumcore.interpreter",
	"sumcore.driver",
}

// configureTracing sets the level of every package tracer. The command line
// level wins over the manifest's; with neither, tracers keep their defaults.
func configureTracing(flagLevel string, manifest *driver.Manifest) error {
	name := flagLevel
	if name == "" && manifest != nil {
		name = manifest.Trace
	}
	if name == "" {
		return nil
	}
	level, ok := driver.ParseTraceLevel(name)
	if !ok {
		return fmt.Errorf("unsupported trace level %q", name)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	return nil
}
