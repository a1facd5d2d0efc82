package typechecker

import (
	"fmt"
	"strings"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/match"
	"sumcore/interpreter-go/pkg/registry"
)

// InferenceMap records the type inferred for each checked expression.
type InferenceMap map[ast.Node]Type

func (m InferenceMap) set(node ast.Node, typ Type) {
	if node == nil {
		return
	}
	m[node] = typ
}

// Checker traverses expressions against a type registry and records
// diagnostics. It compiles the dispatch table of every case expression it
// checks.
type Checker struct {
	reg    *registry.Registry
	infer  InferenceMap
	global *Environment
	tables match.Tables
}

// Diagnostic represents a type-checking error. Err carries the typed error
// (for instance a *match.MatchError) when one exists.
type Diagnostic struct {
	Message string
	Node    ast.Node
	Err     error
}

// New returns a checker reading declared types from reg.
func New(reg *registry.Registry) *Checker {
	return &Checker{
		reg:    reg,
		infer:  make(InferenceMap),
		global: NewEnvironment(nil),
		tables: make(match.Tables),
	}
}

// Define binds a global name, typically a host-declared value or builtin.
func (c *Checker) Define(name string, typ Type) {
	c.global.Define(name, typ)
}

// Global is the scope CheckModule checks top-level values in.
func (c *Checker) Global() *Environment {
	return c.global
}

// Tables returns the dispatch tables of every case expression checked so far.
func (c *Checker) Tables() match.Tables {
	return c.tables
}

// TypeOf returns the inferred type of a checked expression.
func (c *Checker) TypeOf(node ast.Node) (Type, bool) {
	t, ok := c.infer[node]
	return t, ok
}

// CheckModule typechecks the value declarations of module. The module's
// types must already be declared in the registry. All top-level names are
// visible to every function body, which permits (mutually) recursive
// top-level functions.
func (c *Checker) CheckModule(module *ast.Module) ([]Diagnostic, error) {
	if module == nil {
		return nil, fmt.Errorf("typechecker: module is nil")
	}
	var diagnostics []Diagnostic

	seen := make(map[string]struct{}, len(module.Values))
	annotated := make(map[string]bool, len(module.Values))
	for _, decl := range module.Values {
		if decl == nil || decl.ID == nil || decl.ID.Name == "" {
			diagnostics = append(diagnostics, Diagnostic{Message: "typechecker: value declaration requires a name", Node: decl})
			continue
		}
		name := decl.ID.Name
		if _, dup := seen[name]; dup {
			diagnostics = append(diagnostics, Diagnostic{
				Message: fmt.Sprintf("typechecker: duplicate value declaration %s", name),
				Node:    decl,
			})
			continue
		}
		seen[name] = struct{}{}
		declared, ok := resolveTypeExpression(c.reg, decl.Type)
		if !ok {
			diagnostics = append(diagnostics, Diagnostic{
				Message: fmt.Sprintf("typechecker: unknown type in annotation of %s", name),
				Node:    decl.Type,
			})
		}
		annotated[name] = decl.Type != nil
		c.global.Define(name, declared)
	}

	for _, decl := range module.Values {
		if decl == nil || decl.ID == nil || decl.ID.Name == "" {
			continue
		}
		if decl.Value == nil {
			diagnostics = append(diagnostics, Diagnostic{
				Message: fmt.Sprintf("typechecker: value %s has no expression", decl.ID.Name),
				Node:    decl,
			})
			continue
		}
		diags, typ := c.checkExpression(c.global, decl.Value)
		diagnostics = append(diagnostics, diags...)
		if annotated[decl.ID.Name] {
			declared, _ := c.global.Lookup(decl.ID.Name)
			if !typeAssignable(typ, declared) {
				diagnostics = append(diagnostics, Diagnostic{
					Message: fmt.Sprintf("typechecker: %s declared as %s but has type %s", decl.ID.Name, typeName(declared), typeName(typ)),
					Node:    decl,
				})
			}
			continue
		}
		c.global.Define(decl.ID.Name, typ)
	}
	return diagnostics, nil
}

// CheckExpression typechecks a standalone expression, e.g. a REPL line,
// in env (the global scope when env is nil).
func (c *Checker) CheckExpression(env *Environment, expr ast.Expression) ([]Diagnostic, Type) {
	if env == nil {
		env = c.global
	}
	return c.checkExpression(env, expr)
}

// CheckError aggregates the diagnostics of a failed check.
type CheckError struct {
	Diagnostics []Diagnostic
}

func (e *CheckError) Error() string {
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].Message
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("typechecker: %d diagnostics", len(e.Diagnostics)))
	for _, d := range e.Diagnostics {
		sb.WriteString("\n  - ")
		sb.WriteString(d.Message)
	}
	return sb.String()
}

// Unwrap exposes the typed errors behind the diagnostics to errors.Is.
func (e *CheckError) Unwrap() []error {
	var errs []error
	for _, d := range e.Diagnostics {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errs
}

// AsError converts diagnostics into an error, nil when there are none.
func AsError(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	return &CheckError{Diagnostics: diags}
}
