package match

import (
	"fmt"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/registry"
	"sumcore/interpreter-go/pkg/runtime"
)

// Entry is one compiled arm: the source arm and the tag it dispatches on.
type Entry struct {
	Tag runtime.Tag
	Arm *ast.MatchArm
}

// Table is the checked dispatch table of one case expression. Entries keep
// the source arm order; index maps each tag of the type to its entry.
type Table struct {
	TypeName string
	Entries  []Entry
	index    map[runtime.Tag]int
}

// Compile checks arms against the variant set of typeName and builds the
// dispatch table. Every variant must be covered exactly once.
func Compile(reg *registry.Registry, typeName string, arms []*ast.MatchArm) (*Table, error) {
	variants := reg.Variants(typeName)
	if variants == nil {
		return nil, &MatchError{
			Kind:     ScrutineeTypeMismatch,
			TypeName: typeName,
			Arm:      -1,
			Detail:   "scrutinee type has no variants to match",
		}
	}
	table := &Table{
		TypeName: typeName,
		Entries:  make([]Entry, 0, len(arms)),
		index:    make(map[runtime.Tag]int, len(variants)),
	}
	for idx, arm := range arms {
		if arm == nil || arm.Pattern == nil || arm.Pattern.Variant == nil {
			return nil, unreachable(typeName, idx, "arm %d has no pattern", idx)
		}
		pat := arm.Pattern
		if pat.TypeName != nil && pat.TypeName.Name != typeName {
			return nil, unreachable(typeName, idx, "pattern %s.%s belongs to another type", pat.TypeName.Name, pat.Variant.Name)
		}
		info, ok := reg.Variant(typeName, pat.Variant.Name)
		if !ok {
			return nil, unreachable(typeName, idx, "%s has no variant %s", typeName, pat.Variant.Name)
		}
		if prev, dup := table.index[info.Tag]; dup {
			return nil, unreachable(typeName, idx, "variant %s already handled by arm %d", info.Name, prev)
		}
		table.index[info.Tag] = len(table.Entries)
		table.Entries = append(table.Entries, Entry{Tag: info.Tag, Arm: arm})
	}
	var missing []string
	for _, v := range variants {
		if _, ok := table.index[v.Tag]; !ok {
			missing = append(missing, v.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MatchError{Kind: NonExhaustiveMatch, TypeName: typeName, Missing: missing, Arm: -1}
	}
	tracer().Debugf("compiled case on %s with %d arm(s)", typeName, len(table.Entries))
	return table, nil
}

// Resolve selects the arm whose tag equals the value's tag through the
// table's tag index. Compile admits each tag at most once, so this picks the
// same arm as ResolveArm's scan in declaration order.
func (t *Table) Resolve(value runtime.Value) (*ast.MatchArm, error) {
	vv, err := t.scrutinee(value)
	if err != nil {
		return nil, err
	}
	idx, ok := t.index[vv.Tag]
	if !ok {
		// A checked table covers every tag, so this only happens for values
		// built outside the registry.
		return nil, &MatchError{
			Kind:     NonExhaustiveMatch,
			TypeName: t.TypeName,
			Missing:  []string{vv.Variant},
			Arm:      -1,
		}
	}
	return t.Entries[idx].Arm, nil
}

// Arms returns the source arms in declaration order.
func (t *Table) Arms() []*ast.MatchArm {
	out := make([]*ast.MatchArm, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.Arm
	}
	return out
}

func (t *Table) scrutinee(value runtime.Value) (*runtime.VariantValue, error) {
	vv, ok := value.(*runtime.VariantValue)
	if !ok {
		return nil, &MatchError{
			Kind:     ScrutineeTypeMismatch,
			TypeName: t.TypeName,
			Arm:      -1,
			Detail:   fmt.Sprintf("cannot match on %s", describeKind(value)),
		}
	}
	if vv.TypeName != t.TypeName {
		return nil, &MatchError{
			Kind:     ScrutineeTypeMismatch,
			TypeName: t.TypeName,
			Arm:      -1,
			Detail:   fmt.Sprintf("value has type %s", vv.TypeName),
		}
	}
	return vv, nil
}

// ResolveArm scans arms in declaration order and returns the first one whose
// pattern tag equals the value's tag. It performs no exhaustiveness check;
// callers that need the static guarantee use Compile.
func ResolveArm(reg *registry.Registry, value runtime.Value, arms []*ast.MatchArm) (*ast.MatchArm, error) {
	vv, ok := value.(*runtime.VariantValue)
	if !ok {
		return nil, &MatchError{
			Kind:   ScrutineeTypeMismatch,
			Arm:    -1,
			Detail: fmt.Sprintf("cannot match on %s", describeKind(value)),
		}
	}
	for _, arm := range arms {
		if arm == nil || arm.Pattern == nil || arm.Pattern.Variant == nil {
			continue
		}
		if arm.Pattern.TypeName != nil && arm.Pattern.TypeName.Name != vv.TypeName {
			continue
		}
		tag, ok := reg.VariantTag(vv.TypeName, arm.Pattern.Variant.Name)
		if ok && tag == vv.Tag {
			return arm, nil
		}
	}
	return nil, &MatchError{
		Kind:     NonExhaustiveMatch,
		TypeName: vv.TypeName,
		Missing:  []string{vv.Variant},
		Arm:      -1,
	}
}

// Payload is the value an arm binder sees.
func Payload(value runtime.Value) runtime.Value {
	if vv, ok := value.(*runtime.VariantValue); ok {
		return vv.Payload()
	}
	return runtime.UnitValue{}
}

func describeKind(v runtime.Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().String()
}

// Tables maps each checked case expression to its dispatch table.
type Tables map[*ast.CaseExpression]*Table

// Lookup returns the table compiled for expr.
func (ts Tables) Lookup(expr *ast.CaseExpression) (*Table, bool) {
	if ts == nil {
		return nil, false
	}
	t, ok := ts[expr]
	return t, ok
}
