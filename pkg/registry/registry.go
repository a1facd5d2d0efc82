package registry

import (
	"fmt"
	"sort"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/runtime"
)

// Builtin type names. They count as declared and cannot be redeclared.
const (
	TypeUnit   = "Unit"
	TypeInt    = "Int"
	TypeUInt   = "UInt"
	TypeFloat  = "Float"
	TypeChar   = "Char"
	TypeString = "String"
	TypeIO     = "IO"
	TypeAny    = "Any"
)

var builtinTypes = map[string]struct{}{
	TypeUnit: {}, TypeInt: {}, TypeUInt: {}, TypeFloat: {},
	TypeChar: {}, TypeString: {}, TypeIO: {}, TypeAny: {},
}

// IsBuiltinType reports whether name is one of the predeclared types.
func IsBuiltinType(name string) bool {
	_, ok := builtinTypes[name]
	return ok
}

// VariantInfo is the registry's resolved view of one variant.
type VariantInfo struct {
	Name           string
	Index          int
	Tag            runtime.Tag
	Representation ast.Representation
	Fields         []ast.TypeExpression
}

// Nullary reports whether the variant carries no payload.
func (v VariantInfo) Nullary() bool {
	return v.Representation.Nullary()
}

type typeEntry struct {
	decl     *ast.TypeDeclaration
	variants []VariantInfo
	byName   map[string]int
	byTag    map[runtime.Tag]int
	nullary  map[string]*runtime.VariantValue
}

// Registry holds the declared types of one program run.
type Registry struct {
	types  map[string]*typeEntry
	order  []string
	sealed bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{types: make(map[string]*typeEntry)}
}

// Seal ends the load phase. Later declarations fail with ErrRegistrySealed.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether the load phase is over.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Checkpoint marks how many types a registry held at some point of the load
// phase.
type Checkpoint struct {
	count int
}

// Checkpoint returns a mark for Rollback.
func (r *Registry) Checkpoint() Checkpoint {
	return Checkpoint{count: len(r.order)}
}

// Rollback drops every type declared after cp, so a load that failed part
// way can be retried. It does nothing once the registry is sealed.
func (r *Registry) Rollback(cp Checkpoint) {
	if r.sealed || cp.count >= len(r.order) {
		return
	}
	for _, name := range r.order[cp.count:] {
		delete(r.types, name)
	}
	r.order = r.order[:cp.count]
	tracer().Debugf("rolled back to %d type(s)", cp.count)
}

// DeclareType validates decl and appends it to the registry.
func (r *Registry) DeclareType(decl *ast.TypeDeclaration) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	if decl == nil || decl.Name() == "" {
		return malformed("", "", "type declaration requires a name")
	}
	name := decl.Name()
	if _, exists := r.types[name]; exists || IsBuiltinType(name) {
		return &TypeError{Kind: DuplicateType, TypeName: name, Detail: "type already declared"}
	}
	if err := r.validateShape(decl); err != nil {
		return err
	}
	entry, err := r.buildEntry(decl)
	if err != nil {
		return err
	}
	r.types[name] = entry
	r.order = append(r.order, name)
	tracer().Debugf("declared %s %s with %d variant(s)", decl.Kind, name, len(entry.variants))
	return nil
}

func (r *Registry) validateShape(decl *ast.TypeDeclaration) error {
	name := decl.Name()
	switch decl.Kind {
	case ast.TypeKindSum, ast.TypeKindEnum:
		if len(decl.Variants) == 0 {
			return malformed(name, "", "%s type needs at least one variant", decl.Kind)
		}
	case ast.TypeKindProduct:
		if len(decl.Variants) != 1 {
			return malformed(name, "", "product type has exactly one implicit variant, got %d", len(decl.Variants))
		}
	default:
		return malformed(name, "", "unknown type kind %q", decl.Kind)
	}

	seen := make(map[string]struct{}, len(decl.Variants))
	for idx, v := range decl.Variants {
		if v == nil || v.ID == nil || v.ID.Name == "" {
			return malformed(name, "", "variant %d has no name", idx)
		}
		vname := v.ID.Name
		if _, dup := seen[vname]; dup {
			return malformed(name, vname, "variant declared twice")
		}
		seen[vname] = struct{}{}

		repr := effectiveRepresentation(v)
		switch repr {
		case ast.RepresentationPrimitive, ast.RepresentationAtomic:
			if len(v.Fields) > 0 {
				return malformed(name, vname, "%s variant cannot carry fields", repr)
			}
		case ast.RepresentationBoxed:
			if decl.Kind == ast.TypeKindEnum {
				return malformed(name, vname, "enum variants cannot carry a payload")
			}
			if len(v.Fields) == 0 {
				return malformed(name, vname, "boxed variant needs at least one field")
			}
		default:
			return malformed(name, vname, "unknown representation %q", v.Representation)
		}
		if decl.Kind == ast.TypeKindProduct && v.AsSize != nil && *v.AsSize != 0 {
			return malformed(name, vname, "product variant cannot carry an asSize tag")
		}
		for _, field := range v.Fields {
			if err := r.resolveFieldType(name, vname, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveFieldType enforces the single-pass model: every referenced type must
// be builtin or already declared. The type being declared is not yet visible.
func (r *Registry) resolveFieldType(typeName, variant string, field ast.TypeExpression) error {
	switch t := field.(type) {
	case *ast.SimpleTypeExpression:
		if t.Name == nil || t.Name.Name == "" {
			return malformed(typeName, variant, "field type has no name")
		}
		if IsBuiltinType(t.Name.Name) {
			return nil
		}
		if _, ok := r.types[t.Name.Name]; ok {
			return nil
		}
		return &TypeError{
			Kind:     UnknownConstituentType,
			TypeName: typeName,
			Variant:  variant,
			Detail:   fmt.Sprintf("type %s is not declared", t.Name.Name),
		}
	case *ast.FunctionTypeExpression:
		for _, p := range t.ParamTypes {
			if err := r.resolveFieldType(typeName, variant, p); err != nil {
				return err
			}
		}
		return r.resolveFieldType(typeName, variant, t.ReturnType)
	case nil:
		return malformed(typeName, variant, "missing field type")
	default:
		return malformed(typeName, variant, "unsupported field type %s", field.NodeType())
	}
}

func (r *Registry) buildEntry(decl *ast.TypeDeclaration) (*typeEntry, error) {
	stored := decl.Clone()
	name := stored.Name()
	entry := &typeEntry{
		decl:     stored,
		variants: make([]VariantInfo, len(stored.Variants)),
		byName:   make(map[string]int, len(stored.Variants)),
		byTag:    make(map[runtime.Tag]int, len(stored.Variants)),
		nullary:  make(map[string]*runtime.VariantValue),
	}

	for idx, v := range stored.Variants {
		if v.AsSize == nil {
			continue
		}
		tag := runtime.Tag(*v.AsSize)
		if other, dup := entry.byTag[tag]; dup {
			return nil, &TypeError{
				Kind:     DuplicateVariantTag,
				TypeName: name,
				Variant:  v.ID.Name,
				Detail:   fmt.Sprintf("asSize %d already used by %s", tag, stored.Variants[other].ID.Name),
			}
		}
		entry.byTag[tag] = idx
	}

	var next runtime.Tag
	for idx, v := range stored.Variants {
		var tag runtime.Tag
		if v.AsSize != nil {
			tag = runtime.Tag(*v.AsSize)
		} else {
			for {
				if _, used := entry.byTag[next]; !used {
					break
				}
				next++
			}
			tag = next
			entry.byTag[tag] = idx
		}
		repr := effectiveRepresentation(v)
		v.Representation = repr
		info := VariantInfo{
			Name:           v.ID.Name,
			Index:          idx,
			Tag:            tag,
			Representation: repr,
			Fields:         v.Fields,
		}
		entry.variants[idx] = info
		entry.byName[info.Name] = idx
		if info.Nullary() {
			entry.nullary[info.Name] = &runtime.VariantValue{TypeName: name, Variant: info.Name, Tag: tag}
		}
	}
	return entry, nil
}

// effectiveRepresentation fills in an omitted representation: boxed when the
// variant lists fields, atomic otherwise.
func effectiveRepresentation(v *ast.VariantDeclaration) ast.Representation {
	if v.Representation != "" {
		return v.Representation
	}
	if len(v.Fields) > 0 {
		return ast.RepresentationBoxed
	}
	return ast.RepresentationAtomic
}

// Lookup returns a copy of the declaration registered under name.
func (r *Registry) Lookup(name string) (*ast.TypeDeclaration, bool) {
	entry, ok := r.types[name]
	if !ok {
		return nil, false
	}
	return entry.decl.Clone(), true
}

// Has reports whether name is a declared or builtin type.
func (r *Registry) Has(name string) bool {
	if IsBuiltinType(name) {
		return true
	}
	_, ok := r.types[name]
	return ok
}

// Kind returns the declared kind of a type.
func (r *Registry) Kind(name string) (ast.TypeKind, bool) {
	entry, ok := r.types[name]
	if !ok {
		return "", false
	}
	return entry.decl.Kind, true
}

// VariantTag resolves the tag of typeName.variantName.
func (r *Registry) VariantTag(typeName, variantName string) (runtime.Tag, bool) {
	info, ok := r.Variant(typeName, variantName)
	if !ok {
		return 0, false
	}
	return info.Tag, true
}

// Variant returns the resolved variant description.
func (r *Registry) Variant(typeName, variantName string) (*VariantInfo, bool) {
	entry, ok := r.types[typeName]
	if !ok {
		return nil, false
	}
	idx, ok := entry.byName[variantName]
	if !ok {
		return nil, false
	}
	info := entry.variants[idx]
	return &info, true
}

// VariantByTag finds the variant of typeName carrying tag.
func (r *Registry) VariantByTag(typeName string, tag runtime.Tag) (*VariantInfo, bool) {
	entry, ok := r.types[typeName]
	if !ok {
		return nil, false
	}
	idx, ok := entry.byTag[tag]
	if !ok {
		return nil, false
	}
	info := entry.variants[idx]
	return &info, true
}

// Variants lists the variants of typeName in declaration order.
func (r *Registry) Variants(typeName string) []VariantInfo {
	entry, ok := r.types[typeName]
	if !ok {
		return nil
	}
	return append([]VariantInfo(nil), entry.variants...)
}

// Tags returns the sorted tag set of typeName.
func (r *Registry) Tags(typeName string) []runtime.Tag {
	entry, ok := r.types[typeName]
	if !ok {
		return nil
	}
	tags := make([]runtime.Tag, 0, len(entry.byTag))
	for tag := range entry.byTag {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Types returns the declared type names in declaration order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.order...)
}

// FindVariant searches all types for a variant name. It reports ok only when
// exactly one declared type has a variant of that name.
func (r *Registry) FindVariant(variantName string) (string, bool) {
	found := ""
	for _, name := range r.order {
		if _, ok := r.types[name].byName[variantName]; ok {
			if found != "" {
				return "", false
			}
			found = name
		}
	}
	return found, found != ""
}
