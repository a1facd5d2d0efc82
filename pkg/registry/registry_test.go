package registry

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"

	"sumcore/interpreter-go/pkg/ast"
	"sumcore/interpreter-go/pkg/runtime"
)

func boolDecl() *ast.TypeDeclaration {
	return ast.EnumDef("Bool", ast.Primitive("False"), ast.Primitive("True"))
}

func TestDeclareAssignsTagsInDeclarationOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(boolDecl()))

	falseTag, ok := reg.VariantTag("Bool", "False")
	require.True(t, ok)
	trueTag, ok := reg.VariantTag("Bool", "True")
	require.True(t, ok)
	require.Equal(t, runtime.Tag(0), falseTag)
	require.Equal(t, runtime.Tag(1), trueTag)
	require.Equal(t, []string{"Bool"}, reg.Types())
}

func TestExplicitTagsAreHonouredAndImplicitOnesFillGaps(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	decl := ast.EnumDef("Color",
		ast.Atomic("Red"),
		ast.Sized(ast.Atomic("Green"), 0),
		ast.Atomic("Blue"),
	)
	require.NoError(t, reg.DeclareType(decl))

	tags := map[string]runtime.Tag{}
	for _, v := range reg.Variants("Color") {
		tags[v.Name] = v.Tag
	}
	require.Equal(t, map[string]runtime.Tag{"Red": 1, "Green": 0, "Blue": 2}, tags)
	require.Equal(t, []runtime.Tag{0, 1, 2}, reg.Tags("Color"))

	info, ok := reg.VariantByTag("Color", 2)
	require.True(t, ok)
	require.Equal(t, "Blue", info.Name)
}

func TestDuplicateExplicitTagIsRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	decl := ast.EnumDef("Clash", ast.Sized(ast.Atomic("A"), 3), ast.Sized(ast.Atomic("B"), 3))
	err := reg.DeclareType(decl)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateVariantTag))
	require.Empty(t, reg.Types())
}

func TestDuplicateTypeIsRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(boolDecl()))
	err := reg.DeclareType(boolDecl())
	require.True(t, errors.Is(err, ErrDuplicateType))

	err = reg.DeclareType(ast.EnumDef("Int", ast.Atomic("Zero")))
	require.True(t, errors.Is(err, ErrDuplicateType), "builtin names are reserved")
}

func TestUnknownConstituentType(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	decl := ast.SumDef("Maybe", ast.Atomic("None"), ast.Boxed("Some", ast.Ty("Widget")))
	err := reg.DeclareType(decl)
	require.True(t, errors.Is(err, ErrUnknownConstituentType))

	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	require.Equal(t, "Maybe", typeErr.TypeName)
	require.Equal(t, "Some", typeErr.Variant)
}

func TestSelfReferenceIsUnknownInSinglePass(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	decl := ast.SumDef("List", ast.Atomic("Nil"), ast.Boxed("Cons", ast.Ty("Int"), ast.Ty("List")))
	require.True(t, errors.Is(reg.DeclareType(decl), ErrUnknownConstituentType))
}

func TestFieldsMayReferenceEarlierTypes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(boolDecl()))
	require.NoError(t, reg.DeclareType(ast.SumDef("Flag",
		ast.Boxed("Named", ast.Ty("String"), ast.Ty("Bool")),
		ast.Boxed("Lazy", ast.FnType([]ast.TypeExpression{ast.Ty("Unit")}, ast.Ty("Bool"))),
	)))
	require.True(t, reg.Has("Flag"))
	require.True(t, reg.Has("IO"))
	require.False(t, reg.Has("Nope"))
}

func TestMalformedDeclarations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	fieldedAtomic := ast.NewVariantDeclaration(ast.ID("A"), ast.RepresentationAtomic, []ast.TypeExpression{ast.Ty("Int")}, nil)
	twoVariants := []*ast.VariantDeclaration{ast.Atomic("A"), ast.Atomic("B")}
	cases := map[string]*ast.TypeDeclaration{
		"empty sum":            ast.SumDef("Void"),
		"boxed enum":           ast.EnumDef("Bad", ast.Boxed("Wrap", ast.Ty("Int"))),
		"boxed no fields":      ast.SumDef("Bad", ast.Boxed("Wrap")),
		"atomic with field":    ast.SumDef("Bad", fieldedAtomic),
		"duplicate variant":    ast.SumDef("Bad", ast.Atomic("A"), ast.Atomic("A")),
		"two product variants": ast.NewTypeDeclaration(ast.ID("Pair"), ast.TypeKindProduct, twoVariants),
		"unknown kind":         ast.NewTypeDeclaration(ast.ID("Odd"), ast.TypeKind("record"), []*ast.VariantDeclaration{ast.Atomic("A")}),
	}
	for name, decl := range cases {
		t.Run(name, func(t *testing.T) {
			err := New().DeclareType(decl)
			require.True(t, errors.Is(err, ErrMalformedType), "got %v", err)
		})
	}
}

func TestSealedRegistryRejectsDeclarations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	reg.Seal()
	require.True(t, reg.Sealed())
	require.ErrorIs(t, reg.DeclareType(boolDecl()), ErrRegistrySealed)
}

func TestLookupReturnsIndependentCopy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(boolDecl()))

	decl, ok := reg.Lookup("Bool")
	require.True(t, ok)
	decl.Variants[0].ID.Name = "Mutated"

	again, _ := reg.Lookup("Bool")
	require.Equal(t, "False", again.Variants[0].ID.Name)
}

func TestNullaryValuesAreInterned(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(boolDecl()))

	a, err := reg.MakePrimitive("Bool", "True")
	require.NoError(t, err)
	b, err := reg.Construct("Bool", "True")
	require.NoError(t, err)
	require.Same(t, a, b)

	_, err = reg.MakeAtomic("Bool", "True")
	require.ErrorIs(t, err, ErrRepresentationMismatch)
}

func TestMakeBoxedChecksArity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(ast.SumDef("Maybe", ast.Atomic("None"), ast.Boxed("Some", ast.Ty("Any")))))

	v, err := reg.MakeBoxed("Maybe", "Some", runtime.IntegerValue{Val: 5})
	require.NoError(t, err)
	require.Equal(t, runtime.Tag(1), v.Tag)
	require.Equal(t, runtime.IntegerValue{Val: 5}, v.Payload())

	_, err = reg.MakeBoxed("Maybe", "Some")
	var arity *ArityError
	require.ErrorAs(t, err, &arity)
	require.Equal(t, 1, arity.Expected)

	_, err = reg.MakeBoxed("Maybe", "Nope")
	require.ErrorIs(t, err, ErrUnknownVariant)
}

func TestFindVariantRequiresUniqueOwner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(ast.EnumDef("A", ast.Atomic("X"), ast.Atomic("Y"))))
	require.NoError(t, reg.DeclareType(ast.EnumDef("B", ast.Atomic("X"), ast.Atomic("Z"))))

	owner, ok := reg.FindVariant("Z")
	require.True(t, ok)
	require.Equal(t, "B", owner)
	_, ok = reg.FindVariant("X")
	require.False(t, ok)
}

func TestRollbackWithdrawsLaterDeclarations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "sumcore.registry")
	defer teardown()

	reg := New()
	require.NoError(t, reg.DeclareType(boolDecl()))
	cp := reg.Checkpoint()
	require.NoError(t, reg.DeclareType(ast.EnumDef("Color", ast.Atomic("Red"), ast.Atomic("Green"))))

	reg.Rollback(cp)
	require.Equal(t, []string{"Bool"}, reg.Types())
	require.False(t, reg.Has("Color"))
	require.NoError(t, reg.DeclareType(ast.EnumDef("Color", ast.Atomic("Red"))))

	reg.Seal()
	reg.Rollback(cp)
	require.Equal(t, []string{"Bool", "Color"}, reg.Types(), "a sealed registry keeps its types")
}
