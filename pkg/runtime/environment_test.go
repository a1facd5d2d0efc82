package runtime

import "testing"

func TestEnvironmentDefineAndLookup(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Define("greeting", StringValue{Val: "hello"}); err != nil {
		t.Fatalf("define failed: %v", err)
	}

	got, ok := env.Lookup("greeting")
	if !ok {
		t.Fatalf("expected to retrieve binding")
	}
	if gv, ok := got.(StringValue); !ok || gv.Val != "hello" {
		t.Fatalf("unexpected value returned: %#v", got)
	}
}

func TestEnvironmentExtendShadowsWithoutTouchingParent(t *testing.T) {
	env := NewEnvironment(nil)
	_ = env.Define("x", IntegerValue{Val: 1})

	child := env.Extend([]string{"x", "y"}, []Value{IntegerValue{Val: 2}, IntegerValue{Val: 3}})
	got, _ := child.Lookup("x")
	if iv, ok := got.(IntegerValue); !ok || iv.Val != 2 {
		t.Fatalf("expected shadowed x=2, got %#v", got)
	}
	parentX, _ := env.Lookup("x")
	if iv, ok := parentX.(IntegerValue); !ok || iv.Val != 1 {
		t.Fatalf("parent binding changed: %#v", parentX)
	}
	if _, ok := env.Lookup("y"); ok {
		t.Fatalf("child binding leaked into parent")
	}
	if child.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", child.Depth())
	}
}

func TestEnvironmentExtendedFramesAreSealed(t *testing.T) {
	env := NewEnvironment(nil)
	child := env.Bind("a", UnitValue{})
	if err := child.Define("b", UnitValue{}); err == nil {
		t.Fatalf("expected define on an extended frame to fail")
	}
	env.Seal()
	if err := env.Define("c", UnitValue{}); err == nil {
		t.Fatalf("expected define after seal to fail")
	}
}

func TestEnvironmentLookupUnknown(t *testing.T) {
	env := NewEnvironment(nil).Bind("a", UnitValue{})
	if _, ok := env.Lookup("missing"); ok {
		t.Fatalf("expected lookup of unbound name to fail")
	}
}
