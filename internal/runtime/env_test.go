package runtime

import (
	"errors"
	"testing"
)

func TestEnvironmentDefineShadows(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", IntVal(1))
	local := NewEnvironment(global)
	local.Define("x", IntVal(2))

	if v, _ := local.Get("x"); v != IntVal(2) {
		t.Errorf("expected local x = 2, got %v", v)
	}
	if v, _ := global.Get("x"); v != IntVal(1) {
		t.Errorf("expected global x = 1, got %v", v)
	}
}

func TestEnvironmentGetWalksParents(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("name", StringVal("lava"))
	inner := NewEnvironment(NewEnvironment(global))

	v, ok := inner.Get("name")
	if !ok || v != StringVal("lava") {
		t.Errorf("expected to find name through two parents, got %v, %v", v, ok)
	}
	if _, ok := inner.Get("missing"); ok {
		t.Error("expected missing name to be absent")
	}
}

func TestEnvironmentSetUpdatesDefiningScope(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("count", IntVal(0))
	local := NewEnvironment(global)

	if err := local.Set("count", IntVal(5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := global.Get("count"); v != IntVal(5) {
		t.Errorf("expected global count = 5, got %v", v)
	}
	if _, exists := local.values["count"]; exists {
		t.Error("Set must not create a binding in the local scope")
	}
}

func TestEnvironmentSetUndefined(t *testing.T) {
	err := NewEnvironment(nil).Set("ghost", Nvm)
	if !errors.Is(err, ErrUndefined) {
		t.Errorf("expected ErrUndefined, got %v", err)
	}
}

func TestEnvironmentParentAndGlobal(t *testing.T) {
	global := NewEnvironment(nil)
	mid := NewEnvironment(global)
	leaf := NewEnvironment(mid)

	if leaf.Parent() != mid {
		t.Error("expected leaf parent to be mid")
	}
	if leaf.Global() != global || global.Global() != global {
		t.Error("expected Global to return the root scope")
	}
	if global.Parent() != nil {
		t.Error("expected global to have no parent")
	}
}
