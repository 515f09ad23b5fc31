package environment

import "testing"

func TestDefineAndGetAt(t *testing.T) {
	globals := New(nil)
	globals.Define("x", 1.0)
	if got := globals.GetAt(0, "x"); got != 1.0 {
		t.Fatalf("got %v", got)
	}
}

func TestGetAtWalksParentChain(t *testing.T) {
	globals := New(nil)
	globals.Define("x", "global")
	child := New(globals)
	child.Define("x", "outer")
	grandchild := New(child)

	if got := grandchild.GetAt(1, "x"); got != "outer" {
		t.Fatalf("depth 1: got %v", got)
	}
	if got := grandchild.GetAt(2, "x"); got != "global" {
		t.Fatalf("depth 2: got %v", got)
	}
}

// TestGetAtPanicsOnMissingBinding documents GetAt's contract: the
// resolver guarantees a binding exists at the recorded depth, so a
// miss (like asking grandchild, which has no binding of its own, for
// depth 0) is a resolver/interpreter disagreement bug, not a
// recoverable runtime condition.
func TestGetAtPanicsOnMissingBinding(t *testing.T) {
	grandchild := New(New(New(nil)))

	defer func() {
		if recover() == nil {
			t.Fatal("expected GetAt to panic on a missing binding")
		}
	}()
	grandchild.GetAt(0, "x")
}

func TestAssignAtMutatesTheOwningEnvironment(t *testing.T) {
	globals := New(nil)
	globals.Define("count", 0.0)
	child := New(globals)

	child.AssignAt(1, "count", 5.0)
	if got := globals.GetAt(0, "count"); got != 5.0 {
		t.Fatalf("assignAt should mutate the ancestor in place, got %v", got)
	}
}

func TestSharedClosureVisibility(t *testing.T) {
	// Two "call frames" derived from the same closure environment must
	// observe each other's mutations.
	closure := New(nil)
	closure.Define("i", 0.0)

	frameA := New(closure)
	frameB := New(closure)

	frameA.AssignAt(1, "i", 1.0)
	if got := frameB.GetAt(1, "i"); got != 1.0 {
		t.Fatalf("mutation through one frame should be visible through the other, got %v", got)
	}
}

func TestGetGlobalMissingNameIsAnError(t *testing.T) {
	globals := New(nil)
	child := New(globals)
	if _, err := child.GetGlobal("nope"); err == nil {
		t.Fatal("expected an error for an undefined global")
	}
}

func TestAssignGlobalMissingNameIsAnErrorAndDoesNotDefine(t *testing.T) {
	globals := New(nil)
	if err := globals.AssignGlobal("nope", 1.0); err == nil {
		t.Fatal("expected an error assigning an undeclared global")
	}
	if _, err := globals.GetGlobal("nope"); err == nil {
		t.Fatal("a failed AssignGlobal must not implicitly define the name")
	}
}

func TestGlobalFindsTheRootRegardlessOfDepth(t *testing.T) {
	globals := New(nil)
	a := New(globals)
	b := New(a)
	c := New(b)
	if c.Global() != globals {
		t.Fatal("Global() should always resolve to the root environment")
	}
}
