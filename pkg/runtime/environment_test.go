package runtime

import (
	"sync"
	"testing"
)

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", IntValue{Val: 1})
	val, ok := env.Get("x")
	if !ok {
		t.Fatalf("expected x to resolve")
	}
	if iv, ok := val.(IntValue); !ok || iv.Val != 1 {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestGetWalksParentChain(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Define("greeting", StringValue{Val: "woof"})
	child := parent.Extend()
	val, ok := child.Get("greeting")
	if !ok {
		t.Fatalf("expected lookup to reach the parent scope")
	}
	if sv := val.(StringValue); sv.Val != "woof" {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestAssignUpdatesDefiningScope(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Define("count", IntValue{Val: 1})
	child := parent.Extend()
	if err := child.Assign("count", IntValue{Val: 2}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	val, _ := parent.Get("count")
	if iv := val.(IntValue); iv.Val != 2 {
		t.Fatalf("parent binding not updated: %#v", val)
	}
}

func TestAssignUndefinedFails(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Assign("ghost", IntValue{Val: 1}); err == nil {
		t.Fatalf("expected assign to an undefined variable to fail")
	}
}

func TestDefineShadowsParent(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Define("x", IntValue{Val: 1})
	child := parent.Extend()
	child.Define("x", IntValue{Val: 99})

	val, _ := child.Get("x")
	if iv := val.(IntValue); iv.Val != 99 {
		t.Fatalf("child should see its own binding, got %#v", val)
	}
	val, _ = parent.Get("x")
	if iv := val.(IntValue); iv.Val != 1 {
		t.Fatalf("parent binding should be untouched, got %#v", val)
	}
}

func TestSnapshotCopiesOwnBindingsOnly(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Define("outer", IntValue{Val: 1})
	child := parent.Extend()
	child.Define("inner", IntValue{Val: 2})

	snap := child.Snapshot()
	if _, ok := snap["inner"]; !ok {
		t.Fatalf("snapshot missing own binding")
	}
	if _, ok := snap["outer"]; ok {
		t.Fatalf("snapshot should not include parent bindings")
	}
	snap["inner"] = IntValue{Val: 5}
	val, _ := child.Get("inner")
	if iv := val.(IntValue); iv.Val != 2 {
		t.Fatalf("mutating a snapshot must not affect the environment")
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("n", IntValue{Val: 0})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		value := int32(i)
		go func() {
			defer wg.Done()
			_ = env.Assign("n", IntValue{Val: value})
		}()
		go func() {
			defer wg.Done()
			if _, ok := env.Get("n"); !ok {
				t.Errorf("binding disappeared during concurrent access")
			}
		}()
	}
	wg.Wait()
}

func TestStructuralEquality(t *testing.T) {
	if !Equal(IntValue{Val: 3}, IntValue{Val: 3}) {
		t.Fatalf("equal ints should compare equal")
	}
	if Equal(IntValue{Val: 3}, StringValue{Val: "3"}) {
		t.Fatalf("values of different kinds are never equal")
	}
	a := &ArrayValue{Elements: []Value{IntValue{Val: 1}, StringValue{Val: "x"}}}
	b := &ArrayValue{Elements: []Value{IntValue{Val: 1}, StringValue{Val: "x"}}}
	if !Equal(a, b) {
		t.Fatalf("arrays compare element-wise")
	}
	fn := &FunctionValue{Name: "f"}
	if Equal(fn, fn) {
		t.Fatalf("function values are never equal, themselves included")
	}
}

func TestFutureIsLazyAndMemoized(t *testing.T) {
	runs := 0
	fut := NewFutureValue(func() (Value, error) {
		runs++
		return IntValue{Val: 7}, nil
	})
	if runs != 0 {
		t.Fatalf("future ran before await")
	}
	for i := 0; i < 3; i++ {
		val, err := fut.Await()
		if err != nil {
			t.Fatalf("await failed: %v", err)
		}
		if iv := val.(IntValue); iv.Val != 7 {
			t.Fatalf("unexpected value %#v", val)
		}
	}
	if runs != 1 {
		t.Fatalf("runner should execute exactly once, ran %d times", runs)
	}
}

func TestFutureAwaitFromManyGoroutines(t *testing.T) {
	runs := 0
	fut := NewFutureValue(func() (Value, error) {
		runs++
		return StringValue{Val: "done"}, nil
	})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := fut.Await(); err != nil {
				t.Errorf("await failed: %v", err)
			}
		}()
	}
	wg.Wait()
	if runs != 1 {
		t.Fatalf("concurrent awaits must share one run, got %d", runs)
	}
}
