package blink

import (
	"errors"
	"testing"
)

func TestSignalBasic(t *testing.T) {
	rt := NewRuntime()
	count := NewSignalIn(rt, 0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalWriteNotifiesSynchronously(t *testing.T) {
	rt := NewRuntime()
	signal := NewSignalIn(rt, 0)

	runs := 0
	var seen []int
	rt.RunEffect(func() {
		runs++
		seen = append(seen, signal.Get())
	})
	if runs != 1 {
		t.Fatalf("effect should run once on creation, ran %d times", runs)
	}

	signal.Set(5)
	if runs != 2 {
		t.Errorf("write should re-run the effect exactly once before returning, ran %d times", runs)
	}

	// Same value still notifies.
	signal.Set(5)
	if runs != 3 {
		t.Errorf("same-value write should still notify, ran %d times", runs)
	}

	want := []int{0, 5, 5}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("run %d saw %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	rt := NewRuntime()
	count := NewSignalIn(rt, 42)

	runs := 0
	rt.RunEffect(func() {
		runs++
		_ = count.Peek()
	})

	count.Set(100)
	if runs != 1 {
		t.Errorf("Peek should not subscribe, effect ran %d times", runs)
	}
	if count.Subscribers() != 0 {
		t.Errorf("expected no subscribers, got %d", count.Subscribers())
	}
}

func TestSignalNoTrackingOutsideEffect(t *testing.T) {
	rt := NewRuntime()
	count := NewSignalIn(rt, 0)

	_ = count.Get()
	count.Set(1)

	if count.Subscribers() != 0 {
		t.Errorf("reads outside an effect should not subscribe, got %d", count.Subscribers())
	}
}

func TestSignalSubscribersRunInInsertionOrder(t *testing.T) {
	rt := NewRuntime()
	s := NewSignalIn(rt, "")

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		rt.RunEffect(func() {
			_ = s.Get()
			order = append(order, name)
		})
	}
	order = nil

	s.Set("x")
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestSignalDeduplicatesSubscriber(t *testing.T) {
	rt := NewRuntime()
	s := NewSignalIn(rt, 1)

	runs := 0
	rt.RunEffect(func() {
		runs++
		_ = s.Get()
		_ = s.Get()
	})

	s.Set(2)
	if runs != 2 {
		t.Errorf("double read should subscribe once, effect ran %d times", runs)
	}
	if s.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber, got %d", s.Subscribers())
	}
}

func TestStaleSubscriptionsAreKept(t *testing.T) {
	rt := NewRuntime()
	useA := NewSignalIn(rt, true)
	a := NewSignalIn(rt, 0)
	b := NewSignalIn(rt, 0)

	runs := 0
	rt.RunEffect(func() {
		runs++
		if useA.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
	})

	useA.Set(false) // now reads b
	runs = 0

	a.Set(1)
	if runs != 1 {
		t.Errorf("stale subscription to a should still re-run the effect, ran %d times", runs)
	}
}

func TestEffectPanicPropagatesToWriter(t *testing.T) {
	rt := NewRuntime()
	s := NewSignalIn(rt, 0)

	boom := errors.New("boom")
	rt.RunEffect(func() {
		if s.Get() == 1 {
			panic(boom)
		}
	})
	laterRuns := 0
	rt.RunEffect(func() {
		_ = s.Get()
		laterRuns++
	})
	laterRuns = 0

	func() {
		defer func() {
			r := recover()
			if r != boom {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		s.Set(1)
	}()

	if laterRuns != 0 {
		t.Errorf("subscriber after the panicking one should not run, ran %d times", laterRuns)
	}
	if rt.Depth() != 0 {
		t.Errorf("effect stack should be restored after panic, depth %d", rt.Depth())
	}

	// Tracking still works after the panic.
	s.Set(2)
	if laterRuns != 1 {
		t.Errorf("later subscriber should run on the next write, ran %d times", laterRuns)
	}
}

func TestDerivedSignal(t *testing.T) {
	rt := NewRuntime()
	count := NewSignalIn(rt, 2)
	doubled := NewDerivedIn(rt, func() int { return count.Get() * 2 })

	if doubled.Peek() != 4 {
		t.Errorf("expected 4, got %d", doubled.Peek())
	}

	var seen []int
	rt.RunEffect(func() {
		seen = append(seen, doubled.Get())
	})

	count.Set(5)
	if doubled.Peek() != 10 {
		t.Errorf("expected 10, got %d", doubled.Peek())
	}
	if len(seen) != 2 || seen[1] != 10 {
		t.Errorf("derived subscribers should see 10, saw %v", seen)
	}
}

func TestDefaultRuntimeFunctions(t *testing.T) {
	s := NewSignal("a")
	d := NewDerived(func() string { return s.Get() + "!" })

	var got string
	e := RunEffect(func() { got = d.Get() })
	defer e.Dispose()

	s.Set("b")
	if got != "b!" {
		t.Errorf("got %q, want %q", got, "b!")
	}
}
