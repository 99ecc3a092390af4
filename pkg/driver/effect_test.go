package driver

import (
	"sync"
	"testing"
	"time"

	"github.com/lumen-ui/lumen/pkg/vdom"
)

func inc(s any) any { return s.(int) + 1 }

// Peek reads the flag without altering it, through the whole lifecycle of a
// query: clean, mutated, deferred.
func TestPeekTracksFlag(t *testing.T) {
	var seen []Pending
	comp := program(func(q any) Op {
		return Peek{Then: func(p Pending) Op {
			seen = append(seen, p)
			return Modify{Fn: inc, Then: Peek{Then: func(p Pending) Op {
				seen = append(seen, p)
				return Render{Decision: Hold(), Then: Peek{Then: func(p Pending) Op {
					seen = append(seen, p)
					return Done{}
				}}}
			}}}
		}}
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})
	d.Send("go")

	want := []Pending{PendingNone, PendingMutated, PendingDeferred}
	if len(seen) != len(want) {
		t.Fatalf("Peek values = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Peek values = %v, want %v", seen, want)
		}
	}
}

// An explicit Hold decision batches several mutations into a single render
// at the end of the query.
func TestHoldBatchesMutations(t *testing.T) {
	comp := program(func(q any) Op {
		return Render{Decision: Hold(),
			Then: Modify{Fn: inc,
				Then: Modify{Fn: inc,
					Then: Modify{Fn: inc,
						Then: Render{Decision: Hold(), Then: Done{}}}}}}
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})

	d.Send("batch")
	if got := d.Renders(); got != 2 {
		t.Errorf("renders = %d, want 2 (mount + one batched)", got)
	}
	if got := domText(d); got != "3" {
		t.Errorf("DOM text = %q, want %q", got, "3")
	}
}

// Storing an explicit PendingNone decision suppresses the end-of-query
// render entirely.
func TestExplicitNoneSuppressesRender(t *testing.T) {
	none := PendingNone
	comp := program(func(q any) Op {
		return Modify{Fn: inc, Then: Render{Decision: &none, Then: Done{}}}
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})

	d.Send("silent")
	if got := d.Renders(); got != 1 {
		t.Errorf("renders = %d, want 1 (render suppressed)", got)
	}
	if got := domText(d); got != "0" {
		t.Errorf("DOM text = %q, want %q (stale by choice)", got, "0")
	}
}

// A render with no explicit decision supersedes an earlier Hold and renders
// inline; a later Modify re-arms the flag.
func TestModifySupersedesDecision(t *testing.T) {
	comp := program(func(q any) Op {
		return Modify{Fn: inc,
			Then: Render{ // inline render: flag satisfied
				Then: Modify{Fn: inc, // re-arms the flag
					Then: Done{}}}}
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})

	d.Send("go")
	// mount + inline render + end-of-query drain for the second mutation
	if got := d.Renders(); got != 3 {
		t.Errorf("renders = %d, want 3", got)
	}
	if got := domText(d); got != "2" {
		t.Errorf("DOM text = %q, want %q", got, "2")
	}
}

// Child renders a pending decision before the embedded program runs, so the
// embedded program observes up-to-date DOM state.
func TestChildRendersPendingFirst(t *testing.T) {
	var rendersAtChild uint64
	var d *Driver[int]
	comp := program(func(q any) Op {
		return Modify{Fn: inc, Then: Child{
			Program: Get{Then: func(s any) Op {
				rendersAtChild = d.Renders()
				return Done{Result: s}
			}},
			Then: func(result any) Op { return Done{Result: result} },
		}}
	})
	d = RunUI[int](comp, 0, vdom.MemoryEngine{})

	got := d.Send("go")
	if got != 1 {
		t.Errorf("child result = %v, want 1", got)
	}
	if rendersAtChild != 2 {
		t.Errorf("renders when child ran = %d, want 2 (pending satisfied first)", rendersAtChild)
	}
	if final := d.Renders(); final != 2 {
		t.Errorf("final renders = %d, want 2 (no end-of-query re-render)", final)
	}
}

// A halt inside an embedded program halts the whole query.
func TestChildHaltPropagates(t *testing.T) {
	comp := program(func(q any) Op {
		return Child{
			Program: Halt{},
			Then:    func(any) Op { t.Error("Then ran after embedded halt"); return Done{} },
		}
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})

	resolved := make(chan struct{})
	go func() {
		d.Send("go")
		close(resolved)
	}()

	select {
	case <-resolved:
		t.Fatal("query with halted child resolved")
	case <-time.After(50 * time.Millisecond):
	}
}

// Subscribe re-invokes the entry point for every value the source yields and
// terminates silently when the source closes.
func TestSubscribeFeedsQueries(t *testing.T) {
	source := make(chan any)
	comp := program(func(q any) Op {
		switch q {
		case "subscribe":
			return Subscribe{Source: source, Then: Done{}}
		case "tick":
			return Modify{Fn: inc, Then: Render{Then: Done{}}}
		}
		return nil
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})

	d.Send("subscribe")
	for i := 0; i < 3; i++ {
		source <- "tick"
	}
	close(source)

	waitFor(t, func() bool { return domText(d) == "3" })
}

// Two concurrent queries interleave only at cell boundaries: their Modify
// effects are individually atomic.
func TestConcurrentModifyAtomicity(t *testing.T) {
	comp := program(func(q any) Op {
		op := Op(Render{Then: Done{}})
		for i := 0; i < 100; i++ {
			op = Modify{Fn: inc, Then: op}
		}
		return op
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})

	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			d.Send("go")
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return domText(d) == "400" })
}
