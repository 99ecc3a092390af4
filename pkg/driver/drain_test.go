package driver

import (
	"strconv"
	"sync"
	"testing"

	"github.com/lumen-ui/lumen/pkg/vdom"
)

// A chain of 10,000 Modify+Render steps must execute without recursion
// depth growing with the chain length: both the interpreter loop and the
// render drain loop are iterative. A recursive implementation overflows the
// stack long before 10k frames of render machinery.
func TestLongRenderChainConstantStack(t *testing.T) {
	const n = 10000

	comp := program(func(q any) Op {
		op := Op(Done{})
		for i := 0; i < n; i++ {
			op = Modify{Fn: inc, Then: Render{Then: op}}
		}
		return op
	})
	d := RunUI[int](comp, 0, vdom.MemoryEngine{})

	d.Send("chain")

	if got := d.Renders(); got != n+1 {
		t.Errorf("renders = %d, want %d", got, n+1)
	}
	if got := domText(d); got != strconv.Itoa(n) {
		t.Errorf("DOM text = %q, want %q", got, strconv.Itoa(n))
	}
}

// Renders requested while a render is in flight coalesce into the pending
// flag and are drained by the in-flight call; the DOM converges on the
// state as of the drain loop's last iteration.
func TestDeferredRendersDrain(t *testing.T) {
	eng := &gateEngine{}
	comp := program(func(q any) Op {
		return Modify{Fn: inc, Then: Render{Then: Done{}}}
	})
	d := RunUI[int](comp, 0, eng)

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			d.Send("bump")
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return domText(d) == strconv.Itoa(n) })

	// Coalescing must have kicked in: far fewer renders than requests is
	// fine, more than one per request is not.
	if got := d.Renders(); got > n+1 {
		t.Errorf("renders = %d, want at most %d", got, n+1)
	}
	if ov := eng.overlaps.Load(); ov != 0 {
		t.Errorf("observed %d overlapping renders, want 0", ov)
	}
}
