package driver

import (
	"strconv"
	"testing"
	"time"

	"github.com/lumen-ui/lumen/pkg/cell"
	"github.com/lumen-ui/lumen/pkg/vdom"
)

func TestSandboxGetModify(t *testing.T) {
	st := cell.New[any](10)
	var seen int
	prog := Op(Modify{
		Fn: func(v any) any { return v.(int) * 2 },
		Then: Get{Then: func(v any) Op {
			seen = v.(int)
			return Done{Result: v}
		}},
	})

	res, halted := runSandbox(prog, st)
	if halted {
		t.Fatal("sandbox halted")
	}
	if seen != 20 {
		t.Errorf("Get saw %d, want 20", seen)
	}
	if res != 20 {
		t.Errorf("result = %v, want 20", res)
	}
	if got := st.Read(); got != 20 {
		t.Errorf("private state = %v, want 20", got)
	}
}

func TestSandboxSwallowsRenderAndSubscribe(t *testing.T) {
	source := make(chan any)
	ran := false
	prog := Op(Render{Then: Subscribe{Source: source, Then: Peek{Then: func(p Pending) Op {
		if p != PendingNone {
			t.Errorf("sandbox Peek = %v, want None", p)
		}
		ran = true
		return Done{}
	}}}})

	_, halted := runSandbox(prog, cell.New[any](nil))
	if halted || !ran {
		t.Fatalf("sandbox did not run to completion (halted=%v ran=%v)", halted, ran)
	}

	// No consumer was registered: a send on the source finds no receiver.
	select {
	case source <- "tick":
		t.Error("sandbox Subscribe registered a live consumer")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSandboxChildRunsInline(t *testing.T) {
	st := cell.New[any](1)
	prog := Op(Child{
		Program: Modify{Fn: func(v any) any { return v.(int) + 1 }, Then: Get{Then: func(v any) Op {
			return Done{Result: v}
		}}},
		Then: func(result any) Op { return Done{Result: result} },
	})

	res, halted := runSandbox(prog, st)
	if halted {
		t.Fatal("sandbox halted")
	}
	if res != 2 {
		t.Errorf("embedded result = %v, want 2", res)
	}
}

func TestSandboxHaltIsSilent(t *testing.T) {
	res, halted := runSandbox(Halt{}, cell.New[any](nil))
	if !halted || res != nil {
		t.Errorf("runSandbox(Halt) = (%v, %v), want (nil, true)", res, halted)
	}

	res, halted = runSandbox(Child{Program: Halt{}, Then: func(any) Op {
		t.Error("Then ran after embedded halt")
		return Done{}
	}}, cell.New[any](nil))
	if !halted || res != nil {
		t.Errorf("embedded halt = (%v, %v), want (nil, true)", res, halted)
	}
}

// hooked renders a counter whose tree carries an initializer at state 0 and
// a finalizer on every later render.
type hooked struct {
	finalized chan int
}

func (h hooked) Render(s int) (*vdom.VNode, []Hook) {
	tree := vdom.Element("div", nil, vdom.Text(strconv.Itoa(s)))
	if s == 0 {
		return tree, []Hook{Initialize(Increment{})}
	}
	return tree, []Hook{Finalize(s, Modify{
		Fn: func(v any) any {
			h.finalized <- v.(int)
			return v
		},
	})}
}

func (hooked) Interpret(q any) Op {
	if _, ok := q.(Increment); ok {
		return Modify{
			Fn:   func(s any) any { return s.(int) + 1 },
			Then: Render{Then: Done{}},
		}
	}
	return nil
}

// The mount render's initializer re-enters the live driver and triggers a
// real render.
func TestInitializerReentersDriver(t *testing.T) {
	h := hooked{finalized: make(chan int, 16)}
	d := RunUI[int](h, 0, vdom.MemoryEngine{})

	waitFor(t, func() bool {
		return d.LiveNode().(*vdom.DOMNode).TextContent() == "1"
	})
	if got := d.Renders(); got < 2 {
		t.Errorf("renders = %d, want at least 2", got)
	}
}

// Finalizers launch with the state the render gave them and run against a
// private cell, away from the live loop.
func TestFinalizerReceivesLastKnownState(t *testing.T) {
	h := hooked{finalized: make(chan int, 16)}
	d := RunUI[int](h, 0, vdom.MemoryEngine{})

	waitFor(t, func() bool {
		return d.LiveNode().(*vdom.DOMNode).TextContent() == "1"
	})

	select {
	case got := <-h.finalized:
		if got != 1 {
			t.Errorf("finalizer state = %d, want 1", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("finalizer never ran")
	}

	rendersBefore := d.Renders()
	d.Send(Increment{})
	if got := d.Renders(); got != rendersBefore+1 {
		t.Errorf("renders = %d, want %d (finalizers must not render)", got, rendersBefore+1)
	}
}
