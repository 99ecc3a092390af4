package driver

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lumen-ui/lumen/pkg/cell"
	"github.com/lumen-ui/lumen/pkg/vdom"
)

// Engine abstracts the render engine collaborator: build a live node from a
// tree description, diff two descriptions, patch the live node. The live
// node handle is opaque to the driver. Apply may mutate in place or return a
// new handle; the return value is authoritative either way. All three
// operations are synchronous, deterministic, and total.
type Engine interface {
	Build(tree *vdom.VNode) any
	Diff(prev, next *vdom.VNode) []vdom.Patch
	Apply(patches []vdom.Patch, node any) any
}

// Component describes render logic and query interpretation for one
// component tree. Both methods are pure: Render is called once per render
// pass, Interpret once per driver invocation.
type Component[S any] interface {
	Render(state S) (*vdom.VNode, []Hook)
	Interpret(query any) Op
}

// Initializer is an optional Component extension. The returned query is
// dispatched through the driver once, at mount.
type Initializer interface {
	Initialize() any
}

// Handle is the non-generic surface of a mounted driver, for callers that
// do not care about the state type.
type Handle interface {
	Send(query any) any
}

// driverState is the single mutable slot of a mount. liveNode and lastTree
// are only ever read and written as a pair, atomically with respect to
// concurrent queries, because both live in the same cell.
type driverState[S any] struct {
	node    any         // live node handle, replaced on every render
	tree    *vdom.VNode // last rendered description, diff input only
	state   S           // component state, touched only by the interpreter
	pending bool        // a render was requested while one was in flight
	paused  bool        // a render is in flight
}

// Driver drives one mounted component tree.
type Driver[S any] struct {
	comp     Component[S]
	engine   Engine
	state    *cell.Cell[driverState[S]]
	opts     options
	dispatch QueryFunc // Send pipeline, middleware applied outermost-first
	renders  atomic.Uint64
}

// RunUI mounts component with the given initial state onto engine and
// returns the driver. Mounting builds the initial live node, performs the
// first render (which launches the tree's initializer hooks), and dispatches
// the component's optional Initialize query as an independent task.
func RunUI[S any](comp Component[S], initial S, engine Engine, opts ...Option) *Driver[S] {
	d := &Driver[S]{
		comp:   comp,
		engine: engine,
		opts:   defaultOptions(),
	}
	for _, opt := range opts {
		opt(&d.opts)
	}

	d.dispatch = d.run
	for i := len(d.opts.middleware) - 1; i >= 0; i-- {
		d.dispatch = d.opts.middleware[i](d.dispatch)
	}

	tree, _ := comp.Render(initial) // hooks are sequenced by the first render
	node := engine.Build(tree)
	d.state = cell.New(driverState[S]{node: node, tree: tree, state: initial})

	d.render()

	if init, ok := any(comp).(Initializer); ok {
		go d.Send(init.Initialize())
	}

	d.opts.logger.Debug("component mounted")
	return d
}

// Send dispatches one query into the component's interpreter and blocks
// until the program yields its result. A program that halts never yields:
// Send parks the calling goroutine permanently, and no error is synthesized.
// Send is safe to call concurrently; overlapping calls are linearized
// through the state cell, with no cross-caller ordering promised.
func (d *Driver[S]) Send(query any) any {
	return d.dispatch(query)
}

// Renders reports how many render passes the scheduler has completed.
func (d *Driver[S]) Renders() uint64 {
	return d.renders.Load()
}

// LiveNode returns the current live node handle. An in-memory mirror is
// deep-copied while holding the state cell, so callers may traverse the
// result freely while renders keep landing; other handle types are returned
// as is and are only meaningful once concurrent queries have settled.
func (d *Driver[S]) LiveNode() any {
	ds := d.state.Take()
	node := ds.node
	if mirror, ok := node.(*vdom.DOMNode); ok {
		node = mirror.Clone()
	}
	d.state.Put(ds)
	return node
}

// run is the innermost dispatch: it interprets the query's program against a
// fresh render-pending flag and drains the flag afterwards, so a query that
// mutated state without settling a render decision still renders exactly
// once before its caller resumes.
func (d *Driver[S]) run(query any) any {
	flag := cell.New(PendingNone)
	res, halted := d.eval(d.comp.Interpret(query), flag)
	if halted {
		d.opts.logger.Debug("query halted", "query", fmt.Sprintf("%T", query))
		return park()
	}
	if flag.Take() != PendingNone {
		d.render()
	}
	return res
}

// park suspends the calling goroutine forever. An empty select is a
// terminating statement, so callers may return its (never produced) value.
func park() any {
	select {}
}

// eval executes one effect program to completion. The loop is iterative;
// only embedded (Child) programs recurse, bounded by their nesting depth.
func (d *Driver[S]) eval(op Op, flag *cell.Cell[Pending]) (result any, halted bool) {
	for {
		switch t := op.(type) {
		case nil:
			return nil, false

		case Get:
			ds := d.state.Take()
			s := ds.state
			d.state.Put(ds)
			op = t.Then(s)

		case Modify:
			_ = flag.Take() // any earlier render decision is superseded
			ds := d.state.Take()
			ds.state = t.Fn(ds.state).(S)
			d.state.Put(ds)
			flag.Put(PendingMutated)
			op = t.Then

		case Subscribe:
			go d.consume(t.Source)
			op = t.Then

		case Render:
			if t.Decision == nil {
				_ = flag.Take()
				d.render()
				flag.Put(PendingNone) // satisfied inline
			} else {
				_ = flag.Take()
				flag.Put(*t.Decision)
			}
			op = t.Then

		case Peek:
			op = t.Then(flag.Read())

		case Child:
			if p := flag.Take(); p != PendingNone {
				d.render() // embedded programs observe up-to-date DOM
				flag.Put(PendingNone)
			} else {
				flag.Put(p)
			}
			res, sub := d.eval(t.Program, flag)
			if sub {
				return nil, true
			}
			op = t.Then(res)

		case Done:
			return t.Result, false

		case Halt:
			return nil, true

		default:
			d.opts.logger.Warn("unknown effect instruction", "op", fmt.Sprintf("%T", t))
			return nil, false
		}
	}
}

// consume feeds each value from source back through the entry point, one at
// a time. The consumer terminates silently when the source closes.
func (d *Driver[S]) consume(source <-chan any) {
	for v := range source {
		d.Send(v)
	}
}

// render recomputes the tree from the current state, patches the live node,
// sequences lifecycle hooks, and drains any render request that accumulated
// while it ran. If a render is already in flight the request is recorded and
// the in-flight call picks it up before unpausing, so at most one render
// computation exists per mount and none is ever dropped. The drain loop is
// iterative by contract: arbitrarily long chains of deferred renders must
// not grow the stack.
func (d *Driver[S]) render() {
	ds := d.state.Take()
	if ds.paused {
		ds.pending = true
		d.state.Put(ds)
		return
	}
	ds.paused = true
	for {
		ds.pending = false

		start := time.Now()
		tree, hooks := d.comp.Render(ds.state)
		patches := d.engine.Diff(ds.tree, tree)
		ds.node = d.engine.Apply(patches, ds.node)
		ds.tree = tree

		n := d.renders.Add(1)
		d.opts.logger.Debug("render applied", "render", n, "patches", len(patches))
		for _, ob := range d.opts.observers {
			ob(RenderStats{Patches: len(patches), Elapsed: time.Since(start)})
		}

		d.sequence(hooks)

		// Release the cell so queries blocked on it can land their
		// mutations and record a pending render, then re-check.
		d.state.Put(ds)
		ds = d.state.Take()
		if !ds.pending {
			break
		}
	}
	ds.paused = false
	d.state.Put(ds)
}

// sequence launches the render's lifecycle hooks: finalizers first, then
// initializers, each as an independent task. render never awaits them; its
// synchronous contract covers DOM patching and pending-drain only.
func (d *Driver[S]) sequence(hooks []Hook) {
	for _, h := range hooks {
		if h.Kind == HookFinalize {
			go func(h Hook) {
				runSandbox(h.Program, cell.New(h.State))
			}(h)
		}
	}
	for _, h := range hooks {
		if h.Kind == HookInitialize {
			go d.Send(h.Query)
		}
	}
}
