// Package vtest provides a test harness for components: mount onto an
// in-memory engine, dispatch queries, and assert on the resulting DOM.
package vtest

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumen-ui/lumen/pkg/driver"
	"github.com/lumen-ui/lumen/pkg/vdom"
)

// Harness wraps a mounted component for testing.
type Harness[S any] struct {
	t      *testing.T
	driver *driver.Driver[S]
	engine *countingEngine
}

// countingEngine wraps the in-memory engine and counts patches applied.
type countingEngine struct {
	vdom.MemoryEngine
	patches atomic.Uint64
}

func (e *countingEngine) Apply(patches []vdom.Patch, node any) any {
	e.patches.Add(uint64(len(patches)))
	return e.MemoryEngine.Apply(patches, node)
}

// Mount mounts comp with the given initial state onto an in-memory engine.
//
// Example:
//
//	h := vtest.Mount[int](t, counter{}, 0)
//	h.Send(Increment{})
//	h.ExpectContains("1")
func Mount[S any](t *testing.T, comp driver.Component[S], initial S, opts ...driver.Option) *Harness[S] {
	t.Helper()
	engine := &countingEngine{}
	return &Harness[S]{
		t:      t,
		driver: driver.RunUI(comp, initial, engine, opts...),
		engine: engine,
	}
}

// Send dispatches a query and blocks until its result. Do not Send a query
// whose program halts; use Dispatch for those.
func (h *Harness[S]) Send(query any) any {
	return h.driver.Send(query)
}

// Dispatch sends a query on its own goroutine and does not wait for the
// result. Safe for halting queries.
func (h *Harness[S]) Dispatch(query any) {
	go h.driver.Send(query)
}

// Renders reports completed render passes, including the mount render.
func (h *Harness[S]) Renders() uint64 {
	return h.driver.Renders()
}

// Patches reports the total patches applied since mount.
func (h *Harness[S]) Patches() uint64 {
	return h.engine.patches.Load()
}

// DOM returns a snapshot of the current live DOM mirror, safe to traverse
// while background queries keep rendering.
func (h *Harness[S]) DOM() *vdom.DOMNode {
	root, _ := h.driver.LiveNode().(*vdom.DOMNode)
	return root
}

// HTML returns the current DOM rendered as HTML.
func (h *Harness[S]) HTML() string {
	root := h.DOM()
	if root == nil {
		return ""
	}
	return root.String()
}

// WaitFor polls cond until it holds, failing the test after two seconds.
// Use it after Dispatch or when background queries are in flight.
func (h *Harness[S]) WaitFor(cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatal("condition not reached within 2s")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// WaitRenders waits until at least n render passes have completed.
func (h *Harness[S]) WaitRenders(n uint64) {
	h.t.Helper()
	h.WaitFor(func() bool { return h.driver.Renders() >= n })
}

// ExpectContains asserts that the rendered output contains the substring.
//
// Example:
//
//	h.ExpectContains("Welcome Admin")
func (h *Harness[S]) ExpectContains(expected string) {
	h.t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered output does not contain the
// substring.
func (h *Harness[S]) ExpectNotContains(unexpected string) {
	h.t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectText asserts on the full text content of the DOM.
func (h *Harness[S]) ExpectText(want string) {
	h.t.Helper()
	root := h.DOM()
	if root == nil {
		h.t.Error("no DOM mounted")
		return
	}
	if got := root.TextContent(); got != want {
		h.t.Errorf("text content = %q, want %q", got, want)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
