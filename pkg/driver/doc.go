// Package driver is the runtime core: it mounts a component onto a render
// engine and returns a handle through which callers send queries and await
// their effects, including any resulting re-render.
//
// The moving parts:
//
//   - One state cell per mount holds the live node, the last rendered tree,
//     the component state, and the render gate flags. The cell is the only
//     synchronization in the system; concurrent queries are linearized
//     through it and nothing else.
//   - The effect interpreter executes a component's program, a closed tagged
//     union of instructions (Get, Modify, Subscribe, Render, Peek, Child,
//     Done, Halt), one at a time in an iterative loop.
//   - The render scheduler guarantees at most one render is in flight. A
//     render requested while one is in flight is recorded and drained by the
//     in-flight call before it unpauses, so the DOM always converges to the
//     latest state. The drain loop is iterative: an arbitrarily long chain of
//     deferred renders costs no stack.
//   - The lifecycle sequencer launches finalizer hooks (against a throwaway
//     sandbox interpreter) before initializer hooks (through the live entry
//     point), all fire-and-forget.
//
// A query whose program halts never yields a value: Send parks its caller
// permanently. That is the contract, not a failure; callers that cannot
// afford it dispatch in their own goroutine.
package driver
