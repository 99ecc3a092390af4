package driver

import "github.com/lumen-ui/lumen/pkg/cell"

// HookKind tags a lifecycle hook.
type HookKind uint8

const (
	// HookInitialize runs once a node first appears, after the render that
	// produced it. The hook's query goes through the live driver and may
	// mutate state, trigger renders, and re-enter the whole system.
	HookInitialize HookKind = iota
	// HookFinalize runs once a node is being replaced or removed. The
	// hook's program runs against a private, disposable state cell and
	// cannot render or subscribe.
	HookFinalize
)

// String returns the string representation of the HookKind.
func (k HookKind) String() string {
	switch k {
	case HookInitialize:
		return "Initialize"
	case HookFinalize:
		return "Finalize"
	default:
		return "Unknown"
	}
}

// Hook is a lifecycle callback attached to the tree a render returns.
type Hook struct {
	Kind    HookKind
	Query   any // initializer: query sent through the live driver
	State   any // finalizer: last-known private state
	Program Op  // finalizer: cleanup program, sandbox-interpreted
}

// Initialize creates a post-render initializer hook.
func Initialize(query any) Hook {
	return Hook{Kind: HookInitialize, Query: query}
}

// Finalize creates a finalizer hook carrying the node's last-known state and
// a cleanup program.
func Finalize(state any, program Op) Hook {
	return Hook{Kind: HookFinalize, State: state, Program: program}
}

// runSandbox interprets a finalizer program against a private state cell.
// Get and Modify work normally, Subscribe and Render are no-ops, Peek always
// reports PendingNone, and Halt terminates silently. Embedded programs run
// inline under the same rules: finalizers cannot trigger visible re-renders
// or new subscriptions, even indirectly. That restriction is part of the
// contract.
func runSandbox(op Op, state *cell.Cell[any]) (any, bool) {
	for {
		switch t := op.(type) {
		case nil:
			return nil, false
		case Get:
			op = t.Then(state.Read())
		case Modify:
			v := state.Take()
			state.Put(t.Fn(v))
			op = t.Then
		case Subscribe:
			op = t.Then
		case Render:
			op = t.Then
		case Peek:
			op = t.Then(PendingNone)
		case Child:
			res, halted := runSandbox(t.Program, state)
			if halted {
				return nil, true
			}
			op = t.Then(res)
		case Done:
			return t.Result, false
		case Halt:
			return nil, true
		default:
			return nil, false
		}
	}
}
