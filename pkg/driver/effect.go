package driver

// Pending is the per-query render-pending flag. It is created fresh for
// every top-level query and discarded when the query completes; it records
// whether the program mutated state and, if so, whether a render request was
// already satisfied inline.
type Pending uint8

const (
	// PendingNone: no state change yet, or the change already rendered.
	PendingNone Pending = iota
	// PendingMutated: state changed; no render decision has been made.
	PendingMutated
	// PendingDeferred: rendering explicitly deferred so several mutations
	// batch into one render at the end of the query.
	PendingDeferred
)

// String returns the string representation of the Pending flag.
func (p Pending) String() string {
	switch p {
	case PendingNone:
		return "None"
	case PendingMutated:
		return "Mutated"
	case PendingDeferred:
		return "Deferred"
	default:
		return "Unknown"
	}
}

// Hold returns the render decision that defers rendering for batching.
func Hold() *Pending {
	p := PendingDeferred
	return &p
}

// Op is one instruction of a component effect program. The set is closed;
// the interpreter refuses anything else. A program is a chain of Ops linked
// through Then fields, ending in Done (yield a result), Halt (never yield),
// or nil (yield nothing).
type Op interface {
	isOp()
}

// Get reads the component state without mutating it.
type Get struct {
	Then func(state any) Op
}

// Modify applies Fn to the component state and marks the query
// render-pending. Any render decision made earlier in the query is
// superseded. Fn must be pure and must preserve the state's type.
type Modify struct {
	Fn   func(state any) any
	Then Op
}

// Subscribe registers a long-lived consumer: each value the source yields is
// re-sent through the driver entry point as a query. The consumer runs as an
// independent task, is never awaited, and dies silently with the source.
// There is no cancel handle.
type Subscribe struct {
	Source <-chan any
	Then   Op
}

// Render decides how the query's state changes reach the DOM. A nil Decision
// renders the current state immediately; a non-nil Decision is stored into
// the render-pending flag without rendering, which is how a component
// batches several mutations before rendering once.
type Render struct {
	Decision *Pending
	Then     Op
}

// Peek reads the render-pending flag without altering it.
type Peek struct {
	Then func(p Pending) Op
}

// Child runs an embedded program inline, synchronously, and hands its result
// to Then. If a render decision is pending it is satisfied first, so the
// embedded program always observes up-to-date DOM state. A halt inside the
// embedded program halts the whole query.
type Child struct {
	Program Op
	Then    func(result any) Op
}

// Done terminates the program and yields the query's result.
type Done struct {
	Result any
}

// Halt aborts the remainder of the program. The driver call never yields a
// value; this is deliberate early termination, not an error.
type Halt struct{}

func (Get) isOp()       {}
func (Modify) isOp()    {}
func (Subscribe) isOp() {}
func (Render) isOp()    {}
func (Peek) isOp()      {}
func (Child) isOp()     {}
func (Done) isOp()      {}
func (Halt) isOp()      {}
