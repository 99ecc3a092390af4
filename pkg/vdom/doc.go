// Package vdom implements the virtual-DOM tree model used by the driver:
// node descriptions, a conservative diff producing path-addressed patches,
// and a mutable in-memory mirror with Build and Apply.
//
// The diff trades keyed reconciliation for predictability: a node whose
// kind, tag, or key changed is replaced wholesale, trailing children are
// inserted or removed, and everything else is patched in place. The
// guarantee that matters to the driver is convergence:
//
//	Apply(Diff(a, b), Build(a)) == Build(b)
//
// for all trees a and b.
package vdom
