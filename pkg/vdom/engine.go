package vdom

// MemoryEngine is a render engine over the in-memory mirror. It satisfies
// the driver's Engine interface; the live node handle is a *DOMNode.
type MemoryEngine struct{}

// Build implements the engine build step.
func (MemoryEngine) Build(tree *VNode) any {
	return Build(tree)
}

// Diff implements the engine diff step.
func (MemoryEngine) Diff(prev, next *VNode) []Patch {
	return Diff(prev, next)
}

// Apply implements the engine apply step. The returned handle is
// authoritative; the input handle must not be used afterwards.
func (MemoryEngine) Apply(patches []Patch, node any) any {
	root, _ := node.(*DOMNode)
	return Apply(patches, root)
}
