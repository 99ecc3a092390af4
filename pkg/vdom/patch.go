package vdom

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchReplaceNode PatchOp = 0x04 // Replace node (subtree) entirely
	PatchInsertNode  PatchOp = 0x05 // Insert new node under parent
	PatchRemoveNode  PatchOp = 0x06 // Remove node
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	default:
		return "Unknown"
	}
}

// Patch is a single DOM operation. Nodes are addressed by Path: the child
// indexes walked from the root. For InsertNode, Path addresses the parent
// and Index the insert position; every other op addresses the target node.
type Patch struct {
	Op    PatchOp `msgpack:"op"`
	Path  []int   `msgpack:"path"`
	Key   string  `msgpack:"key,omitempty"`   // Attribute key
	Value string  `msgpack:"value,omitempty"` // Text or attribute value
	Node  *VNode  `msgpack:"node,omitempty"`  // For ReplaceNode/InsertNode
	Index int     `msgpack:"index,omitempty"` // Insert position
}
