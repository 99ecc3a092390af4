package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Props holds element attributes.
type Props map[string]string

// VNode is a virtual DOM node description. Descriptions are immutable once
// handed to the driver; the engine never writes through them.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes
	Children []*VNode // Child nodes
	Key      string   // Reconciliation key
	Text     string   // For KindText
}

// Element creates an element node.
func Element(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{Kind: KindElement, Tag: tag, Props: props, Children: children}
}

// Text creates a text node.
func Text(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// Clone returns a deep copy of the node.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	c := &VNode{Kind: v.Kind, Tag: v.Tag, Key: v.Key, Text: v.Text}
	if v.Props != nil {
		c.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			c.Props[k] = val
		}
	}
	if v.Children != nil {
		c.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports whether two trees are structurally identical.
func (v *VNode) Equal(o *VNode) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind || v.Tag != o.Tag || v.Key != o.Key || v.Text != o.Text {
		return false
	}
	if len(v.Props) != len(o.Props) {
		return false
	}
	for k, val := range v.Props {
		if ov, ok := o.Props[k]; !ok || ov != val {
			return false
		}
	}
	if len(v.Children) != len(o.Children) {
		return false
	}
	for i := range v.Children {
		if !v.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
