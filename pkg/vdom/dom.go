package vdom

import (
	"sort"
	"strings"
)

// DOMNode is a node of the mutable in-memory mirror of a mounted tree. It
// stands in for the real DOM in tests and backs the server's diff state.
type DOMNode struct {
	Kind     VKind
	Tag      string
	Attrs    map[string]string
	Children []*DOMNode
	Text     string
	Key      string
}

// Build constructs a fresh mirror from a tree description.
func Build(tree *VNode) *DOMNode {
	if tree == nil {
		return nil
	}
	d := &DOMNode{Kind: tree.Kind, Tag: tree.Tag, Text: tree.Text, Key: tree.Key}
	if tree.Props != nil {
		d.Attrs = make(map[string]string, len(tree.Props))
		for k, v := range tree.Props {
			d.Attrs[k] = v
		}
	}
	if tree.Children != nil {
		d.Children = make([]*DOMNode, len(tree.Children))
		for i, c := range tree.Children {
			d.Children[i] = Build(c)
		}
	}
	return d
}

// Apply applies patches to the mirror in order and returns the authoritative
// root, which may differ from the input when the root itself was replaced.
// Patches addressing nodes that no longer exist are ignored; the engine
// contract is total.
func Apply(patches []Patch, root *DOMNode) *DOMNode {
	for _, p := range patches {
		root = applyOne(p, root)
	}
	return root
}

func applyOne(p Patch, root *DOMNode) *DOMNode {
	switch p.Op {
	case PatchSetText:
		if n := lookup(root, p.Path); n != nil {
			n.Text = p.Value
		}
	case PatchSetAttr:
		if n := lookup(root, p.Path); n != nil {
			if n.Attrs == nil {
				n.Attrs = make(map[string]string)
			}
			n.Attrs[p.Key] = p.Value
		}
	case PatchRemoveAttr:
		if n := lookup(root, p.Path); n != nil {
			delete(n.Attrs, p.Key)
		}
	case PatchReplaceNode:
		if len(p.Path) == 0 {
			return Build(p.Node)
		}
		parent := lookup(root, p.Path[:len(p.Path)-1])
		i := p.Path[len(p.Path)-1]
		if parent != nil && i >= 0 && i < len(parent.Children) {
			parent.Children[i] = Build(p.Node)
		}
	case PatchInsertNode:
		parent := lookup(root, p.Path)
		if parent == nil {
			break
		}
		child := Build(p.Node)
		if p.Index < 0 || p.Index >= len(parent.Children) {
			parent.Children = append(parent.Children, child)
			break
		}
		parent.Children = append(parent.Children, nil)
		copy(parent.Children[p.Index+1:], parent.Children[p.Index:])
		parent.Children[p.Index] = child
	case PatchRemoveNode:
		if len(p.Path) == 0 {
			return nil
		}
		parent := lookup(root, p.Path[:len(p.Path)-1])
		i := p.Path[len(p.Path)-1]
		if parent != nil && i >= 0 && i < len(parent.Children) {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
		}
	}
	return root
}

func lookup(root *DOMNode, path []int) *DOMNode {
	n := root
	for _, i := range path {
		if n == nil || i < 0 || i >= len(n.Children) {
			return nil
		}
		n = n.Children[i]
	}
	return n
}

// Clone returns a deep copy of the mirror subtree. Mutating either tree
// afterwards leaves the other untouched.
func (d *DOMNode) Clone() *DOMNode {
	if d == nil {
		return nil
	}
	c := &DOMNode{Kind: d.Kind, Tag: d.Tag, Text: d.Text, Key: d.Key}
	if d.Attrs != nil {
		c.Attrs = make(map[string]string, len(d.Attrs))
		for k, v := range d.Attrs {
			c.Attrs[k] = v
		}
	}
	if d.Children != nil {
		c.Children = make([]*DOMNode, len(d.Children))
		for i, ch := range d.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Equal reports whether two mirrors are structurally identical.
func (d *DOMNode) Equal(o *DOMNode) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.Tag != o.Tag || d.Key != o.Key || d.Text != o.Text {
		return false
	}
	if len(d.Attrs) != len(o.Attrs) {
		return false
	}
	for k, v := range d.Attrs {
		if ov, ok := o.Attrs[k]; !ok || ov != v {
			return false
		}
	}
	if len(d.Children) != len(o.Children) {
		return false
	}
	for i := range d.Children {
		if !d.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// TextContent concatenates the text nodes under d, document order.
func (d *DOMNode) TextContent() string {
	var b strings.Builder
	d.textContent(&b)
	return b.String()
}

func (d *DOMNode) textContent(b *strings.Builder) {
	if d == nil {
		return
	}
	if d.Kind == KindText {
		b.WriteString(d.Text)
		return
	}
	for _, c := range d.Children {
		c.textContent(b)
	}
}

// String renders the mirror as HTML-ish markup with deterministic attribute
// order. Intended for test failure messages, not serialization.
func (d *DOMNode) String() string {
	var b strings.Builder
	d.render(&b)
	return b.String()
}

func (d *DOMNode) render(b *strings.Builder) {
	if d == nil {
		return
	}
	if d.Kind == KindText {
		b.WriteString(d.Text)
		return
	}
	b.WriteByte('<')
	b.WriteString(d.Tag)
	keys := make([]string, 0, len(d.Attrs))
	for k := range d.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(d.Attrs[k])
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for _, c := range d.Children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(d.Tag)
	b.WriteByte('>')
}
