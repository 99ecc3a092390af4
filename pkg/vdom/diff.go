package vdom

// Diff compares two trees and returns the patches that transform prev into
// next. Patches are valid when applied in order against a mirror built from
// prev.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diff(prev, next, nil, &patches)
	return patches
}

func diff(prev, next *VNode, path []int, patches *[]Patch) {
	if prev == nil && next == nil {
		return
	}
	if next == nil {
		*patches = append(*patches, Patch{Op: PatchRemoveNode, Path: clonePath(path)})
		return
	}
	if prev == nil || prev.Kind != next.Kind || prev.Tag != next.Tag || prev.Key != next.Key {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, Path: clonePath(path), Node: next.Clone()})
		return
	}

	if prev.Kind == KindText {
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: PatchSetText, Path: clonePath(path), Value: next.Text})
		}
		return
	}

	// Attributes
	for k, v := range next.Props {
		if old, ok := prev.Props[k]; !ok || old != v {
			*patches = append(*patches, Patch{Op: PatchSetAttr, Path: clonePath(path), Key: k, Value: v})
		}
	}
	for k := range prev.Props {
		if _, ok := next.Props[k]; !ok {
			*patches = append(*patches, Patch{Op: PatchRemoveAttr, Path: clonePath(path), Key: k})
		}
	}

	// Children: pairwise over the common prefix, then trailing inserts or
	// removals. Removals are emitted in descending index order so earlier
	// patches never shift the indexes of later ones.
	n := len(prev.Children)
	if len(next.Children) < n {
		n = len(next.Children)
	}
	for i := 0; i < n; i++ {
		diff(prev.Children[i], next.Children[i], childPath(path, i), patches)
	}
	for i := n; i < len(next.Children); i++ {
		*patches = append(*patches, Patch{
			Op:    PatchInsertNode,
			Path:  clonePath(path),
			Index: i,
			Node:  next.Children[i].Clone(),
		})
	}
	for i := len(prev.Children) - 1; i >= n; i-- {
		*patches = append(*patches, Patch{Op: PatchRemoveNode, Path: childPath(path, i)})
	}
}

func clonePath(path []int) []int {
	if path == nil {
		return nil
	}
	return append([]int(nil), path...)
}

func childPath(path []int, i int) []int {
	p := make([]int, 0, len(path)+1)
	p = append(p, path...)
	return append(p, i)
}
