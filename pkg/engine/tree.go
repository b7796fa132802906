// Copyright (C) 2025-2026 Kraklabs. All rights reserved.
// Use of this source code is governed by the AGPL-3.0
// license that can be found in the LICENSE file.

package engine

import (
	"sort"

	"github.com/xlab/treeprint"

	"github.com/kraklabs/meteor/pkg/meteor"
)

// treeNode is one node of the navigational index. A node is either a
// file (leaf with a value) or a directory (children), never both.
// File nodes remember the canonical flat key they mirror so the tree
// stays in one-to-one correspondence with the flat map.
type treeNode struct {
	isFile    bool
	value     string
	canonical string
	children  map[string]*treeNode
}

func newDir() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

// descend returns the node at the given segments, or nil.
func (n *treeNode) descend(segs []string) *treeNode {
	cur := n
	for _, seg := range segs {
		if cur == nil || cur.isFile {
			return nil
		}
		cur = cur.children[seg]
	}
	return cur
}

// checkInsert verifies that a file can be created at segs without
// violating the file/directory invariant. It performs no mutation.
func (n *treeNode) checkInsert(segs []string, canonical string) error {
	cur := n
	for i, seg := range segs {
		next, ok := cur.children[seg]
		if !ok {
			return nil // remaining path is fresh
		}
		last := i == len(segs)-1
		if last {
			if !next.isFile {
				return meteor.Errorf(meteor.KindTypeConflict, "",
					"path %q is a directory, not a value", joinSegs(segs))
			}
			if next.canonical != canonical {
				return meteor.Errorf(meteor.KindTypeConflict, "",
					"path %q is already bound through namespace key %q", joinSegs(segs), next.canonical)
			}
			return nil
		}
		if next.isFile {
			return meteor.Errorf(meteor.KindTypeConflict, "",
				"path %q is a value, not a directory", joinSegs(segs[:i+1]))
		}
		cur = next
	}
	return nil
}

// insert places a file at segs. Callers must have run checkInsert first.
func (n *treeNode) insert(segs []string, value, canonical string) {
	cur := n
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur.children[seg]
		if !ok {
			next = newDir()
			cur.children[seg] = next
		}
		cur = next
	}
	leaf := segs[len(segs)-1]
	cur.children[leaf] = &treeNode{isFile: true, value: value, canonical: canonical}
}

// remove deletes the file at segs and prunes empty directories upward.
// It reports whether a file was removed.
func (n *treeNode) remove(segs []string) bool {
	if len(segs) == 0 {
		return false
	}
	child, ok := n.children[segs[0]]
	if !ok {
		return false
	}
	if len(segs) == 1 {
		if !child.isFile {
			return false
		}
		delete(n.children, segs[0])
		return true
	}
	if child.isFile {
		return false
	}
	removed := child.remove(segs[1:])
	if removed && len(child.children) == 0 {
		delete(n.children, segs[0])
	}
	return removed
}

// removeSubtree deletes the directory (or file) at segs and returns the
// canonical keys of every file that was under it.
func (n *treeNode) removeSubtree(segs []string) []string {
	if len(segs) == 0 {
		keys := n.collectCanonical(nil)
		n.children = make(map[string]*treeNode)
		return keys
	}
	child, ok := n.children[segs[0]]
	if !ok || child.isFile {
		// Namespace paths resolve to directories; a same-named file is a
		// root-namespace key, not a namespace.
		return nil
	}
	if len(segs) == 1 {
		keys := child.collectCanonical(nil)
		delete(n.children, segs[0])
		return keys
	}
	keys := child.removeSubtree(segs[1:])
	if len(keys) > 0 && !child.isFile && len(child.children) == 0 {
		delete(n.children, segs[0])
	}
	return keys
}

func (n *treeNode) collectCanonical(acc []string) []string {
	if n.isFile {
		return append(acc, n.canonical)
	}
	for _, child := range n.children {
		acc = child.collectCanonical(acc)
	}
	return acc
}

// walk visits every file node under n in sorted order.
func (n *treeNode) walk(fn func(canonical, value string)) {
	if n.isFile {
		fn(n.canonical, n.value)
		return
	}
	for _, name := range sortedChildNames(n) {
		n.children[name].walk(fn)
	}
}

func sortedChildNames(n *treeNode) []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinSegs(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// renderTree renders the index below n as an ASCII tree. Directory names
// are shown as-is; file names are shown in bracket notation with their
// values.
func renderTree(root *treeNode, label string) string {
	tp := treeprint.NewWithRoot(label)
	addTreeNodes(tp, root)
	return tp.String()
}

func addTreeNodes(tp treeprint.Tree, n *treeNode) {
	for _, name := range sortedChildNames(n) {
		child := n.children[name]
		if child.isFile {
			tp.AddNode(meteor.FlatToNotation(name) + " = " + child.value)
			continue
		}
		addTreeNodes(tp.AddBranch(name), child)
	}
}
