package tregex

import (
	"fmt"
	"iter"
	"strings"
)

// NodeID addresses a node inside a Tree's arena. IDs are dense and stable
// for the lifetime of the tree.
type NodeID int32

// NoNode marks an absent node, such as the parent of a root.
const NoNode NodeID = -1

type treeNode struct {
	label    string
	parent   NodeID
	children []NodeID
}

// Tree is an ordered, labeled tree stored as an arena. Node 0 is the root.
// A Tree is built once with AddChild and then only read; readers may share
// it across goroutines.
type Tree struct {
	nodes []treeNode
}

// NewTree creates a tree holding a single root node.
func NewTree(rootLabel string) *Tree {
	return &Tree{nodes: []treeNode{{label: rootLabel, parent: NoNode}}}
}

// AddChild appends a new last child under parent and returns its ID.
func (t *Tree) AddChild(parent NodeID, label string) NodeID {
	if !t.Valid(parent) {
		panic(fmt.Sprintf("tregex: AddChild: invalid parent %d", parent))
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, treeNode{label: label, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Root returns the root node.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether n addresses a node of t.
func (t *Tree) Valid(n NodeID) bool { return n >= 0 && int(n) < len(t.nodes) }

// Label returns the label of n.
func (t *Tree) Label(n NodeID) string { return t.nodes[n].label }

// Parent returns the parent of n, or NoNode for the root.
func (t *Tree) Parent(n NodeID) NodeID { return t.nodes[n].parent }

// Children returns the children of n in order. The slice belongs to the
// tree and must not be modified.
func (t *Tree) Children(n NodeID) []NodeID { return t.nodes[n].children }

// NumChildren returns the number of children of n.
func (t *Tree) NumChildren(n NodeID) int { return len(t.nodes[n].children) }

// Child returns the i-th (0-based) child of n, or NoNode if out of range.
func (t *Tree) Child(n NodeID, i int) NodeID {
	kids := t.nodes[n].children
	if i < 0 || i >= len(kids) {
		return NoNode
	}
	return kids[i]
}

// FirstChild returns the first child of n, or NoNode for a leaf.
func (t *Tree) FirstChild(n NodeID) NodeID { return t.Child(n, 0) }

// LastChild returns the last child of n, or NoNode for a leaf.
func (t *Tree) LastChild(n NodeID) NodeID { return t.Child(n, t.NumChildren(n)-1) }

// IsLeaf reports whether n has no children.
func (t *Tree) IsLeaf(n NodeID) bool { return len(t.nodes[n].children) == 0 }

// IsPreterminal reports whether n has exactly one child and that child is a leaf.
func (t *Tree) IsPreterminal(n NodeID) bool {
	kids := t.nodes[n].children
	return len(kids) == 1 && t.IsLeaf(kids[0])
}

// ChildIndex returns the position of n among its siblings, or -1 for the root.
func (t *Tree) ChildIndex(n NodeID) int {
	p := t.nodes[n].parent
	if p == NoNode {
		return -1
	}
	for i, c := range t.nodes[p].children {
		if c == n {
			return i
		}
	}
	return -1
}

// Preorder yields n and all its descendants in document order.
func (t *Tree) Preorder(n NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		stack := []NodeID{n}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(cur) {
				return
			}
			kids := t.nodes[cur].children
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}
}

// Size returns the number of nodes in the subtree rooted at n.
func (t *Tree) Size(n NodeID) int {
	count := 0
	for range t.Preorder(n) {
		count++
	}
	return count
}

// Leaves returns the leaves under n from left to right.
func (t *Tree) Leaves(n NodeID) []NodeID {
	var leaves []NodeID
	for d := range t.Preorder(n) {
		if t.IsLeaf(d) {
			leaves = append(leaves, d)
		}
	}
	return leaves
}

// Yield returns the leaf labels under n from left to right.
func (t *Tree) Yield(n NodeID) []string {
	leaves := t.Leaves(n)
	words := make([]string, len(leaves))
	for i, l := range leaves {
		words[i] = t.nodes[l].label
	}
	return words
}

// Format renders the subtree at n in Penn Treebank bracketing. Leaves are
// printed bare; every other node is printed as "(label children...)".
func (t *Tree) Format(n NodeID) string {
	var b strings.Builder
	type frame struct {
		node NodeID
		next int
	}
	if t.IsLeaf(n) {
		return t.nodes[n].label
	}
	stack := []frame{{node: n}}
	b.WriteByte('(')
	b.WriteString(t.nodes[n].label)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := t.nodes[top.node].children
		if top.next == len(kids) {
			b.WriteByte(')')
			stack = stack[:len(stack)-1]
			continue
		}
		c := kids[top.next]
		top.next++
		b.WriteByte(' ')
		if t.IsLeaf(c) {
			b.WriteString(t.nodes[c].label)
			continue
		}
		b.WriteByte('(')
		b.WriteString(t.nodes[c].label)
		stack = append(stack, frame{node: c})
	}
	return b.String()
}

// String renders the whole tree in Penn Treebank bracketing.
func (t *Tree) String() string { return t.Format(t.Root()) }
