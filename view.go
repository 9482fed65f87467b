package tregex

// View is a tree seen from a fixed match root. Relations consult it for
// parents (which stop at the root) and for leaf spans, which are computed
// once per view on first use. A View also records the first configuration
// error hit while matching so the matcher can report it.
type View struct {
	tree *Tree
	root NodeID

	// left and right hold leaf-span edges indexed by NodeID; -1 marks nodes
	// outside the root's subtree. Nil until spans are first needed.
	left  []int32
	right []int32

	err error
}

// NewView scopes t to the subtree rooted at root.
func NewView(t *Tree, root NodeID) *View {
	return &View{tree: t, root: root}
}

// Tree returns the underlying tree.
func (v *View) Tree() *Tree { return v.tree }

// Root returns the match root.
func (v *View) Root() NodeID { return v.root }

// Parent returns the parent of n within the view, or NoNode at the root.
func (v *View) Parent(n NodeID) NodeID {
	if n == v.root || n == NoNode {
		return NoNode
	}
	return v.tree.Parent(n)
}

// Contains reports whether n lies in the subtree under the view root.
func (v *View) Contains(n NodeID) bool {
	if !v.tree.Valid(n) {
		return false
	}
	v.ensureSpans()
	return v.left[n] >= 0
}

// LeftEdge returns the number of leaves of the root's yield that lie
// strictly to the left of n.
func (v *View) LeftEdge(n NodeID) int {
	v.ensureSpans()
	return int(v.left[n])
}

// RightEdge returns LeftEdge(n) plus the number of leaves under n.
func (v *View) RightEdge(n NodeID) int {
	v.ensureSpans()
	return int(v.right[n])
}

// Err returns the first configuration error recorded while matching.
func (v *View) Err() error { return v.err }

func (v *View) fail(err error) {
	if v.err == nil {
		v.err = err
	}
}

func (v *View) clearErr() { v.err = nil }

// ensureSpans fills left/right edges with two iterative passes: subtree
// leaf counts bottom-up over the reversed preorder, then left edges
// top-down in preorder.
func (v *View) ensureSpans() {
	if v.left != nil {
		return
	}
	t := v.tree
	n := t.Len()
	v.left = make([]int32, n)
	v.right = make([]int32, n)
	for i := range v.left {
		v.left[i] = -1
		v.right[i] = -1
	}

	var order []NodeID
	for d := range t.Preorder(v.root) {
		order = append(order, d)
	}
	width := make([]int32, n)
	for i := len(order) - 1; i >= 0; i-- {
		d := order[i]
		if t.IsLeaf(d) {
			width[d] = 1
			continue
		}
		var w int32
		for _, c := range t.Children(d) {
			w += width[c]
		}
		width[d] = w
	}
	v.left[v.root] = 0
	for _, d := range order {
		edge := v.left[d]
		v.right[d] = edge + width[d]
		for _, c := range t.Children(d) {
			v.left[c] = edge
			edge += width[c]
		}
	}
}
