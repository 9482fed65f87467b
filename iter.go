package tregex

// NodeIter is a pull cursor over candidate nodes. Each call to
// Relation.Candidates returns a fresh cursor; an exhausted cursor keeps
// returning false.
type NodeIter interface {
	Next() (NodeID, bool)
}

type emptyIter struct{}

func (emptyIter) Next() (NodeID, bool) { return NoNode, false }

// sliceIter walks a precomputed list.
type sliceIter struct {
	nodes []NodeID
	i     int
}

func newSliceIter(nodes ...NodeID) *sliceIter { return &sliceIter{nodes: nodes} }

func (it *sliceIter) Next() (NodeID, bool) {
	if it.i >= len(it.nodes) {
		return NoNode, false
	}
	n := it.nodes[it.i]
	it.i++
	return n, true
}

// singleIter yields one node, or nothing when the node is NoNode.
func singleIter(n NodeID) NodeIter {
	if n == NoNode {
		return emptyIter{}
	}
	return newSliceIter(n)
}

// funcIter adapts a generator closure. The closure is not called again
// once it has reported exhaustion.
type funcIter struct {
	next func() (NodeID, bool)
	done bool
}

func (it *funcIter) Next() (NodeID, bool) {
	if it.done {
		return NoNode, false
	}
	n, ok := it.next()
	if !ok {
		it.done = true
		return NoNode, false
	}
	return n, true
}

// preorderIter walks the subtrees rooted at a list of start nodes, in the
// order given, each in document order. descend, when set, decides whether
// the children of a yielded node are visited.
type preorderIter struct {
	tree    *Tree
	stack   []NodeID
	descend func(NodeID) bool
}

func newPreorderIter(t *Tree, roots []NodeID, descend func(NodeID) bool) *preorderIter {
	it := &preorderIter{tree: t, descend: descend}
	for i := len(roots) - 1; i >= 0; i-- {
		it.stack = append(it.stack, roots[i])
	}
	return it
}

func (it *preorderIter) Next() (NodeID, bool) {
	if len(it.stack) == 0 {
		return NoNode, false
	}
	n := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	if it.descend == nil || it.descend(n) {
		kids := it.tree.Children(n)
		for i := len(kids) - 1; i >= 0; i-- {
			it.stack = append(it.stack, kids[i])
		}
	}
	return n, true
}

// collect drains it into a slice. Intended for tests and small candidate sets.
func collect(it NodeIter) []NodeID {
	var out []NodeID
	for {
		n, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, n)
	}
}
