package tregex

// Linear precedence relations. They compare leaf spans computed relative to
// the view root, so every node covers at least one leaf position.

func init() {
	registerSimple(
		&simpleRelation{
			symbol: "..",
			satisfies: func(v *View, a, b NodeID) bool {
				return v.RightEdge(a) <= v.LeftEdge(b)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return sisterSubtrees(v, anchor, true)
			},
		},
		&simpleRelation{
			symbol: ".",
			satisfies: func(v *View, a, b NodeID) bool {
				return v.RightEdge(a) == v.LeftEdge(b)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return adjacent(v, anchor, true)
			},
		},
		&simpleRelation{
			symbol: ",,",
			satisfies: func(v *View, a, b NodeID) bool {
				return v.RightEdge(b) <= v.LeftEdge(a)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return sisterSubtrees(v, anchor, false)
			},
		},
		&simpleRelation{
			symbol: ",",
			satisfies: func(v *View, a, b NodeID) bool {
				return v.RightEdge(b) == v.LeftEdge(a)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return adjacent(v, anchor, false)
			},
		},
	)
}

// sisterSubtrees yields every node entirely to the right (or left) of n.
// Climbing from n, each level contributes the subtrees of the sisters on
// that side, nearest sister first, each subtree in preorder.
func sisterSubtrees(v *View, n NodeID, right bool) NodeIter {
	t := v.Tree()
	cur := n
	var level NodeIter = emptyIter{}
	return &funcIter{next: func() (NodeID, bool) {
		for {
			if d, ok := level.Next(); ok {
				return d, true
			}
			p := v.Parent(cur)
			if p == NoNode {
				return NoNode, false
			}
			kids := t.Children(p)
			i := t.ChildIndex(cur)
			var roots []NodeID
			if right {
				roots = kids[i+1:]
			} else {
				for j := i - 1; j >= 0; j-- {
					roots = append(roots, kids[j])
				}
			}
			level = newPreorderIter(t, roots, nil)
			cur = p
		}
	}}
}

// adjacent yields the nodes whose span starts exactly where n's ends (or
// ends exactly where n's starts): climb while n is the outermost child on
// that side, step to the neighbouring sister, then follow its innermost
// children down to a leaf.
func adjacent(v *View, n NodeID, right bool) NodeIter {
	t := v.Tree()
	cur := n
	for {
		p := v.Parent(cur)
		if p == NoNode {
			return emptyIter{}
		}
		i := t.ChildIndex(cur)
		if right && i+1 < t.NumChildren(p) {
			next := t.Child(p, i+1)
			return &funcIter{next: firstThenStep(next, t.FirstChild)}
		}
		if !right && i > 0 {
			prev := t.Child(p, i-1)
			return &funcIter{next: firstThenStep(prev, t.LastChild)}
		}
		cur = p
	}
}

func firstThenStep(start NodeID, step func(NodeID) NodeID) func() (NodeID, bool) {
	cur := NoNode
	return func() (NodeID, bool) {
		if cur == NoNode {
			cur = start
		} else {
			cur = step(cur)
		}
		return cur, cur != NoNode
	}
}
