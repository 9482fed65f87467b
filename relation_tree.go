package tregex

// Identity, dominance, sister, only-child and unary-path relations. None of
// them take an argument; they are registered once and shared.

var rootRelation = &simpleRelation{
	symbol:     "Root",
	satisfies:  func(_ *View, a, b NodeID) bool { return a == b },
	candidates: func(_ *View, anchor NodeID) NodeIter { return singleIter(anchor) },
}

func init() {
	registerSimple(
		rootRelation,
		&simpleRelation{
			symbol:     "==",
			satisfies:  func(_ *View, a, b NodeID) bool { return a == b },
			candidates: func(_ *View, anchor NodeID) NodeIter { return singleIter(anchor) },
		},
		&simpleRelation{
			symbol: "<=",
			satisfies: func(v *View, a, b NodeID) bool {
				return a == b || v.Parent(b) == a
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				kids := v.Tree().Children(anchor)
				nodes := make([]NodeID, 0, len(kids)+1)
				nodes = append(nodes, anchor)
				return newSliceIter(append(nodes, kids...)...)
			},
		},
		&simpleRelation{
			symbol:    ":",
			satisfies: func(v *View, _, b NodeID) bool { return v.Contains(b) },
			candidates: func(v *View, _ NodeID) NodeIter {
				return newPreorderIter(v.Tree(), []NodeID{v.Root()}, nil)
			},
		},

		&simpleRelation{
			symbol:    "<<",
			satisfies: func(v *View, a, b NodeID) bool { return dominates(v, a, b) },
			candidates: func(v *View, anchor NodeID) NodeIter {
				return newPreorderIter(v.Tree(), v.Tree().Children(anchor), nil)
			},
		},
		&simpleRelation{
			symbol:    ">>",
			satisfies: func(v *View, a, b NodeID) bool { return dominates(v, b, a) },
			candidates: func(v *View, anchor NodeID) NodeIter {
				return climb(v, anchor, nil)
			},
		},
		&simpleRelation{
			symbol:    "<",
			satisfies: func(v *View, a, b NodeID) bool { return v.Parent(b) == a },
			candidates: func(v *View, anchor NodeID) NodeIter {
				return newSliceIter(v.Tree().Children(anchor)...)
			},
		},
		&simpleRelation{
			symbol:    ">",
			satisfies: func(v *View, a, b NodeID) bool { return v.Parent(a) == b },
			candidates: func(v *View, anchor NodeID) NodeIter {
				return singleIter(v.Parent(anchor))
			},
		},

		&simpleRelation{
			symbol: "<<,",
			satisfies: func(v *View, a, b NodeID) bool {
				return chainContains(a, b, v.Tree().FirstChild)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return descend(anchor, v.Tree().FirstChild)
			},
		},
		&simpleRelation{
			symbol: "<<-",
			satisfies: func(v *View, a, b NodeID) bool {
				return chainContains(a, b, v.Tree().LastChild)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return descend(anchor, v.Tree().LastChild)
			},
		},
		&simpleRelation{
			symbol: ">>,",
			satisfies: func(v *View, a, b NodeID) bool {
				return chainContains(b, a, v.Tree().FirstChild)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				t := v.Tree()
				return climb(v, anchor, func(child, _ NodeID) bool { return t.ChildIndex(child) == 0 })
			},
		},
		&simpleRelation{
			symbol: ">>-",
			satisfies: func(v *View, a, b NodeID) bool {
				return chainContains(b, a, v.Tree().LastChild)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				t := v.Tree()
				return climb(v, anchor, func(child, parent NodeID) bool { return t.LastChild(parent) == child })
			},
		},

		&simpleRelation{
			symbol: "$",
			satisfies: func(v *View, a, b NodeID) bool {
				p := v.Parent(a)
				return a != b && p != NoNode && p == v.Parent(b)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return sisters(v, anchor, func(i, self int) bool { return i != self })
			},
		},
		&simpleRelation{
			symbol: "$++",
			satisfies: func(v *View, a, b NodeID) bool {
				return sameParent(v, a, b) && v.Tree().ChildIndex(a) < v.Tree().ChildIndex(b)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return sisters(v, anchor, func(i, self int) bool { return i > self })
			},
		},
		&simpleRelation{
			symbol: "$--",
			satisfies: func(v *View, a, b NodeID) bool {
				return sameParent(v, a, b) && v.Tree().ChildIndex(a) > v.Tree().ChildIndex(b)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return sisters(v, anchor, func(i, self int) bool { return i < self })
			},
		},
		&simpleRelation{
			symbol: "$+",
			satisfies: func(v *View, a, b NodeID) bool {
				return sameParent(v, a, b) && v.Tree().ChildIndex(a)+1 == v.Tree().ChildIndex(b)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return sisters(v, anchor, func(i, self int) bool { return i == self+1 })
			},
		},
		&simpleRelation{
			symbol: "$-",
			satisfies: func(v *View, a, b NodeID) bool {
				return sameParent(v, a, b) && v.Tree().ChildIndex(a)-1 == v.Tree().ChildIndex(b)
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return sisters(v, anchor, func(i, self int) bool { return i == self-1 })
			},
		},

		&simpleRelation{
			symbol: "<:",
			satisfies: func(v *View, a, b NodeID) bool {
				t := v.Tree()
				return t.NumChildren(a) == 1 && t.FirstChild(a) == b
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				if v.Tree().NumChildren(anchor) != 1 {
					return emptyIter{}
				}
				return singleIter(v.Tree().FirstChild(anchor))
			},
		},
		&simpleRelation{
			symbol: ">:",
			satisfies: func(v *View, a, b NodeID) bool {
				return v.Parent(a) == b && v.Tree().NumChildren(b) == 1
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				p := v.Parent(anchor)
				if p == NoNode || v.Tree().NumChildren(p) != 1 {
					return emptyIter{}
				}
				return singleIter(p)
			},
		},
		&simpleRelation{
			symbol: "<<:",
			satisfies: func(v *View, a, b NodeID) bool {
				return chainContains(a, b, onlyChild(v.Tree()))
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				return descend(anchor, onlyChild(v.Tree()))
			},
		},
		&simpleRelation{
			symbol: ">>:",
			satisfies: func(v *View, a, b NodeID) bool {
				return chainContains(b, a, onlyChild(v.Tree()))
			},
			candidates: func(v *View, anchor NodeID) NodeIter {
				t := v.Tree()
				return climb(v, anchor, func(_, parent NodeID) bool { return t.NumChildren(parent) == 1 })
			},
		},
	)
}

// dominates reports whether a is a proper ancestor of b inside the view.
func dominates(v *View, a, b NodeID) bool {
	for p := v.Parent(b); p != NoNode; p = v.Parent(p) {
		if p == a {
			return true
		}
	}
	return false
}

func sameParent(v *View, a, b NodeID) bool {
	p := v.Parent(a)
	return p != NoNode && p == v.Parent(b)
}

// climb yields the ancestors of n inside the view, nearest first. When keep
// is set, climbing stops at the first step where keep(child, parent) fails.
func climb(v *View, n NodeID, keep func(child, parent NodeID) bool) NodeIter {
	cur := n
	return &funcIter{next: func() (NodeID, bool) {
		p := v.Parent(cur)
		if p == NoNode || (keep != nil && !keep(cur, p)) {
			return NoNode, false
		}
		cur = p
		return p, true
	}}
}

// descend yields step(n), step(step(n)), ... until step returns NoNode.
func descend(n NodeID, step func(NodeID) NodeID) NodeIter {
	cur := n
	return &funcIter{next: func() (NodeID, bool) {
		cur = step(cur)
		return cur, cur != NoNode
	}}
}

// chainContains reports whether b is reached from a by one or more steps.
func chainContains(a, b NodeID, step func(NodeID) NodeID) bool {
	for cur := step(a); cur != NoNode; cur = step(cur) {
		if cur == b {
			return true
		}
	}
	return false
}

func onlyChild(t *Tree) func(NodeID) NodeID {
	return func(n NodeID) NodeID {
		if t.NumChildren(n) != 1 {
			return NoNode
		}
		return t.FirstChild(n)
	}
}

// sisters yields the siblings of n, in order, whose index passes keep.
func sisters(v *View, n NodeID, keep func(i, self int) bool) NodeIter {
	p := v.Parent(n)
	if p == NoNode {
		return emptyIter{}
	}
	t := v.Tree()
	self := t.ChildIndex(n)
	kids := t.Children(p)
	var out []NodeID
	for i, c := range kids {
		if keep(i, self) {
			out = append(out, c)
		}
	}
	return newSliceIter(out...)
}
