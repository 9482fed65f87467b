package tregex

import "strconv"

// childIndexRelation is "a <i b" (b is the i-th child of a) or "a >i b"
// (a is the i-th child of b). Negative indices count from the last child.
type childIndexRelation struct {
	parentOf bool
	index    int
}

func newChildIndexRelation(symbol, arg string) (Relation, error) {
	i, err := parseIndex(symbol, arg)
	if err != nil {
		return nil, err
	}
	return &childIndexRelation{parentOf: symbol == "<", index: i}, nil
}

func (r *childIndexRelation) Symbol() string {
	if r.parentOf {
		return "<"
	}
	return ">"
}

func (r *childIndexRelation) String() string {
	return r.Symbol() + strconv.Itoa(r.index)
}

func (r *childIndexRelation) capabilities() []any { return nil }

// nth returns the child of p selected by the index, or NoNode.
func (r *childIndexRelation) nth(t *Tree, p NodeID) NodeID {
	if r.index > 0 {
		return t.Child(p, r.index-1)
	}
	return t.Child(p, t.NumChildren(p)+r.index)
}

func (r *childIndexRelation) Satisfies(v *View, a, b NodeID) bool {
	if a == NoNode || b == NoNode {
		return false
	}
	if r.parentOf {
		return r.nth(v.Tree(), a) == b
	}
	p := v.Parent(a)
	return p != NoNode && r.nth(v.Tree(), p) == a && p == b
}

func (r *childIndexRelation) Candidates(v *View, anchor NodeID) NodeIter {
	if anchor == NoNode {
		return emptyIter{}
	}
	if r.parentOf {
		return singleIter(r.nth(v.Tree(), anchor))
	}
	p := v.Parent(anchor)
	if p == NoNode || r.nth(v.Tree(), p) != anchor {
		return emptyIter{}
	}
	return singleIter(p)
}
