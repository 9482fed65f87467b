package tregex

import "fmt"

// pathRelation is one of the unbroken-category relations "<+(C)", ">+(C)",
// ".+(C)" and ",+(C)": a reaches b through a chain whose intermediate nodes
// all match C.
//
// The dominance forms need no visited set because a tree has exactly one
// path between two nodes. The precedence forms do: a node and its
// leftmost (or rightmost) descendant share an edge, so the chains that
// leave them converge on the same followers.
type pathRelation struct {
	symbol string
	arg    string
	side   Description
}

func newPathRelation(symbol, arg string, basicCat BasicCategoryFunc) (Relation, error) {
	if arg == "" {
		return nil, configErrorf("relation %q needs a category argument", symbol)
	}
	side, err := ParseDescription(arg, basicCat)
	if err != nil {
		return nil, fmt.Errorf("%w: relation %q: %w", ErrConfig, symbol, err)
	}
	if side.Mode == DescNone {
		return nil, configErrorf("relation %q: empty category %q", symbol, arg)
	}
	return &pathRelation{symbol: symbol, arg: arg, side: side}, nil
}

func (r *pathRelation) Symbol() string { return r.symbol }

func (r *pathRelation) String() string { return r.symbol + "(" + r.arg + ")" }

func (r *pathRelation) capabilities() []any { return []any{r.side.BasicCategory} }

func (r *pathRelation) through(v *View, n NodeID) bool {
	return r.side.MatchesNode(v.Tree(), n)
}

func (r *pathRelation) Satisfies(v *View, a, b NodeID) bool {
	if a == NoNode || b == NoNode {
		return false
	}
	switch r.symbol {
	case "<+":
		return r.unbrokenBelow(v, a, b)
	case ">+":
		return r.unbrokenBelow(v, b, a)
	}
	it := r.Candidates(v, a)
	for {
		n, ok := it.Next()
		if !ok {
			return false
		}
		if n == b {
			return true
		}
	}
}

// unbrokenBelow reports whether top dominates n with every node strictly
// between them matching the side description.
func (r *pathRelation) unbrokenBelow(v *View, top, n NodeID) bool {
	cur := v.Parent(n)
	for cur != top {
		if cur == NoNode || !r.through(v, cur) {
			return false
		}
		cur = v.Parent(cur)
	}
	return true
}

func (r *pathRelation) Candidates(v *View, anchor NodeID) NodeIter {
	if anchor == NoNode {
		return emptyIter{}
	}
	switch r.symbol {
	case "<+":
		return newPreorderIter(v.Tree(), v.Tree().Children(anchor), func(n NodeID) bool {
			return r.through(v, n)
		})
	case ">+":
		return climb(v, anchor, func(child, _ NodeID) bool {
			return child == anchor || r.through(v, child)
		})
	case ".+":
		return r.chain(v, anchor, true)
	default:
		return r.chain(v, anchor, false)
	}
}

// chain yields the nodes immediately following (or preceding) the anchor,
// then, for each yielded node that matches the side description, the nodes
// immediately following it, each node at most once.
func (r *pathRelation) chain(v *View, anchor NodeID, right bool) NodeIter {
	seen := map[NodeID]bool{}
	queue := []NodeIter{adjacent(v, anchor, right)}
	return &funcIter{next: func() (NodeID, bool) {
		for len(queue) > 0 {
			n, ok := queue[0].Next()
			if !ok {
				queue = queue[1:]
				continue
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			if r.through(v, n) {
				queue = append(queue, adjacent(v, n, right))
			}
			return n, true
		}
		return NoNode, false
	}}
}
