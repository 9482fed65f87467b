package tregex

import "fmt"

type headKind int

const (
	headHeads       headKind = iota // a >># b: a is a (possibly indirect) head of b
	headHeadedBy                    // a <<# b: b is a head of a
	headImmHeads                    // a >#  b: a is the immediate head of b
	headImmHeadedBy                 // a <#  b: b is the immediate head of a
)

var headSymbols = map[string]headKind{
	">>#": headHeads,
	"<<#": headHeadedBy,
	">#":  headImmHeads,
	"<#":  headImmHeadedBy,
}

// headRelation delegates to a HeadFinder. A nil finder is allowed at
// construction; evaluating the relation then records ErrNoHeadFinder on
// the view and behaves as if no pair satisfies it.
type headRelation struct {
	symbol string
	kind   headKind
	hf     HeadFinder
}

func newHeadRelation(symbol string, hf HeadFinder) *headRelation {
	return &headRelation{symbol: symbol, kind: headSymbols[symbol], hf: hf}
}

func (r *headRelation) Symbol() string      { return r.symbol }
func (r *headRelation) String() string      { return r.symbol }
func (r *headRelation) capabilities() []any { return []any{r.hf} }

// headOf returns the head child of n, or NoNode for leaves and on error.
func (r *headRelation) headOf(v *View, n NodeID) NodeID {
	t := v.Tree()
	switch {
	case t.IsLeaf(n):
		return NoNode
	case t.IsPreterminal(n):
		return t.FirstChild(n)
	case r.hf == nil:
		v.fail(ErrNoHeadFinder)
		return NoNode
	}
	h, err := r.hf.Head(t, n)
	if err != nil {
		v.fail(fmt.Errorf("%w: head of %q: %w", ErrConfig, t.Label(n), err))
		return NoNode
	}
	return h
}

// inHeadChain reports whether a lies on the head chain below b.
func (r *headRelation) inHeadChain(v *View, a, b NodeID) bool {
	for h := r.headOf(v, b); h != NoNode; h = r.headOf(v, h) {
		if h == a {
			return true
		}
	}
	return false
}

func (r *headRelation) Satisfies(v *View, a, b NodeID) bool {
	if a == NoNode || b == NoNode {
		return false
	}
	switch r.kind {
	case headHeads:
		return r.inHeadChain(v, a, b)
	case headHeadedBy:
		return r.inHeadChain(v, b, a)
	case headImmHeads:
		return r.headOf(v, b) == a
	default:
		return r.headOf(v, a) == b
	}
}

func (r *headRelation) Candidates(v *View, anchor NodeID) NodeIter {
	if anchor == NoNode {
		return emptyIter{}
	}
	switch r.kind {
	case headHeads:
		return climb(v, anchor, func(child, parent NodeID) bool {
			return r.headOf(v, parent) == child
		})
	case headHeadedBy:
		return descend(anchor, func(n NodeID) NodeID { return r.headOf(v, n) })
	case headImmHeads:
		p := v.Parent(anchor)
		if p == NoNode || r.headOf(v, p) != anchor {
			return emptyIter{}
		}
		return singleIter(p)
	default:
		return singleIter(r.headOf(v, anchor))
	}
}
