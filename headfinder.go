package tregex

import (
	"fmt"
	"slices"
)

// HeadFinder chooses the head child of a phrase.
type HeadFinder interface {
	Head(t *Tree, n NodeID) (NodeID, error)
}

// HeadFinderFunc adapts a function to the HeadFinder interface.
type HeadFinderFunc func(t *Tree, n NodeID) (NodeID, error)

// Head calls f.
func (f HeadFinderFunc) Head(t *Tree, n NodeID) (NodeID, error) { return f(t, n) }

// HeadDirection says how a HeadRule scans the children of a phrase.
type HeadDirection string

const (
	// HeadLeft tries each category in turn, scanning children left to right.
	HeadLeft HeadDirection = "left"
	// HeadRight tries each category in turn, scanning children right to left.
	HeadRight HeadDirection = "right"
	// HeadLeftDis takes the leftmost child whose category is in the set.
	HeadLeftDis HeadDirection = "leftdis"
	// HeadRightDis takes the rightmost child whose category is in the set.
	HeadRightDis HeadDirection = "rightdis"
	// HeadLeftExcept takes the leftmost child whose category is not in the set.
	HeadLeftExcept HeadDirection = "leftexcept"
	// HeadRightExcept takes the rightmost child whose category is not in the set.
	HeadRightExcept HeadDirection = "rightexcept"
)

func (d HeadDirection) valid() bool {
	switch d {
	case HeadLeft, HeadRight, HeadLeftDis, HeadRightDis, HeadLeftExcept, HeadRightExcept:
		return true
	}
	return false
}

func (d HeadDirection) fromLeft() bool {
	return d == HeadLeft || d == HeadLeftDis || d == HeadLeftExcept
}

// HeadRule is one step of a head-finding table entry.
type HeadRule struct {
	Direction  HeadDirection
	Categories []string
}

// HeadRules maps a phrasal category to the rules tried, in order, to find
// its head.
type HeadRules map[string][]HeadRule

// RuleHeadFinder is a table-driven head finder in the style of Collins
// (1999). Labels are reduced to their basic category before lookup.
type RuleHeadFinder struct {
	rules       HeadRules
	defaultRule []HeadRule
	basic       BasicCategoryFunc
}

// HeadFinderOption configures a RuleHeadFinder.
type HeadFinderOption func(*RuleHeadFinder)

// WithDefaultHeadRule sets the rules used for categories missing from the
// table. Without one, such categories are an error.
func WithDefaultHeadRule(rules ...HeadRule) HeadFinderOption {
	return func(h *RuleHeadFinder) { h.defaultRule = rules }
}

// WithHeadBasicCategory sets how labels are reduced before table lookup.
// The default is PennBasicCategory.
func WithHeadBasicCategory(fn BasicCategoryFunc) HeadFinderOption {
	return func(h *RuleHeadFinder) { h.basic = fn }
}

// NewRuleHeadFinder validates rules and builds a head finder over them.
func NewRuleHeadFinder(rules HeadRules, opts ...HeadFinderOption) (*RuleHeadFinder, error) {
	h := &RuleHeadFinder{rules: rules, basic: PennBasicCategory}
	for _, o := range opts {
		o(h)
	}
	check := func(cat string, rs []HeadRule) error {
		if len(rs) == 0 {
			return configErrorf("head rules for %q are empty", cat)
		}
		for _, r := range rs {
			if !r.Direction.valid() {
				return configErrorf("head rules for %q: unknown direction %q", cat, r.Direction)
			}
		}
		return nil
	}
	for cat, rs := range rules {
		if err := check(cat, rs); err != nil {
			return nil, err
		}
	}
	if h.defaultRule != nil {
		if err := check("default", h.defaultRule); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Head returns the head child of n. A leaf has no head; a preterminal is
// headed by its word.
func (h *RuleHeadFinder) Head(t *Tree, n NodeID) (NodeID, error) {
	if t.IsLeaf(n) {
		return NoNode, nil
	}
	if t.IsPreterminal(n) {
		return t.FirstChild(n), nil
	}
	label := t.Label(n)
	if h.basic != nil {
		label = h.basic(label)
	}
	rules, ok := h.rules[label]
	if !ok {
		rules = h.defaultRule
	}
	if len(rules) == 0 {
		return NoNode, fmt.Errorf("%w: no head rule for category %q", ErrConfig, label)
	}
	kids := t.Children(n)
	cats := make([]string, len(kids))
	for i, c := range kids {
		cats[i] = t.Label(c)
		if h.basic != nil {
			cats[i] = h.basic(cats[i])
		}
	}
	for _, r := range rules {
		if i := r.apply(cats); i >= 0 {
			return kids[i], nil
		}
	}
	if rules[0].Direction.fromLeft() {
		return kids[0], nil
	}
	return kids[len(kids)-1], nil
}

// apply returns the index of the child chosen by r, or -1.
func (r HeadRule) apply(cats []string) int {
	order := func(yield func(int) bool) {
		if r.Direction.fromLeft() {
			for i := range cats {
				if !yield(i) {
					return
				}
			}
			return
		}
		for i := len(cats) - 1; i >= 0; i-- {
			if !yield(i) {
				return
			}
		}
	}
	switch r.Direction {
	case HeadLeft, HeadRight:
		if len(r.Categories) == 0 {
			for i := range order {
				return i
			}
		}
		for _, want := range r.Categories {
			for i := range order {
				if cats[i] == want {
					return i
				}
			}
		}
	case HeadLeftDis, HeadRightDis:
		for i := range order {
			if slices.Contains(r.Categories, cats[i]) {
				return i
			}
		}
	case HeadLeftExcept, HeadRightExcept:
		for i := range order {
			if !slices.Contains(r.Categories, cats[i]) {
				return i
			}
		}
	}
	return -1
}

func rule(d HeadDirection, cats ...string) HeadRule {
	return HeadRule{Direction: d, Categories: cats}
}

// CollinsHeadRules returns the Penn Treebank head table of Collins (1999)
// as distributed with the Stanford parser. The map is freshly allocated.
func CollinsHeadRules() HeadRules {
	return HeadRules{
		"ADJP":   {rule(HeadLeft, "NNS", "QP", "NN", "$", "ADVP", "JJ", "VBN", "VBG", "ADJP", "JJR", "NP", "JJS", "DT", "FW", "RBR", "RBS", "SBAR", "RB")},
		"ADVP":   {rule(HeadRight, "RB", "RBR", "RBS", "FW", "ADVP", "TO", "CD", "JJR", "JJ", "IN", "NP", "JJS", "NN")},
		"CONJP":  {rule(HeadRight, "CC", "RB", "IN")},
		"FRAG":   {rule(HeadRight)},
		"INTJ":   {rule(HeadLeft)},
		"LST":    {rule(HeadRight, "LS", ":")},
		"NAC":    {rule(HeadLeft, "NN", "NNS", "NNP", "NNPS", "NP", "NAC", "EX", "$", "CD", "QP", "PRP", "VBG", "JJ", "JJS", "JJR", "ADJP", "FW")},
		"NX":     {rule(HeadLeft)},
		"PP":     {rule(HeadRight, "IN", "TO", "VBG", "VBN", "RP", "FW")},
		"PRN":    {rule(HeadLeft)},
		"PRT":    {rule(HeadRight, "RP")},
		"QP":     {rule(HeadLeft, "$", "IN", "NNS", "NN", "JJ", "RB", "DT", "CD", "NCD", "QP", "JJR", "JJS")},
		"RRC":    {rule(HeadRight, "VP", "NP", "ADVP", "ADJP", "PP")},
		"S":      {rule(HeadLeft, "TO", "IN", "VP", "S", "SBAR", "ADJP", "UCP", "NP")},
		"SBAR":   {rule(HeadLeft, "WHNP", "WHPP", "WHADVP", "WHADJP", "IN", "DT", "S", "SQ", "SINV", "SBAR", "FRAG")},
		"SBARQ":  {rule(HeadLeft, "SQ", "S", "SINV", "SBARQ", "FRAG")},
		"SINV":   {rule(HeadLeft, "VBZ", "VBD", "VBP", "VB", "MD", "VP", "S", "SINV", "ADJP", "NP")},
		"SQ":     {rule(HeadLeft, "VBZ", "VBD", "VBP", "VB", "MD", "VP", "SQ")},
		"UCP":    {rule(HeadRight)},
		"VP":     {rule(HeadLeft, "TO", "VBD", "VBN", "MD", "VBZ", "VB", "VBG", "VBP", "AUX", "AUXG", "VP", "ADJP", "NN", "NNS", "NP")},
		"WHADJP": {rule(HeadLeft, "CC", "WRB", "JJ", "ADJP")},
		"WHADVP": {rule(HeadRight, "CC", "WRB")},
		"WHNP":   {rule(HeadLeft, "WDT", "WP", "WP$", "WHADJP", "WHPP", "WHNP")},
		"WHPP":   {rule(HeadRight, "IN", "TO", "FW")},
		"X":      {rule(HeadRight)},
		"NP": {
			rule(HeadRightDis, "NN", "NNP", "NNPS", "NNS", "NX", "POS", "JJR"),
			rule(HeadLeft, "NP"),
			rule(HeadRightDis, "$", "ADJP", "PRN"),
			rule(HeadRight, "CD"),
			rule(HeadRightDis, "JJ", "JJS", "RB", "QP"),
		},
		"TYPO":   {rule(HeadLeft)},
		"EDITED": {rule(HeadLeft)},
		"ROOT":   {rule(HeadLeft, "S", "SQ", "SINV", "SBARQ", "FRAG")},
		"TOP":    {rule(HeadLeft, "S", "SQ", "SINV", "SBARQ", "FRAG")},
	}
}

// NewCollinsHeadFinder returns a RuleHeadFinder over CollinsHeadRules that
// heads unknown categories by their leftmost child.
func NewCollinsHeadFinder() *RuleHeadFinder {
	h, err := NewRuleHeadFinder(CollinsHeadRules(), WithDefaultHeadRule(rule(HeadLeft)))
	if err != nil {
		panic(err)
	}
	return h
}
