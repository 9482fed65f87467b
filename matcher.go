package tregex

import (
	"fmt"
	"maps"
	"slices"
)

// Matcher drives one Query against one tree. It is a single-owner state
// machine: successive calls to Find or Matches enumerate further matches,
// and the bindings read through Node and VariableString describe the most
// recent success until the next search call or Reset.
//
// Searching methods return false with a nil error when there is no (further)
// match. A non-nil error wraps ErrConfig (for example a head relation with
// no head finder) or ErrUsage (a broken calling contract).
type Matcher struct {
	q    *Query
	s    *search
	root matcher

	// anchor is the node the root pattern is currently aligned with.
	anchor NodeID

	findIter NodeIter
	findAt   NodeID
	started  bool
}

// Tree returns the tree being searched.
func (m *Matcher) Tree() *Tree { return m.s.view.Tree() }

// Root returns the match root.
func (m *Matcher) Root() NodeID { return m.s.view.Root() }

// Anchor returns the node the pattern was last aligned with.
func (m *Matcher) Anchor() NodeID { return m.anchor }

func (m *Matcher) step() (bool, error) {
	m.s.view.clearErr()
	ok := m.root.matches()
	if err := m.s.view.Err(); err != nil {
		return false, err
	}
	return ok, nil
}

func (m *Matcher) checkAnchor(n NodeID) error {
	if !m.s.view.Contains(n) {
		return fmt.Errorf("%w: node %d", ErrOutsideRoot, n)
	}
	return nil
}

func (m *Matcher) moveTo(n NodeID) {
	m.anchor = n
	m.root.resetAt(n)
}

// Matches tests the pattern at the current anchor, initially the match
// root. Only the anchor must align with the pattern's root; unmatched
// descendants are allowed. Repeated calls return further configurations at
// the same anchor.
func (m *Matcher) Matches() (bool, error) {
	m.started = true
	return m.step()
}

// MatchesAt moves the anchor to n and tests the pattern there.
func (m *Matcher) MatchesAt(n NodeID) (bool, error) {
	if err := m.checkAnchor(n); err != nil {
		return false, err
	}
	m.moveTo(n)
	m.started = true
	return m.step()
}

// Find advances to the next match, visiting anchors in preorder and
// enumerating every configuration at an anchor before moving on.
func (m *Matcher) Find() (bool, error) {
	if m.findIter == nil {
		m.findIter = newPreorderIter(m.s.view.Tree(), []NodeID{m.s.view.Root()}, nil)
	} else {
		ok, err := m.step()
		if err != nil || ok {
			return ok, err
		}
	}
	for {
		n, ok := m.findIter.Next()
		if !ok {
			return false, nil
		}
		m.moveTo(n)
		m.started = true
		ok, err := m.step()
		if err != nil || ok {
			return ok, err
		}
	}
}

// FindAt enumerates matches at the single anchor n. Calling it with a
// different anchor before Reset is a usage error.
func (m *Matcher) FindAt(n NodeID) (bool, error) {
	if m.findAt != NoNode {
		if m.findAt != n {
			return false, fmt.Errorf("%w: was %d, now %d", ErrAnchorChanged, m.findAt, n)
		}
		return m.step()
	}
	if err := m.checkAnchor(n); err != nil {
		return false, err
	}
	m.findAt = n
	m.moveTo(n)
	m.started = true
	return m.step()
}

// FindNextMatchingNode advances to the next match whose matched node
// differs from the current one, skipping further configurations of the
// same node.
func (m *Matcher) FindNextMatchingNode() (bool, error) {
	last := NoNode
	if m.started {
		last = m.matchedNode()
	}
	for {
		ok, err := m.Find()
		if err != nil || !ok {
			return ok, err
		}
		if m.matchedNode() != last {
			return true, nil
		}
	}
}

// Match returns the node matched by the pattern's root. It fails with
// ErrAmbiguousMatch when the root is a conjunction or a negated
// coordination.
func (m *Matcher) Match() (NodeID, error) {
	return m.root.match()
}

// matchedNode is Match, falling back to the anchor where the pattern's root
// has no single matched node.
func (m *Matcher) matchedNode() NodeID {
	n, err := m.root.match()
	if err != nil || n == NoNode {
		return m.anchor
	}
	return n
}

// Node returns the node bound to name by the most recent match.
func (m *Matcher) Node(name string) (NodeID, bool) {
	n, ok := m.s.names[name]
	return n, ok
}

// NodeNames returns the names bound by the most recent match, sorted.
func (m *Matcher) NodeNames() []string {
	return slices.Sorted(maps.Keys(m.s.names))
}

// Bindings returns a copy of the current name bindings.
func (m *Matcher) Bindings() map[string]NodeID {
	return maps.Clone(m.s.names)
}

// VariableString returns the string captured for a variable group.
func (m *Matcher) VariableString(name string) (string, bool) {
	return m.s.vars.Get(name)
}

// Variables returns a copy of the current variable strings.
func (m *Matcher) Variables() map[string]string {
	out := make(map[string]string)
	for _, name := range m.s.vars.Names() {
		out[name], _ = m.s.vars.Get(name)
	}
	return out
}

// Reset clears bindings, variables and search position. The next Find
// starts again from the match root.
func (m *Matcher) Reset() {
	m.findIter = nil
	m.findAt = NoNode
	m.started = false
	m.moveTo(m.s.view.Root())
	clear(m.s.names)
	m.s.vars.Reset()
	m.s.view.clearErr()
}
