package tregex

import "regexp"

// search is the state shared by every pattern matcher of one top-level
// Matcher: the view, the named-node bindings and the variable table. The
// matcher active at any moment commits its bindings here on descent and
// releases them on backtrack.
type search struct {
	view  *View
	names map[string]NodeID
	vars  *VariableStrings
}

// matcher is the resumable state machine behind one pattern node. Each call
// to matches returns the next satisfying configuration under the current
// anchor; reset restarts the enumeration, resetAt moves it to a new anchor.
type matcher interface {
	matches() bool
	reset()
	resetAt(anchor NodeID)
	match() (NodeID, error)
}

type descState int

const (
	descFresh descState = iota
	descScanning
	descChildPending
	descExhausted
)

// descMatcher enumerates the candidates of a DescriptionPattern's relation,
// accepts those whose label fits, and for each accepted candidate drains the
// child matcher before moving on.
type descMatcher struct {
	p      *DescriptionPattern
	s      *search
	anchor NodeID

	state      descState
	candidates NodeIter
	current    NodeID

	child   matcher
	yielded bool // childless patterns succeed once per accepted candidate

	bound     bool     // p.Name is committed for current
	committed []string // variables committed for current
	groups    []string // scratch submatches
}

func (p *DescriptionPattern) newMatcher(s *search, anchor NodeID) matcher {
	return &descMatcher{p: p, s: s, anchor: anchor, current: NoNode}
}

func (m *descMatcher) matches() bool {
	if m.state == descExhausted {
		m.finish()
		return false
	}
	for m.state != descExhausted {
		if m.matchChild() {
			if m.p.Negated {
				m.state = descExhausted
				m.finish()
				return false
			}
			if m.p.Optional {
				m.state = descExhausted
			}
			return true
		}
		m.advance()
	}
	if m.p.Negated {
		return true
	}
	m.release()
	m.current = NoNode
	return m.p.Optional
}

// matchChild asks for the next configuration under the accepted candidate.
func (m *descMatcher) matchChild() bool {
	if m.current == NoNode {
		return false
	}
	if m.child == nil {
		if m.yielded {
			return false
		}
		m.yielded = true
		return true
	}
	return m.child.matches()
}

// advance releases the bindings of the current candidate and scans for the
// next acceptable one. The state is left exhausted when none remains.
func (m *descMatcher) advance() {
	m.release()
	m.state = descScanning
	if m.candidates == nil {
		rel := m.p.Relation
		if rel == nil {
			rel = RootRelation
		}
		m.candidates = rel.Candidates(m.s.view, m.anchor)
	}
	for {
		c, ok := m.candidates.Next()
		if !ok {
			m.current = NoNode
			m.state = descExhausted
			return
		}
		if !m.accept(c) {
			continue
		}
		m.current = c
		m.state = descChildPending
		m.resetChild()
		if m.p.Name != "" && !m.p.Backref {
			m.s.names[m.p.Name] = c
			m.bound = true
		}
		m.commitVars()
		return
	}
}

// accept tests the candidate's label, backreference or link, and checks
// variable groups against the values already bound.
func (m *descMatcher) accept(c NodeID) bool {
	t := m.s.view.Tree()
	d := &m.p.Desc
	var found bool
	m.groups = m.groups[:0]
	switch {
	case m.p.Link != "":
		other, ok := m.s.names[m.p.Link]
		found = ok && d.label(t, other) == d.label(t, c)
	case m.p.Backref:
		other, ok := m.s.names[m.p.Name]
		found = ok && other == c
		if found && d.Mode != DescNone {
			found = d.test(d.label(t, c))
		}
	case d.Mode == DescPattern && len(m.p.VarGroups) > 0:
		found = m.captureGroups(d.Regexp, d.label(t, c))
	default:
		found = d.test(d.label(t, c))
	}
	return found != d.Negated
}

// captureGroups matches re and checks every variable group against the
// variable table. The submatches are kept for commitVars.
func (m *descMatcher) captureGroups(re *regexp.Regexp, label string) bool {
	sub := re.FindStringSubmatch(label)
	if sub == nil {
		return false
	}
	for _, g := range m.p.VarGroups {
		if g.Group >= len(sub) {
			return false
		}
		if cur, ok := m.s.vars.Get(g.Name); ok && cur != sub[g.Group] {
			return false
		}
		m.groups = append(m.groups, sub[g.Group])
	}
	return true
}

func (m *descMatcher) commitVars() {
	for i, g := range m.p.VarGroups {
		if i >= len(m.groups) {
			return
		}
		if m.s.vars.Set(g.Name, m.groups[i]) {
			m.committed = append(m.committed, g.Name)
		}
	}
}

// release undoes this level's name binding and variable commits.
func (m *descMatcher) release() {
	for _, name := range m.committed {
		m.s.vars.Unset(name)
	}
	m.committed = m.committed[:0]
	if m.bound {
		delete(m.s.names, m.p.Name)
		m.bound = false
	}
}

// finish drops every binding held at or below this level once the matcher
// has nothing more to offer.
func (m *descMatcher) finish() {
	m.release()
	if m.child != nil {
		m.child.reset()
	}
}

func (m *descMatcher) resetChild() {
	m.yielded = false
	if m.p.Child == nil {
		return
	}
	if m.child == nil {
		m.child = m.p.Child.newMatcher(m.s, m.current)
		return
	}
	m.child.resetAt(m.current)
}

func (m *descMatcher) reset() {
	m.release()
	if m.child != nil {
		m.child.reset()
	}
	m.candidates = nil
	m.current = NoNode
	m.yielded = false
	m.state = descFresh
}

func (m *descMatcher) resetAt(anchor NodeID) {
	m.anchor = anchor
	m.reset()
}

func (m *descMatcher) match() (NodeID, error) { return m.current, nil }

// coordMatcher evaluates a CoordinationPattern's children at one anchor.
type coordMatcher struct {
	p        *CoordinationPattern
	children []matcher
	cur      int
	done     bool
}

func (p *CoordinationPattern) newMatcher(s *search, anchor NodeID) matcher {
	children := make([]matcher, len(p.Children))
	for i, c := range p.Children {
		children[i] = c.newMatcher(s, anchor)
	}
	return &coordMatcher{p: p, children: children}
}

func (m *coordMatcher) matches() bool {
	if m.done {
		for _, c := range m.children {
			c.reset()
		}
		return false
	}
	switch {
	case m.p.Conjunction && !m.p.Negated:
		return m.matchAll()
	case !m.p.Conjunction && !m.p.Negated:
		return m.matchAny()
	case m.p.Conjunction:
		// Negated conjunction: holds when some child has no match.
		m.done = true
		failed := false
		for _, c := range m.children {
			if !c.matches() {
				failed = true
			}
			c.reset()
			if failed {
				break
			}
		}
		return failed
	default:
		// Negated disjunction: holds when no child has a match.
		m.done = true
		for _, c := range m.children {
			ok := c.matches()
			c.reset()
			if ok {
				return false
			}
		}
		return true
	}
}

// matchAll walks a cursor across the children. A child that succeeds passes
// the cursor right; a child that runs out is reset and the cursor moves left
// to ask the previous child for its next alternative.
func (m *coordMatcher) matchAll() bool {
	n := len(m.children)
	if m.cur == n {
		m.cur--
	}
	for {
		if m.cur < 0 {
			m.done = true
			return m.p.Optional
		}
		if m.children[m.cur].matches() {
			m.cur++
			if m.cur == n {
				if m.p.Optional {
					m.done = true
				}
				return true
			}
			continue
		}
		m.children[m.cur].reset()
		m.cur--
	}
}

// matchAny returns the first child, left to right, with another match.
// Repeated calls drain the winning child before trying the next.
func (m *coordMatcher) matchAny() bool {
	for m.cur < len(m.children) {
		if m.children[m.cur].matches() {
			if m.p.Optional {
				m.done = true
			}
			return true
		}
		m.children[m.cur].reset()
		m.cur++
	}
	m.done = true
	return m.p.Optional
}

func (m *coordMatcher) reset() {
	for _, c := range m.children {
		c.reset()
	}
	m.cur = 0
	m.done = false
}

func (m *coordMatcher) resetAt(anchor NodeID) {
	for _, c := range m.children {
		c.resetAt(anchor)
	}
	m.cur = 0
	m.done = false
}

func (m *coordMatcher) match() (NodeID, error) {
	if m.p.Conjunction || m.p.Negated {
		return NoNode, ErrAmbiguousMatch
	}
	if m.cur >= len(m.children) {
		return NoNode, nil
	}
	return m.children[m.cur].match()
}
