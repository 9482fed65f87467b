package tregex

import (
	"fmt"
	"log/slog"
)

// Query is a compiled pattern. It is immutable and may be shared by any
// number of goroutines, each driving its own Matcher.
type Query struct {
	root   Pattern
	source string
	logger *slog.Logger
}

// NewQuery wraps a hand-built pattern. The pattern is trusted: names,
// backreferences and negation scopes are not re-validated. A top-level
// DescriptionPattern with a nil Relation is anchored with RootRelation.
func NewQuery(root Pattern) *Query {
	return &Query{root: root, logger: discardLogger}
}

// Pattern returns the root of the compiled pattern.
func (q *Query) Pattern() Pattern { return q.root }

// String returns the source text the query was compiled from, or a
// rendering of the pattern for hand-built queries.
func (q *Query) String() string {
	if q.source != "" {
		return q.source
	}
	return q.root.String()
}

// Matcher returns a matcher over the whole of t.
func (q *Query) Matcher(t *Tree) *Matcher {
	return q.newMatcher(t, t.Root())
}

// MatcherAt returns a matcher whose view of t is limited to the subtree at
// root: parents stop at root and spans are measured within it.
func (q *Query) MatcherAt(t *Tree, root NodeID) (*Matcher, error) {
	if !t.Valid(root) {
		return nil, fmt.Errorf("%w: match root %d is not a node of the tree", ErrUsage, root)
	}
	return q.newMatcher(t, root), nil
}

func (q *Query) newMatcher(t *Tree, root NodeID) *Matcher {
	s := &search{
		view:  NewView(t, root),
		names: make(map[string]NodeID),
		vars:  NewVariableStrings(),
	}
	return &Matcher{
		q:      q,
		s:      s,
		root:   q.root.newMatcher(s, root),
		anchor: root,
		findAt: NoNode,
	}
}

// MatchesTree reports whether the pattern matches anywhere in t.
func (q *Query) MatchesTree(t *Tree) (bool, error) {
	return q.Matcher(t).Find()
}

// FindAll returns the matched node of every match in t, in search order.
// A node is reported once per distinct configuration that matches it.
func (q *Query) FindAll(t *Tree) ([]NodeID, error) {
	m := q.Matcher(t)
	var out []NodeID
	for {
		ok, err := m.Find()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, m.matchedNode())
	}
}
