package tregex

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern is a node of a compiled query: a *DescriptionPattern or a
// *CoordinationPattern. Patterns are immutable once built and may be shared
// by any number of matchers.
type Pattern interface {
	fmt.Stringer
	IsNegated() bool
	IsOptional() bool

	newMatcher(s *search, anchor NodeID) matcher
}

// VarGroup binds regex capture group Group of a description to the
// variable Name.
type VarGroup struct {
	Group int
	Name  string
}

// DescriptionPattern constrains one node: its relation to the anchor, its
// label, an optional name binding and an optional child pattern anchored at
// the matched node.
type DescriptionPattern struct {
	Relation Relation
	Negated  bool
	Optional bool
	Desc     Description

	// Name binds the matched node. When Backref is set the node must be
	// the one already bound to Name.
	Name    string
	Backref bool

	// Link names an earlier node whose label (after basic category) the
	// matched node's label must equal.
	Link string

	VarGroups []VarGroup
	Child     Pattern
}

func (p *DescriptionPattern) IsNegated() bool  { return p.Negated }
func (p *DescriptionPattern) IsOptional() bool { return p.Optional }

func (p *DescriptionPattern) String() string {
	var b strings.Builder
	p.render(&b)
	return b.String()
}

func (p *DescriptionPattern) render(b *strings.Builder) {
	if p.Negated {
		b.WriteByte('!')
	}
	if p.Optional {
		b.WriteByte('?')
	}
	if p.Relation != nil && p.Relation.Symbol() != "Root" {
		b.WriteString(p.Relation.String())
		b.WriteByte(' ')
	}
	hasChild := p.Child != nil
	if hasChild {
		b.WriteByte('(')
	}
	desc := p.Desc.String()
	switch {
	case p.Link != "":
		b.WriteString(desc + "~" + p.Link)
		if p.Name != "" {
			b.WriteString("=" + p.Name)
		}
	case p.Backref:
		b.WriteString(desc + "=" + p.Name)
	default:
		b.WriteString(desc)
		for _, g := range p.VarGroups {
			b.WriteString("#" + strconv.Itoa(g.Group) + "%" + g.Name)
		}
		if p.Name != "" {
			b.WriteString("=" + p.Name)
		}
	}
	if hasChild {
		b.WriteByte(' ')
		renderChild(b, p.Child)
		b.WriteByte(')')
	}
}

func renderChild(b *strings.Builder, child Pattern) {
	switch c := child.(type) {
	case *DescriptionPattern:
		c.render(b)
	case *CoordinationPattern:
		c.render(b)
	}
}

// CoordinationPattern combines sibling patterns that share one anchor.
type CoordinationPattern struct {
	Children    []Pattern
	Conjunction bool
	Negated     bool
	Optional    bool
}

func (p *CoordinationPattern) IsNegated() bool  { return p.Negated }
func (p *CoordinationPattern) IsOptional() bool { return p.Optional }

func (p *CoordinationPattern) String() string {
	var b strings.Builder
	p.render(&b)
	return b.String()
}

func (p *CoordinationPattern) render(b *strings.Builder) {
	if p.Negated {
		b.WriteByte('!')
	}
	if p.Optional {
		b.WriteByte('?')
	}
	sep := " | "
	if p.Conjunction {
		sep = " "
	}
	b.WriteByte('[')
	for i, c := range p.Children {
		if i > 0 {
			b.WriteString(sep)
		}
		renderChild(b, c)
	}
	b.WriteByte(']')
}

// NewMultiChild expands "<... { A ; B ; C }": a conjunction requiring A, B
// and C as the first, second and third children of the anchor and no
// fourth child. Each element's relation is replaced.
func NewMultiChild(elems ...*DescriptionPattern) (*CoordinationPattern, error) {
	if len(elems) == 0 {
		return nil, configErrorf("relation %q needs at least one child", "<...")
	}
	children := make([]Pattern, 0, len(elems)+1)
	for i, e := range elems {
		rel, err := GetRelation("<", strconv.Itoa(i+1), Capabilities{})
		if err != nil {
			return nil, err
		}
		c := *e
		c.Relation = rel
		children = append(children, &c)
	}
	rest, err := GetRelation("<", strconv.Itoa(len(elems)+1), Capabilities{})
	if err != nil {
		return nil, err
	}
	children = append(children, &DescriptionPattern{
		Relation: rest,
		Negated:  true,
		Desc:     AnyDesc(),
	})
	return &CoordinationPattern{Children: children, Conjunction: true}, nil
}
