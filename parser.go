package tregex

import (
	"fmt"
	"strconv"
)

// parser is a recursive-descent parser over the pattern grammar:
//
//	Root          := SubNode ( ':' SubNode )*
//	SubNode       := '(' SubNode ')' ChildrenDisj? | ModDescription ChildrenDisj?
//	ChildrenDisj  := ChildrenConj ( '|' ChildrenConj )*
//	ChildrenConj  := ModChild ( '&'? ModChild )*
//	ModChild      := '!' ModChild | '?' ModChild | Child
//	Child         := '[' ChildrenDisj ']' | REL SideDesc? ( MultiBody | '(' SubNode ')' | ModDescription )
//	MultiBody     := '{' SubNode ( ';' SubNode )* '}'
//	ModDescription:= ( '!' | '@' )* Description? Naming
//	Description   := Atom ( '|' Atom )* VarGroup*
//	VarGroup      := '#' NUMBER '%' IDENT
//	Naming        := ( '=' IDENT )? | '~' IDENT ( '=' IDENT )?
type parser struct {
	lx   *lexer
	src  string
	tok  token
	caps Capabilities

	names   map[string]bool
	negated int // depth of enclosing negated scopes

	// singleRegex records whether the last description read was one
	// regular expression, the only form that may carry variable groups.
	singleRegex bool
}

func (p *parser) advance() error {
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pattern: p.src, Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.tok.kind != kind {
		return p.errorf("expected %s, found %s", what, p.tok)
	}
	return p.advance()
}

func (p *parser) parseRoot() (Pattern, error) {
	first, err := p.parseSubNode()
	if err != nil {
		return nil, err
	}
	first.Relation = RootRelation
	if p.tok.kind != tokColon {
		if p.tok.kind != tokEOF {
			return nil, p.errorf("unexpected %s", p.tok)
		}
		return first, nil
	}
	segment, err := GetRelation(":", "", p.caps)
	if err != nil {
		return nil, err
	}
	children := []Pattern{first}
	for p.tok.kind == tokColon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseSubNode()
		if err != nil {
			return nil, err
		}
		next.Relation = segment
		children = append(children, next)
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s", p.tok)
	}
	return &CoordinationPattern{Children: children, Conjunction: true}, nil
}

func (p *parser) parseSubNode() (*DescriptionPattern, error) {
	var node *DescriptionPattern
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseSubNode()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		node = inner
	} else {
		d, err := p.parseModDescription()
		if err != nil {
			return nil, err
		}
		node = d
	}
	if !p.startsChild() {
		return node, nil
	}
	children, err := p.parseChildrenDisj()
	if err != nil {
		return nil, err
	}
	if node.Child == nil {
		node.Child = children
	} else {
		node.Child = &CoordinationPattern{Children: []Pattern{node.Child, children}, Conjunction: true}
	}
	return node, nil
}

func (p *parser) startsChild() bool {
	switch p.tok.kind {
	case tokRelation, tokBang, tokQuestion, tokLBracket, tokAmp:
		return true
	}
	return false
}

func (p *parser) parseChildrenDisj() (Pattern, error) {
	first, err := p.parseChildrenConj()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokPipe {
		return first, nil
	}
	alts := []Pattern{first}
	for p.tok.kind == tokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseChildrenConj()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	return &CoordinationPattern{Children: alts}, nil
}

func (p *parser) parseChildrenConj() (Pattern, error) {
	var parts []Pattern
	for {
		if p.tok.kind == tokAmp {
			if len(parts) == 0 {
				return nil, p.errorf("'&' needs a relation on its left")
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if len(parts) > 0 && !p.startsChild() {
			break
		}
		c, err := p.parseModChild()
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return &CoordinationPattern{Children: parts, Conjunction: true}, nil
}

func (p *parser) parseModChild() (Pattern, error) {
	switch p.tok.kind {
	case tokBang, tokQuestion:
		negate := p.tok.kind == tokBang
		if err := p.advance(); err != nil {
			return nil, err
		}
		if negate {
			p.negated++
			defer func() { p.negated-- }()
		}
		child, err := p.parseModChild()
		if err != nil {
			return nil, err
		}
		return p.modify(child, negate)
	}
	return p.parseChild()
}

// modify marks child negated or optional, refusing to stack the two.
func (p *parser) modify(child Pattern, negate bool) (Pattern, error) {
	switch c := child.(type) {
	case *DescriptionPattern:
		if c.Negated || c.Optional {
			return nil, p.errorf("a relation cannot be both negated and optional, or negated twice")
		}
		c.Negated, c.Optional = negate, !negate
	case *CoordinationPattern:
		if c.Negated || c.Optional {
			return nil, p.errorf("a relation cannot be both negated and optional, or negated twice")
		}
		c.Negated, c.Optional = negate, !negate
	}
	return child, nil
}

func (p *parser) parseChild() (Pattern, error) {
	if p.tok.kind == tokLBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseChildrenDisj()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	if p.tok.kind != tokRelation {
		return nil, p.errorf("expected a relation, found %s", p.tok)
	}
	relTok := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	if relTok.text == "<..." {
		return p.parseMultiBody()
	}

	arg := relTok.arg
	switch relTok.text {
	case "<+", ">+", ".+", ",+":
		if p.tok.kind != tokLParen {
			return nil, p.errorf("relation %q needs a category in parentheses", relTok.text)
		}
		raw, err := p.lx.raw()
		if err != nil {
			return nil, err
		}
		arg = raw
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	rel, err := GetRelation(relTok.text, arg, p.caps)
	if err != nil {
		return nil, &SyntaxError{Pattern: p.src, Pos: relTok.pos, Msg: err.Error(), Err: err}
	}

	var node *DescriptionPattern
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err = p.parseSubNode()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
	} else {
		node, err = p.parseModDescription()
		if err != nil {
			return nil, err
		}
	}
	node.Relation = rel
	return node, nil
}

func (p *parser) parseMultiBody() (Pattern, error) {
	if err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}
	var elems []*DescriptionPattern
	for {
		e, err := p.parseSubNode()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.tok.kind != tokSemicolon {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return NewMultiChild(elems...)
}

func (p *parser) parseModDescription() (*DescriptionPattern, error) {
	start := p.tok
	desc, hasAtoms, err := p.parseDescriptionBody()
	if err != nil {
		return nil, err
	}
	node := &DescriptionPattern{Desc: desc}
	if hasAtoms {
		if err := p.parseVarGroups(node); err != nil {
			return nil, err
		}
	}

	switch p.tok.kind {
	case tokTilde:
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.ident("link name")
		if err != nil {
			return nil, err
		}
		if !p.names[name] {
			return nil, p.errorf("link to undeclared name %q", name)
		}
		node.Link = name
		if hasAtoms {
			return nil, p.errorf("a link cannot carry a description")
		}
		if p.tok.kind == tokEquals {
			if err := p.declare(node); err != nil {
				return nil, err
			}
		}
	case tokEquals:
		if hasAtoms {
			if err := p.declare(node); err != nil {
				return nil, err
			}
		} else {
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.ident("name")
			if err != nil {
				return nil, err
			}
			if !p.names[name] {
				return nil, p.errorf("backreference to undeclared name %q", name)
			}
			node.Name, node.Backref = name, true
		}
	}
	if !hasAtoms && node.Link == "" && !node.Backref {
		return nil, &SyntaxError{Pattern: p.src, Pos: start.pos, Msg: fmt.Sprintf("expected a node description, found %s", start)}
	}
	return node, nil
}

// declare consumes "= IDENT" and binds the name to node.
func (p *parser) declare(node *DescriptionPattern) error {
	if err := p.advance(); err != nil {
		return err
	}
	name, err := p.ident("name")
	if err != nil {
		return err
	}
	if p.names[name] {
		return p.errorf("name %q declared twice", name)
	}
	if p.negated > 0 {
		return p.errorf("name %q declared inside a negated relation", name)
	}
	p.names[name] = true
	node.Name = name
	return nil
}

func (p *parser) ident(what string) (string, error) {
	if p.tok.kind != tokIdent {
		return "", p.errorf("expected %s, found %s", what, p.tok)
	}
	name := p.tok.text
	return name, p.advance()
}

func (p *parser) parseVarGroups(node *DescriptionPattern) error {
	for p.tok.kind == tokHash {
		if !p.singleRegex {
			return p.errorf("variable groups need a single regular expression")
		}
		if node.Desc.Negated {
			return p.errorf("variable groups cannot be used on a negated description")
		}
		if err := p.advance(); err != nil {
			return err
		}
		numTok := p.tok
		group, err := strconv.Atoi(numTok.text)
		if numTok.kind != tokIdent || err != nil {
			return p.errorf("expected a group number, found %s", numTok)
		}
		if group < 1 || group > node.Desc.Regexp.NumSubexp() {
			return p.errorf("group %d out of range for /%s/", group, node.Desc.Regexp)
		}
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.expect(tokPercent, "'%'"); err != nil {
			return err
		}
		name, err := p.ident("variable name")
		if err != nil {
			return err
		}
		node.VarGroups = append(node.VarGroups, VarGroup{Group: group, Name: name})
	}
	return nil
}

// parseDescriptionBody reads ('!' | '@')* followed by alternated atoms. It
// reports whether any atom was present.
func (p *parser) parseDescriptionBody() (Description, bool, error) {
	var negated, basic bool
	for {
		if p.tok.kind == tokBang {
			if negated {
				return Description{}, false, p.errorf("description negated twice")
			}
			negated = true
		} else if p.tok.kind == tokAt {
			basic = true
		} else {
			break
		}
		if err := p.advance(); err != nil {
			return Description{}, false, err
		}
	}

	var atoms []descAtom
	atomPos := p.tok.pos
	for {
		a, ok := atomOf(p.tok)
		if !ok {
			break
		}
		atoms = append(atoms, a)
		if err := p.advance(); err != nil {
			return Description{}, false, err
		}
		if p.tok.kind != tokPipe {
			break
		}
		after, err := p.lx.peek()
		if err != nil {
			return Description{}, false, err
		}
		if _, ok := atomOf(after); !ok {
			break
		}
		if err := p.advance(); err != nil {
			return Description{}, false, err
		}
	}

	d := Description{Mode: DescNone}
	p.singleRegex = len(atoms) == 1 && atoms[0].regex
	if len(atoms) > 0 {
		var err error
		d, err = newDescription(atoms)
		if err != nil {
			return Description{}, false, &SyntaxError{Pattern: p.src, Pos: atomPos, Msg: err.Error()}
		}
	}
	d.Negated = negated
	if basic {
		if p.caps.BasicCategory == nil {
			return Description{}, false, p.errorf("'@' needs a basic category function")
		}
		d.BasicCategory = p.caps.BasicCategory
	}
	return d, len(atoms) > 0, nil
}

func atomOf(t token) (descAtom, bool) {
	switch t.kind {
	case tokIdent, tokString:
		return descAtom{text: t.text}, true
	case tokRegex:
		return descAtom{text: t.text, regex: true}, true
	case tokBlank:
		return descAtom{blank: true}, true
	}
	return descAtom{}, false
}
