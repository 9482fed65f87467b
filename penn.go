package tregex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// TreeReader reads Penn Treebank bracketed trees one at a time.
type TreeReader struct {
	r    *bufio.Reader
	pos  int
	peek *pennToken
}

type pennTokenKind int

const (
	pennOpen pennTokenKind = iota
	pennClose
	pennAtom
	pennEOF
)

type pennToken struct {
	kind pennTokenKind
	text string
	pos  int
}

// NewTreeReader returns a reader over r.
func NewTreeReader(r io.Reader) *TreeReader {
	return &TreeReader{r: bufio.NewReader(r)}
}

// ParseTree parses exactly one tree from s.
func ParseTree(s string) (*Tree, error) {
	tr := NewTreeReader(strings.NewReader(s))
	t, err := tr.Next()
	if err == io.EOF {
		return nil, fmt.Errorf("tregex: parse tree: empty input")
	}
	if err != nil {
		return nil, err
	}
	tok, err := tr.token()
	if err != nil {
		return nil, err
	}
	if tok.kind != pennEOF {
		return nil, fmt.Errorf("tregex: parse tree: trailing input at offset %d", tok.pos)
	}
	return t, nil
}

// MustParseTree is like ParseTree but panics on error.
func MustParseTree(s string) *Tree {
	t, err := ParseTree(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ReadTrees reads every tree from r.
func ReadTrees(r io.Reader) ([]*Tree, error) {
	tr := NewTreeReader(r)
	var trees []*Tree
	for {
		t, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return trees, nil
		}
		if err != nil {
			return trees, err
		}
		trees = append(trees, t)
	}
}

// Next returns the next tree, or io.EOF when the input is exhausted. An
// unlabeled outer bracket, as in "( (S ...))", becomes a root with an
// empty label.
func (tr *TreeReader) Next() (*Tree, error) {
	tok, err := tr.token()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case pennEOF:
		return nil, io.EOF
	case pennAtom:
		// A bare word is a one-node tree.
		return NewTree(tok.text), nil
	case pennClose:
		return nil, fmt.Errorf("tregex: parse tree: unexpected ')' at offset %d", tok.pos)
	}

	var t *Tree
	var stack []NodeID
	// open creates the node for a '(' whose label may or may not follow.
	open := func() error {
		label := ""
		next, err := tr.peekToken()
		if err != nil {
			return err
		}
		if next.kind == pennAtom {
			label = next.text
			tr.peek = nil
		}
		if t == nil {
			t = NewTree(label)
			stack = append(stack, t.Root())
			return nil
		}
		stack = append(stack, t.AddChild(stack[len(stack)-1], label))
		return nil
	}
	if err := open(); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		tok, err := tr.token()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case pennOpen:
			if err := open(); err != nil {
				return nil, err
			}
		case pennClose:
			stack = stack[:len(stack)-1]
		case pennAtom:
			t.AddChild(stack[len(stack)-1], tok.text)
		case pennEOF:
			return nil, fmt.Errorf("tregex: parse tree: unbalanced brackets at end of input")
		}
	}
	return t, nil
}

func (tr *TreeReader) peekToken() (*pennToken, error) {
	if tr.peek != nil {
		return tr.peek, nil
	}
	tok, err := tr.scan()
	if err != nil {
		return nil, err
	}
	tr.peek = &tok
	return tr.peek, nil
}

func (tr *TreeReader) token() (pennToken, error) {
	if tr.peek != nil {
		tok := *tr.peek
		tr.peek = nil
		return tok, nil
	}
	return tr.scan()
}

func (tr *TreeReader) scan() (pennToken, error) {
	for {
		r, size, err := tr.r.ReadRune()
		if err == io.EOF {
			return pennToken{kind: pennEOF, pos: tr.pos}, nil
		}
		if err != nil {
			return pennToken{}, fmt.Errorf("tregex: read tree: %w", err)
		}
		start := tr.pos
		tr.pos += size
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '(':
			return pennToken{kind: pennOpen, pos: start}, nil
		case r == ')':
			return pennToken{kind: pennClose, pos: start}, nil
		}
		var b strings.Builder
		b.WriteRune(r)
		for {
			r, size, err := tr.r.ReadRune()
			if err == io.EOF {
				break
			}
			if err != nil {
				return pennToken{}, fmt.Errorf("tregex: read tree: %w", err)
			}
			if unicode.IsSpace(r) || r == '(' || r == ')' {
				if err := tr.r.UnreadRune(); err != nil {
					return pennToken{}, fmt.Errorf("tregex: read tree: %w", err)
				}
				break
			}
			tr.pos += size
			b.WriteRune(r)
		}
		return pennToken{kind: pennAtom, text: b.String(), pos: start}, nil
	}
}
