// Package syntax turns source code into labeled ordered trees. Files are
// parsed with tree-sitter and every syntax node becomes a tree node labeled
// with its node type, so tree patterns can be run over code:
//
//	function_declaration < (identifier < /^Test/)
//
// A token becomes a preterminal: its node type dominates a leaf holding
// the token text.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/tregex"
)

// ErrUnsupportedLanguage is returned for languages with no grammar.
var ErrUnsupportedLanguage = errors.New("syntax: unsupported language")

// Parser converts source files to trees. A Parser is safe for concurrent
// use; each call builds its own tree-sitter parser.
type Parser struct {
	namedOnly bool
	logger    *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithNamedOnly drops anonymous nodes (keywords, punctuation) so that
// only named grammar nodes remain.
func WithNamedOnly(named bool) Option {
	return func(p *Parser) { p.namedOnly = named }
}

// WithLogger sets the logger that reports inputs with syntax errors.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ParseFile reads path and parses it with the grammar chosen by its
// extension.
func (p *Parser) ParseFile(ctx context.Context, path string) (*tregex.Tree, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("syntax: reading %s: %w", path, err)
	}
	tree, err := p.Parse(ctx, src, lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Parse parses src as lang. Source with syntax errors still yields a tree;
// the broken regions appear as ERROR nodes.
func (p *Parser) Parse(ctx context.Context, src []byte, lang string) (*tregex.Tree, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: tree-sitter parse failed: %w", err)
	}
	root := st.RootNode()
	if root.HasError() {
		p.logger.Warn("source has syntax errors", "language", lang, "bytes", len(src))
	}
	return p.convert(root, src), nil
}

// convert copies the syntax tree into an arena tree in preorder, without
// recursion, so node IDs follow document order.
func (p *Parser) convert(root *sitter.Node, src []byte) *tregex.Tree {
	type frame struct {
		node   *sitter.Node
		parent tregex.NodeID
	}
	out := tregex.NewTree(EscapeLabel(root.Type()))
	var stack []frame
	push := func(n *sitter.Node, id tregex.NodeID) {
		kids := p.children(n, src)
		if len(kids) == 0 {
			if text, ok := tokenText(n, src); ok {
				out.AddChild(id, text)
			}
			return
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: kids[i], parent: id})
		}
	}

	push(root, out.Root())
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(f.node, out.AddChild(f.parent, EscapeLabel(f.node.Type())))
	}
	return out
}

func (p *Parser) children(n *sitter.Node, src []byte) []*sitter.Node {
	var kids []*sitter.Node
	if p.namedOnly {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			kids = append(kids, n.NamedChild(i))
		}
		return kids
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		// Statement terminators such as Go's newline carry no text.
		if !c.IsNamed() && c.ChildCount() == 0 {
			if _, ok := tokenText(c, src); !ok {
				continue
			}
		}
		kids = append(kids, c)
	}
	return kids
}

func tokenText(n *sitter.Node, src []byte) (string, bool) {
	text := n.Content(src)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return EscapeLabel(text), true
}

var labelEscaper = strings.NewReplacer("(", "-LRB-", ")", "-RRB-")

// EscapeLabel makes s safe as a bracketed tree label: parentheses become
// -LRB- and -RRB- and runs of white space become a single underscore.
func EscapeLabel(s string) string {
	fields := strings.Fields(labelEscaper.Replace(s))
	if len(fields) == 0 {
		return "_"
	}
	return strings.Join(fields, "_")
}
