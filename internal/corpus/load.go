package corpus

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/jward/tregex"
	"github.com/jward/tregex/internal/syntax"
)

// FormatPenn is the format recorded for bracketed treebank files. Source
// files record their language instead.
const FormatPenn = "penn"

var pennExtensions = map[string]bool{
	".mrg":   true,
	".penn":  true,
	".ptb":   true,
	".tree":  true,
	".trees": true,
}

// FormatForFile reports the format a file is read in: FormatPenn for
// treebank files or the tree-sitter language of a source file.
func FormatForFile(path string) (string, bool) {
	if pennExtensions[extension(path)] {
		return FormatPenn, true
	}
	return syntax.LanguageForFile(path)
}

// Loader turns one input file into trees.
type Loader struct {
	parser *syntax.Parser
}

// NewLoader returns a Loader that parses source files with p.
func NewLoader(p *syntax.Parser) *Loader {
	if p == nil {
		p = syntax.NewParser()
	}
	return &Loader{parser: p}
}

// Load reads path and returns its format and trees.
func (l *Loader) Load(ctx context.Context, path string) (string, []*tregex.Tree, error) {
	format, ok := FormatForFile(path)
	if !ok {
		return "", nil, fmt.Errorf("corpus: %s: %w", path, syntax.ErrUnsupportedLanguage)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("corpus: %w", err)
	}
	trees, err := l.Decode(ctx, content, format)
	if err != nil {
		return "", nil, fmt.Errorf("corpus: %s: %w", path, err)
	}
	return format, trees, nil
}

// Decode parses content that is already in memory. A Penn file yields
// every bracketed tree in it; a source file yields exactly one tree.
func (l *Loader) Decode(ctx context.Context, content []byte, format string) ([]*tregex.Tree, error) {
	if format == FormatPenn {
		return tregex.ReadTrees(bytes.NewReader(content))
	}
	t, err := l.parser.Parse(ctx, content, format)
	if err != nil {
		return nil, err
	}
	return []*tregex.Tree{t}, nil
}
