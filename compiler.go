package tregex

import (
	"log/slog"
	"strings"
)

var discardLogger = slog.New(slog.DiscardHandler)

// defaultHeadFinder is shared by compilers that do not set their own, so
// head relations from separately compiled queries compare equal.
var defaultHeadFinder HeadFinder = NewCollinsHeadFinder()

// Compiler turns pattern text into a Query. A Compiler is immutable after
// construction and safe for concurrent use.
type Compiler struct {
	basicCat   BasicCategoryFunc
	headFinder HeadFinder
	macros     [][2]string
	logger     *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithBasicCategory sets the function used by '@' descriptions and by
// unbroken path categories. Nil disables '@'.
func WithBasicCategory(fn BasicCategoryFunc) Option {
	return func(c *Compiler) { c.basicCat = fn }
}

// WithHeadFinder sets the head finder closed over by head relations. Nil
// leaves head relations compilable but failing with ErrNoHeadFinder when
// evaluated.
func WithHeadFinder(hf HeadFinder) Option {
	return func(c *Compiler) { c.headFinder = hf }
}

// WithMacro adds a literal text substitution applied to pattern source
// before parsing. Macros apply in the order they were added.
func WithMacro(from, to string) Option {
	return func(c *Compiler) { c.macros = append(c.macros, [2]string{from, to}) }
}

// WithLogger sets the logger for compile diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCompiler creates a Compiler using PennBasicCategory and the Collins
// head rules unless overridden.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		basicCat:   PennBasicCategory,
		headFinder: defaultHeadFinder,
		logger:     discardLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capabilities returns the collaborators relations compiled by c close over.
func (c *Compiler) Capabilities() Capabilities {
	return Capabilities{HeadFinder: c.headFinder, BasicCategory: c.basicCat}
}

// Compile parses src. Errors are *SyntaxError values, which match
// ErrSyntax under errors.Is, and ErrConfig as well when caused by a
// malformed relation argument.
func (c *Compiler) Compile(src string) (*Query, error) {
	expanded := src
	for _, m := range c.macros {
		expanded = strings.ReplaceAll(expanded, m[0], m[1])
	}
	p := &parser{
		lx:    newLexer(expanded),
		src:   expanded,
		caps:  c.Capabilities(),
		names: make(map[string]bool),
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, p.errorf("empty pattern")
	}
	root, err := p.parseRoot()
	if err != nil {
		c.logger.Debug("pattern rejected", "pattern", expanded, "error", err)
		return nil, err
	}
	c.logger.Debug("pattern compiled", "pattern", src, "expanded", expanded, "ast", root.String())
	return &Query{root: root, source: src, logger: c.logger}, nil
}

// MustCompile is like Compile but panics on error.
func (c *Compiler) MustCompile(src string) *Query {
	q, err := c.Compile(src)
	if err != nil {
		panic(err)
	}
	return q
}

// Compile parses src with the default compiler.
func Compile(src string) (*Query, error) { return NewCompiler().Compile(src) }

// MustCompile is like Compile but panics on error. It simplifies
// initialization of package-level queries.
func MustCompile(src string) *Query { return NewCompiler().MustCompile(src) }
