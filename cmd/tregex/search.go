package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/tregex"
	"github.com/jward/tregex/internal/corpus"
	"github.com/jward/tregex/internal/runtime"
	"github.com/jward/tregex/internal/syntax"
	"github.com/jward/tregex/scripts"
)

// searchFlags are the options of "tregex search".
type searchFlags struct {
	handles     []string
	count       bool
	whole       bool
	terminals   bool
	treeNumbers bool
	unique      bool
	namedOnly   bool
	headRules   string
	workers     int
}

// stdinName is the file argument that reads Penn trees from standard input.
const stdinName = "-"

func (c *cli) searchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search PATTERN [files...]",
		Short: "Find the nodes of every tree that match a pattern",
		Long: "Matches PATTERN against the trees of the given files, or against the indexed " +
			"corpus when no files are given. Penn Treebank files are read as bracketed trees; " +
			"source files are parsed with tree-sitter. Use \"-\" to read trees from stdin.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("named-only") {
				f.namedOnly = c.cfg.NamedOnly
			}
			if !cmd.Flags().Changed("workers") {
				f.workers = c.cfg.Workers
			}
			if f.headRules == "" {
				f.headRules = c.cfg.HeadRules
			}
			if err := c.runSearch(cmd.Context(), args[0], args[1:], f); err != nil {
				return c.outputError("search", err)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringArrayVarP(&f.handles, "handle", "H", nil, "print the node bound to this name instead of the match (repeatable)")
	fl.BoolVarP(&f.count, "count", "C", false, "print only the number of matches")
	fl.BoolVarP(&f.whole, "whole", "w", false, "print the whole tree of each match")
	fl.BoolVarP(&f.terminals, "terminals", "t", false, "print only the words under each printed node")
	fl.BoolVarP(&f.treeNumbers, "tree-numbers", "n", false, "prefix each match with its file and tree number")
	fl.BoolVarP(&f.unique, "unique", "u", false, "report each matched node once per tree")
	fl.BoolVar(&f.namedOnly, "named-only", false, "keep only named tree-sitter nodes when parsing source files")
	fl.StringVar(&f.headRules, "head-rules", "", "head-rule script: \"collins\", \"go\" or a path to a .risor file")
	fl.IntVar(&f.workers, "workers", 0, "trees searched at once (default: number of CPUs)")
	return cmd
}

func (c *cli) runSearch(ctx context.Context, pattern string, files []string, f searchFlags) error {
	in, err := c.loadInput(ctx, files, f.namedOnly)
	if err != nil {
		return err
	}

	// Code labels such as "short_var_declaration" contain annotation
	// characters, so basic categories are off for source trees unless the
	// configuration names its own annotation characters.
	basic := c.cfg.BasicCategory()
	if in.hasSource && c.cfg.AnnotationChars == nil {
		basic = nil
	}

	opts := append(c.cfg.CompilerOptions(),
		tregex.WithBasicCategory(basic),
		tregex.WithLogger(c.logger))
	headRules := f.headRules
	if headRules == "" && in.onlyFormat("go") {
		headRules = "go"
	}
	if headRules != "" {
		hf, err := c.loadHeadFinder(ctx, headRules, basic)
		if err != nil {
			return err
		}
		opts = append(opts, tregex.WithHeadFinder(hf))
	}

	q, err := tregex.NewCompiler(opts...).Compile(pattern)
	if err != nil {
		return err
	}
	hits, err := q.Searcher(
		tregex.WithWorkers(f.workers),
		tregex.WithUniqueNodes(f.unique),
		tregex.WithSearchLogger(c.logger),
	).Search(ctx, in.trees)
	if err != nil {
		return err
	}
	c.logger.Debug("search done", "pattern", q.String(), "trees", len(in.trees), "hits", len(hits))

	n := len(hits)
	c.handles, c.treeNumbers = f.handles, f.treeNumbers
	if f.count {
		return c.outputResult(CLIResult{Command: "search", TotalCount: &n})
	}
	return c.outputResult(CLIResult{
		Command:    "search",
		Results:    buildHits(in, hits, f),
		TotalCount: &n,
	})
}

// input is the set of trees a search runs over.
type input struct {
	trees     []*tregex.Tree
	sources   []corpus.Source
	formats   map[string]bool
	hasSource bool
}

func (in *input) add(src corpus.Source, format string, t *tregex.Tree) {
	in.trees = append(in.trees, t)
	in.sources = append(in.sources, src)
	in.formats[format] = true
	if format != corpus.FormatPenn {
		in.hasSource = true
	}
}

// onlyFormat reports whether every tree was read in format.
func (in *input) onlyFormat(format string) bool {
	return len(in.formats) == 1 && in.formats[format]
}

func (c *cli) loadInput(ctx context.Context, files []string, namedOnly bool) (*input, error) {
	in := &input{formats: make(map[string]bool)}
	if len(files) == 0 {
		return in, c.loadCorpus(ctx, in)
	}

	loader := corpus.NewLoader(syntax.NewParser(syntax.WithNamedOnly(namedOnly), syntax.WithLogger(c.logger)))
	for _, name := range files {
		if name == stdinName {
			trees, err := tregex.ReadTrees(c.stdin)
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			for i, t := range trees {
				in.add(corpus.Source{Path: "<stdin>", Ordinal: i}, corpus.FormatPenn, t)
			}
			continue
		}
		paths, err := corpus.Discover(name)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			format, trees, err := loader.Load(ctx, p)
			if err != nil {
				return nil, err
			}
			for i, t := range trees {
				in.add(corpus.Source{Path: p, Ordinal: i}, format, t)
			}
		}
	}
	return in, nil
}

func (c *cli) loadCorpus(ctx context.Context, in *input) error {
	ok, err := c.dbExists()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no files given and no corpus at %s; run \"tregex index\" first", c.cfg.DB)
	}
	engine, err := corpus.Open(c.cfg.DB, corpus.WithLogger(c.logger))
	if err != nil {
		return err
	}
	defer engine.Close()

	banks, err := engine.Treebanks()
	if err != nil {
		return err
	}
	formats := make(map[string]string, len(banks))
	for _, b := range banks {
		formats[b.Path] = b.Format
	}
	return engine.Each(ctx, func(src corpus.Source, t *tregex.Tree) error {
		in.add(src, formats[src.Path], t)
		return nil
	})
}

// loadHeadFinder resolves name to an embedded head-rule script, or to a
// script on disk when it looks like a path.
func (c *cli) loadHeadFinder(ctx context.Context, name string, basic tregex.BasicCategoryFunc) (tregex.HeadFinder, error) {
	opts := []runtime.RuntimeOption{
		runtime.WithRuntimeLogger(c.logger),
		runtime.WithRuntimeBasicCategory(basic),
	}
	if !strings.ContainsRune(name, filepath.Separator) && !strings.HasSuffix(name, ".risor") {
		rt := runtime.NewRuntime("", append(opts, runtime.WithRuntimeFS(scripts.FS))...)
		return rt.LoadHeadFinder(ctx, runtime.HeadRulesScriptPath(name))
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, err
	}
	rt := runtime.NewRuntime(filepath.Dir(abs), opts...)
	return rt.LoadHeadFinder(ctx, abs)
}
