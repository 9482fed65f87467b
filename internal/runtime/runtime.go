package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/tregex"
)

// Runtime embeds a Risor VM and provides the host functions head-rule
// scripts use to describe how the head of each category is found.
type Runtime struct {
	scriptsDir    string
	fsys          fs.FS
	logger        *slog.Logger
	basicCategory tregex.BasicCategoryFunc
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithRuntimeLogger routes the script "log" global to l.
func WithRuntimeLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRuntimeBasicCategory sets the function behind the basic_category
// builtin and the one head finders built from scripts use to look up
// rules. A nil fn disables both.
func WithRuntimeBasicCategory(fn tregex.BasicCategoryFunc) RuntimeOption {
	return func(r *Runtime) {
		r.basicCategory = fn
	}
}

// NewRuntime creates a Runtime that resolves relative script paths against
// scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir:    scriptsDir,
		logger:        slog.New(slog.DiscardHandler),
		basicCategory: tregex.PennBasicCategory,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a Risor script with all standard globals
// plus any extra globals provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly with all standard globals
// plus any extra globals. Useful for testing without script files.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

// HeadRuleSet is what a head-rule script declares.
type HeadRuleSet struct {
	Rules   tregex.HeadRules
	Default []tregex.HeadRule
}

// LoadHeadRules runs the head-rule script at scriptPath and returns the
// rules it registered through head_rule and default_head_rule.
func (r *Runtime) LoadHeadRules(ctx context.Context, scriptPath string) (*HeadRuleSet, error) {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return r.headRules(ctx, src, scriptPath)
}

// HeadRulesFromSource is LoadHeadRules for inline source.
func (r *Runtime) HeadRulesFromSource(ctx context.Context, source string) (*HeadRuleSet, error) {
	return r.headRules(ctx, source, "<inline>")
}

func (r *Runtime) headRules(ctx context.Context, source, label string) (*HeadRuleSet, error) {
	c := newRuleCollector()
	if err := r.eval(ctx, source, label, c.globals()); err != nil {
		return nil, err
	}
	set := c.result()
	if len(set.Rules) == 0 && len(set.Default) == 0 {
		return nil, fmt.Errorf("runtime: script %s declares no head rules: %w", label, tregex.ErrConfig)
	}
	r.logger.Debug("head rules loaded", "script", label, "categories", len(set.Rules), "default", len(set.Default) > 0)
	return set, nil
}

// LoadHeadFinder runs a head-rule script and builds a head finder from it.
func (r *Runtime) LoadHeadFinder(ctx context.Context, scriptPath string) (*tregex.RuleHeadFinder, error) {
	set, err := r.LoadHeadRules(ctx, scriptPath)
	if err != nil {
		return nil, err
	}
	return r.HeadFinder(set)
}

// HeadFinder builds a head finder from set using the Runtime's basic
// category function.
func (r *Runtime) HeadFinder(set *HeadRuleSet) (*tregex.RuleHeadFinder, error) {
	hf, err := tregex.NewRuleHeadFinder(set.Rules,
		tregex.WithDefaultHeadRule(set.Default...),
		tregex.WithHeadBasicCategory(r.basicCategory))
	if err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}
	return hf, nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	_, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on the embedded filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		// For fs.FS, strip any leading path separator so the path is
		// relative within the FS (e.g., "/headrules/go.risor" -> "headrules/go.risor").
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// HeadRulesScriptPath returns the path to a named head-rule script.
func HeadRulesScriptPath(name string) string {
	return filepath.Join("headrules", name+".risor")
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"basic_category": makeBasicCategoryFn(r.basicCategory),
		"log":            mustProxy(&logObject{logger: r.logger}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
