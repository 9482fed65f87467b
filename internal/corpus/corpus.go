// Package corpus indexes treebank and source files into the SQLite store
// and streams the stored trees back for searching.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/tregex"
	"github.com/jward/tregex/internal/store"
	"github.com/jward/tregex/internal/syntax"
)

// SignatureKey is the metadata key holding the corpus signature written
// after every index run.
const SignatureKey = "corpus_signature"

// Engine orchestrates indexing: discovery, change detection, parallel
// parsing and batched commits.
type Engine struct {
	store   *store.Store
	loader  *Loader
	logger  *slog.Logger
	workers int
	force   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for indexing progress.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers bounds the number of files parsed at once. Values below 1
// mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithParser sets the parser used for source files.
func WithParser(p *syntax.Parser) Option {
	return func(e *Engine) { e.loader = NewLoader(p) }
}

// WithForce reindexes files even when their content hash is unchanged.
func WithForce(force bool) Option {
	return func(e *Engine) { e.force = force }
}

// Open creates an Engine backed by a SQLite database at dbPath.
func Open(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("corpus: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("corpus: migrate: %w", err)
	}
	e := &Engine{
		store:  s,
		loader: NewLoader(nil),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.NumCPU()
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Stats summarizes one Index call.
type Stats struct {
	Files     int // input files discovered
	Indexed   int // files parsed and committed
	Unchanged int // files skipped by hash
	Removed   int // treebanks dropped because their file is gone
	Trees     int // trees committed
}

// workItem holds everything a parse worker needs.
type workItem struct {
	path    string
	format  string
	content []byte
	bank    *store.Treebank
	batch   *store.BatchedStore
	err     error
}

// Index discovers the input files under paths and brings the store up to
// date with them in three phases:
//
//	Phase A (serial):   hash check, drop stale trees, upsert treebank rows.
//	Phase B (parallel): parse every changed file into its own batch.
//	Phase C (serial):   commit batches in input order.
//
// A file that fails to parse is reported and its treebank row removed, so
// the next run retries it. Treebanks whose file no longer exists are
// removed afterwards.
func (e *Engine) Index(ctx context.Context, paths ...string) (Stats, error) {
	start := time.Now()
	var stats Stats

	files, err := Discover(paths...)
	if err != nil {
		return stats, err
	}
	stats.Files = len(files)

	// ---- Phase A: Serial preparation ----
	var items []*workItem
	for _, path := range files {
		item, skip, err := e.prepareFile(path)
		if err != nil {
			return stats, fmt.Errorf("corpus: prepare %s: %w", path, err)
		}
		if skip {
			stats.Unchanged++
			continue
		}
		items = append(items, item)
	}

	// ---- Phase B: Parallel parsing ----
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item.err = e.parseFile(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ids := make([]int64, len(items))
		for i, item := range items {
			ids[i] = item.bank.ID
		}
		if derr := e.store.DeleteTreebanks(ids...); derr != nil {
			return stats, errors.Join(err, derr)
		}
		return stats, err
	}

	// ---- Phase C: Serial commit ----
	var errs []error
	for _, item := range items {
		if item.err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", item.path, item.err))
			if err := e.store.DeleteTreebanks(item.bank.ID); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := e.store.CommitBatch(item.batch); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", item.path, err))
			continue
		}
		stats.Indexed++
		stats.Trees += len(item.batch.Trees)
		e.logger.Debug("indexed file", "path", item.path, "format", item.format, "trees", len(item.batch.Trees))
	}

	removed, err := e.Prune(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	stats.Removed = removed

	if err := e.storeSignature(); err != nil {
		errs = append(errs, err)
	}

	e.logger.Info("index finished",
		"files", stats.Files,
		"indexed", stats.Indexed,
		"unchanged", stats.Unchanged,
		"removed", stats.Removed,
		"trees", stats.Trees,
		"elapsed", time.Since(start))

	if len(errs) > 0 {
		return stats, fmt.Errorf("corpus: indexing had %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return stats, nil
}

// prepareFile does Phase A work for one file. skip is true when the file
// is unchanged.
func (e *Engine) prepareFile(path string) (*workItem, bool, error) {
	format, ok := FormatForFile(path)
	if !ok {
		return nil, true, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	hash := store.ContentHash(content)

	bank, err := e.store.TreebankByPath(path)
	if err != nil {
		return nil, false, err
	}
	if bank != nil && bank.Hash == hash && bank.Format == format && !e.force {
		return nil, true, nil
	}

	now := time.Now()
	if bank != nil {
		if err := e.store.DeleteTreebankData(bank.ID); err != nil {
			return nil, false, err
		}
		bank.Format, bank.Hash, bank.LastIndexed = format, hash, now
		if err := e.store.UpdateTreebank(bank); err != nil {
			return nil, false, err
		}
	} else {
		bank = &store.Treebank{Path: path, Format: format, Hash: hash, LastIndexed: now}
		if _, err := e.store.InsertTreebank(bank); err != nil {
			return nil, false, err
		}
	}

	return &workItem{
		path:    path,
		format:  format,
		content: content,
		bank:    bank,
		batch:   store.NewBatchedStore(e.store),
	}, false, nil
}

// parseFile does Phase B work: decode the content and buffer its trees.
func (e *Engine) parseFile(ctx context.Context, item *workItem) error {
	trees, err := e.loader.Decode(ctx, item.content, item.format)
	if err != nil {
		return err
	}
	for i, t := range trees {
		_, err := item.batch.InsertTree(&store.TreeRecord{
			TreebankID: item.bank.ID,
			Ordinal:    i,
			Penn:       t.String(),
			NodeCount:  t.Len(),
			LeafCount:  len(t.Leaves(t.Root())),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Prune removes treebanks whose file no longer exists and reports how many
// were removed.
func (e *Engine) Prune(ctx context.Context) (int, error) {
	banks, err := e.store.Treebanks()
	if err != nil {
		return 0, fmt.Errorf("corpus: %w", err)
	}
	var gone []int64
	for _, b := range banks {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := os.Stat(b.Path); errors.Is(err, os.ErrNotExist) {
			gone = append(gone, b.ID)
			e.logger.Debug("removing treebank", "path", b.Path)
		}
	}
	if len(gone) == 0 {
		return 0, nil
	}
	if err := e.store.DeleteTreebanks(gone...); err != nil {
		return 0, fmt.Errorf("corpus: %w", err)
	}
	return len(gone), nil
}

func (e *Engine) storeSignature() error {
	banks, err := e.store.Treebanks()
	if err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	if err := e.store.SetMetadata(SignatureKey, store.CorpusSignature(banks)); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	return nil
}

// Signature returns the signature stored by the last Index call, or "" if
// the corpus has never been indexed.
func (e *Engine) Signature() (string, error) {
	sig, _, err := e.store.Metadata(SignatureKey)
	if err != nil {
		return "", fmt.Errorf("corpus: %w", err)
	}
	return sig, nil
}

// Treebanks lists the indexed files ordered by path.
func (e *Engine) Treebanks() ([]*store.Treebank, error) {
	banks, err := e.store.Treebanks()
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	return banks, nil
}

// Source locates a stored tree.
type Source struct {
	Path    string
	Ordinal int
}

// Each streams every stored tree to fn in path and ordinal order. Returning
// io.EOF from fn stops the iteration without error.
func (e *Engine) Each(ctx context.Context, fn func(src Source, t *tregex.Tree) error) error {
	err := e.store.EachTree(ctx, func(path string, tr *store.TreeRecord) error {
		t, err := tregex.ParseTree(tr.Penn)
		if err != nil {
			return fmt.Errorf("corpus: stored tree %s#%d: %w", path, tr.Ordinal, err)
		}
		return fn(Source{Path: path, Ordinal: tr.Ordinal}, t)
	})
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Trees loads every stored tree into memory along with where it came from.
func (e *Engine) Trees(ctx context.Context) ([]*tregex.Tree, []Source, error) {
	var (
		trees   []*tregex.Tree
		sources []Source
	)
	err := e.Each(ctx, func(src Source, t *tregex.Tree) error {
		trees = append(trees, t)
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return trees, sources, nil
}
