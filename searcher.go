package tregex

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Hit is one match found by a Searcher.
type Hit struct {
	Tree  int               // index of the tree in the searched slice
	Node  NodeID            // matched node
	Names map[string]NodeID // named nodes bound by the match
	Vars  map[string]string // variable strings bound by the match
}

// Searcher runs one Query over many trees with a bounded pool of workers.
// Each tree gets its own Matcher, so the shared Query is only read.
type Searcher struct {
	q       *Query
	workers int
	unique  bool
	logger  *slog.Logger
}

// SearchOption configures a Searcher.
type SearchOption func(*Searcher)

// WithWorkers bounds the number of trees searched at once. Values below 1
// mean runtime.NumCPU().
func WithWorkers(n int) SearchOption {
	return func(s *Searcher) { s.workers = n }
}

// WithUniqueNodes reports each matched node once per tree, however many
// configurations match it.
func WithUniqueNodes(unique bool) SearchOption {
	return func(s *Searcher) { s.unique = unique }
}

// WithSearchLogger sets the logger for per-search summaries.
func WithSearchLogger(l *slog.Logger) SearchOption {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// Searcher returns a Searcher for q.
func (q *Query) Searcher(opts ...SearchOption) *Searcher {
	s := &Searcher{q: q, logger: q.logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.NumCPU()
	}
	if s.logger == nil {
		s.logger = discardLogger
	}
	return s
}

// Search matches every tree and returns the hits ordered by tree index and
// then by match order within the tree. Cancellation is checked between
// trees; a tree already being searched runs to completion.
func (s *Searcher) Search(ctx context.Context, trees []*Tree) ([]Hit, error) {
	start := time.Now()
	perTree := make([][]Hit, len(trees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.workers, max(len(trees), 1)))
	for i, t := range trees {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hits, err := s.searchTree(i, t)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			perTree[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hits []Hit
	for _, h := range perTree {
		hits = append(hits, h...)
	}
	s.logger.Debug("search finished",
		"pattern", s.q.String(),
		"trees", len(trees),
		"hits", len(hits),
		"workers", s.workers,
		"elapsed", time.Since(start))
	return hits, nil
}

// Count returns the number of hits Search would return.
func (s *Searcher) Count(ctx context.Context, trees []*Tree) (int, error) {
	hits, err := s.Search(ctx, trees)
	return len(hits), err
}

func (s *Searcher) searchTree(idx int, t *Tree) ([]Hit, error) {
	m := s.q.Matcher(t)
	next := m.Find
	if s.unique {
		next = m.FindNextMatchingNode
	}
	var hits []Hit
	for {
		ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return hits, nil
		}
		hits = append(hits, Hit{
			Tree:  idx,
			Node:  m.matchedNode(),
			Names: m.Bindings(),
			Vars:  m.Variables(),
		})
	}
}
