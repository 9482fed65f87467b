package corpus

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tregex"
	"github.com/jward/tregex/internal/store"
	"github.com/jward/tregex/internal/syntax"
)

const (
	pennTwoTrees = "(S (NP (DT the) (NN dog)) (VP (VBD barked)))\n( (S (NP (PRP it)) (VP (VBD ran))))\n"
	goPackage    = "package main\n"
	goTree       = "(source_file (package_clause (package_identifier main)))"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithParser(syntax.NewParser(syntax.WithNamedOnly(true)))}, opts...)
	e, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func treeStrings(t *testing.T, e *Engine) []string {
	t.Helper()
	trees, _, err := e.Trees(context.Background())
	require.NoError(t, err)
	out := make([]string, len(trees))
	for i, tr := range trees {
		out[i] = tr.String()
	}
	return out
}

// --- Open ---

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/db.sqlite")
	require.Error(t, err)
}

func TestOpen_Defaults(t *testing.T) {
	e, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer e.Close()
	assert.NotNil(t, e.Store())
	assert.NotNil(t, e.loader)
	assert.GreaterOrEqual(t, e.workers, 1)
	assert.False(t, e.force)
}

// --- Index ---

func TestIndex_PennAndSource(t *testing.T) {
	e := newTestEngine(t, WithWorkers(2))
	dir := t.TempDir()
	penn := writeFile(t, dir, "a.mrg", pennTwoTrees)
	src := writeFile(t, dir, "b.go", goPackage)

	stats, err := e.Index(context.Background(), penn, src)
	require.NoError(t, err)
	assert.Equal(t, Stats{Files: 2, Indexed: 2, Trees: 3}, stats)

	trees, sources, err := e.Trees(context.Background())
	require.NoError(t, err)
	require.Len(t, trees, 3)
	assert.Equal(t, []Source{{penn, 0}, {penn, 1}, {src, 0}}, sources)
	assert.Equal(t, "(S (NP (DT the) (NN dog)) (VP (VBD barked)))", trees[0].String())
	assert.Equal(t, "( (S (NP (PRP it)) (VP (VBD ran))))", trees[1].String())
	assert.Equal(t, goTree, trees[2].String())

	banks, err := e.Treebanks()
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, FormatPenn, banks[0].Format)
	assert.Equal(t, 2, banks[0].TreeCount)
	assert.Equal(t, "go", banks[1].Format)
	assert.Equal(t, 1, banks[1].TreeCount)
	assert.Equal(t, store.ContentHash([]byte(goPackage)), banks[1].Hash)
}

func TestIndex_Directory(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	writeFile(t, dir, "wsj/00.mrg", pennTwoTrees)
	writeFile(t, dir, "notes.txt", "not a tree")

	stats, err := e.Index(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 2, stats.Trees)
}

func TestIndex_SkipsUnchangedFiles(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	penn := writeFile(t, dir, "a.mrg", pennTwoTrees)
	src := writeFile(t, dir, "b.go", goPackage)
	ctx := context.Background()

	_, err := e.Index(ctx, penn, src)
	require.NoError(t, err)

	stats, err := e.Index(ctx, penn, src)
	require.NoError(t, err)
	assert.Equal(t, Stats{Files: 2, Unchanged: 2}, stats)

	n, err := e.Store().TreeCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIndex_ForceReparses(t *testing.T) {
	dir := t.TempDir()
	penn := writeFile(t, dir, "a.mrg", pennTwoTrees)
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	e, err := Open(dbPath)
	require.NoError(t, err)
	_, err = e.Index(ctx, penn)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	forced, err := Open(dbPath, WithForce(true))
	require.NoError(t, err)
	defer forced.Close()
	stats, err := forced.Index(ctx, penn)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)

	n, err := forced.Store().TreeCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "old trees are replaced, not duplicated")
}

func TestIndex_ChangedFileIsReplaced(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	penn := writeFile(t, dir, "a.mrg", pennTwoTrees)
	ctx := context.Background()

	_, err := e.Index(ctx, penn)
	require.NoError(t, err)

	writeFile(t, dir, "a.mrg", "(S (NP (NNS cats)) (VP (VBP sleep)))\n")
	stats, err := e.Index(ctx, penn)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, []string{"(S (NP (NNS cats)) (VP (VBP sleep)))"}, treeStrings(t, e))

	bank, err := e.Store().TreebankByPath(penn)
	require.NoError(t, err)
	assert.Equal(t, 1, bank.TreeCount)
}

func TestIndex_RemovesDeletedFiles(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	penn := writeFile(t, dir, "a.mrg", pennTwoTrees)
	src := writeFile(t, dir, "b.go", goPackage)
	ctx := context.Background()

	_, err := e.Index(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(src))
	stats, err := e.Index(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Removed)

	banks, err := e.Treebanks()
	require.NoError(t, err)
	require.Len(t, banks, 1)
	assert.Equal(t, penn, banks[0].Path)
}

func TestIndex_ParseErrorIsReportedAndRetried(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "good.mrg", pennTwoTrees)
	bad := writeFile(t, dir, "bad.mrg", "(S (NP (DT the)")
	ctx := context.Background()

	stats, err := e.Index(ctx, good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.mrg")
	assert.Equal(t, 1, stats.Indexed)

	bank, err := e.Store().TreebankByPath(bad)
	require.NoError(t, err)
	assert.Nil(t, bank, "a failed file leaves no row behind")

	writeFile(t, dir, "bad.mrg", "(S (NP (DT the)))")
	stats, err = e.Index(ctx, good, bad)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 1, stats.Unchanged)
}

func TestIndex_MissingPath(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Index(context.Background(), filepath.Join(t.TempDir(), "nope.mrg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIndex_CancelledContext(t *testing.T) {
	e := newTestEngine(t)
	penn := writeFile(t, t.TempDir(), "a.mrg", pennTwoTrees)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Index(ctx, penn)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- Signature ---

func TestSignature_TracksCorpus(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	penn := writeFile(t, dir, "a.mrg", pennTwoTrees)
	ctx := context.Background()

	sig, err := e.Signature()
	require.NoError(t, err)
	assert.Empty(t, sig)

	_, err = e.Index(ctx, penn)
	require.NoError(t, err)
	first, err := e.Signature()
	require.NoError(t, err)
	banks, err := e.Treebanks()
	require.NoError(t, err)
	assert.Equal(t, store.CorpusSignature(banks), first)

	_, err = e.Index(ctx, penn)
	require.NoError(t, err)
	again, err := e.Signature()
	require.NoError(t, err)
	assert.Equal(t, first, again, "an unchanged corpus keeps its signature")

	writeFile(t, dir, "a.mrg", "(X y)")
	_, err = e.Index(ctx, penn)
	require.NoError(t, err)
	changed, err := e.Signature()
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

// --- Each ---

func TestEach_StopsOnEOF(t *testing.T) {
	e := newTestEngine(t)
	penn := writeFile(t, t.TempDir(), "a.mrg", pennTwoTrees)
	_, err := e.Index(context.Background(), penn)
	require.NoError(t, err)

	var seen []int
	err = e.Each(context.Background(), func(src Source, _ *tregex.Tree) error {
		seen = append(seen, src.Ordinal)
		return io.EOF
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, seen)
}

func TestEach_StoredTreesAreSearchable(t *testing.T) {
	e := newTestEngine(t)
	penn := writeFile(t, t.TempDir(), "a.mrg", pennTwoTrees)
	_, err := e.Index(context.Background(), penn)
	require.NoError(t, err)

	trees, _, err := e.Trees(context.Background())
	require.NoError(t, err)
	hits, err := tregex.MustCompile("NP < PRP").Searcher().Search(context.Background(), trees)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Tree)
}
