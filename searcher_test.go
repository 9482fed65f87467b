package tregex

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTrees(t testing.TB, n int) []*Tree {
	t.Helper()
	trees := make([]*Tree, n)
	for i := range trees {
		trees[i] = MustParseTree(fmt.Sprintf("(S (NP (NN w%d)) (VP (VBD v) (NP (DT the) (NN n%d))))", i, i))
	}
	return trees
}

func TestSearcherMatchesSequentialOrder(t *testing.T) {
	t.Parallel()
	trees := testTrees(t, 40)
	q := MustCompile("NP=np < NN=nn")

	var want []Hit
	for i, tree := range trees {
		m := q.Matcher(tree)
		for {
			ok, err := m.Find()
			require.NoError(t, err)
			if !ok {
				break
			}
			n, err := m.Match()
			require.NoError(t, err)
			want = append(want, Hit{Tree: i, Node: n, Names: m.Bindings(), Vars: m.Variables()})
		}
	}
	require.Len(t, want, 80)

	for _, workers := range []int{1, 4, 0} {
		got, err := q.Searcher(WithWorkers(workers)).Search(context.Background(), trees)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("workers=%d (-sequential +parallel):\n%s", workers, diff)
		}
	}
}

func TestSearcherUniqueNodes(t *testing.T) {
	t.Parallel()
	trees := testTrees(t, 3)
	q := MustCompile("NP < __")

	n, err := q.Searcher().Count(context.Background(), trees)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	n, err = q.Searcher(WithUniqueNodes(true)).Count(context.Background(), trees)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestSearcherPropagatesErrors(t *testing.T) {
	t.Parallel()
	q, err := NewCompiler(WithHeadFinder(nil)).Compile("VP <# VBD")
	require.NoError(t, err)
	_, err = q.Searcher(WithWorkers(2)).Search(context.Background(), testTrees(t, 5))
	assert.ErrorIs(t, err, ErrNoHeadFinder)
}

func TestSearcherCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := MustCompile("NP").Searcher().Search(ctx, testTrees(t, 10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearcherEmpty(t *testing.T) {
	t.Parallel()
	hits, err := MustCompile("NP").Searcher().Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
