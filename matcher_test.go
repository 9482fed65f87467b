package tregex

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findAll(t *testing.T, pattern, tree string) []NodeID {
	t.Helper()
	q, err := Compile(pattern)
	require.NoError(t, err, pattern)
	got, err := q.FindAll(MustParseTree(tree))
	require.NoError(t, err, pattern)
	return got
}

// matchRecord is one Find result with everything it bound.
type matchRecord struct {
	Anchor NodeID
	Node   NodeID
	Names  map[string]NodeID
	Vars   map[string]string
}

func drain(t *testing.T, m *Matcher) []matchRecord {
	t.Helper()
	var out []matchRecord
	for {
		ok, err := m.Find()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, matchRecord{
			Anchor: m.Anchor(),
			Node:   m.matchedNode(),
			Names:  m.Bindings(),
			Vars:   m.Variables(),
		})
	}
}

func TestMatcherSisterPrecedence(t *testing.T) {
	t.Parallel()
	tree := MustParseTree("(S (NP (NNP Bank)) (VP (VBD called)))")
	m := MustCompile("NP $+ VP").Matcher(tree)

	ok, err := m.Find()
	require.NoError(t, err)
	require.True(t, ok)
	n, err := m.Match()
	require.NoError(t, err)
	assert.Equal(t, "NP", tree.Label(n))
	assert.Equal(t, NodeID(1), n)

	ok, err = m.Find()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatcherBasicCategory(t *testing.T) {
	t.Parallel()
	tree := "(S (NP-SBJ (NN dog)) (VP (VBZ barks)))"
	assert.Equal(t, ids(1), findAll(t, "@NP < /^NN/", tree))
	assert.Empty(t, findAll(t, "NP < /^NN/", tree))
	assert.Equal(t, ids(1), findAll(t, "@NP|VP <: NN", tree))
}

func TestMatcherDisjunction(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ids(0), findAll(t, "S [< NP | < VP]", "(S (NP x))"))
	assert.Empty(t, findAll(t, "S [< NP | < VP]", "(S (PP x))"))
	assert.Equal(t, ids(0, 0), findAll(t, "S [< NP | < VP]", "(S (NP x) (VP y))"))
	assert.Equal(t, ids(0, 0), findAll(t, "S < NP | < VP", "(S (NP x) (VP y))"))
}

func TestMatcherVariableGroups(t *testing.T) {
	t.Parallel()
	const pattern = `/^(.*)-([0-9]+)$/#2%idx .. /^(.*)-([0-9]+)$/#2%idx`

	q := MustCompile(pattern)
	agree := MustParseTree("(S (NP-1 a) (VP-1 b))")
	m := q.Matcher(agree)
	ok, err := m.Find()
	require.NoError(t, err)
	require.True(t, ok)
	v, ok := m.VariableString("idx")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	ok, err = m.Find()
	require.NoError(t, err)
	assert.False(t, ok)

	_, bound := m.VariableString("idx")
	assert.False(t, bound, "variables are released once the search is exhausted")

	differ := MustParseTree("(S (NP-1 a) (VP-2 b))")
	ok, err = q.MatchesTree(differ)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatcherVariableGroupsBacktrack(t *testing.T) {
	t.Parallel()
	tree := "(S (NP-1 a) (NP-2 b) (VP-2 c) (VP-1 d))"
	got := drain(t, MustCompile(`/^NP-([0-9]+)$/#1%i=np .. /^VP-([0-9]+)$/#1%i=vp`).Matcher(MustParseTree(tree)))
	want := []matchRecord{
		{Anchor: 1, Node: 1, Names: map[string]NodeID{"np": 1, "vp": 7}, Vars: map[string]string{"i": "1"}},
		{Anchor: 3, Node: 3, Names: map[string]NodeID{"np": 3, "vp": 5}, Vars: map[string]string{"i": "2"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matches (-want +got):\n%s", diff)
	}
}

func TestMatcherDeterministic(t *testing.T) {
	t.Parallel()
	tree := catTree(t)
	q := MustCompile("__=parent < __=child")

	first := drain(t, q.Matcher(tree))
	second := drain(t, q.Matcher(tree))
	require.Len(t, first, 17)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}

	m := q.Matcher(tree)
	drain(t, m)
	m.Reset()
	if diff := cmp.Diff(first, drain(t, m)); diff != "" {
		t.Errorf("run after Reset differs (-first +after):\n%s", diff)
	}
}

func TestMatcherConjunctionEnumeratesAllPairs(t *testing.T) {
	t.Parallel()
	tree := MustParseTree("(S (NP a) (NP b) (VP c))")
	got := drain(t, MustCompile("S < NP=n < VP=v").Matcher(tree))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]NodeID{"n": 1, "v": 5}, got[0].Names)
	assert.Equal(t, map[string]NodeID{"n": 3, "v": 5}, got[1].Names)
}

func matchesAt(t *testing.T, q *Query, tree *Tree, n NodeID) bool {
	t.Helper()
	m := q.Matcher(tree)
	ok, err := m.MatchesAt(n)
	require.NoError(t, err)
	return ok
}

func TestMatcherBooleanLaws(t *testing.T) {
	t.Parallel()
	trees := []*Tree{
		catTree(t),
		MustParseTree("(S (NP a) (NP b) (VP c))"),
		MustParseTree("(S (VP (NP x)) (X (NP y) (VP z)))"),
	}
	a := MustCompile("__ < NP")
	b := MustCompile("__ < VP")
	and := MustCompile("__ < NP < VP")
	or := MustCompile("__ [< NP | < VP]")
	notA := MustCompile("__ !< NP")
	nand := MustCompile("__ ![< NP < VP]")
	deMorgan := MustCompile("__ [!< NP | !< VP]")
	nor := MustCompile("__ ![< NP | < VP]")
	deMorganOr := MustCompile("__ !< NP !< VP")

	for ti, tree := range trees {
		for n := NodeID(0); int(n) < tree.Len(); n++ {
			ma, mb := matchesAt(t, a, tree, n), matchesAt(t, b, tree, n)
			assert.Equal(t, ma && mb, matchesAt(t, and, tree, n), "tree %d node %d and", ti, n)
			assert.Equal(t, ma || mb, matchesAt(t, or, tree, n), "tree %d node %d or", ti, n)
			assert.Equal(t, !ma, matchesAt(t, notA, tree, n), "tree %d node %d not", ti, n)
			assert.Equal(t, !(ma && mb), matchesAt(t, nand, tree, n), "tree %d node %d nand", ti, n)
			assert.Equal(t, matchesAt(t, nand, tree, n), matchesAt(t, deMorgan, tree, n), "tree %d node %d", ti, n)
			assert.Equal(t, !(ma || mb), matchesAt(t, nor, tree, n), "tree %d node %d nor", ti, n)
			assert.Equal(t, matchesAt(t, nor, tree, n), matchesAt(t, deMorganOr, tree, n), "tree %d node %d", ti, n)
		}
	}
}

func TestMatcherNegationIsSingleShot(t *testing.T) {
	t.Parallel()
	tree := MustParseTree("(S (NP x) (NP y))")
	m := MustCompile("S !< PP").Matcher(tree)

	ok, err := m.MatchesAt(0)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.Matches()
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, ids(0), findAll(t, "S !< PP", "(S (NP x) (NP y))"))
	assert.Equal(t, ids(0), findAll(t, "S ![< PP | < VP]", "(S (NP x) (NP y))"))
}

func TestMatcherOptional(t *testing.T) {
	t.Parallel()
	q := MustCompile("S ?< PP=p < NP=n")

	without := drain(t, q.Matcher(MustParseTree("(S (NP x))")))
	require.Len(t, without, 1)
	assert.Equal(t, map[string]NodeID{"n": 1}, without[0].Names)

	with := drain(t, q.Matcher(MustParseTree("(S (NP x) (PP y))")))
	require.Len(t, with, 1)
	assert.Equal(t, map[string]NodeID{"n": 1, "p": 3}, with[0].Names)
}

func TestMatcherBackreferenceAndLink(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ids(0), findAll(t, "S < NP=a < =a", "(S (NP x))"))
	assert.Equal(t, ids(0, 0), findAll(t, "S < NP=a < =a", "(S (NP a) (NP b) (VP c))"))
	assert.Empty(t, findAll(t, "S < NP=a $+ =a", "(S (NP a) (NP b))"))

	tree := MustParseTree("(S (NP (DT a)) (VP (NP (DT b))))")
	got := drain(t, MustCompile("__=a .. ~a=b").Matcher(tree))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]NodeID{"a": 1, "b": 5}, got[0].Names)
	assert.Equal(t, map[string]NodeID{"a": 2, "b": 6}, got[1].Names)
}

func TestMatcherSegments(t *testing.T) {
	t.Parallel()
	tree := MustParseTree("(S (NP (NNP Bank)) (VP (VBD called)))")
	m := MustCompile("NP=a : VP=b").Matcher(tree)

	ok, err := m.Find()
	require.NoError(t, err)
	require.True(t, ok)
	a, _ := m.Node("a")
	b, _ := m.Node("b")
	assert.Equal(t, NodeID(1), a)
	assert.Equal(t, NodeID(4), b)
	assert.Equal(t, []string{"a", "b"}, m.NodeNames())

	_, err = m.Match()
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
	assert.ErrorIs(t, err, ErrUsage)

	ok, err = m.Find()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatcherFindNextMatchingNode(t *testing.T) {
	t.Parallel()
	tree := catTree(t)
	q := MustCompile("__ < __")

	all, err := q.FindAll(tree)
	require.NoError(t, err)
	assert.Len(t, all, 17)

	m := q.Matcher(tree)
	var unique []NodeID
	for {
		ok, err := m.FindNextMatchingNode()
		require.NoError(t, err)
		if !ok {
			break
		}
		n, err := m.Match()
		require.NoError(t, err)
		unique = append(unique, n)
	}
	assert.Equal(t, ids(0, 1, 2, 3, 5, 7, 8, 10, 11, 13, 14, 16), unique)
}

func TestMatcherFindAt(t *testing.T) {
	t.Parallel()
	tree := catTree(t)
	m := MustCompile("NP < __").Matcher(tree)

	ok, err := m.FindAt(2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.FindAt(2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.FindAt(2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.FindAt(13)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAnchorChanged))
	assert.ErrorIs(t, err, ErrUsage)

	m.Reset()
	ok, err = m.FindAt(13)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, NodeID(13), m.Anchor())
}

func TestMatcherAtSubtree(t *testing.T) {
	t.Parallel()
	tree := catTree(t)

	m, err := MustCompile("VBD > VP").MatcherAt(tree, 7)
	require.NoError(t, err)
	assert.Equal(t, NodeID(7), m.Root())
	assert.Len(t, drain(t, m), 1)

	m, err = MustCompile("VP > S").MatcherAt(tree, 7)
	require.NoError(t, err)
	assert.Empty(t, drain(t, m))

	m, err = MustCompile("VP").MatcherAt(tree, 7)
	require.NoError(t, err)
	_, err = m.MatchesAt(2)
	assert.ErrorIs(t, err, ErrOutsideRoot)
	_, err = m.FindAt(2)
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = MustCompile("VP").MatcherAt(tree, 99)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestMatcherHeads(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ids(7), findAll(t, "VP <# VBD", catTreeSrc))
	assert.Equal(t, ids(1), findAll(t, "S <<# sat", catTreeSrc))
	assert.Equal(t, ids(3, 14), findAll(t, "DT >, NP", catTreeSrc))
	assert.Equal(t, ids(5, 16), findAll(t, "NN >- NP", catTreeSrc))
	assert.Empty(t, findAll(t, "PP >># S", catTreeSrc))

	q, err := NewCompiler(WithHeadFinder(nil)).Compile("NP <# NN")
	require.NoError(t, err)
	ok, err := q.MatchesTree(catTree(t))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoHeadFinder)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestMatcherMultiChild(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ids(7), findAll(t, "VP <... { VBD ; PP }", catTreeSrc))
	assert.Empty(t, findAll(t, "NP <... { DT }", catTreeSrc))
	assert.Equal(t, ids(2, 13), findAll(t, "NP <... { DT ; NN }", catTreeSrc))
}

func TestMatcherUnbrokenPaths(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ids(1), findAll(t, "S <+(VP) PP", catTreeSrc))
	assert.Empty(t, findAll(t, "S <+(NP) PP", catTreeSrc))
	assert.Equal(t, ids(14), findAll(t, "DT >+(NP|PP) VP", catTreeSrc))
}

func TestMatcherNoMatchIsNotAnError(t *testing.T) {
	t.Parallel()
	m := MustCompile("FRAG").Matcher(catTree(t))
	ok, err := m.Find()
	assert.NoError(t, err)
	assert.False(t, ok)
	n, err := m.Match()
	assert.NoError(t, err)
	assert.Equal(t, NoNode, n)
}

func TestHandBuiltQuery(t *testing.T) {
	t.Parallel()
	child, err := GetRelation("<", "", Capabilities{})
	require.NoError(t, err)
	q := NewQuery(&DescriptionPattern{
		Desc: ExactDesc("NP"),
		Name: "np",
		Child: &DescriptionPattern{
			Relation: child,
			Desc:     StringsDesc("NN", "NNS"),
		},
	})
	got, err := q.FindAll(catTree(t))
	require.NoError(t, err)
	assert.Equal(t, ids(2, 13), got)
	assert.Equal(t, "(NP=np < NN|NNS)", q.String())
}
