package tregex

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catTree node IDs, in preorder:
//
//	0 ROOT  1 S  2 NP  3 DT  4 The  5 NN  6 cat  7 VP  8 VBD  9 sat
//	10 PP  11 IN  12 on  13 NP  14 DT  15 the  16 NN  17 mat
const catTreeSrc = "(ROOT (S (NP (DT The) (NN cat)) (VP (VBD sat) (PP (IN on) (NP (DT the) (NN mat))))))"

func catTree(t testing.TB) *Tree {
	t.Helper()
	tree, err := ParseTree(catTreeSrc)
	require.NoError(t, err)
	require.Equal(t, 18, tree.Len())
	return tree
}

func testCaps() Capabilities {
	return Capabilities{HeadFinder: NewCollinsHeadFinder(), BasicCategory: PennBasicCategory}
}

func mustRelation(t *testing.T, symbol, arg string) Relation {
	t.Helper()
	r, err := GetRelation(symbol, arg, testCaps())
	require.NoError(t, err, "relation %s %s", symbol, arg)
	return r
}

func ids(n ...NodeID) []NodeID { return n }

func TestRelationCandidates(t *testing.T) {
	tree := catTree(t)
	v := NewView(tree, tree.Root())

	tests := []struct {
		symbol string
		arg    string
		anchor NodeID
		want   []NodeID
	}{
		{"Root", "", 5, ids(5)},
		{"==", "", 5, ids(5)},
		{"<=", "", 2, ids(2, 3, 5)},
		{":", "", 9, ids(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17)},
		{"<<", "", 7, ids(8, 9, 10, 11, 12, 13, 14, 15, 16, 17)},
		{">>", "", 14, ids(13, 10, 7, 1, 0)},
		{"<", "", 7, ids(8, 10)},
		{">", "", 8, ids(7)},
		{">", "", 0, nil},
		{"<<,", "", 1, ids(2, 3, 4)},
		{"<<-", "", 7, ids(10, 13, 16, 17)},
		{">>,", "", 4, ids(3, 2, 1, 0)},
		{">>-", "", 17, ids(16, 13, 10, 7, 1, 0)},
		{"$", "", 8, ids(10)},
		{"$++", "", 3, ids(5)},
		{"$--", "", 5, ids(3)},
		{"$+", "", 2, ids(7)},
		{"$-", "", 7, ids(2)},
		{"$+", "", 0, nil},
		{"<:", "", 3, ids(4)},
		{"<:", "", 2, nil},
		{">:", "", 4, ids(3)},
		{">:", "", 3, nil},
		{"<<:", "", 0, ids(1)},
		{"<<:", "", 14, ids(15)},
		{">>:", "", 15, ids(14)},
		{"..", "", 2, ids(7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17)},
		{".", "", 5, ids(7, 8, 9)},
		{".", "", 17, nil},
		{",,", "", 10, ids(8, 9, 2, 3, 4, 5, 6)},
		{",", "", 10, ids(8, 9)},
		{"<", "2", 7, ids(10)},
		{"<", "-1", 2, ids(5)},
		{">", "1", 8, ids(7)},
		{">", "-1", 8, nil},
		{">", "-2", 8, ids(7)},
		{"<", "3", 7, nil},
		{"<<#", "", 0, ids(1, 7, 8, 9)},
		{">>#", "", 9, ids(8, 7, 1, 0)},
		{">>#", "", 10, nil},
		{"<#", "", 2, ids(5)},
		{">#", "", 5, ids(2)},
		{">#", "", 3, nil},
		{"<+", "VP", 1, ids(2, 7, 8, 10)},
		{">+", "NP", 14, ids(13, 10)},
		{".+", "VBD", 2, ids(7, 8, 9, 10, 11, 12)},
		{",+", "!__", 10, ids(8, 9)},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("%s%s@%d", tt.symbol, tt.arg, tt.anchor)
		t.Run(name, func(t *testing.T) {
			r := mustRelation(t, tt.symbol, tt.arg)
			got := collect(r.Candidates(v, tt.anchor))
			assert.Equal(t, tt.want, got)
			require.NoError(t, v.Err())
		})
	}
}

// Every relation's candidate set is exactly the set of nodes it is
// satisfied by, and candidates are never repeated.
func TestRelationCandidatesAgreeWithSatisfies(t *testing.T) {
	trees := []*Tree{
		catTree(t),
		MustParseTree("(S (NP (NNP Bank)) (VP (VBD called)))"),
		MustParseTree("(X (X (X (X a))) (Y b (Z c d) e))"),
	}
	relations := []struct{ symbol, arg string }{
		{"==", ""}, {"<=", ""}, {":", ""},
		{"<<", ""}, {">>", ""}, {"<", ""}, {">", ""},
		{"<<,", ""}, {"<<-", ""}, {">>,", ""}, {">>-", ""},
		{"$", ""}, {"$++", ""}, {"$--", ""}, {"$+", ""}, {"$-", ""},
		{"<:", ""}, {">:", ""}, {"<<:", ""}, {">>:", ""},
		{"..", ""}, {".", ""}, {",,", ""}, {",", ""},
		{"<", "1"}, {"<", "-1"}, {">", "2"}, {">", "-1"},
		{"<<#", ""}, {">>#", ""}, {"<#", ""}, {">#", ""},
		{"<+", "X"}, {">+", "!VP"}, {".+", "__"}, {",+", "/^[XYZ]$/"},
	}
	for ti, tree := range trees {
		v := NewView(tree, tree.Root())
		for _, rel := range relations {
			r := mustRelation(t, rel.symbol, rel.arg)
			for a := NodeID(0); int(a) < tree.Len(); a++ {
				got := collect(r.Candidates(v, a))
				seen := map[NodeID]bool{}
				for _, c := range got {
					assert.False(t, seen[c], "tree %d %s: candidate %d repeated for anchor %d", ti, r, c, a)
					seen[c] = true
				}
				for b := NodeID(0); int(b) < tree.Len(); b++ {
					assert.Equal(t, r.Satisfies(v, a, b), seen[b],
						"tree %d: %d %s %d", ti, a, r, b)
				}
			}
			require.NoError(t, v.Err())
		}
	}
}

func TestRelationSymmetry(t *testing.T) {
	tree := catTree(t)
	v := NewView(tree, tree.Root())
	pairs := [][2]string{
		{"<", ">"}, {"<<", ">>"}, {"$++", "$--"}, {"$+", "$-"},
		{"..", ",,"}, {".", ","}, {"<:", ">:"}, {"<<:", ">>:"},
		{"<<,", ">>,"}, {"<<-", ">>-"}, {"<#", ">#"}, {"<<#", ">>#"},
	}
	for _, p := range pairs {
		fwd, back := mustRelation(t, p[0], ""), mustRelation(t, p[1], "")
		for a := NodeID(0); int(a) < tree.Len(); a++ {
			for b := NodeID(0); int(b) < tree.Len(); b++ {
				assert.Equal(t, fwd.Satisfies(v, a, b), back.Satisfies(v, b, a),
					"%d %s %d vs %d %s %d", a, fwd, b, b, back, a)
			}
		}
	}
}

func TestUnbrokenPrecedenceVisitsEachNodeOnce(t *testing.T) {
	tree := catTree(t)
	v := NewView(tree, tree.Root())
	chain := collect(mustRelation(t, ".+", "__").Candidates(v, 3))
	follows := collect(mustRelation(t, "..", "").Candidates(v, 3))

	slices.Sort(chain)
	slices.Sort(follows)
	assert.Equal(t, follows, chain)
}

func TestGetRelationAliases(t *testing.T) {
	caps := testCaps()
	aliases := []struct{ alias, canonical, arg string }{
		{"$..", "$++", ""},
		{"$,,", "$--", ""},
		{"$.", "$+", ""},
		{"$,", "$-", ""},
		{"<,", "<", "1"},
		{"<-", "<", "-1"},
		{">,", ">", "1"},
		{">-", ">", "-1"},
	}
	for _, a := range aliases {
		r1, err := GetRelation(a.alias, "", caps)
		require.NoError(t, err)
		r2, err := GetRelation(a.canonical, a.arg, caps)
		require.NoError(t, err)
		assert.True(t, RelationsEqual(r1, r2), "%s vs %s%s", a.alias, a.canonical, a.arg)
	}
}

func TestRelationsEqual(t *testing.T) {
	caps := testCaps()
	other := Capabilities{HeadFinder: NewCollinsHeadFinder(), BasicCategory: PennBasicCategory}

	assert.True(t, RelationsEqual(MustGetRelation("<<", "", caps), MustGetRelation("<<", "", other)))
	assert.False(t, RelationsEqual(MustGetRelation("<<", "", caps), MustGetRelation(">>", "", caps)))
	assert.True(t, RelationsEqual(MustGetRelation("<", "2", caps), MustGetRelation("<", "2", other)))
	assert.False(t, RelationsEqual(MustGetRelation("<", "2", caps), MustGetRelation("<", "-2", caps)))

	assert.True(t, RelationsEqual(MustGetRelation("<#", "", caps), MustGetRelation("<#", "", caps)))
	assert.False(t, RelationsEqual(MustGetRelation("<#", "", caps), MustGetRelation("<#", "", other)),
		"distinct head finders")

	assert.True(t, RelationsEqual(MustGetRelation("<+", "@VP", caps), MustGetRelation("<+", "@VP", other)))
	assert.False(t, RelationsEqual(MustGetRelation("<+", "VP", caps), MustGetRelation("<+", "NP", caps)))
	assert.True(t, RelationsEqual(nil, nil))
	assert.False(t, RelationsEqual(MustGetRelation("<", "", caps), nil))
}

func TestGetRelationErrors(t *testing.T) {
	caps := testCaps()
	tests := []struct{ symbol, arg string }{
		{"<", "0"},
		{">", "two"},
		{"<%", ""},
		{"<<", "3"},
		{"<+", ""},
		{"<+", "@VP|"},
		{"$..", "1"},
		{"<...", ""},
	}
	for _, tt := range tests {
		_, err := GetRelation(tt.symbol, tt.arg, caps)
		require.Error(t, err, "%s %q", tt.symbol, tt.arg)
		assert.ErrorIs(t, err, ErrConfig, "%s %q", tt.symbol, tt.arg)
	}

	_, err := GetRelation("<+", "@VP", Capabilities{})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestHeadRelationWithoutHeadFinder(t *testing.T) {
	tree := catTree(t)
	v := NewView(tree, tree.Root())
	r, err := GetRelation("<#", "", Capabilities{})
	require.NoError(t, err, "construction succeeds without a head finder")

	// Preterminals need no head finder.
	assert.True(t, r.Satisfies(v, 3, 4))
	require.NoError(t, v.Err())

	assert.Empty(t, collect(r.Candidates(v, 2)))
	require.Error(t, v.Err())
	assert.True(t, errors.Is(v.Err(), ErrNoHeadFinder))
	assert.ErrorIs(t, v.Err(), ErrConfig)
}

func TestViewScopesParentsAndSpans(t *testing.T) {
	tree := catTree(t)
	v := NewView(tree, 7)

	assert.Equal(t, NoNode, v.Parent(7))
	assert.Equal(t, NodeID(7), v.Parent(8))
	assert.True(t, v.Contains(17))
	assert.False(t, v.Contains(2))
	assert.Equal(t, 0, v.LeftEdge(8))
	assert.Equal(t, 1, v.RightEdge(8))
	assert.Equal(t, 4, v.RightEdge(7))

	assert.Empty(t, collect(mustRelation(t, "$", "").Candidates(v, 7)))
	assert.Equal(t, ids(8, 9), collect(mustRelation(t, ",", "").Candidates(v, 10)))
	assert.Empty(t, collect(mustRelation(t, ",", "").Candidates(v, 8)))
}
