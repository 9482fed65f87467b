package tregex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollinsHeads(t *testing.T) {
	t.Parallel()
	tree := catTree(t)
	hf := NewCollinsHeadFinder()

	want := map[NodeID]NodeID{
		0:  1,  // ROOT -> S
		1:  7,  // S -> VP
		2:  5,  // NP -> NN
		3:  4,  // DT -> The
		7:  8,  // VP -> VBD
		10: 11, // PP -> IN
		13: 16, // NP -> NN
	}
	for n, h := range want {
		got, err := hf.Head(tree, n)
		require.NoError(t, err)
		assert.Equal(t, h, got, "head of %s", tree.Label(n))
	}

	got, err := hf.Head(tree, 4)
	require.NoError(t, err)
	assert.Equal(t, NoNode, got, "leaves have no head")
}

func TestRuleHeadFinderDirections(t *testing.T) {
	t.Parallel()
	tree := MustParseTree("(X (A a) (B b) (A c) (C d))")
	tests := []struct {
		rule HeadRule
		want NodeID
	}{
		{HeadRule{Direction: HeadLeft, Categories: []string{"C", "A"}}, 7},
		{HeadRule{Direction: HeadRight, Categories: []string{"A"}}, 5},
		{HeadRule{Direction: HeadLeftDis, Categories: []string{"B", "C"}}, 3},
		{HeadRule{Direction: HeadRightDis, Categories: []string{"A", "B"}}, 5},
		{HeadRule{Direction: HeadLeftExcept, Categories: []string{"A"}}, 3},
		{HeadRule{Direction: HeadRightExcept, Categories: []string{"C", "A"}}, 3},
		{HeadRule{Direction: HeadLeft}, 1},
		{HeadRule{Direction: HeadRight}, 7},
		{HeadRule{Direction: HeadLeft, Categories: []string{"Z"}}, 1},
		{HeadRule{Direction: HeadRightDis, Categories: []string{"Z"}}, 7},
	}
	for _, tt := range tests {
		hf, err := NewRuleHeadFinder(HeadRules{"X": {tt.rule}})
		require.NoError(t, err)
		got, err := hf.Head(tree, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %v", tt.rule.Direction, tt.rule.Categories)
	}
}

func TestRuleHeadFinderFallsThroughRules(t *testing.T) {
	t.Parallel()
	tree := MustParseTree("(NP-SBJ (DT the) (JJ big) (NP (NN dog)))")
	hf := NewCollinsHeadFinder()
	got, err := hf.Head(tree, 0)
	require.NoError(t, err)
	assert.Equal(t, NodeID(5), got, "second NP rule picks the embedded NP")
}

func TestRuleHeadFinderErrors(t *testing.T) {
	t.Parallel()
	_, err := NewRuleHeadFinder(HeadRules{"X": nil})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewRuleHeadFinder(HeadRules{"X": {{Direction: "sideways"}}})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewRuleHeadFinder(HeadRules{}, WithDefaultHeadRule(HeadRule{Direction: "up"}))
	assert.ErrorIs(t, err, ErrConfig)

	hf, err := NewRuleHeadFinder(HeadRules{"S": {{Direction: HeadLeft}}})
	require.NoError(t, err)
	_, err = hf.Head(MustParseTree("(Q (A a) (B b))"), 0)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestRuleHeadFinderBasicCategory(t *testing.T) {
	t.Parallel()
	tree := MustParseTree("(S-TPC (NP-SBJ (NN x)) (VP-1 (VB y)))")

	hf, err := NewRuleHeadFinder(HeadRules{"S": {{Direction: HeadLeft, Categories: []string{"VP"}}}})
	require.NoError(t, err)
	got, err := hf.Head(tree, 0)
	require.NoError(t, err)
	assert.Equal(t, NodeID(4), got)

	raw, err := NewRuleHeadFinder(HeadRules{"S-TPC": {{Direction: HeadLeft, Categories: []string{"VP"}}}},
		WithHeadBasicCategory(nil))
	require.NoError(t, err)
	got, err = raw.Head(tree, 0)
	require.NoError(t, err)
	assert.Equal(t, NodeID(1), got, "without basic categories VP-1 is not VP")
}

func TestBasicCategory(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"NP":        "NP",
		"NP-SBJ":    "NP",
		"NP-SBJ-1":  "NP",
		"NP=2":      "NP",
		"PP|ADVP":   "PP",
		"-NONE-":    "-NONE-",
		"-LRB-":     "-LRB-",
		"-NONE--1":  "-NONE-",
		"WHNP^S":    "WHNP",
		"":          "",
		"ADVP-TMP~": "ADVP",
	}
	for in, want := range tests {
		assert.Equal(t, want, PennBasicCategory(in), in)
	}

	colon := NewBasicCategory(":")
	assert.Equal(t, "NP", colon("NP:x"))
	assert.Equal(t, "NP-SBJ", colon("NP-SBJ"))
}

func TestVariableStrings(t *testing.T) {
	t.Parallel()
	vs := NewVariableStrings()

	assert.True(t, vs.Set("i", "1"))
	assert.True(t, vs.Set("i", "1"))
	assert.False(t, vs.Set("i", "2"), "conflicting value while bound")
	assert.Equal(t, 2, vs.Active("i"))

	vs.Unset("i")
	v, ok := vs.Get("i")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	vs.Unset("i")
	_, ok = vs.Get("i")
	assert.False(t, ok)
	assert.True(t, vs.Set("i", "2"), "released variables take new values")

	vs.Set("a", "x")
	assert.Equal(t, []string{"a", "i"}, vs.Names())
	vs.Reset()
	assert.Empty(t, vs.Names())
	vs.Unset("missing")
	assert.Equal(t, 0, vs.Active("missing"))
}
