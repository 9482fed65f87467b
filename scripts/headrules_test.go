package scripts_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tregex"
	"github.com/jward/tregex/internal/runtime"
	"github.com/jward/tregex/internal/syntax"
	"github.com/jward/tregex/scripts"
)

func TestEmbeddedScripts(t *testing.T) {
	t.Parallel()
	names, err := fs.Glob(scripts.FS, "headrules/*.risor")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"headrules/collins.risor", "headrules/go.risor"}, names)
}

func TestCollinsScriptMatchesBuiltinTable(t *testing.T) {
	t.Parallel()
	rt := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS))

	set, err := rt.LoadHeadRules(context.Background(), runtime.HeadRulesScriptPath("collins"))
	require.NoError(t, err)
	assert.Equal(t, tregex.CollinsHeadRules(), set.Rules)
	assert.Equal(t, []tregex.HeadRule{{Direction: tregex.HeadLeft}}, set.Default)

	hf, err := rt.HeadFinder(set)
	require.NoError(t, err)
	q, err := tregex.NewCompiler(tregex.WithHeadFinder(hf)).Compile("S <<# sat")
	require.NoError(t, err)
	tree := tregex.MustParseTree("(ROOT (S (NP (DT The) (NN cat)) (VP (VBD sat) (PP (IN on) (NP (DT the) (NN mat))))))")
	got, err := q.FindAll(tree)
	require.NoError(t, err)
	assert.Equal(t, []tregex.NodeID{1}, got)
}

const goSource = `package main

import "fmt"

func Greet(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

func main() {
	msg := Greet("gopher")
	fmt.Println(msg)
}
`

func TestGoScriptHeadsCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rt := runtime.NewRuntime("", runtime.WithRuntimeFS(scripts.FS), runtime.WithRuntimeBasicCategory(nil))
	hf, err := rt.LoadHeadFinder(ctx, runtime.HeadRulesScriptPath("go"))
	require.NoError(t, err)

	tree, err := syntax.NewParser(syntax.WithNamedOnly(true)).Parse(ctx, []byte(goSource), "go")
	require.NoError(t, err)

	compiler := tregex.NewCompiler(tregex.WithHeadFinder(hf), tregex.WithBasicCategory(nil))
	labelsOf := func(pattern, name string) []string {
		t.Helper()
		m := compiler.MustCompile(pattern).Matcher(tree)
		var labels []string
		for {
			ok, err := m.Find()
			require.NoError(t, err)
			if !ok {
				return labels
			}
			n, ok := m.Node(name)
			require.True(t, ok)
			labels = append(labels, tree.Label(n))
		}
	}

	assert.Equal(t, []string{"Greet", "main"}, labelsOf("function_declaration <<# (__=name !< __)", "name"),
		"a function is headed by its name")
	assert.Equal(t, []string{"Sprintf", "Greet", "Println"}, labelsOf("call_expression <<# (__=name !< __)", "name"),
		"selector calls are headed by the selected field")
	assert.Equal(t, []string{"Greet"}, labelsOf("call_expression <# (identifier < __=name)", "name"))
}
