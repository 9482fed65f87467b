package corpus

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jward/tregex"
	"github.com/jward/tregex/internal/syntax"
)

// goldenFile describes one search and the nodes it must print, in order.
type goldenFile struct {
	Pattern   string   `json:"pattern"`
	Handle    string   `json:"handle,omitempty"`
	NamedOnly bool     `json:"named_only,omitempty"`
	Matches   []string `json:"matches"`
}

// TestGolden runs every testdata/golden/<case>/ directory: the single input
// file is loaded the way "tregex search" loads it and the printed matches
// are compared with golden.json.
func TestGolden(t *testing.T) {
	root := filepath.Join("testdata", "golden")
	cases, err := os.ReadDir(root)
	if err != nil {
		t.Skip("no golden testdata found")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		dir := filepath.Join(root, c.Name())
		t.Run(c.Name(), func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(filepath.Join(dir, "golden.json"))
			require.NoError(t, err)
			var golden goldenFile
			require.NoError(t, json.Unmarshal(data, &golden))

			input := goldenInput(t, dir)
			loader := NewLoader(syntax.NewParser(syntax.WithNamedOnly(golden.NamedOnly)))
			format, trees, err := loader.Load(context.Background(), input)
			require.NoError(t, err)

			var opts []tregex.Option
			if format != FormatPenn {
				opts = append(opts, tregex.WithBasicCategory(nil))
			}
			q, err := tregex.NewCompiler(opts...).Compile(golden.Pattern)
			require.NoError(t, err)

			var got []string
			for _, tree := range trees {
				m := q.Matcher(tree)
				for {
					ok, err := m.Find()
					require.NoError(t, err)
					if !ok {
						break
					}
					n, err := m.Match()
					require.NoError(t, err)
					if golden.Handle != "" {
						var bound bool
						n, bound = m.Node(golden.Handle)
						require.True(t, bound, "handle %q is not bound", golden.Handle)
					}
					got = append(got, tree.Format(n))
				}
			}
			if diff := cmp.Diff(golden.Matches, got); diff != "" {
				t.Errorf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func goldenInput(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "input.") {
			return filepath.Join(dir, e.Name())
		}
	}
	t.Fatalf("no input file in %s", dir)
	return ""
}
