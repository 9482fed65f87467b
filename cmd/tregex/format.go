package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jward/tregex"
	"github.com/jward/tregex/internal/config"
)

var (
	fileStyle     = color.New(color.FgCyan, color.Bold)
	handleStyle   = color.New(color.FgYellow, color.Bold)
	relationStyle = color.New(color.FgBlue, color.Bold)
	errorStyle    = color.New(color.FgRed, color.Bold)
)

// outputResult writes result as indented JSON or as text, per --format.
func (c *cli) outputResult(result CLIResult) error {
	if c.cfg.Format == config.FormatText {
		return c.outputResultText(result)
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func (c *cli) outputError(command string, err error) error {
	c.errorHandled = true
	if c.cfg == nil || c.cfg.Format == config.FormatText {
		fmt.Fprintf(c.stderr, "%s %s\n", errorStyle.Sprint("Error:"), err)
		return err
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

func (c *cli) outputResultText(result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIHit:
		formatHitsText(c.stdout, v, c.handles, c.treeNumbers)
	case []CLITreebank:
		total := 0
		if result.TotalCount != nil {
			total = *result.TotalCount
		}
		formatTreebanksText(c, v, total)
	case CLIExplain:
		formatExplainText(c.stdout, v)
	case nil:
		if result.TotalCount != nil {
			fmt.Fprintln(c.stdout, *result.TotalCount)
		}
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// buildHits renders every hit against the tree it came from.
func buildHits(in *input, hits []tregex.Hit, f searchFlags) []CLIHit {
	out := make([]CLIHit, 0, len(hits))
	for _, h := range hits {
		t := in.trees[h.Tree]
		src := in.sources[h.Tree]
		render := func(n tregex.NodeID) string {
			if f.terminals {
				return strings.Join(t.Yield(n), " ")
			}
			return t.Format(n)
		}

		hit := CLIHit{
			Source: src.Path,
			Tree:   src.Ordinal,
			Node:   int(h.Node),
			Label:  t.Label(h.Node),
			Match:  render(h.Node),
		}
		if f.whole {
			hit.Match = render(t.Root())
		}
		for _, name := range f.handles {
			n, ok := h.Names[name]
			if !ok {
				continue
			}
			if hit.Handles == nil {
				hit.Handles = make(map[string]string, len(f.handles))
			}
			hit.Handles[name] = render(n)
		}
		if len(h.Vars) > 0 {
			hit.Vars = h.Vars
		}
		out = append(out, hit)
	}
	return out
}

// formatHitsText prints one line per hit, or one line per bound handle when
// handles were requested. A single handle is printed without its name.
func formatHitsText(w io.Writer, hits []CLIHit, handles []string, treeNumbers bool) {
	for _, h := range hits {
		prefix := ""
		if treeNumbers {
			prefix = fileStyle.Sprintf("%s:%d", h.Source, h.Tree) + ": "
		}
		if len(handles) == 0 {
			fmt.Fprintln(w, prefix+h.Match)
			continue
		}
		for _, name := range handles {
			v, ok := h.Handles[name]
			if !ok {
				continue
			}
			if len(handles) == 1 {
				fmt.Fprintln(w, prefix+v)
				continue
			}
			fmt.Fprintln(w, prefix+handleStyle.Sprint(name)+": "+v)
		}
	}
}
