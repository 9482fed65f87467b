package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/tregex"
)

func (c *cli) explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain PATTERN",
		Short: "Print the compiled form of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := tregex.NewCompiler(c.cfg.CompilerOptions()...).Compile(args[0])
			if err != nil {
				return c.outputError("explain", err)
			}
			return c.outputResult(CLIResult{
				Command: "explain",
				Results: CLIExplain{
					Pattern:   args[0],
					Canonical: q.Pattern().String(),
					Root:      explainPattern(q.Pattern()),
				},
			})
		},
	}
}

func explainPattern(p tregex.Pattern) CLIASTNode {
	switch p := p.(type) {
	case *tregex.DescriptionPattern:
		n := CLIASTNode{
			Kind:        "node",
			Relation:    "root",
			Description: p.Desc.String(),
			Mode:        p.Desc.Mode.String(),
			Name:        p.Name,
			Backref:     p.Backref,
			Link:        p.Link,
			Negated:     p.Negated,
			Optional:    p.Optional,
		}
		if p.Relation != nil && p.Relation.Symbol() != "Root" {
			n.Relation = p.Relation.String()
		}
		for _, g := range p.VarGroups {
			n.Vars = append(n.Vars, "#"+strconv.Itoa(g.Group)+"%"+g.Name)
		}
		if p.Child != nil {
			n.Children = []CLIASTNode{explainPattern(p.Child)}
		}
		return n
	case *tregex.CoordinationPattern:
		n := CLIASTNode{Kind: "or", Negated: p.Negated, Optional: p.Optional}
		if p.Conjunction {
			n.Kind = "and"
		}
		for _, child := range p.Children {
			n.Children = append(n.Children, explainPattern(child))
		}
		return n
	default:
		return CLIASTNode{Kind: fmt.Sprintf("%T", p)}
	}
}

// formatExplainText prints the canonical pattern followed by an indented
// outline of the AST.
func formatExplainText(w io.Writer, e CLIExplain) {
	fmt.Fprintln(w, e.Canonical)
	writeASTNode(w, e.Root, 0)
}

func writeASTNode(w io.Writer, n CLIASTNode, depth int) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	if n.Negated {
		b.WriteString("not ")
	}
	if n.Optional {
		b.WriteString("optional ")
	}
	if n.Kind == "node" {
		b.WriteString(relationStyle.Sprint(n.Relation))
		b.WriteString(" ")
		b.WriteString(n.Description)
		b.WriteString(" (" + n.Mode + ")")
		switch {
		case n.Backref:
			b.WriteString(" backref=" + handleStyle.Sprint(n.Name))
		case n.Name != "":
			b.WriteString(" name=" + handleStyle.Sprint(n.Name))
		}
		if n.Link != "" {
			b.WriteString(" link=" + n.Link)
		}
		for _, v := range n.Vars {
			b.WriteString(" var=" + v)
		}
	} else {
		b.WriteString(n.Kind)
	}
	fmt.Fprintln(w, b.String())
	for _, child := range n.Children {
		writeASTNode(w, child, depth+1)
	}
}
