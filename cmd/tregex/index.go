package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/tregex/internal/config"
	"github.com/jward/tregex/internal/corpus"
	"github.com/jward/tregex/internal/syntax"
)

func (c *cli) indexCmd() *cobra.Command {
	var (
		flagForce     bool
		flagNamedOnly bool
		flagWorkers   int
	)
	cmd := &cobra.Command{
		Use:   "index [paths...]",
		Short: "Import treebank and source files into the corpus database",
		Long: "Reads Penn Treebank files (.mrg, .penn, .ptb, .tree, .trees) and source files " +
			"(parsed with tree-sitter) and stores their trees in SQLite. Unchanged files are " +
			"skipped by content hash; files that no longer exist are dropped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			namedOnly := c.cfg.NamedOnly
			if cmd.Flags().Changed("named-only") {
				namedOnly = flagNamedOnly
			}
			workers := c.cfg.Workers
			if cmd.Flags().Changed("workers") {
				workers = flagWorkers
			}

			start := time.Now()
			parser := syntax.NewParser(syntax.WithNamedOnly(namedOnly), syntax.WithLogger(c.logger))
			engine, err := corpus.Open(c.cfg.DB,
				corpus.WithParser(parser),
				corpus.WithWorkers(workers),
				corpus.WithForce(flagForce),
				corpus.WithLogger(c.logger))
			if err != nil {
				return err
			}
			defer engine.Close()

			stats, err := engine.Index(cmd.Context(), args...)
			fmt.Fprintf(c.stderr, "Indexed %d of %d file(s) in %s (%d tree(s), %d unchanged, %d removed)\n",
				stats.Indexed, stats.Files, time.Since(start).Round(time.Millisecond),
				stats.Trees, stats.Unchanged, stats.Removed)
			fmt.Fprintf(c.stderr, "Database: %s\n", c.cfg.DB)
			return err
		},
	}
	cmd.Flags().BoolVar(&flagForce, "force", false, "reparse files even when unchanged")
	cmd.Flags().BoolVar(&flagNamedOnly, "named-only", false, "keep only named tree-sitter nodes")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "files parsed at once (default: number of CPUs)")
	return cmd
}

func (c *cli) treesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trees",
		Short: "List the indexed treebanks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := c.dbExists()
			if err != nil {
				return c.outputError("trees", err)
			}
			if !ok {
				return c.outputError("trees", fmt.Errorf("no corpus at %s; run \"tregex index\" first", c.cfg.DB))
			}
			engine, err := corpus.Open(c.cfg.DB, corpus.WithLogger(c.logger))
			if err != nil {
				return c.outputError("trees", err)
			}
			defer engine.Close()

			banks, err := engine.Treebanks()
			if err != nil {
				return c.outputError("trees", err)
			}
			out := make([]CLITreebank, len(banks))
			total := 0
			for i, b := range banks {
				out[i] = CLITreebank{
					Path:        b.Path,
					Format:      b.Format,
					Trees:       b.TreeCount,
					LastIndexed: b.LastIndexed.UTC().Format(time.RFC3339),
				}
				total += b.TreeCount
			}
			return c.outputResult(CLIResult{Command: "trees", Results: out, TotalCount: &total})
		},
	}
}

func formatTreebanksText(c *cli, banks []CLITreebank, total int) {
	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tFORMAT\tTREES\tINDEXED")
	for _, b := range banks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", fileStyle.Sprint(b.Path), b.Format, b.Trees, b.LastIndexed)
	}
	tw.Flush()
	fmt.Fprintf(c.stdout, "\n%d treebank(s), %d tree(s)\n", len(banks), total)
}

func (c *cli) initCmd() *cobra.Command {
	var flagForce bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.flagConfig
			if path == "" {
				path = config.FileName
			}
			if _, err := os.Stat(path); err == nil && !flagForce {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Write(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Configuration file created: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing file")
	return cmd
}
