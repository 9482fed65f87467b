package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/tregex/internal/config"
)

func main() {
	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	if err := c.root().Execute(); err != nil {
		if !c.errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

// cli holds the flag values and collaborators shared by every command.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flagConfig  string
	flagVerbose bool
	flagDB      string
	flagFormat  string

	cfg    *config.Config
	logger *slog.Logger

	// handles and treeNumbers carry search flags into text output.
	handles     []string
	treeNumbers bool

	// errorHandled is set by outputError so main() doesn't double-print.
	errorHandled bool
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{stdin: stdin, stdout: stdout, stderr: stderr}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "tregex",
		Short: "Structural pattern search over parse trees and source code",
		Long: "tregex matches tree patterns against Penn Treebank files, source files " +
			"parsed with tree-sitter, or a SQLite corpus built with \"tregex index\".",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flagConfig, "config", "", "configuration file (default: ./"+config.FileName+" if present)")
	pf.BoolVarP(&c.flagVerbose, "verbose", "v", false, "log debug output to stderr")
	pf.StringVar(&c.flagDB, "db", "", "corpus database path (default from config: .tregex.db)")
	pf.StringVar(&c.flagFormat, "format", "", "output format: json|text")

	root.AddCommand(c.searchCmd(), c.indexCmd(), c.explainCmd(), c.treesCmd(), c.initCmd())
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger before any command runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if c.flagVerbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))

	// init writes the configuration file; a broken existing one must not
	// stop it.
	if cmd.Name() == "init" {
		c.cfg = config.Default()
		return nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, path, err := config.Resolve(c.flagConfig, dir)
	if err != nil {
		return err
	}
	if path != "" {
		c.logger.Debug("loaded configuration", "path", path)
	}
	if c.flagDB != "" {
		cfg.DB = c.flagDB
	}
	if c.flagFormat != "" {
		cfg.Format = c.flagFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// dbExists reports whether the configured corpus database has been created.
func (c *cli) dbExists() (bool, error) {
	_, err := os.Stat(c.cfg.DB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
