package store

import "time"

// Treebank is one indexed input file: a Penn Treebank file or a source file
// parsed into a single tree.
type Treebank struct {
	ID          int64
	Path        string
	Format      string // "penn" or a source language such as "go"
	Hash        string
	TreeCount   int
	LastIndexed time.Time
}

// TreeRecord is one stored tree, serialized in bracketed Penn notation.
type TreeRecord struct {
	ID         int64
	TreebankID int64
	Ordinal    int
	Penn       string
	NodeCount  int
	LeafCount  int
}
