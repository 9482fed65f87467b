package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// ContentHash returns the hex SHA-256 of a treebank's raw bytes. The corpus
// engine compares it with the stored hash to skip unchanged inputs.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// CorpusSignature computes a deterministic hash over a set of treebanks.
// Covers path, format, content hash and tree count, sorted by path, so two
// corpora with the same inputs produce the same signature regardless of
// indexing order. Timestamps do NOT affect the signature.
func CorpusSignature(banks []*Treebank) string {
	type bankKey struct {
		path, format, hash string
		count              int
	}
	keys := make([]bankKey, len(banks))
	for i, b := range banks {
		keys[i] = bankKey{b.Path, b.Format, b.Hash, b.TreeCount}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].path < keys[j].path
	})

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "treebank:%s:%s:%s:%d\n", k.path, k.format, k.hash, k.count)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
