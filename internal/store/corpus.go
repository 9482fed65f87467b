package store

import (
	"context"
	"database/sql"
	"fmt"
)

// --- Treebank operations ---

func (s *Store) InsertTreebank(b *Treebank) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO treebanks (path, format, hash, tree_count, last_indexed) VALUES (?, ?, ?, ?, ?)",
		b.Path, b.Format, b.Hash, b.TreeCount, b.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert treebank: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	b.ID = id
	return id, nil
}

// UpdateTreebank rewrites the format, hash and timestamp of an existing
// treebank. The tree count is maintained by CommitBatch.
func (s *Store) UpdateTreebank(b *Treebank) error {
	_, err := s.db.Exec(
		"UPDATE treebanks SET format = ?, hash = ?, last_indexed = ? WHERE id = ?",
		b.Format, b.Hash, b.LastIndexed, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update treebank: %w", err)
	}
	return nil
}

// TreebankByPath returns nil, nil when no treebank has the given path.
func (s *Store) TreebankByPath(path string) (*Treebank, error) {
	b := &Treebank{}
	err := s.db.QueryRow(
		"SELECT id, path, format, hash, tree_count, last_indexed FROM treebanks WHERE path = ?", path,
	).Scan(&b.ID, &b.Path, &b.Format, &b.Hash, &b.TreeCount, &b.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("treebank by path: %w", err)
	}
	return b, nil
}

// Treebanks lists every treebank ordered by path.
func (s *Store) Treebanks() ([]*Treebank, error) {
	rows, err := s.db.Query(
		"SELECT id, path, format, hash, tree_count, last_indexed FROM treebanks ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("treebanks: %w", err)
	}
	defer rows.Close()
	var banks []*Treebank
	for rows.Next() {
		b := &Treebank{}
		if err := rows.Scan(&b.ID, &b.Path, &b.Format, &b.Hash, &b.TreeCount, &b.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan treebank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// --- Tree operations ---

func (s *Store) InsertTree(tr *TreeRecord) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO trees (treebank_id, ordinal, penn, node_count, leaf_count) VALUES (?, ?, ?, ?, ?)",
		tr.TreebankID, tr.Ordinal, tr.Penn, tr.NodeCount, tr.LeafCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert tree: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	tr.ID = id
	return id, nil
}

func (s *Store) TreesByTreebank(treebankID int64) ([]*TreeRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, treebank_id, ordinal, penn, node_count, leaf_count FROM trees WHERE treebank_id = ? ORDER BY ordinal",
		treebankID,
	)
	if err != nil {
		return nil, fmt.Errorf("trees by treebank: %w", err)
	}
	defer rows.Close()
	var trees []*TreeRecord
	for rows.Next() {
		tr := &TreeRecord{}
		if err := rows.Scan(&tr.ID, &tr.TreebankID, &tr.Ordinal, &tr.Penn, &tr.NodeCount, &tr.LeafCount); err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		trees = append(trees, tr)
	}
	return trees, rows.Err()
}

// TreeCount returns the number of stored trees across all treebanks.
func (s *Store) TreeCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trees").Scan(&n); err != nil {
		return 0, fmt.Errorf("tree count: %w", err)
	}
	return n, nil
}

// EachTree streams every stored tree to fn, ordered by treebank path and
// then ordinal. Iteration stops at the first error fn returns, which is
// returned unwrapped.
func (s *Store) EachTree(ctx context.Context, fn func(path string, tr *TreeRecord) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.path, t.id, t.treebank_id, t.ordinal, t.penn, t.node_count, t.leaf_count
		 FROM trees t JOIN treebanks b ON b.id = t.treebank_id
		 ORDER BY b.path, t.ordinal`,
	)
	if err != nil {
		return fmt.Errorf("each tree: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var path string
		tr := &TreeRecord{}
		if err := rows.Scan(&path, &tr.ID, &tr.TreebankID, &tr.Ordinal, &tr.Penn, &tr.NodeCount, &tr.LeafCount); err != nil {
			return fmt.Errorf("scan tree: %w", err)
		}
		if err := fn(path, tr); err != nil {
			return err
		}
	}
	return rows.Err()
}

// --- Metadata ---

func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// Metadata returns the value stored under key and whether it was present.
func (s *Store) Metadata(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("metadata %q: %w", key, err)
	}
	return value, true, nil
}
