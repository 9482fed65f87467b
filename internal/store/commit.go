package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch inserts all buffered trees from a BatchedStore into SQLite
// within a single transaction and refreshes the tree count of every
// treebank the batch touched. Fake (negative) IDs in the batch are
// rewritten to the real IDs SQLite assigns. The batch must not be written
// to concurrently with a commit.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	var touched []int64
	seen := make(map[int64]bool)
	for i := range batch.Trees {
		tr := &batch.Trees[i]
		realID, err := insertTreeTx(tx, tr)
		if err != nil {
			return fmt.Errorf("commit batch: tree %d of treebank %d: %w", tr.Ordinal, tr.TreebankID, err)
		}
		tr.ID = realID
		if !seen[tr.TreebankID] {
			seen[tr.TreebankID] = true
			touched = append(touched, tr.TreebankID)
		}
	}

	for _, id := range touched {
		if _, err := tx.Exec(
			"UPDATE treebanks SET tree_count = (SELECT COUNT(*) FROM trees WHERE treebank_id = ?) WHERE id = ?",
			id, id,
		); err != nil {
			return fmt.Errorf("commit batch: tree count for treebank %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: commit: %w", err)
	}
	return nil
}

func insertTreeTx(tx *sql.Tx, tr *TreeRecord) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO trees (treebank_id, ordinal, penn, node_count, leaf_count) VALUES (?, ?, ?, ?, ?)",
		tr.TreebankID, tr.Ordinal, tr.Penn, tr.NodeCount, tr.LeafCount,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
