package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for an indexed tree corpus.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the corpus tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS treebanks (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  format          TEXT NOT NULL,
  hash            TEXT,
  tree_count      INTEGER DEFAULT 0,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS trees (
  id              INTEGER PRIMARY KEY,
  treebank_id     INTEGER NOT NULL REFERENCES treebanks(id),
  ordinal         INTEGER NOT NULL,
  penn            TEXT NOT NULL,
  node_count      INTEGER,
  leaf_count      INTEGER
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_treebanks_format ON treebanks(format);
CREATE INDEX IF NOT EXISTS idx_trees_treebank ON trees(treebank_id, ordinal);
`

// DeleteTreebankData transactionally removes every tree of a treebank and
// resets its tree count. The treebank row itself is kept.
func (s *Store) DeleteTreebankData(treebankID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trees WHERE treebank_id = ?", treebankID); err != nil {
		return fmt.Errorf("delete trees: %w", err)
	}
	if _, err := tx.Exec("UPDATE treebanks SET tree_count = 0 WHERE id = ?", treebankID); err != nil {
		return fmt.Errorf("reset tree count: %w", err)
	}
	return tx.Commit()
}

// DeleteTreebanks removes the given treebanks and all of their trees.
func (s *Store) DeleteTreebanks(ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := placeholderList(len(ids))
	args := int64sToArgs(ids)
	for _, q := range []string{
		"DELETE FROM trees WHERE treebank_id IN (" + placeholders + ")",
		"DELETE FROM treebanks WHERE id IN (" + placeholders + ")",
	} {
		if _, err := tx.Exec(q, args...); err != nil {
			return fmt.Errorf("delete treebanks: %w", err)
		}
	}
	return tx.Commit()
}
