package store

import (
	"sort"
	"sync"
)

// BatchedStore buffers tree inserts in memory using fake (negative) IDs.
// It implements DataStore so parse workers can write to it without knowing
// whether they're hitting SQLite or an in-memory buffer.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
// Reads pass through to the underlying Store, which is safe for
// concurrent reads, and merge in the buffered rows.
type BatchedStore struct {
	store *Store // for read passthrough
	mu    sync.Mutex

	Trees []TreeRecord

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:      s,
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertTree(tr *TreeRecord) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	tr.ID = fakeID
	b.Trees = append(b.Trees, *tr)
	return fakeID, nil
}

// Len reports the number of buffered trees.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Trees)
}

// TreesByTreebank returns a treebank's trees, merging any buffered (not
// yet committed) trees with those already in the database.
func (b *BatchedStore) TreesByTreebank(treebankID int64) ([]*TreeRecord, error) {
	dbTrees, err := b.store.TreesByTreebank(treebankID)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Trees {
		if b.Trees[i].TreebankID == treebankID {
			dbTrees = append(dbTrees, &b.Trees[i])
		}
	}
	sort.SliceStable(dbTrees, func(i, j int) bool {
		return dbTrees[i].Ordinal < dbTrees[j].Ordinal
	})
	return dbTrees, nil
}
