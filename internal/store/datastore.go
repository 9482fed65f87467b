package store

// DataStore is the interface for import-phase tree writes. Both Store
// (direct SQLite) and BatchedStore (in-memory buffering for parallel
// parsing) implement this interface.
type DataStore interface {
	// InsertTree returns the assigned ID.
	InsertTree(tr *TreeRecord) (int64, error)

	// TreesByTreebank lists a treebank's trees in ordinal order.
	TreesByTreebank(treebankID int64) ([]*TreeRecord, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
