// Package history persists comparison runs in a SQL database.
package history

import (
	"sync"

	"github.com/huangsam/schemadiff/internal/contract"
)

// Table names for run history.
const (
	runsTable        = "schemadiff_runs"
	fileResultsTable = "schemadiff_file_results"
)

// historyTables lists every table owned by the store, in creation order.
var historyTables = []string{runsTable, fileResultsTable}

// StoreManager holds the process wide history store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.HistoryStore
}

var _ contract.HistoryManager = &StoreManager{} // Compile-time check

// GetHistoryStore returns the configured store, or nil when history is off.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}

// NewStoreManager wraps an existing store. Used by tests and the MCP server.
func NewStoreManager(store contract.HistoryStore) *StoreManager {
	return &StoreManager{store: store}
}
