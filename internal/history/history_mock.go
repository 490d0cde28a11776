package history

import (
	"context"
	"time"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(ctx context.Context, runUUID string, startTime time.Time, oldRoot, newRoot string) (int64, error) {
	args := m.Called(ctx, runUUID, startTime, oldRoot, newRoot)
	return args.Get(0).(int64), args.Error(1)
}

// RecordFileResult implements the HistoryStore interface.
func (m *MockHistoryStore) RecordFileResult(ctx context.Context, runID int64, result schema.FileComparison) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(ctx context.Context, runID int64, endTime time.Time, overall schema.Status, totalFiles int) error {
	args := m.Called(ctx, runID, endTime, overall, totalFiles)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns(ctx context.Context) ([]schema.RunRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.RunRecord)
	return records, args.Error(1)
}

// GetAllFileResults implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllFileResults(ctx context.Context) ([]schema.FileResultRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.FileResultRecord)
	return records, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
