// Package contract holds the configuration, shared interfaces and small
// helpers used across schemadiff.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/schemadiff/schema"
)

// HistoryStore persists comparison runs for later inspection.
type HistoryStore interface {
	// BeginRun creates a new run and returns its row id.
	BeginRun(ctx context.Context, runUUID string, startTime time.Time, oldRoot, newRoot string) (int64, error)

	// RecordFileResult stores the outcome of one compared file.
	RecordFileResult(ctx context.Context, runID int64, result schema.FileComparison) error

	// EndRun marks the run complete with its verdict.
	EndRun(ctx context.Context, runID int64, endTime time.Time, overall schema.Status, totalFiles int) error

	GetStatus(ctx context.Context) (schema.HistoryStatus, error)
	GetAllRuns(ctx context.Context) ([]schema.RunRecord, error)
	GetAllFileResults(ctx context.Context) ([]schema.FileResultRecord, error)
	Close() error
}

// HistoryManager hands out the configured history store.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// Validator checks metadata records against their schema.
type Validator interface {
	// Name identifies the validator in summaries (URL or "local").
	Name() string

	// Ping verifies the validator can be reached.
	Ping(ctx context.Context) error

	// Validate returns the validation errors for one record. An empty list means it passed.
	Validate(ctx context.Context, record map[string]any) ([]any, error)
}
