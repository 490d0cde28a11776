package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/discover"
	"github.com/huangsam/schemadiff/internal/logger"
	"github.com/huangsam/schemadiff/internal/outwriter"
	"github.com/huangsam/schemadiff/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// filePair is one comparison key with the path on each side. A missing side
// has an empty path.
type filePair struct {
	name    string
	oldPath string
	newPath string
}

// ExecuteSchemaDiff builds the report for the configured inputs and writes it
// in the configured format. It is the entry point for the 'compare' command.
func ExecuteSchemaDiff(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (*schema.Report, error) {
	start := time.Now()
	report, err := BuildReport(ctx, cfg, historyStoreOf(mgr))
	if err != nil {
		return nil, err
	}
	if err := outwriter.NewOutWriter().WriteReport(report, cfg, time.Since(start)); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}

// BuildReport compares the old and new trees and rolls the results up into a
// report. When store is non-nil the run is recorded; recording failures are
// only warned about.
func BuildReport(ctx context.Context, cfg *contract.Config, store contract.HistoryStore) (*schema.Report, error) {
	logger.Debug("Comparing inputs", zap.String("old", cfg.OldPath), zap.String("new", cfg.NewPath))

	opts := discover.Options{Pattern: cfg.Pattern, Excludes: cfg.Excludes}
	oldFiles := discover.FindSchemaFiles(cfg.OldPath, opts)
	newFiles := discover.FindSchemaFiles(cfg.NewPath, opts)
	if len(oldFiles) == 0 || len(newFiles) == 0 {
		return nil, ErrNoInputs
	}
	alignSingleFiles(cfg.OldPath, cfg.NewPath, oldFiles, newFiles)

	report := &schema.Report{
		RunID:     uuid.New().String(),
		Timestamp: time.Now(),
		Inputs:    schema.ReportInputs{Old: cfg.OldPath, New: cfg.NewPath},
	}
	runID := beginRun(ctx, store, report)

	results, err := compareAll(ctx, buildPairs(oldFiles, newFiles), cfg.Workers)
	if err != nil {
		return nil, err
	}

	report.Results = results
	report.Summary = Summarize(results)
	report.OverallStatus = DetermineOverallStatus(report.Summary)
	logger.Info("Comparison finished",
		zap.String("run_id", report.RunID),
		zap.String("overall_status", string(report.OverallStatus)),
		zap.Int("files", len(results)))

	endRun(ctx, store, runID, report)
	return report, nil
}

// alignSingleFiles keys two single-file inputs under the new file's name so
// that old.json and new.json are compared instead of reported as added and
// removed.
func alignSingleFiles(oldRoot, newRoot string, oldFiles, newFiles map[string]string) {
	if !isRegularFile(oldRoot) || !isRegularFile(newRoot) {
		return
	}
	oldPath := oldFiles[filepath.Base(oldRoot)]
	clear(oldFiles)
	oldFiles[filepath.Base(newRoot)] = oldPath
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// buildPairs returns the union of both sides sorted by name.
func buildPairs(oldFiles, newFiles map[string]string) []filePair {
	names := make([]string, 0, len(oldFiles)+len(newFiles))
	for name := range oldFiles {
		names = append(names, name)
	}
	for name := range newFiles {
		if _, ok := oldFiles[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	pairs := make([]filePair, len(names))
	for i, name := range names {
		pairs[i] = filePair{name: name, oldPath: oldFiles[name], newPath: newFiles[name]}
	}
	return pairs
}

// compareAll runs every pair through the comparator with at most workers
// goroutines. Result order follows pair order. Pairs that fail to parse are
// dropped.
func compareAll(ctx context.Context, pairs []filePair, workers int) ([]schema.FileComparison, error) {
	slots := make([]*schema.FileComparison, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, pair := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = comparePair(pair)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare files: %w", err)
	}

	results := make([]schema.FileComparison, 0, len(slots))
	for _, fc := range slots {
		if fc != nil {
			results = append(results, *fc)
		}
	}
	return results, nil
}

// comparePair produces the outcome for one pair, or nil when either side
// cannot be read or parsed.
func comparePair(pair filePair) *schema.FileComparison {
	switch {
	case pair.oldPath == "":
		logger.Info("File was added", zap.String("file", pair.name))
		return &schema.FileComparison{
			File:      pair.name,
			Status:    schema.AddedStatus,
			Detail:    "File added",
			NewDigest: fileDigest(pair.newPath),
		}
	case pair.newPath == "":
		logger.Info("File was removed", zap.String("file", pair.name))
		return &schema.FileComparison{
			File:      pair.name,
			Status:    schema.RemovedStatus,
			Detail:    "File removed",
			OldDigest: fileDigest(pair.oldPath),
		}
	}

	oldData, err := os.ReadFile(pair.oldPath)
	if err != nil {
		logger.Warn("Skipping unreadable file", zap.String("file", pair.name), zap.Error(err))
		return nil
	}
	newData, err := os.ReadFile(pair.newPath)
	if err != nil {
		logger.Warn("Skipping unreadable file", zap.String("file", pair.name), zap.Error(err))
		return nil
	}
	fc := &schema.FileComparison{
		File:      pair.name,
		OldDigest: contentDigest(oldData),
		NewDigest: contentDigest(newData),
	}

	// Identical valid documents are not decoded
	if fc.OldDigest == fc.NewDigest && bytes.Equal(oldData, newData) && json.Valid(oldData) {
		logger.Debug("Identical content", zap.String("file", pair.name), zap.String("digest", fc.NewDigest))
		diff := schema.NewDiff()
		fc.Status, fc.Diff = schema.SameStatus, &diff
		return fc
	}

	oldDoc, oldErr := decodeJSON(oldData)
	newDoc, newErr := decodeJSON(newData)
	if oldErr != nil || newErr != nil {
		logger.Warn("Skipping file due to JSON decode error",
			zap.String("file", pair.name),
			zap.NamedError("old_error", oldErr),
			zap.NamedError("new_error", newErr))
		return nil
	}

	logger.Debug("Comparing schemas", zap.String("file", pair.name))
	diff := CompareSchemas(oldDoc, newDoc)
	fc.Status, fc.Diff = ClassifyChange(diff), &diff
	if fc.Status == schema.SameStatus {
		logger.Info("No changes", zap.String("file", pair.name))
	} else {
		logger.Info("Changes found", zap.String("file", pair.name), zap.String("status", string(fc.Status)))
	}
	return fc
}

// contentDigest is the xxhash64 fingerprint of a file's bytes as 16 hex digits.
func contentDigest(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// fileDigest fingerprints the file at path, or returns "" when it cannot be read.
func fileDigest(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("Cannot fingerprint file", zap.String("path", path), zap.Error(err))
		return ""
	}
	return contentDigest(data)
}

// DiffDocuments compares two raw JSON documents.
func DiffDocuments(oldJSON, newJSON []byte) (schema.DocumentDiff, error) {
	oldDoc, err := decodeJSON(oldJSON)
	if err != nil {
		return schema.DocumentDiff{}, fmt.Errorf("invalid old document: %w", err)
	}
	newDoc, err := decodeJSON(newJSON)
	if err != nil {
		return schema.DocumentDiff{}, fmt.Errorf("invalid new document: %w", err)
	}
	diff := CompareSchemas(oldDoc, newDoc)
	return schema.DocumentDiff{Level: ClassifyChange(diff), Diff: diff}, nil
}

// DiffDocumentsJSON is DiffDocuments encoded with two-space indentation.
func DiffDocumentsJSON(oldJSON, newJSON []byte) ([]byte, error) {
	result, err := DiffDocuments(oldJSON, newJSON)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(result, "", "  ")
}

func historyStoreOf(mgr contract.HistoryManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

func beginRun(ctx context.Context, store contract.HistoryStore, report *schema.Report) int64 {
	if store == nil {
		return 0
	}
	id, err := store.BeginRun(ctx, report.RunID, report.Timestamp, report.Inputs.Old, report.Inputs.New)
	if err != nil {
		contract.LogWarn("Run history initialization failed", err)
		return 0
	}
	return id
}

func endRun(ctx context.Context, store contract.HistoryStore, runID int64, report *schema.Report) {
	if store == nil || runID <= 0 {
		return
	}
	for _, fc := range report.Results {
		if err := store.RecordFileResult(ctx, runID, fc); err != nil {
			contract.LogWarn("Failed to record file result", err)
			break
		}
	}
	if err := store.EndRun(ctx, runID, time.Now(), report.OverallStatus, len(report.Results)); err != nil {
		contract.LogWarn("Failed to finalize run history", err)
	}
}
