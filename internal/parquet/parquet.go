// Package parquet provides data structures and functions for exporting schema
// diff reports and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/schemadiff/schema"
	"github.com/parquet-go/parquet-go"
)

// ChangeRow is one change record of a report, flattened. Files without
// records (same, added, removed) produce a single row with no kind.
type ChangeRow struct {
	// RunID is the report's run_id
	RunID string `parquet:"run_id,snappy"`

	File   string `parquet:"file,snappy"`
	Status string `parquet:"status,snappy"`

	// Kind is breaking, non_breaking or description (nullable)
	Kind   *string `parquet:"kind,optional,snappy"`
	Path   *string `parquet:"path,optional,snappy"`
	Change *string `parquet:"change,optional,snappy"`

	// Old and New hold the compact JSON encoding of the values (nullable)
	Old *string `parquet:"old,optional,snappy"`
	New *string `parquet:"new,optional,snappy"`

	Detail *string `parquet:"detail,optional,snappy"`
}

// RunRow represents a single comparison run.
// This struct maps to the schemadiff_runs database table.
type RunRow struct {
	RunID   int64  `parquet:"run_id,snappy"`
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	OldRoot       string  `parquet:"old_root,snappy"`
	NewRoot       string  `parquet:"new_root,snappy"`
	OverallStatus *string `parquet:"overall_status,optional,snappy"`
	TotalFiles    int32   `parquet:"total_files,snappy"`
}

// FileResultRow is the outcome of one file in a run.
// This struct maps to the schemadiff_file_results database table.
type FileResultRow struct {
	RunID            int64   `parquet:"run_id,snappy"`
	FileName         string  `parquet:"file_name,snappy"`
	Status           string  `parquet:"status,snappy"`
	BreakingCount    int32   `parquet:"breaking_count,snappy"`
	NonBreakingCount int32   `parquet:"non_breaking_count,snappy"`
	DescriptionCount int32   `parquet:"description_count,snappy"`
	Detail           *string `parquet:"detail,optional,snappy"`
	OldDigest        *string `parquet:"old_digest,optional,snappy"`
	NewDigest        *string `parquet:"new_digest,optional,snappy"`
}

// WriteRows writes rows to w using the schema inferred from T's struct tags.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteRowsToFile creates outputPath and writes rows to it.
func WriteRowsToFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return WriteRows(file, rows)
}

// ConvertReport flattens a report into change rows in result order.
func ConvertReport(report *schema.Report) []ChangeRow {
	var rows []ChangeRow
	for _, fc := range report.Results {
		base := ChangeRow{
			RunID:  report.RunID,
			File:   fc.File,
			Status: string(fc.Status),
			Detail: optionalString(fc.Detail),
		}
		if fc.Diff == nil || fc.Diff.IsEmpty() {
			rows = append(rows, base)
			continue
		}
		for _, kind := range schema.ChangeKinds {
			for _, rec := range fc.Diff.Records(kind) {
				row := base
				row.Kind = optionalString(string(kind))
				path := rec.Path
				row.Path = &path
				row.Change = optionalString(rec.Change)
				if rec.HasOld {
					row.Old = encodeValue(rec.Old)
				}
				if rec.HasNew {
					row.New = encodeValue(rec.New)
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// ConvertRunRecords converts store records to Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []RunRow {
	rows := make([]RunRow, len(records))
	for i, r := range records {
		rows[i] = RunRow{
			RunID:         r.RunID,
			RunUUID:       r.RunUUID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			OldRoot:       r.OldRoot,
			NewRoot:       r.NewRoot,
			OverallStatus: r.OverallStatus,
			TotalFiles:    r.TotalFiles,
		}
	}
	return rows
}

// ConvertFileResultRecords converts store records to Parquet rows.
func ConvertFileResultRecords(records []schema.FileResultRecord) []FileResultRow {
	rows := make([]FileResultRow, len(records))
	for i, r := range records {
		rows[i] = FileResultRow{
			RunID:            r.RunID,
			FileName:         r.FileName,
			Status:           r.Status,
			BreakingCount:    r.BreakingCount,
			NonBreakingCount: r.NonBreakingCount,
			DescriptionCount: r.DescriptionCount,
			Detail:           r.Detail,
			OldDigest:        r.OldDigest,
			NewDigest:        r.NewDigest,
		}
	}
	return rows
}

// EncodeValue renders a change value as compact JSON.
func EncodeValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func encodeValue(v any) *string {
	s := EncodeValue(v)
	return &s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
