package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// driverFor returns the database/sql driver name and DSN for a backend.
// MySQL DSNs get parseTime so DATETIME columns scan into time.Time.
func driverFor(backend schema.DatabaseBackend, connStr string) (string, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = contract.GetHistoryDBFilePath()
		}
		return "sqlite", connStr, nil
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return "", "", fmt.Errorf("invalid MySQL connection string: %w. Expected format: user:password@tcp(host:port)/dbname", err)
		}
		cfg.ParseTime = true
		return "mysql", cfg.FormatDSN(), nil
	case schema.PostgreSQLBackend:
		return "pgx", connStr, nil
	default:
		return "", "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// openDB opens and pings the database for a backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driverName, dsn, err := driverFor(backend, connStr)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Check that the directory is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, nil
}

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// quoteTableName quotes an identifier for the backend's SQL dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// createHistoryTables creates the history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		runsTable:        getCreateRunsQuery(backend),
		fileResultsTable: getCreateFileResultsQuery(backend),
	}
	for _, table := range historyTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for schemadiff_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid VARCHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				old_root TEXT NOT NULL,
				new_root TEXT NOT NULL,
				overall_status VARCHAR(16),
				total_files INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				old_root TEXT NOT NULL,
				new_root TEXT NOT NULL,
				overall_status TEXT,
				total_files INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				old_root TEXT NOT NULL,
				new_root TEXT NOT NULL,
				overall_status TEXT,
				total_files INTEGER NOT NULL DEFAULT 0
			);
		`, quotedTableName)
	}
}

// getCreateFileResultsQuery returns the CREATE TABLE query for schemadiff_file_results.
func getCreateFileResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(fileResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				file_name VARCHAR(512) NOT NULL,
				status VARCHAR(16) NOT NULL,
				breaking_count INT NOT NULL,
				non_breaking_count INT NOT NULL,
				description_count INT NOT NULL,
				detail VARCHAR(64),
				old_digest VARCHAR(16),
				new_digest VARCHAR(16),
				PRIMARY KEY (run_id, file_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				file_name TEXT NOT NULL,
				status TEXT NOT NULL,
				breaking_count INT NOT NULL,
				non_breaking_count INT NOT NULL,
				description_count INT NOT NULL,
				detail TEXT,
				old_digest TEXT,
				new_digest TEXT,
				PRIMARY KEY (run_id, file_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				file_name TEXT NOT NULL,
				status TEXT NOT NULL,
				breaking_count INTEGER NOT NULL,
				non_breaking_count INTEGER NOT NULL,
				description_count INTEGER NOT NULL,
				detail TEXT,
				old_digest TEXT,
				new_digest TEXT,
				PRIMARY KEY (run_id, file_name)
			);
		`, quotedTableName)
	}
}

// placeholders returns n bind parameters in the backend's style.
func placeholders(backend schema.DatabaseBackend, n int) []string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(ctx context.Context, runUUID string, startTime time.Time, oldRoot, newRoot string) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	p := placeholders(hs.backend, 4)
	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, old_root, new_root) VALUES (%s, %s, %s, %s)`,
		quotedTableName, p[0], p[1], p[2], p[3])
	args := []any{runUUID, formatTime(startTime, hs.backend), oldRoot, newRoot}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		if err := hs.db.QueryRowContext(ctx, query+" RETURNING run_id", args...).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
	default: // SQLite and MySQL
		result, err := hs.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if runID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read run id: %w", err)
		}
	}

	return runID, nil
}

// RecordFileResult stores one file outcome with its per-bucket counts.
func (hs *HistoryStoreImpl) RecordFileResult(ctx context.Context, runID int64, result schema.FileComparison) error {
	if hs.db == nil {
		return nil
	}

	var breaking, nonBreaking, description int
	if result.Diff != nil {
		breaking = len(result.Diff.BreakingChanges)
		nonBreaking = len(result.Diff.NonBreakingChanges)
		description = len(result.Diff.DescriptionChanges)
	}
	p := placeholders(hs.backend, 9)
	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, file_name, status, breaking_count, non_breaking_count, description_count, detail, old_digest, new_digest)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, quoteTableName(fileResultsTable, hs.backend), p[0], p[1], p[2], p[3], p[4], p[5], p[6], p[7], p[8])

	args := []any{runID, result.File, string(result.Status), breaking, nonBreaking, description,
		nullIfEmpty(result.Detail), nullIfEmpty(result.OldDigest), nullIfEmpty(result.NewDigest)}
	if _, err := hs.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert file result for %s: %w", result.File, err)
	}
	return nil
}

// nullIfEmpty stores empty strings as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(ctx context.Context, runID int64, endTime time.Time, overall schema.Status, totalFiles int) error {
	if hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	p := placeholders(hs.backend, 1)
	row := hs.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, p[0]), runID)
	startTime, err := scanTime(row, hs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	p = placeholders(hs.backend, 5)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, overall_status = %s, total_files = %s WHERE run_id = %s`,
		quotedTableName, p[0], p[1], p[2], p[3], p[4])
	if _, err := hs.db.ExecContext(ctx, updateQuery, formatTime(endTime, hs.backend), durationMs, string(overall), totalFiles, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var err error
		row := hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err = row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		row = hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if status.LastRunTime, err = scanTime(row, hs.backend); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}

		row = hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns))
		if status.OldestRunTime, err = scanTime(row, hs.backend); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		row = hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COALESCE(SUM(total_files), 0) FROM %s", quotedRuns))
		if err = row.Scan(&status.TotalFilesCompared); err != nil {
			return status, fmt.Errorf("failed to get total files compared: %w", err)
		}

		row = hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE overall_status = 'major'", quotedRuns))
		if err = row.Scan(&status.MajorRuns); err != nil {
			return status, fmt.Errorf("failed to get major runs: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		row := hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns(ctx context.Context) ([]schema.RunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, start_time, end_time, run_duration_ms, old_root, new_root, overall_status, total_files
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.RunUUID, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.OldRoot, &record.NewRoot, &record.OverallStatus, &record.TotalFiles); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.RunUUID, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.OldRoot, &record.NewRoot, &record.OverallStatus, &record.TotalFiles); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllFileResults retrieves all file results from the store.
func (hs *HistoryStoreImpl) GetAllFileResults(ctx context.Context) ([]schema.FileResultRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_name, status, breaking_count, non_breaking_count, description_count, detail, old_digest, new_digest
		FROM %s ORDER BY run_id, file_name`, quoteTableName(fileResultsTable, hs.backend))
	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileResultRecord
	for rows.Next() {
		var record schema.FileResultRecord
		if err := rows.Scan(&record.RunID, &record.FileName, &record.Status, &record.BreakingCount,
			&record.NonBreakingCount, &record.DescriptionCount, &record.Detail, &record.OldDigest, &record.NewDigest); err != nil {
			return nil, fmt.Errorf("failed to scan file result: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file results: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// scanTime reads a single time column, parsing SQLite's text encoding.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}
