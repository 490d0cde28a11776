package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/history"
	"github.com/huangsam/schemadiff/internal/outwriter"
	"github.com/huangsam/schemadiff/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig resolves the history backend for history subcommands.
// An unset backend means the default SQLite file.
func historyBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := strings.ToLower(viper.GetString("history-backend"))
	connStr := viper.GetString("history-db-connect")

	backend := schema.SQLiteBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}
	if err := history.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.Output = schema.OutputMode(strings.ToLower(viper.GetString("output")))
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyOfflineSetup resolves the backend without opening the store, so
// clear and migrate work against missing or fresh databases.
func historyOfflineSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackendFromConfig()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// sqliteHistoryPath is the database file used by the SQLite backend.
func sqliteHistoryPath() string {
	if cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return contract.GetHistoryDBFilePath()
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization instead of the full
// sharedSetup used by comparison commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the stored history of compare and check runs",
	Long: `Manage the run history recorded by compare and check when --history-backend is set.

Each run stores its verdict, both input roots and one row per compared file
with its status and change counts.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  export  - Export runs and file results to Parquet
  clear   - Remove all history
  migrate - Run database schema migrations

Examples:
  # Record a comparison
  schemadiff compare old/ new/ --history-backend sqlite

  # Inspect what was recorded
  schemadiff history status`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display history statistics and connection details",
	Long:    `Show the backend, connection state, run counts, last and oldest run times and table sizes.`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := history.Manager.GetHistoryStore()
		if store == nil {
			return fatal("Failed to get history status", fmt.Errorf("run history is disabled"))
		}
		status, err := store.GetStatus(rootCtx)
		if err != nil {
			return fatal("Failed to get history status", err)
		}
		if cfg.Output == schema.JSONOut {
			err = outwriter.WriteJSON(os.Stdout, status)
		} else {
			err = outwriter.NewOutWriter().WriteHistoryStatus(status)
		}
		if err != nil {
			return fatal("Failed to print history status", err)
		}
		return nil
	},
}

// historyExportCmd exports history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for analytics",
	Long: `Export all stored runs and file results to Parquet.

Writes two files next to --output-file:
  <output-file>.runs.parquet
  <output-file>.file_results.parquet

Examples:
  schemadiff history export --output-file schemadiff-history
  duckdb -c "SELECT * FROM read_parquet('schemadiff-history.runs.parquet')"`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := history.Manager.GetHistoryStore()
		if err := history.ExecuteHistoryExport(rootCtx, store, cfg.OutputFile, os.Stdout); err != nil {
			return fatal("Failed to export history", err)
		}
		return nil
	},
}

// historyClearCmd clears all history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored run history",
	Long: `Delete every stored run and file result.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables

WARNING: This action cannot be undone. Consider exporting first.`,
	PreRunE: historyOfflineSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := history.ClearHistory(cfg.HistoryBackend, sqliteHistoryPath(), cfg.HistoryDBConnect); err != nil {
			return fatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
		return nil
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  schemadiff history migrate

  # Rollback everything
  schemadiff history migrate --target-version 0`,
	PreRunE: historyOfflineSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		connStr := cfg.HistoryDBConnect
		if cfg.HistoryBackend == schema.SQLiteBackend {
			connStr = sqliteHistoryPath()
		}
		targetVersion := viper.GetInt("target-version")
		if err := history.Migrate(cfg.HistoryBackend, connStr, targetVersion, os.Stdout); err != nil {
			return fatal("Failed to run migrations", err)
		}
		return nil
	},
}
