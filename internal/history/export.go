package history

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/parquet"
)

// ExecuteHistoryExport writes every stored run and file result to a pair of
// Parquet files named after outputFile.
func ExecuteHistoryExport(ctx context.Context, store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run history is disabled")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total file records: %d\n", status.TableSizes[fileResultsTable])

	runs, err := store.GetAllRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	fileResults, err := store.GetAllFileResults(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve file results: %w", err)
	}

	runRows := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRowsToFile(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runRows), runsFile)

	resultRows := parquet.ConvertFileResultRecords(fileResults)
	resultsFile := outputFile + ".file_results.parquet"
	if err := parquet.WriteRowsToFile(resultRows, resultsFile); err != nil {
		return fmt.Errorf("failed to write file results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file results to: %s\n", len(resultRows), resultsFile)

	return nil
}
