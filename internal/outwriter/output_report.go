package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/internal/parquet"
	"github.com/huangsam/schemadiff/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// maxValueWidth caps old/new cells in the detail table.
const maxValueWidth = 40

// PrintReport outputs the report, dispatching based on the output format configured.
func PrintReport(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertReport(report))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, report, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeReportTable generates and writes the human-readable tables.
func writeReportTable(w io.Writer, report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	pathWidth := GetMaxTablePathWidth(cfg)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"File", "Status", "Breaking", "Non-breaking", "Description"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, fc := range report.Results {
		breaking, nonBreaking, description := "-", "-", "-"
		if fc.Diff != nil {
			breaking = strconv.Itoa(len(fc.Diff.BreakingChanges))
			nonBreaking = strconv.Itoa(len(fc.Diff.NonBreakingChanges))
			description = strconv.Itoa(len(fc.Diff.DescriptionChanges))
		}
		data = append(data, []string{
			contract.TruncatePath(fc.File, pathWidth),
			contract.GetStatusLabel(fc.Status, cfg.UseColors),
			breaking,
			nonBreaking,
			description,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if cfg.Detail {
		if err := writeReportDetailTable(w, report, pathWidth); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Compared %d files (%s). Overall status: %s\n",
		len(report.Results), formatSummary(report.Summary), contract.GetStatusLabel(report.OverallStatus, cfg.UseColors)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Run %s completed in %v with %d workers\n", report.RunID, duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// writeReportDetailTable lists every change record.
func writeReportDetailTable(w io.Writer, report *schema.Report, pathWidth int) error {
	rows := parquet.ConvertReport(report)
	var data [][]string
	for _, r := range rows {
		if r.Kind == nil {
			continue
		}
		data = append(data, []string{
			contract.TruncatePath(r.File, pathWidth),
			*r.Kind,
			valueOrEmpty(r.Path),
			valueOrEmpty(r.Change),
			contract.TruncatePath(valueOrEmpty(r.Old), maxValueWidth),
			contract.TruncatePath(valueOrEmpty(r.New), maxValueWidth),
		})
	}
	if len(data) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"File", "Kind", "Path", "Change", "Old", "New"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeReportCSV writes one row per change record.
func writeReportCSV(w io.Writer, report *schema.Report) error {
	header := []string{"run_id", "file", "status", "kind", "path", "change", "old", "new", "detail"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range parquet.ConvertReport(report) {
			row := []string{
				r.RunID,
				r.File,
				r.Status,
				valueOrEmpty(r.Kind),
				valueOrEmpty(r.Path),
				valueOrEmpty(r.Change),
				valueOrEmpty(r.Old),
				valueOrEmpty(r.New),
				valueOrEmpty(r.Detail),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// formatSummary renders the counts in display order, e.g. "major=1, same=2".
func formatSummary(summary schema.Summary) string {
	var parts []string
	for _, status := range schema.FileStatuses {
		if n, ok := summary[status]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", status, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
