package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/huangsam/schemadiff/schema"
)

// ExecuteSchemaCheck runs the check command for CI/CD gating.
// It compares both trees and fails when the overall level reaches cfg.FailOn.
// The returned result is nil only when an error occurred.
func ExecuteSchemaCheck(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, w io.Writer) (*schema.CheckResult, error) {
	start := time.Now()

	report, err := BuildReport(ctx, cfg, historyStoreOf(mgr))
	if err != nil {
		return nil, err
	}

	result := BuildCheckResult(report, cfg.FailOn)
	printCheckResult(w, result, time.Since(start))
	return result, nil
}

// BuildCheckResult applies the gate to a finished report.
func BuildCheckResult(report *schema.Report, failOn schema.Status) *schema.CheckResult {
	result := &schema.CheckResult{
		FailOn:        failOn,
		OverallStatus: report.OverallStatus,
		OldRoot:       report.Inputs.Old,
		NewRoot:       report.Inputs.New,
		TotalFiles:    len(report.Results),
		Summary:       report.Summary,
		ChangeCounts:  report.ChangeCounts(),
	}

	for _, fc := range report.Results {
		if fc.Status.Severity() == 0 || fc.Status.Severity() < failOn.Severity() {
			continue
		}
		failed := schema.CheckFailedFile{File: fc.File, Status: fc.Status}
		if fc.Diff != nil {
			failed.BreakingCount = len(fc.Diff.BreakingChanges)
			failed.NonBreakingCount = len(fc.Diff.NonBreakingChanges)
			failed.FirstChange = firstChange(*fc.Diff)
		}
		result.FailedFiles = append(result.FailedFiles, failed)
	}

	result.Passed = !report.IsAtLeast(failOn)
	return result
}

// firstChange returns the first record of the most severe non-empty bucket.
func firstChange(diff schema.Diff) *schema.ChangeRecord {
	for _, kind := range schema.ChangeKinds {
		if records := diff.Records(kind); len(records) > 0 {
			rec := records[0]
			return &rec
		}
	}
	return nil
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(w, result, duration)

	if result.Passed {
		printCheckSuccess(w, result)
	} else {
		printCheckFailure(w, result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Schema Check Results:")

	// Define labels and values for dynamic padding
	labels := []string{"Old:", "New:", "Fail on:", "Overall:"}
	values := []any{result.OldRoot, result.NewRoot, result.FailOn, result.OverallStatus}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		_, _ = fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Checked %d files in %v\n\n", result.TotalFiles, duration)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "✅ No changes at or above %s\n\n", result.FailOn)
	_, _ = fmt.Fprintln(w, "Files observed:")
	for _, status := range schema.FileStatuses {
		if n := result.Summary[status]; n > 0 {
			_, _ = fmt.Fprintf(w, "  %s: %d\n", status, n)
		}
	}
}

// printCheckFailure prints the failure case output.
func printCheckFailure(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "❌ Schema check failed: %d file(s) at or above %s across %d files\n\n",
		len(result.FailedFiles), result.FailOn, result.TotalFiles)

	for _, failed := range result.FailedFiles {
		_, _ = fmt.Fprintf(w, "  %s: %s (breaking=%d, non_breaking=%d)\n",
			failed.File, failed.Status, failed.BreakingCount, failed.NonBreakingCount)
		if failed.FirstChange != nil {
			_, _ = fmt.Fprintf(w, "    first change at %s\n", describeChange(*failed.FirstChange))
		}
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Changes: breaking=%d, non_breaking=%d, description=%d\n",
		result.ChangeCounts[schema.BreakingChange],
		result.ChangeCounts[schema.NonBreakingChange],
		result.ChangeCounts[schema.DescriptionChange])
}

// describeChange renders a record on one line.
func describeChange(rec schema.ChangeRecord) string {
	path := rec.Path
	if path == "" {
		path = "(root)"
	}
	if rec.Change != "" {
		return path + ": " + rec.Change
	}
	return fmt.Sprintf("%s: %v -> %v", path, rec.Old, rec.New)
}
