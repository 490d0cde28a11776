package core

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/huangsam/schemadiff/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkReport() *schema.Report {
	major := schema.NewDiff()
	major.Add(schema.BreakingChange, schema.ChangeRecord{Path: "required", Change: "new required fields: ['b']"})
	minor := schema.NewDiff()
	minor.Add(schema.NonBreakingChange, schema.ChangeRecord{Path: "properties", Change: "new properties added: ['c']"})
	patch := schema.NewDiff()
	patch.Add(schema.DescriptionChange, schema.ChangeRecord{Path: "title", Change: "added description field"}.WithNew("T"))

	report := &schema.Report{
		Inputs: schema.ReportInputs{Old: "v1", New: "v2"},
		Results: []schema.FileComparison{
			{File: "a.json", Status: schema.MajorStatus, Diff: &major},
			{File: "b.json", Status: schema.MinorStatus, Diff: &minor},
			{File: "c.json", Status: schema.PatchStatus, Diff: &patch},
			{File: "d.json", Status: schema.AddedStatus, Detail: "File added"},
		},
	}
	report.Summary = Summarize(report.Results)
	report.OverallStatus = DetermineOverallStatus(report.Summary)
	return report
}

func TestBuildCheckResult(t *testing.T) {
	tests := []struct {
		name       string
		failOn     schema.Status
		wantPassed bool
		wantFiles  []string
	}{
		{"major gate", schema.MajorStatus, false, []string{"a.json"}},
		{"minor gate", schema.MinorStatus, false, []string{"a.json", "b.json"}},
		{"patch gate", schema.PatchStatus, false, []string{"a.json", "b.json", "c.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildCheckResult(checkReport(), tt.failOn)
			assert.Equal(t, tt.wantPassed, result.Passed)
			assert.Equal(t, schema.MajorStatus, result.OverallStatus)
			assert.Equal(t, 4, result.TotalFiles)

			var files []string
			for _, f := range result.FailedFiles {
				files = append(files, f.File)
			}
			assert.Equal(t, tt.wantFiles, files)
		})
	}
}

func TestBuildCheckResult_Passes(t *testing.T) {
	report := checkReport()
	report.Results = report.Results[1:]
	report.Summary = Summarize(report.Results)
	report.OverallStatus = DetermineOverallStatus(report.Summary)

	result := BuildCheckResult(report, schema.MajorStatus)
	assert.True(t, result.Passed)
	assert.Empty(t, result.FailedFiles)
	assert.Equal(t, 1, result.ChangeCounts[schema.NonBreakingChange])
}

func TestBuildCheckResult_FailedFileDetails(t *testing.T) {
	result := BuildCheckResult(checkReport(), schema.MinorStatus)
	require.Len(t, result.FailedFiles, 2)

	first := result.FailedFiles[0]
	assert.Equal(t, 1, first.BreakingCount)
	require.NotNil(t, first.FirstChange)
	assert.Equal(t, "required", first.FirstChange.Path)

	second := result.FailedFiles[1]
	assert.Equal(t, 0, second.BreakingCount)
	assert.Equal(t, 1, second.NonBreakingCount)
	require.NotNil(t, second.FirstChange)
	assert.Equal(t, "properties", second.FirstChange.Path)
}

func TestFirstChange(t *testing.T) {
	assert.Nil(t, firstChange(schema.NewDiff()))

	diff := schema.NewDiff()
	diff.Add(schema.DescriptionChange, schema.ChangeRecord{Path: "title"})
	diff.Add(schema.NonBreakingChange, schema.ChangeRecord{Path: "required"})
	rec := firstChange(diff)
	require.NotNil(t, rec)
	assert.Equal(t, "required", rec.Path)
}

func TestDescribeChange(t *testing.T) {
	tests := []struct {
		name string
		rec  schema.ChangeRecord
		want string
	}{
		{"with change", schema.ChangeRecord{Path: "type", Change: "added schema keyword"}, "type: added schema keyword"},
		{"root path", schema.ChangeRecord{Change: "Changed type from object to array"}, "(root): Changed type from object to array"},
		{"value change", schema.ChangeRecord{Path: "minimum"}.WithOld(0.0).WithNew(1.0), "minimum: 0 -> 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeChange(tt.rec))
		})
	}
}

func TestPrintCheckResult(t *testing.T) {
	var failed bytes.Buffer
	printCheckResult(&failed, BuildCheckResult(checkReport(), schema.MinorStatus), time.Second)
	out := failed.String()
	assert.Contains(t, out, "Schema Check Results:")
	assert.Contains(t, out, "Fail on:  minor")
	assert.Contains(t, out, "❌ Schema check failed: 2 file(s) at or above minor across 4 files")
	assert.Contains(t, out, "a.json: major (breaking=1, non_breaking=0)")
	assert.Contains(t, out, "first change at required: new required fields: ['b']")
	assert.Contains(t, out, "Changes: breaking=1, non_breaking=1, description=1")

	report := checkReport()
	report.Results = report.Results[2:]
	report.Summary = Summarize(report.Results)
	report.OverallStatus = DetermineOverallStatus(report.Summary)

	var passed bytes.Buffer
	printCheckResult(&passed, BuildCheckResult(report, schema.MajorStatus), time.Second)
	out = passed.String()
	assert.Contains(t, out, "✅ No changes at or above major")
	assert.Contains(t, out, "  patch: 1")
	assert.Contains(t, out, "  added: 1")
}

func TestExecuteSchemaCheck(t *testing.T) {
	oldDir, newDir := t.TempDir(), t.TempDir()
	writeTree(t, oldDir, map[string]string{"a.json": `{"required":["a","b"]}`})
	writeTree(t, newDir, map[string]string{"a.json": `{"required":["a"]}`})

	cfg := diffConfig(oldDir, newDir)
	cfg.FailOn = schema.MajorStatus

	var buf bytes.Buffer
	result, err := ExecuteSchemaCheck(context.Background(), cfg, nil, &buf)
	require.NoError(t, err)
	assert.True(t, result.Passed, "removing a required field is minor")

	cfg.FailOn = schema.MinorStatus
	result, err = ExecuteSchemaCheck(context.Background(), cfg, nil, &buf)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	_, err = ExecuteSchemaCheck(context.Background(), diffConfig(oldDir, t.TempDir()), nil, &buf)
	assert.ErrorIs(t, err, ErrNoInputs)
}
