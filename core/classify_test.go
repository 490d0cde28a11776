package core

import (
	"testing"

	"github.com/huangsam/schemadiff/schema"
	"github.com/stretchr/testify/assert"
)

func TestClassifyChange(t *testing.T) {
	rec := schema.ChangeRecord{Path: "x"}
	tests := []struct {
		name string
		diff schema.Diff
		want schema.Status
	}{
		{"empty", schema.NewDiff(), schema.SameStatus},
		{"zero value", schema.Diff{}, schema.SameStatus},
		{"description only", schema.Diff{DescriptionChanges: []schema.ChangeRecord{rec}}, schema.PatchStatus},
		{"non breaking wins over description", schema.Diff{
			NonBreakingChanges: []schema.ChangeRecord{rec},
			DescriptionChanges: []schema.ChangeRecord{rec},
		}, schema.MinorStatus},
		{"breaking wins over everything", schema.Diff{
			BreakingChanges:    []schema.ChangeRecord{rec},
			NonBreakingChanges: []schema.ChangeRecord{rec},
			DescriptionChanges: []schema.ChangeRecord{rec},
		}, schema.MajorStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyChange(tt.diff))
		})
	}
}

func TestDetermineOverallStatus(t *testing.T) {
	tests := []struct {
		name    string
		summary schema.Summary
		want    schema.Status
	}{
		{"empty", schema.Summary{}, schema.UnchangedStatus},
		{"only same", schema.Summary{schema.SameStatus: 3}, schema.UnchangedStatus},
		{"added and removed are ignored", schema.Summary{schema.AddedStatus: 2, schema.RemovedStatus: 1}, schema.UnchangedStatus},
		{"patch", schema.Summary{schema.PatchStatus: 1, schema.SameStatus: 4}, schema.PatchStatus},
		{"minor beats patch", schema.Summary{schema.MinorStatus: 1, schema.PatchStatus: 5}, schema.MinorStatus},
		{"major beats all", schema.Summary{schema.MajorStatus: 1, schema.MinorStatus: 2, schema.AddedStatus: 1}, schema.MajorStatus},
		{"zero counts ignored", schema.Summary{schema.MajorStatus: 0, schema.PatchStatus: 1}, schema.PatchStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineOverallStatus(tt.summary))
		})
	}
}

func TestSummarize(t *testing.T) {
	results := []schema.FileComparison{
		{File: "a.json", Status: schema.MajorStatus},
		{File: "b.json", Status: schema.SameStatus},
		{File: "c.json", Status: schema.MajorStatus},
		{File: "d.json", Status: schema.AddedStatus},
	}

	summary := Summarize(results)
	assert.Equal(t, schema.Summary{
		schema.MajorStatus: 2,
		schema.SameStatus:  1,
		schema.AddedStatus: 1,
	}, summary)
	_, hasMinor := summary[schema.MinorStatus]
	assert.False(t, hasMinor)
}
