package core

import "github.com/huangsam/schemadiff/schema"

// ClassifyChange reduces a Diff to a single level. Breaking beats
// non-breaking beats description-only.
func ClassifyChange(diff schema.Diff) schema.Status {
	switch {
	case len(diff.BreakingChanges) > 0:
		return schema.MajorStatus
	case len(diff.NonBreakingChanges) > 0:
		return schema.MinorStatus
	case len(diff.DescriptionChanges) > 0:
		return schema.PatchStatus
	default:
		return schema.SameStatus
	}
}

// DetermineOverallStatus rolls per-file counts into the run verdict.
// Added and removed files never contribute.
func DetermineOverallStatus(summary schema.Summary) schema.Status {
	switch {
	case summary[schema.MajorStatus] > 0:
		return schema.MajorStatus
	case summary[schema.MinorStatus] > 0:
		return schema.MinorStatus
	case summary[schema.PatchStatus] > 0:
		return schema.PatchStatus
	default:
		return schema.UnchangedStatus
	}
}

// Summarize counts results per status.
func Summarize(results []schema.FileComparison) schema.Summary {
	summary := make(schema.Summary)
	for _, r := range results {
		summary[r.Status]++
	}
	return summary
}
