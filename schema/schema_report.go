package schema

import "time"

// FileComparison is the outcome for one matched file name.
// Added and removed files carry Detail and no Diff. The digests are xxhash64
// fingerprints of each side's bytes, empty for a missing side; they are kept
// in run history and left out of the report.
type FileComparison struct {
	File      string `json:"file"`
	Status    Status `json:"status"`
	Diff      *Diff  `json:"diff,omitempty"`
	Detail    string `json:"detail,omitempty"`
	OldDigest string `json:"-"`
	NewDigest string `json:"-"`
}

// ReportInputs names the two trees being compared.
type ReportInputs struct {
	Old string `json:"set1 (old)"`
	New string `json:"set2 (new)"`
}

// Summary counts files per status. Only statuses that occurred are present.
type Summary map[Status]int

// Report is the full result of one comparison run.
type Report struct {
	RunID         string           `json:"run_id"`
	Timestamp     time.Time        `json:"timestamp"`
	OverallStatus Status           `json:"overall_status"`
	Inputs        ReportInputs     `json:"inputs"`
	Summary       Summary          `json:"summary"`
	Results       []FileComparison `json:"results"`
}

// IsAtLeast reports whether the overall verdict reaches the given level.
func (r *Report) IsAtLeast(level Status) bool {
	return r.OverallStatus.Severity() >= level.Severity() && level.Severity() > 0
}

// ChangeCounts returns the number of records per bucket across every file.
func (r *Report) ChangeCounts() map[ChangeKind]int {
	counts := make(map[ChangeKind]int, len(ChangeKinds))
	for _, fc := range r.Results {
		if fc.Diff == nil {
			continue
		}
		for _, kind := range ChangeKinds {
			counts[kind] += len(fc.Diff.Records(kind))
		}
	}
	return counts
}

// DocumentDiff is the result of comparing two in-memory documents.
type DocumentDiff struct {
	Level Status `json:"level"`
	Diff  Diff   `json:"diff"`
}
