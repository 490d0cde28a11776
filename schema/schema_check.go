package schema

// CheckResult holds the results of a semver gate check.
type CheckResult struct {
	Passed        bool
	FailOn        Status
	OverallStatus Status
	OldRoot       string
	NewRoot       string
	TotalFiles    int
	FailedFiles   []CheckFailedFile
	Summary       Summary
	ChangeCounts  map[ChangeKind]int
}

// CheckFailedFile represents a file whose level reached the gate.
type CheckFailedFile struct {
	File             string
	Status           Status
	BreakingCount    int
	NonBreakingCount int
	FirstChange      *ChangeRecord // most severe record, if any
}
