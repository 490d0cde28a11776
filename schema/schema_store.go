package schema

import "time"

// RunRecord represents a row from the schemadiff_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	OldRoot       string
	NewRoot       string
	OverallStatus *string
	TotalFiles    int32
}

// FileResultRecord represents a row from the schemadiff_file_results table.
type FileResultRecord struct {
	RunID            int64
	FileName         string
	Status           string
	BreakingCount    int32
	NonBreakingCount int32
	DescriptionCount int32
	Detail           *string
	OldDigest        *string
	NewDigest        *string
}
