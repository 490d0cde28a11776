// Package schema has the models and constants shared by every part of schemadiff.
package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// Status represents the semver level of a file or of a whole run.
	Status string

	// ChangeKind represents the bucket a change record belongs to.
	ChangeKind string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// Segment is a rewritable part of a raw GitHub URI.
	Segment string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// Per-file statuses. UnchangedStatus is only used for the run-level verdict.
const (
	MajorStatus     Status = "major"
	MinorStatus     Status = "minor"
	PatchStatus     Status = "patch"
	SameStatus      Status = "same"
	AddedStatus     Status = "added"
	RemovedStatus   Status = "removed"
	UnchangedStatus Status = "unchanged"
)

// Change kinds, one per Diff bucket.
const (
	BreakingChange    ChangeKind = "breaking"
	NonBreakingChange ChangeKind = "non_breaking"
	DescriptionChange ChangeKind = "description"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// URI segments that rewrite-ids can swap.
const (
	OwnerSegment  Segment = "owner"
	RepoSegment   Segment = "repo"
	BranchSegment Segment = "branch"
)

// FileStatuses lists per-file statuses in display order.
var FileStatuses = []Status{MajorStatus, MinorStatus, PatchStatus, SameStatus, AddedStatus, RemovedStatus}

// AllSegments lists the rewritable segments in URI order.
var AllSegments = []Segment{OwnerSegment, RepoSegment, BranchSegment}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidFailOnLevels lists the levels accepted by the check gate.
var ValidFailOnLevels = map[Status]struct{}{
	MajorStatus: {},
	MinorStatus: {},
	PatchStatus: {},
}

// ValidSegments lists the segments accepted by rewrite-ids.
var ValidSegments = map[Segment]struct{}{
	OwnerSegment:  {},
	RepoSegment:   {},
	BranchSegment: {},
}

// Severity ranks a status for threshold comparisons. Statuses outside the
// semver ladder rank zero.
func (s Status) Severity() int {
	switch s {
	case MajorStatus:
		return 3
	case MinorStatus:
		return 2
	case PatchStatus:
		return 1
	default:
		return 0
	}
}
