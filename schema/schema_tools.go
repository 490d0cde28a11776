package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// Replacement is a (source, target) pair for one URI segment.
type Replacement struct {
	Source string
	Target string
}

// MarshalJSON encodes the pair as a two element array.
func (r Replacement) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{r.Source, r.Target})
}

// UnmarshalJSON decodes a two element array.
func (r *Replacement) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("replacement must have exactly two elements, got %d", len(pair))
	}
	r.Source, r.Target = pair[0], pair[1]
	return nil
}

// RewriteSummary is printed after rewrite-ids finishes.
type RewriteSummary struct {
	Timestamp               time.Time               `json:"timestamp"`
	Inputs                  []string                `json:"inputs"`
	Replacements            map[Segment]Replacement `json:"replacements"`
	RequireAllSegmentsMatch bool                    `json:"require_all_segments_match"`
	NTotalFiles             int                     `json:"n_total_files"`
	NModified               int                     `json:"n_modified"`
	ProcessedFiles          []string                `json:"processed_files"`
	ModifiedFiles           []string                `json:"modified_files"`
	URIMappings             map[string]string       `json:"uri_mappings"`
}

// ValidationResult is the outcome of validating one metadata file.
type ValidationResult struct {
	File   string `json:"file"`
	Passed bool   `json:"passed"`
	Errors []any  `json:"errors,omitempty"`
}

// ValidationSummary is printed after validate finishes.
type ValidationSummary struct {
	Timestamp           time.Time        `json:"timestamp"`
	ValidatorURL        string           `json:"validator_url"`
	InputPaths          []string         `json:"input_paths"`
	NTotalFiles         int              `json:"n_total_files"`
	NFailedFiles        int              `json:"n_failed_files"`
	FailedFiles         []string         `json:"failed_files"`
	ErrorsOfFailedFiles map[string][]any `json:"errors_of_failed_files"`
}
