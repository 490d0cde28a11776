package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChangeRecord is one detected difference at a pointer path.
// Old and New are only serialized when HasOld and HasNew are set, so a record
// can carry an explicit JSON null as either side.
type ChangeRecord struct {
	Path   string
	Change string
	Old    any
	New    any
	HasOld bool
	HasNew bool
}

// WithOld returns a copy of the record carrying the old value.
func (c ChangeRecord) WithOld(v any) ChangeRecord {
	c.Old, c.HasOld = v, true
	return c
}

// WithNew returns a copy of the record carrying the new value.
func (c ChangeRecord) WithNew(v any) ChangeRecord {
	c.New, c.HasNew = v, true
	return c
}

// MarshalJSON writes path, change, old and new in that order, omitting absent payloads.
func (c ChangeRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"path":`)
	if err := writeJSONValue(&buf, c.Path); err != nil {
		return nil, err
	}
	if c.Change != "" {
		buf.WriteString(`,"change":`)
		if err := writeJSONValue(&buf, c.Change); err != nil {
			return nil, err
		}
	}
	if c.HasOld {
		buf.WriteString(`,"old":`)
		if err := writeJSONValue(&buf, c.Old); err != nil {
			return nil, err
		}
	}
	if c.HasNew {
		buf.WriteString(`,"new":`)
		if err := writeJSONValue(&buf, c.New); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a record, tracking which payload keys were present.
func (c *ChangeRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ChangeRecord{}
	if v, ok := raw["path"]; ok {
		if err := json.Unmarshal(v, &c.Path); err != nil {
			return fmt.Errorf("path: %w", err)
		}
	}
	if v, ok := raw["change"]; ok {
		if err := json.Unmarshal(v, &c.Change); err != nil {
			return fmt.Errorf("change: %w", err)
		}
	}
	if v, ok := raw["old"]; ok {
		c.HasOld = true
		if err := json.Unmarshal(v, &c.Old); err != nil {
			return fmt.Errorf("old: %w", err)
		}
	}
	if v, ok := raw["new"]; ok {
		c.HasNew = true
		if err := json.Unmarshal(v, &c.New); err != nil {
			return fmt.Errorf("new: %w", err)
		}
	}
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode always appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Diff holds the three ordered buckets produced by comparing two schema trees.
type Diff struct {
	BreakingChanges    []ChangeRecord `json:"breaking_changes"`
	NonBreakingChanges []ChangeRecord `json:"non_breaking_changes"`
	DescriptionChanges []ChangeRecord `json:"description_changes"`
}

// NewDiff returns a Diff with empty, non-nil buckets.
func NewDiff() Diff {
	return Diff{
		BreakingChanges:    []ChangeRecord{},
		NonBreakingChanges: []ChangeRecord{},
		DescriptionChanges: []ChangeRecord{},
	}
}

// Add appends a record to the bucket for kind.
func (d *Diff) Add(kind ChangeKind, rec ChangeRecord) {
	switch kind {
	case BreakingChange:
		d.BreakingChanges = append(d.BreakingChanges, rec)
	case NonBreakingChange:
		d.NonBreakingChanges = append(d.NonBreakingChanges, rec)
	case DescriptionChange:
		d.DescriptionChanges = append(d.DescriptionChanges, rec)
	default:
		panic(fmt.Sprintf("schema: unknown change kind %q", kind))
	}
}

// Records returns the bucket for kind.
func (d Diff) Records(kind ChangeKind) []ChangeRecord {
	switch kind {
	case BreakingChange:
		return d.BreakingChanges
	case NonBreakingChange:
		return d.NonBreakingChanges
	case DescriptionChange:
		return d.DescriptionChanges
	}
	return nil
}

// Len returns the total number of records across all buckets.
func (d Diff) Len() int {
	return len(d.BreakingChanges) + len(d.NonBreakingChanges) + len(d.DescriptionChanges)
}

// IsEmpty reports whether no change was recorded.
func (d Diff) IsEmpty() bool {
	return d.Len() == 0
}

// MarshalJSON encodes nil buckets as empty arrays.
func (d Diff) MarshalJSON() ([]byte, error) {
	type plain Diff
	out := plain(d)
	if out.BreakingChanges == nil {
		out.BreakingChanges = []ChangeRecord{}
	}
	if out.NonBreakingChanges == nil {
		out.NonBreakingChanges = []ChangeRecord{}
	}
	if out.DescriptionChanges == nil {
		out.DescriptionChanges = []ChangeRecord{}
	}
	return json.Marshal(out)
}

// ChangeKinds lists the buckets in serialization order.
var ChangeKinds = []ChangeKind{BreakingChange, NonBreakingChange, DescriptionChange}
