package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// LocalName is reported as the validator name in local mode.
const LocalName = "local"

// recordSchemaURL is the resource name used for embedded schemas.
const recordSchemaURL = "record-schema.json"

// Local validates the record's data against its embedded schema in process.
type Local struct{}

var _ contract.Validator = Local{} // Compile-time check

// NewLocal creates a local validator.
func NewLocal() Local { return Local{} }

// Name returns "local".
func (Local) Name() string { return LocalName }

// Ping always succeeds.
func (Local) Ping(context.Context) error { return nil }

// Validate compiles record["schema"] and checks record["data"] against it.
// A string schema is compiled from that location.
func (Local) Validate(_ context.Context, record map[string]any) ([]any, error) {
	sch, err := compileRecordSchema(record["schema"])
	if err != nil {
		return []any{err.Error()}, nil
	}

	err = sch.Validate(record["data"])
	if err == nil {
		return []any{}, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []any{err.Error()}, nil
	}
	return validationMessages(ve), nil
}

func compileRecordSchema(doc any) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if location, ok := doc.(string); ok {
		sch, err := c.Compile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema: %w", err)
		}
		return sch, nil
	}

	if err := c.AddResource(recordSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := c.Compile(recordSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// validationMessages flattens the error tree into one message per failed keyword.
func validationMessages(ve *jsonschema.ValidationError) []any {
	var messages []any
	for line := range strings.SplitSeq(ve.Error(), "\n") {
		line = strings.TrimSpace(line)
		if msg, ok := strings.CutPrefix(line, "- "); ok {
			messages = append(messages, msg)
		}
	}
	if len(messages) == 0 {
		messages = append(messages, ve.Error())
	}
	return messages
}
