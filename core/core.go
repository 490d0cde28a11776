// Package core has the schema comparison rules and the run orchestration
// built on top of them.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoInputs is returned when one side of a comparison has no JSON files.
var ErrNoInputs = errors.New("no JSON files found in one or both inputs")

// loadJSONFile reads and decodes one JSON document.
func loadJSONFile(path string) (any, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := decodeJSON(data)
	if err != nil {
		return nil, data, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, data, nil
}

// decodeJSON decodes exactly one JSON value. Numbers are kept as json.Number
// so large integers keep their exact value in comparisons and in the report.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return doc, nil
}
