package core

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedValidator fails records whose data has "bad" set and errors on
// records whose data has "boom" set.
type scriptedValidator struct {
	mu      sync.Mutex
	pingErr error
	seen    int
}

func (v *scriptedValidator) Name() string { return "scripted" }

func (v *scriptedValidator) Ping(context.Context) error { return v.pingErr }

func (v *scriptedValidator) Validate(_ context.Context, record map[string]any) ([]any, error) {
	v.mu.Lock()
	v.seen++
	v.mu.Unlock()

	data, _ := record["data"].(map[string]any)
	if _, ok := data["boom"]; ok {
		return nil, assert.AnError
	}
	if _, ok := data["bad"]; ok {
		return []any{"bad is not allowed"}, nil
	}
	return []any{}, nil
}

func validateConfig(inputs ...string) *contract.Config {
	return &contract.Config{Inputs: inputs, Pattern: contract.DefaultPattern, Workers: 2}
}

func TestFilterMetadataFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"record.json":   `{"data":{},"schema":{}}`,
		"no-data.json":  `{"schema":{}}`,
		"array.json":    `[{"data":{},"schema":{}}]`,
		"invalid.json":  `{"data":`,
		"decimals.json": `{"data":{"n":1.50},"schema":{"type":"object"}}`,
	})

	var paths []string
	for _, name := range []string{"array.json", "decimals.json", "invalid.json", "no-data.json", "record.json"} {
		paths = append(paths, filepath.Join(dir, name))
	}
	targets := filterMetadataFiles(paths)
	require.Len(t, targets, 2)
	assert.Equal(t, filepath.Join(dir, "decimals.json"), targets[0].path)
	assert.Equal(t, json.Number("1.50"), targets[0].record["data"].(map[string]any)["n"])
	assert.Equal(t, filepath.Join(dir, "record.json"), targets[1].path)
}

func TestExecuteValidate(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"good.json":    `{"data":{"name":"a"},"schema":{}}`,
		"bad.json":     `{"data":{"bad":true},"schema":{}}`,
		"boom.json":    `{"data":{"boom":true},"schema":{}}`,
		"ignored.json": `{"title":"not a record"}`,
	})

	v := &scriptedValidator{}
	var out bytes.Buffer
	summary, err := ExecuteValidate(context.Background(), validateConfig(dir), v, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, v.seen)
	assert.Equal(t, "scripted", summary.ValidatorURL)
	assert.Equal(t, 3, summary.NTotalFiles)
	assert.Equal(t, 2, summary.NFailedFiles)
	assert.Equal(t, []string{filepath.Join(dir, "bad.json"), filepath.Join(dir, "boom.json")}, summary.FailedFiles)
	assert.Equal(t, []any{"bad is not allowed"}, summary.ErrorsOfFailedFiles[filepath.Join(dir, "bad.json")])
	assert.Equal(t, []any{assert.AnError.Error()}, summary.ErrorsOfFailedFiles[filepath.Join(dir, "boom.json")])

	var printed map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, float64(2), printed["n_failed_files"])
	assert.Equal(t, []any{dir}, printed["input_paths"])
}

func TestExecuteValidate_AllPass(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"good.json": `{"data":{},"schema":{}}`})

	var out bytes.Buffer
	summary, err := ExecuteValidate(context.Background(), validateConfig(dir), &scriptedValidator{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NFailedFiles)
	assert.Contains(t, out.String(), `"failed_files": []`)
	assert.Contains(t, out.String(), `"errors_of_failed_files": {}`)
}

func TestExecuteValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"plain.json": `{"type":"object"}`})

	_, err := ExecuteValidate(context.Background(), validateConfig(dir), &scriptedValidator{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoMetadataFiles)

	v := &scriptedValidator{pingErr: assert.AnError}
	_, err = ExecuteValidate(context.Background(), validateConfig(dir), v, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrValidatorUnreachable)
	assert.Equal(t, 0, v.seen)
}
