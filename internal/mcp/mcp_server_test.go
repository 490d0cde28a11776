package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/schemadiff/internal/contract"
	mcp_internal "github.com/huangsam/schemadiff/internal/mcp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	baseCfg := &contract.Config{Workers: 1, Pattern: contract.DefaultPattern}
	s := mcp_internal.NewMCPServer(baseCfg, nil, "test")

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestCompareSchemasTool(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.json")
	newPath := filepath.Join(dir, "new.json")
	require.NoError(t, os.WriteFile(oldPath, []byte(`{"required":["a"]}`), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte(`{"required":["a","b"]}`), 0o644))

	res := callTool(t, "compare_schemas", map[string]any{"old_path": oldPath, "new_path": newPath})
	assert.False(t, res.IsError)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Equal(t, "major", report["overall_status"])
	assert.Len(t, report["results"], 1)
}

func TestCompareSchemasTool_Errors(t *testing.T) {
	t.Run("missing argument", func(t *testing.T) {
		res := callTool(t, "compare_schemas", map[string]any{"old_path": "a.json"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "required")
	})

	t.Run("no inputs", func(t *testing.T) {
		res := callTool(t, "compare_schemas", map[string]any{"old_path": t.TempDir(), "new_path": t.TempDir()})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "no JSON files found")
	})
}

func TestDiffSchemaDocumentsTool(t *testing.T) {
	res := callTool(t, "diff_schema_documents", map[string]any{
		"old_json": `{"properties":{"a":{}}}`,
		"new_json": `{"properties":{"a":{},"b":{}}}`,
	})
	assert.False(t, res.IsError)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, "minor", decoded["level"])
	diff := decoded["diff"].(map[string]any)
	assert.Len(t, diff["non_breaking_changes"], 1)
}

func TestDiffSchemaDocumentsTool_Errors(t *testing.T) {
	res := callTool(t, "diff_schema_documents", map[string]any{"old_json": `{`, "new_json": `{}`})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid old document")

	res = callTool(t, "diff_schema_documents", map[string]any{"old_json": `{}`})
	assert.True(t, res.IsError)
}
