// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is advertised to MCP clients.
const ServerName = "Schema Diff Server"

// NewMCPServer initializes and configures the schema diff MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("compare_schemas",
		mcp.WithDescription("Compare two JSON Schema files or directories and classify every change as a major, minor or patch version bump."),
		mcp.WithString("old_path", mcp.Description("Path to the old schema file or directory."), mcp.Required()),
		mcp.WithString("new_path", mcp.Description("Path to the new schema file or directory."), mcp.Required()),
	), h.handleCompareSchemas)

	s.AddTool(mcp.NewTool("diff_schema_documents",
		mcp.WithDescription("Diff two JSON Schema documents given inline and return the semver level with the change records."),
		mcp.WithString("old_json", mcp.Description("The old schema as a JSON string."), mcp.Required()),
		mcp.WithString("new_json", mcp.Description("The new schema as a JSON string."), mcp.Required()),
	), h.handleDiffDocuments)

	return s
}

// StartMCPServer serves the tools over stdio until the client disconnects.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
