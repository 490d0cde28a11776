package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/schemadiff/core"
	"github.com/huangsam/schemadiff/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

func (h *toolHandler) handleCompareSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.OldPath = request.GetString("old_path", "")
	cfg.NewPath = request.GetString("new_path", "")
	if cfg.OldPath == "" || cfg.NewPath == "" {
		return mcp.NewToolResultError("old_path and new_path are required"), nil
	}
	cfg.Inputs = []string{cfg.OldPath, cfg.NewPath}

	var store contract.HistoryStore
	if h.mgr != nil {
		store = h.mgr.GetHistoryStore()
	}
	report, err := core.BuildReport(ctx, cfg, store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDiffDocuments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldJSON := request.GetString("old_json", "")
	newJSON := request.GetString("new_json", "")
	if oldJSON == "" || newJSON == "" {
		return mcp.NewToolResultError("old_json and new_json are required"), nil
	}

	jsonData, err := core.DiffDocumentsJSON([]byte(oldJSON), []byte(newJSON))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("diff failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
