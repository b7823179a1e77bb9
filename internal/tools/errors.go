package tools

import (
	"encoding/json"
	"errors"

	"lingochat-backend/internal/service"
	"lingochat-backend/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolErrorResult is the body of every failed tool call.
type ToolErrorResult struct {
	Success      bool   `json:"success"`
	Error        bool   `json:"error"`
	Skipped      bool   `json:"skipped"`
	Failed       bool   `json:"failed"`
	ErrorMessage string `json:"error_message"`
	ToolName     string `json:"tool_name"`
}

// toolError turns a service error into an error result so the MCP client
// sees a tool failure instead of a protocol error.
func toolError(name string, err error) *mcp.CallToolResult {
	body := ToolErrorResult{
		Error:        true,
		Skipped:      service.IsSkipped(err),
		Failed:       errors.Is(err, service.ErrOperationFailed),
		ErrorMessage: err.Error(),
		ToolName:     name,
	}

	if body.Skipped {
		logger.Infof("MCP tool '%s' skipped: %v", name, err)
	} else {
		logger.Warnf("MCP tool '%s' failed: %v", name, err)
	}

	data, merr := json.Marshal(body)
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}

// toolJSON encodes v as the text content of a successful result.
func toolJSON(name string, v interface{}) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(name, err)
	}
	return mcp.NewToolResultText(string(data))
}
