package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterMCP exposes the catalog as MCP tools, so MCP-speaking assistants
// can drive the same dispatcher the chat orchestrator uses.
func RegisterMCP(s *mcpserver.MCPServer, r *Registry) {
	for _, def := range r.Definitions() {
		tool := mcp.NewToolWithRawSchema(def.Name, def.Description, def.schemaJSON())
		name := def.Name
		s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result := r.Execute(ctx, name, request.GetArguments())
			if !result.Success {
				return mcp.NewToolResultError(result.Error), nil
			}
			return mcp.NewToolResultText(result.PayloadJSON()), nil
		})
	}
}
