package ui_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/tools/common"
	"github.com/mtanzim/mcptools/internal/ui"
)

// Tool names.
const (
	GreetTool       = "ui-greet"
	ToggleThemeTool = "ui-toggle-theme"
)

// RegisterUITools registers the sample UI tools with the MCP server
func RegisterUITools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	greetTool := mcp.NewTool(GreetTool,
		mcp.WithDescription("Show a button that greets the user"),
	)
	s.AddTool(greetTool, common.InstrumentedToolHandler(GreetTool, sc, scriptHandler("greet", ui.GreetScript)))

	toggleTool := mcp.NewTool(ToggleThemeTool,
		mcp.WithDescription("Show a logo that toggles between light and dark themes"),
	)
	s.AddTool(toggleTool, common.InstrumentedToolHandler(ToggleThemeTool, sc, scriptHandler("toggle-theme", ui.ToggleThemeScript)))

	return nil
}

func scriptHandler(name string, script func() string) common.ToolHandler {
	return func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return ui.Result(ui.RemoteDOMResource(ui.URI(name), script())), nil
	}
}
