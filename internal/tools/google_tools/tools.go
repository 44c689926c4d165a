package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/tools/common"
)

// AuthTool is the OAuth bootstrap tool name.
const AuthTool = "gmail-auth"

// AlreadyAuthorized is returned when a token file exists.
const AlreadyAuthorized = "Gmail is already authorized."

// RegisterGoogleTools registers the Gmail OAuth tool with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	authTool := mcp.NewTool(AuthTool,
		mcp.WithDescription("Authorize access to Gmail. Returns a URL to open in a browser when no token is saved yet."),
	)
	s.AddTool(authTool, common.InstrumentedToolHandler(AuthTool, sc, handleAuth(sc)))
	return nil
}

func handleAuth(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		authorizer := sc.Authorizer()
		if authorizer == nil {
			return mcp.NewToolResultText(google.AuthHint()), nil
		}
		if authorizer.HasToken() {
			return mcp.NewToolResultText(AlreadyAuthorized), nil
		}

		session, err := authorizer.BeginLogin(ctx)
		if err != nil {
			sc.Logger().Warn("cannot start gmail authorization", logging.Tool(AuthTool), logging.Err(err))
			return mcp.NewToolResultError(fmt.Sprintf("%s Error: %s", google.AuthHint(), err.Error())), nil
		}

		go func() {
			if err := session.Wait(sc.Context()); err != nil {
				sc.Logger().Warn("gmail authorization did not complete", logging.Err(err))
				return
			}
			sc.ResetGmail()
		}()

		return mcp.NewToolResultText(fmt.Sprintf(
			"Open this URL in your browser to authorize Gmail:\n\n%s\n\n"+
				"After granting access, call the Gmail tools again.", session.URL)), nil
	}
}
