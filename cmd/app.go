package cmd

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mtanzim/mcptools/internal/resources"
	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/tools/gmail_tools"
	"github.com/mtanzim/mcptools/internal/tools/google_tools"
	"github.com/mtanzim/mcptools/internal/tools/ui_tools"
	"github.com/mtanzim/mcptools/internal/tools/weather_tools"
)

// serverName is reported to MCP clients during initialize.
const serverName = "mcptools"

// newMCPServer creates the MCP server with every tool and resource registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer(serverName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
	if err := registerAllTools(mcpSrv, sc); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name:     "Gmail",
			register: func() error { return gmail_tools.RegisterGmailTools(mcpSrv, sc) },
		},
		{
			name:     "Gmail Auth",
			register: func() error { return google_tools.RegisterGoogleTools(mcpSrv, sc) },
		},
		{
			name:     "Weather",
			register: func() error { return weather_tools.RegisterWeatherTools(mcpSrv, sc) },
		},
		{
			name:     "UI",
			register: func() error { return ui_tools.RegisterUITools(mcpSrv, sc) },
		},
		{
			name:     "User Resources",
			register: func() error { return resources.RegisterUserResources(mcpSrv, sc) },
		},
		{
			name:     "UI Resources",
			register: func() error { return resources.RegisterUIResources(mcpSrv) },
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

// docsServerContext is a server context with no credentials, enough to
// register tools for introspection.
func docsServerContext() *server.ServerContext {
	return server.NewServerContext(context.Background(), server.Config{})
}
