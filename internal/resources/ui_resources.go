package resources

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mtanzim/mcptools/internal/ui"
)

type uiScript struct {
	name        string
	description string
	script      func() string
}

var uiScripts = []uiScript{
	{"greet", "Remote-dom button that greets the user", ui.GreetScript},
	{"toggle-theme", "Remote-dom logo that toggles the theme", ui.ToggleThemeScript},
}

// RegisterUIResources exposes the sample remote-dom scripts as resources so
// hosts can fetch them by URI.
func RegisterUIResources(s *mcpserver.MCPServer) error {
	for _, us := range uiScripts {
		res := mcp.NewResource(
			ui.URI(us.name),
			us.name,
			mcp.WithResourceDescription(us.description),
			mcp.WithMIMEType(ui.MimeRemoteDOM),
		)
		s.AddResource(res, scriptResource(us.script))
	}
	return nil
}

func scriptResource(script func() string) mcpserver.ResourceHandlerFunc {
	return func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			&mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: ui.MimeRemoteDOM,
				Text:     script(),
			},
		}, nil
	}
}
