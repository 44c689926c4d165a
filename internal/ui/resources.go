// Package ui builds MCP-UI resources: raw HTML and remote-dom scripts the
// host renders in a sandboxed frame.
package ui

import (
	"embed"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// MIME types understood by MCP-UI hosts.
const (
	MimeHTML      = "text/html"
	MimeRemoteDOM = "application/vnd.mcp-ui.remote-dom+javascript; framework=webcomponents"
)

// Scheme prefixes every UI resource URI.
const Scheme = "ui://"

//go:embed scripts/*.js
var scripts embed.FS

func script(name string) string {
	b, err := scripts.ReadFile("scripts/" + name)
	if err != nil {
		panic("ui: missing embedded script " + name)
	}
	return string(b)
}

// GreetScript is a remote-dom button that posts a sample tool call.
func GreetScript() string { return script("greet.js") }

// ToggleThemeScript is a remote-dom logo that switches between light and dark.
func ToggleThemeScript() string { return script("toggle-theme.js") }

// URI joins path segments under the ui:// scheme.
func URI(segments ...string) string {
	return Scheme + strings.Join(segments, "/")
}

// Resource wraps text as an embedded resource for a tool result.
func Resource(uri, mimeType, text string) mcp.EmbeddedResource {
	return mcp.NewEmbeddedResource(mcp.TextResourceContents{
		URI:      uri,
		MIMEType: mimeType,
		Text:     text,
	})
}

// HTMLResource wraps an HTML document.
func HTMLResource(uri, html string) mcp.EmbeddedResource {
	return Resource(uri, MimeHTML, html)
}

// RemoteDOMResource wraps a remote-dom script.
func RemoteDOMResource(uri, js string) mcp.EmbeddedResource {
	return Resource(uri, MimeRemoteDOM, js)
}

// Result builds a tool result out of resources, in order.
func Result(resources ...mcp.EmbeddedResource) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(resources))
	for _, r := range resources {
		content = append(content, r)
	}
	return &mcp.CallToolResult{Content: content}
}
