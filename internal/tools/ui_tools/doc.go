// Package ui_tools provides sample MCP tools that return remote-dom UI
// resources: a greeting button and a theme toggle.
package ui_tools
