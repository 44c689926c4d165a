// Package cmd implements the command-line interface for mcptools.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - auth: Run the Gmail OAuth browser flow and save the token
//   - snippets: Print inbox thread snippets for the last N days
//   - forecast: Print the weather forecast for a location
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
// A .env file in the working directory is loaded before any command runs.
package cmd
