// Package resources provides read-only MCP resources: the authenticated
// Gmail profile and the sample remote-dom UI scripts.
package resources
