// Package common provides shared utilities for MCP tool implementations:
// the instrumented handler wrapper and the uniform failure results every
// tool returns.
package common
