// Package server provides the shared server context, session registry,
// health probes and HTTP transport for the mcptools MCP server.
//
// # Key Components
//
// ServerContext holds the dependencies every tool handler needs. The Gmail
// service is built lazily on first use from the saved OAuth token, so the
// server starts without one and the gmail-auth tool can create it later.
//
// SessionRegistry issues streamable HTTP session IDs and evicts sessions
// that stay idle past a timeout. It replaces a process-wide map of
// transports with an explicit object owned by the HTTP server.
//
// HTTPServer serves the MCP endpoint at /mcp together with the /healthz and
// /readyz probes. Requests are traced with otelhttp and counted in the
// http_requests_total metric.
//
// MetricsServer exposes Prometheus metrics on a separate port.
package server
