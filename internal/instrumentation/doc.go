// Package instrumentation wires OpenTelemetry metrics and tracing for the
// mcptools server.
//
// # Metrics
//
// Transport:
//   - http_requests_total, http_request_duration_seconds
//   - mcp_active_sessions
//
// Tools:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// Upstream APIs (service is gmail or tomorrow):
//   - upstream_api_operations_total, upstream_api_operation_duration_seconds
//
// Mail pipeline:
//   - gmail_pages_fetched_total
//   - gmail_messages_skipped_total by reason (fetch_error, missing_thread)
//   - gmail_snippets_rendered_total
//   - gmail_auth_total by result (token_file, browser, missing, failure)
//
// # Exporters
//
// METRICS_EXPORTER selects prometheus (default), otlp or stdout.
// TRACING_EXPORTER selects none (default), otlp or stdout. OTLP exporters
// need OTEL_EXPORTER_OTLP_ENDPOINT.
//
// Prometheus metrics are served on a separate port by the server package's
// MetricsServer so they never share a listener with /mcp.
//
// # Audit
//
// AuditLogger writes one record per tool call. Mailbox addresses are hashed
// unless AUDIT_LOGGING_INCLUDE_PII=true.
package instrumentation
