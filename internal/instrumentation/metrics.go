package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrService   = "service"
	attrOperation = "operation"
	attrTool      = "tool"
	attrResult    = "result"
	attrReason    = "reason"
	attrThread    = "thread_id"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics records the server's counters and histograms. The zero value and
// a nil *Metrics are valid no-op recorders.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	upstreamOperationsTotal   metric.Int64Counter
	upstreamOperationDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	pagesFetchedTotal    metric.Int64Counter
	messagesSkippedTotal metric.Int64Counter
	snippetsRendered     metric.Int64Counter

	authTotal metric.Int64Counter

	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}
	var err error

	if m.httpRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0)); err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}
	if m.activeSessions, err = meter.Int64UpDownCounter("mcp_active_sessions",
		metric.WithDescription("Number of live streamable HTTP sessions"),
		metric.WithUnit("{session}")); err != nil {
		return nil, fmt.Errorf("failed to create mcp_active_sessions counter: %w", err)
	}

	if m.upstreamOperationsTotal, err = meter.Int64Counter("upstream_api_operations_total",
		metric.WithDescription("Total number of calls to Gmail and tomorrow.io"),
		metric.WithUnit("{operation}")); err != nil {
		return nil, fmt.Errorf("failed to create upstream_api_operations_total counter: %w", err)
	}
	if m.upstreamOperationDuration, err = meter.Float64Histogram("upstream_api_operation_duration_seconds",
		metric.WithDescription("Upstream API call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create upstream_api_operation_duration_seconds histogram: %w", err)
	}

	if m.toolInvocationsTotal, err = meter.Int64Counter("mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}")); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}
	if m.toolDuration, err = meter.Float64Histogram("mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	if m.pagesFetchedTotal, err = meter.Int64Counter("gmail_pages_fetched_total",
		metric.WithDescription("Message list pages walked by the snippet pipeline"),
		metric.WithUnit("{page}")); err != nil {
		return nil, fmt.Errorf("failed to create gmail_pages_fetched_total counter: %w", err)
	}
	if m.messagesSkippedTotal, err = meter.Int64Counter("gmail_messages_skipped_total",
		metric.WithDescription("Messages left out of thread aggregation"),
		metric.WithUnit("{message}")); err != nil {
		return nil, fmt.Errorf("failed to create gmail_messages_skipped_total counter: %w", err)
	}
	if m.snippetsRendered, err = meter.Int64Counter("gmail_snippets_rendered_total",
		metric.WithDescription("Snippet fragments rendered"),
		metric.WithUnit("{fragment}")); err != nil {
		return nil, fmt.Errorf("failed to create gmail_snippets_rendered_total counter: %w", err)
	}

	if m.authTotal, err = meter.Int64Counter("gmail_auth_total",
		metric.WithDescription("Gmail authorization attempts by outcome"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, fmt.Errorf("failed to create gmail_auth_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one request served by the streamable HTTP transport.
// path must be a bounded route label, not the raw request path.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordUpstreamOperation records one call to Gmail or tomorrow.io.
func (m *Metrics) RecordUpstreamOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.upstreamOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.upstreamOperationsTotal.Add(ctx, 1, attrs)
	m.upstreamOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPageFetched counts a list page walked by the pagination walker.
func (m *Metrics) RecordPageFetched(ctx context.Context, status string) {
	if m == nil || m.pagesFetchedTotal == nil {
		return
	}
	m.pagesFetchedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordMessageSkipped counts a message dropped by the aggregator.
func (m *Metrics) RecordMessageSkipped(ctx context.Context, reason string) {
	if m == nil || m.messagesSkippedTotal == nil {
		return
	}
	m.messagesSkippedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RecordSnippetsRendered counts rendered fragments for one thread. The
// thread id label is attached only when detailed labels are on.
func (m *Metrics) RecordSnippetsRendered(ctx context.Context, threadID string, n int) {
	if m == nil || m.snippetsRendered == nil || n == 0 {
		return
	}
	var attrs []attribute.KeyValue
	if m.detailedLabels && threadID != "" {
		attrs = append(attrs, attribute.String(attrThread, threadID))
	}
	m.snippetsRendered.Add(ctx, int64(n), metric.WithAttributes(attrs...))
}

// RecordAuth counts an authorization attempt by outcome.
func (m *Metrics) RecordAuth(ctx context.Context, result string) {
	if m == nil || m.authTotal == nil {
		return
	}
	m.authTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}

// StatusFor maps an error to a status label.
func StatusFor(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
