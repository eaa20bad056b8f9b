package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrTool      = "tool"
	attrResult    = "result"
)

// Status values recorded with operations.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics records observability metrics. The zero value is a no-op
// recorder, returned when instrumentation is disabled.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	calendarOperationsTotal   metric.Int64Counter
	calendarOperationDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	chatCompletionsTotal   metric.Int64Counter
	chatCompletionDuration metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with all instruments registered on
// the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.calendarOperationsTotal, err = meter.Int64Counter(
		"calendar_operations_total",
		metric.WithDescription("Total number of calendar provider operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_operations_total counter: %w", err)
	}

	m.calendarOperationDuration, err = meter.Float64Histogram(
		"calendar_operation_duration_seconds",
		metric.WithDescription("Calendar provider operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_operation_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"tool_invocations_total",
		metric.WithDescription("Total number of tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"tool_duration_seconds",
		metric.WithDescription("Tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool_duration_seconds histogram: %w", err)
	}

	m.chatCompletionsTotal, err = meter.Int64Counter(
		"chat_completions_total",
		metric.WithDescription("Total number of completion service requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_completions_total counter: %w", err)
	}

	m.chatCompletionDuration, err = meter.Float64Histogram(
		"chat_completion_duration_seconds",
		metric.WithDescription("Completion service request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_completion_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(status)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCalendarOperation records one calendar provider call.
func (m *Metrics) RecordCalendarOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.calendarOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, status),
	)
	m.calendarOperationsTotal.Add(ctx, 1, attrs)
	m.calendarOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records one dispatcher execution.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrResult, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordChatCompletion records one completion service round trip.
func (m *Metrics) RecordChatCompletion(ctx context.Context, status string, duration time.Duration) {
	if m.chatCompletionsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(attrResult, status))
	m.chatCompletionsTotal.Add(ctx, 1, attrs)
	m.chatCompletionDuration.Record(ctx, duration.Seconds(), attrs)
}
