// Package instrumentation configures OpenTelemetry metrics and tracing
// for the booking service: counters and histograms for HTTP requests,
// calendar provider operations, tool invocations and chat completions,
// exported via Prometheus by default.
package instrumentation
