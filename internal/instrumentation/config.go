package instrumentation

import (
	"os"
	"strconv"
)

// Exporter types for metrics and tracing.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config holds the OpenTelemetry instrumentation settings.
type Config struct {
	// ServiceName identifies this service in metrics and traces.
	ServiceName string

	// ServiceVersion is the running build version.
	ServiceVersion string

	// Enabled determines if instrumentation is active (default: true).
	// Set INSTRUMENTATION_ENABLED=false to disable.
	Enabled bool

	// MetricsExporter is one of "prometheus", "otlp", "stdout".
	MetricsExporter string

	// TracingExporter is one of "otlp", "stdout", "none".
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint, host:port without
	// protocol prefix.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for OTLP export. Development only.
	OTLPInsecure bool

	// TraceSamplingRate is the trace sampling ratio in [0, 1].
	TraceSamplingRate float64
}

// DefaultConfig returns the configuration with environment overrides
// applied.
func DefaultConfig() Config {
	cfg := Config{
		ServiceName:       "bookingbot",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 0.1,
	}

	if v := os.Getenv("INSTRUMENTATION_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}
	if v := os.Getenv("METRICS_EXPORTER"); v != "" {
		cfg.MetricsExporter = v
	}
	if v := os.Getenv("TRACING_EXPORTER"); v != "" {
		cfg.TracingExporter = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		if insecure, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = insecure
		}
	}
	if v := os.Getenv("TRACE_SAMPLING_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate >= 0 && rate <= 1 {
			cfg.TraceSamplingRate = rate
		}
	}

	return cfg
}
