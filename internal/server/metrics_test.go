package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kazhakuttam/bookingbot/internal/instrumentation"
)

func TestNewMetricsServer(t *testing.T) {
	tests := []struct {
		name        string
		config      MetricsServerConfig
		expectError bool
		errContains string
	}{
		{
			name: "valid config",
			config: MetricsServerConfig{
				Addr:                    ":9090",
				Enabled:                 true,
				InstrumentationProvider: createTestProvider(t),
			},
		},
		{
			name: "default addr",
			config: MetricsServerConfig{
				Enabled:                 true,
				InstrumentationProvider: createTestProvider(t),
			},
		},
		{
			name: "nil provider",
			config: MetricsServerConfig{
				Addr:    ":9090",
				Enabled: true,
			},
			expectError: true,
			errContains: "instrumentation provider is required",
		},
		{
			name: "disabled provider",
			config: MetricsServerConfig{
				Addr:                    ":9090",
				Enabled:                 true,
				InstrumentationProvider: createDisabledProvider(t),
			},
			expectError: true,
			errContains: "instrumentation provider is not enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewMetricsServer(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatal("NewMetricsServer() expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewMetricsServer() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsServer() unexpected error: %v", err)
			}
			if server == nil {
				t.Error("NewMetricsServer() returned nil server")
			}
		})
	}
}

func TestMetricsServerReadySignal(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "127.0.0.1:0",
		Enabled:                 true,
		InstrumentationProvider: createTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ready := make(chan struct{})
	serverErr := make(chan error, 1)
	go func() {
		if err := server.StartWithReadySignal(ready); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ready:
	case err := <-serverErr:
		t.Fatalf("server failed before signalling ready: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("ready was not closed after the listener bound")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-serverErr; err != nil {
		t.Errorf("server error after shutdown: %v", err)
	}
}

func TestMetricsServerBindConflict(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	defer taken.Close()

	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    taken.Addr().String(),
		Enabled:                 true,
		InstrumentationProvider: createTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ready := make(chan struct{})
	if err := server.StartWithReadySignal(ready); err == nil {
		t.Fatal("expected a bind error for an occupied port")
	}
	select {
	case <-ready:
		t.Error("ready must stay open when the listener fails to bind")
	default:
	}
}

func TestMetricsServerShutdownWithoutStart(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9090",
		Enabled:                 true,
		InstrumentationProvider: createTestProvider(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() without Start() error = %v", err)
	}
}

func createTestProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create test provider: %v", err)
	}
	t.Cleanup(func() {
		_ = provider.Shutdown(ctx)
	})
	return provider
}

func createDisabledProvider(t *testing.T) *instrumentation.Provider {
	t.Helper()
	provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}
	return provider
}
