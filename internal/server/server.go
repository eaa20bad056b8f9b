package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kazhakuttam/bookingbot/internal/chat"
	"github.com/kazhakuttam/bookingbot/internal/google"
	"github.com/kazhakuttam/bookingbot/internal/instrumentation"
	"github.com/kazhakuttam/bookingbot/internal/tools"
)

const (
	// DefaultAddr is the default bind address for the API server.
	DefaultAddr = ":3000"

	// DefaultReadHeaderTimeout bounds request header reads.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout bounds idle keep-alive connections. Chat turns
	// can take two completion round trips, so no write timeout is set on
	// the API server.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server
	// shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds the wiring for the API server.
type Config struct {
	// Addr is the address to bind to (e.g., ":3000").
	Addr string

	// Auth is the Google OAuth client configuration for the /auth routes.
	Auth google.Config

	// Tokens is the credential store the auth middleware consults.
	Tokens *google.TokenStore

	// Registry dispatches tool invocations for the /api and /functions
	// routes.
	Registry *tools.Registry

	// Chat processes conversational turns. Optional; when nil the /chat
	// routes are not registered.
	Chat *chat.Service

	// MCP, when set, is mounted on /mcp as a streamable HTTP transport.
	MCP *mcpserver.MCPServer

	// Logger receives request logs. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics records HTTP request metrics. Optional.
	Metrics *instrumentation.Metrics
}

// Server is the booking API HTTP server.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates the API server and assembles its routes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.instrument(mux),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /auth/google", s.handleAuthRedirect)
	mux.HandleFunc("GET /auth/google/callback", s.handleAuthCallback)

	// Calendar-backed routes require a completed OAuth handshake.
	mux.Handle("GET /api/appointments/slots", s.requireAuth(s.handleSlots))
	mux.Handle("POST /api/appointments/book", s.requireAuth(s.handleBook))
	mux.Handle("POST /api/appointments/reschedule", s.requireAuth(s.handleReschedule))
	mux.Handle("POST /api/appointments/cancel", s.requireAuth(s.handleCancel))
	mux.Handle("GET /api/appointments", s.requireAuth(s.handleListAppointments))

	mux.HandleFunc("GET /functions", s.handleListFunctions)
	mux.HandleFunc("POST /functions/execute", s.handleExecuteFunction)

	if s.cfg.Chat != nil {
		mux.HandleFunc("POST /chat/message", s.handleChatMessage)
		mux.HandleFunc("DELETE /chat/conversation/{id}", s.handleClearConversation)
	}

	if s.cfg.MCP != nil {
		mcpHandler := mcpserver.NewStreamableHTTPServer(s.cfg.MCP,
			mcpserver.WithEndpointPath("/mcp"),
		)
		mux.Handle("/mcp", mcpHandler)
	}
}

// Start runs the server until it fails or is shut down. Blocking; run in
// a goroutine for non-blocking operation.
func (s *Server) Start() error {
	s.logger.Info("starting API server", slog.String("addr", s.cfg.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Handler exposes the assembled handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
