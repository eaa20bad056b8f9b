package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kazhakuttam/bookingbot/internal/availability"
	"github.com/kazhakuttam/bookingbot/internal/calendar"
	"github.com/kazhakuttam/bookingbot/internal/chat"
	"github.com/kazhakuttam/bookingbot/internal/google"
	"github.com/kazhakuttam/bookingbot/internal/instrumentation"
	"github.com/kazhakuttam/bookingbot/internal/logging"
	"github.com/kazhakuttam/bookingbot/internal/schedule"
	"github.com/kazhakuttam/bookingbot/internal/server"
	"github.com/kazhakuttam/bookingbot/internal/tools"
)

// ServeConfig collects every serve-mode setting after flag and
// environment resolution.
type ServeConfig struct {
	HTTPAddr string
	Debug    bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	CalendarID         string

	OpenAIAPIKey string
	OpenAIModel  string
	BusinessID   string

	BusinessHoursStart int
	BusinessHoursEnd   int

	EnableMCP bool

	MetricsEnabled bool
	MetricsAddr    string
}

func newServeCmd() *cobra.Command {
	var cfg ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		Long: `Start the appointment booking HTTP server.

The server needs Google OAuth client credentials to reach the calendar;
after startup, visit /auth/google once to authorize calendar access.
The conversational endpoint additionally needs an OpenAI API key.

Configuration:
  Flags take precedence; unset flags fall back to environment variables:
    --google-client-id      GOOGLE_CLIENT_ID
    --google-client-secret  GOOGLE_CLIENT_SECRET
    --google-redirect-url   GOOGLE_REDIRECT_URL
    --calendar-id           GOOGLE_CALENDAR_ID
    --openai-api-key        OPENAI_API_KEY
    --openai-model          OPENAI_MODEL
    --business-id           BUSINESS_ID
    --http-addr             HTTP_ADDR
    --metrics-addr          METRICS_ADDR`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveEnv(&cfg)
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", server.DefaultAddr, "API server address")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.GoogleClientID, "google-client-id", "", "Google OAuth client ID")
	cmd.Flags().StringVar(&cfg.GoogleClientSecret, "google-client-secret", "", "Google OAuth client secret")
	cmd.Flags().StringVar(&cfg.GoogleRedirectURL, "google-redirect-url", "", "OAuth redirect URL (defaults to http://localhost<addr>/auth/google/callback)")
	cmd.Flags().StringVar(&cfg.CalendarID, "calendar-id", "primary", "Google Calendar identifier to book on")
	cmd.Flags().StringVar(&cfg.OpenAIAPIKey, "openai-api-key", "", "OpenAI API key for the conversational endpoint")
	cmd.Flags().StringVar(&cfg.OpenAIModel, "openai-model", "", "Completion model (default gpt-4-turbo-preview)")
	cmd.Flags().StringVar(&cfg.BusinessID, "business-id", "", "Business identifier substituted into the assistant prompt")
	cmd.Flags().IntVar(&cfg.BusinessHoursStart, "business-hours-start", schedule.DefaultBusinessHours.StartHour, "First bookable hour of the day (24h)")
	cmd.Flags().IntVar(&cfg.BusinessHoursEnd, "business-hours-end", schedule.DefaultBusinessHours.EndHour, "End of the bookable window (24h, exclusive)")
	cmd.Flags().BoolVar(&cfg.EnableMCP, "enable-mcp", false, "Expose the tool catalog over MCP on /mcp")
	cmd.Flags().BoolVar(&cfg.MetricsEnabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated port")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

// resolveEnv fills unset settings from the environment.
func resolveEnv(cfg *ServeConfig) {
	if cfg.GoogleClientID == "" {
		cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if cfg.GoogleClientSecret == "" {
		cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	}
	if cfg.CalendarID == "primary" {
		if id := os.Getenv("GOOGLE_CALENDAR_ID"); id != "" {
			cfg.CalendarID = id
		}
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
	}
	if cfg.BusinessID == "" {
		cfg.BusinessID = os.Getenv("BUSINESS_ID")
	}
	if cfg.HTTPAddr == server.DefaultAddr {
		if addr := os.Getenv("HTTP_ADDR"); addr != "" {
			cfg.HTTPAddr = addr
		}
	}
	if cfg.MetricsAddr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			cfg.MetricsAddr = addr
		}
	}
	if os.Getenv("METRICS_ENABLED") == "false" {
		cfg.MetricsEnabled = false
	}
	if v := os.Getenv("BUSINESS_HOURS_START"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			cfg.BusinessHoursStart = hour
		}
	}
	if v := os.Getenv("BUSINESS_HOURS_END"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			cfg.BusinessHoursEnd = hour
		}
	}
	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = fmt.Sprintf("http://localhost%s/auth/google/callback", cfg.HTTPAddr)
	}
}

func runServe(cfg ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.New(cfg.Debug)
	slog.SetDefault(logger)

	authCfg := google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}
	if err := authCfg.Validate(); err != nil {
		return err
	}
	if cfg.BusinessHoursEnd <= cfg.BusinessHoursStart {
		return fmt.Errorf("business hours end (%d) must be after start (%d)", cfg.BusinessHoursEnd, cfg.BusinessHoursStart)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm the metrics server bound its port
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	// Calendar access is wired lazily: the token source serves requests
	// only after the operator completes /auth/google.
	tokenStore := google.NewTokenStore()
	tokenSource := authCfg.TokenSource(shutdownCtx, tokenStore)

	calClient, err := calendar.NewClient(shutdownCtx, tokenSource, cfg.CalendarID)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}
	calClient.SetMetrics(provider.Metrics())

	engine := availability.NewEngine(calClient, schedule.BusinessHours{
		StartHour: cfg.BusinessHoursStart,
		EndHour:   cfg.BusinessHoursEnd,
	})

	registry, err := tools.NewRegistry(tools.NewHandlers(calClient, engine), logger)
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}
	registry.SetMetrics(provider.Metrics())

	var chatService *chat.Service
	if cfg.OpenAIAPIKey != "" {
		openaiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		chatCfg := chat.DefaultConfig()
		chatCfg.BusinessID = cfg.BusinessID
		if cfg.OpenAIModel != "" {
			chatCfg.Model = cfg.OpenAIModel
		}
		chatService = chat.NewService(&openaiClient.Chat.Completions, registry, chat.NewStore(), logger, chatCfg)
		chatService.SetMetrics(provider.Metrics())
	} else {
		logger.Warn("no OpenAI API key configured, /chat routes disabled")
	}

	var mcpSrv *mcpserver.MCPServer
	if cfg.EnableMCP {
		mcpSrv = mcpserver.NewMCPServer("bookingbot", version,
			mcpserver.WithToolCapabilities(true),
		)
		tools.RegisterMCP(mcpSrv, registry)
	}

	srv := server.New(server.Config{
		Addr:     cfg.HTTPAddr,
		Auth:     authCfg,
		Tokens:   tokenStore,
		Registry: registry,
		Chat:     chatService,
		MCP:      mcpSrv,
		Logger:   logger,
		Metrics:  provider.Metrics(),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	logger.Info("bookingbot started",
		slog.String("addr", cfg.HTTPAddr),
		slog.String("calendar", cfg.CalendarID),
		slog.Bool("chat", chatService != nil),
		slog.Bool("mcp", mcpSrv != nil),
	)
	logger.Info("authorize calendar access at /auth/google")

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-shutdownCtx.Done():
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer drainCancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	return nil
}
