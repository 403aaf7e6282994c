package main

import (
	"chat-poll/domain"
	"chat-poll/infrastructure/http/server"
	"chat-poll/infrastructure/storage"
	"chat-poll/internal"
	"chat-poll/observability"
	"chat-poll/runtime"
	"chat-poll/runtime/workers"
	"chat-poll/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning instead of exiting lets every deferred cleanup (sequences, badger) run.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env file is fine, the environment may already be set
	_ = godotenv.Load()
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	config, err := internal.Load(es)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	store, err := storage.NewStore(db, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("store init failed: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Releasing sequences failed", "error", err)
		}
	}()

	// 3. Setup Supervision & Orchestration
	metrics := observability.NewMetrics()
	clock := domain.SystemClock{}
	participantRepository := storage.NewParticipantRepository(store, logger)
	messageRepository := storage.NewMessageRepository(store, logger)

	sup := workers.NewSupervisor(logger, config.RestartInterval).OnRestart(metrics.WorkerRestarted)
	sweeper := workers.NewPresenceSweeperWorker(logger, participantRepository, clock, metrics,
		config.SweepInterval, config.IdleThreshold)
	orchestrator := runtime.NewOrchestrator(logger, sup, sweeper)

	// 4. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 2)

	// 5. Start the background workers
	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 6. HTTP Server Setup
	chatService := services.NewChatService(logger, clock, participantRepository, messageRepository)
	chatServer := server.NewChatServer(logger, chatService, metrics, server.Options{
		AllowedOrigins: config.AllowedOrigins(),
		RateLimitRPS:   config.RateLimitRPS,
		RateLimitBurst: config.RateLimitBurst,
	})
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           chatServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var debugServer *http.Server
	if config.DebugInspectorPort > 0 {
		address := fmt.Sprintf("%s:%d", config.Host, config.DebugInspectorPort)
		debugServer = internal.NewDebugServer(db, logger, address, "/inspect", func() map[string]any {
			return map[string]any{"Mode": "Live", "Time": time.Now().UTC().Format(time.RFC822)}
		})
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://%s/inspect", address))
		go func() {
			if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("Debug inspector stopped", "error", err)
			}
		}()
	}

	// 7. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Final Cleanup (Graceful Shutdown)
	// In-flight requests finish first, then the sweeper stops before the store is closed.
	logger.Info("Shutting down gracefully...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	if debugServer != nil {
		_ = debugServer.Shutdown(shutdownCtx)
	}
	orchestrator.Stop()
	select {
	case <-orchestratorDone:
	case <-shutdownCtx.Done():
		logger.Warn("Workers did not stop before the shutdown timeout")
	}
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}
