/*
Package main is the entry point for the coderoom collaboration server.

It is responsible for loading configuration, initializing the global logging system,
wiring the optional execution log (PostgreSQL) and snapshot storage (S3), setting up
the HTTP server and the collaboration Hub, and gracefully handling operating system
interrupt signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"coderoom/internal/app/collab"
	"coderoom/internal/app/db"
	"coderoom/internal/app/executor"
	"coderoom/internal/app/storage"
	"coderoom/internal/configs"
	"coderoom/internal/handler"
	"coderoom/internal/pkg/limiter"
	"coderoom/internal/pkg/logx"
)

const (
	// executions allowed per room: one every two seconds, bursts of three.
	execRate  = 0.5
	execBurst = 3

	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration from environment variables and flags
	cfg, err := configs.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("executor_url", cfg.ExecutorURL).
		Dur("executor_timeout", cfg.ExecutorTimeout).
		Bool("execution_log", cfg.ExecutionLogEnabled()).
		Bool("snapshots", cfg.SnapshotsEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &handler.AppDeps{Config: cfg}

	// Optional execution log
	var pool *pgxpool.Pool
	if cfg.ExecutionLogEnabled() {
		pool, err = db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to database")
		}
		defer pool.Close()

		deps.Executions = db.NewExecutionStore(pool)
		logx.Info("Execution log enabled.")
	}

	// Optional snapshot storage
	if cfg.SnapshotsEnabled() {
		snapshots, err := storage.NewSnapshotStore(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize snapshot storage")
		}

		deps.Snapshots = snapshots
		logx.Info("Snapshot storage enabled.", "bucket", cfg.S3BucketName)
	}

	// Initialize the collaboration Hub
	deps.Hub = collab.NewHub(collab.Options{
		Executor:    executor.New(cfg.ExecutorURL, cfg.ExecutorTimeout),
		Log:         deps.Executions,
		ExecLimiter: limiter.New(rate.Limit(execRate), execBurst),
	})

	// Setup HTTP server and routes
	limiters := handler.NewLimiters()
	defer limiters.Stop()

	router := handler.Router(deps, limiters)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("coderoom server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	deps.Hub.Shutdown(shutdownCtx)

	logx.Info("Server gracefully stopped.")
}
