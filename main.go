package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/quickly-rank/cliparse"
	"github.com/danielhkuo/quickly-rank/metrics"
	"github.com/danielhkuo/quickly-rank/middleware"
	"github.com/danielhkuo/quickly-rank/router"
	"github.com/danielhkuo/quickly-rank/service"
	"github.com/danielhkuo/quickly-rank/store"
)

func main() {
	var err error

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and verify
	st, err := store.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer st.Close()

	// Create schema (tables)
	if err := st.CreateSchema(); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	m := metrics.New()
	svc := service.New(st, service.Config{
		ReprocessEvery: cfg.ReprocessEvery,
		TopK:           cfg.PairCandidates,
		Gamma:          cfg.ExplorationGamma,
		Parallelism:    service.DefaultConfig().Parallelism,
	}, m)

	if cfg.ReprocessOnStart {
		start := time.Now()
		if err := svc.ReprocessAll(ctx, service.TriggerStartup); err != nil {
			// Polls that failed keep their incremental stats.
			slog.Warn("startup reprocess incomplete", "error", err)
		}
		slog.Info("startup reprocess finished", "duration_ms", time.Since(start).Milliseconds())
	}

	// Create router
	mux := router.NewRouter(st, svc, cfg, m)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
