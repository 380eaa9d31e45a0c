package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"radiocode/internal/decoder"
	"radiocode/internal/observability"
	"radiocode/internal/server"
	"radiocode/internal/shared"
)

func main() {
	configPath := flag.String("config", os.Getenv("RC_CONFIG"), "path to server config toml (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "rc-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := shared.LoadServerConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if _, err := os.Stat(cfg.FordTable); err != nil {
		logger.Warn("ford lookup table not found; ford decodes will fail", zap.String("path", cfg.FordTable))
	}
	registry := decoder.Builtin(decoder.Options{FordTable: cfg.FordTable})

	history, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api := &server.API{
		Registry:     registry,
		History:      history,
		Metrics:      server.NewMetrics(reg),
		Log:          logger,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
	if cfg.APIKey != "" {
		api.APIKeyDigest = shared.HashAPIKey(cfg.APIKey)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Handler(reg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("rc-server listening",
			zap.String("addr", cfg.Addr),
			zap.Strings("manufacturers", registry.Names()),
			zap.Bool("auth", cfg.APIKey != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func openHistory(cfg *shared.ServerConfig) (server.HistoryStore, func(), error) {
	if cfg.DBPath == "" {
		return server.NewMemoryStore(cfg.HistoryLimit), func() {}, nil
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create db dir %s: %w", dir, err)
		}
	}
	db, err := server.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db %s: %w", cfg.DBPath, err)
	}
	zap.L().Info("history database", zap.String("path", cfg.DBPath))
	return server.NewSQLiteStore(db), func() { db.Close() }, nil
}
