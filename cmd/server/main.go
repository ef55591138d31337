package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/internal/config"
	"github.com/panuwat93/smpk-duty-roster/pkg/api"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
	"github.com/panuwat93/smpk-duty-roster/pkg/utils/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var env string
	flag.StringVar(&env, "env", "", "Environment (test, prod, etc.)")
	flag.Parse()

	logger, err := logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("Configuration loaded",
		zap.String("department", cfg.Department),
		zap.String("listen_addr", cfg.ListenAddr))

	ctx := context.Background()

	var store db.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		pg := db.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
		logger.Info("Connected to Postgres store")
	} else {
		store = db.NewMemory()
		logger.Warn("No databaseURL configured, using in-memory store")
	}

	hub := realtime.NewHub()
	defer hub.Close()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(cfg, store, hub, logger).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Gateway listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
