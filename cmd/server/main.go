// Command server loads the trained artifact once and serves the
// prediction API until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tariffscope/internal/artifact"
	"tariffscope/internal/config"
	"tariffscope/internal/infrastructure"
	"tariffscope/internal/normalize"
	"tariffscope/internal/predict"
	transporthttp "tariffscope/internal/transport/http"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "config file path (defaults to config.yaml)")
	artifactsDir := flag.String("artifacts", "", "override the artifacts directory")
	flag.Parse()

	if err := run(*configPath, *artifactsDir); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath, artifactsDir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if artifactsDir != "" {
		cfg.Paths.ArtifactsDir = artifactsDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	bundle, err := artifact.Load(cfg.Paths.ArtifactsDir)
	if err != nil {
		return fmt.Errorf("load artifact from %s: %w", cfg.Paths.ArtifactsDir, err)
	}
	logger.Info("artifact loaded",
		slog.String("strategy", bundle.Meta.Strategy),
		slog.Int("panel_rows", len(bundle.Panel.Rows)),
		slog.Time("trained_at", bundle.Meta.CreatedAt),
	)

	norm, err := buildNormalizer(cfg)
	if err != nil {
		return fmt.Errorf("load normalization tables: %w", err)
	}

	service := predict.NewService(bundle, norm, logger)
	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Config:  cfg,
		Bundle:  bundle,
		Predict: service,
		Logger:  logger,
		Version: version,
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func buildNormalizer(cfg *config.Config) (*normalize.Normalizer, error) {
	if cfg.Paths.TablesFile == "" {
		return normalize.NewDefault(), nil
	}
	tables, err := normalize.LoadTables(cfg.Paths.TablesFile)
	if err != nil {
		return nil, err
	}
	return normalize.New(tables), nil
}
