// Command train runs the full training pipeline: load the raw sources,
// build the monthly label panel, assemble features, fit the selected
// strategy and write the artifact bundle.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tariffscope/internal/artifact"
	"tariffscope/internal/config"
	"tariffscope/internal/dataset"
	"tariffscope/internal/features"
	"tariffscope/internal/infrastructure"
	"tariffscope/internal/model"
	"tariffscope/internal/normalize"
	"tariffscope/internal/panel"
)

func main() {
	configPath := flag.String("config", "", "config file path (defaults to config.yaml)")
	dataDir := flag.String("data", "", "override the raw data directory")
	outDir := flag.String("out", "", "override the artifacts directory")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Paths.ArtifactsDir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := context.Background()
	start := time.Now()

	norm, err := buildNormalizer(cfg)
	if err != nil {
		logger.Error("failed to load normalization tables", "error", err)
		os.Exit(1)
	}

	src, err := loadSources(ctx, cfg, norm, logger)
	if err != nil {
		logger.Error("failed to load sources", "error", err)
		os.Exit(1)
	}

	builder := panel.NewBuilder(panel.WithHorizonDays(cfg.Pipeline.HorizonDays))
	rows := builder.Build(src.Events, time.Time{}, time.Time{})
	stats := panel.Summarize(rows)
	logger.InfoContext(ctx, "panel built",
		slog.Int("rows", stats.Rows),
		slog.Int("positive", stats.Positive),
		slog.Int("entities", stats.Entities),
		slog.Int("months", stats.Months),
		slog.Int("downweighted", stats.Downweighted),
	)

	featurePanel := features.NewAssembler().Assemble(rows, src)

	trainer := model.NewTrainer(logger).WithMinSupervised(cfg.Pipeline.MinSupervised)
	res, err := trainer.Train(ctx, featurePanel)
	if err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}

	bundle := artifact.New(res, featurePanel, cfg.Pipeline.HorizonDays)
	if err := artifact.Save(cfg.Paths.ArtifactsDir, bundle); err != nil {
		logger.Error("failed to save artifact", "error", err,
			slog.String("dir", cfg.Paths.ArtifactsDir))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "training complete",
		slog.String("strategy", res.Strategy.Name()),
		slog.Int("n_positive", res.NPositive),
		slog.String("artifacts", cfg.Paths.ArtifactsDir),
		slog.Duration("elapsed", time.Since(start)),
	)
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

// loadSources reads all seven raw files concurrently. Any single load
// failure aborts the run: data shape assumptions are load-time
// invariants, not soft failures.
func loadSources(ctx context.Context, cfg *config.Config, norm *normalize.Normalizer, logger *slog.Logger) (features.Sources, error) {
	var src features.Sources
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		src.Trade, err = dataset.LoadBilateralTrade(cfg.SourcePath(cfg.Paths.TradeFile), norm)
		return err
	})
	g.Go(func() error {
		var err error
		src.Forex, err = dataset.LoadForex(cfg.SourcePath(cfg.Paths.ForexFile), norm)
		return err
	})
	g.Go(func() error {
		var err error
		src.GSCPI, err = dataset.LoadGSCPI(cfg.SourcePath(cfg.Paths.GSCPIFile))
		return err
	})
	g.Go(func() error {
		var err error
		src.Manufacturing, err = dataset.LoadManufacturing(cfg.SourcePath(cfg.Paths.ManufacturingFile), norm)
		return err
	})
	g.Go(func() error {
		var err error
		src.Unemployment, err = dataset.LoadUnemployment(cfg.SourcePath(cfg.Paths.UnemploymentFile))
		return err
	})
	g.Go(func() error {
		var err error
		src.Risk, err = dataset.LoadPoliticalRisk(cfg.SourcePath(cfg.Paths.PoliticalRiskFile), norm)
		return err
	})
	g.Go(func() error {
		var err error
		src.Events, err = dataset.LoadTariffEvents(cfg.SourcePath(cfg.Paths.TariffFile), norm)
		return err
	})

	if err := g.Wait(); err != nil {
		return features.Sources{}, err
	}

	logger.InfoContext(ctx, "sources loaded",
		slog.Int("trade_rows", len(src.Trade)),
		slog.Int("forex_rows", len(src.Forex)),
		slog.Int("gscpi_rows", len(src.GSCPI)),
		slog.Int("manufacturing_rows", len(src.Manufacturing)),
		slog.Int("unemployment_rows", len(src.Unemployment)),
		slog.Int("risk_rows", len(src.Risk)),
		slog.Int("events", len(src.Events)),
	)
	return src, nil
}
