package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"epicli/internal/config"
	"epicli/internal/infrastructure"
	"epicli/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (defaults to tracker.yaml if present)")
	outDir := flag.String("out", "", "output directory for chart files (overrides charts.output_dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Charts.OutputDir = *outDir
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		slog.Error("Failed to resolve output paths", "error", err)
		os.Exit(1)
	}

	// The log directory must exist before the logger opens its file.
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.ContextWithRunID(context.Background())

	logger.InfoContext(ctx, "Starting COVID-19 data tracker",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("source_url", cfg.Source.URL),
		slog.String("cutoff_date", cfg.Analysis.CutoffDate),
		slog.String("charts_dir", paths.ChartsDir),
		slog.String("run_id", infrastructure.GetRunID(ctx)))

	result := pipeline.New(cfg, paths, os.Stdout, logger).Run(ctx)

	logger.InfoContext(ctx, "Tracker finished",
		slog.Int("exit_code", result.ExitCode()),
		slog.Int("artifacts_written", len(result.Artifacts)))

	infrastructure.CloseLogFile()
	os.Exit(result.ExitCode())
}
