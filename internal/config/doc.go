// Package config provides centralized configuration management for the
// EpiPulse tracker. It layers configuration sources, validates the result,
// and resolves every output path the pipeline touches.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources, later ones winning:
//
//	1. Built-in defaults (Default)
//	2. YAML file (-config flag, or tracker.yaml / configs/tracker.yaml)
//	3. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EPI_<SECTION>_<KEY>:
//
//	EPI_SOURCE_URL=https://covid19.who.int/WHO-COVID-19-global-data.csv
//	EPI_ANALYSIS_CUTOFF_DATE=2025-01-01
//	EPI_CHARTS_OUTPUT_DIR=./charts
//	EPI_LOGGING_LEVEL=debug
//
// # Path Management
//
// ResolvePaths turns the configured output directory and log file into
// absolute paths anchored at the working directory and knows the resolved
// location of each chart file:
//
//	paths, err := config.ResolvePaths(cfg)
//	if err := paths.EnsureDirectories(); err != nil { ... }
//	target := paths.LineChart
package config
