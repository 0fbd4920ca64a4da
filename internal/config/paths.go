package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for where the tracker writes on disk.
// Chart output is resolved against the working directory, so a bare run drops
// the images next to the invocation; the log directory follows the configured
// log file path.
type Paths struct {
	WorkingDir string
	ChartsDir  string
	LogsDir    string

	// Resolved chart files, in render order
	LineChart      string
	BarChart       string
	HistogramChart string
	ScatterChart   string
}

// ResolvePaths resolves all output paths for the given configuration
func ResolvePaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %v", err)
	}

	chartsDir := cfg.Charts.OutputDir
	if !filepath.IsAbs(chartsDir) {
		chartsDir = filepath.Join(wd, chartsDir)
	}

	logsDir := filepath.Dir(cfg.Logging.FilePath)
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(wd, logsDir)
	}

	return &Paths{
		WorkingDir:     wd,
		ChartsDir:      chartsDir,
		LogsDir:        logsDir,
		LineChart:      filepath.Join(chartsDir, cfg.Charts.LineFile),
		BarChart:       filepath.Join(chartsDir, cfg.Charts.BarFile),
		HistogramChart: filepath.Join(chartsDir, cfg.Charts.HistogramFile),
		ScatterChart:   filepath.Join(chartsDir, cfg.Charts.ScatterFile),
	}, nil
}

// ChartFiles returns the resolved chart paths in render order
func (p *Paths) ChartFiles() []string {
	return []string{p.LineChart, p.BarChart, p.HistogramChart, p.ScatterChart}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ChartsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}
