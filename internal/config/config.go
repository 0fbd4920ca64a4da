package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"epicli/internal/validation"
)

// Config represents the complete tracker configuration
type Config struct {
	Source   SourceConfig   `yaml:"source" envconfig:"SOURCE"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Charts   ChartsConfig   `yaml:"charts" envconfig:"CHARTS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// SourceConfig describes the upstream dataset download
type SourceConfig struct {
	URL            string `yaml:"url" envconfig:"URL" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS" validate:"min=1,max=3600"`
	MaxRetries     int    `yaml:"max_retries" envconfig:"MAX_RETRIES" validate:"min=0,max=10"`
	UserAgent      string `yaml:"user_agent" envconfig:"USER_AGENT" validate:"required"`
}

// Timeout returns the download timeout as a duration
func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AnalysisConfig describes the statistics window and sampling knobs
type AnalysisConfig struct {
	CutoffDate    string `yaml:"cutoff_date" envconfig:"CUTOFF_DATE" validate:"required,datetime=2006-01-02"`
	TopCountries  int    `yaml:"top_countries" envconfig:"TOP_COUNTRIES" validate:"min=1,max=500"`
	SampleSize    int    `yaml:"sample_size" envconfig:"SAMPLE_SIZE" validate:"min=1"`
	HistogramBins int    `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"min=1,max=1000"`
	PreviewRows   int    `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"min=0,max=100"`
	SampleSeed    int64  `yaml:"sample_seed" envconfig:"SAMPLE_SEED"`
}

// Cutoff parses the configured window start date.
// Validation guarantees the format, so callers may ignore the error
// after a successful Load.
func (c AnalysisConfig) Cutoff() (time.Time, error) {
	return time.Parse("2006-01-02", c.CutoffDate)
}

// ChartsConfig describes chart output placement and canvas size
type ChartsConfig struct {
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LineFile      string `yaml:"line_file" envconfig:"LINE_FILE" validate:"required"`
	BarFile       string `yaml:"bar_file" envconfig:"BAR_FILE" validate:"required"`
	HistogramFile string `yaml:"histogram_file" envconfig:"HISTOGRAM_FILE" validate:"required"`
	ScatterFile   string `yaml:"scatter_file" envconfig:"SCATTER_FILE" validate:"required"`
	Width         int    `yaml:"width" envconfig:"WIDTH" validate:"min=320,max=8192"`
	Height        int    `yaml:"height" envconfig:"HEIGHT" validate:"min=240,max=8192"`
}

// FileNames returns the four configured chart file names in render order.
func (c ChartsConfig) FileNames() []string {
	return []string{c.LineFile, c.BarFile, c.HistogramFile, c.ScatterFile}
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=file stderr both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// Load builds the configuration by layering, in order: built-in defaults,
// the YAML file (explicit path, or the first well-known location found),
// then EPI_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("EPI", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	// Unmarshaling into the pre-filled struct keeps defaults for
	// keys the file does not mention.
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	if _, err := c.Analysis.Cutoff(); err != nil {
		return fmt.Errorf("invalid cutoff date %q: %w", c.Analysis.CutoffDate, err)
	}

	// The four chart files land in one directory and must not collide.
	seen := make(map[string]bool, 4)
	for _, name := range c.Charts.FileNames() {
		if err := validation.ValidateArtifactName(name); err != nil {
			return fmt.Errorf("invalid chart file name: %w", err)
		}
		if seen[name] {
			return fmt.Errorf("duplicate chart file name: %s", name)
		}
		seen[name] = true
	}

	return nil
}

// findConfigFile returns the first config file found in well-known locations
func findConfigFile() string {
	locations := []string{
		"tracker.yaml",
		"configs/tracker.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use defaults and env vars only
}

// Default returns the documented default configuration
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:            "https://covid19.who.int/WHO-COVID-19-global-data.csv",
			TimeoutSeconds: 120,
			MaxRetries:     3,
			UserAgent:      DefaultUserAgent,
		},
		Analysis: AnalysisConfig{
			CutoffDate:    "2025-01-01",
			TopCountries:  10,
			SampleSize:    1000,
			HistogramBins: 50,
			PreviewRows:   5,
			SampleSeed:    0, // time-seeded
		},
		Charts: ChartsConfig{
			OutputDir:     ".",
			LineFile:      "global_cases_line.png",
			BarFile:       "region_cases_bar.png",
			HistogramFile: "deaths_histogram.png",
			ScatterFile:   "cases_deaths_scatter.png",
			Width:         1280,
			Height:        720,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: "logs/tracker.log",
		},
	}
}
