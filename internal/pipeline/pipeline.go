// Package pipeline orchestrates the tracker run as three guarded stages:
// data acquisition (fetch, parse, clean), analysis, and visualization.
// A stage failure never panics the run; acquisition failure skips the
// stages behind it, while an analysis failure still lets visualization
// write placeholder charts.
package pipeline

import (
	"context"
	"io"
	"log/slog"

	"epicli/internal/analytics"
	"epicli/internal/charts"
	"epicli/internal/cleaning"
	"epicli/internal/config"
	"epicli/internal/dataset"
	"epicli/internal/errors"
	"epicli/internal/fetcher"
	"epicli/internal/files"
	"epicli/internal/infrastructure"
	"epicli/internal/report"
)

// Chart captions as they appear in the saved-file manifest
const (
	lineCaption      = "Line chart: Trends over time"
	barCaption       = "Bar chart: Comparison by region"
	histogramCaption = "Histogram: Distribution"
	scatterCaption   = "Scatter plot: Relationship between cases and deaths"
)

// Pipeline wires the run stages to one config, logger, and report stream
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	reporter *report.Writer

	fetcher  *fetcher.Fetcher
	cleaner  *cleaning.Cleaner
	renderer *charts.Renderer
	manager  *files.Manager
}

// New builds a pipeline from validated configuration. The report writes to
// out; everything else goes through the logger.
func New(cfg *config.Config, paths *config.Paths, out io.Writer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		reporter: report.NewWriter(out),
		fetcher:  fetcher.New(cfg.Source, infrastructure.WithComponent(logger, "fetcher")),
		cleaner:  cleaning.New(infrastructure.WithComponent(logger, "cleaning")),
		renderer: charts.NewRenderer(cfg.Charts),
		manager:  files.NewManager(paths.ChartsDir),
	}
}

// Run executes the stages in order, printing report sections as each one
// produces them. It always returns a Result; the caller maps it to an
// exit code.
func (p *Pipeline) Run(ctx context.Context) *Result {
	ctx = infrastructure.EnsureRunID(ctx)
	result := newResult()

	p.logger.InfoContext(ctx, "run started",
		slog.String("url", p.cfg.Source.URL),
		slog.String("cutoff", p.cfg.Analysis.CutoffDate),
		slog.String("output_dir", p.manager.OutputDir()))

	cleaned := p.runAcquisition(ctx, result)
	if result.Acquisition.Status != StageCompleted {
		const reason = "no dataset available"
		result.Analysis.Skip(reason)
		result.Rendering.Skip(reason)
		p.reporter.StageSkipped(result.Analysis.Name, reason)
		p.reporter.StageSkipped(result.Rendering.Name, reason)
		p.logger.WarnContext(ctx, "downstream stages skipped", slog.String("reason", reason))
		p.logOutcome(ctx, result)
		return result
	}

	analysis := p.runAnalysis(ctx, result, cleaned)
	p.runRendering(ctx, result, analysis)
	if result.Analysis.Status == StageCompleted {
		p.reporter.Observations(analysis)
	}

	p.logOutcome(ctx, result)
	return result
}

// runAcquisition fetches and cleans the dataset, printing report sections
// one through four. It returns the cleaned rows, or nil after a failure.
func (p *Pipeline) runAcquisition(ctx context.Context, result *Result) []dataset.Row {
	stage := result.Acquisition
	stage.Start()

	rows, err := p.fetcher.Fetch(ctx)
	if err != nil {
		stage.Fail(err)
		p.reporter.StageError(stage.Name, err)
		p.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", stage.ID),
			slog.String("error", err.Error()))
		return nil
	}
	result.ParsedRows = len(rows)

	p.reporter.Preview(rows, p.cfg.Analysis.PreviewRows)
	p.reporter.DatasetInfo(dataset.TableInfo(rows))
	p.reporter.MissingValues(dataset.MissingCounts(rows))

	res := p.cleaner.Clean(ctx, rows)
	result.CleanedRows = len(res.Rows)
	p.reporter.CleaningSummary(&res)

	stage.Complete()
	p.logger.InfoContext(ctx, "stage completed",
		slog.String("stage", stage.ID),
		slog.Int("parsed_rows", result.ParsedRows),
		slog.Int("cleaned_rows", result.CleanedRows),
		slog.Duration("duration", stage.Duration()))
	return res.Rows
}

// runAnalysis aggregates the cleaned rows and prints report sections five
// through eight. On failure it returns an empty analysis so visualization
// can still render placeholders; an empty window is not a failure.
func (p *Pipeline) runAnalysis(ctx context.Context, result *Result, rows []dataset.Row) *analytics.Analysis {
	stage := result.Analysis
	stage.Start()

	analyzer, err := analytics.New(p.cfg.Analysis, p.logger)
	if err != nil {
		stage.Fail(err)
		p.reporter.StageError(stage.Name, err)
		p.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", stage.ID),
			slog.String("error", err.Error()))
		return &analytics.Analysis{}
	}

	analysis := analyzer.Analyze(ctx, rows)
	result.WindowRows = analysis.WindowRows

	p.reporter.Summary(analysis)
	p.reporter.Regions(analysis)
	p.reporter.TopCountries(analysis, p.cfg.Analysis.TopCountries)
	p.reporter.Findings(analysis)

	stage.Complete()
	p.logger.InfoContext(ctx, "stage completed",
		slog.String("stage", stage.ID),
		slog.Int("window_rows", analysis.WindowRows),
		slog.Duration("duration", stage.Duration()))
	return analysis
}

// runRendering writes the four chart artifacts and prints the manifest.
// A failed chart does not stop the remaining charts; the stage fails with
// the first error while completed artifacts stay on disk.
func (p *Pipeline) runRendering(ctx context.Context, result *Result, analysis *analytics.Analysis) {
	stage := result.Rendering
	stage.Start()

	if err := p.manager.EnsureOutputDir(); err != nil {
		stage.Fail(err)
		p.reporter.StageError(stage.Name, err)
		p.reporter.Artifacts(nil)
		p.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", stage.ID),
			slog.String("error", err.Error()))
		return
	}

	specs := []struct {
		name    string
		caption string
		render  func(io.Writer) error
	}{
		{p.cfg.Charts.LineFile, lineCaption, func(w io.Writer) error {
			return p.renderer.LineChart(w, analysis.Daily)
		}},
		{p.cfg.Charts.BarFile, barCaption, func(w io.Writer) error {
			return p.renderer.BarChart(w, analysis.Regions)
		}},
		{p.cfg.Charts.HistogramFile, histogramCaption, func(w io.Writer) error {
			return p.renderer.Histogram(w, analysis.Histogram)
		}},
		{p.cfg.Charts.ScatterFile, scatterCaption, func(w io.Writer) error {
			return p.renderer.ScatterChart(w, analysis.Sample)
		}},
	}

	var firstErr error
	for _, spec := range specs {
		artifact, err := p.manager.WriteArtifact(spec.name, spec.caption, spec.render)
		if err != nil {
			if !errors.IsType(err, errors.ErrTypeStorage) {
				err = errors.NewRenderError("failed to render "+spec.name, err)
			}
			if firstErr == nil {
				firstErr = err
			}
			p.logger.ErrorContext(ctx, "chart failed",
				slog.String("chart", spec.name),
				slog.String("error", err.Error()))
			continue
		}
		result.Artifacts = append(result.Artifacts, artifact)
	}

	p.reporter.Artifacts(result.Artifacts)

	if firstErr != nil {
		stage.Fail(firstErr)
		p.reporter.StageError(stage.Name, firstErr)
		p.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", stage.ID),
			slog.Int("artifacts_written", len(result.Artifacts)),
			slog.String("error", firstErr.Error()))
		return
	}

	stage.Complete()
	p.logger.InfoContext(ctx, "stage completed",
		slog.String("stage", stage.ID),
		slog.Int("artifacts_written", len(result.Artifacts)),
		slog.Duration("duration", stage.Duration()))
}

// logOutcome records the final status of every stage and the exit code
func (p *Pipeline) logOutcome(ctx context.Context, result *Result) {
	attrs := []any{slog.Int("exit_code", result.ExitCode())}
	for _, stage := range result.Stages() {
		attrs = append(attrs, slog.String(stage.ID, string(stage.Status)))
	}
	p.logger.InfoContext(ctx, "run finished", attrs...)
}
