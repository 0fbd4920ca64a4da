// Package fetcher downloads the WHO daily report CSV and parses it into
// dataset rows. One GET per run; transient failures are retried with
// exponential backoff before the acquisition zone gives up.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"epicli/internal/config"
	"epicli/internal/dataset"
	"epicli/internal/errors"
)

// baseBackoff is the first retry delay; attempt n waits baseBackoff << n.
const baseBackoff = 1 * time.Second

// Fetcher acquires the source dataset over HTTP
type Fetcher struct {
	cfg    config.SourceConfig
	client *http.Client
	logger *slog.Logger
}

// New creates a Fetcher for the configured source. A nil logger falls back
// to slog.Default.
func New(cfg config.SourceConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

// Fetch downloads the configured CSV and parses it, preserving source row
// order. Network errors, 429 and 5xx responses are retried up to the
// configured attempt budget, honoring Retry-After when the server sends one.
// Other non-2xx statuses fail immediately. The returned error is classified
// as a network or parsing failure.
func (f *Fetcher) Fetch(ctx context.Context) ([]dataset.Row, error) {
	attempts := f.cfg.MaxRetries + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			f.logger.WarnContext(ctx, "retrying dataset download",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", attempts),
				slog.String("error", lastErr.Error()))
		}

		rows, retryAfter, err := f.attempt(ctx)
		if err == nil {
			return rows, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt < attempts-1 {
			delay := backoffDelay(attempt, retryAfter)
			if werr := wait(ctx, delay); werr != nil {
				return nil, errors.NewNetworkError("dataset download canceled", werr)
			}
		}
	}

	return nil, lastErr
}

// attempt performs one GET and parse. The returned Retry-After duration is
// zero unless the server supplied one on a retryable status.
func (f *Fetcher) attempt(ctx context.Context) ([]dataset.Row, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, 0, errors.NewNetworkError("failed to build dataset request", err).
			WithContext("url", f.cfg.URL)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, markRetryable(errors.NewNetworkError("failed to download dataset", err).
			WithContext("url", f.cfg.URL))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		appErr := markRetryable(errors.NewNetworkError(
			fmt.Sprintf("dataset host returned status %d", resp.StatusCode), nil).
			WithContext("url", f.cfg.URL).
			WithContext("status", resp.StatusCode))
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), appErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, 0, errors.NewNetworkError(
			fmt.Sprintf("dataset host returned status %d", resp.StatusCode), nil).
			WithContext("url", f.cfg.URL).
			WithContext("status", resp.StatusCode)
	}

	// Stream the body straight into the parser; the dataset is discarded at
	// process exit so nothing lands on disk.
	rows, err := dataset.ParseCSV(resp.Body)
	if err != nil {
		return nil, 0, errors.NewParsingError("failed to parse dataset CSV", err).
			WithContext("url", f.cfg.URL)
	}

	f.logger.InfoContext(ctx, "dataset downloaded",
		slog.String("url", f.cfg.URL),
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)))

	return rows, 0, nil
}

// backoffDelay doubles per attempt, deferring to the server's Retry-After
// when that asks for longer.
func backoffDelay(attempt int, retryAfter time.Duration) time.Duration {
	delay := baseBackoff << uint(attempt)
	if retryAfter > delay {
		delay = retryAfter
	}
	return delay
}

// parseRetryAfter reads a Retry-After header as seconds or an HTTP date
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if d := time.Until(when); d > 0 {
			return d
		}
	}
	return 0
}

// wait sleeps for d unless the context ends first
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryableKey marks AppError context entries for transient failures
const retryableKey = "retryable"

func markRetryable(err *errors.AppError) *errors.AppError {
	return err.WithContext(retryableKey, true)
}

// isRetryable reports whether err is a transient failure worth another
// attempt. Parsing failures and 4xx statuses are final.
func isRetryable(err error) bool {
	var appErr *errors.AppError
	if !errors.AsAppError(err, &appErr) {
		return false
	}
	retryable, ok := appErr.Context[retryableKey].(bool)
	return ok && retryable
}
