package videogen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Default polling parameters: 5-second interval with a 120-attempt ceiling
// gives remote generation ten minutes to finish.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 120
)

// Poller submits a generation task and polls it to completion.
type Poller struct {
	gen         Generator
	logger      *slog.Logger
	interval    time.Duration
	maxAttempts int
	outputDir   string
}

// PollerOption is a function that configures a Poller.
type PollerOption func(*Poller)

// WithPollInterval sets the delay between status checks.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxAttempts sets the status-check ceiling.
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// NewPoller creates a Poller that downloads result assets into outputDir.
func NewPoller(gen Generator, outputDir string, logger *slog.Logger, opts ...PollerOption) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		gen:         gen,
		logger:      logger,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
		outputDir:   outputDir,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ResultPath returns the deterministic local path for a task's result asset.
func (p *Poller) ResultPath(taskID string) string {
	return filepath.Join(p.outputDir, fmt.Sprintf("gen_video_%s.mp4", taskID))
}

// SubmitAndAwait submits a generation task, polls until it reaches a
// terminal state or the attempt ceiling, then downloads the result asset.
// It returns the local path of the downloaded asset.
//
// A transient status-check failure is logged and retried; it consumes an
// attempt but not a terminal outcome. The loop never performs more than
// the configured number of status checks.
func (p *Poller) SubmitAndAwait(ctx context.Context, req SubmitRequest) (string, error) {
	taskID, err := p.gen.Submit(ctx, req)
	if err != nil {
		return "", &SubmissionError{Err: err}
	}

	p.logger.Info("generation task submitted",
		slog.String("task_id", taskID),
		slog.Duration("poll_interval", p.interval),
		slog.Int("max_attempts", p.maxAttempts),
	)

	resultURL := ""
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("polling cancelled: %w", ctx.Err())
		case <-time.After(p.interval):
		}

		update, err := p.gen.Status(ctx, taskID)
		if err != nil {
			// Transient: network blip or a 5xx from the status endpoint.
			p.logger.Warn("status check failed, retrying",
				slog.String("task_id", taskID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			continue
		}

		switch update.State {
		case StateSucceeded:
			if update.ResultURL == "" {
				return "", &GenerationError{Message: "task succeeded but returned no result asset"}
			}
			resultURL = update.ResultURL
		case StateFailed:
			return "", &GenerationError{Message: update.Message}
		default:
			if attempt%6 == 0 {
				p.logger.Info("generation in progress",
					slog.String("task_id", taskID),
					slog.String("state", string(update.State)),
					slog.Duration("elapsed", time.Duration(attempt)*p.interval),
				)
			}
			continue
		}
		break
	}

	if resultURL == "" {
		return "", &TimeoutError{Attempts: p.maxAttempts, Interval: p.interval}
	}

	destPath := p.ResultPath(taskID)
	if err := p.gen.Download(ctx, resultURL, destPath); err != nil {
		return "", &DownloadError{Err: err}
	}

	p.logger.Info("generation result downloaded",
		slog.String("task_id", taskID),
		slog.String("path", destPath),
	)
	return destPath, nil
}
