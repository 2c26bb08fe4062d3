package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoCompleters is returned when a chain has no providers configured.
var ErrNoCompleters = errors.New("llm: no completers configured")

// Chain tries completers in order and returns the first success. All
// failures are aggregated into the final error when every provider fails.
type Chain struct {
	completers []Completer
	logger     *slog.Logger
}

// Compile-time check that Chain implements Completer.
var _ Completer = (*Chain)(nil)

// NewChain creates a fallback chain over the given completers, tried in
// the order provided.
func NewChain(logger *slog.Logger, completers ...Completer) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{completers: completers, logger: logger}
}

// Complete tries each provider until one succeeds.
func (c *Chain) Complete(ctx context.Context, prompt string) (string, error) {
	if len(c.completers) == 0 {
		return "", ErrNoCompleters
	}

	var failures []string
	for _, completer := range c.completers {
		result, err := completer.Complete(ctx, prompt)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("llm: completion cancelled: %w", ctx.Err())
		}

		c.logger.Warn("completion provider failed, trying next",
			slog.String("provider", completer.Name()),
			slog.String("error", err.Error()),
		)
		failures = append(failures, fmt.Sprintf("%s: %v", completer.Name(), err))
	}

	return "", fmt.Errorf("llm: all providers failed: %s", strings.Join(failures, "; "))
}

// Name returns the chain's identifier.
func (c *Chain) Name() string { return "chain" }
