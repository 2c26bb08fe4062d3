// Package tts turns narration text into speech audio. Long scripts are
// split into provider-sized chunks, synthesized in order, and joined back
// into a single track.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// Static errors for speech synthesis.
var (
	// ErrEmptyText is returned when there is nothing to synthesize.
	ErrEmptyText = errors.New("tts: empty text")
	// ErrNoProvider is returned when no synthesis provider is configured.
	ErrNoProvider = errors.New("tts: no provider configured")
)

// ChunkTooLongError is returned when a single chunk exceeds the provider's
// character limit and cannot be split further.
type ChunkTooLongError struct {
	Chars int
	Limit int
}

func (e *ChunkTooLongError) Error() string {
	return fmt.Sprintf("tts: chunk of %d chars exceeds provider limit of %d", e.Chars, e.Limit)
}

// Provider defines the interface for a speech synthesis backend.
type Provider interface {
	// Synthesize converts text to speech audio and returns the encoded
	// audio bytes (MP3).
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)

	// MaxChars returns the provider's per-request character limit.
	MaxChars() int

	// Name returns a short provider identifier for logging.
	Name() string
}
