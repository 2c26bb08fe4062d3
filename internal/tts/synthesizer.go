package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/narravid/narravid-api/internal/media"
	"github.com/narravid/narravid-api/internal/script"
)

// audioJoiner is the slice of media.Processor the synthesizer needs.
type audioJoiner interface {
	ConcatAudio(ctx context.Context, audioPaths []string, output string) error
}

// Synthesizer produces a single narration track from a script of any
// length by chunking, synthesizing each chunk in order, and joining the
// results.
type Synthesizer struct {
	provider Provider
	joiner   audioJoiner
	logger   *slog.Logger
}

// NewSynthesizer creates a Synthesizer over the given provider.
func NewSynthesizer(provider Provider, joiner audioJoiner, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{provider: provider, joiner: joiner, logger: logger}
}

// Compile-time check that media.FFmpegProcessor satisfies the joiner slice.
var _ audioJoiner = (*media.FFmpegProcessor)(nil)

// SynthesizeToFile converts text to a single MP3 at outputPath. Chunk
// files are written next to the output and removed afterwards. The result
// is all-or-nothing: on any chunk failure no output file is produced.
func (s *Synthesizer) SynthesizeToFile(ctx context.Context, text, voice, outputPath string) error {
	if text == "" {
		return ErrEmptyText
	}
	if s.provider == nil {
		return ErrNoProvider
	}

	chunks := script.Split(text, s.provider.MaxChars())
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	s.logger.Info("synthesizing narration",
		slog.String("provider", s.provider.Name()),
		slog.String("voice", voice),
		slog.Int("chunks", len(chunks)),
		slog.Int("chars", len(text)),
	)

	dir := filepath.Dir(outputPath)
	chunkPaths := make([]string, 0, len(chunks))
	defer func() {
		for _, p := range chunkPaths {
			_ = os.Remove(p)
		}
	}()

	for i, chunk := range chunks {
		audio, err := s.provider.Synthesize(ctx, chunk, voice)
		if err != nil {
			return fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}

		chunkPath := filepath.Join(dir, fmt.Sprintf("commentary_chunk_%d.mp3", i))
		if err := os.WriteFile(chunkPath, audio, 0600); err != nil {
			return fmt.Errorf("write chunk %d: %w", i+1, err)
		}
		chunkPaths = append(chunkPaths, chunkPath)
	}

	if err := s.joiner.ConcatAudio(ctx, chunkPaths, outputPath); err != nil {
		return fmt.Errorf("join narration chunks: %w", err)
	}

	return nil
}
