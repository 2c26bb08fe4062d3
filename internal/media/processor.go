// Package media provides audio and video processing capabilities.
package media

import "context"

// Processor defines the interface for media operations used by the
// commentary pipeline. Implementations should use ffmpeg or similar tools.
type Processor interface {
	// ProbeDuration returns the duration in seconds of a media file.
	ProbeDuration(ctx context.Context, path string) (float64, error)

	// ConcatAudio concatenates audio files into a single output file
	// without re-encoding. Inputs must share codec and parameters, which
	// holds for chunks produced by one synthesis run.
	ConcatAudio(ctx context.Context, audioPaths []string, output string) error

	// Merge combines a video track and an audio track into output using
	// the given strategy.
	Merge(ctx context.Context, videoPath, audioPath, output string, strategy MergeStrategy) error
}
