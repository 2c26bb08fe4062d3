package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Static errors for media operations.
var (
	// ErrNoAudioPaths is returned when no audio paths are provided for joining.
	ErrNoAudioPaths = errors.New("no audio paths provided")
	// ErrFFprobeExecution is returned when the ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
	// ErrUnknownStrategy is returned when Merge receives an unrecognized strategy.
	ErrUnknownStrategy = errors.New("unknown merge strategy")
	// ErrAudioTooLong is returned when a loop merge would produce an
	// unreasonably long output.
	ErrAudioTooLong = errors.New("audio track too long for loop merge")
)

// MaxLoopAudioSec caps the audio length accepted by a loop merge. Looping
// a short clip under hours of narration is almost always a caller mistake.
const MaxLoopAudioSec = 1800.0

// FFmpegProcessor implements Processor using the ffmpeg CLI.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	// ffprobePath is the path to the ffprobe binary. Defaults to "ffprobe".
	ffprobePath string
}

// Compile-time check that FFmpegProcessor implements Processor.
var _ Processor = (*FFmpegProcessor)(nil)

// NewFFmpegProcessor creates a new FFmpegProcessor. Empty paths default to
// "ffmpeg" and "ffprobe" (found via PATH).
func NewFFmpegProcessor(ffmpegPath, ffprobePath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// ProbeDuration returns the duration in seconds of a media file.
func (p *FFmpegProcessor) ProbeDuration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(stdout.String()), "%f", &duration); err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}

// ConcatAudio concatenates audio files into a single output using the
// concat demuxer with stream copy.
func (p *FFmpegProcessor) ConcatAudio(ctx context.Context, audioPaths []string, output string) error {
	if len(audioPaths) == 0 {
		return ErrNoAudioPaths
	}

	if len(audioPaths) == 1 {
		return p.copyFile(audioPaths[0], output)
	}

	listFile, err := p.createConcatList(audioPaths)
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer func() { _ = os.Remove(listFile) }()

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		output,
	}
	return p.runFFmpeg(ctx, args)
}

// Merge combines a video track and an audio track into output using the
// given strategy.
func (p *FFmpegProcessor) Merge(ctx context.Context, videoPath, audioPath, output string, strategy MergeStrategy) error {
	args, err := MergeArgs(videoPath, audioPath, output, strategy)
	if err != nil {
		return err
	}
	return p.runFFmpeg(ctx, args)
}

// MergeArgs builds the ffmpeg argument list for a merge. Split out so the
// command construction is testable without the binary.
func MergeArgs(videoPath, audioPath, output string, strategy MergeStrategy) ([]string, error) {
	switch strategy {
	case StrategySimpleCopy:
		// Durations match: remux the video stream as-is, encode the audio
		// to AAC for mp4 compatibility.
		return []string{
			"-y",
			"-i", videoPath,
			"-i", audioPath,
			"-c:v", "copy",
			"-c:a", "aac",
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-shortest",
			output,
		}, nil
	case StrategyLoopVideo:
		// Audio outlasts the video: loop the video input indefinitely and
		// let -shortest cut at the audio's end. Looping forces a re-encode.
		return []string{
			"-y",
			"-stream_loop", "-1",
			"-i", videoPath,
			"-i", audioPath,
			"-c:v", "libx264",
			"-preset", "medium",
			"-crf", "23",
			"-c:a", "aac",
			"-b:a", "192k",
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-shortest",
			output,
		}, nil
	case StrategyTrimToAudio:
		// Video outlasts the audio: re-encode and cut at the audio's end.
		return []string{
			"-y",
			"-i", videoPath,
			"-i", audioPath,
			"-c:v", "libx264",
			"-preset", "medium",
			"-crf", "23",
			"-c:a", "aac",
			"-b:a", "192k",
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-shortest",
			output,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// createConcatList creates a temporary file containing the list of input
// files in the format required by ffmpeg's concat demuxer.
func (p *FFmpegProcessor) createConcatList(paths []string) (string, error) {
	f, err := os.CreateTemp("", "ffmpeg-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("get absolute path for %s: %w", path, err)
		}
		// Escape single quotes in path
		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escapedPath); err != nil {
			return "", fmt.Errorf("write to concat list: %w", err)
		}
	}

	return f.Name(), nil
}

// copyFile copies a file from src to dst.
func (p *FFmpegProcessor) copyFile(src, dst string) error {
	input, err := os.ReadFile(src) // #nosec G304 - src is provided by trusted internal code
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	if err := os.WriteFile(dst, input, 0600); err != nil {
		return fmt.Errorf("write destination file: %w", err)
	}
	return nil
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
