package videogen

import (
	"fmt"
	"time"
)

// SubmissionError indicates the provider rejected the generation request
// outright; no task was created.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("video generation submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// GenerationError indicates the task reached a terminal failed state on the
// provider side, or succeeded without producing a result asset.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("video generation failed: %s", e.Message)
}

// TimeoutError indicates polling exhausted its attempt ceiling without the
// task reaching a terminal state.
type TimeoutError struct {
	Attempts int
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("video generation timed out after %d attempts (%s apart)", e.Attempts, e.Interval)
}

// DownloadError indicates generation succeeded but the result asset could
// not be fetched. Callers can distinguish this from GenerationError to avoid
// re-paying for a generation whose bytes simply failed to arrive.
type DownloadError struct {
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("result download failed: %v", e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
