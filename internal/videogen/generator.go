// Package videogen provides the provider-neutral port for asynchronous
// video generation and the poller that drives a remote task to completion.
package videogen

import "context"

// TaskState represents the state of a remote generation task.
type TaskState string

// Task states common across providers.
const (
	StatePending    TaskState = "pending"    // Task accepted but not yet running
	StateProcessing TaskState = "processing" // Task is being generated
	StateSucceeded  TaskState = "succeeded"  // Task finished, result asset available
	StateFailed     TaskState = "failed"     // Task failed with a provider message
)

// IsTerminal returns true if the state represents a final outcome.
func (s TaskState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// SubmitRequest contains the parameters for a generation submission.
// Exactly one of ImageURL or ImageBase64 should be set.
type SubmitRequest struct {
	// ImageURL is a public URL to the source image.
	ImageURL string
	// ImageBase64 is the raw base64 encoding of the source image bytes.
	ImageBase64 string
	// Prompt describes the desired motion.
	Prompt string
	// DurationSec is the requested video length in seconds.
	DurationSec int
	// AspectRatio is the output aspect ratio (e.g. "16:9").
	AspectRatio string
}

// TaskUpdate is the decoded result of one status check.
type TaskUpdate struct {
	State     TaskState
	ResultURL string // Download URL of the first result asset (only when State is StateSucceeded)
	Message   string // Provider failure message (only when State is StateFailed)
}

// Generator defines the interface for asynchronous video generation
// providers. The Kling adapter implements it; tests substitute fakes.
type Generator interface {
	// Submit sends a generation task and returns the provider task ID.
	Submit(ctx context.Context, req SubmitRequest) (taskID string, err error)

	// Status checks a task and returns its decoded state.
	Status(ctx context.Context, taskID string) (TaskUpdate, error)

	// Download fetches a result asset into destPath.
	Download(ctx context.Context, assetURL, destPath string) error
}
