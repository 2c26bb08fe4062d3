// Package kling provides an HTTP client for the Kling AI image-to-video API.
package kling

// TaskStatus represents the status of a Kling generation task, decoded once
// at the API boundary so callers never re-parse provider strings.
type TaskStatus string

// Kling task statuses aligned with the Kling API.
const (
	StatusSubmitted  TaskStatus = "submitted"
	StatusProcessing TaskStatus = "processing"
	StatusSucceed    TaskStatus = "succeed"
	StatusFailed     TaskStatus = "failed"
)

// IsTerminal returns true if the status is a terminal state.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusSucceed || s == StatusFailed
}

// SubmitOptions contains the parameters for an image-to-video submission.
type SubmitOptions struct {
	// Image is either a public URL or raw base64 image bytes
	// (no data URI prefix; the API rejects prefixed payloads).
	Image string
	// Prompt describes the desired motion.
	Prompt string
	// DurationSec is the requested video length in seconds (5 or 10).
	DurationSec int
	// AspectRatio is the output aspect ratio (e.g. "16:9").
	AspectRatio string
}

// DefaultSubmitOptions returns the defaults used by the pipeline.
func DefaultSubmitOptions() SubmitOptions {
	return SubmitOptions{
		DurationSec: 10,
		AspectRatio: "16:9",
	}
}

// TaskResult contains the decoded result of a status check.
type TaskResult struct {
	Status   TaskStatus
	VideoURL string // URL of the first result video (only set when Status is StatusSucceed)
	Message  string // Provider failure message (only set when Status is StatusFailed)
}

// submitRequest represents the request body for /v1/videos/image2video.
type submitRequest struct {
	ModelName   string `json:"model_name"`
	Image       string `json:"image"`
	Prompt      string `json:"prompt"`
	Mode        string `json:"mode"`
	Duration    string `json:"duration"` // The API takes duration as a string
	AspectRatio string `json:"aspect_ratio"`
}

// apiResponse is the provider's common response envelope.
// code is 0 on success; any other value is a provider-level error even
// when the HTTP status is 200.
type apiResponse struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      taskData        `json:"data"`
}

// taskData is the data field of submit and status responses.
type taskData struct {
	TaskID        string      `json:"task_id"`
	TaskStatus    string      `json:"task_status"`
	TaskStatusMsg string      `json:"task_status_msg,omitempty"`
	TaskResult    *taskOutput `json:"task_result,omitempty"`
}

// taskOutput is the result payload of a succeeded task.
type taskOutput struct {
	Videos []taskVideo `json:"videos"`
}

// taskVideo is one generated video asset.
type taskVideo struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Duration string `json:"duration"`
}
