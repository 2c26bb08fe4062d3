// Package job provides the Job aggregate for the narrated-video pipeline.
// It includes the Job entity with its state machine, the durable file-backed
// store, and the Orchestrator that sequences the pipeline stages.
package job

import (
	"fmt"
	"sync"
	"time"

	"github.com/narravid/narravid-api/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusCreated indicates the job exists but no stage has run yet.
	StatusCreated Status = "created"
	// StatusGeneratingVideo indicates the remote video generation stage is running.
	StatusGeneratingVideo Status = "generating_video"
	// StatusPreviewReady indicates the generated preview video is on disk.
	StatusPreviewReady Status = "preview_ready"
	// StatusAddingCommentary indicates the narration/merge stage is running.
	StatusAddingCommentary Status = "adding_commentary"
	// StatusComplete indicates the final narrated video is on disk.
	StatusComplete Status = "complete"
	// StatusFailed indicates a stage failed with an unrecoverable error.
	StatusFailed Status = "failed"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// validTransitions defines which state transitions are allowed.
// failed is reachable from every non-terminal state; complete and failed
// have no outgoing transitions.
var validTransitions = map[Status][]Status{
	StatusCreated:          {StatusGeneratingVideo, StatusFailed},
	StatusGeneratingVideo:  {StatusPreviewReady, StatusFailed},
	StatusPreviewReady:     {StatusAddingCommentary, StatusFailed},
	StatusAddingCommentary: {StatusComplete, StatusFailed},
	StatusComplete:         {},
	StatusFailed:           {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError is returned when a job is asked to enter a state
// its current state does not allow. It names both states so callers can
// report "job is X, operation requires Y".
type InvalidTransitionError struct {
	// Current is the state the job is actually in.
	Current Status
	// Required is the state the operation tried to enter, or the state
	// the operation requires the job to be in.
	Required Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: job is %q, required %q", e.Current, e.Required)
}

// Metadata holds the publishing metadata generated for a finished video.
type Metadata struct {
	// Title is the video title.
	Title string `json:"title"`
	// Description is the video description.
	Description string `json:"description"`
	// Tags is the list of SEO tags.
	Tags []string `json:"tags"`
}

// ValidDurations are the video lengths the generation provider accepts.
var ValidDurations = []int{5, 10}

// ValidDuration reports whether d is an accepted video duration.
func ValidDuration(d int) bool {
	for _, v := range ValidDurations {
		if d == v {
			return true
		}
	}
	return false
}

// Job represents one end-to-end request to produce a narrated video.
// It is mutated exclusively by the Orchestrator; the store only persists
// and reloads it.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job. It doubles as the
	// on-disk directory name.
	ID string `json:"id"`
	// Status is the current job state.
	Status Status `json:"status"`
	// SourceImagePath is the local path to the input image, when the
	// image was uploaded or decoded from base64.
	SourceImagePath string `json:"source_image_path,omitempty"`
	// SourceImageURL is the remote image URL, when the caller passed one.
	SourceImageURL string `json:"source_image_url,omitempty"`
	// MotionPrompt guides the video generation.
	MotionPrompt string `json:"motion_prompt,omitempty"`
	// DurationSec is the requested video length (5 or 10).
	DurationSec int `json:"duration_sec"`
	// PreviewVideoPath is set once remote generation succeeds.
	PreviewVideoPath string `json:"preview_video_path,omitempty"`
	// Script is the narration script; set when commentary begins.
	Script string `json:"script,omitempty"`
	// Voice is the requested narration voice.
	Voice string `json:"voice,omitempty"`
	// AudioPath is the synthesized narration file.
	AudioPath string `json:"audio_path,omitempty"`
	// FinalVideoPath is the merged output.
	FinalVideoPath string `json:"final_video_path,omitempty"`
	// VideoURL is the S3 URL of the final video when publishing is enabled.
	VideoURL string `json:"video_url,omitempty"`
	// Metadata is the generated publishing metadata.
	Metadata *Metadata `json:"metadata,omitempty"`
	// Error contains the failure kind and message if the job failed.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time `json:"updated_at"`
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// New creates a new Job with a generated ID and initial created status.
func New() *Job {
	return NewWithID(id.Generate())
}

// NewWithID creates a new Job with the specified ID and initial created status.
// Useful for testing or when the ID needs to be externally generated.
func NewWithID(jobID string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        jobID,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns an *InvalidTransitionError if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return &InvalidTransitionError{Current: j.Status, Required: status}
	}

	j.Status = status
	j.UpdatedAt = time.Now().UTC()

	if status.IsTerminal() {
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Fail transitions the job to failed with an error message.
// Returns an *InvalidTransitionError if the job is already terminal.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetPreview records the preview video path.
func (j *Job) SetPreview(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.PreviewVideoPath = path
	j.UpdatedAt = time.Now().UTC()
}

// SetCommentaryInputs records the script and voice at the start of the
// commentary stage.
func (j *Job) SetCommentaryInputs(script, voice string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Script = script
	j.Voice = voice
	j.UpdatedAt = time.Now().UTC()
}

// SetOutput records the narration audio, the final video and its metadata.
func (j *Job) SetOutput(audioPath, finalPath string, meta *Metadata) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.AudioPath = audioPath
	j.FinalVideoPath = finalPath
	j.Metadata = meta
	j.UpdatedAt = time.Now().UTC()
}

// SetVideoURL records the published S3 URL of the final video.
func (j *Job) SetVideoURL(url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.VideoURL = url
	j.UpdatedAt = time.Now().UTC()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.GetStatus().IsTerminal()
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	clone := &Job{
		ID:               j.ID,
		Status:           j.Status,
		SourceImagePath:  j.SourceImagePath,
		SourceImageURL:   j.SourceImageURL,
		MotionPrompt:     j.MotionPrompt,
		DurationSec:      j.DurationSec,
		PreviewVideoPath: j.PreviewVideoPath,
		Script:           j.Script,
		Voice:            j.Voice,
		AudioPath:        j.AudioPath,
		FinalVideoPath:   j.FinalVideoPath,
		VideoURL:         j.VideoURL,
		Error:            j.Error,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		CompletedAt:      j.CompletedAt,
	}
	if j.Metadata != nil {
		meta := *j.Metadata
		meta.Tags = append([]string(nil), j.Metadata.Tags...)
		clone.Metadata = &meta
	}
	return clone
}
