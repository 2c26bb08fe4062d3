package job

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/narravid/narravid-api/internal/llm"
	"github.com/narravid/narravid-api/internal/media"
	"github.com/narravid/narravid-api/internal/storage"
	"github.com/narravid/narravid-api/internal/videogen"
)

// Static errors for orchestrator validation.
var (
	// ErrImageRequired is returned when a job is created without a source image.
	ErrImageRequired = errors.New("job: source image is required")
	// ErrInvalidDuration is returned when the requested duration is not supported.
	ErrInvalidDuration = errors.New("job: duration must be 5 or 10 seconds")
	// ErrScriptRequired is returned when commentary is requested without a script.
	ErrScriptRequired = errors.New("job: narration script is required")
	// ErrUnsupportedImageType is returned for image formats the generation
	// provider does not accept.
	ErrUnsupportedImageType = errors.New("job: unsupported image type")
	// ErrInvalidImageEncoding is returned when image_base64 cannot be decoded.
	ErrInvalidImageEncoding = errors.New("job: invalid base64 image encoding")
)

// allowedImageExts are the source image formats accepted for generation.
var allowedImageExts = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
	"gif":  true,
}

// generator is the slice of the videogen poller the orchestrator needs.
type generator interface {
	SubmitAndAwait(ctx context.Context, req videogen.SubmitRequest) (string, error)
}

// speechSynthesizer produces one narration file from a script.
type speechSynthesizer interface {
	SynthesizeToFile(ctx context.Context, text, voice, outputPath string) error
}

// mediaProcessor is the slice of media.Processor the orchestrator needs.
type mediaProcessor interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	Merge(ctx context.Context, videoPath, audioPath, output string, strategy media.MergeStrategy) error
}

// CreateParams are the inputs for creating a job.
type CreateParams struct {
	// ImageBase64 is the source image, base64-encoded, with or without a
	// data URI prefix. Ignored when ImageURL is set.
	ImageBase64 string
	// ImageURL is a public URL to the source image.
	ImageURL string
	// MotionPrompt guides the video generation. Generated from the script
	// when empty.
	MotionPrompt string
	// DurationSec is the requested video length. Defaults to 10.
	DurationSec int
	// Script is the narration script, when known at creation time.
	Script string
	// Voice is the requested narration voice.
	Voice string
}

// Orchestrator sequences the pipeline stages over a job: remote video
// generation, narration synthesis, merge, metadata, and publication. It is
// the only component that mutates jobs.
type Orchestrator struct {
	store     Store
	generator generator
	synth     speechSynthesizer
	media     mediaProcessor
	completer llm.Completer
	publisher storage.Publisher
	logger    *slog.Logger
	tolerance float64
}

// NewOrchestrator creates an Orchestrator. completer may be nil when no
// LLM provider is configured; metadata and motion prompt generation are
// then skipped.
func NewOrchestrator(
	store Store,
	gen generator,
	synth speechSynthesizer,
	proc mediaProcessor,
	completer llm.Completer,
	publisher storage.Publisher,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = storage.NewNoopPublisher()
	}
	return &Orchestrator{
		store:     store,
		generator: gen,
		synth:     synth,
		media:     proc,
		completer: completer,
		publisher: publisher,
		logger:    logger,
		tolerance: media.DefaultDurationTolerance,
	}
}

// Create validates the inputs, materializes the source image on disk and
// persists a new job in the created state.
func (o *Orchestrator) Create(ctx context.Context, params CreateParams) (*Job, error) {
	if params.ImageBase64 == "" && params.ImageURL == "" {
		return nil, ErrImageRequired
	}
	if params.DurationSec == 0 {
		params.DurationSec = 10
	}
	if !ValidDuration(params.DurationSec) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDuration, params.DurationSec)
	}

	// Decode and validate inline image data up front so a rejected payload
	// never leaves a job record or directory behind.
	var imageExt string
	var imageData []byte
	if params.ImageURL == "" {
		var err error
		imageExt, imageData, err = decodeSourceImage(params.ImageBase64)
		if err != nil {
			return nil, err
		}
	}

	j := New()
	j.SourceImageURL = params.ImageURL
	j.MotionPrompt = params.MotionPrompt
	j.DurationSec = params.DurationSec
	j.Script = params.Script
	j.Voice = params.Voice

	if err := o.store.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	if params.ImageURL == "" {
		imagePath := o.store.ArtifactPath(j.ID, "source_image."+imageExt)
		if err := os.WriteFile(imagePath, imageData, 0600); err != nil {
			return nil, fmt.Errorf("write source image: %w", err)
		}
		j.SourceImagePath = imagePath
		if err := o.store.Save(ctx, j); err != nil {
			return nil, fmt.Errorf("persist job: %w", err)
		}
	}

	o.logger.Info("job created",
		slog.String("job_id", j.ID),
		slog.Int("duration_sec", j.DurationSec),
		slog.Bool("image_by_url", params.ImageURL != ""),
	)
	return j.Clone(), nil
}

// decodeSourceImage parses base64 image data and returns the decoded bytes
// with their file extension. A data URI prefix determines the extension;
// bare base64 defaults to png.
func decodeSourceImage(encoded string) (string, []byte, error) {
	ext := "png"
	if strings.HasPrefix(encoded, "data:image/") {
		rest := strings.TrimPrefix(encoded, "data:image/")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return "", nil, ErrInvalidImageEncoding
		}
		ext = strings.ToLower(rest[:semi])
		encoded = rest[semi+len(";base64,"):]
	}
	if !allowedImageExts[ext] {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedImageType, ext)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidImageEncoding, err)
	}
	return ext, data, nil
}

// GenerateVideo runs the remote generation stage: submit, poll, download.
// The job must be in the created state. A preview already on disk
// short-circuits the remote call, so re-running a job that failed later
// in the pipeline does not pay for generation twice.
func (o *Orchestrator) GenerateVideo(ctx context.Context, jobID string) (*Job, error) {
	j, err := o.store.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	previewPath := o.store.ArtifactPath(jobID, PreviewFile)
	cached := o.store.ArtifactExists(jobID, PreviewFile)

	if err := j.TransitionTo(StatusGeneratingVideo); err != nil {
		return nil, err
	}
	if err := o.store.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	if cached {
		o.logger.Info("preview already on disk, skipping generation", slog.String("job_id", jobID))
		return o.finishGeneration(ctx, j, previewPath)
	}

	req, err := o.buildSubmitRequest(ctx, j)
	if err != nil {
		return nil, o.failJob(ctx, j, err)
	}

	resultPath, err := o.generator.SubmitAndAwait(ctx, req)
	if err != nil {
		return nil, o.failJob(ctx, j, err)
	}

	if err := os.Rename(resultPath, previewPath); err != nil {
		return nil, o.failJob(ctx, j, fmt.Errorf("move preview into place: %w", err))
	}

	return o.finishGeneration(ctx, j, previewPath)
}

// finishGeneration records the preview and advances to preview_ready.
func (o *Orchestrator) finishGeneration(ctx context.Context, j *Job, previewPath string) (*Job, error) {
	j.SetPreview(previewPath)
	if err := j.TransitionTo(StatusPreviewReady); err != nil {
		return nil, err
	}
	if err := o.store.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	o.logger.Info("preview ready",
		slog.String("job_id", j.ID),
		slog.String("path", previewPath),
	)
	return j.Clone(), nil
}

// buildSubmitRequest assembles the generation request, reading the source
// image back from disk and generating a motion prompt when none was given.
func (o *Orchestrator) buildSubmitRequest(ctx context.Context, j *Job) (videogen.SubmitRequest, error) {
	req := videogen.SubmitRequest{
		ImageURL:    j.SourceImageURL,
		Prompt:      j.MotionPrompt,
		DurationSec: j.DurationSec,
	}

	if j.SourceImageURL == "" {
		data, err := os.ReadFile(j.SourceImagePath) // #nosec G304 - path is constructed internally
		if err != nil {
			return videogen.SubmitRequest{}, fmt.Errorf("read source image: %w", err)
		}
		req.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	}

	if req.Prompt == "" && j.Script != "" && o.completer != nil {
		prompt, err := llm.GenerateMotionPrompt(ctx, o.completer, j.Script)
		if err != nil {
			return videogen.SubmitRequest{}, err
		}
		req.Prompt = prompt
		j.MotionPrompt = prompt
	}

	return req, nil
}

// AddCommentary runs the narration stage: synthesize the script, merge the
// audio with the preview, generate metadata and optionally publish. The
// job must be in the preview_ready state.
func (o *Orchestrator) AddCommentary(ctx context.Context, jobID, script, voice string) (*Job, error) {
	if strings.TrimSpace(script) == "" {
		return nil, ErrScriptRequired
	}

	j, err := o.store.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := j.TransitionTo(StatusAddingCommentary); err != nil {
		return nil, err
	}
	j.SetCommentaryInputs(script, voice)
	if err := o.store.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	if err := os.WriteFile(o.store.ArtifactPath(jobID, ScriptFile), []byte(script), 0600); err != nil {
		return nil, o.failJob(ctx, j, fmt.Errorf("write script: %w", err))
	}

	audioPath := o.store.ArtifactPath(jobID, AudioFile)
	if o.store.ArtifactExists(jobID, AudioFile) {
		o.logger.Info("narration already on disk, skipping synthesis", slog.String("job_id", jobID))
	} else {
		if err := o.synth.SynthesizeToFile(ctx, script, voice, audioPath); err != nil {
			return nil, o.failJob(ctx, j, err)
		}
	}

	finalPath := o.store.ArtifactPath(jobID, FinalVideoFile)
	if o.store.ArtifactExists(jobID, FinalVideoFile) {
		o.logger.Info("final video already on disk, skipping merge", slog.String("job_id", jobID))
	} else {
		if err := o.mergeNarration(ctx, j, audioPath, finalPath); err != nil {
			return nil, o.failJob(ctx, j, err)
		}
	}

	meta, err := o.generateMetadata(ctx, script)
	if err != nil {
		return nil, o.failJob(ctx, j, err)
	}
	j.SetOutput(audioPath, finalPath, meta)

	if o.publisher.Enabled() {
		url, err := o.publisher.PublishVideo(ctx, jobID, finalPath)
		if err != nil {
			// The video is safe on disk; publication can be retried.
			o.logger.Warn("video publication failed",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)
		} else {
			j.SetVideoURL(url)
		}
	}

	if err := j.TransitionTo(StatusComplete); err != nil {
		return nil, err
	}
	if err := o.store.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}

	o.logger.Info("job complete",
		slog.String("job_id", jobID),
		slog.String("final_video", finalPath),
	)
	return j.Clone(), nil
}

// mergeNarration probes both tracks, picks a merge strategy and runs it.
func (o *Orchestrator) mergeNarration(ctx context.Context, j *Job, audioPath, finalPath string) error {
	videoSec, err := o.media.ProbeDuration(ctx, j.PreviewVideoPath)
	if err != nil {
		return fmt.Errorf("probe preview duration: %w", err)
	}
	audioSec, err := o.media.ProbeDuration(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("probe narration duration: %w", err)
	}

	strategy := media.SelectStrategy(videoSec, audioSec, o.tolerance)
	if strategy == media.StrategyLoopVideo && audioSec > media.MaxLoopAudioSec {
		return fmt.Errorf("%w: %.0fs narration", media.ErrAudioTooLong, audioSec)
	}

	o.logger.Info("merging narration",
		slog.String("job_id", j.ID),
		slog.Float64("video_sec", videoSec),
		slog.Float64("audio_sec", audioSec),
		slog.String("strategy", string(strategy)),
	)

	if err := o.media.Merge(ctx, j.PreviewVideoPath, audioPath, finalPath, strategy); err != nil {
		return fmt.Errorf("merge narration: %w", err)
	}
	return nil
}

// generateMetadata asks the LLM chain for publishing metadata. A nil
// completer means the capability is not configured and metadata is skipped;
// with a completer configured, a failure fails the stage like any other.
func (o *Orchestrator) generateMetadata(ctx context.Context, script string) (*Metadata, error) {
	if o.completer == nil {
		return nil, nil
	}

	meta, err := llm.GenerateMetadata(ctx, o.completer, script)
	if err != nil {
		return nil, err
	}
	return &Metadata{Title: meta.Title, Description: meta.Description, Tags: meta.Tags}, nil
}

// ProcessFull runs the whole pipeline in one call: create, generate the
// preview, then add commentary.
func (o *Orchestrator) ProcessFull(ctx context.Context, params CreateParams) (*Job, error) {
	if strings.TrimSpace(params.Script) == "" {
		return nil, ErrScriptRequired
	}

	j, err := o.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	if _, err := o.GenerateVideo(ctx, j.ID); err != nil {
		return nil, err
	}

	return o.AddCommentary(ctx, j.ID, params.Script, params.Voice)
}

// GetJob returns a snapshot of the job with the given ID.
func (o *Orchestrator) GetJob(ctx context.Context, jobID string) (*Job, error) {
	j, err := o.store.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return j.Clone(), nil
}

// ListJobs returns snapshots of all jobs ordered by creation time.
func (o *Orchestrator) ListJobs(ctx context.Context) ([]*Job, error) {
	return o.store.List(ctx)
}

// ArtifactPath exposes the store's artifact layout to the HTTP layer for
// download endpoints.
func (o *Orchestrator) ArtifactPath(jobID, name string) string {
	return o.store.ArtifactPath(jobID, name)
}

// failJob marks the job failed, persists it and returns the original error.
func (o *Orchestrator) failJob(ctx context.Context, j *Job, cause error) error {
	o.logger.Error("job failed",
		slog.String("job_id", j.ID),
		slog.String("status", string(j.GetStatus())),
		slog.String("error", cause.Error()),
	)

	if err := j.Fail(cause.Error()); err != nil {
		o.logger.Error("could not mark job failed", slog.String("job_id", j.ID), slog.String("error", err.Error()))
	}
	if err := o.store.Save(ctx, j); err != nil {
		o.logger.Error("could not persist failed job", slog.String("job_id", j.ID), slog.String("error", err.Error()))
	}
	return cause
}
