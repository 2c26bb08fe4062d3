package videogen

import (
	"context"

	"github.com/narravid/narravid-api/internal/kling"
)

// KlingGenerator adapts the Kling image-to-video client to the Generator
// interface.
type KlingGenerator struct {
	client kling.Client
}

// Compile-time check that KlingGenerator implements Generator.
var _ Generator = (*KlingGenerator)(nil)

// NewKlingGenerator creates a Generator backed by the given Kling client.
func NewKlingGenerator(client kling.Client) *KlingGenerator {
	return &KlingGenerator{client: client}
}

// Submit sends a generation task. Kling accepts either a public URL or raw
// base64 in the same request field; a URL takes precedence when both are set.
func (g *KlingGenerator) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	image := req.ImageBase64
	if req.ImageURL != "" {
		image = req.ImageURL
	}

	opts := kling.DefaultSubmitOptions()
	opts.Image = image
	opts.Prompt = req.Prompt
	if req.DurationSec > 0 {
		opts.DurationSec = req.DurationSec
	}
	if req.AspectRatio != "" {
		opts.AspectRatio = req.AspectRatio
	}

	return g.client.Submit(ctx, opts)
}

// Status checks a task and maps the provider status to a TaskState.
func (g *KlingGenerator) Status(ctx context.Context, taskID string) (TaskUpdate, error) {
	result, err := g.client.Status(ctx, taskID)
	if err != nil {
		return TaskUpdate{}, err
	}

	update := TaskUpdate{
		ResultURL: result.VideoURL,
		Message:   result.Message,
	}

	switch result.Status {
	case kling.StatusSubmitted:
		update.State = StatePending
	case kling.StatusProcessing:
		update.State = StateProcessing
	case kling.StatusSucceed:
		update.State = StateSucceeded
	case kling.StatusFailed:
		update.State = StateFailed
	default:
		update.State = StateProcessing
	}

	return update, nil
}

// Download fetches a result asset into destPath.
func (g *KlingGenerator) Download(ctx context.Context, assetURL, destPath string) error {
	return g.client.Download(ctx, assetURL, destPath)
}
