// Package server provides the HTTP API for the narrated-video service.
// It includes handlers, middleware, routes, and DTOs separated from domain
// types.
package server

import (
	"time"

	"github.com/narravid/narravid-api/internal/job"
)

// CreateJobRequest is the HTTP request body for creating a new job.
// Exactly one of image_base64 or image_url must be provided.
type CreateJobRequest struct {
	// ImageBase64 is the base64-encoded source image, with or without a
	// data URI prefix.
	ImageBase64 string `json:"image_base64" validate:"required_without=ImageURL"`
	// ImageURL is a public URL to the source image.
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	// MotionPrompt guides the video generation. Optional.
	MotionPrompt string `json:"motion_prompt"`
	// DurationSec is the requested video length in seconds.
	DurationSec int `json:"duration_sec" validate:"omitempty,oneof=5 10"`
	// Script is the narration script, when known at creation time.
	Script string `json:"script"`
	// Voice is the requested narration voice.
	Voice string `json:"voice"`
}

// CommentaryRequest is the HTTP request body for adding narration to a
// job whose preview is ready.
type CommentaryRequest struct {
	// Script is the narration text.
	Script string `json:"script" validate:"required"`
	// Voice is the narration voice name or raw voice ID.
	Voice string `json:"voice"`
}

// GenerateRequest is the HTTP request body for the one-shot pipeline.
type GenerateRequest struct {
	ImageBase64  string `json:"image_base64" validate:"required_without=ImageURL"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
	MotionPrompt string `json:"motion_prompt"`
	DurationSec  int    `json:"duration_sec" validate:"omitempty,oneof=5 10"`
	Script       string `json:"script" validate:"required"`
	Voice        string `json:"voice"`
}

// MetadataResponse mirrors the generated publishing metadata.
type MetadataResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// JobResponse is the HTTP representation of a job.
type JobResponse struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	MotionPrompt string            `json:"motion_prompt,omitempty"`
	DurationSec  int               `json:"duration_sec"`
	Voice        string            `json:"voice,omitempty"`
	VideoURL     string            `json:"video_url,omitempty"`
	Metadata     *MetadataResponse `json:"metadata,omitempty"`
	Error        string            `json:"error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// newJobResponse maps a domain job to its HTTP representation.
func newJobResponse(j *job.Job) JobResponse {
	resp := JobResponse{
		ID:           j.ID,
		Status:       string(j.Status),
		MotionPrompt: j.MotionPrompt,
		DurationSec:  j.DurationSec,
		Voice:        j.Voice,
		VideoURL:     j.VideoURL,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
	if !j.CompletedAt.IsZero() {
		t := j.CompletedAt
		resp.CompletedAt = &t
	}
	if j.Metadata != nil {
		resp.Metadata = &MetadataResponse{
			Title:       j.Metadata.Title,
			Description: j.Metadata.Description,
			Tags:        j.Metadata.Tags,
		}
	}
	return resp
}

// JobListResponse is the HTTP response for listing jobs.
type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Count int           `json:"count"`
}

// VoicesResponse lists the narration voices available by name.
type VoicesResponse struct {
	Voices  []string `json:"voices"`
	Default string   `json:"default"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	Status       string       `json:"status"`
	Capabilities Capabilities `json:"capabilities"`
}

// Capabilities reports which optional integrations are configured.
type Capabilities struct {
	TTS       bool `json:"tts"`
	LLM       bool `json:"llm"`
	S3Publish bool `json:"s3_publish"`
}

// IndexResponse describes the service and its endpoints.
type IndexResponse struct {
	Service   string            `json:"service"`
	Endpoints map[string]string `json:"endpoints"`
}
