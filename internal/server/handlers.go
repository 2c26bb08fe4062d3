package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/narravid/narravid-api/internal/job"
	"github.com/narravid/narravid-api/internal/tts"
	"github.com/narravid/narravid-api/internal/videogen"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	orch         *job.Orchestrator
	validator    *validator.Validate
	logger       *slog.Logger
	capabilities Capabilities
}

// NewHandlers creates a new Handlers instance. capabilities reflects which
// optional integrations were wired at startup and surfaces on /health.
func NewHandlers(orch *job.Orchestrator, capabilities Capabilities, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		orch:         orch,
		validator:    validator.New(),
		logger:       logger,
		capabilities: capabilities,
	}
}

// Index handles GET / requests.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{
		Service: "narravid-api",
		Endpoints: map[string]string{
			"POST /api/jobs":                 "create a job",
			"POST /api/jobs/{id}/video":      "generate the preview video",
			"POST /api/jobs/{id}/commentary": "narrate and merge",
			"GET /api/jobs/{id}":             "job details",
			"GET /api/jobs":                  "list jobs",
			"POST /api/generate":             "full pipeline in one call",
			"GET /api/download/{id}":         "download the final video",
			"GET /api/download/{id}/audio":   "download the narration audio",
			"GET /api/voices":                "list narration voices",
			"GET /health":                    "health and capabilities",
		},
	})
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Capabilities: h.capabilities,
	})
}

// Voices handles GET /api/voices requests.
func (h *Handlers) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VoicesResponse{
		Voices:  tts.VoiceNames(),
		Default: tts.DefaultVoice,
	})
}

// CreateJob handles POST /api/jobs requests.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.orch.Create(r.Context(), job.CreateParams{
		ImageBase64:  req.ImageBase64,
		ImageURL:     req.ImageURL,
		MotionPrompt: req.MotionPrompt,
		DurationSec:  req.DurationSec,
		Script:       req.Script,
		Voice:        req.Voice,
	})
	if err != nil {
		h.writeDomainError(w, err, "JOB_CREATION_FAILED")
		return
	}

	writeJSON(w, http.StatusCreated, newJobResponse(created))
}

// GenerateVideo handles POST /api/jobs/{id}/video requests. The call is
// synchronous: it returns once the preview is on disk or generation fails.
func (h *Handlers) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	updated, err := h.orch.GenerateVideo(r.Context(), jobID)
	if err != nil {
		h.writeDomainError(w, err, "GENERATION_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, newJobResponse(updated))
}

// AddCommentary handles POST /api/jobs/{id}/commentary requests.
func (h *Handlers) AddCommentary(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	var req CommentaryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.orch.AddCommentary(r.Context(), jobID, req.Script, req.Voice)
	if err != nil {
		h.writeDomainError(w, err, "COMMENTARY_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, newJobResponse(updated))
}

// Generate handles POST /api/generate requests: the full pipeline in one
// synchronous call.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	finished, err := h.orch.ProcessFull(r.Context(), job.CreateParams{
		ImageBase64:  req.ImageBase64,
		ImageURL:     req.ImageURL,
		MotionPrompt: req.MotionPrompt,
		DurationSec:  req.DurationSec,
		Script:       req.Script,
		Voice:        req.Voice,
	})
	if err != nil {
		h.writeDomainError(w, err, "PIPELINE_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, newJobResponse(finished))
}

// GetJob handles GET /api/jobs/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	found, err := h.orch.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err, "JOB_FETCH_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, newJobResponse(found))
}

// ListJobs handles GET /api/jobs requests.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.orch.ListJobs(r.Context())
	if err != nil {
		h.writeDomainError(w, err, "JOB_LIST_FAILED")
		return
	}

	resp := JobListResponse{Jobs: make([]JobResponse, 0, len(jobs)), Count: len(jobs)}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, newJobResponse(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DownloadVideo handles GET /api/download/{id} requests, serving the final
// narrated video. Falls back to the preview when narration has not run.
func (h *Handlers) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	found, err := h.orch.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeDomainError(w, err, "JOB_FETCH_FAILED")
		return
	}

	path := found.FinalVideoPath
	if path == "" {
		path = found.PreviewVideoPath
	}
	if path == "" {
		writeError(w, http.StatusNotFound, "no video produced yet", "VIDEO_NOT_READY")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+jobID+`.mp4"`)
	http.ServeFile(w, r, path)
}

// DownloadAudio handles GET /api/download/{id}/audio requests, serving the
// narration track.
func (h *Handlers) DownloadAudio(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	found, err := h.orch.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeDomainError(w, err, "JOB_FETCH_FAILED")
		return
	}

	if found.AudioPath == "" {
		writeError(w, http.StatusNotFound, "no narration produced yet", "AUDIO_NOT_READY")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="`+jobID+`.mp3"`)
	http.ServeFile(w, r, found.AudioPath)
}

// decodeAndValidate decodes the JSON body into dst and validates it,
// writing a 400 response on failure.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

// writeDomainError maps domain errors onto HTTP status codes: invalid
// inputs are 400, unknown jobs 404, wrong-state operations 409, upstream
// provider failures 502, anything else 500.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error, fallbackCode string) {
	var transErr *job.InvalidTransitionError
	var subErr *videogen.SubmissionError
	var genErr *videogen.GenerationError
	var toErr *videogen.TimeoutError
	var dlErr *videogen.DownloadError

	switch {
	case errors.Is(err, job.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
	case errors.As(err, &transErr):
		writeError(w, http.StatusConflict, transErr.Error(), "INVALID_STATE")
	case errors.Is(err, job.ErrImageRequired),
		errors.Is(err, job.ErrInvalidDuration),
		errors.Is(err, job.ErrScriptRequired),
		errors.Is(err, job.ErrUnsupportedImageType),
		errors.Is(err, job.ErrInvalidImageEncoding):
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.As(err, &subErr), errors.As(err, &genErr), errors.As(err, &toErr), errors.As(err, &dlErr):
		writeError(w, http.StatusBadGateway, err.Error(), "UPSTREAM_FAILED")
	default:
		h.logger.Error("request failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error(), fallbackCode)
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
