package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrElevenLabsAPIKeyRequired is returned when the API key is not provided.
var ErrElevenLabsAPIKeyRequired = errors.New("tts: elevenlabs API key is required")

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsModel   = "eleven_multilingual_v2"

	// elevenLabsMaxChars is the per-request character ceiling.
	elevenLabsMaxChars = 4500
)

// ElevenLabsProvider synthesizes speech via the ElevenLabs API.
type ElevenLabsProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Compile-time check that ElevenLabsProvider implements Provider.
var _ Provider = (*ElevenLabsProvider)(nil)

// ElevenLabsOption is a function that configures an ElevenLabsProvider.
type ElevenLabsOption func(*ElevenLabsProvider)

// WithElevenLabsBaseURL sets a custom base URL.
func WithElevenLabsBaseURL(url string) ElevenLabsOption {
	return func(p *ElevenLabsProvider) {
		p.baseURL = url
	}
}

// WithElevenLabsHTTPClient sets a custom HTTP client.
func WithElevenLabsHTTPClient(c *http.Client) ElevenLabsOption {
	return func(p *ElevenLabsProvider) {
		p.httpClient = c
	}
}

// NewElevenLabsProvider creates a new ElevenLabs synthesis provider.
func NewElevenLabsProvider(apiKey string, opts ...ElevenLabsOption) (*ElevenLabsProvider, error) {
	if apiKey == "" {
		return nil, ErrElevenLabsAPIKeyRequired
	}

	p := &ElevenLabsProvider{
		apiKey:  apiKey,
		baseURL: elevenLabsBaseURL,
		// Synthesis of a full chunk can take a while.
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize converts text to MP3 audio using the given voice. The voice
// may be a friendly name or a raw ElevenLabs voice ID.
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > elevenLabsMaxChars {
		return nil, &ChunkTooLongError{Chars: len(text), Limit: elevenLabsMaxChars}
	}

	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModel,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.5,
			UseSpeakerBoost: true,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", p.baseURL, ResolveVoiceID(voice))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: elevenlabs request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts: elevenlabs returned status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read audio: %w", err)
	}

	return audio, nil
}

// MaxChars returns the per-request character limit.
func (p *ElevenLabsProvider) MaxChars() int { return elevenLabsMaxChars }

// Name returns the provider identifier.
func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }
