package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// ErrOpenAIAPIKeyRequired is returned when the API key is not provided.
var ErrOpenAIAPIKeyRequired = errors.New("tts: openai API key is required")

// openAIMaxChars is the per-request character ceiling for the speech API.
const openAIMaxChars = 4000

// openAIVoices are the voices accepted by the OpenAI speech API. Friendly
// ElevenLabs names fall back to the default.
var openAIVoices = map[string]openai.SpeechVoice{
	"alloy":   openai.VoiceAlloy,
	"echo":    openai.VoiceEcho,
	"fable":   openai.VoiceFable,
	"onyx":    openai.VoiceOnyx,
	"nova":    openai.VoiceNova,
	"shimmer": openai.VoiceShimmer,
}

// OpenAIProvider synthesizes speech via the OpenAI speech API. It serves
// as the fallback when ElevenLabs is unavailable.
type OpenAIProvider struct {
	client *openai.Client
}

// Compile-time check that OpenAIProvider implements Provider.
var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI synthesis provider.
func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrOpenAIAPIKeyRequired
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey)}, nil
}

// NewOpenAIProviderWithClient creates a provider around an existing client.
// Used by tests and by callers that share one client across features.
func NewOpenAIProviderWithClient(client *openai.Client) *OpenAIProvider {
	return &OpenAIProvider{client: client}
}

// Synthesize converts text to MP3 audio. Voice names that are not OpenAI
// voices map to onyx, keeping jobs written against the ElevenLabs voice
// table working on the fallback path.
func (p *OpenAIProvider) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > openAIMaxChars {
		return nil, &ChunkTooLongError{Chars: len(text), Limit: openAIMaxChars}
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1HD,
		Input:          text,
		Voice:          mapOpenAIVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("tts: openai speech request failed: %w", err)
	}
	defer func() { _ = resp.Close() }()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("tts: read audio: %w", err)
	}

	return audio, nil
}

func mapOpenAIVoice(voice string) openai.SpeechVoice {
	if v, ok := openAIVoices[voice]; ok {
		return v
	}
	return openai.VoiceOnyx
}

// MaxChars returns the per-request character limit.
func (p *OpenAIProvider) MaxChars() int { return openAIMaxChars }

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string { return "openai" }
