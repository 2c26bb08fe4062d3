// Package bootstrap provides dependency initialization for the narrated-video API.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/narravid/narravid-api/internal/config"
	"github.com/narravid/narravid-api/internal/job"
	"github.com/narravid/narravid-api/internal/kling"
	"github.com/narravid/narravid-api/internal/llm"
	"github.com/narravid/narravid-api/internal/media"
	"github.com/narravid/narravid-api/internal/server"
	"github.com/narravid/narravid-api/internal/storage"
	"github.com/narravid/narravid-api/internal/tts"
	"github.com/narravid/narravid-api/internal/videogen"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Orchestrator *job.Orchestrator
	Capabilities server.Capabilities
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := job.NewFileStore(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("create job store: %w", err)
	}

	klingClient, err := kling.NewClient(cfg.KlingAccessKey, cfg.KlingSecretKey,
		kling.WithBaseURL(cfg.KlingAPIBase))
	if err != nil {
		return nil, fmt.Errorf("create Kling client: %w", err)
	}

	poller := videogen.NewPoller(
		videogen.NewKlingGenerator(klingClient),
		store.Root(),
		logger,
		videogen.WithPollInterval(time.Duration(cfg.PollIntervalSec)*time.Second),
		videogen.WithMaxAttempts(cfg.PollMaxAttempts),
	)

	processor := media.NewFFmpegProcessor("", "")

	synth, err := initSynthesizer(cfg, processor, logger)
	if err != nil {
		return nil, err
	}

	completer := initCompleter(cfg, logger)
	publisher, err := initPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}

	orch := job.NewOrchestrator(store, poller, synth, processor, completer, publisher, logger)

	return &Dependencies{
		Orchestrator: orch,
		Capabilities: server.Capabilities{
			TTS:       cfg.ElevenLabsEnabled() || cfg.OpenAIEnabled(),
			LLM:       completer != nil,
			S3Publish: publisher.Enabled(),
		},
	}, nil
}

// initSynthesizer picks the speech provider: ElevenLabs when configured,
// the OpenAI speech API as fallback. With neither key the synthesizer still
// exists but every narration request fails cleanly.
func initSynthesizer(cfg *config.Config, processor *media.FFmpegProcessor, logger *slog.Logger) (*tts.Synthesizer, error) {
	var provider tts.Provider

	switch {
	case cfg.ElevenLabsEnabled():
		p, err := tts.NewElevenLabsProvider(cfg.ElevenLabsAPIKey)
		if err != nil {
			return nil, fmt.Errorf("create ElevenLabs provider: %w", err)
		}
		provider = p
		logger.Info("speech synthesis configured", slog.String("provider", p.Name()))
	case cfg.OpenAIEnabled():
		p, err := tts.NewOpenAIProvider(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("create OpenAI speech provider: %w", err)
		}
		provider = p
		logger.Info("speech synthesis configured", slog.String("provider", p.Name()))
	default:
		logger.Warn("no speech provider configured, narration requests will fail")
	}

	return tts.NewSynthesizer(provider, processor, logger), nil
}

// initCompleter builds the LLM fallback chain from the configured keys.
// Returns nil when no provider is configured; metadata and motion prompt
// generation are then skipped.
func initCompleter(cfg *config.Config, logger *slog.Logger) llm.Completer {
	var completers []llm.Completer

	if cfg.OpenAIEnabled() {
		if c, err := llm.NewOpenAICompleter(cfg.OpenAIAPIKey); err == nil {
			completers = append(completers, c)
		}
	}
	if cfg.GroqEnabled() {
		if c, err := llm.NewGroqCompleter(cfg.GroqAPIKey); err == nil {
			completers = append(completers, c)
		}
	}

	if len(completers) == 0 {
		logger.Warn("no LLM provider configured, metadata generation disabled")
		return nil
	}

	names := make([]string, 0, len(completers))
	for _, c := range completers {
		names = append(names, c.Name())
	}
	logger.Info("LLM chain configured", slog.Any("providers", names))
	return llm.NewChain(logger, completers...)
}

// initPublisher creates the S3 publisher when a bucket is configured.
func initPublisher(cfg *config.Config, logger *slog.Logger) (storage.Publisher, error) {
	if !cfg.S3Enabled() {
		logger.Info("S3 publication disabled, videos served from local disk")
		return storage.NewNoopPublisher(), nil
	}

	publisher, err := storage.NewS3Publisher(storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 publisher: %w", err)
	}

	logger.Info("S3 publication configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
	)
	return publisher, nil
}
