package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredVariables(t *testing.T) {
	// Clear all environment variables
	clearEnv := func() {
		os.Unsetenv("PORT")
		os.Unsetenv("KLING_ACCESS_KEY")
		os.Unsetenv("KLING_SECRET_KEY")
		os.Unsetenv("KLING_API_BASE")
		os.Unsetenv("ELEVENLABS_API_KEY")
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("GROQ_API_KEY")
		os.Unsetenv("WORK_DIR")
		os.Unsetenv("POLL_INTERVAL_SEC")
		os.Unsetenv("POLL_MAX_ATTEMPTS")
		os.Unsetenv("S3_BUCKET")
		os.Unsetenv("S3_REGION")
		os.Unsetenv("AWS_ACCESS_KEY_ID")
		os.Unsetenv("AWS_SECRET_ACCESS_KEY")
		os.Unsetenv("LOG_FORMAT")
		os.Unsetenv("LOG_LEVEL")
	}

	t.Run("missing KLING_ACCESS_KEY returns error", func(t *testing.T) {
		clearEnv()
		t.Setenv("KLING_SECRET_KEY", "test-secret")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrKlingAccessKeyRequired)
	})

	t.Run("missing KLING_SECRET_KEY returns error", func(t *testing.T) {
		clearEnv()
		t.Setenv("KLING_ACCESS_KEY", "test-access")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrKlingSecretKeyRequired)
	})

	t.Run("all required variables present succeeds", func(t *testing.T) {
		clearEnv()
		t.Setenv("KLING_ACCESS_KEY", "test-access")
		t.Setenv("KLING_SECRET_KEY", "test-secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "test-access", cfg.KlingAccessKey)
		assert.Equal(t, "test-secret", cfg.KlingSecretKey)
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KLING_ACCESS_KEY", "test-access")
	t.Setenv("KLING_SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://api.klingai.com", cfg.KlingAPIBase)
	assert.Equal(t, "/tmp/narravid", cfg.WorkDir)
	assert.Equal(t, 5, cfg.PollIntervalSec)
	assert.Equal(t, 120, cfg.PollMaxAttempts)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KLING_ACCESS_KEY", "test-access")
	t.Setenv("KLING_SECRET_KEY", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("POLL_INTERVAL_SEC", "2")
	t.Setenv("POLL_MAX_ATTEMPTS", "10")
	t.Setenv("WORK_DIR", "/var/lib/narravid")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2, cfg.PollIntervalSec)
	assert.Equal(t, 10, cfg.PollMaxAttempts)
	assert.Equal(t, "/var/lib/narravid", cfg.WorkDir)
}

func TestS3Enabled(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		region  string
		enabled bool
	}{
		{"both set", "my-bucket", "us-east-1", true},
		{"bucket only", "my-bucket", "", false},
		{"region only", "", "us-east-1", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{S3Bucket: tt.bucket, S3Region: tt.region}
			assert.Equal(t, tt.enabled, cfg.S3Enabled())
		})
	}
}

func TestProviderEnabled(t *testing.T) {
	cfg := &Config{ElevenLabsAPIKey: "el", GroqAPIKey: "gq"}
	assert.True(t, cfg.ElevenLabsEnabled())
	assert.False(t, cfg.OpenAIEnabled())
	assert.True(t, cfg.GroqEnabled())

	assert.False(t, (&Config{}).GroqEnabled())
}

func TestValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{KlingAccessKey: "a", KlingSecretKey: "s"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing access key", func(t *testing.T) {
		cfg := &Config{KlingSecretKey: "s"}
		assert.ErrorIs(t, cfg.Validate(), ErrKlingAccessKeyRequired)
	})

	t.Run("missing secret key", func(t *testing.T) {
		cfg := &Config{KlingAccessKey: "a"}
		assert.ErrorIs(t, cfg.Validate(), ErrKlingSecretKeyRequired)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		cfg := &Config{LogFormat: "json", LogLevel: "debug"}
		logger := cfg.NewLogger()
		require.NotNil(t, logger)
		assert.True(t, logger.Enabled(nil, slog.LevelDebug))
	})

	t.Run("text format defaults to info", func(t *testing.T) {
		cfg := &Config{LogFormat: "text", LogLevel: "nonsense"}
		logger := cfg.NewLogger()
		require.NotNil(t, logger)
		assert.False(t, logger.Enabled(nil, slog.LevelDebug))
		assert.True(t, logger.Enabled(nil, slog.LevelInfo))
	})
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{
		KlingAccessKey:   "super-secret-access",
		KlingSecretKey:   "super-secret-key",
		ElevenLabsAPIKey: "el-key",
		OpenAIAPIKey:     "oa-key",
	}

	s := cfg.String()
	assert.NotContains(t, s, "super-secret-access")
	assert.NotContains(t, s, "super-secret-key")
	assert.NotContains(t, s, "el-key")
	assert.NotContains(t, s, "oa-key")
}
