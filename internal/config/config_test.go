package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("JOB_TTL", "garbage")
	t.Setenv("AI_PROVIDER", "")

	cfg := Load()
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.Equal(t, "none", cfg.AIProvider)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WORKER_COUNT", "7")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg := Load()
	assert.Equal(t, 7, cfg.WorkerCount)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.PDFFallbackPdftotext)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{APIKey: "k", AIProvider: "none"}, false},
		{"missing api key", Config{AIProvider: "none"}, true},
		{"pathstore without key", Config{APIKey: "k", PathstoreURL: "http://ps"}, true},
		{"claude without key", Config{APIKey: "k", AIProvider: "claude"}, true},
		{"claude", Config{APIKey: "k", AIProvider: "claude", AnthropicAPIKey: "a"}, false},
		{"gemini without key", Config{APIKey: "k", AIProvider: "gemini"}, true},
		{"unknown provider", Config{APIKey: "k", AIProvider: "other"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnnotateSettings(t *testing.T) {
	cfg := Config{AIProvider: "gemini", GeminiAPIKey: "g", GeminiModel: "m", AnthropicAPIKey: "a"}
	s := cfg.AnnotateSettings()
	assert.Equal(t, "gemini", s.Kind)
	assert.Equal(t, "g", s.APIKey)
	assert.Equal(t, "m", s.Model)
}

func TestParseTuning(t *testing.T) {
	tun, err := ParseTuning([]byte(`
extract:
  toc_window: 10
  keyword_heading_max_len: 80
engine:
  workers: 2
annotate:
  prompt_tokens: 1500
`))
	require.NoError(t, err)
	assert.Equal(t, 10, tun.Extract.TOCWindow)
	assert.Equal(t, 80, tun.Extract.KeywordHeadingMaxLen)
	assert.Equal(t, 0, tun.Extract.TOCThreshold)
	assert.Equal(t, 5, tun.Extract.WithDefaults().TOCThreshold)
	assert.Equal(t, 2, tun.Engine.Workers)
	assert.Equal(t, 1500, tun.Annotate.PromptTokens)
}

func TestParseTuningRejects(t *testing.T) {
	_, err := ParseTuning([]byte("extract:\n  toc_windw: 3\n"))
	assert.Error(t, err)

	_, err = ParseTuning([]byte("engine:\n  workers: -1\n"))
	assert.Error(t, err)

	tun, err := ParseTuning(nil)
	require.NoError(t, err)
	assert.Equal(t, Tuning{}, tun)
}

func TestLoadTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  workers: 3\n"), 0o600))

	tun, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tun.Engine.Workers)

	_, err = LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tun, err = LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, 0, tun.Engine.Workers)
}
