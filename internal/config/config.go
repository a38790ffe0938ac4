package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/thesischeck/internal/annotate"
)

type Config struct {
	Port string

	// Pathstore connection; an empty URL disables report publishing.
	PathstoreURL    string
	PathstoreAPIKey string

	// Auth
	APIKey string

	// AI annotation: none, claude or gemini
	AIProvider       string
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	GeminiAPIKey     string
	GeminiModel      string
	StatsWindow      time.Duration

	// Report cache; an empty URL disables caching.
	RedisURL string
	CacheTTL time.Duration

	// Worker pool
	WorkerCount   int
	MaxQueueSize  int
	EngineWorkers int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Optional YAML file with extractor and engine tunables.
	TuningFile string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		APIKey: os.Getenv("THESISCHECK_API_KEY"),

		AIProvider:       envOr("AI_PROVIDER", "none"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		AnthropicBaseURL: envOr("ANTHROPIC_BASE_URL", annotate.DefaultClaudeBaseURL),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", annotate.DefaultGeminiModel),
		StatsWindow:      envDuration("LLM_STATS_WINDOW", 1*time.Hour),

		RedisURL: os.Getenv("REDIS_URL"),
		CacheTTL: envDuration("CACHE_TTL", 24*time.Hour),

		WorkerCount:   envInt("WORKER_COUNT", 4),
		MaxQueueSize:  envInt("MAX_QUEUE_SIZE", 100),
		EngineWorkers: envInt("ENGINE_WORKERS", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		TuningFile: os.Getenv("TUNING_FILE"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.EngineWorkers <= 0 {
		cfg.EngineWorkers = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("THESISCHECK_API_KEY is required")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	switch c.AIProvider {
	case "", "none":
	case "claude":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for AI_PROVIDER=claude")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for AI_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider)
	}
	return nil
}

// AnnotateSettings selects the provider credentials for AIProvider.
func (c Config) AnnotateSettings() annotate.Settings {
	s := annotate.Settings{Kind: c.AIProvider}
	switch c.AIProvider {
	case "claude":
		s.APIKey, s.Model, s.BaseURL = c.AnthropicAPIKey, c.AnthropicModel, c.AnthropicBaseURL
	case "gemini":
		s.APIKey, s.Model = c.GeminiAPIKey, c.GeminiModel
	}
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
