package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Fetcher     FetcherConfig    `toml:"fetcher"`
	Images      ImagesConfig     `toml:"images"`
	Extraction  ExtractionConfig `toml:"extraction"`
	LLM         LLMConfig        `toml:"llm"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
	Logging     LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
	Blobs  BlobConfig   `toml:"blobs"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// BlobConfig configures the filesystem blob store used for downloaded images
type BlobConfig struct {
	Path string `toml:"path"` // Base directory for stored blobs
}

// FetcherConfig configures authenticated page fetching
type FetcherConfig struct {
	UserAgent      string        `toml:"user_agent"`      // Browser user agent sent with every request
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
	MaxBodySize    int64         `toml:"max_body_size"`   // Maximum response body size in bytes
}

// ImagesConfig configures the image locate/download pipeline
type ImagesConfig struct {
	MaxImageSize int64         `toml:"max_image_size"` // Maximum image size to download in bytes
	Timeout      time.Duration `toml:"timeout"`        // Per-image download timeout
	RateLimit    time.Duration `toml:"rate_limit"`     // Minimum delay between downloads from the auction host
}

// ExtractionConfig configures the extraction engine and job lifecycle
type ExtractionConfig struct {
	PageContentCap       int           `toml:"page_content_cap"`       // Max bytes of page content persisted on the job for debugging
	MaxRetries           int           `toml:"max_retries"`            // Automatic retry ceiling per job
	RetryCooldown        time.Duration `toml:"retry_cooldown"`         // Minimum job age before the retry sweep picks it up
	RetryBatchSize       int           `toml:"retry_batch_size"`       // Max jobs re-dispatched per retry sweep
	CleanupRetention     time.Duration `toml:"cleanup_retention"`      // Age after which completed jobs are purged
	CleanupBatchSize     int           `toml:"cleanup_batch_size"`     // Max jobs deleted per cleanup sweep
	DrainBatchSize       int           `toml:"drain_batch_size"`       // Max pending jobs dispatched per queue-drain run
	EnforceUniqueLot     bool          `toml:"enforce_unique_lot"`     // Reject AI-extracted sheets whose lot number already exists
	DefaultCredentialRef string        `toml:"default_credential_ref"` // KV key resolved for sweep re-dispatch credentials
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for extraction (default: "gemini-3-flash-preview")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.1)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for extraction (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.1)
}

// SchedulerConfig configures the background sweeps
type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled"`          // Start the sweep scheduler with the server
	RetrySchedule   string `toml:"retry_schedule"`   // Cron spec for the failed-job retry sweep
	CleanupSchedule string `toml:"cleanup_schedule"` // Cron spec for the completed-job cleanup sweep
	DrainSchedule   string `toml:"drain_schedule"`   // Cron spec for priority queue draining
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in aucsheet.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/aucsheet",
				ResetOnStartup: false,
			},
			Blobs: BlobConfig{
				Path: "./data/images",
			},
		},
		Fetcher: FetcherConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout: 30 * time.Second,
			MaxBodySize:    10 * 1024 * 1024,
		},
		Images: ImagesConfig{
			MaxImageSize: 10 * 1024 * 1024,
			Timeout:      30 * time.Second,
			RateLimit:    500 * time.Millisecond,
		},
		Extraction: ExtractionConfig{
			PageContentCap:       50000,
			MaxRetries:           3,
			RetryCooldown:        time.Hour,
			RetryBatchSize:       10,
			CleanupRetention:     30 * 24 * time.Hour,
			CleanupBatchSize:     50,
			DrainBatchSize:       5,
			EnforceUniqueLot:     false,
			DefaultCredentialRef: "credentials/auction_site",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-3-flash-preview",
			Temperature: 0.1,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Temperature: 0.1,
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			RetrySchedule:   "@every 30m",
			CleanupSchedule: "@every 24h",
			DrainSchedule:   "@every 1m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AUCSHEET_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("AUCSHEET_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("AUCSHEET_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("AUCSHEET_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if blobPath := os.Getenv("AUCSHEET_BLOB_PATH"); blobPath != "" {
		config.Storage.Blobs.Path = blobPath
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("AUCSHEET_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	if level := os.Getenv("AUCSHEET_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("AUCSHEET_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
