package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	EnvAPIKey            = "GEMINI_API_KEY"
	EnvProviderBaseURL   = "QUILL_PROVIDER_BASE_URL"
	EnvProviderModel     = "QUILL_PROVIDER_MODEL"
	EnvRateLimitWindow   = "QUILL_RATE_LIMIT_WINDOW"
	EnvRateLimitMax      = "QUILL_RATE_LIMIT_MAX"
	EnvRequestTimeout    = "QUILL_REQUEST_TIMEOUT"
	EnvLogMode           = "QUILL_LOG_MODE"
	EnvStripSingleQuotes = "QUILL_STRIP_SINGLE_QUOTES"
)

// Config holds application configuration.
type Config struct {
	// APIKey is the provider credential. Only read from the environment, never from disk.
	APIKey string `json:"-"`

	// ProviderBaseURL is the scheme+host of the generative-text API.
	ProviderBaseURL string `json:"provider_base_url,omitempty"`

	// ProviderModel is the model segment of the generateContent path.
	ProviderModel string `json:"provider_model,omitempty"`

	// RateLimitWindow is the per-client window length, as a Go duration string.
	RateLimitWindow string `json:"rate_limit_window,omitempty"`

	// RateLimitMax is the number of gateway requests a client may make per window.
	RateLimitMax int `json:"rate_limit_max,omitempty"`

	// RateLimitSweepThreshold is the key count above which expired windows are swept.
	RateLimitSweepThreshold int `json:"rate_limit_sweep_threshold,omitempty"`

	// RequestTimeout bounds the outbound provider call, as a Go duration string.
	RequestTimeout string `json:"request_timeout,omitempty"`

	// MaxInputChars is the ceiling on trimmed gateway input length.
	MaxInputChars int `json:"max_input_chars,omitempty"`

	// StripSingleQuotes also unwraps provider text wrapped in a pair of ' characters.
	StripSingleQuotes bool `json:"strip_single_quotes,omitempty"`

	// LogMode selects the zap preset: "dev" or "prod".
	LogMode string `json:"log_mode,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of MCP tool types ("prompt", "history", "template")
	// whose tools are all excluded from registration.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ProviderBaseURL:         "https://generativelanguage.googleapis.com",
		ProviderModel:           "gemini-2.5-flash",
		RateLimitWindow:         "60s",
		RateLimitMax:            10,
		RateLimitSweepThreshold: 500,
		RequestTimeout:          "20s",
		MaxInputChars:           4000,
		LogMode:                 "dev",
	}
}

// RateLimitWindowDuration returns RateLimitWindow as a time.Duration.
func (c *Config) RateLimitWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.RateLimitWindow)
	return d
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Load loads configuration from baseDir/config.json, then applies environment overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.quill.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize applies environment variable overrides and validation.
func (c *Config) Finalize() error {
	c.loadEnv()
	return c.validate()
}

func (c *Config) loadEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvProviderBaseURL); v != "" {
		c.ProviderBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvProviderModel); v != "" {
		c.ProviderModel = v
	}
	if v := os.Getenv(EnvRateLimitWindow); v != "" {
		c.RateLimitWindow = v
	}
	if v := os.Getenv(EnvRateLimitMax); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitMax = n
		}
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		c.RequestTimeout = v
	}
	if v := os.Getenv(EnvLogMode); v != "" {
		c.LogMode = v
	}
	if v := os.Getenv(EnvStripSingleQuotes); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StripSingleQuotes = b
		}
	}
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.RateLimitWindow); err != nil {
		return fmt.Errorf("invalid rate_limit_window: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("invalid rate_limit_window: must be positive")
	}
	if d, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("invalid request_timeout: must be positive")
	}
	if c.RateLimitMax < 1 {
		return fmt.Errorf("invalid rate_limit_max: %d", c.RateLimitMax)
	}
	if c.MaxInputChars < 1 {
		return fmt.Errorf("invalid max_input_chars: %d", c.MaxInputChars)
	}
	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.APIKey = firstString(overlay.APIKey, base.APIKey)
	result.ProviderBaseURL = firstString(overlay.ProviderBaseURL, base.ProviderBaseURL)
	result.ProviderModel = firstString(overlay.ProviderModel, base.ProviderModel)
	result.RateLimitWindow = firstString(overlay.RateLimitWindow, base.RateLimitWindow)
	result.RequestTimeout = firstString(overlay.RequestTimeout, base.RequestTimeout)
	result.LogMode = firstString(overlay.LogMode, base.LogMode)

	result.RateLimitMax = firstInt(overlay.RateLimitMax, base.RateLimitMax)
	result.RateLimitSweepThreshold = firstInt(overlay.RateLimitSweepThreshold, base.RateLimitSweepThreshold)
	result.MaxInputChars = firstInt(overlay.MaxInputChars, base.MaxInputChars)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Booleans: overlay wins if true, else base
	result.StripSingleQuotes = base.StripSingleQuotes || overlay.StripSingleQuotes

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
