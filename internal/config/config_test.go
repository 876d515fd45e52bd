package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every override so host settings can't leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvAPIKey, EnvProviderBaseURL, EnvProviderModel, EnvRateLimitWindow,
		EnvRateLimitMax, EnvRequestTimeout, EnvLogMode, EnvStripSingleQuotes,
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimitMax != DefaultConfig().RateLimitMax {
		t.Fatalf("RateLimitMax = %d, want %d", cfg.RateLimitMax, DefaultConfig().RateLimitMax)
	}
	if cfg.RequestTimeoutDuration() != 20*time.Second {
		t.Errorf("RequestTimeoutDuration = %v, want 20s", cfg.RequestTimeoutDuration())
	}
	if cfg.RateLimitWindowDuration() != 60*time.Second {
		t.Errorf("RateLimitWindowDuration = %v, want 60s", cfg.RateLimitWindowDuration())
	}
	if cfg.MaxInputChars != 4000 {
		t.Errorf("MaxInputChars = %d, want 4000", cfg.MaxInputChars)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"rate_limit_max": 3, "request_timeout": "5s"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimitMax != 3 {
		t.Fatalf("RateLimitMax = %d, want %d", cfg.RateLimitMax, 3)
	}
	if cfg.RequestTimeoutDuration() != 5*time.Second {
		t.Fatalf("RequestTimeoutDuration = %v, want 5s", cfg.RequestTimeoutDuration())
	}
	// untouched fields keep defaults
	if cfg.ProviderModel != "gemini-2.5-flash" {
		t.Errorf("ProviderModel = %q, want default", cfg.ProviderModel)
	}
}

func TestLoad_APIKeyNeverFromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"APIKey": "leaked"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "  secret  ")
	t.Setenv(EnvRateLimitMax, "7")
	t.Setenv(EnvRateLimitWindow, "2m")
	t.Setenv(EnvRequestTimeout, "3s")
	t.Setenv(EnvProviderBaseURL, "http://localhost:9999/")
	t.Setenv(EnvStripSingleQuotes, "true")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "secret")
	}
	if cfg.RateLimitMax != 7 {
		t.Errorf("RateLimitMax = %d, want 7", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindowDuration() != 2*time.Minute {
		t.Errorf("RateLimitWindowDuration = %v, want 2m", cfg.RateLimitWindowDuration())
	}
	if cfg.RequestTimeoutDuration() != 3*time.Second {
		t.Errorf("RequestTimeoutDuration = %v, want 3s", cfg.RequestTimeoutDuration())
	}
	if cfg.ProviderBaseURL != "http://localhost:9999" {
		t.Errorf("ProviderBaseURL = %q, want trailing slash trimmed", cfg.ProviderBaseURL)
	}
	if !cfg.StripSingleQuotes {
		t.Error("StripSingleQuotes = false, want true")
	}
}

func TestLoad_EnvIgnoresUnparseableInts(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRateLimitMax, "lots")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimitMax != 10 {
		t.Errorf("RateLimitMax = %d, want default 10", cfg.RateLimitMax)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"bad window", EnvRateLimitWindow, "soon"},
		{"zero window", EnvRateLimitWindow, "0s"},
		{"bad timeout", EnvRequestTimeout, "forever"},
		{"negative timeout", EnvRequestTimeout, "-1s"},
		{"zero max", EnvRateLimitMax, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.val)
			if _, err := Load(t.TempDir()); err == nil {
				t.Fatalf("Load() expected error for %s=%q", tt.env, tt.val)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.DisabledTools = []string{"history_clear"}

	overlay := &Config{
		RateLimitMax:      2,
		StripSingleQuotes: true,
		DisabledTools:     []string{" history_clear ", "prompt_generate", ""},
	}

	got := Merge(base, overlay)
	if got.RateLimitMax != 2 {
		t.Errorf("RateLimitMax = %d, want 2", got.RateLimitMax)
	}
	if got.RequestTimeout != "20s" {
		t.Errorf("RequestTimeout = %q, want base value", got.RequestTimeout)
	}
	if !got.StripSingleQuotes {
		t.Error("StripSingleQuotes = false, want true")
	}
	if len(got.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 deduplicated entries", got.DisabledTools)
	}
	if got.DisabledTools[0] != "history_clear" || got.DisabledTools[1] != "prompt_generate" {
		t.Errorf("DisabledTools = %v", got.DisabledTools)
	}
	if got.DisabledTypes != nil {
		t.Errorf("DisabledTypes = %v, want nil", got.DisabledTypes)
	}
}

func TestMergeStringSlice_Empty(t *testing.T) {
	if got := mergeStringSlice(nil, []string{" ", ""}); got != nil {
		t.Errorf("mergeStringSlice = %v, want nil", got)
	}
}
