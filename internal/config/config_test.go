package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lazy-latex-config.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := newTestManager(t)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := m.GetConfig()
	if cfg.Provider != types.ProviderOpenAI {
		t.Errorf("Provider = %q, want %q", cfg.Provider, types.ProviderOpenAI)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.ContextLines != DefaultContextLines {
		t.Errorf("ContextLines = %d, want %d", cfg.ContextLines, DefaultContextLines)
	}
	if cfg.MaxPasses != DefaultMaxPasses {
		t.Errorf("MaxPasses = %d, want %d", cfg.MaxPasses, DefaultMaxPasses)
	}
	if cfg.SaveMode != types.SaveModeNone {
		t.Errorf("SaveMode = %q, want %q", cfg.SaveMode, types.SaveModeNone)
	}
	if cfg.CachePath == "" {
		t.Error("CachePath not defaulted")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	m := newTestManager(t)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := m.GetConfig()
	cfg.Provider = types.ProviderAnthropic
	cfg.Model = "claude-sonnet-4-0"
	cfg.ContextLines = 7
	cfg.SaveMode = types.SaveModeBefore
	cfg.KeepOriginal = false
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := NewManager(m.GetConfigPath())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := reloaded.GetConfig()
	if got.Provider != types.ProviderAnthropic || got.Model != "claude-sonnet-4-0" ||
		got.ContextLines != 7 || got.SaveMode != types.SaveModeBefore || got.KeepOriginal {
		t.Errorf("reloaded config = %+v", got)
	}
}

func TestLoadInvalidJSONFallsBackToDefaults(t *testing.T) {
	m := newTestManager(t)
	if err := os.WriteFile(m.GetConfigPath(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.GetModel() != DefaultModel {
		t.Errorf("Model = %q, want default after invalid file", m.GetModel())
	}
}

func TestSaveUsesRestrictivePermissions(t *testing.T) {
	m := newTestManager(t)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(m.GetConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

func TestSetAPIKeyPersistsImmediately(t *testing.T) {
	m := newTestManager(t)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if err := m.SetAPIKey("sk-new"); err != nil {
		t.Fatalf("SetAPIKey() error = %v", err)
	}

	reloaded, err := NewManager(m.GetConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if got := reloaded.GetAPIKey(); got != "sk-new" {
		t.Errorf("GetAPIKey() after reload = %q, want %q", got, "sk-new")
	}
}

func TestGetAPIKeyEnvFallback(t *testing.T) {
	tests := []struct {
		name     string
		provider types.Provider
		envVar   string
	}{
		{"openai", types.ProviderOpenAI, EnvOpenAIAPIKey},
		{"anthropic", types.ProviderAnthropic, EnvAnthropicAPIKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOpenAIAPIKey, "")
			t.Setenv(EnvAnthropicAPIKey, "")
			t.Setenv(tt.envVar, "sk-from-env")

			m := newTestManager(t)
			if err := m.Load(); err != nil {
				t.Fatal(err)
			}
			m.GetConfig().Provider = tt.provider

			if got := m.GetAPIKey(); got != "sk-from-env" {
				t.Errorf("GetAPIKey() = %q, want env fallback", got)
			}

			m.GetConfig().APIKey = "sk-from-file"
			if got := m.GetAPIKey(); got != "sk-from-file" {
				t.Errorf("GetAPIKey() = %q, config file value must win", got)
			}
		})
	}
}

func TestGetBaseURLEnvFallback(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://proxy.example.com/v1")

	m := newTestManager(t)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if got := m.GetBaseURL(); got != "https://proxy.example.com/v1" {
		t.Errorf("GetBaseURL() = %q, want env fallback", got)
	}

	m.GetConfig().BaseURL = "https://direct.example.com"
	if got := m.GetBaseURL(); got != "https://direct.example.com" {
		t.Errorf("GetBaseURL() = %q, config value must win", got)
	}
}
