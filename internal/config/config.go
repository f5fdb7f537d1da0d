// Package config provides configuration management for the lazy-latex converter.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "lazy-latex-config.json"
	// EnvOpenAIAPIKey is the environment variable consulted for the OpenAI key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvAnthropicAPIKey is the environment variable consulted for the Anthropic key
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	// EnvBaseURL is the environment variable for an OpenAI-compatible base URL
	EnvBaseURL = "LAZYLATEX_BASE_URL"
	// DefaultModel is the default model to use
	DefaultModel = "gpt-4o"
	// DefaultContextLines is the number of preceding lines sent as context
	DefaultContextLines = 20
	// DefaultMaxPasses bounds the document convergence loop
	DefaultMaxPasses = 20
)

// Manager manages application configuration
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a new Manager with the specified config path.
// If configPath is empty, it uses the default path in the user's home directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "lazy-latex", DefaultConfigFileName)
	}

	logger.Info("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		Provider:           types.ProviderOpenAI,
		APIKey:             "",
		BaseURL:            "",
		Model:              DefaultModel,
		ContextLines:       DefaultContextLines,
		KeepOriginal:       true,
		AutoConvertOnEnter: true,
		SaveMode:           types.SaveModeNone,
		InlineDelimiter:    types.InlineDollar,
		DisplayDelimiter:   types.DisplayBracket,
		MaxPasses:          DefaultMaxPasses,
		CacheEnabled:       true,
	}
}

// Load loads configuration from the config file.
// If the file doesn't exist, it uses default values.
// Environment variables take precedence for credentials when the config file
// value is empty.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults", logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded successfully",
				logger.String("path", m.configPath),
				logger.String("provider", string(config.Provider)),
				logger.Int("apiKeyLength", len(config.APIKey)),
				logger.String("model", config.Model))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.Provider == "" {
		m.config.Provider = types.ProviderOpenAI
	}
	if m.config.Model == "" {
		m.config.Model = DefaultModel
	}
	if m.config.ContextLines <= 0 {
		m.config.ContextLines = DefaultContextLines
	}
	if m.config.SaveMode == "" {
		m.config.SaveMode = types.SaveModeNone
	}
	if m.config.InlineDelimiter == "" {
		m.config.InlineDelimiter = types.InlineDollar
	}
	if m.config.DisplayDelimiter == "" {
		m.config.DisplayDelimiter = types.DisplayBracket
	}
	if m.config.MaxPasses <= 0 {
		m.config.MaxPasses = DefaultMaxPasses
	}
	if m.config.CachePath == "" {
		m.config.CachePath = filepath.Join(filepath.Dir(m.configPath), "completions.db")
	}

	return nil
}

// Save saves the current configuration to the config file.
func (m *Manager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	// 0600: the file holds credentials
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetAPIKey returns the API key for the configured provider.
// It first checks the config file value, then falls back to the provider's
// environment variable.
func (m *Manager) GetAPIKey() string {
	if m.config != nil && m.config.APIKey != "" {
		return m.config.APIKey
	}

	switch m.GetProvider() {
	case types.ProviderAnthropic:
		return os.Getenv(EnvAnthropicAPIKey)
	default:
		return os.Getenv(EnvOpenAIAPIKey)
	}
}

// SetAPIKey sets the API key and saves the configuration.
func (m *Manager) SetAPIKey(key string) error {
	logger.Info("setting API key")
	if m.config == nil {
		m.config = defaultConfig()
	}
	m.config.APIKey = key
	return m.Save()
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetProvider returns the configured backend provider.
func (m *Manager) GetProvider() types.Provider {
	if m.config != nil && m.config.Provider != "" {
		return m.config.Provider
	}
	return types.ProviderOpenAI
}

// GetModel returns the model to use for generation.
func (m *Manager) GetModel() string {
	if m.config != nil && m.config.Model != "" {
		return m.config.Model
	}
	return DefaultModel
}

// GetBaseURL returns the backend base URL.
// It first checks the config file value, then falls back to the environment
// variable. Empty means the provider's default endpoint.
func (m *Manager) GetBaseURL() string {
	if m.config != nil && m.config.BaseURL != "" {
		return m.config.BaseURL
	}
	return os.Getenv(EnvBaseURL)
}
