// Package settings provides per-project settings overrides.
// A `.lazy-latex.json` file placed next to a document overrides selected
// fields of the global configuration for that document.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

const (
	// FileName is the name of the per-project settings file
	FileName = ".lazy-latex.json"
)

// ProjectSettings holds the overridable subset of the configuration.
// Pointer fields distinguish "not set" from an explicit zero value.
type ProjectSettings struct {
	Model            *string             `json:"model,omitempty"`
	ContextLines     *int                `json:"context_lines,omitempty"`
	KeepOriginal     *bool               `json:"keep_original,omitempty"`
	SaveMode         *types.SaveMode     `json:"save_mode,omitempty"`
	InlineDelimiter  *types.InlineStyle  `json:"inline_delimiter,omitempty"`
	DisplayDelimiter *types.DisplayStyle `json:"display_delimiter,omitempty"`
	MaxPasses        *int                `json:"max_passes,omitempty"`
}

// Manager loads and applies a project settings file
type Manager struct {
	filePath string
	settings *ProjectSettings
	mu       sync.RWMutex
}

// NewManagerForDocument creates a manager for the settings file that governs
// the given document path. The file may not exist; Load tolerates that.
func NewManagerForDocument(docPath string) *Manager {
	dir := filepath.Dir(docPath)
	m := &Manager{
		filePath: filepath.Join(dir, FileName),
		settings: &ProjectSettings{},
	}
	_ = m.Load()
	return m
}

// NewManagerWithPath creates a manager with a custom settings file path.
// Useful for testing.
func NewManagerWithPath(filePath string) *Manager {
	m := &Manager{
		filePath: filePath,
		settings: &ProjectSettings{},
	}
	_ = m.Load()
	return m
}

// Load loads settings from the file
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.settings = &ProjectSettings{}
			return nil
		}
		return err
	}

	var settings ProjectSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		m.settings = &ProjectSettings{}
		return err
	}

	m.settings = &settings
	return nil
}

// Exists reports whether the settings file is present
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.filePath)
	return err == nil
}

// GetFilePath returns the settings file path
func (m *Manager) GetFilePath() string {
	return m.filePath
}

// Apply returns a copy of the base configuration with any set overrides
// applied. The input is never modified.
func (m *Manager) Apply(base *types.Config) *types.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	merged := *base
	s := m.settings
	if s == nil {
		return &merged
	}
	if s.Model != nil {
		merged.Model = *s.Model
	}
	if s.ContextLines != nil {
		merged.ContextLines = *s.ContextLines
	}
	if s.KeepOriginal != nil {
		merged.KeepOriginal = *s.KeepOriginal
	}
	if s.SaveMode != nil {
		merged.SaveMode = *s.SaveMode
	}
	if s.InlineDelimiter != nil {
		merged.InlineDelimiter = *s.InlineDelimiter
	}
	if s.DisplayDelimiter != nil {
		merged.DisplayDelimiter = *s.DisplayDelimiter
	}
	if s.MaxPasses != nil {
		merged.MaxPasses = *s.MaxPasses
	}
	return &merged
}
