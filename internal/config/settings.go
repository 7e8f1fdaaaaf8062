package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/helixml/autocommit/domain/change"
	"github.com/helixml/autocommit/domain/commit"
)

// Settings are the per-user values kept in the settings file.
type Settings struct {
	APIKey                string `json:"apiKey"`
	RepoPath              string `json:"repoPath"`
	BaseCommitMessage     string `json:"baseCommitMessage"`
	ModificationThreshold int    `json:"modificationThreshold"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		BaseCommitMessage:     commit.DefaultPrompt,
		ModificationThreshold: change.DefaultThreshold,
	}
}

// Normalize fills in defaults for unset values.
func (s Settings) Normalize() Settings {
	if s.ModificationThreshold <= 0 {
		s.ModificationThreshold = change.DefaultThreshold
	}
	if strings.TrimSpace(s.BaseCommitMessage) == "" {
		s.BaseCommitMessage = commit.DefaultPrompt
	}
	return s
}

// WithAPIKeyOverride returns a copy using key when it is not empty.
func (s Settings) WithAPIKeyOverride(key string) Settings {
	if key != "" {
		s.APIKey = key
	}
	return s
}

// LoadSettings reads the settings file at path. A missing file yields
// DefaultSettings; a malformed one is an error.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s.Normalize(), nil
}

// SaveSettings writes s to path as indented JSON, creating parent directories.
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
