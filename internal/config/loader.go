package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and merging settings from multiple sources.
type Loader struct {
	// userDir is the user-level config directory (e.g., ~/.todochat)
	userDir string

	// projectDir is the project-level config directory (e.g., .todochat)
	projectDir string

	// getenv allows tests to inject an environment
	getenv func(string) string
}

// NewLoader creates a settings loader with the default directories.
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		userDir:    filepath.Join(homeDir, ".todochat"),
		projectDir: ".todochat",
		getenv:     os.Getenv,
	}
}

// NewLoaderWithOptions creates a loader with custom directories.
func NewLoaderWithOptions(userDir, projectDir string) *Loader {
	return &Loader{
		userDir:    userDir,
		projectDir: projectDir,
		getenv:     os.Getenv,
	}
}

// Load loads and merges settings from all sources.
// Priority (lowest to highest):
//  1. built-in defaults
//  2. ~/.todochat/settings.yaml
//  3. .todochat/settings.yaml
//  4. TODOCHAT_API_BASE / TODOCHAT_AUTH_BASE / TODOCHAT_SESSION_COOKIE
//
// Later sources override earlier ones. Unreadable or malformed files
// are skipped rather than failing startup.
func (l *Loader) Load() (*Settings, error) {
	settings := NewSettings()

	sources := []string{
		filepath.Join(l.userDir, "settings.yaml"),
		filepath.Join(l.projectDir, "settings.yaml"),
	}
	for _, src := range sources {
		if data, err := os.ReadFile(src); err == nil {
			var s Settings
			if err := yaml.Unmarshal(data, &s); err == nil {
				settings = MergeSettings(settings, &s)
			}
		}
	}

	settings = MergeSettings(settings, &Settings{
		APIBase:       l.getenv("TODOCHAT_API_BASE"),
		AuthBase:      l.getenv("TODOCHAT_AUTH_BASE"),
		SessionCookie: l.getenv("TODOCHAT_SESSION_COOKIE"),
		Conversation:  l.getenv("TODOCHAT_CONVERSATION"),
	})

	return settings, nil
}

// LoadFile loads settings from a specific file.
func (l *Loader) LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// GetUserDir returns the user config directory path.
func (l *Loader) GetUserDir() string {
	return l.userDir
}

// EnsureUserDir creates the user config directory if it doesn't exist.
func (l *Loader) EnsureUserDir() error {
	return os.MkdirAll(l.userDir, 0755)
}

// SaveToUser saves settings to the user-level settings file, merging
// with existing content.
func (l *Loader) SaveToUser(settings *Settings) error {
	return l.saveToFile(filepath.Join(l.userDir, "settings.yaml"), settings)
}

func (l *Loader) saveToFile(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	toSave := settings
	if existing, err := l.LoadFile(path); err == nil {
		toSave = MergeSettings(existing, settings)
	}

	data, err := yaml.Marshal(toSave)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadedSettings is a cached instance of the loaded settings
var loadedSettings *Settings

// Load is a convenience function that loads settings using the default loader.
func Load() (*Settings, error) {
	if loadedSettings != nil {
		return loadedSettings, nil
	}
	loader := NewLoader()
	settings, err := loader.Load()
	if err != nil {
		return nil, err
	}
	loadedSettings = settings
	return loadedSettings, nil
}

// Reload forces reloading of settings, clearing the cache.
func Reload() (*Settings, error) {
	loadedSettings = nil
	return Load()
}
