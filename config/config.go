package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for a fresh settings file.
const (
	DefaultTickSeconds = 1
	MaxTickSeconds     = 3600
)

// Settings is the persisted application configuration. The tracked
// location list deliberately does not live here: locations are
// process-lifetime only.
type Settings struct {
	// TwelveHour selects 12-hour clock rendering instead of 24-hour.
	TwelveHour bool `yaml:"twelve_hour"`
	// TickSeconds is the comparison refresh interval.
	TickSeconds int `yaml:"tick_seconds"`
	// DayNight enables the day/night marker on each clock card.
	DayNight bool `yaml:"day_night"`
	// Debug lowers the log level to debug.
	Debug bool `yaml:"debug"`
}

// Load reads the settings from ~/.config/chronodeck.yaml, creating a
// default file on first run.
func Load() (*Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the settings for values the engine cannot run with.
func (s *Settings) Validate() error {
	if s.TickSeconds < 1 || s.TickSeconds > MaxTickSeconds {
		return fmt.Errorf("tick_seconds must be between 1 and %d, got %d", MaxTickSeconds, s.TickSeconds)
	}
	return nil
}

// Save writes the settings atomically: temp file in the same directory,
// then rename.
func (s *Settings) Save() error {
	path, err := settingsPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "chronodeck-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// LogPath returns the log file location under the user cache directory,
// creating the directory if needed. A TUI owns the terminal, so logs go
// to a file instead of stdout.
func LogPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(homeDir, ".cache", "chronodeck")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(dir, "chronodeck.log"), nil
}

func settingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "chronodeck.yaml"), nil
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	defaults := Settings{
		TickSeconds: DefaultTickSeconds,
		DayNight:    true,
	}

	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
