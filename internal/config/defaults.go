package config

import (
	"os"
	"path/filepath"

	"dual-subtitle-burner/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		Style1:    domain.DefaultStyle(domain.SlotPrimary),
		Style2:    domain.DefaultStyle(domain.SlotSecondary),
		Preset:    domain.PresetNone,
		OutputDir: filepath.Join(homeDir, "Videos"),
	}
}

// DefaultPath returns the settings file location under the user home.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".dual-subtitle-burner", "settings.json")
}
