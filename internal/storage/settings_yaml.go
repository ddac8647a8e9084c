package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pomotray/internal/core/model"
)

const settingsFileName = "settings.yaml"

// Settings holds the startup configuration: the preset catalog and the
// scheduler tick interval.
type Settings struct {
	Presets      model.Catalog
	TickInterval time.Duration
}

type yamlSettings struct {
	TickSeconds int          `yaml:"tick_seconds"`
	Presets     []yamlPreset `yaml:"presets"`
}

type yamlPreset struct {
	Name         string `yaml:"name"`
	FocusSeconds int    `yaml:"focus_seconds"`
	BreakSeconds int    `yaml:"break_seconds"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Presets:      model.DefaultCatalog(),
		TickInterval: time.Second,
	}
}

// LoadSettings reads configuration from YAML. If the file does not exist,
// defaults are returned. Invalid presets are skipped individually; an empty
// result falls back to the default catalog.
func LoadSettings(appName string) (Settings, error) {
	settings := DefaultSettings()
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes configuration to YAML.
func SaveSettings(appName string, settings Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		TickSeconds: int(settings.TickInterval / time.Second),
		Presets:     make([]yamlPreset, 0, len(settings.Presets)),
	}
	for _, preset := range settings.Presets {
		fileData.Presets = append(fileData.Presets, yamlPreset{
			Name:         preset.Name,
			FocusSeconds: int(preset.Focus / time.Second),
			BreakSeconds: int(preset.Break / time.Second),
		})
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	if fileData.TickSeconds > 0 {
		settings.TickInterval = time.Duration(fileData.TickSeconds) * time.Second
	}

	catalog := make(model.Catalog, 0, len(fileData.Presets))
	for _, preset := range fileData.Presets {
		if preset.FocusSeconds <= 0 || preset.BreakSeconds <= 0 {
			continue
		}
		catalog = append(catalog, model.Preset{
			Name:  preset.Name,
			Focus: time.Duration(preset.FocusSeconds) * time.Second,
			Break: time.Duration(preset.BreakSeconds) * time.Second,
		})
	}
	if len(catalog) > 0 {
		settings.Presets = catalog
	}
}
