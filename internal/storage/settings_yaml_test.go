package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pomotray/internal/core/model"
)

func TestApplyYamlSettings(t *testing.T) {
	settings := DefaultSettings()
	applyYamlSettings(&settings, yamlSettings{
		TickSeconds: 2,
		Presets: []yamlPreset{
			{Name: "Sprint", FocusSeconds: 600, BreakSeconds: 120},
			{Name: "broken", FocusSeconds: 0, BreakSeconds: 60},
			{Name: "Marathon", FocusSeconds: 3600, BreakSeconds: 600},
		},
	})

	assert.Equal(t, 2*time.Second, settings.TickInterval)
	assert.Equal(t, model.Catalog{
		{Name: "Sprint", Focus: 10 * time.Minute, Break: 2 * time.Minute},
		{Name: "Marathon", Focus: time.Hour, Break: 10 * time.Minute},
	}, settings.Presets, "invalid presets are skipped individually")
}

func TestApplyYamlSettingsAllInvalidKeepsDefaults(t *testing.T) {
	settings := DefaultSettings()
	applyYamlSettings(&settings, yamlSettings{
		TickSeconds: -1,
		Presets:     []yamlPreset{{Name: "bad", FocusSeconds: -5, BreakSeconds: 0}},
	})

	assert.Equal(t, time.Second, settings.TickInterval)
	assert.Equal(t, model.DefaultCatalog(), settings.Presets)
}

func TestApplyYamlSettingsEmptyFile(t *testing.T) {
	settings := DefaultSettings()
	applyYamlSettings(&settings, yamlSettings{})

	assert.Equal(t, DefaultSettings(), settings)
}
