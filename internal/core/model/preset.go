package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyCatalog indicates a preset catalog with no entries.
var ErrEmptyCatalog = errors.New("preset catalog is empty")

// Preset pairs a focus duration with a break duration.
type Preset struct {
	Name  string
	Focus time.Duration
	Break time.Duration
}

// Catalog is the fixed, ordered set of presets selectable at runtime.
type Catalog []Preset

// DefaultCatalog returns the built-in presets used when no settings file exists.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "Classic", Focus: 25 * time.Minute, Break: 5 * time.Minute},
		{Name: "Deep", Focus: 50 * time.Minute, Break: 10 * time.Minute},
		{Name: "Quick", Focus: 15 * time.Minute, Break: 3 * time.Minute},
	}
}

// Validate reports whether the catalog is usable: non-empty, with strictly
// positive whole-second durations on every entry.
func (catalog Catalog) Validate() error {
	if len(catalog) == 0 {
		return ErrEmptyCatalog
	}
	for i, preset := range catalog {
		if preset.Focus < time.Second || preset.Break < time.Second {
			return fmt.Errorf("preset %d (%q): durations must be at least one second", i, preset.Name)
		}
		if preset.Focus%time.Second != 0 || preset.Break%time.Second != 0 {
			return fmt.Errorf("preset %d (%q): durations must be whole seconds", i, preset.Name)
		}
	}
	return nil
}

// Contains reports whether index is a valid catalog position.
func (catalog Catalog) Contains(index int) bool {
	return index >= 0 && index < len(catalog)
}
