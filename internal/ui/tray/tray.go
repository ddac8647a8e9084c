package tray

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"pomotray/internal/core/model"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggleRun    func()
	OnReset        func()
	OnSelectPreset func(index int)
	OnShowTimer    func()
	OnQuit         func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	appName     string
	presets     model.Catalog
	callbacks   Callbacks
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	presetItems []*fyne.MenuItem
	statusLabel string
	running     bool
}

// New creates a tray manager exposing the timer commands.
func New(app desktop.App, appName string, presets model.Catalog, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		appName:   appName,
		presets:   presets,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: starting...", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnToggleRun != nil {
			manager.callbacks.OnToggleRun()
		}
	})

	manager.presetItems = make([]*fyne.MenuItem, len(presets))
	for i, preset := range presets {
		index := i
		manager.presetItems[i] = fyne.NewMenuItem(presetLabel(preset), func() {
			if manager.callbacks.OnSelectPreset != nil {
				manager.callbacks.OnSelectPreset(index)
			}
		})
	}
	if len(manager.presetItems) > 0 {
		manager.presetItems[0].Checked = true
	}

	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetRunning updates the start/pause toggle.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	if running {
		manager.toggleItem.Label = "Pause"
	} else {
		manager.toggleItem.Label = "Start"
	}
	manager.refreshMenu()
}

// SetPreset marks the selected preset in the submenu.
func (manager *Manager) SetPreset(index int) {
	for i, item := range manager.presetItems {
		item.Checked = i == index
	}
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}

	presetMenu := fyne.NewMenuItem("Preset", nil)
	presetMenu.ChildMenu = fyne.NewMenu("", manager.presetItems...)

	manager.app.SetSystemTrayMenu(fyne.NewMenu(manager.appName,
		manager.statusItem,
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShowTimer != nil {
				manager.callbacks.OnShowTimer()
			}
		}),
		manager.toggleItem,
		fyne.NewMenuItem("Reset", func() {
			if manager.callbacks.OnReset != nil {
				manager.callbacks.OnReset()
			}
		}),
		presetMenu,
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}

func presetLabel(preset model.Preset) string {
	return fmt.Sprintf("%s (%d/%d min)", preset.Name,
		int(preset.Focus/time.Minute), int(preset.Break/time.Minute))
}
