package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"pomotray/internal/core/engine"
	"pomotray/internal/core/model"
	"pomotray/internal/platform"
	"pomotray/internal/storage"
	"pomotray/internal/ui/countdown"
	"pomotray/internal/ui/notify"
	"pomotray/internal/ui/tray"
)

const appName = "pomotray"

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		slog.Error("single instance", "error", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		slog.Warn("load settings, using defaults", "error", err)
	}

	fyneApp := app.NewWithID("io.pomotray.app")
	desktopApp, trayOK := fyneApp.(desktop.App)

	timerWindow := countdown.New(fyneApp, "Pomotray")

	var store engine.Store
	snapshots, err := storage.NewSnapshotStore(appName)
	if err != nil {
		slog.Warn("session persistence unavailable", "error", err)
	} else {
		store = snapshots
	}

	// The notification channel is picked here, not inside the engine: desktop
	// hosts get system notifications, everything else an in-app dialog.
	var notifier engine.Notifier
	if trayOK {
		notifier = notify.NewSystem(fyneApp)
	} else {
		notifier = notify.NewDialog(timerWindow.Window())
	}

	eng, err := engine.New(settings.Presets, engine.RealClock{}, store, notifier, engine.Config{
		TickInterval: settings.TickInterval,
	})
	if err != nil {
		slog.Error("engine init", "error", err)
		return
	}

	history := openHistory()

	var trayManager *tray.Manager
	if trayOK {
		trayManager = tray.New(desktopApp, "Pomotray", settings.Presets, tray.Callbacks{
			OnToggleRun: func() {
				if eng.Running() {
					eng.Pause()
				} else {
					eng.Start()
				}
			},
			OnReset: func() {
				eng.Reset()
			},
			OnSelectPreset: func(index int) {
				if err := eng.ChangePreset(index); err != nil {
					slog.Warn("change preset", "index", index, "error", err)
				}
			},
			OnShowTimer: func() {
				timerWindow.Show()
			},
			OnQuit: func() {
				eng.Stop()
				if snapshots != nil {
					snapshots.Close()
				}
				if history != nil {
					_ = history.Close()
				}
				fyneApp.Quit()
			},
		})
		trayManager.SetPreset(eng.SelectedPresetIndex())
		trayManager.SetRunning(eng.Running())
	}

	events := eng.Subscribe(8)
	go func() {
		for event := range events {
			switch event.Type {
			case engine.EventStateChange, engine.EventProgress:
				timerWindow.Update(event.Phase, event.Remaining, event.Progress, event.Running)
				if trayManager != nil {
					updateTray(trayManager, event)
				}
			case engine.EventPhaseComplete:
				if history != nil {
					recordCompletion(history, eng.Catalog()[event.Preset], event)
				}
			}
		}
	}()

	timerWindow.Update(eng.Phase(), eng.Remaining(), 0, eng.Running())
	timerWindow.Show()
	fyneApp.Run()
}

func openHistory() *storage.History {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Warn("session history unavailable", "error", err)
		return nil
	}
	history, err := storage.OpenHistory(filepath.Join(configDir, appName, "history.db"))
	if err != nil {
		slog.Warn("session history unavailable", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if count, err := history.CountSince(ctx, midnight); err == nil {
		slog.Info("session history", "completed_today", count)
	}
	return history
}

func updateTray(trayManager *tray.Manager, event engine.Event) {
	status := string(event.Phase) + " " + countdown.FormatRemaining(event.Remaining)
	if !event.Running {
		status += " (paused)"
	}
	fyne.Do(func() {
		trayManager.SetRunning(event.Running)
		trayManager.SetPreset(event.Preset)
		trayManager.SetStatus(status)
	})
}

func recordCompletion(history *storage.History, preset model.Preset, event engine.Event) {
	planned := preset.Focus
	if event.Phase == engine.PhaseBreak {
		planned = preset.Break
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := history.Append(ctx, storage.HistoryEntry{
		Phase:          event.Phase,
		Preset:         preset.Name,
		PlannedSeconds: int(planned / time.Second),
		EndedAt:        event.At,
	})
	if err != nil {
		slog.Warn("record completed phase", "error", err)
	}
}
