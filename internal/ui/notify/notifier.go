package notify

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"pomotray/internal/core/engine"
)

// System delivers completion alerts through the desktop notification service.
type System struct {
	app fyne.App
}

// NewSystem creates a notifier backed by desktop notifications.
func NewSystem(app fyne.App) *System {
	return &System{app: app}
}

// PhaseCompleted implements engine.Notifier.
func (notifier *System) PhaseCompleted(ended engine.Phase) {
	title, body := message(ended)
	notifier.app.SendNotification(fyne.NewNotification(title, body))
}

// Dialog shows completion alerts inside the application window. Fallback for
// hosts without a notification service.
type Dialog struct {
	window fyne.Window
}

// NewDialog creates a notifier that presents an in-app dialog.
func NewDialog(window fyne.Window) *Dialog {
	return &Dialog{window: window}
}

// PhaseCompleted implements engine.Notifier. The dialog is raised on the UI
// thread so the caller is never blocked.
func (notifier *Dialog) PhaseCompleted(ended engine.Phase) {
	title, body := message(ended)
	fyne.Do(func() {
		notifier.window.Show()
		dialog.ShowInformation(title, body, notifier.window)
	})
}

func message(ended engine.Phase) (title, body string) {
	if ended == engine.PhaseFocus {
		return "Focus complete", "Time for a break."
	}
	return "Break over", "Back to focus."
}
