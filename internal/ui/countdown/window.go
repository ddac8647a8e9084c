package countdown

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pomotray/internal/core/engine"
)

// Window renders the active countdown: phase title, remaining digits and a
// progress bar. It holds no timing logic of its own.
type Window struct {
	window     fyne.Window
	phaseLabel *widget.Label
	timeLabel  *widget.Label
	progress   *widget.ProgressBar
}

// New creates the countdown window. Closing it hides it; the application
// keeps running in the tray.
func New(app fyne.App, title string) *Window {
	w := &Window{
		phaseLabel: widget.NewLabelWithStyle("Focus", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		timeLabel:  widget.NewLabelWithStyle("00:00", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true}),
		progress:   widget.NewProgressBar(),
	}

	w.window = app.NewWindow(title)
	w.window.SetContent(container.NewVBox(w.phaseLabel, w.timeLabel, w.progress))
	w.window.Resize(fyne.NewSize(260, 140))
	w.window.SetCloseIntercept(func() {
		w.window.Hide()
	})
	return w
}

// Show raises the window.
func (w *Window) Show() {
	w.window.Show()
}

// Window exposes the underlying fyne window for dialog placement.
func (w *Window) Window() fyne.Window {
	return w.window
}

// Update refreshes the rendered state. Safe to call from any goroutine.
func (w *Window) Update(phase engine.Phase, remaining time.Duration, progress float64, running bool) {
	title := phaseTitle(phase)
	if !running {
		title += " (paused)"
	}
	digits := FormatRemaining(remaining)

	fyne.Do(func() {
		w.phaseLabel.SetText(title)
		w.timeLabel.SetText(digits)
		w.progress.SetValue(progress)
	})
}

// FormatRemaining renders a duration as mm:ss, clamped at zero.
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func phaseTitle(phase engine.Phase) string {
	if phase == engine.PhaseBreak {
		return "Break"
	}
	return "Focus"
}
