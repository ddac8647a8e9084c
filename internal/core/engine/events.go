package engine

import "time"

// Phase identifies which half of a session cycle is counting down.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Opposite returns the other phase.
func (phase Phase) Opposite() Phase {
	if phase == PhaseFocus {
		return PhaseBreak
	}
	return PhaseFocus
}

func (phase Phase) valid() bool {
	return phase == PhaseFocus || phase == PhaseBreak
}

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange   EventType = "state_change"
	EventProgress      EventType = "progress"
	EventPhaseComplete EventType = "phase_complete"
)

// Event represents an engine update for observers.
type Event struct {
	Type      EventType
	Phase     Phase
	Remaining time.Duration
	Progress  float64
	Preset    int
	Running   bool
	At        time.Time
}

// Notifier receives the completion signal fired at each phase boundary.
// Implementations must not block; delivery outcome is invisible to the engine.
type Notifier interface {
	PhaseCompleted(ended Phase)
}
