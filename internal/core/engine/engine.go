package engine

import (
	"errors"
	"sync"
	"time"

	"pomotray/internal/core/model"
)

// ErrInvalidPresetIndex indicates a preset selection outside the catalog.
var ErrInvalidPresetIndex = errors.New("preset index out of range")

// Config contains runtime options for the Engine.
type Config struct {
	TickInterval time.Duration
}

// Engine is the state machine that alternates focus and break countdowns.
// It owns its state exclusively; all operations are mutually exclusive and
// atomic with respect to each other.
type Engine struct {
	mu      sync.Mutex
	catalog model.Catalog
	options Config
	clock   Clock
	store   Store
	notify  Notifier

	presetIndex  int
	phase        Phase
	remaining    time.Duration
	running      bool
	lastObserved time.Time

	events []chan Event
	stopCh chan struct{}
	closed bool
}

// New creates an Engine over the given catalog. One prior snapshot is
// consumed from store, if present and usable, to resume mid-session;
// otherwise the engine starts paused at the full focus duration of the
// first preset. A restored running session resumes ticking immediately.
func New(catalog model.Catalog, clock Clock, store Store, notify Notifier, options Config) (*Engine, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if clock == nil {
		clock = RealClock{}
	}

	eng := &Engine{
		catalog: catalog,
		options: options,
		clock:   clock,
		store:   store,
		notify:  notify,
		phase:   PhaseFocus,
	}
	eng.remaining = catalog[0].Focus

	if store != nil {
		if snapshot, ok := store.Load(); ok && snapshot.usable(len(catalog)) {
			eng.restoreLocked(snapshot, clock.Now())
		}
	}
	if eng.running {
		eng.scheduleLocked()
	}
	return eng, nil
}

// Subscribe registers a new observer channel. Sends never block; a slow
// observer drops events rather than stalling the tick path.
func (eng *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	eng.mu.Lock()
	eng.events = append(eng.events, ch)
	eng.mu.Unlock()
	return ch
}

// Start begins or resumes the countdown. No-op if already running.
func (eng *Engine) Start() {
	eng.mu.Lock()
	if eng.running || eng.closed {
		eng.mu.Unlock()
		return
	}
	eng.running = true
	eng.lastObserved = eng.clock.Now()
	eng.scheduleLocked()
	eng.persistLocked()
	eng.emitStateLocked(eng.lastObserved)
	eng.mu.Unlock()
}

// Pause freezes the countdown at its current value. No-op if already paused.
func (eng *Engine) Pause() {
	eng.mu.Lock()
	if !eng.running {
		eng.mu.Unlock()
		return
	}
	eng.running = false
	eng.cancelLocked()
	eng.persistLocked()
	eng.emitStateLocked(eng.clock.Now())
	eng.mu.Unlock()
}

// Reset stops the countdown and returns the active phase to its full
// duration. The phase itself is preserved.
func (eng *Engine) Reset() {
	eng.mu.Lock()
	eng.running = false
	eng.cancelLocked()
	eng.remaining = eng.phaseDurationLocked(eng.phase)
	eng.persistLocked()
	eng.emitStateLocked(eng.clock.Now())
	eng.mu.Unlock()
}

// ChangePreset selects a different preset. Any in-progress countdown stops
// and the current phase restarts at the new preset's duration for it.
func (eng *Engine) ChangePreset(index int) error {
	eng.mu.Lock()
	if !eng.catalog.Contains(index) {
		eng.mu.Unlock()
		return ErrInvalidPresetIndex
	}
	eng.presetIndex = index
	eng.running = false
	eng.cancelLocked()
	eng.remaining = eng.phaseDurationLocked(eng.phase)
	eng.persistLocked()
	eng.emitStateLocked(eng.clock.Now())
	eng.mu.Unlock()
	return nil
}

// Stop terminates the ticking loop and closes observer channels.
func (eng *Engine) Stop() {
	eng.mu.Lock()
	if eng.closed {
		eng.mu.Unlock()
		return
	}
	eng.closed = true
	eng.cancelLocked()
	events := eng.events
	eng.events = nil
	eng.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Tick advances the countdown by the whole seconds of wall-clock time that
// elapsed since the last observed instant. Counting wall-clock deltas rather
// than ticks keeps the countdown accurate when the host was suspended or
// ticks were delayed. A tick while paused, or before a full second has
// elapsed, is a no-op; in the latter case the observed instant is left
// untouched so fractional progress is not lost.
func (eng *Engine) Tick() {
	eng.mu.Lock()
	if !eng.running {
		eng.mu.Unlock()
		return
	}

	now := eng.clock.Now()
	elapsed := wholeSeconds(now.Sub(eng.lastObserved))
	if elapsed <= 0 {
		eng.mu.Unlock()
		return
	}

	remaining := eng.remaining - elapsed
	if remaining > 0 {
		eng.remaining = remaining
		eng.lastObserved = now
		eng.persistLocked()
		eng.emitLocked(Event{
			Type:      EventProgress,
			Phase:     eng.phase,
			Remaining: eng.remaining,
			Progress:  eng.progressLocked(),
			Preset:    eng.presetIndex,
			Running:   true,
			At:        now,
		})
		eng.mu.Unlock()
		return
	}

	// Phase boundary. Overshoot beyond zero is discarded rather than
	// carried into the next phase, so a session left running long past
	// completion does not shrink what follows. The countdown keeps
	// running: the next phase starts immediately.
	ended := eng.phase
	eng.phase = eng.phase.Opposite()
	eng.remaining = eng.phaseDurationLocked(eng.phase)
	eng.lastObserved = now
	eng.persistLocked()
	eng.emitLocked(Event{
		Type:    EventPhaseComplete,
		Phase:   ended,
		Preset:  eng.presetIndex,
		Running: true,
		At:      now,
	})
	eng.emitStateLocked(now)
	notify := eng.notify
	eng.mu.Unlock()

	if notify != nil {
		notify.PhaseCompleted(ended)
	}
}

// Phase returns the active phase.
func (eng *Engine) Phase() Phase {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.phase
}

// Remaining returns the time left in the active phase.
func (eng *Engine) Remaining() time.Duration {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.remaining
}

// SelectedPresetIndex returns the catalog position of the active preset.
func (eng *Engine) SelectedPresetIndex() int {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.presetIndex
}

// CurrentPreset returns the active preset.
func (eng *Engine) CurrentPreset() model.Preset {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.catalog[eng.presetIndex]
}

// Running reports whether the countdown is live.
func (eng *Engine) Running() bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.running
}

// Catalog returns the preset catalog.
func (eng *Engine) Catalog() model.Catalog {
	return eng.catalog
}

// scheduleLocked launches the periodic tick goroutine if none is active.
func (eng *Engine) scheduleLocked() {
	if eng.stopCh != nil || eng.closed {
		return
	}
	stop := make(chan struct{})
	eng.stopCh = stop

	go func() {
		ticker := time.NewTicker(eng.options.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				eng.Tick()
			}
		}
	}()
}

// cancelLocked stops the periodic tick goroutine. Safe to invoke when no
// timer is active.
func (eng *Engine) cancelLocked() {
	if eng.stopCh == nil {
		return
	}
	close(eng.stopCh)
	eng.stopCh = nil
}

func (eng *Engine) phaseDurationLocked(phase Phase) time.Duration {
	preset := eng.catalog[eng.presetIndex]
	if phase == PhaseBreak {
		return preset.Break
	}
	return preset.Focus
}

func (eng *Engine) progressLocked() float64 {
	total := eng.phaseDurationLocked(eng.phase)
	if total <= 0 {
		return 1
	}
	progress := float64(total-eng.remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (eng *Engine) persistLocked() {
	if eng.store != nil {
		eng.store.Save(eng.snapshotLocked())
	}
}

func (eng *Engine) emitStateLocked(at time.Time) {
	eng.emitLocked(Event{
		Type:      EventStateChange,
		Phase:     eng.phase,
		Remaining: eng.remaining,
		Progress:  eng.progressLocked(),
		Preset:    eng.presetIndex,
		Running:   eng.running,
		At:        at,
	})
}

func (eng *Engine) emitLocked(event Event) {
	for _, ch := range eng.events {
		select {
		case ch <- event:
		default:
		}
	}
}

// wholeSeconds truncates a delta to full seconds. Negative deltas (a clock
// stepped backwards) truncate toward zero and end up ignored by callers.
func wholeSeconds(delta time.Duration) time.Duration {
	return delta / time.Second * time.Second
}
