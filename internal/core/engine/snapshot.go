package engine

import "time"

// Snapshot is the serializable projection of engine state. LastObservedMillis
// is an absolute wall-clock instant (epoch milliseconds), not a duration, so
// that restore can measure real elapsed suspension time.
type Snapshot struct {
	SelectedPreset     int
	Phase              Phase
	RemainingSeconds   int
	Running            bool
	LastObservedMillis int64
}

// Store persists the most recent snapshot. Save must never surface failures
// to the engine and must not block; Load is consulted once, at construction.
type Store interface {
	Save(Snapshot)
	Load() (Snapshot, bool)
}

// Snapshot captures the current engine state.
func (eng *Engine) Snapshot() Snapshot {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.snapshotLocked()
}

func (eng *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		SelectedPreset:     eng.presetIndex,
		Phase:              eng.phase,
		RemainingSeconds:   int(eng.remaining / time.Second),
		Running:            eng.running,
		LastObservedMillis: eng.lastObserved.UnixMilli(),
	}
}

// usable reports whether a loaded snapshot can seed engine state. A snapshot
// that fails this check is treated as absent, never as a startup error.
func (snapshot Snapshot) usable(catalogSize int) bool {
	if snapshot.SelectedPreset < 0 || snapshot.SelectedPreset >= catalogSize {
		return false
	}
	if !snapshot.Phase.valid() {
		return false
	}
	return snapshot.RemainingSeconds >= 0
}

// restoreLocked seeds engine state from a snapshot. When the snapshot was
// running, the gap since its last observed instant is applied as one large
// drift-correction step, clamped at zero. The phase transition itself is NOT
// fired here: its completion signal is user-facing and must not re-fire on
// every restart, so an expired session is left at zero, still running, and
// the next live tick performs the transition.
func (eng *Engine) restoreLocked(snapshot Snapshot, now time.Time) {
	eng.presetIndex = snapshot.SelectedPreset
	eng.phase = snapshot.Phase
	eng.remaining = time.Duration(snapshot.RemainingSeconds) * time.Second
	eng.running = snapshot.Running
	eng.lastObserved = time.UnixMilli(snapshot.LastObservedMillis)

	if !eng.running {
		return
	}
	if elapsed := wholeSeconds(now.Sub(eng.lastObserved)); elapsed > 0 {
		eng.remaining -= elapsed
		if eng.remaining < 0 {
			eng.remaining = 0
		}
		eng.lastObserved = now
	}
}
