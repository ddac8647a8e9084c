package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotray/internal/core/engine"
)

func tempSnapshotStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store := newSnapshotStoreAt(filepath.Join(t.TempDir(), snapshotFileName))
	t.Cleanup(store.Close)
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := tempSnapshotStore(t)

	want := engine.Snapshot{
		SelectedPreset:     1,
		Phase:              engine.PhaseBreak,
		RemainingSeconds:   42,
		Running:            true,
		LastObservedMillis: 1756371600000,
	}
	store.Save(want)
	store.Close() // flushes the pending write

	got, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	store := tempSnapshotStore(t)

	_, ok := store.Load()
	assert.False(t, ok)
}

func TestLoadMalformedFile(t *testing.T) {
	store := tempSnapshotStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not yaml:::"), 0o644))

	_, ok := store.Load()
	assert.False(t, ok, "a corrupt snapshot reads as absent, not as an error")
}

func TestSaveCoalescesToLatest(t *testing.T) {
	store := tempSnapshotStore(t)

	// A burst of saves must never block the caller; only the newest
	// snapshot has to survive.
	var last engine.Snapshot
	for i := 0; i < 100; i++ {
		last = engine.Snapshot{RemainingSeconds: i, Phase: engine.PhaseFocus}
		store.Save(last)
	}
	store.Close()

	got, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, last.RemainingSeconds, got.RemainingSeconds)
}

func TestSaveAfterCloseIsIgnored(t *testing.T) {
	store := tempSnapshotStore(t)
	store.Close()

	assert.NotPanics(t, func() {
		store.Save(engine.Snapshot{RemainingSeconds: 5})
	})
	store.Close() // idempotent
}
