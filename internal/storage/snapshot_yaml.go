package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"pomotray/internal/core/engine"
)

const snapshotFileName = "session.yaml"

type yamlSnapshot struct {
	SelectedPresetIndex int    `yaml:"selected_preset_index"`
	Phase               string `yaml:"phase"`
	RemainingSeconds    int    `yaml:"remaining_seconds"`
	Running             bool   `yaml:"running"`
	LastObservedMillis  int64  `yaml:"last_observed_ms"`
}

// SnapshotStore persists the last engine snapshot as a YAML file under the
// user config directory. Saves are coalesced through a single writer
// goroutine: the engine's call never blocks, writes stay ordered, and only
// the most recent snapshot is ever on disk.
type SnapshotStore struct {
	path string

	mu      sync.Mutex
	closed  bool
	pending chan engine.Snapshot
	done    chan struct{}
}

// NewSnapshotStore creates a snapshot store for the given application name.
func NewSnapshotStore(appName string) (*SnapshotStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	dir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return newSnapshotStoreAt(filepath.Join(dir, snapshotFileName)), nil
}

func newSnapshotStoreAt(path string) *SnapshotStore {
	store := &SnapshotStore{
		path:    path,
		pending: make(chan engine.Snapshot, 1),
		done:    make(chan struct{}),
	}
	go store.writeLoop()
	return store
}

// Save queues a snapshot for writing. Never blocks; an unwritten older
// snapshot is replaced by the newer one. Failures are logged, not returned:
// the engine's in-memory state stays authoritative either way.
func (store *SnapshotStore) Save(snapshot engine.Snapshot) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return
	}
	for {
		select {
		case store.pending <- snapshot:
			return
		default:
		}
		select {
		case <-store.pending:
		default:
		}
	}
}

// Load reads the persisted snapshot. A missing or unreadable file is
// reported as absence, never as an error.
func (store *SnapshotStore) Load() (engine.Snapshot, bool) {
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("read session snapshot", "path", store.path, "error", err)
		}
		return engine.Snapshot{}, false
	}

	var fileData yamlSnapshot
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		slog.Warn("parse session snapshot", "path", store.path, "error", err)
		return engine.Snapshot{}, false
	}

	return engine.Snapshot{
		SelectedPreset:     fileData.SelectedPresetIndex,
		Phase:              engine.Phase(fileData.Phase),
		RemainingSeconds:   fileData.RemainingSeconds,
		Running:            fileData.Running,
		LastObservedMillis: fileData.LastObservedMillis,
	}, true
}

// Close flushes any pending snapshot and stops the writer.
func (store *SnapshotStore) Close() {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return
	}
	store.closed = true
	close(store.pending)
	store.mu.Unlock()
	<-store.done
}

func (store *SnapshotStore) writeLoop() {
	for snapshot := range store.pending {
		store.write(snapshot)
	}
	close(store.done)
}

func (store *SnapshotStore) write(snapshot engine.Snapshot) {
	fileData := yamlSnapshot{
		SelectedPresetIndex: snapshot.SelectedPreset,
		Phase:               string(snapshot.Phase),
		RemainingSeconds:    snapshot.RemainingSeconds,
		Running:             snapshot.Running,
		LastObservedMillis:  snapshot.LastObservedMillis,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		slog.Warn("marshal session snapshot", "error", err)
		return
	}
	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		slog.Warn("write session snapshot", "path", store.path, "error", err)
	}
}
