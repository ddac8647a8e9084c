package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pomotray/internal/core/engine"
)

const sqliteDriverName = "sqlite"

const sqliteTimeFormat = "2006-01-02 15:04:05"

const schemaHistory = `
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    phase TEXT NOT NULL,
    preset TEXT NOT NULL,
    planned_s INTEGER NOT NULL,
    ended_at TIMESTAMP NOT NULL
);
`

// HistoryEntry records one completed phase.
type HistoryEntry struct {
	ID             string
	Phase          engine.Phase
	Preset         string
	PlannedSeconds int
	EndedAt        time.Time
}

// History persists completed phases to SQLite.
type History struct {
	db *sql.DB
}

// OpenHistory opens/creates the history database and ensures the schema.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite handles a single writer best
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}

	if _, err := db.Exec(schemaHistory); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &History{db: db}, nil
}

// NewHistory wraps an existing database handle. Used in tests.
func NewHistory(db *sql.DB) *History { return &History{db: db} }

// Append inserts a completed phase. Empty ID and zero EndedAt are filled in.
func (h *History) Append(ctx context.Context, entry HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.EndedAt.IsZero() {
		entry.EndedAt = time.Now().UTC()
	} else {
		entry.EndedAt = entry.EndedAt.UTC()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO history (id, phase, preset, planned_s, ended_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		entry.ID,
		string(entry.Phase),
		entry.Preset,
		entry.PlannedSeconds,
		entry.EndedAt.Format(sqliteTimeFormat),
	)
	return err
}

// List returns entries filtered by [from, to] (inclusive) and/or phase,
// ordered by completion time ascending.
func (h *History) List(ctx context.Context, from, to time.Time, phase engine.Phase) ([]HistoryEntry, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "ended_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeFormat))
	}
	if !to.IsZero() {
		conds = append(conds, "ended_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeFormat))
	}
	if phase != "" {
		conds = append(conds, "phase = ?")
		args = append(args, string(phase))
	}

	q := `SELECT id, phase, preset, planned_s, ended_at FROM history`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY ended_at ASC"

	rows, err := h.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0, 16)
	for rows.Next() {
		var (
			entry    HistoryEntry
			phaseRaw string
			endedAt  string
		)
		if err := rows.Scan(&entry.ID, &phaseRaw, &entry.Preset, &entry.PlannedSeconds, &endedAt); err != nil {
			return nil, err
		}
		entry.Phase = engine.Phase(phaseRaw)
		if parsed, err := time.Parse(sqliteTimeFormat, endedAt); err == nil {
			entry.EndedAt = parsed.UTC()
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountSince returns the number of phases completed at or after the cutoff.
func (h *History) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history WHERE ended_at >= ?`,
		cutoff.UTC().Format(sqliteTimeFormat),
	).Scan(&count)
	return count, err
}

// Close releases the database handle.
func (h *History) Close() error { return h.db.Close() }
