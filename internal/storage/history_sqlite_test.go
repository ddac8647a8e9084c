package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomotray/internal/core/engine"
)

func historyCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestHistoryAppendFillsDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	history := NewHistory(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO history (id, phase, preset, planned_s, ended_at)
		VALUES (?, ?, ?, ?, ?)
	`)).
		WithArgs(sqlmock.AnyArg(), "focus", "Classic", 1500, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = history.Append(historyCtx(t), HistoryEntry{
		// ID empty: generated. EndedAt zero: set to UTC now.
		Phase:          engine.PhaseFocus,
		Preset:         "Classic",
		PlannedSeconds: 1500,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryAppendKeepsExplicitFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	history := NewHistory(db)
	endedAt := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO history`)).
		WithArgs("abc-123", "break", "Deep", 600, endedAt.Format(sqliteTimeFormat)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = history.Append(historyCtx(t), HistoryEntry{
		ID:             "abc-123",
		Phase:          engine.PhaseBreak,
		Preset:         "Deep",
		PlannedSeconds: 600,
		EndedAt:        endedAt,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryListFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	history := NewHistory(db)
	from := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "phase", "preset", "planned_s", "ended_at"}).
		AddRow("id-1", "focus", "Classic", 1500, "2026-08-28 09:25:00").
		AddRow("id-2", "break", "Classic", 300, "2026-08-28 09:30:00")

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, phase, preset, planned_s, ended_at FROM history WHERE ended_at >= ? ORDER BY ended_at ASC`,
	)).
		WithArgs(from.Format(sqliteTimeFormat)).
		WillReturnRows(rows)

	entries, err := history.List(historyCtx(t), from, time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, engine.PhaseFocus, entries[0].Phase)
	assert.Equal(t, 1500, entries[0].PlannedSeconds)
	assert.Equal(t, time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC), entries[1].EndedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryListByPhase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	history := NewHistory(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, phase, preset, planned_s, ended_at FROM history WHERE phase = ? ORDER BY ended_at ASC`,
	)).
		WithArgs("break").
		WillReturnRows(sqlmock.NewRows([]string{"id", "phase", "preset", "planned_s", "ended_at"}))

	entries, err := history.List(historyCtx(t), time.Time{}, time.Time{}, engine.PhaseBreak)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryCountSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	history := NewHistory(db)
	cutoff := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM history WHERE ended_at >= ?`)).
		WithArgs(cutoff.Format(sqliteTimeFormat)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := history.CountSince(historyCtx(t), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
