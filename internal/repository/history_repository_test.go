package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

func newHistoryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func historyRows(ts ...time.Time) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "school_year_id", "student_id", "student_name", "team_name", "points", "reason", "recorded_at"})
	for i, t := range ts {
		rows.AddRow(models.HistoryEntryID(t, int64(i+1)), 1, int64(i+1), "An", "Tổ 1", 5, "Phát biểu", t)
	}
	return rows
}

func TestHistoryRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newHistoryMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	newer := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)
	mock.ExpectQuery("FROM history_entries\nWHERE school_year_id = \\$1 ORDER BY recorded_at DESC, seq DESC").
		WithArgs(int64(1)).
		WillReturnRows(historyRows(newer, older))

	entries, err := repo.ListAll(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].RecordedAt.After(entries[1].RecordedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepositoryListWithRange(t *testing.T) {
	db, mock, cleanup := newHistoryMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 23, 59, 59, 999000000, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM history_entries").
		WithArgs(int64(1), from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery("LIMIT \\$4 OFFSET \\$5").
		WithArgs(int64(1), from, to, 20, 20).
		WillReturnRows(historyRows(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))

	entries, total, err := repo.List(context.Background(), 1, models.HistoryFilter{
		From: &from, To: &to, Page: 2, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 41, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
