package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// HistoryRepository reads the append-only point log. Writes go through
// LedgerRepository so score and history never drift apart.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs a new repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const historyColumns = `id, school_year_id, student_id, student_name, team_name, points, reason, recorded_at`

// ListAll returns the full log of a school year, newest first. The scoring
// engine aggregates over this slice.
func (r *HistoryRepository) ListAll(ctx context.Context, schoolYearID int64) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	query := `SELECT ` + historyColumns + ` FROM history_entries
WHERE school_year_id = $1 ORDER BY recorded_at DESC, seq DESC`
	if err := r.db.SelectContext(ctx, &entries, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// List returns one page of the log, newest first, optionally bounded to a
// time range. Both bounds are inclusive.
func (r *HistoryRepository) List(ctx context.Context, schoolYearID int64, filter models.HistoryFilter) ([]models.HistoryEntry, int, error) {
	where := `WHERE school_year_id = $1`
	args := []interface{}{schoolYearID}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(` AND recorded_at >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(` AND recorded_at <= $%d`, len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM history_entries `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, filter.PageSize, offset)
	query := fmt.Sprintf(`SELECT `+historyColumns+` FROM history_entries %s
ORDER BY recorded_at DESC, seq DESC LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var entries []models.HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list history page: %w", err)
	}
	return entries, total, nil
}
