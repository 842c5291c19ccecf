package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// AttendanceRepository stores roll-call results per date. A save replaces the
// whole date wholesale; per-cell edits do not exist.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs a new repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByDate returns the stored cells for one date. An empty result means the
// date was never taken; callers default every student to present.
func (r *AttendanceRepository) ListByDate(ctx context.Context, schoolYearID int64, dateKey time.Time) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	query := `SELECT school_year_id, date_key, student_id, status
FROM attendance_records WHERE school_year_id = $1 AND date_key = $2 ORDER BY student_id`
	if err := r.db.SelectContext(ctx, &records, query, schoolYearID, dateKey); err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", dateKey.Format("2006-01-02"), err)
	}
	return records, nil
}

// ReplaceDay swaps the entire stored state of one date for the given records,
// atomically. Passing no records clears the date.
func (r *AttendanceRepository) ReplaceDay(ctx context.Context, schoolYearID int64, dateKey time.Time, records []models.AttendanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance replace: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE school_year_id = $1 AND date_key = $2`,
		schoolYearID, dateKey); err != nil {
		return fmt.Errorf("clear attendance date: %w", err)
	}

	insertQuery := `INSERT INTO attendance_records (school_year_id, date_key, student_id, status)
VALUES ($1, $2, $3, $4)`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, insertQuery, schoolYearID, dateKey, rec.StudentID, rec.Status); err != nil {
			return fmt.Errorf("save attendance of student %d: %w", rec.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance replace: %w", err)
	}
	commit = true
	return nil
}
