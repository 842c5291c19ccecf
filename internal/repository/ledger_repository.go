package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// PointAdjustment is one signed score change for one student.
type PointAdjustment struct {
	StudentID int64
	Points    int
	Reason    string
}

// LedgerRepository performs the atomic score-plus-history mutations. Every
// method keeps the score column and the history log consistent inside one
// transaction.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs a new repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ApplyPoints adjusts one student's score and appends the matching history
// entry. Returns the updated student and the entry that was written.
func (r *LedgerRepository) ApplyPoints(ctx context.Context, schoolYearID int64, adj PointAdjustment, recordedAt time.Time) (*models.Student, *models.HistoryEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin apply points: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	student, entry, err := applyOne(ctx, tx, schoolYearID, adj, recordedAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit apply points: %w", err)
	}
	commit = true
	return student, entry, nil
}

// ApplyBatch adjusts several students in one transaction and appends one
// history entry each, all stamped with the same recordedAt. Entries are
// inserted in batch order, which the newest-first history ordering shows
// in reverse.
func (r *LedgerRepository) ApplyBatch(ctx context.Context, schoolYearID int64, adjs []PointAdjustment, recordedAt time.Time) ([]models.Student, []models.HistoryEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin apply batch: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	students := make([]models.Student, 0, len(adjs))
	entries := make([]models.HistoryEntry, 0, len(adjs))
	for _, adj := range adjs {
		student, entry, err := applyOne(ctx, tx, schoolYearID, adj, recordedAt)
		if err != nil {
			return nil, nil, err
		}
		students = append(students, *student)
		entries = append(entries, *entry)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit apply batch: %w", err)
	}
	commit = true
	return students, entries, nil
}

// ResetYear zeroes every score in the school year and clears its history,
// atomically. Returns how many students and entries were affected.
func (r *LedgerRepository) ResetYear(ctx context.Context, schoolYearID int64) (studentsReset, entriesCleared int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin reset: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE students SET score = 0 WHERE school_year_id = $1`, schoolYearID)
	if err != nil {
		return 0, 0, fmt.Errorf("reset scores: %w", err)
	}
	studentsReset, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM history_entries WHERE school_year_id = $1`, schoolYearID)
	if err != nil {
		return 0, 0, fmt.Errorf("clear history: %w", err)
	}
	entriesCleared, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit reset: %w", err)
	}
	commit = true
	return studentsReset, entriesCleared, nil
}

// applyOne runs the score update and history insert for a single adjustment
// inside an open transaction. The student row is locked so the name snapshot
// and the new score come from the same state.
func applyOne(ctx context.Context, tx *sqlx.Tx, schoolYearID int64, adj PointAdjustment, recordedAt time.Time) (*models.Student, *models.HistoryEntry, error) {
	var student models.Student
	updateQuery := `UPDATE students SET score = score + $1
WHERE school_year_id = $2 AND id = $3
RETURNING id, team_id, school_year_id, name, score, avatar, position, created_at`
	if err := tx.QueryRowxContext(ctx, updateQuery, adj.Points, schoolYearID, adj.StudentID).
		StructScan(&student); err != nil {
		return nil, nil, fmt.Errorf("adjust score of student %d: %w", adj.StudentID, err)
	}

	var teamName string
	if err := tx.GetContext(ctx, &teamName, `SELECT name FROM teams WHERE id = $1`, student.TeamID); err != nil {
		return nil, nil, fmt.Errorf("resolve team of student %d: %w", adj.StudentID, err)
	}

	entry := models.HistoryEntry{
		ID:           models.HistoryEntryID(recordedAt, student.ID),
		SchoolYearID: schoolYearID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		TeamName:     teamName,
		Points:       adj.Points,
		Reason:       adj.Reason,
		RecordedAt:   recordedAt,
	}
	insertQuery := `INSERT INTO history_entries
	(id, school_year_id, student_id, student_name, team_name, points, reason, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, insertQuery,
		entry.ID, entry.SchoolYearID, entry.StudentID, entry.StudentName,
		entry.TeamName, entry.Points, entry.Reason, entry.RecordedAt); err != nil {
		return nil, nil, fmt.Errorf("record history for student %d: %w", adj.StudentID, err)
	}
	return &student, &entry, nil
}
