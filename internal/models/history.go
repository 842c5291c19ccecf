package models

import (
	"fmt"
	"time"
)

// HistoryEntry is one immutable point-changing event. StudentName and
// TeamName are point-in-time snapshots, not foreign keys: they survive student
// renames and deletions. StudentID is kept alongside as the stable join key.
// Entries are append-only and the canonical ordering is newest-first.
type HistoryEntry struct {
	ID           string    `db:"id" json:"id"`
	SchoolYearID int64     `db:"school_year_id" json:"-"`
	StudentID    int64     `db:"student_id" json:"student_id"`
	StudentName  string    `db:"student_name" json:"student_name"`
	TeamName     string    `db:"team_name" json:"team_name"`
	Points       int       `db:"points" json:"points"`
	Reason       string    `db:"reason" json:"reason"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
}

// HistoryEntryID derives the entry identifier from the event time and student
// id, which stays unique under rapid successive recordings for distinct
// students within the same millisecond.
func HistoryEntryID(recordedAt time.Time, studentID int64) string {
	return fmt.Sprintf("%d-%d", recordedAt.UnixMilli(), studentID)
}

// HistoryFilter narrows history listings.
type HistoryFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
