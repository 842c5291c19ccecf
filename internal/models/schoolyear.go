package models

import "time"

// SchoolYear is one competition season. Every other collection (teams,
// history, behaviors, attendance, avatars) is partitioned by school year, and
// exactly one year is active at a time.
type SchoolYear struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SchoolYearRegistry is the stored list of years plus the active selection.
type SchoolYearRegistry struct {
	SchoolYears  []SchoolYear `json:"school_years"`
	ActiveYearID int64        `json:"active_school_year_id"`
}
