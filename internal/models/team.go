package models

import "time"

// Student belongs to exactly one team. Score is the running total maintained
// by the ledger; it may go below zero and is never clamped.
type Student struct {
	ID           int64     `db:"id" json:"id"`
	TeamID       int64     `db:"team_id" json:"team_id"`
	SchoolYearID int64     `db:"school_year_id" json:"-"`
	Name         string    `db:"name" json:"name"`
	Score        int       `db:"score" json:"score"`
	Avatar       string    `db:"avatar" json:"avatar"`
	Position     int       `db:"position" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Team is a fixed sub-group of students ("tổ"). Deleting a team cascades to
// its students. Position preserves insertion order so that ranking ties stay
// stable.
type Team struct {
	ID           int64     `db:"id" json:"id"`
	SchoolYearID int64     `db:"school_year_id" json:"-"`
	Name         string    `db:"name" json:"name"`
	Color        string    `db:"color" json:"color"`
	Position     int       `db:"position" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Students     []Student `db:"-" json:"students"`
}
