package models

import "time"

// CustomAvatar is an uploaded image payload (base64 data) teachers can assign
// to students in place of the default initial-letter avatar.
type CustomAvatar struct {
	ID           int64     `db:"id" json:"id"`
	SchoolYearID int64     `db:"school_year_id" json:"-"`
	Data         string    `db:"data" json:"data"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
