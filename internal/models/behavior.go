package models

import "time"

// BehaviorCategory splits templates into praise and deduction lists. The two
// lists are structurally identical; only the sign convention differs.
type BehaviorCategory string

const (
	BehaviorPositive BehaviorCategory = "positive"
	BehaviorNegative BehaviorCategory = "negative"
)

// Valid reports whether the category is supported.
func (c BehaviorCategory) Valid() bool {
	return c == BehaviorPositive || c == BehaviorNegative
}

// Behavior is a reusable template: selecting one records a HistoryEntry, it
// never mutates the template itself. Positive templates store positive
// points, negative templates store negative points.
type Behavior struct {
	ID           int64            `db:"id" json:"id"`
	SchoolYearID int64            `db:"school_year_id" json:"-"`
	Category     BehaviorCategory `db:"category" json:"category"`
	Description  string           `db:"description" json:"description"`
	Points       int              `db:"points" json:"points"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}
