package models

import "time"

// AttendanceStatus is the per-student roll-call result for one date.
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceExcused   AttendanceStatus = "excused"
	AttendanceUnexcused AttendanceStatus = "unexcused"
)

// Valid reports whether the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceExcused, AttendanceUnexcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one stored (date, student) → status cell.
type AttendanceRecord struct {
	SchoolYearID int64            `db:"school_year_id" json:"-"`
	DateKey      time.Time        `db:"date_key" json:"date_key"`
	StudentID    int64            `db:"student_id" json:"student_id"`
	Status       AttendanceStatus `db:"status" json:"status"`
}

// AttendanceSummary tallies one date against total enrollment.
type AttendanceSummary struct {
	Total     int `json:"total"`
	Present   int `json:"present"`
	Excused   int `json:"excused"`
	Unexcused int `json:"unexcused"`
}

// AttendanceSheet is the read model for one date: every enrolled student with
// a status (defaulting to present when nothing was saved) plus the tally.
type AttendanceSheet struct {
	DateKey  string                     `json:"date_key"`
	Statuses map[int64]AttendanceStatus `json:"statuses"`
	Summary  AttendanceSummary          `json:"summary"`
}
