// Package scoring holds the pure derivation engine: time-window aggregation,
// ranking and the weekly watchlist. Everything here is computed from already
// loaded teams and history, never from running totals or caches, so results
// stay consistent under recomputation.
package scoring

import (
	"fmt"
	"time"
)

// WindowKind selects how a Window resolves its time span.
type WindowKind string

const (
	WindowAll    WindowKind = "all"
	WindowDay    WindowKind = "day"
	WindowWeek   WindowKind = "week"
	WindowMonth  WindowKind = "month"
	WindowCustom WindowKind = "custom"
)

// Valid reports whether the kind is supported.
func (k WindowKind) Valid() bool {
	switch k {
	case WindowAll, WindowDay, WindowWeek, WindowMonth, WindowCustom:
		return true
	default:
		return false
	}
}

// Window is a bounded or unbounded time range used to filter history.
// Anchor picks the day/week/month for the calendar kinds; From/To are used
// only by WindowCustom.
type Window struct {
	Kind   WindowKind
	Anchor time.Time
	From   time.Time
	To     time.Time
}

// Bounds resolves the window to an inclusive [from, to] span in the anchor's
// location. bounded is false for WindowAll.
func (w Window) Bounds() (from, to time.Time, bounded bool) {
	switch w.Kind {
	case WindowDay:
		from = startOfDay(w.Anchor)
		to = endOfDay(w.Anchor)
		return from, to, true
	case WindowWeek:
		from = startOfWeek(w.Anchor)
		to = endOfDay(from.AddDate(0, 0, 6))
		return from, to, true
	case WindowMonth:
		first := time.Date(w.Anchor.Year(), w.Anchor.Month(), 1, 0, 0, 0, 0, w.Anchor.Location())
		from = first
		to = first.AddDate(0, 1, 0).Add(-time.Millisecond)
		return from, to, true
	case WindowCustom:
		return startOfDay(w.From), endOfDay(w.To), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Contains reports whether the timestamp falls inside the window.
func (w Window) Contains(t time.Time) bool {
	from, to, bounded := w.Bounds()
	if !bounded {
		return true
	}
	return !t.Before(from) && !t.After(to)
}

// WeekID returns the ISO week identifier ("2025-W14") for a timestamp. ISO
// weeks are Thursday-anchored, which keeps year-boundary weeks unambiguous.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%d", year, week)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// startOfWeek returns midnight of the Monday of the anchor's week. A Sunday
// anchor resolves to the Monday six days earlier.
func startOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return startOfDay(t.AddDate(0, 0, -offset))
}
