package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowDayBounds(t *testing.T) {
	anchor := time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
	from, to, bounded := Window{Kind: WindowDay, Anchor: anchor}.Bounds()
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 11, 23, 59, 59, 999000000, time.UTC), to)
}

func TestWindowWeekStartsMonday(t *testing.T) {
	// 2026-03-11 is a Wednesday.
	anchor := time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
	from, to, bounded := Window{Kind: WindowWeek, Anchor: anchor}.Bounds()
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Monday, from.Weekday())
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999000000, time.UTC), to)
}

func TestWindowWeekSundayAnchor(t *testing.T) {
	// A Sunday anchor belongs to the week that started six days earlier.
	anchor := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, anchor.Weekday())

	from, _, bounded := Window{Kind: WindowWeek, Anchor: anchor}.Bounds()
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), from)
}

func TestWindowMonthBounds(t *testing.T) {
	anchor := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	from, to, bounded := Window{Kind: WindowMonth, Anchor: anchor}.Bounds()
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, 999000000, time.UTC), to)
}

func TestWindowCustomBounds(t *testing.T) {
	w := Window{
		Kind: WindowCustom,
		From: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC),
	}
	from, to, bounded := w.Bounds()
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 9, 23, 59, 59, 999000000, time.UTC), to)
}

func TestWindowAllContainsEverything(t *testing.T) {
	w := Window{Kind: WindowAll}
	assert.True(t, w.Contains(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestWindowContainsInclusiveEdges(t *testing.T) {
	anchor := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	w := Window{Kind: WindowDay, Anchor: anchor}

	assert.True(t, w.Contains(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2026, 3, 11, 23, 59, 59, 999000000, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 3, 10, 23, 59, 59, 999000000, time.UTC)))
}

func TestWeekIDThursdayAnchored(t *testing.T) {
	// 2024-12-30 is a Monday but its week's Thursday falls in 2025, so the
	// ISO identifier crosses the year boundary.
	assert.Equal(t, "2025-W1", WeekID(time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-W1", WeekID(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-W11", WeekID(time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)))
}

func TestWeekIDStableAcrossOneWeek(t *testing.T) {
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, WeekID(monday), WeekID(sunday))
	assert.NotEqual(t, WeekID(monday), WeekID(sunday.AddDate(0, 0, 1)))
}
