package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

func TestRankStudentsStableOnTies(t *testing.T) {
	// Two students at the same score must keep their arrival order, never be
	// reordered by name.
	teams := []models.Team{
		{ID: 1, Name: "Tổ 1", Students: []models.Student{
			{ID: 1, Name: "Bình", Score: 50},
			{ID: 2, Name: "An", Score: 50},
		}},
	}

	ranked := RankStudents(teams)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Bình", ranked[0].Student.Name)
	assert.Equal(t, "An", ranked[1].Student.Name)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestRankStudentsIncludesZeroAndNegative(t *testing.T) {
	teams := []models.Team{
		{ID: 1, Name: "Tổ 1", Students: []models.Student{
			{ID: 1, Name: "An", Score: 0},
			{ID: 2, Name: "Bình", Score: -10},
			{ID: 3, Name: "Chi", Score: 5},
		}},
	}

	ranked := RankStudents(teams)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Chi", ranked[0].Student.Name)
	assert.Equal(t, "An", ranked[1].Student.Name)
	assert.Equal(t, "Bình", ranked[2].Student.Name)
}

func TestRankTeamsDescendingStable(t *testing.T) {
	teams := []models.Team{
		{ID: 1, Name: "Tổ 1", Students: []models.Student{{ID: 1, Score: 10}}},
		{ID: 2, Name: "Tổ 2", Students: []models.Student{{ID: 2, Score: 30}}},
		{ID: 3, Name: "Tổ 3", Students: []models.Student{{ID: 3, Score: 10}}},
	}

	ranked := RankTeams(teams)
	require.Len(t, ranked, 3)
	assert.Equal(t, int64(2), ranked[0].Team.ID)
	assert.Equal(t, int64(1), ranked[1].Team.ID)
	assert.Equal(t, int64(3), ranked[2].Team.ID)
	assert.Equal(t, 30, ranked[0].Score)
}

func TestHallOfFamePodiumSplit(t *testing.T) {
	anchor := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	teams := []models.Team{
		{ID: 1, Name: "Tổ 1", Students: []models.Student{
			{ID: 1, Name: "An"},
			{ID: 2, Name: "Bình"},
			{ID: 3, Name: "Chi"},
			{ID: 4, Name: "Dũng"},
			{ID: 5, Name: "Em"},
			{ID: 6, Name: "Phúc"},
		}},
	}
	history := []models.HistoryEntry{
		entry("An", 50, anchor),
		entry("Bình", 40, anchor),
		entry("Chi", 30, anchor),
		entry("Dũng", 20, anchor),
		entry("Em", 10, anchor),
		entry("Phúc", 5, anchor),
	}

	podium := HallOfFame(teams, history, Window{Kind: WindowWeek, Anchor: anchor})
	require.Len(t, podium.Top3, 3)
	require.Len(t, podium.RunnersUp, 2)
	assert.Equal(t, "An", podium.Top3[0].Student.Name)
	assert.Equal(t, 50, podium.Top3[0].PeriodScore)
	assert.Equal(t, "Dũng", podium.RunnersUp[0].Student.Name)
	assert.Equal(t, 4, podium.RunnersUp[0].Rank)
	assert.Equal(t, "Em", podium.RunnersUp[1].Student.Name)
}

func TestHallOfFameExcludesZeroPeriodScores(t *testing.T) {
	anchor := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	teams := []models.Team{
		{ID: 1, Name: "Tổ 1", Students: []models.Student{
			{ID: 1, Name: "An", Score: 100},
			{ID: 2, Name: "Bình", Score: 80},
		}},
	}
	// An earned nothing this week; only deductions. Bình earned 10.
	history := []models.HistoryEntry{
		entry("An", -5, anchor),
		entry("Bình", 10, anchor),
	}

	podium := HallOfFame(teams, history, Window{Kind: WindowWeek, Anchor: anchor})
	require.Len(t, podium.Top3, 1)
	assert.Equal(t, "Bình", podium.Top3[0].Student.Name)
	assert.Empty(t, podium.RunnersUp)
}

func TestHallOfFameOutsideWindowExcluded(t *testing.T) {
	anchor := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	teams := []models.Team{
		{ID: 1, Name: "Tổ 1", Students: []models.Student{{ID: 1, Name: "An"}}},
	}
	history := []models.HistoryEntry{
		entry("An", 50, anchor.AddDate(0, -2, 0)),
	}

	podium := HallOfFame(teams, history, Window{Kind: WindowMonth, Anchor: anchor})
	assert.Empty(t, podium.Top3)
	assert.Empty(t, podium.RunnersUp)
}
