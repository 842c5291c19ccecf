package scoring

import (
	"github.com/minhtran-dev/thidua-api/internal/models"
)

// Aggregate sums history points per student name within the window. History
// keys by the denormalized name snapshot, so a renamed student's older
// entries aggregate under the old name; see the leaderboard notes in
// DESIGN.md before "fixing" this by joining on ids.
func Aggregate(history []models.HistoryEntry, w Window) map[string]int {
	totals := make(map[string]int)
	for _, entry := range history {
		if !w.Contains(entry.RecordedAt) {
			continue
		}
		totals[entry.StudentName] += entry.Points
	}
	return totals
}

// AggregatePositive sums only the positive entries within the window. The
// Hall of Fame rewards earned points and ignores deductions entirely.
func AggregatePositive(history []models.HistoryEntry, w Window) map[string]int {
	totals := make(map[string]int)
	for _, entry := range history {
		if entry.Points <= 0 || !w.Contains(entry.RecordedAt) {
			continue
		}
		totals[entry.StudentName] += entry.Points
	}
	return totals
}

// WindowTeams returns a copy of teams with every member's score replaced by
// their aggregated total for the window. For WindowAll the stored running
// totals are returned untouched: that is the ledger's source of truth, and
// the two paths agree as long as the name snapshots in history still match
// current student names.
func WindowTeams(teams []models.Team, history []models.HistoryEntry, w Window) []models.Team {
	if w.Kind == WindowAll {
		return teams
	}

	totals := Aggregate(history, w)
	scored := make([]models.Team, len(teams))
	for i, team := range teams {
		students := make([]models.Student, len(team.Students))
		for j, s := range team.Students {
			s.Score = totals[s.Name]
			students[j] = s
		}
		team.Students = students
		scored[i] = team
	}
	return scored
}

// TeamTotal sums member scores. Callers pass teams already re-scored by
// WindowTeams when a bounded window applies.
func TeamTotal(team models.Team) int {
	total := 0
	for _, s := range team.Students {
		total += s.Score
	}
	return total
}
