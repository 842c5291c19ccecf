package scoring

import (
	"sort"
	"time"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// WatchlistTier classifies severity by negative-incident count in the
// reference week.
type WatchlistTier string

const (
	TierYellow WatchlistTier = "yellow"
	TierOrange WatchlistTier = "orange"
	TierRed    WatchlistTier = "red"
)

// WatchlistEntry is one flagged student with incident detail.
type WatchlistEntry struct {
	Student   models.Student        `json:"student"`
	TeamName  string                `json:"team_name"`
	TeamColor string                `json:"team_color"`
	Incidents []models.HistoryEntry `json:"incidents"`
	Tier      WatchlistTier         `json:"tier"`
	Special   bool                  `json:"special"`
}

// ComputeWatchlist flags students with two or more negative incidents during
// the reference week and classifies them: 2 incidents → yellow, 3 → orange,
// 4 or more → red. Students below the two-incident gate never appear, even
// when they have incidents in earlier weeks.
//
// A flagged student is additionally marked Special when either
//   - each of the reference week and the two weeks before it holds at least
//     one negative incident, or
//   - some negative reason string repeats verbatim between the reference week
//     and the week before it (the repeated-reason check is skipped once the
//     three-week rule already matched).
//
// The result is ordered by reference-week incident count descending, stable
// on ties.
func ComputeWatchlist(teams []models.Team, history []models.HistoryEntry, reference time.Time) []WatchlistEntry {
	currentWeek := WeekID(reference)
	lastWeek := WeekID(reference.AddDate(0, 0, -7))
	weekBeforeLast := WeekID(reference.AddDate(0, 0, -14))

	// studentName → weekID → negative incidents
	incidents := make(map[string]map[string][]models.HistoryEntry)
	for _, entry := range history {
		if entry.Points >= 0 {
			continue
		}
		week := WeekID(entry.RecordedAt)
		byWeek, ok := incidents[entry.StudentName]
		if !ok {
			byWeek = make(map[string][]models.HistoryEntry)
			incidents[entry.StudentName] = byWeek
		}
		byWeek[week] = append(byWeek[week], entry)
	}

	flagged := make([]WatchlistEntry, 0)
	for _, team := range teams {
		for _, student := range team.Students {
			byWeek := incidents[student.Name]
			current := byWeek[currentWeek]
			if len(current) < 2 {
				continue
			}

			var tier WatchlistTier
			switch {
			case len(current) >= 4:
				tier = TierRed
			case len(current) == 3:
				tier = TierOrange
			default:
				tier = TierYellow
			}

			previous := byWeek[lastWeek]
			special := len(previous) > 0 && len(byWeek[weekBeforeLast]) > 0
			if !special && len(previous) > 0 {
				special = reasonRepeats(current, previous)
			}

			flagged = append(flagged, WatchlistEntry{
				Student:   student,
				TeamName:  team.Name,
				TeamColor: team.Color,
				Incidents: current,
				Tier:      tier,
				Special:   special,
			})
		}
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		return len(flagged[i].Incidents) > len(flagged[j].Incidents)
	})
	return flagged
}

// reasonRepeats reports whether any reason string occurs in both weeks.
// Matching is exact and case-sensitive.
func reasonRepeats(current, previous []models.HistoryEntry) bool {
	seen := make(map[string]struct{}, len(previous))
	for _, e := range previous {
		seen[e.Reason] = struct{}{}
	}
	for _, e := range current {
		if _, ok := seen[e.Reason]; ok {
			return true
		}
	}
	return false
}
