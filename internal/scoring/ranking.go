package scoring

import (
	"sort"

	"github.com/minhtran-dev/thidua-api/internal/models"
)

// RankedStudent is one row of the individual leaderboard.
type RankedStudent struct {
	Student   models.Student `json:"student"`
	TeamID    int64          `json:"team_id"`
	TeamName  string         `json:"team_name"`
	TeamColor string         `json:"team_color"`
	Rank      int            `json:"rank"`
}

// RankedTeam is one row of the team leaderboard.
type RankedTeam struct {
	Team  models.Team `json:"team"`
	Score int         `json:"score"`
	Rank  int         `json:"rank"`
}

// PodiumStudent is a Hall of Fame row with the windowed score.
type PodiumStudent struct {
	Student     models.Student `json:"student"`
	TeamName    string         `json:"team_name"`
	TeamColor   string         `json:"team_color"`
	PeriodScore int            `json:"period_score"`
	Rank        int            `json:"rank"`
}

// Podium is the top-3 structural split plus the flat 4th/5th list.
type Podium struct {
	Top3      []PodiumStudent `json:"top3"`
	RunnersUp []PodiumStudent `json:"runners_up"`
}

// RankStudents flattens teams into a single leaderboard sorted descending by
// score. Ties keep the order students arrived in (team order, then roster
// order) rather than falling back to names. Zero and negative scores are
// included.
func RankStudents(teams []models.Team) []RankedStudent {
	ranked := make([]RankedStudent, 0)
	for _, team := range teams {
		for _, s := range team.Students {
			ranked = append(ranked, RankedStudent{
				Student:   s,
				TeamID:    team.ID,
				TeamName:  team.Name,
				TeamColor: team.Color,
			})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Student.Score > ranked[j].Student.Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// RankTeams sorts teams descending by total member score, stable on ties.
// Callers pass teams re-scored by WindowTeams for bounded windows.
func RankTeams(teams []models.Team) []RankedTeam {
	ranked := make([]RankedTeam, len(teams))
	for i, team := range teams {
		ranked[i] = RankedTeam{Team: team, Score: TeamTotal(team)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// HallOfFame ranks students by positive points earned within the window and
// extracts the podium: ranks 1-3 plus ranks 4-5 as a flat list. Students with
// no positive points in the window are left out entirely; the cutoffs are
// fixed.
func HallOfFame(teams []models.Team, history []models.HistoryEntry, w Window) Podium {
	totals := AggregatePositive(history, w)

	ranked := make([]PodiumStudent, 0)
	for _, team := range teams {
		for _, s := range team.Students {
			score := totals[s.Name]
			if score <= 0 {
				continue
			}
			ranked = append(ranked, PodiumStudent{
				Student:     s,
				TeamName:    team.Name,
				TeamColor:   team.Color,
				PeriodScore: score,
			})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PeriodScore > ranked[j].PeriodScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	podium := Podium{Top3: []PodiumStudent{}, RunnersUp: []PodiumStudent{}}
	for _, r := range ranked {
		switch {
		case r.Rank <= 3:
			podium.Top3 = append(podium.Top3, r)
		case r.Rank <= 5:
			podium.RunnersUp = append(podium.RunnersUp, r)
		}
	}
	return podium
}
