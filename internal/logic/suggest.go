package logic

import (
	"math"
	"sort"

	"github.com/unitematch/unitematch-api/internal/models"
)

// recommendedLane is where a role usually plays; unknown roles go jungle.
func recommendedLane(role string) string {
	if l, ok := roleToLane[role]; ok {
		return l
	}
	return laneJungle
}

// scoreCandidate rates how well a candidate fills the team's gaps.
func scoreCandidate(c *models.Entity, lanes, roles map[string]int) float64 {
	var score float64
	if isMapLane(c.PreferredLane) && lanes[c.PreferredLane] == 0 {
		score += 3
	}
	if lanes[recommendedLane(c.Role)] == 0 {
		score += 2
	}
	switch roles[c.Role] {
	case 0:
		score += 2
	case 1:
		score++
	}
	if c.Role == roleSupporter {
		score += 2
	}
	return score + c.FeedbackBoostedWinRate*100
}

func isMapLane(lane string) bool {
	for _, l := range mapLanes {
		if l == lane {
			return true
		}
	}
	return false
}

// rankCandidates scores every entity not in the team, best first, ties by name.
func rankCandidates(all, team []models.Entity, limit int) []models.Suggestion {
	onTeam := make(map[string]struct{}, len(team))
	for _, e := range team {
		onTeam[e.Name] = struct{}{}
	}
	lanes := countBy(team, byLane)
	roles := countBy(team, byRole)

	out := make([]models.Suggestion, 0, len(all))
	for i := range all {
		c := &all[i]
		if _, ok := onTeam[c.Name]; ok {
			continue
		}
		out = append(out, models.Suggestion{
			Name:                   c.Name,
			Role:                   c.Role,
			PreferredLane:          c.PreferredLane,
			FeedbackBoostedWinRate: c.FeedbackBoostedWinRate,
			Score:                  math.Round(scoreCandidate(c, lanes, roles)*100) / 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
