package logic

import (
	"math"
	"strings"

	"github.com/unitematch/unitematch-api/internal/models"
)

// Roles and lanes used by the composition heuristics.
const (
	roleAttacker   = "Attacker"
	roleDefender   = "Defender"
	roleSpeedster  = "Speedster"
	roleAllRounder = "All-Rounder"

	laneTop    = "Top"
	laneBottom = "Bottom"
)

var (
	mapLanes     = []string{laneTop, laneJungle, laneBottom}
	coreRoles    = []string{roleSupporter, roleDefender, roleAttacker, roleSpeedster}
	roleToLane   = map[string]string{roleAttacker: laneTop, roleDefender: laneTop, roleAllRounder: laneBottom, roleSupporter: laneBottom, roleSpeedster: laneJungle}
	tierWeights  = map[string]float64{"S": 1.4, "A+": 1.2, "A": 1.0, "B+": 0.8, "B": 0.6, "C": 0.4, "D": 0.2}
	unknownTierW = 0.8
)

func countBy(rows []models.Entity, key func(*models.Entity) string) map[string]int {
	out := make(map[string]int)
	for i := range rows {
		if k := key(&rows[i]); k != "" && k != models.CategoryUnknown {
			out[k]++
		}
	}
	return out
}

func byRole(e *models.Entity) string { return e.Role }
func byLane(e *models.Entity) string { return e.PreferredLane }

// Badges labels notable properties of a composition. Colors are CSS
// utility classes consumed directly by the front end.
func Badges(rows []models.Entity) []models.Badge {
	badges := []models.Badge{}
	if len(rows) == 0 {
		return badges
	}
	add := func(label, color string) {
		badges = append(badges, models.Badge{Label: label, Color: color})
	}

	lanes := countBy(rows, byLane)
	roles := countBy(rows, byRole)
	total := float64(len(rows))

	switch len(lanes) {
	case 1:
		add("One-Lane Focus", "bg-orange-500")
	case len(mapLanes):
		add("Perfect Lane Coverage", "bg-green-500")
	}

	stacked := false
	for _, n := range roles {
		if n >= 3 {
			stacked = true
		}
	}
	if len(roles) >= 4 {
		add("Role Diversity", "bg-purple-500")
	} else if stacked {
		add("Stacked Role", "bg-red-600")
	}

	if roles[roleAttacker] > 0 && roles[roleDefender] > 0 && roles[roleSupporter] > 0 {
		add("Balanced Core", "bg-yellow-500")
	}

	if has(rows, roleSpeedster, laneJungle) && has(rows, roleDefender, laneTop) && has(rows, roleSupporter, laneBottom) {
		add("Meta Core", "bg-cyan-500")
	}

	for _, r := range coreRoles {
		if roles[r] == 0 {
			add("No "+r, "bg-pink-600")
		}
	}

	if lanes[laneJungle] >= 2 {
		add("Lane Conflict", "bg-amber-700")
	}
	if lanes[laneTop] >= 3 || lanes[laneBottom] >= 3 {
		add("Overstacked Lane", "bg-amber-800")
	}

	offense := roles[roleAttacker] + roles[roleAllRounder]
	defense := roles[roleDefender] + roles[roleSupporter]
	if float64(offense) >= total/2 {
		add("High Offense", "bg-red-500")
	}
	if float64(defense) >= total/2 {
		add("High Defense", "bg-blue-500")
	}
	if roles[roleSpeedster] == 0 && roles[roleAllRounder] == 0 {
		add("Low Mobility", "bg-gray-600")
	}
	if offense == 0 {
		add("No Offense", "bg-pink-700")
	}
	if defense == 0 {
		add("No Defense", "bg-pink-700")
	}
	if roles[roleSupporter] >= 2 {
		add("Double Support", "bg-fuchsia-600")
	}
	if lanes[laneJungle] >= 2 {
		add("Double Jungle", "bg-orange-700")
	}
	return badges
}

func has(rows []models.Entity, role, lane string) bool {
	for i := range rows {
		if rows[i].Role == role && rows[i].PreferredLane == lane {
			return true
		}
	}
	return false
}

// Summary is a tier-weighted win rate heuristic shown next to the model
// estimate.
func Summary(rows []models.Entity) models.SynergySummary {
	if len(rows) == 0 {
		return models.SynergySummary{Synergy: "Unknown"}
	}
	var sum float64
	for i := range rows {
		w, ok := tierWeights[strings.ToUpper(rows[i].Tier)]
		if !ok {
			w = unknownTierW
		}
		sum += rows[i].WinRate * 100 * w
	}
	avg := sum / float64(len(rows))

	s := models.SynergySummary{WinRate: math.Round(avg*100) / 100, Synergy: "Balanced"}
	switch {
	case avg < 35:
		s.Synergy = "Fragile"
		s.Message = "Your team might struggle to hold objectives."
	case avg > 60:
		s.Synergy = "Overcrowded"
		s.Message = "Too many damage dealers, consider adding support."
	}
	return s
}
