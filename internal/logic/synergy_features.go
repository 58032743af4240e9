package logic

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/ml"
	"github.com/unitematch/unitematch-api/internal/models"
)

// Team-level synergy feature names.
const (
	TeamRoleDiversity       = "RoleDiversity"
	TeamMostCommonRoleCount = "MostCommonRoleCount"
	TeamHasSupport          = "HasSupport"
	TeamLaneDiversity       = "LaneDiversity"
	TeamHasJungle           = "HasJungle"
	TeamMeanAvgDifficulty   = "MeanAvgDifficulty"
	TeamMeanAdjustedWinRate = "MeanAdjustedWinRate"
	TeamStatVariance        = "StatVariance"
)

const (
	roleSupporter = "Supporter"
	laneJungle    = "Jungle"
)

// IndividualSynergyColumns are averaged across the roster.
var IndividualSynergyColumns = []string{
	fusion.FeatOffense, fusion.FeatEndurance, fusion.FeatMobility, fusion.FeatScoring, fusion.FeatSupport,
	fusion.FeatUsageRate, fusion.FeatBanRate, fusion.FeatMetaImpactScore,
}

// TeamSynergyColumns are computed from the roster as a whole.
var TeamSynergyColumns = []string{
	TeamRoleDiversity, TeamMostCommonRoleCount, TeamHasSupport, TeamLaneDiversity,
	TeamHasJungle, TeamMeanAvgDifficulty, TeamMeanAdjustedWinRate, TeamStatVariance,
}

// SynergyColumns is the regressor input layout.
var SynergyColumns = append(append([]string(nil), IndividualSynergyColumns...), TeamSynergyColumns...)

func individualFeatures(e *models.Entity) []float64 {
	return []float64{e.Offense, e.Endurance, e.Mobility, e.Scoring, e.Support, e.UsageRate, e.BanRate, e.MetaImpactScore}
}

// TeamFeatures computes the team-level synergy features in
// TeamSynergyColumns order. The variance term is the population variance
// of each of Offense, Support, Mobility and Endurance, averaged.
func TeamFeatures(rows []models.Entity) []float64 {
	out := make([]float64, len(TeamSynergyColumns))
	if len(rows) == 0 {
		return out
	}

	roles := make(map[string]int)
	lanes := make(map[string]int)
	var offense, support, mobility, endurance, difficulty, adjusted []float64
	for i := range rows {
		e := &rows[i]
		roles[e.Role]++
		lanes[e.PreferredLane]++
		offense = append(offense, e.Offense)
		support = append(support, e.Support)
		mobility = append(mobility, e.Mobility)
		endurance = append(endurance, e.Endurance)
		difficulty = append(difficulty, e.AvgDifficulty)
		adjusted = append(adjusted, e.AdjustedWinRate)
	}

	mostCommon := 0
	for _, n := range roles {
		if n > mostCommon {
			mostCommon = n
		}
	}

	var variance float64
	for _, col := range [][]float64{offense, support, mobility, endurance} {
		v, _ := stats.PopulationVariance(col)
		variance += v
	}

	out[0] = float64(len(roles))
	out[1] = float64(mostCommon)
	out[2] = indicator(roles[roleSupporter] > 0)
	out[3] = float64(len(lanes))
	out[4] = indicator(lanes[laneJungle] > 0)
	out[5], _ = stats.Mean(difficulty)
	out[6], _ = stats.Mean(adjusted)
	out[7] = variance / 4
	return out
}

// TeamVector is the regressor input for a roster: the mean of each
// individual feature followed by the team features.
func TeamVector(rows []models.Entity) []float64 {
	means := make([]float64, len(IndividualSynergyColumns))
	for i := range rows {
		for j, v := range individualFeatures(&rows[i]) {
			means[j] += v
		}
	}
	if len(rows) > 0 {
		for j := range means {
			means[j] /= float64(len(rows))
		}
	}
	return append(means, TeamFeatures(rows)...)
}

// TrainSynergy fits the proxy regressor. Each entity is treated as a team
// of one and labelled with its own AdjustedWinRate; no real team outcomes
// exist to train on.
func TrainSynergy(ds *fusion.Dataset) (*ml.LinearModel, error) {
	X := make([][]float64, ds.Len())
	y := make([]float64, ds.Len())
	for i := range ds.Rows {
		X[i] = TeamVector(ds.Rows[i : i+1])
		y[i] = ds.Rows[i].AdjustedWinRate
	}
	return ml.FitLinear(SynergyColumns, X, y)
}

// toPercent converts a predicted rate to a clipped, rounded percentage.
func toPercent(rate float64) float64 {
	pct := math.Max(0, math.Min(100, rate*100))
	return math.Round(pct*100) / 100
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
