package fusion

import (
	"sort"
	"strings"
)

// SchemaVersion identifies the column layout produced by this package. It is
// stored with every model artifact.
const SchemaVersion = "v1"

// Numeric feature columns in matrix order. One-hot groups follow, each
// sorted by category value.
const (
	FeatOffense                = "Offense"
	FeatEndurance              = "Endurance"
	FeatMobility               = "Mobility"
	FeatScoring                = "Scoring"
	FeatSupport                = "Support"
	FeatWinRate                = "WinRate"
	FeatUsageRate              = "UsageRate"
	FeatBanRate                = "BanRate"
	FeatWin                    = "Win"
	FeatLoss                   = "Loss"
	FeatAdjustedWinRate        = "AdjustedWinRate"
	FeatBlendedWinRate         = "BlendedWinRate"
	FeatFeedbackBoostedWinRate = "FeedbackBoostedWinRate"
	FeatMobilityXOffense       = "Mobility_x_Offense"
	FeatMobilityXEndurance     = "Mobility_x_Endurance"
	FeatSupportXScoring        = "Support_x_Scoring"
	FeatMetaImpactScore        = "MetaImpactScore"
	FeatAvgDifficulty          = "AvgDifficulty"
	FeatIsRanged               = "IsRanged"
)

// One-hot group prefixes.
const (
	GroupTier          = "Tier"
	GroupRole          = "Role"
	GroupAttackStyle   = "AttackStyle"
	GroupPreferredLane = "PreferredLane"
)

// BaseStatColumns are the base attributes that get mean-filled.
var BaseStatColumns = []string{FeatOffense, FeatEndurance, FeatMobility, FeatScoring, FeatSupport}

// NumericColumns lists the non-one-hot matrix columns in order.
var NumericColumns = []string{
	FeatOffense, FeatEndurance, FeatMobility, FeatScoring, FeatSupport,
	FeatWinRate, FeatUsageRate, FeatBanRate,
	FeatWin, FeatLoss,
	FeatAdjustedWinRate, FeatBlendedWinRate, FeatFeedbackBoostedWinRate,
	FeatMobilityXOffense, FeatMobilityXEndurance, FeatSupportXScoring,
	FeatMetaImpactScore, FeatAvgDifficulty, FeatIsRanged,
}

// OneHotGroups lists the one-hot groups in matrix order.
var OneHotGroups = []string{GroupTier, GroupRole, GroupAttackStyle, GroupPreferredLane}

// OneHotColumn names the indicator column for value within group.
func OneHotColumn(group, value string) string {
	return group + "_" + value
}

// InGroup reports whether column is an indicator of group.
func InGroup(column, group string) bool {
	return strings.HasPrefix(column, group+"_")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
