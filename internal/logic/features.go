package logic

import (
	"github.com/unitematch/unitematch-api/internal/fusion"
)

// ExcludedFeatureGroups are left out of the classifier inputs. The one-hot
// groups are sparse; AvgDifficulty is the ordinal of the target itself.
var ExcludedFeatureGroups = []string{fusion.GroupTier, fusion.GroupRole, fusion.GroupAttackStyle, fusion.FeatAvgDifficulty}

// TargetColumn is the classifier label.
const TargetColumn = "UsageDifficulty"

// ClassifierColumns filters the fused matrix columns down to the
// classifier inputs, keeping their order.
func ClassifierColumns(all []string) []string {
	out := make([]string, 0, len(all))
	for _, c := range all {
		if excluded(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func excluded(column string) bool {
	for _, g := range ExcludedFeatureGroups {
		if column == g || fusion.InGroup(column, g) {
			return true
		}
	}
	return false
}
