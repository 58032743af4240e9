package sources

import (
	"strconv"
	"strings"

	"github.com/unitematch/unitematch-api/internal/models"
)

// headerAliases maps folded header spellings onto canonical column names.
var headerAliases = map[string]string{
	"name":            models.ColName,
	"pokemon":         models.ColName,
	"character":       models.ColName,
	"offense":         models.ColOffense,
	"endurance":       models.ColEndurance,
	"mobility":        models.ColMobility,
	"scoring":         models.ColScoring,
	"support":         models.ColSupport,
	"style":           models.ColAttackStyle,
	"attackstyle":     models.ColAttackStyle,
	"description":     models.ColDescription,
	"usagedifficulty": models.ColUsageDifficulty,
	"difficulty":      models.ColUsageDifficulty,
	"role":            models.ColRole,
	"range":           models.ColRange,
	"rangetype":       models.ColRange,
	"meleeranged":     models.ColRange,
	"attacktype":      models.ColRange,
	"winrate":         models.ColWinRate,
	"usagerate":       models.ColUsageRate,
	"pickrate":        models.ColUsageRate,
	"banrate":         models.ColBanRate,
	"tier":            models.ColTier,
	"preferredlane":   models.ColPreferredLane,
	"lane":            models.ColPreferredLane,
	"notes":           models.ColNotes,
}

// foldHeader lower-cases a header and strips separators so "Win Rate (%)",
// "win_rate" and "WinRate" compare equal.
func foldHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		switch r {
		case ' ', '_', '-', '%', '(', ')', '.', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// columnIndex maps canonical column names to their position in header.
// Unknown headers are ignored; the first occurrence of a duplicate wins.
func columnIndex(header []string) (map[string]int, []string) {
	idx := make(map[string]int, len(header))
	var present []string
	for i, h := range header {
		canon, ok := headerAliases[foldHeader(strings.TrimPrefix(h, "\ufeff"))]
		if !ok {
			continue
		}
		if _, seen := idx[canon]; seen {
			continue
		}
		idx[canon] = i
		present = append(present, canon)
	}
	return idx, present
}

func missingColumns(idx map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// parseNumber parses a numeric cell, accepting a trailing "%". Empty or
// unparseable cells are missing (nil).
func parseNumber(s string) *float64 {
	v, _ := parsePercent(s)
	return v
}

// parsePercent is parseNumber that also reports whether the cell carried a
// trailing "%".
func parsePercent(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	v := parseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")))
	return v, pct && v != nil
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// canonicalDifficulty maps any casing of a known label onto the canonical
// label and leaves other values trimmed.
func canonicalDifficulty(s string) string {
	for _, label := range []string{models.DifficultyNovice, models.DifficultyIntermediate, models.DifficultyExpert} {
		if strings.EqualFold(s, label) {
			return label
		}
	}
	return s
}

func canonicalRange(s string) string {
	switch strings.ToLower(s) {
	case "melee":
		return "Melee"
	case "ranged":
		return "Ranged"
	}
	return s
}
