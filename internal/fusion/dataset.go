package fusion

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"

	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/names"
)

// Dataset is the product of one fusion run. Rows[i] and row i of Features
// always describe the same entity.
type Dataset struct {
	Rows     []models.Entity
	Features *FeatureMatrix

	// Fingerprint is a content hash of the rows, used in cache keys.
	Fingerprint string
	Warnings    []Warning

	index map[string]int
}

func newDataset(rows []models.Entity, warnings []Warning) *Dataset {
	columns := featureColumns(rows)
	vectors := make([][]float64, len(rows))
	index := make(map[string]int, len(rows))
	for i := range rows {
		vectors[i] = featureVector(&rows[i], columns)
		index[rows[i].Name] = i
	}

	return &Dataset{
		Rows:        rows,
		Features:    newFeatureMatrix(columns, vectors),
		Fingerprint: fingerprint(columns, rows, vectors),
		Warnings:    warnings,
		index:       index,
	}
}

// Len returns the number of entities.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Lookup resolves roster names to row indices in roster order. Every name
// that does not resolve is reported in a single MissingEntityError.
func (d *Dataset) Lookup(roster []string) ([]int, error) {
	idx := make([]int, 0, len(roster))
	var missing []string
	seen := make(map[string]struct{})
	for _, raw := range roster {
		name := names.Normalize(raw)
		if i, ok := d.index[name]; ok {
			idx = append(idx, i)
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if name == "" {
			name = raw
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return nil, &models.MissingEntityError{Names: missing}
	}
	return idx, nil
}

// Entities returns the rows for the given indices.
func (d *Dataset) Entities(idx []int) []models.Entity {
	out := make([]models.Entity, len(idx))
	for n, i := range idx {
		out[n] = d.Rows[i]
	}
	return out
}

func featureColumns(rows []models.Entity) []string {
	groups := map[string]map[string]struct{}{
		GroupTier:          {},
		GroupRole:          {},
		GroupAttackStyle:   {},
		GroupPreferredLane: {},
	}
	for i := range rows {
		for g, v := range categories(&rows[i]) {
			groups[g][v] = struct{}{}
		}
	}

	columns := append([]string(nil), NumericColumns...)
	for _, g := range OneHotGroups {
		for _, v := range sortedKeys(groups[g]) {
			columns = append(columns, OneHotColumn(g, v))
		}
	}
	return columns
}

func categories(e *models.Entity) map[string]string {
	return map[string]string{
		GroupTier:          e.Tier,
		GroupRole:          e.Role,
		GroupAttackStyle:   e.AttackStyle,
		GroupPreferredLane: e.PreferredLane,
	}
}

// featureVector lays an entity out in the given column order. Unknown
// columns read as zero, which is what a one-hot column for a category the
// entity lacks should be.
func featureVector(e *models.Entity, columns []string) []float64 {
	numeric := map[string]float64{
		FeatOffense:                e.Offense,
		FeatEndurance:              e.Endurance,
		FeatMobility:               e.Mobility,
		FeatScoring:                e.Scoring,
		FeatSupport:                e.Support,
		FeatWinRate:                e.WinRate,
		FeatUsageRate:              e.UsageRate,
		FeatBanRate:                e.BanRate,
		FeatWin:                    float64(e.Win),
		FeatLoss:                   float64(e.Loss),
		FeatAdjustedWinRate:        e.AdjustedWinRate,
		FeatBlendedWinRate:         e.BlendedWinRate,
		FeatFeedbackBoostedWinRate: e.FeedbackBoostedWinRate,
		FeatMobilityXOffense:       e.MobilityXOffense,
		FeatMobilityXEndurance:     e.MobilityXEndurance,
		FeatSupportXScoring:        e.SupportXScoring,
		FeatMetaImpactScore:        e.MetaImpactScore,
		FeatAvgDifficulty:          e.AvgDifficulty,
	}
	if e.IsRanged() {
		numeric[FeatIsRanged] = 1
	}
	for g, v := range categories(e) {
		numeric[OneHotColumn(g, v)] = 1
	}

	vec := make([]float64, len(columns))
	for i, c := range columns {
		vec[i] = numeric[c]
	}
	return vec
}

func fingerprint(columns []string, rows []models.Entity, vectors [][]float64) string {
	h := sha256.New()
	h.Write([]byte(SchemaVersion))
	for _, c := range columns {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	var buf [8]byte
	for i, vec := range vectors {
		h.Write([]byte(rows[i].Name))
		h.Write([]byte(rows[i].UsageDifficulty))
		for _, v := range vec {
			bits := math.Float64bits(v)
			for b := 0; b < 8; b++ {
				buf[b] = byte(bits >> (8 * b))
			}
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16] + "-" + strconv.Itoa(len(rows))
}
