// Package fusion merges the base attribute source, the meta statistics
// source and aggregated crowd feedback into one typed dataset with a
// parallel numeric feature matrix.
package fusion

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/names"
)

var warningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "unitematch_fusion_warnings_total",
	Help: "Data-quality fallbacks applied during fusion",
}, []string{"kind"})

// Warning kinds.
const (
	WarnDuplicateBase   = "duplicate_base"
	WarnDuplicateMeta   = "duplicate_meta"
	WarnUnmatchedMeta   = "unmatched_meta"
	WarnMeanFilled      = "mean_filled"
	WarnUnknownFeedback = "unknown_feedback"
	WarnUnknownLabel    = "unknown_difficulty"
)

// Warning is one non-fatal data-quality issue found while fusing.
type Warning struct {
	Kind    string `json:"kind"`
	Name    string `json:"name,omitempty"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// Engine fuses static sources and feedback. It holds no per-run state and
// is safe for concurrent use.
type Engine struct {
	logger *zap.SugaredLogger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Sugar()}
}

// fusedRow carries the optional numeric fields between the merge and the fill.
type fusedRow struct {
	entity models.Entity
	stats  [5]*float64 // BaseStatColumns order
	rates  [3]*float64 // WinRate, UsageRate, BanRate
}

// Fuse builds a Dataset. A nil feedback map means no feedback exists at all.
func (e *Engine) Fuse(base *models.BaseTable, meta *models.MetaTable, feedback models.FeedbackAggregates) (*Dataset, error) {
	if base == nil || meta == nil {
		return nil, fmt.Errorf("fuse: base and meta tables are required")
	}
	if missing := missingFrom(base.HasColumn, models.RequiredBaseColumns); len(missing) > 0 {
		return nil, &models.SchemaError{Source: "base", Missing: missing}
	}
	if missing := missingFrom(meta.HasColumn, models.RequiredMetaColumns); len(missing) > 0 {
		return nil, &models.SchemaError{Source: "meta", Missing: missing}
	}

	run := &fuseRun{logger: e.logger}

	baseByName := run.indexBase(base.Rows)
	metaRows := run.dedupeMeta(meta.Rows)
	rateScale := percentScales(metaRows)
	hasLane := meta.HasColumn(models.ColPreferredLane)

	rows := make([]*fusedRow, 0, len(metaRows))
	for _, m := range metaRows {
		r := &fusedRow{}
		r.entity.Name = m.Name
		r.entity.Tier = orUnknown(m.Tier)
		r.entity.Role = orUnknown(m.Role)
		r.entity.UsageDifficulty = m.UsageDifficulty
		r.entity.Range = m.Range
		r.entity.PreferredLane = models.CategoryUnknown
		if hasLane {
			r.entity.PreferredLane = orUnknown(m.PreferredLane)
		}
		for i, v := range []*float64{m.WinRate, m.UsageRate, m.BanRate} {
			if v == nil {
				continue
			}
			scale := rateScale[i]
			if m.Percent[i] {
				scale = 100
			}
			scaled := *v / scale
			r.rates[i] = &scaled
		}

		b, ok := baseByName[m.Name]
		if !ok {
			run.warn(Warning{Kind: WarnUnmatchedMeta, Name: m.Name, Message: "meta entity has no base attributes"})
		} else {
			r.stats = [5]*float64{b.Offense, b.Endurance, b.Mobility, b.Scoring, b.Support}
			r.entity.AttackStyle = b.AttackStyle
			if r.entity.Range == "" {
				r.entity.Range = b.Range
			}
		}
		r.entity.AttackStyle = orUnknown(r.entity.AttackStyle)
		rows = append(rows, r)
	}

	// rates live in [0,1]; their fill keeps 4 decimals, not the 1 used for stats
	run.fillRates(rows)
	run.applyFeedback(rows, feedback)
	run.fillStats(rows)

	entities := make([]models.Entity, len(rows))
	for i, r := range rows {
		ent := r.entity
		ent.MobilityXOffense = round(ent.Mobility*ent.Offense, ratePrecision)
		ent.MobilityXEndurance = round(ent.Mobility*ent.Endurance, ratePrecision)
		ent.SupportXScoring = round(ent.Support*ent.Scoring, ratePrecision)
		ent.MetaImpactScore = round(ent.AdjustedWinRate*ent.UsageRate, ratePrecision)

		ent.AvgDifficulty = models.DifficultyOrdinal(ent.UsageDifficulty)
		if ent.AvgDifficulty == models.AvgDifficultyUnknown {
			if ent.UsageDifficulty != "" && ent.UsageDifficulty != models.DifficultyUnknown {
				run.warn(Warning{Kind: WarnUnknownLabel, Name: ent.Name, Message: "unrecognised difficulty " + ent.UsageDifficulty})
			}
			ent.UsageDifficulty = models.DifficultyUnknown
		}

		ent.FeedbackBoostedWinRate = BoostWinRate(ent.AdjustedWinRate, ent.Win, ent.Loss)
		entities[i] = ent
	}

	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })

	ds := newDataset(entities, run.warnings)
	e.logger.Infow("Fused dataset",
		"rows", len(entities),
		"columns", len(ds.Features.Columns()),
		"feedback", feedback != nil,
		"warnings", len(run.warnings),
		"fingerprint", ds.Fingerprint,
	)
	return ds, nil
}

type fuseRun struct {
	logger   *zap.SugaredLogger
	warnings []Warning
}

func (r *fuseRun) warn(w Warning) {
	r.warnings = append(r.warnings, w)
	warningsTotal.WithLabelValues(w.Kind).Inc()
	r.logger.Warnw("Fusion fallback applied", "kind", w.Kind, "name", w.Name, "column", w.Column, "detail", w.Message)
}

func (r *fuseRun) indexBase(rows []models.BaseRecord) map[string]models.BaseRecord {
	out := make(map[string]models.BaseRecord, len(rows))
	for _, b := range rows {
		b.Name = names.Normalize(b.Name)
		if b.Name == "" {
			continue
		}
		if _, dup := out[b.Name]; dup {
			r.warn(Warning{Kind: WarnDuplicateBase, Name: b.Name, Message: "duplicate base row ignored"})
			continue
		}
		out[b.Name] = b
	}
	return out
}

func (r *fuseRun) dedupeMeta(rows []models.MetaRecord) []models.MetaRecord {
	seen := make(map[string]struct{}, len(rows))
	out := make([]models.MetaRecord, 0, len(rows))
	for _, m := range rows {
		m.Name = names.Normalize(m.Name)
		if m.Name == "" {
			continue
		}
		if _, dup := seen[m.Name]; dup {
			r.warn(Warning{Kind: WarnDuplicateMeta, Name: m.Name, Message: "duplicate meta row ignored"})
			continue
		}
		seen[m.Name] = struct{}{}
		out = append(out, m)
	}
	return out
}

// percentScales returns 100 for each rate column holding any bare value
// above 1. Cells written with "%" are always scaled and do not vote here.
func percentScales(rows []models.MetaRecord) [3]float64 {
	scales := [3]float64{1, 1, 1}
	for _, m := range rows {
		for i, v := range []*float64{m.WinRate, m.UsageRate, m.BanRate} {
			if v != nil && !m.Percent[i] && *v > 1 {
				scales[i] = 100
			}
		}
	}
	return scales
}

var rateColumns = []string{FeatWinRate, FeatUsageRate, FeatBanRate}

func (r *fuseRun) fillRates(rows []*fusedRow) {
	for c, column := range rateColumns {
		fill := r.columnMean(rows, column, ratePrecision, func(fr *fusedRow) *float64 { return fr.rates[c] })
		for _, fr := range rows {
			v := fill
			if fr.rates[c] != nil {
				v = *fr.rates[c]
			}
			switch c {
			case 0:
				fr.entity.WinRate = v
			case 1:
				fr.entity.UsageRate = v
			case 2:
				fr.entity.BanRate = v
			}
		}
	}
}

func (r *fuseRun) fillStats(rows []*fusedRow) {
	for c, column := range BaseStatColumns {
		fill := r.columnMean(rows, column, statPrecision, func(fr *fusedRow) *float64 { return fr.stats[c] })
		for _, fr := range rows {
			v := fill
			if fr.stats[c] != nil {
				v = *fr.stats[c]
			}
			switch c {
			case 0:
				fr.entity.Offense = v
			case 1:
				fr.entity.Endurance = v
			case 2:
				fr.entity.Mobility = v
			case 3:
				fr.entity.Scoring = v
			case 4:
				fr.entity.Support = v
			}
		}
	}
}

// columnMean returns the rounded mean of the present values of one column
// and warns once per row that will be filled with it.
func (r *fuseRun) columnMean(rows []*fusedRow, column string, places int, get func(*fusedRow) *float64) float64 {
	present := make([]float64, 0, len(rows))
	var missing []string
	for _, fr := range rows {
		if v := get(fr); v != nil {
			present = append(present, *v)
		} else {
			missing = append(missing, fr.entity.Name)
		}
	}
	if len(missing) == 0 {
		return 0
	}

	mean, err := stats.Mean(present)
	if err != nil {
		// no value anywhere in the column
		mean = 0
	}
	mean = round(mean, places)
	for _, name := range missing {
		r.warn(Warning{Kind: WarnMeanFilled, Name: name, Column: column, Message: fmt.Sprintf("filled with column mean %v", mean)})
	}
	return mean
}

func (r *fuseRun) applyFeedback(rows []*fusedRow, feedback models.FeedbackAggregates) {
	matched := make(map[string]struct{}, len(feedback))
	for _, fr := range rows {
		ent := &fr.entity
		ent.AdjustedWinRate = ent.WinRate
		ent.BlendedWinRate = ent.WinRate

		agg, ok := feedback[ent.Name]
		if !ok {
			continue
		}
		matched[ent.Name] = struct{}{}
		if agg.Total() == 0 {
			continue
		}
		ent.Win, ent.Loss = agg.Win, agg.Loss
		ent.BlendedWinRate = BlendWinRate(ent.WinRate, agg.AdjustedWinRate)
		ent.AdjustedWinRate = ent.BlendedWinRate
	}

	unknown := make([]string, 0)
	for name := range feedback {
		if _, ok := matched[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		r.warn(Warning{Kind: WarnUnknownFeedback, Name: name, Message: "feedback for entity not in meta source"})
	}
}

func missingFrom(has func(string) bool, required []string) []string {
	var missing []string
	for _, c := range required {
		if !has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

func orUnknown(s string) string {
	if s == "" {
		return models.CategoryUnknown
	}
	return s
}
