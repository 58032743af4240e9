package diagnostics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/unitematch/unitematch-api/internal/fusion"
)

// correlationColumns are the numeric columns included in the correlation table.
var correlationColumns = []string{
	fusion.FeatOffense, fusion.FeatEndurance, fusion.FeatMobility, fusion.FeatScoring, fusion.FeatSupport,
	fusion.FeatWinRate, fusion.FeatUsageRate, fusion.FeatBanRate, fusion.FeatAdjustedWinRate, fusion.FeatAvgDifficulty,
}

// CorrelationTable holds pairwise Pearson correlations. Pairs involving a
// constant column are reported as 0.
type CorrelationTable struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
}

func Correlations(ds *fusion.Dataset) (*CorrelationTable, error) {
	cols := make([][]float64, len(correlationColumns))
	for i, c := range correlationColumns {
		v, err := ds.Features.Column(c)
		if err != nil {
			return nil, err
		}
		cols[i] = v
	}

	t := &CorrelationTable{Columns: correlationColumns, Matrix: make([][]float64, len(cols))}
	for i := range cols {
		t.Matrix[i] = make([]float64, len(cols))
		for j := range cols {
			if len(cols[i]) < 2 {
				continue
			}
			r := stat.Correlation(cols[i], cols[j], nil)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			t.Matrix[i][j] = math.Round(r*1e4) / 1e4
		}
	}
	return t, nil
}
