// Package feedback records crowd-submitted match results and turns them into
// per-entity win/loss aggregates.
package feedback

import (
	"math"
	"strings"

	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/names"
)

// ratePrecision is the number of decimals kept for intermediate rates.
const ratePrecision = 4

// Aggregate groups events by canonical entity name and counts wins and
// losses. The boolean is false when there are no events at all, which lets
// fusion take its no-feedback path instead of treating every entity as 0-0.
// Events with a result other than win/loss are ignored.
func Aggregate(events []models.FeedbackEvent) (models.FeedbackAggregates, bool) {
	if len(events) == 0 {
		return nil, false
	}

	agg := make(models.FeedbackAggregates)
	for _, ev := range events {
		name := names.Normalize(ev.Name)
		if name == "" {
			continue
		}
		a := agg[name]
		switch normalizeResult(ev.Result) {
		case models.ResultWin:
			a.Win++
		case models.ResultLoss:
			a.Loss++
		default:
			continue
		}
		agg[name] = a
	}

	for name, a := range agg {
		a.AdjustedWinRate = AdjustedWinRate(a.Win, a.Loss)
		agg[name] = a
	}
	return agg, true
}

// AdjustedWinRate is Win/(Win+Loss) rounded to four decimals, or 0 when there
// are no results.
func AdjustedWinRate(win, loss int) float64 {
	total := win + loss
	if total == 0 {
		return 0
	}
	return round(float64(win)/float64(total), ratePrecision)
}

func normalizeResult(result string) string {
	return strings.ToLower(strings.TrimSpace(result))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
