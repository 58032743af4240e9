package fusion

import "math"

// Blending weights and the net-win boost.
const (
	metaWeight     = 0.7
	feedbackWeight = 0.3
	boostPerNetWin = 0.01
	netWinLimit    = 30

	ratePrecision = 4
	statPrecision = 1
)

// BlendWinRate mixes the external win rate with the feedback win rate.
func BlendWinRate(metaWinRate, feedbackWinRate float64) float64 {
	return round(metaWeight*metaWinRate+feedbackWeight*feedbackWinRate, ratePrecision)
}

// BoostWinRate nudges a win rate by one point per net win, capped at
// thirty net results either way, and keeps the result in [0,1].
func BoostWinRate(adjusted float64, win, loss int) float64 {
	net := clip(float64(win-loss), -netWinLimit, netWinLimit)
	return round(clip(adjusted+boostPerNetWin*net, 0, 1), ratePrecision)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
