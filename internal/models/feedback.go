package models

import "time"

// Match results accepted by the feedback store.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// FeedbackEvent is one persisted match result for a single entity.
type FeedbackEvent struct {
	Name      string    `json:"name" db:"name"`
	Result    string    `json:"result" db:"result"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// FeedbackAggregate holds the per-entity counts derived from feedback events.
type FeedbackAggregate struct {
	Win             int     `json:"win"`
	Loss            int     `json:"loss"`
	AdjustedWinRate float64 `json:"adjusted_win_rate"`
}

// Total returns Win+Loss.
func (a FeedbackAggregate) Total() int {
	return a.Win + a.Loss
}

// FeedbackAggregates maps canonical entity names to their aggregates.
type FeedbackAggregates map[string]FeedbackAggregate
