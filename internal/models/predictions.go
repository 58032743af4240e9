package models

import "time"

// DifficultyPrediction is the classifier output for one roster entry.
type DifficultyPrediction struct {
	Name                string `json:"name"`
	PredictedDifficulty string `json:"predicted_difficulty"`
}

// EntityEstimate is a per-entity win rate estimate in percent.
type EntityEstimate struct {
	Name             string  `json:"name"`
	EstimatedWinRate float64 `json:"estimated_win_rate"`
}

// Badge labels a notable property of a team composition.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// SynergySummary is the tier-weighted win rate heuristic shown next to the model estimate.
type SynergySummary struct {
	WinRate float64 `json:"win_rate"` // percent
	Synergy string  `json:"synergy"`  // "Balanced", "Fragile", "Overcrowded"
	Message string  `json:"message"`
}

// SynergyPrediction forecasts the win rate of a roster
type SynergyPrediction struct {
	Team             []string         `json:"team"`
	AggregateWinRate float64          `json:"aggregate_win_rate"` // percent
	Individual       []EntityEstimate `json:"individual"`
	Badges           []Badge          `json:"badges"`
	Summary          SynergySummary   `json:"summary"`
	ModelVersion     string           `json:"model_version"`
}

// Suggestion is a ranked teammate candidate.
type Suggestion struct {
	Name                   string  `json:"name"`
	Role                   string  `json:"role"`
	PreferredLane          string  `json:"preferred_lane"`
	FeedbackBoostedWinRate float64 `json:"feedback_boosted_win_rate"`
	Score                  float64 `json:"score"`
}

// FeatureImportance is the split-count importance of one feature column.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// TrainingReport summarises one training run.
type TrainingReport struct {
	RunID           string    `json:"run_id"`
	ModelVersion    string    `json:"model_version"`
	Algorithm       string    `json:"algorithm"`
	TrainedAt       time.Time `json:"trained_at"`
	Tuned           bool      `json:"tuned"`
	Accuracy        float64   `json:"accuracy"`
	F1Weighted      float64   `json:"f1_weighted"`
	CVScore         float64   `json:"cv_score,omitempty"`
	Labels          []string  `json:"labels"`
	ConfusionMatrix [][]int   `json:"confusion_matrix"`

	BestParams         map[string]any      `json:"best_params"`
	FeatureImportances []FeatureImportance `json:"feature_importances"`
	FeatureColumns     []string            `json:"feature_columns"`
	ExcludedGroups     []string            `json:"excluded_feature_groups"`

	TrainSize           int            `json:"train_size"`
	TestSize            int            `json:"test_size"`
	TrainClassCounts    map[string]int `json:"train_class_counts"`
	BalancedClassCounts map[string]int `json:"balanced_class_counts"`
	TestClassCounts     map[string]int `json:"test_class_counts"`

	SynergyR2     float64       `json:"synergy_r2"`
	SynergyMethod string        `json:"synergy_method"`
	Duration      time.Duration `json:"duration_ns"`
}

// FeatureSummary describes the training columns and a few sample rows.
type FeatureSummary struct {
	XColumns       []string             `json:"X_columns"`
	YColumns       []string             `json:"y_columns"`
	XSamples       []map[string]float64 `json:"X_samples"`
	YSamples       []map[string]string  `json:"y_samples"`
	ExcludedGroups []string             `json:"excluded_feature_groups"`
	SchemaVersion  string               `json:"schema_version"`
}
