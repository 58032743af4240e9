// Package traininglog records one append-only row per training run.
package traininglog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/unitematch/unitematch-api/internal/models"
)

// Entry is one training-log row.
type Entry struct {
	Timestamp          time.Time
	RunID              string
	ModelVersion       string
	Algorithm          string
	Tuned              bool
	Accuracy           float64
	F1Weighted         float64
	CVScore            float64
	Hyperparameters    string // JSON object
	FeatureImportances string // JSON array of {feature, importance}
	TrainSize          int
	TestSize           int
	SynergyR2          float64
	DurationMS         int64
}

// Log appends entries. Implementations never rewrite earlier rows.
type Log interface {
	Append(ctx context.Context, e Entry) error
}

// Reader returns the most recent entries, oldest first.
type Reader interface {
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// EntryFromReport flattens a training report into a log row.
func EntryFromReport(r *models.TrainingReport) Entry {
	params, _ := json.Marshal(r.BestParams)
	imps, _ := json.Marshal(r.FeatureImportances)
	return Entry{
		Timestamp:          r.TrainedAt.UTC(),
		RunID:              r.RunID,
		ModelVersion:       r.ModelVersion,
		Algorithm:          r.Algorithm,
		Tuned:              r.Tuned,
		Accuracy:           r.Accuracy,
		F1Weighted:         r.F1Weighted,
		CVScore:            r.CVScore,
		Hyperparameters:    string(params),
		FeatureImportances: string(imps),
		TrainSize:          r.TrainSize,
		TestSize:           r.TestSize,
		SynergyR2:          r.SynergyR2,
		DurationMS:         r.Duration.Milliseconds(),
	}
}

// Multi fans an entry out to several logs and returns the first error.
type Multi []Log

func (m Multi) Append(ctx context.Context, e Entry) error {
	var first error
	for _, l := range m {
		if err := l.Append(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
