package logic

import (
	"context"
	"time"

	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/modelstore"
)

// DatasetSource yields a freshly fused dataset.
type DatasetSource interface {
	Load(ctx context.Context) (*fusion.Dataset, error)
}

// BundleStore persists and serves trained model bundles.
type BundleStore interface {
	Save(ctx context.Context, b *modelstore.Bundle) error
	Latest(ctx context.Context) (*modelstore.Bundle, error)
}

// DataService exposes the fused dataset.
type DataService interface {
	Preview(ctx context.Context) ([]models.Entity, error)
	Features(ctx context.Context) (*models.FeatureSummary, error)
}

// DifficultyService trains the classifier and predicts usage difficulty.
type DifficultyService interface {
	Train(ctx context.Context, tune bool) (*models.TrainingReport, error)
	Predict(ctx context.Context, roster []string) ([]models.DifficultyPrediction, error)
}

// SynergyService estimates team win rates and suggests teammates.
type SynergyService interface {
	PredictTeam(ctx context.Context, roster []string) (*models.SynergyPrediction, error)
	Suggest(ctx context.Context, roster []string, limit int) ([]models.Suggestion, error)
}

// FeedbackService records crowd match results.
type FeedbackService interface {
	Record(ctx context.Context, team []string, result string, ts time.Time) (int, error)
}
