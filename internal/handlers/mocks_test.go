package handlers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/unitematch/unitematch-api/internal/models"
)

type MockTrainingQueue struct {
	SubmitFunc func(ctx context.Context, tune bool) (*models.TrainingReport, error)
}

func (m *MockTrainingQueue) Submit(ctx context.Context, tune bool) (*models.TrainingReport, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, tune)
	}
	return &models.TrainingReport{}, nil
}
func (m *MockTrainingQueue) QueueDepth() int { return 0 }

type MockDataService struct {
	PreviewFunc  func(ctx context.Context) ([]models.Entity, error)
	FeaturesFunc func(ctx context.Context) (*models.FeatureSummary, error)
}

func (m *MockDataService) Preview(ctx context.Context) ([]models.Entity, error) {
	if m.PreviewFunc != nil {
		return m.PreviewFunc(ctx)
	}
	return nil, nil
}

func (m *MockDataService) Features(ctx context.Context) (*models.FeatureSummary, error) {
	if m.FeaturesFunc != nil {
		return m.FeaturesFunc(ctx)
	}
	return &models.FeatureSummary{}, nil
}

type MockDifficultyService struct {
	PredictFunc func(ctx context.Context, roster []string) ([]models.DifficultyPrediction, error)
}

func (m *MockDifficultyService) Train(ctx context.Context, tune bool) (*models.TrainingReport, error) {
	return nil, nil
}

func (m *MockDifficultyService) Predict(ctx context.Context, roster []string) ([]models.DifficultyPrediction, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, roster)
	}
	return nil, nil
}

type MockSynergyService struct {
	PredictTeamFunc func(ctx context.Context, roster []string) (*models.SynergyPrediction, error)
	SuggestFunc     func(ctx context.Context, roster []string, limit int) ([]models.Suggestion, error)
}

func (m *MockSynergyService) PredictTeam(ctx context.Context, roster []string) (*models.SynergyPrediction, error) {
	if m.PredictTeamFunc != nil {
		return m.PredictTeamFunc(ctx, roster)
	}
	return &models.SynergyPrediction{}, nil
}

func (m *MockSynergyService) Suggest(ctx context.Context, roster []string, limit int) ([]models.Suggestion, error) {
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, roster, limit)
	}
	return nil, nil
}

type MockFeedbackService struct {
	RecordFunc func(ctx context.Context, team []string, result string, ts time.Time) (int, error)
}

func (m *MockFeedbackService) Record(ctx context.Context, team []string, result string, ts time.Time) (int, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, team, result, ts)
	}
	return len(team), nil
}

type MockPostgres struct {
	statements []string
	ExecFunc   func(ctx context.Context, sql string) error
}

func (m *MockPostgres) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.statements = append(m.statements, sql)
	if m.ExecFunc != nil {
		return pgconn.CommandTag{}, m.ExecFunc(ctx, sql)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockPostgres) Ping(ctx context.Context) error { return nil }
