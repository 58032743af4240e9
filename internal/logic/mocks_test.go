package logic

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/modelstore"
	"github.com/unitematch/unitematch-api/internal/traininglog"
)

type MockSource struct {
	LoadFunc func(ctx context.Context) (*fusion.Dataset, error)
}

func (m *MockSource) Load(ctx context.Context) (*fusion.Dataset, error) {
	return m.LoadFunc(ctx)
}

// MockBundleStore keeps the last saved bundle in memory.
type MockBundleStore struct {
	mu       sync.Mutex
	saved    []*modelstore.Bundle
	SaveFunc func(ctx context.Context, b *modelstore.Bundle) error
}

func (m *MockBundleStore) Save(ctx context.Context, b *modelstore.Bundle) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, b); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, b)
	return nil
}

func (m *MockBundleStore) Latest(ctx context.Context) (*modelstore.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil, &models.ModelNotTrainedError{}
	}
	return m.saved[len(m.saved)-1], nil
}

func (m *MockBundleStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type MockLog struct {
	mu         sync.Mutex
	entries    []traininglog.Entry
	AppendFunc func(ctx context.Context, e traininglog.Entry) error
}

func (m *MockLog) Append(ctx context.Context, e traininglog.Entry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

type MockSink struct {
	mu      sync.Mutex
	reports []*models.TrainingReport
}

func (m *MockSink) Publish(report *models.TrainingReport, ds *fusion.Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
}

// MockCache is an in-memory PredictionCache that records hits.
type MockCache struct {
	mu   sync.Mutex
	data map[string]any
	hits int
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]any)}
}

func (m *MockCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	m.hits++
	switch d := dst.(type) {
	case *[]models.DifficultyPrediction:
		*d = v.([]models.DifficultyPrediction)
	case *models.SynergyPrediction:
		*d = *v.(*models.SynergyPrediction)
	default:
		return false, fmt.Errorf("unexpected cache type %T", dst)
	}
	return true, nil
}

func (m *MockCache) Set(ctx context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = v
	return nil
}

type MockFeedbackStore struct {
	RecordFunc func(ctx context.Context, team []string, result string, ts time.Time) (int, error)
}

func (m *MockFeedbackStore) Record(ctx context.Context, team []string, result string, ts time.Time) (int, error) {
	return m.RecordFunc(ctx, team, result, ts)
}

func (m *MockFeedbackStore) ListAll(ctx context.Context) ([]models.FeedbackEvent, error) {
	return nil, nil
}

func fp(v float64) *float64 { return &v }

var (
	fixtureRoles = []string{"Attacker", "Defender", "Supporter", "Speedster", "All-Rounder"}
	fixtureLanes = []string{"Top", "Jungle", "Bottom"}
	fixtureTiers = []string{"S", "A", "B", "C"}
)

// fixtureDataset fuses 30 entities: 12 Novice, 9 Intermediate and 9
// Expert, separable on Offense and Support.
func fixtureDataset(t *testing.T) *fusion.Dataset {
	t.Helper()
	base := &models.BaseTable{Columns: append([]string{models.ColAttackStyle}, models.RequiredBaseColumns...)}
	meta := &models.MetaTable{Columns: append(append([]string(nil), models.RequiredMetaColumns...), models.ColPreferredLane)}

	for i := 0; i < 30; i++ {
		class, label := 0, models.DifficultyNovice
		switch {
		case i >= 21:
			class, label = 2, models.DifficultyExpert
		case i >= 12:
			class, label = 1, models.DifficultyIntermediate
		}
		name := fmt.Sprintf("Mon%02d", i)
		jitter := float64(i%4) * 0.1
		base.Rows = append(base.Rows, models.BaseRecord{
			Name:        name,
			Offense:     fp(2 + 3*float64(class) + jitter),
			Endurance:   fp(5 + float64(i%3)),
			Mobility:    fp(3 + float64(i%5)),
			Scoring:     fp(4 + float64(i%6)*0.1),
			Support:     fp(8 - 3*float64(class) - float64(i%3)*0.2),
			AttackStyle: "Physical",
		})
		meta.Rows = append(meta.Rows, models.MetaRecord{
			Name:            name,
			WinRate:         fp(45 + float64(i%7)),
			UsageRate:       fp(5 + float64(i%4)),
			BanRate:         fp(1 + float64(i%3)),
			Tier:            fixtureTiers[i%len(fixtureTiers)],
			Role:            fixtureRoles[i%len(fixtureRoles)],
			UsageDifficulty: label,
			PreferredLane:   fixtureLanes[(i/3)%len(fixtureLanes)],
			Range:           "Melee",
		})
	}

	ds, err := fusion.NewEngine(zap.NewNop()).Fuse(base, meta, nil)
	require.NoError(t, err)
	return ds
}

func staticSource(ds *fusion.Dataset) *MockSource {
	return &MockSource{LoadFunc: func(ctx context.Context) (*fusion.Dataset, error) { return ds, nil }}
}
