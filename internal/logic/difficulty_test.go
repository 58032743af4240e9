package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/ml"
	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/modelstore"
	"github.com/unitematch/unitematch-api/internal/traininglog"
)

type trainingHarness struct {
	svc   DifficultyService
	store *MockBundleStore
	log   *MockLog
	sink  *MockSink
	cache *MockCache
	ds    *fusion.Dataset
}

func newHarness(t *testing.T, cfg TrainingConfig) *trainingHarness {
	t.Helper()
	h := &trainingHarness{
		store: &MockBundleStore{},
		log:   &MockLog{},
		sink:  &MockSink{},
		cache: NewMockCache(),
		ds:    fixtureDataset(t),
	}
	h.svc = NewDifficultyService(staticSource(h.ds), h.store, h.log, h.sink, h.cache, cfg, zap.NewNop())
	return h
}

func fastConfig() TrainingConfig {
	cfg := DefaultTrainingConfig()
	cfg.Params.NEstimators = 30
	cfg.Grid = ml.Grid{
		NumLeaves:   []int{4, 8},
		Boosting:    []string{ml.BoostingGBDT, ml.BoostingGOSS},
		NEstimators: []int{20},
	}
	return cfg
}

func TestTrain_Report(t *testing.T) {
	h := newHarness(t, fastConfig())

	report, err := h.svc.Train(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Expert", "Intermediate", "Novice"}, report.Labels)
	assert.Equal(t, 6, report.TestSize)
	assert.Equal(t, 24, report.TrainSize)
	assert.Equal(t, map[string]int{"Expert": 2, "Intermediate": 2, "Novice": 2}, report.TestClassCounts)
	assert.Equal(t, map[string]int{"Expert": 7, "Intermediate": 7, "Novice": 10}, report.TrainClassCounts)
	assert.Equal(t, map[string]int{"Expert": 10, "Intermediate": 10, "Novice": 10}, report.BalancedClassCounts)
	assert.GreaterOrEqual(t, report.Accuracy, 0.8)
	assert.Len(t, report.ConfusionMatrix, 3)
	assert.False(t, report.Tuned)
	assert.Equal(t, "gbm-gbdt", report.Algorithm)

	assert.Len(t, report.FeatureImportances, len(report.FeatureColumns))
	for i := 1; i < len(report.FeatureImportances); i++ {
		assert.GreaterOrEqual(t, report.FeatureImportances[i-1].Importance, report.FeatureImportances[i].Importance)
	}
	for _, c := range report.FeatureColumns {
		assert.False(t, fusion.InGroup(c, fusion.GroupRole), c)
		assert.False(t, fusion.InGroup(c, fusion.GroupTier), c)
		assert.NotEqual(t, fusion.FeatAvgDifficulty, c)
	}

	require.Equal(t, 1, h.store.Saves())
	b, err := h.store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.ModelVersion, b.Version)
	assert.Equal(t, report.FeatureColumns, b.FeatureColumns)
	assert.Equal(t, h.ds.Fingerprint, b.DatasetFingerprint)
	assert.Equal(t, SynergyColumns, b.Synergy.Columns)

	require.Len(t, h.log.entries, 1)
	assert.Equal(t, report.RunID, h.log.entries[0].RunID)
	require.Len(t, h.sink.reports, 1)
}

func TestTrain_Tuned(t *testing.T) {
	h := newHarness(t, fastConfig())

	report, err := h.svc.Train(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.Tuned)
	assert.Greater(t, report.CVScore, 0.0)
	assert.Contains(t, []any{4, 8}, report.BestParams["num_leaves"])
	assert.Equal(t, 20, report.BestParams["n_estimators"])
}

func TestTrain_SingleClassFails(t *testing.T) {
	ds := fixtureDataset(t)
	for i := range ds.Rows {
		ds.Rows[i].UsageDifficulty = models.DifficultyNovice
	}
	store := &MockBundleStore{}
	svc := NewDifficultyService(staticSource(ds), store, &MockLog{}, nil, nil, fastConfig(), zap.NewNop())

	_, err := svc.Train(context.Background(), false)
	var failure *models.TrainingFailure
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Equal(t, 0, store.Saves())
}

func TestTrain_TinyClassFails(t *testing.T) {
	ds := fixtureDataset(t)
	for i := range ds.Rows {
		if ds.Rows[i].UsageDifficulty == models.DifficultyExpert {
			ds.Rows[i].UsageDifficulty = models.DifficultyNovice
		}
	}
	ds.Rows[0].UsageDifficulty = models.DifficultyExpert
	store := &MockBundleStore{}
	svc := NewDifficultyService(staticSource(ds), store, &MockLog{}, nil, nil, fastConfig(), zap.NewNop())

	_, err := svc.Train(context.Background(), false)
	var failure *models.TrainingFailure
	require.True(t, errors.As(err, &failure), "got %v", err)
	assert.Equal(t, 0, store.Saves())
}

func TestTrain_TunedWithThreeRowClass(t *testing.T) {
	ds := fixtureDataset(t)
	experts := 0
	for i := range ds.Rows {
		if ds.Rows[i].UsageDifficulty != models.DifficultyExpert {
			continue
		}
		experts++
		if experts > 3 {
			ds.Rows[i].UsageDifficulty = models.DifficultyIntermediate
		}
	}
	store := &MockBundleStore{}
	svc := NewDifficultyService(staticSource(ds), store, &MockLog{}, nil, nil, fastConfig(), zap.NewNop())

	_, err := svc.Train(context.Background(), false)
	require.NoError(t, err)

	report, err := svc.Train(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.Tuned)
	assert.Equal(t, 2, store.Saves())
}

func TestTrain_UnknownLabelsExcluded(t *testing.T) {
	ds := fixtureDataset(t)
	ds.Rows[0].UsageDifficulty = models.DifficultyUnknown
	svc := NewDifficultyService(staticSource(ds), &MockBundleStore{}, &MockLog{}, nil, nil, fastConfig(), zap.NewNop())

	report, err := svc.Train(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 29, report.TrainSize+report.TestSize)
	assert.NotContains(t, report.Labels, models.DifficultyUnknown)
}

func TestTrain_TimeoutWritesNothing(t *testing.T) {
	h := newHarness(t, fastConfig())
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := h.svc.Train(ctx, true)
	var timeout *models.TrainingTimeout
	require.True(t, errors.As(err, &timeout), "got %v", err)
	assert.Equal(t, 0, h.store.Saves())
	assert.Empty(t, h.log.entries)
	assert.Empty(t, h.sink.reports)
}

func TestTrain_LogFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, fastConfig())
	h.log.AppendFunc = func(ctx context.Context, e traininglog.Entry) error { return errors.New("disk full") }

	_, err := h.svc.Train(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, h.store.Saves())
}

func TestTrain_SaveFailure(t *testing.T) {
	h := newHarness(t, fastConfig())
	h.store.SaveFunc = func(ctx context.Context, b *modelstore.Bundle) error { return errors.New("read-only fs") }

	_, err := h.svc.Train(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only fs")
	assert.Empty(t, h.log.entries)
}

func TestPredict_NotTrained(t *testing.T) {
	h := newHarness(t, fastConfig())

	_, err := h.svc.Predict(context.Background(), []string{"mon01"})
	var notTrained *models.ModelNotTrainedError
	assert.True(t, errors.As(err, &notTrained), "got %v", err)
}

func TestPredict_MissingEntitiesListed(t *testing.T) {
	h := newHarness(t, fastConfig())
	_, err := h.svc.Train(context.Background(), false)
	require.NoError(t, err)

	_, err = h.svc.Predict(context.Background(), []string{"Mon01", "missingno", "Mon02", "ghost-mon", "MISSINGNO"})
	var missing *models.MissingEntityError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Missingno", "Ghost Mon"}, missing.Names)
}

func TestPredict_EmptyRoster(t *testing.T) {
	h := newHarness(t, fastConfig())
	_, err := h.svc.Predict(context.Background(), nil)
	var validation *models.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestPredict_OnePerRosterEntry(t *testing.T) {
	h := newHarness(t, fastConfig())
	_, err := h.svc.Train(context.Background(), false)
	require.NoError(t, err)

	roster := []string{"mon25", "Mon00", "mon13", "mon00"}
	first, err := h.svc.Predict(context.Background(), roster)
	require.NoError(t, err)
	require.Len(t, first, len(roster))
	assert.Equal(t, "Mon25", first[0].Name)
	assert.Equal(t, "Mon00", first[1].Name)
	assert.Equal(t, "Mon13", first[2].Name)
	assert.Equal(t, first[1], first[3])
	for _, p := range first {
		assert.Contains(t, []string{"Novice", "Intermediate", "Expert"}, p.PredictedDifficulty)
	}

	second, err := h.svc.Predict(context.Background(), roster)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, h.cache.hits)
}

func TestPredict_FeatureMismatch(t *testing.T) {
	h := newHarness(t, fastConfig())
	_, err := h.svc.Train(context.Background(), false)
	require.NoError(t, err)

	b, err := h.store.Latest(context.Background())
	require.NoError(t, err)
	b.FeatureColumns = append([]string{"Stale"}, b.FeatureColumns[1:]...)

	_, err = h.svc.Predict(context.Background(), []string{"Mon01"})
	var mismatch *models.FeatureMismatchError
	assert.True(t, errors.As(err, &mismatch), "got %v", err)
}
