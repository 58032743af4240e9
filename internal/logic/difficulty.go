package logic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/cache"
	"github.com/unitematch/unitematch-api/internal/diagnostics"
	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/ml"
	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/modelstore"
	"github.com/unitematch/unitematch-api/internal/traininglog"
)

// TrainingConfig controls the classifier pipeline.
type TrainingConfig struct {
	Seed         int64
	TestFraction float64
	CVFolds      int
	Grid         ml.Grid
	Params       ml.Params
}

// DefaultTrainingConfig returns the fixed defaults used when tuning is off.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Seed:         42,
		TestFraction: 0.2,
		CVFolds:      3,
		Grid:         ml.DefaultGrid(),
		Params:       ml.DefaultParams(),
	}
}

type difficultyService struct {
	source DatasetSource
	store  BundleStore
	log    traininglog.Log
	sink   diagnostics.Sink
	cache  cache.PredictionCache
	cfg    TrainingConfig
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewDifficultyService(source DatasetSource, store BundleStore, log traininglog.Log, sink diagnostics.Sink,
	pc cache.PredictionCache, cfg TrainingConfig, logger *zap.Logger) DifficultyService {
	if sink == nil {
		sink = diagnostics.NoopSink{}
	}
	if pc == nil {
		pc = cache.NoopCache{}
	}
	return &difficultyService{
		source: source,
		store:  store,
		log:    log,
		sink:   sink,
		cache:  pc,
		cfg:    cfg,
		logger: logger.Sugar(),
		now:    time.Now,
	}
}

// Train fits the difficulty classifier and the synergy regressor on a
// fresh fusion and commits both as one bundle. Nothing is written unless
// every step succeeds.
func (s *difficultyService) Train(ctx context.Context, tune bool) (*models.TrainingReport, error) {
	start := s.now()
	runID := uuid.NewString()
	log := s.logger.With("run_id", runID, "tune", tune)

	report, ds, err := s.train(ctx, runID, tune, start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &models.TrainingTimeout{Elapsed: s.now().Sub(start)}
		}
		trainingRuns.WithLabelValues(outcomeLabel(err)).Inc()
		log.Errorw("Training failed", "error", err)
		return nil, err
	}

	trainingRuns.WithLabelValues("success").Inc()
	trainingDuration.Observe(report.Duration.Seconds())
	log.Infow("Training finished",
		"version", report.ModelVersion,
		"accuracy", report.Accuracy,
		"f1_weighted", report.F1Weighted,
		"duration", report.Duration)

	if s.log != nil {
		if err := s.log.Append(ctx, traininglog.EntryFromReport(report)); err != nil {
			log.Errorw("Failed to append training log", "error", err)
		}
	}
	s.sink.Publish(report, ds)
	return report, nil
}

func (s *difficultyService) train(ctx context.Context, runID string, tune bool, start time.Time) (*models.TrainingReport, *fusion.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	columns := ClassifierColumns(ds.Features.Columns())

	var rows []int
	var labels []string
	for i, e := range ds.Rows {
		if e.UsageDifficulty == "" || e.UsageDifficulty == models.DifficultyUnknown {
			continue
		}
		rows = append(rows, i)
		labels = append(labels, e.UsageDifficulty)
	}
	enc := ml.FitLabelEncoder(labels)
	if enc.Len() < 2 {
		return nil, nil, &models.TrainingFailure{Reason: fmt.Sprintf("need at least 2 difficulty classes, found %d", enc.Len())}
	}
	y, err := enc.EncodeAll(labels)
	if err != nil {
		return nil, nil, err
	}
	X, err := ds.Features.Select(rows, columns)
	if err != nil {
		return nil, nil, err
	}

	trainIdx, testIdx, err := ml.StratifiedSplit(y, s.cfg.TestFraction, s.cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	trainX, trainY := ml.Take(X, y, trainIdx)
	testX, testY := ml.Take(X, y, testIdx)

	params := s.cfg.Params
	params.Seed = s.cfg.Seed
	var cvScore float64
	if tune {
		k := ml.ChooseFolds(trainY, s.cfg.CVFolds)
		if k < 2 {
			return nil, nil, &models.TrainingFailure{Reason: "too few samples per class for cross-validation"}
		}
		res, err := ml.GridSearch(ctx, trainX, trainY, enc.Len(), s.cfg.Grid, params, k)
		if err != nil {
			return nil, nil, err
		}
		params, cvScore = res.Best, res.Score
		s.logger.Infow("Grid search finished", "run_id", runID, "evaluated", res.Evaluated, "cv_score", res.Score, "folds", k)
	}

	balancedX, balancedY, err := ml.SMOTE(trainX, trainY, ml.DefaultNeighbors, s.cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	booster, err := ml.TrainBooster(ctx, balancedX, balancedY, enc.Len(), params)
	if err != nil {
		return nil, nil, err
	}
	pred, err := booster.PredictAll(testX)
	if err != nil {
		return nil, nil, err
	}

	synergy, err := TrainSynergy(ds)
	if err != nil {
		return nil, nil, &models.TrainingFailure{Reason: "synergy regressor: " + err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	now := s.now()
	version := modelstore.NewVersion(now)
	report := &models.TrainingReport{
		RunID:               runID,
		ModelVersion:        version,
		Algorithm:           "gbm-" + params.Boosting,
		TrainedAt:           now.UTC(),
		Tuned:               tune,
		Accuracy:            round4(ml.Accuracy(testY, pred)),
		F1Weighted:          round4(ml.WeightedF1(testY, pred, enc.Len())),
		CVScore:             round4(cvScore),
		Labels:              enc.Classes,
		ConfusionMatrix:     ml.ConfusionMatrix(testY, pred, enc.Len()),
		BestParams:          params.Map(),
		FeatureImportances:  importances(columns, booster.FeatureImportance()),
		FeatureColumns:      columns,
		ExcludedGroups:      ExcludedFeatureGroups,
		TrainSize:           len(trainY),
		TestSize:            len(testY),
		TrainClassCounts:    classCounts(enc, trainY),
		BalancedClassCounts: classCounts(enc, balancedY),
		TestClassCounts:     classCounts(enc, testY),
		SynergyR2:           round4(synergy.R2),
		SynergyMethod:       synergy.Method,
		Duration:            now.Sub(start),
	}

	bundle := &modelstore.Bundle{
		Version:            version,
		CreatedAt:          now.UTC(),
		SchemaVersion:      fusion.SchemaVersion,
		RunID:              runID,
		Algorithm:          report.Algorithm,
		Params:             params,
		FeatureColumns:     columns,
		Labels:             enc,
		Difficulty:         booster,
		Synergy:            synergy,
		DatasetFingerprint: ds.Fingerprint,
		Report:             report,
	}
	if err := s.store.Save(ctx, bundle); err != nil {
		return nil, nil, fmt.Errorf("failed to save model bundle: %w", err)
	}
	return report, ds, nil
}

// Predict classifies every roster entry with the latest committed bundle.
func (s *difficultyService) Predict(ctx context.Context, roster []string) ([]models.DifficultyPrediction, error) {
	out, err := s.predict(ctx, roster)
	predictionRequests.WithLabelValues("difficulty", outcomeLabel(err)).Inc()
	return out, err
}

func (s *difficultyService) predict(ctx context.Context, roster []string) ([]models.DifficultyPrediction, error) {
	if len(roster) == 0 {
		return nil, &models.ValidationError{Field: "team", Message: "must contain at least one name"}
	}
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := ds.Lookup(roster)
	if err != nil {
		return nil, err
	}
	bundle, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	columns := ClassifierColumns(ds.Features.Columns())
	if err := bundle.CheckColumns(columns); err != nil {
		return nil, err
	}

	key := cache.Key("difficulty", bundle.Version, ds.Fingerprint, roster)
	var cached []models.DifficultyPrediction
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	X, err := ds.Features.Select(idx, bundle.FeatureColumns)
	if err != nil {
		return nil, err
	}
	out := make([]models.DifficultyPrediction, len(idx))
	for i, x := range X {
		class, err := bundle.Difficulty.Predict(x)
		if err != nil {
			return nil, err
		}
		label, err := bundle.Labels.Decode(class)
		if err != nil {
			return nil, err
		}
		out[i] = models.DifficultyPrediction{Name: ds.Rows[idx[i]].Name, PredictedDifficulty: label}
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		s.logger.Warnw("Failed to cache difficulty prediction", "error", err)
	}
	return out, nil
}

func importances(columns []string, values []float64) []models.FeatureImportance {
	out := make([]models.FeatureImportance, len(columns))
	for i, c := range columns {
		out[i] = models.FeatureImportance{Feature: c, Importance: values[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}

func classCounts(enc *ml.LabelEncoder, y []int) map[string]int {
	out := make(map[string]int, enc.Len())
	for class, n := range ml.ClassCounts(y) {
		label, _ := enc.Decode(class)
		out[label] = n
	}
	return out
}

// outcomeLabel buckets an error for metrics.
func outcomeLabel(err error) string {
	var (
		validation *models.ValidationError
		missing    *models.MissingEntityError
		notTrained *models.ModelNotTrainedError
		mismatch   *models.FeatureMismatchError
		failure    *models.TrainingFailure
		timeout    *models.TrainingTimeout
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &validation):
		return "invalid"
	case errors.As(err, &missing):
		return "missing_entity"
	case errors.As(err, &notTrained):
		return "not_trained"
	case errors.As(err, &mismatch):
		return "feature_mismatch"
	case errors.As(err, &failure):
		return "failure"
	case errors.As(err, &timeout):
		return "timeout"
	default:
		return "error"
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
