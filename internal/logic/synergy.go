package logic

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/cache"
	"github.com/unitematch/unitematch-api/internal/models"
)

// DefaultSuggestionLimit is used when a suggest request names no limit.
const DefaultSuggestionLimit = 5

type synergyService struct {
	source DatasetSource
	store  BundleStore
	cache  cache.PredictionCache
	logger *zap.SugaredLogger
}

func NewSynergyService(source DatasetSource, store BundleStore, pc cache.PredictionCache, logger *zap.Logger) SynergyService {
	if pc == nil {
		pc = cache.NoopCache{}
	}
	return &synergyService{source: source, store: store, cache: pc, logger: logger.Sugar()}
}

// PredictTeam estimates the roster's win rate with the proxy regressor.
// The aggregate estimate scores the whole roster as one team; each
// individual estimate scores that entity as a team of one, the way the
// regressor was trained.
func (s *synergyService) PredictTeam(ctx context.Context, roster []string) (*models.SynergyPrediction, error) {
	out, err := s.predictTeam(ctx, roster)
	predictionRequests.WithLabelValues("synergy", outcomeLabel(err)).Inc()
	return out, err
}

func (s *synergyService) predictTeam(ctx context.Context, roster []string) (*models.SynergyPrediction, error) {
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
	model := bundle.Synergy
	if !slices.Equal(model.Columns, SynergyColumns) {
		return nil, &models.FeatureMismatchError{Expected: model.Columns, Actual: SynergyColumns}
	}

	key := cache.Key("synergy", bundle.Version, ds.Fingerprint, roster)
	var cached models.SynergyPrediction
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return &cached, nil
	}

	team := ds.Entities(idx)
	aggregate, err := model.Predict(TeamVector(team))
	if err != nil {
		return nil, fmt.Errorf("synergy prediction: %w", err)
	}

	out := &models.SynergyPrediction{
		Team:             make([]string, len(team)),
		AggregateWinRate: toPercent(aggregate),
		Individual:       make([]models.EntityEstimate, len(team)),
		Badges:           Badges(team),
		Summary:          Summary(team),
		ModelVersion:     bundle.Version,
	}
	for i := range team {
		v, err := model.Predict(TeamVector(team[i : i+1]))
		if err != nil {
			return nil, fmt.Errorf("synergy prediction: %w", err)
		}
		out.Team[i] = team[i].Name
		out.Individual[i] = models.EntityEstimate{Name: team[i].Name, EstimatedWinRate: toPercent(v)}
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		s.logger.Warnw("Failed to cache synergy prediction", "error", err)
	}
	return out, nil
}

// Suggest ranks entities that would fill the roster's lane and role gaps.
// It needs the fused dataset only, not a trained model.
func (s *synergyService) Suggest(ctx context.Context, roster []string, limit int) ([]models.Suggestion, error) {
	out, err := s.suggest(ctx, roster, limit)
	predictionRequests.WithLabelValues("suggest", outcomeLabel(err)).Inc()
	return out, err
}

func (s *synergyService) suggest(ctx context.Context, roster []string, limit int) ([]models.Suggestion, error) {
	if len(roster) == 0 {
		return nil, &models.ValidationError{Field: "team", Message: "must contain at least one name"}
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := ds.Lookup(roster)
	if err != nil {
		return nil, err
	}
	return rankCandidates(ds.Rows, ds.Entities(idx), limit), nil
}
