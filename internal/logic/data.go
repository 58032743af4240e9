package logic

import (
	"context"

	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/models"
)

const featureSampleRows = 5

type dataService struct {
	source DatasetSource
}

func NewDataService(source DatasetSource) DataService {
	return &dataService{source: source}
}

func (s *dataService) Preview(ctx context.Context) ([]models.Entity, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Rows, nil
}

func (s *dataService) Features(ctx context.Context) (*models.FeatureSummary, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	columns := ClassifierColumns(ds.Features.Columns())

	n := featureSampleRows
	if ds.Len() < n {
		n = ds.Len()
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	X, err := ds.Features.Select(rows, columns)
	if err != nil {
		return nil, err
	}

	summary := &models.FeatureSummary{
		XColumns:       columns,
		YColumns:       []string{TargetColumn},
		XSamples:       make([]map[string]float64, n),
		YSamples:       make([]map[string]string, n),
		ExcludedGroups: ExcludedFeatureGroups,
		SchemaVersion:  fusion.SchemaVersion,
	}
	for i, vec := range X {
		sample := make(map[string]float64, len(columns))
		for j, c := range columns {
			sample[c] = vec[j]
		}
		summary.XSamples[i] = sample
		summary.YSamples[i] = map[string]string{TargetColumn: ds.Rows[i].UsageDifficulty}
	}
	return summary, nil
}
