// Package diagnostics renders charts and reports for finished training
// runs. Publishing never blocks or fails the caller.
package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/fusion"
	"github.com/unitematch/unitematch-api/internal/models"
)

// Sink accepts training results for rendering.
type Sink interface {
	Publish(report *models.TrainingReport, ds *fusion.Dataset)
}

// NoopSink discards everything.
type NoopSink struct{}

func (NoopSink) Publish(*models.TrainingReport, *fusion.Dataset) {}

// FileSink writes one directory per training run under dir.
type FileSink struct {
	dir    string
	logger *zap.SugaredLogger
	wg     sync.WaitGroup
}

func NewFileSink(dir string, logger *zap.Logger) *FileSink {
	return &FileSink{dir: dir, logger: logger.Sugar()}
}

// Publish renders in the background. Errors are logged.
func (s *FileSink) Publish(report *models.TrainingReport, ds *fusion.Dataset) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorw("Diagnostics rendering panicked", "run_id", report.RunID, "panic", r)
			}
		}()
		if err := s.write(report, ds); err != nil {
			s.logger.Warnw("Failed to write diagnostics", "run_id", report.RunID, "error", err)
		}
	}()
}

// Wait blocks until every pending Publish has finished.
func (s *FileSink) Wait() {
	s.wg.Wait()
}

func (s *FileSink) write(report *models.TrainingReport, ds *fusion.Dataset) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	runDir := filepath.Join(s.dir, report.RunID)
	if err := os.Mkdir(runDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.logger.Infow("Diagnostics already rendered", "run_id", report.RunID)
			return nil
		}
		return err
	}

	labels := make([]string, len(report.FeatureImportances))
	values := make([]float64, len(report.FeatureImportances))
	for i, fi := range report.FeatureImportances {
		labels[i] = fi.Feature
		values[i] = fi.Importance
	}
	files := map[string][]byte{
		"feature_importance.svg": []byte(barChartSVG("Feature Importance (splits)", labels, values, "#4a90e2")),
		"confusion_matrix.svg":   []byte(heatTableSVG("Confusion Matrix", report.Labels, report.ConfusionMatrix)),
		"report.html":            renderReport(report),
	}

	if ds != nil && ds.Len() > 0 {
		corr, err := Correlations(ds)
		if err != nil {
			return fmt.Errorf("correlations: %w", err)
		}
		raw, err := json.MarshalIndent(corr, "", "  ")
		if err != nil {
			return err
		}
		files["correlation.json"] = raw
	}

	for name, data := range files {
		if err := os.WriteFile(filepath.Join(runDir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	s.logger.Infow("Diagnostics written", "run_id", report.RunID, "dir", runDir, "files", len(files))
	return nil
}
