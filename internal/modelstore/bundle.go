// Package modelstore persists trained model bundles as versioned files
// with an atomically swapped CURRENT pointer.
package modelstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unitematch/unitematch-api/internal/ml"
	"github.com/unitematch/unitematch-api/internal/models"
)

// Bundle is everything prediction needs from one training run. The
// classifier, its label encoder and its feature-column list are only
// valid together.
type Bundle struct {
	Version       string    `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	SchemaVersion string    `json:"schema_version"`
	RunID         string    `json:"run_id"`

	Algorithm      string           `json:"algorithm"`
	Params         ml.Params        `json:"params"`
	FeatureColumns []string         `json:"feature_columns"`
	Labels         *ml.LabelEncoder `json:"labels"`
	Difficulty     *ml.Booster      `json:"difficulty"`

	Synergy *ml.LinearModel `json:"synergy"`

	DatasetFingerprint string                 `json:"dataset_fingerprint"`
	Report             *models.TrainingReport `json:"report,omitempty"`
}

// NewVersion returns a version string that sorts by write time.
func NewVersion(now time.Time) string {
	return now.UTC().Format("20060102T150405.000Z") + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// CheckColumns fails with FeatureMismatchError unless columns equal the
// list the classifier was fit on, in the same order.
func (b *Bundle) CheckColumns(columns []string) error {
	if len(columns) != len(b.FeatureColumns) {
		return &models.FeatureMismatchError{Expected: b.FeatureColumns, Actual: columns}
	}
	for i := range columns {
		if columns[i] != b.FeatureColumns[i] {
			return &models.FeatureMismatchError{Expected: b.FeatureColumns, Actual: columns}
		}
	}
	return nil
}

func (b *Bundle) validate() error {
	switch {
	case b.Difficulty == nil:
		return fmt.Errorf("bundle %s has no classifier", b.Version)
	case b.Labels == nil || b.Labels.Len() == 0:
		return fmt.Errorf("bundle %s has no labels", b.Version)
	case len(b.FeatureColumns) != b.Difficulty.NumFeature:
		return fmt.Errorf("bundle %s lists %d feature columns for a %d-feature classifier",
			b.Version, len(b.FeatureColumns), b.Difficulty.NumFeature)
	case b.Synergy == nil:
		return fmt.Errorf("bundle %s has no synergy model", b.Version)
	}
	return nil
}
