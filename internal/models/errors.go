package models

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// SchemaError reports required columns absent from a static source.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s source is missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// MissingEntityError lists every roster name that has no fused row.
type MissingEntityError struct {
	Names []string
}

func (e *MissingEntityError) Error() string {
	return "unknown entities: " + strings.Join(e.Names, ", ")
}

// ModelNotTrainedError is returned when no model artifact has been committed yet.
type ModelNotTrainedError struct {
	Dir string
}

func (e *ModelNotTrainedError) Error() string {
	if e.Dir == "" {
		return "model not trained"
	}
	return "model not trained: no artifact committed in " + e.Dir
}

// FeatureMismatchError is returned when a persisted model was fit on a
// different feature-column list than the current fused dataset provides.
type FeatureMismatchError struct {
	Expected []string
	Actual   []string
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature columns mismatch: model has %d columns, dataset has %d; retrain required",
		len(e.Expected), len(e.Actual))
}

// TrainingFailure aborts a training run before any artifact is written.
type TrainingFailure struct {
	Reason string
}

func (e *TrainingFailure) Error() string {
	return "training failed: " + e.Reason
}

// TrainingTimeout is returned when a training run exceeds its deadline.
type TrainingTimeout struct {
	Elapsed time.Duration
}

func (e *TrainingTimeout) Error() string {
	return fmt.Sprintf("training timed out after %s", e.Elapsed.Round(time.Millisecond))
}
