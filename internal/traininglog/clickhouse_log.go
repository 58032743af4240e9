package traininglog

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseLog appends rows to unitematch.training_log.
type ClickHouseLog struct {
	ch driver.Conn
}

func NewClickHouseLog(ch driver.Conn) *ClickHouseLog {
	return &ClickHouseLog{ch: ch}
}

func (l *ClickHouseLog) Append(ctx context.Context, e Entry) error {
	batch, err := l.ch.PrepareBatch(ctx, `
		INSERT INTO unitematch.training_log (
			timestamp, run_id, model_version, algorithm, tuned,
			accuracy, f1_weighted, cv_score, hyperparameters, feature_importances,
			train_size, test_size, synergy_r2, duration_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare training log insert: %w", err)
	}
	if err := batch.Append(
		e.Timestamp,
		e.RunID,
		e.ModelVersion,
		e.Algorithm,
		e.Tuned,
		e.Accuracy,
		e.F1Weighted,
		e.CVScore,
		e.Hyperparameters,
		e.FeatureImportances,
		uint32(e.TrainSize),
		uint32(e.TestSize),
		e.SynergyR2,
		e.DurationMS,
	); err != nil {
		return fmt.Errorf("append training log row: %w", err)
	}
	return batch.Send()
}

func (l *ClickHouseLog) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := l.ch.Query(ctx, `
		SELECT timestamp, run_id, model_version, algorithm, tuned,
			accuracy, f1_weighted, cv_score, hyperparameters, feature_importances,
			train_size, test_size, synergy_r2, duration_ms
		FROM unitematch.training_log
		ORDER BY timestamp DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                   Entry
			trainSize, testSize uint32
		)
		if err := rows.Scan(
			&e.Timestamp, &e.RunID, &e.ModelVersion, &e.Algorithm, &e.Tuned,
			&e.Accuracy, &e.F1Weighted, &e.CVScore, &e.Hyperparameters, &e.FeatureImportances,
			&trainSize, &testSize, &e.SynergyR2, &e.DurationMS,
		); err != nil {
			return nil, err
		}
		e.TrainSize, e.TestSize = int(trainSize), int(testSize)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// newest first from the query; callers expect oldest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
