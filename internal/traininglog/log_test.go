package traininglog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitematch/unitematch-api/internal/models"
)

func sampleReport(runID string) *models.TrainingReport {
	return &models.TrainingReport{
		RunID:        runID,
		ModelVersion: "20260101T000000.000Z-abcd",
		Algorithm:    "gbdt",
		TrainedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Tuned:        true,
		Accuracy:     0.8,
		F1Weighted:   0.75,
		CVScore:      0.7,
		BestParams:   map[string]any{"num_leaves": 15},
		FeatureImportances: []models.FeatureImportance{
			{Feature: "Offense", Importance: 12},
		},
		TrainSize: 40,
		TestSize:  10,
		SynergyR2: 0.3,
		Duration:  1500 * time.Millisecond,
	}
}

func TestEntryFromReport(t *testing.T) {
	e := EntryFromReport(sampleReport("run-1"))
	assert.Equal(t, `{"num_leaves":15}`, e.Hyperparameters)
	assert.Equal(t, `[{"feature":"Offense","importance":12}]`, e.FeatureImportances)
	assert.Equal(t, int64(1500), e.DurationMS)
	assert.True(t, e.Tuned)
}

func TestCSVLog_AppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_log.csv")
	log := NewCSVLog(path)
	ctx := context.Background()

	empty, err := log.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, log.Append(ctx, EntryFromReport(sampleReport(id))))
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "timestamp,run_id"))

	got, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, "run-3", got[1].RunID)
	assert.Equal(t, 0.8, got[1].Accuracy)
	assert.Equal(t, 40, got[1].TrainSize)
	assert.Equal(t, `{"num_leaves":15}`, got[1].Hyperparameters)

	all, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCSVLog_ConcurrentAppends(t *testing.T) {
	log := NewCSVLog(filepath.Join(t.TempDir(), "log.csv"))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, log.Append(context.Background(), EntryFromReport(sampleReport("run"))))
		}()
	}
	wg.Wait()

	all, err := log.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

type MockBatch struct {
	driver.Batch
	Appended [][]any
	Sent bool
}

func (m *MockBatch) Append(v ...any) error {
	m.Appended = append(m.Appended, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.Sent = true
	return nil
}

type MockConn struct {
	driver.Conn
	PrepareBatchFunc func(ctx context.Context, query string) (driver.Batch, error)
}

func (m *MockConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return m.PrepareBatchFunc(ctx, query)
}

func TestClickHouseLog_Append(t *testing.T) {
	batch := &MockBatch{}
	var gotQuery string
	conn := &MockConn{PrepareBatchFunc: func(ctx context.Context, query string) (driver.Batch, error) {
		gotQuery = query
		return batch, nil
	}}

	err := NewClickHouseLog(conn).Append(context.Background(), EntryFromReport(sampleReport("run-9")))
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "unitematch.training_log")
	assert.True(t, batch.Sent)
	require.Len(t, batch.Appended, 1)
	assert.Len(t, batch.Appended[0], len(csvHeader))
	assert.Equal(t, "run-9", batch.Appended[0][1])
	assert.Equal(t, uint32(40), batch.Appended[0][10])
}

func TestClickHouseLog_PrepareError(t *testing.T) {
	conn := &MockConn{PrepareBatchFunc: func(ctx context.Context, query string) (driver.Batch, error) {
		return nil, errors.New("no route to host")
	}}
	err := NewClickHouseLog(conn).Append(context.Background(), Entry{})
	assert.ErrorContains(t, err, "no route to host")
}

type failingLog struct{ err error }

func (f failingLog) Append(ctx context.Context, e Entry) error { return f.err }

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	csvLog := NewCSVLog(filepath.Join(t.TempDir(), "log.csv"))
	err := Multi{failingLog{boom}, csvLog}.Append(context.Background(), EntryFromReport(sampleReport("r")))
	assert.ErrorIs(t, err, boom)

	all, err := csvLog.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 1, "later logs still receive the entry")
}
