package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/worker"
)

func newRouter(cfg Config) http.Handler {
	cfg.Logger = zap.NewNop()
	if cfg.Data == nil {
		cfg.Data = &MockDataService{}
	}
	if cfg.Difficulty == nil {
		cfg.Difficulty = &MockDifficultyService{}
	}
	if cfg.Synergy == nil {
		cfg.Synergy = &MockSynergyService{}
	}
	if cfg.Feedback == nil {
		cfg.Feedback = &MockFeedbackService{}
	}
	if cfg.Training == nil {
		cfg.Training = &MockTrainingQueue{}
	}
	r := chi.NewRouter()
	New(cfg).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestOptimizeTeam_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		predictErr     error
		expectedStatus int
		expectMissing  []string
	}{
		{name: "Happy Path", body: `{"team":["pikachu","snorlax"]}`, expectedStatus: http.StatusOK},
		{name: "Invalid JSON", body: `{"team":`, expectedStatus: http.StatusBadRequest},
		{name: "Empty Team", body: `{"team":[]}`, expectedStatus: http.StatusBadRequest},
		{name: "Blank Name", body: `{"team":["pikachu",""]}`, expectedStatus: http.StatusBadRequest},
		{
			name:           "Missing Entities",
			body:           `{"team":["pikachu","ghost","other"]}`,
			predictErr:     &models.MissingEntityError{Names: []string{"Ghost", "Other"}},
			expectedStatus: http.StatusNotFound,
			expectMissing:  []string{"Ghost", "Other"},
		},
		{
			name:           "Not Trained",
			body:           `{"team":["pikachu"]}`,
			predictErr:     &models.ModelNotTrainedError{},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Feature Mismatch",
			body:           `{"team":["pikachu"]}`,
			predictErr:     &models.FeatureMismatchError{},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Schema Error",
			body:           `{"team":["pikachu"]}`,
			predictErr:     &models.SchemaError{Source: "meta", Missing: []string{"Tier"}},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDifficultyService{PredictFunc: func(ctx context.Context, roster []string) ([]models.DifficultyPrediction, error) {
				if tt.predictErr != nil {
					return nil, tt.predictErr
				}
				out := make([]models.DifficultyPrediction, len(roster))
				for i, n := range roster {
					out[i] = models.DifficultyPrediction{Name: n, PredictedDifficulty: "Novice"}
				}
				return out, nil
			}}
			w := do(t, newRouter(Config{Difficulty: svc}), http.MethodPost, "/optimize-team", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				var got []models.DifficultyPrediction
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Len(t, got, 2)
			}
			if tt.expectMissing != nil {
				var got models.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, tt.expectMissing, got.Missing)
			}
		})
	}
}

func TestOptimizeTeam_BodyTooLarge(t *testing.T) {
	body := `{"team":["` + strings.Repeat("a", MaxBodySize) + `"]}`
	w := do(t, newRouter(Config{}), http.MethodPost, "/optimize-team", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrainModel_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
		expectTune     bool
	}{
		{name: "Default", query: "", expectedStatus: http.StatusOK},
		{name: "Tuned", query: "?tune=true", expectedStatus: http.StatusOK, expectTune: true},
		{name: "Bad Tune", query: "?tune=maybe", expectedStatus: http.StatusBadRequest},
		{name: "Failure", err: &models.TrainingFailure{Reason: "one class"}, expectedStatus: http.StatusUnprocessableEntity},
		{name: "Timeout", err: &models.TrainingTimeout{Elapsed: time.Minute}, expectedStatus: http.StatusGatewayTimeout},
		{name: "Queue Full", err: worker.ErrQueueFull, expectedStatus: http.StatusServiceUnavailable},
		{name: "Unexpected", err: errors.New("disk"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTune bool
			q := &MockTrainingQueue{SubmitFunc: func(ctx context.Context, tune bool) (*models.TrainingReport, error) {
				gotTune = tune
				if tt.err != nil {
					return nil, tt.err
				}
				return &models.TrainingReport{Accuracy: 0.9, Labels: []string{"Expert", "Novice"}}, nil
			}}
			w := do(t, newRouter(Config{Training: q}), http.MethodGet, "/train-model"+tt.query, "")
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectTune, gotTune)
			if tt.expectedStatus == http.StatusOK {
				var got models.TrainingReport
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, 0.9, got.Accuracy)
			}
		})
	}
}

func TestSynergyWinRate(t *testing.T) {
	svc := &MockSynergyService{PredictTeamFunc: func(ctx context.Context, roster []string) (*models.SynergyPrediction, error) {
		return &models.SynergyPrediction{Team: roster, AggregateWinRate: 52.5}, nil
	}}
	w := do(t, newRouter(Config{Synergy: svc}), http.MethodPost, "/synergy-winrate", `{"team":["Pikachu","Snorlax"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.SynergyPrediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 52.5, got.AggregateWinRate)
	assert.Equal(t, []string{"Pikachu", "Snorlax"}, got.Team)
}

func TestSuggestTeammates(t *testing.T) {
	var gotLimit int
	svc := &MockSynergyService{SuggestFunc: func(ctx context.Context, roster []string, limit int) ([]models.Suggestion, error) {
		gotLimit = limit
		return []models.Suggestion{{Name: "Blissey", Score: 60}}, nil
	}}
	r := newRouter(Config{Synergy: svc})

	w := do(t, r, http.MethodPost, "/suggest-teammates", `{"team":["Pikachu"],"limit":"3"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, gotLimit)

	w = do(t, r, http.MethodPost, "/suggest-teammates", `{"team":["Pikachu"],"limit":500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitFeedback_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "Win", body: `{"team":["a","b"],"result":"win"}`, expectedStatus: http.StatusCreated},
		{name: "With Timestamp", body: `{"team":["a"],"result":"loss","timestamp":"2024-05-01T10:00:00Z"}`, expectedStatus: http.StatusCreated},
		{name: "Bad Result", body: `{"team":["a"],"result":"draw"}`, expectedStatus: http.StatusBadRequest},
		{name: "Bad Timestamp", body: `{"team":["a"],"result":"win","timestamp":"yesterday"}`, expectedStatus: http.StatusBadRequest},
		{name: "No Team", body: `{"result":"win"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newRouter(Config{}), http.MethodPost, "/feedback", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus == http.StatusCreated {
				var got models.FeedbackResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Greater(t, got.Entries, 0)
			}
		})
	}
}

func TestSubmitFeedback_PassesTimestamp(t *testing.T) {
	var gotTS time.Time
	svc := &MockFeedbackService{RecordFunc: func(ctx context.Context, team []string, result string, ts time.Time) (int, error) {
		gotTS = ts
		return len(team), nil
	}}
	w := do(t, newRouter(Config{Feedback: svc}), http.MethodPost, "/feedback", `{"team":["a"],"result":"win","timestamp":"2024-05-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), gotTS.UTC())
}

func TestDataEndpoints(t *testing.T) {
	data := &MockDataService{
		PreviewFunc: func(ctx context.Context) ([]models.Entity, error) {
			return []models.Entity{{Name: "Pikachu"}, {Name: "Snorlax"}}, nil
		},
	}
	r := newRouter(Config{Data: data})

	w := do(t, r, http.MethodGet, "/data-preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.Entity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)

	w = do(t, r, http.MethodGet, "/features", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndReady(t *testing.T) {
	r := newRouter(Config{Postgres: &MockPostgres{}})

	w := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["ready"])
}

func TestInstallDatabase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "postgres"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "postgres", "001_feedback.sql"),
		[]byte("CREATE TABLE a (id int);\nCREATE INDEX b ON a (id);\n"), 0o644))

	pg := &MockPostgres{}
	w := do(t, newRouter(Config{Postgres: pg, MigrationsDir: dir}), http.MethodPost, "/system/install", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"CREATE TABLE a (id int)", "CREATE INDEX b ON a (id)"}, pg.statements)

	failing := &MockPostgres{ExecFunc: func(ctx context.Context, sql string) error { return errors.New("permission denied") }}
	w = do(t, newRouter(Config{Postgres: failing, MigrationsDir: dir}), http.MethodPost, "/system/install", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
