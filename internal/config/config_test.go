package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendCSV, cfg.FeedbackBackend)
	assert.Equal(t, 10*time.Minute, cfg.TrainTimeout)
	assert.Equal(t, 0.2, cfg.TestFraction)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.DiagnosticsEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TRAIN_TIMEOUT", "90s")
	t.Setenv("TEST_FRACTION", "0.25")
	t.Setenv("DIAGNOSTICS_ENABLED", "false")
	t.Setenv("FEEDBACK_BACKEND", "Postgres")
	t.Setenv("POSTGRES_URL", "postgres://localhost/unitematch")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.TrainTimeout)
	assert.Equal(t, 0.25, cfg.TestFraction)
	assert.False(t, cfg.DiagnosticsEnabled)
	assert.Equal(t, BackendPostgres, cfg.FeedbackBackend)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"FEEDBACK_BACKEND": "sqlite"}},
		{"postgres without url", map[string]string{"FEEDBACK_BACKEND": "postgres"}},
		{"mysql without dsn", map[string]string{"FEEDBACK_BACKEND": "mysql"}},
		{"test fraction out of range", map[string]string{"TEST_FRACTION": "1.5"}},
		{"single fold", map[string]string{"CV_FOLDS": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("POSTGRES_URL", "")
			t.Setenv("MYSQL_DSN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
