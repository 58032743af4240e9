package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// InstallDatabase applies the SQL migrations for every configured backend
// @Summary Install Database Schema
// @Description Executes the SQL migrations for the configured feedback store and training log backends
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := make(map[string]string)
	hasError := false
	record := func(db string, err error) {
		if err != nil {
			results[db] = "failed: " + err.Error()
			hasError = true
			return
		}
		results[db] = "success"
	}

	if h.pg != nil {
		record("postgres", h.executeMigrations(ctx, "postgres", func(ctx context.Context, stmt string) error {
			_, err := h.pg.Exec(ctx, stmt)
			return err
		}))
	}
	if h.mysql != nil {
		record("mysql", h.executeMigrations(ctx, "mysql", func(ctx context.Context, stmt string) error {
			_, err := h.mysql.ExecContext(ctx, stmt)
			return err
		}))
	}
	if h.ch != nil {
		record("clickhouse", h.executeMigrations(ctx, "clickhouse", func(ctx context.Context, stmt string) error {
			return h.ch.Exec(ctx, stmt)
		}))
	}

	statusCode := http.StatusOK
	if hasError {
		statusCode = http.StatusInternalServerError
	}

	h.jsonResponse(w, statusCode, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   hasError,
	})
}

// executeMigrations runs every .sql file under migrationsDir/db in name
// order, one statement at a time.
func (h *Handler) executeMigrations(ctx context.Context, db string, exec func(ctx context.Context, stmt string) error) error {
	files, err := filepath.Glob(filepath.Join(h.migrationsDir, db, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			h.logger.Errorw("failed to read schema file", "db", db, "path", path, "error", err)
			return err
		}
		for _, stmt := range strings.Split(string(content), ";") {
			trimmed := strings.TrimSpace(stmt)
			if trimmed == "" {
				continue
			}
			if err := exec(ctx, trimmed); err != nil {
				h.logger.Warnw("statement execution failed", "db", db, "error", err, "statement", trimmed[:min(len(trimmed), 50)]+"...")
				return err
			}
		}
	}

	h.logger.Infow("successfully installed schema", "db", db, "files", len(files))
	return nil
}
