package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/worker"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Only configured dependencies are checked
	checks := map[string]bool{}
	if h.pg != nil {
		checks["postgres"] = h.pg.Ping(ctx) == nil
	}
	if h.mysql != nil {
		checks["mysql"] = h.mysql.PingContext(ctx) == nil
	}
	if h.ch != nil {
		checks["clickhouse"] = h.ch.Ping(ctx) == nil
	}
	if h.redis != nil {
		checks["redis"] = h.redis.Ping(ctx).Err() == nil
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	depth := 0
	if h.training != nil {
		depth = h.training.QueueDepth()
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"queueDepth": depth,
	})
}

// decodeBody reads a size-limited JSON body into dst and validates it.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return &models.ValidationError{Message: "request body too large"}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &models.ValidationError{Message: "invalid JSON: " + err.Error()}
	}
	return h.validateStruct(dst)
}

// validateStruct turns validator failures into a ValidationError naming
// the first offending field.
func (h *Handler) validateStruct(s interface{}) error {
	err := h.validator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &models.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed %q check", fe.Tag()),
		}
	}
	return &models.ValidationError{Message: err.Error()}
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var (
		validation *models.ValidationError
		missing    *models.MissingEntityError
		notTrained *models.ModelNotTrainedError
		mismatch   *models.FeatureMismatchError
		failure    *models.TrainingFailure
		timeout    *models.TrainingTimeout
		schema     *models.SchemaError
	)
	switch {
	case errors.As(err, &validation):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &missing):
		h.jsonResponse(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error(), Missing: missing.Names})
	case errors.As(err, &notTrained):
		h.errorResponse(w, http.StatusConflict, "Model not trained. Call /train-model first.")
	case errors.As(err, &mismatch):
		h.errorResponse(w, http.StatusConflict, err.Error())
	case errors.As(err, &failure):
		h.logger.Warnw("Training failed", "op", op, "error", err)
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &timeout):
		h.logger.Warnw("Training timed out", "op", op, "elapsed", timeout.Elapsed)
		h.errorResponse(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrStopped):
		h.errorResponse(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &schema):
		h.logger.Errorw("Static source schema error", "op", op, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger.Errorw("Request failed", "op", op, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, models.ErrorResponse{Error: message})
}
