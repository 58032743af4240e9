package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/unitematch/unitematch-api/internal/models"
)

// Store persists raw feedback events. Implementations are append-only.
type Store interface {
	// Record stores one row per team member and returns the number of rows written.
	Record(ctx context.Context, team []string, result string, ts time.Time) (int, error)
	ListAll(ctx context.Context) ([]models.FeedbackEvent, error)
}

// buildEvents validates a submission and expands it into one event per
// team member.
func buildEvents(team []string, result string, ts time.Time) ([]models.FeedbackEvent, error) {
	if len(team) == 0 {
		return nil, &models.ValidationError{Field: "team", Message: "must contain at least one name"}
	}
	res := normalizeResult(result)
	if res != models.ResultWin && res != models.ResultLoss {
		return nil, &models.ValidationError{Field: "result", Message: `must be "win" or "loss"`}
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	events := make([]models.FeedbackEvent, 0, len(team))
	for i, name := range team {
		if strings.TrimSpace(name) == "" {
			return nil, &models.ValidationError{Field: "team", Message: fmt.Sprintf("name at position %d is empty", i)}
		}
		events = append(events, models.FeedbackEvent{Name: name, Result: res, Timestamp: ts.UTC()})
	}
	return events, nil
}
