package logic

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/feedback"
)

type feedbackService struct {
	store  feedback.Store
	logger *zap.SugaredLogger
}

func NewFeedbackService(store feedback.Store, logger *zap.Logger) FeedbackService {
	return &feedbackService{store: store, logger: logger.Sugar()}
}

// Record stores one row per team member. Names are kept as submitted.
func (s *feedbackService) Record(ctx context.Context, team []string, result string, ts time.Time) (int, error) {
	n, err := s.store.Record(ctx, team, result, ts)
	if err != nil {
		return 0, err
	}
	feedbackRows.Add(float64(n))
	s.logger.Infow("Feedback recorded", "entries", n, "result", result)
	return n, nil
}
