package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitematch_training_runs_total",
		Help: "Training runs by outcome",
	}, []string{"outcome"})

	trainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "unitematch_training_duration_seconds",
		Help:    "Wall time of successful training runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	predictionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitematch_prediction_requests_total",
		Help: "Prediction requests by kind and outcome",
	}, []string{"kind", "outcome"})

	feedbackRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitematch_feedback_rows_total",
		Help: "Feedback rows recorded",
	})
)
