// Package worker runs training jobs on a single background goroutine.
// This decouples HTTP request handling from CPU-bound model fitting, providing:
// - Serialized training runs (one writer for the model artifact and the log)
// - Backpressure via a bounded queue
// - A per-job deadline
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/unitematch/unitematch-api/internal/models"
)

// Prometheus metrics
var (
	jobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitematch_training_jobs_submitted_total",
		Help: "Total number of training jobs accepted into the queue",
	})

	jobsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitematch_training_jobs_rejected_total",
		Help: "Total number of training jobs rejected because the queue was full",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitematch_training_jobs_failed_total",
		Help: "Total number of training jobs that returned an error",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unitematch_training_queue_depth",
		Help: "Current depth of the training queue",
	})

	queueWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "unitematch_training_queue_wait_seconds",
		Help:    "Time jobs spent queued before training started",
		Buckets: prometheus.DefBuckets,
	})
)

var (
	// ErrQueueFull is returned by Submit when the queue has no free slot.
	ErrQueueFull = errors.New("training queue is full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("training queue is stopped")
)

// Trainer runs one training pass.
type Trainer interface {
	Train(ctx context.Context, tune bool) (*models.TrainingReport, error)
}

// Job represents one queued training request
type Job struct {
	Tune      bool
	Timestamp time.Time

	caller context.Context
	result chan jobResult
}

type jobResult struct {
	report *models.TrainingReport
	err    error
}

// PoolConfig configures the training queue
type PoolConfig struct {
	QueueSize int
	Timeout   time.Duration
	Trainer   Trainer
	Logger    *zap.Logger
}

// Pool owns the training queue and its single worker.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new training queue
func NewPool(cfg PoolConfig) *Pool {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutine
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.worker()

	p.logger.Infow("Training queue started",
		"queueSize", p.config.QueueSize,
		"timeout", p.config.Timeout,
	)
}

// Stop cancels the running job, fails queued ones and waits for the worker.
func (p *Pool) Stop() {
	p.logger.Info("Stopping training queue...")

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.logger.Info("Training queue stopped")
}

// Submit enqueues a training job and waits for its result. It never
// blocks on a full queue; ErrQueueFull is returned instead. If ctx ends
// first, Submit returns ctx's error and the job still runs unless it has
// not started yet.
func (p *Pool) Submit(ctx context.Context, tune bool) (*models.TrainingReport, error) {
	job := Job{
		Tune:      tune,
		Timestamp: time.Now(),
		caller:    ctx,
		result:    make(chan jobResult, 1),
	}

	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return nil, ErrStopped
	}
	select {
	case p.jobQueue <- job:
		p.mu.RUnlock()
		jobsSubmitted.Inc()
		queueDepth.Set(float64(len(p.jobQueue)))
	default:
		p.mu.RUnlock()
		jobsRejected.Inc()
		p.logger.Warnw("Training queue full, rejecting job", "tune", tune)
		return nil, ErrQueueFull
	}

	select {
	case res := <-job.result:
		return res.report, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobQueue {
		queueDepth.Set(float64(len(p.jobQueue)))
		job.result <- p.run(job)
	}
}

func (p *Pool) run(job Job) jobResult {
	if err := p.ctx.Err(); err != nil {
		return jobResult{err: ErrStopped}
	}
	if err := job.caller.Err(); err != nil {
		p.logger.Infow("Skipping training job abandoned by caller", "tune", job.Tune)
		return jobResult{err: err}
	}
	queueWait.Observe(time.Since(job.Timestamp).Seconds())

	ctx, cancel := context.WithTimeout(p.ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	report, err := p.config.Trainer.Train(ctx, job.Tune)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &models.TrainingTimeout{Elapsed: time.Since(start)}
		}
		jobsFailed.Inc()
		return jobResult{err: err}
	}
	return jobResult{report: report}
}
