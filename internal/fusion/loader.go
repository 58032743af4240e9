package fusion

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unitematch/unitematch-api/internal/feedback"
	"github.com/unitematch/unitematch-api/internal/models"
	"github.com/unitematch/unitematch-api/internal/sources"
)

// Loader reads both static sources and the feedback store concurrently and
// fuses them. Sources are re-read on every call.
type Loader struct {
	basePath string
	metaPath string
	store    feedback.Store
	engine   *Engine
	logger   *zap.SugaredLogger
}

func NewLoader(basePath, metaPath string, store feedback.Store, logger *zap.Logger) *Loader {
	return &Loader{
		basePath: basePath,
		metaPath: metaPath,
		store:    store,
		engine:   NewEngine(logger),
		logger:   logger.Sugar(),
	}
}

// Load returns a freshly fused dataset.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	var (
		base   *models.BaseTable
		meta   *models.MetaTable
		events []models.FeedbackEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		base, err = sources.LoadBase(l.basePath)
		return err
	})
	g.Go(func() error {
		var err error
		meta, err = sources.LoadMeta(l.metaPath)
		return err
	})
	if l.store != nil {
		g.Go(func() error {
			var err error
			events, err = l.store.ListAll(gctx)
			if err != nil {
				return fmt.Errorf("list feedback: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg, ok := feedback.Aggregate(events)
	if !ok {
		agg = nil
	}
	return l.engine.Fuse(base, meta, agg)
}
