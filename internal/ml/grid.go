package ml

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Grid lists candidate values per hyperparameter. Every combination is tried.
type Grid struct {
	NumLeaves    []int     `json:"num_leaves"`
	LearningRate []float64 `json:"learning_rate"`
	Boosting     []string  `json:"boosting"`
	LambdaL2     []float64 `json:"lambda_l2"`
	MaxDepth     []int     `json:"max_depth"`
	NEstimators  []int     `json:"n_estimators"`
}

func DefaultGrid() Grid {
	return Grid{
		NumLeaves:    []int{7, 15, 31},
		LearningRate: []float64{0.05, 0.1},
		Boosting:     []string{BoostingGBDT, BoostingGOSS},
		LambdaL2:     []float64{0, 1},
		MaxDepth:     []int{4, -1},
		NEstimators:  []int{50, 100},
	}
}

// Expand returns every combination, starting from base for fields the
// grid does not cover. Empty value lists keep base's value.
func (g Grid) Expand(base Params) []Params {
	out := []Params{base}
	expand := func(n int, set func(p *Params, i int)) {
		if n == 0 {
			return
		}
		next := make([]Params, 0, len(out)*n)
		for _, p := range out {
			for i := 0; i < n; i++ {
				q := p
				set(&q, i)
				next = append(next, q)
			}
		}
		out = next
	}
	expand(len(g.NumLeaves), func(p *Params, i int) { p.NumLeaves = g.NumLeaves[i] })
	expand(len(g.LearningRate), func(p *Params, i int) { p.LearningRate = g.LearningRate[i] })
	expand(len(g.Boosting), func(p *Params, i int) { p.Boosting = g.Boosting[i] })
	expand(len(g.LambdaL2), func(p *Params, i int) { p.LambdaL2 = g.LambdaL2[i] })
	expand(len(g.MaxDepth), func(p *Params, i int) { p.MaxDepth = g.MaxDepth[i] })
	expand(len(g.NEstimators), func(p *Params, i int) { p.NEstimators = g.NEstimators[i] })
	return out
}

// SearchResult is the outcome of a grid search.
type SearchResult struct {
	Best      Params
	Score     float64 // mean weighted F1 over folds
	Evaluated int
}

type foldData struct {
	trainX [][]float64
	trainY []int
	testX  [][]float64
	testY  []int
}

// GridSearch scores every combination with stratified k-fold
// cross-validation. Each training fold is oversampled with SMOTE (see
// balanceFold); the held-out fold never is. Ties keep the earliest combination. The search
// stops with ctx's error when ctx is done.
func GridSearch(ctx context.Context, X [][]float64, y []int, numClass int, grid Grid, base Params, k int) (*SearchResult, error) {
	folds, err := StratifiedKFold(y, k, base.Seed)
	if err != nil {
		return nil, err
	}
	data := make([]foldData, len(folds))
	for i, f := range folds {
		trX, trY := Take(X, y, f.Train)
		trX, trY, err = balanceFold(trX, trY, base.Seed)
		if err != nil {
			return nil, err
		}
		teX, teY := Take(X, y, f.Test)
		data[i] = foldData{trainX: trX, trainY: trY, testX: teX, testY: teY}
	}

	combos := grid.Expand(base)
	scores := make([]float64, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range combos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var sum float64
			for _, fd := range data {
				model, err := TrainBooster(gctx, fd.trainX, fd.trainY, numClass, p)
				if err != nil {
					return err
				}
				pred, err := model.PredictAll(fd.testX)
				if err != nil {
					return err
				}
				sum += WeightedF1(fd.testY, pred, numClass)
			}
			scores[i] = sum / float64(len(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return &SearchResult{Best: combos[best], Score: scores[best], Evaluated: len(combos)}, nil
}

// balanceFold oversamples a cross-validation training fold. A class left
// with a single row in the fold is duplicated first so SMOTE has a pair to
// interpolate between.
func balanceFold(X [][]float64, y []int, seed int64) ([][]float64, []int, error) {
	counts := ClassCounts(y)
	for i, c := range y {
		if counts[c] == 1 {
			X = append(X, append([]float64(nil), X[i]...))
			y = append(y, c)
		}
	}
	return SMOTE(X, y, DefaultNeighbors, seed)
}
