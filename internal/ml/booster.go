package ml

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/unitematch/unitematch-api/internal/models"
)

// Boosting variants.
const (
	BoostingGBDT = "gbdt"
	BoostingGOSS = "goss"
)

// GOSS keeps the top 20% of samples by gradient and a 10% random draw of the rest.
const (
	gossTopRate   = 0.2
	gossOtherRate = 0.1
)

// Params are the classifier hyperparameters.
type Params struct {
	NumLeaves       int     `json:"num_leaves"`
	LearningRate    float64 `json:"learning_rate"`
	Boosting        string  `json:"boosting"`
	LambdaL2        float64 `json:"lambda_l2"`
	MaxDepth        int     `json:"max_depth"`
	NEstimators     int     `json:"n_estimators"`
	MinChildSamples int     `json:"min_child_samples"`
	Seed            int64   `json:"seed"`
}

// DefaultParams are the fixed hyperparameters used when tuning is off.
func DefaultParams() Params {
	return Params{
		NumLeaves:       15,
		LearningRate:    0.1,
		Boosting:        BoostingGBDT,
		LambdaL2:        1.0,
		MaxDepth:        6,
		NEstimators:     100,
		MinChildSamples: 3,
		Seed:            42,
	}
}

// Map renders the params for reports and logs.
func (p Params) Map() map[string]any {
	return map[string]any{
		"num_leaves":        p.NumLeaves,
		"learning_rate":     p.LearningRate,
		"boosting":          p.Boosting,
		"lambda_l2":         p.LambdaL2,
		"max_depth":         p.MaxDepth,
		"n_estimators":      p.NEstimators,
		"min_child_samples": p.MinChildSamples,
	}
}

func (p Params) validate() error {
	switch {
	case p.NumLeaves < 2:
		return fmt.Errorf("num_leaves must be >= 2")
	case p.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be > 0")
	case p.NEstimators < 1:
		return fmt.Errorf("n_estimators must be >= 1")
	case p.LambdaL2 < 0:
		return fmt.Errorf("lambda_l2 must be >= 0")
	case p.Boosting != BoostingGBDT && p.Boosting != BoostingGOSS:
		return fmt.Errorf("unknown boosting %q", p.Boosting)
	}
	return nil
}

// Booster is a multiclass gradient-boosted tree ensemble with a softmax
// objective. Each iteration adds one tree per class.
type Booster struct {
	Params      Params    `json:"params"`
	NumClass    int       `json:"num_class"`
	NumFeature  int       `json:"num_feature"`
	InitScores  []float64 `json:"init_scores"`
	Trees       [][]*Tree `json:"trees"`
	SplitCounts []float64 `json:"split_counts"`
}

// TrainBooster fits a classifier. ctx is checked between iterations.
func TrainBooster(ctx context.Context, X [][]float64, y []int, numClass int, p Params) (*Booster, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if numClass < 2 {
		return nil, &models.TrainingFailure{Reason: "at least two classes are required"}
	}
	if len(X) == 0 || len(X) != len(y) {
		return nil, fmt.Errorf("booster: %d rows and %d labels", len(X), len(y))
	}
	n, nf := len(X), len(X[0])
	if p.MinChildSamples < 1 {
		p.MinChildSamples = 1
	}

	b := &Booster{
		Params:      p,
		NumClass:    numClass,
		NumFeature:  nf,
		InitScores:  make([]float64, numClass),
		SplitCounts: make([]float64, nf),
	}
	counts := make([]float64, numClass)
	for _, c := range y {
		if c < 0 || c >= numClass {
			return nil, fmt.Errorf("booster: label %d out of range", c)
		}
		counts[c]++
	}
	for k := range counts {
		b.InitScores[k] = math.Log(math.Max(counts[k]/float64(n), 1e-6))
	}

	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = append([]float64(nil), b.InitScores...)
	}

	grad := make([][]float64, numClass)
	hess := make([][]float64, numClass)
	for k := range grad {
		grad[k] = make([]float64, n)
		hess[k] = make([]float64, n)
	}
	factor := float64(numClass) / float64(numClass-1)
	rng := rand.New(rand.NewSource(p.Seed))
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	cfg := treeConfig{
		numLeaves:       p.NumLeaves,
		maxDepth:        p.MaxDepth,
		minChildSamples: p.MinChildSamples,
		minChildHessian: 1e-3,
		lambda:          p.LambdaL2,
		shrinkage:       p.LearningRate,
	}
	// GOSS starts after the first 1/learning_rate iterations.
	gossFrom := int(1 / p.LearningRate)

	for it := 0; it < p.NEstimators; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prob := make([]float64, numClass)
		for i := 0; i < n; i++ {
			softmaxInto(prob, scores[i])
			for k := 0; k < numClass; k++ {
				target := 0.0
				if y[i] == k {
					target = 1
				}
				grad[k][i] = prob[k] - target
				hess[k][i] = math.Max(factor*prob[k]*(1-prob[k]), 1e-16)
			}
		}

		rows := all
		if p.Boosting == BoostingGOSS && it >= gossFrom {
			rows = gossSample(grad, hess, rng)
		}

		trees := make([]*Tree, numClass)
		for k := 0; k < numClass; k++ {
			g := &treeGrower{X: X, grad: grad[k], hess: hess[k], cfg: cfg}
			t := g.grow(rows, b.SplitCounts)
			trees[k] = t
			for i := 0; i < n; i++ {
				scores[i][k] += t.predict(X[i])
			}
		}
		b.Trees = append(b.Trees, trees)
	}
	return b, nil
}

// gossSample keeps the samples with the largest summed absolute gradient
// plus a random share of the rest, whose gradients and hessians are scaled
// up in place to stay unbiased.
func gossSample(grad, hess [][]float64, rng *rand.Rand) []int {
	n := len(grad[0])
	mag := make([]float64, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		order[i] = i
		for k := range grad {
			mag[i] += math.Abs(grad[k][i])
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return mag[order[a]] > mag[order[b]] })

	top := int(float64(n) * gossTopRate)
	if top < 1 {
		top = 1
	}
	other := int(float64(n) * gossOtherRate)
	if other < 1 {
		other = 1
	}
	rest := order[top:]
	if other > len(rest) {
		other = len(rest)
	}

	rows := append([]int(nil), order[:top]...)
	perm := rng.Perm(len(rest))
	weight := (1 - gossTopRate) / gossOtherRate
	for _, p := range perm[:other] {
		i := rest[p]
		for k := range grad {
			grad[k][i] *= weight
			hess[k][i] *= weight
		}
		rows = append(rows, i)
	}
	sort.Ints(rows)
	return rows
}

func softmaxInto(dst, raw []float64) {
	maxv := raw[0]
	for _, v := range raw[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var sum float64
	for k, v := range raw {
		dst[k] = math.Exp(v - maxv)
		sum += dst[k]
	}
	for k := range dst {
		dst[k] /= sum
	}
}

// PredictProba returns class probabilities for one row.
func (b *Booster) PredictProba(x []float64) ([]float64, error) {
	if len(x) != b.NumFeature {
		return nil, fmt.Errorf("booster expects %d features, got %d", b.NumFeature, len(x))
	}
	raw := append([]float64(nil), b.InitScores...)
	for _, trees := range b.Trees {
		for k, t := range trees {
			raw[k] += t.predict(x)
		}
	}
	prob := make([]float64, b.NumClass)
	softmaxInto(prob, raw)
	return prob, nil
}

// Predict returns the most probable class index for one row.
func (b *Booster) Predict(x []float64) (int, error) {
	prob, err := b.PredictProba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for k, p := range prob {
		if p > prob[best] {
			best = k
		}
	}
	return best, nil
}

// PredictAll predicts every row.
func (b *Booster) PredictAll(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		c, err := b.Predict(x)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// FeatureImportance returns the number of splits made on each feature.
func (b *Booster) FeatureImportance() []float64 {
	return append([]float64(nil), b.SplitCounts...)
}
