package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/unitematch/unitematch-api/internal/models"
)

// Fold is one train/test partition of a k-fold split.
type Fold struct {
	Train []int
	Test  []int
}

// ClassCounts returns the number of samples per class index.
func ClassCounts(y []int) map[int]int {
	counts := make(map[int]int)
	for _, c := range y {
		counts[c]++
	}
	return counts
}

// byClass groups sample indices by class, each group shuffled with rng.
// Classes are visited in ascending order so the result only depends on seed.
func byClass(y []int, rng *rand.Rand) ([]int, map[int][]int) {
	groups := make(map[int][]int)
	for i, c := range y {
		groups[c] = append(groups[c], i)
	}
	classes := make([]int, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	for _, c := range classes {
		g := groups[c]
		rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
	}
	return classes, groups
}

// StratifiedSplit partitions sample indices so every class keeps roughly
// its share in both halves. Each class needs at least two samples so that
// both halves see it.
func StratifiedSplit(y []int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}
	rng := rand.New(rand.NewSource(seed))
	classes, groups := byClass(y, rng)

	for _, c := range classes {
		g := groups[c]
		if len(g) < 2 {
			return nil, nil, &models.TrainingFailure{
				Reason: fmt.Sprintf("class %d has %d sample(s); stratified split needs at least 2", c, len(g)),
			}
		}
		nTest := int(math.Round(float64(len(g)) * testFraction))
		if nTest < 1 {
			nTest = 1
		}
		if nTest > len(g)-1 {
			nTest = len(g) - 1
		}
		test = append(test, g[:nTest]...)
		train = append(train, g[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// StratifiedKFold deals each class round-robin over k folds.
func StratifiedKFold(y []int, k int, seed int64) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("k-fold needs k >= 2, got %d", k)
	}
	rng := rand.New(rand.NewSource(seed))
	classes, groups := byClass(y, rng)

	assign := make([]int, len(y))
	for _, c := range classes {
		g := groups[c]
		if len(g) < k {
			return nil, &models.TrainingFailure{
				Reason: fmt.Sprintf("class %d has %d sample(s); %d-fold cross-validation needs at least %d", c, len(g), k, k),
			}
		}
		for n, i := range g {
			assign[i] = n % k
		}
	}

	folds := make([]Fold, k)
	for i, f := range assign {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}

// ChooseFolds picks the fold count for cross-validating y, at most limit.
// It prefers the largest k that leaves every class at least two rows in
// each training fold; failing that, the largest k at which every class
// still appears in each held-out fold. It returns 0 when no k >= 2 fits.
func ChooseFolds(y []int, limit int) int {
	counts := ClassCounts(y)
	fits := func(k int, minTrain int) bool {
		for _, n := range counts {
			if n < k || n-(n+k-1)/k < minTrain {
				return false
			}
		}
		return true
	}
	for _, minTrain := range []int{2, 1} {
		for k := limit; k >= 2; k-- {
			if fits(k, minTrain) {
				return k
			}
		}
	}
	return 0
}

// Take returns the rows of X and y at idx.
func Take(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for n, i := range idx {
		xs[n] = X[i]
		ys[n] = y[i]
	}
	return xs, ys
}
