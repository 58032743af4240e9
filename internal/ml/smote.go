package ml

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/unitematch/unitematch-api/internal/models"
)

// DefaultNeighbors is the SMOTE neighbourhood size.
const DefaultNeighbors = 5

// SMOTE oversamples every class up to the size of the largest one by
// interpolating between a sample and one of its k nearest same-class
// neighbours. The input rows are returned first and unchanged; synthetic
// rows are appended after them.
func SMOTE(X [][]float64, y []int, k int, seed int64) ([][]float64, []int, error) {
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("smote: %d rows but %d labels", len(X), len(y))
	}
	if k < 1 {
		k = DefaultNeighbors
	}

	groups := make(map[int][]int)
	for i, c := range y {
		groups[c] = append(groups[c], i)
	}
	classes := make([]int, 0, len(groups))
	target := 0
	for c, g := range groups {
		classes = append(classes, c)
		if len(g) > target {
			target = len(g)
		}
	}
	sort.Ints(classes)

	outX := append([][]float64(nil), X...)
	outY := append([]int(nil), y...)
	rng := rand.New(rand.NewSource(seed))

	for _, c := range classes {
		members := groups[c]
		need := target - len(members)
		if need == 0 {
			continue
		}
		if len(members) < 2 {
			return nil, nil, &models.TrainingFailure{
				Reason: fmt.Sprintf("class %d has %d sample(s); oversampling needs at least 2", c, len(members)),
			}
		}
		kc := k
		if kc > len(members)-1 {
			kc = len(members) - 1
		}
		neighbours := nearestNeighbours(X, members, kc)

		for n := 0; n < need; n++ {
			pick := rng.Intn(len(members))
			base := X[members[pick]]
			other := X[neighbours[pick][rng.Intn(kc)]]
			gap := rng.Float64()

			synth := make([]float64, len(base))
			for j := range base {
				synth[j] = base[j] + gap*(other[j]-base[j])
			}
			outX = append(outX, synth)
			outY = append(outY, c)
		}
	}
	return outX, outY, nil
}

// nearestNeighbours returns, for each member, the row indices of its k
// closest other members by squared Euclidean distance.
func nearestNeighbours(X [][]float64, members []int, k int) [][]int {
	out := make([][]int, len(members))
	type cand struct {
		row  int
		dist float64
	}
	for a, i := range members {
		cands := make([]cand, 0, len(members)-1)
		for _, j := range members {
			if j == i {
				continue
			}
			cands = append(cands, cand{row: j, dist: sqDist(X[i], X[j])})
		}
		sort.SliceStable(cands, func(p, q int) bool { return cands[p].dist < cands[q].dist })
		nn := make([]int, k)
		for n := 0; n < k; n++ {
			nn[n] = cands[n].row
		}
		out[a] = nn
	}
	return out
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}
