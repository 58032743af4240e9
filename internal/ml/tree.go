package ml

import (
	"sort"
)

// Node is one node of a regression tree. A node with Left < 0 is a leaf.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a binary regression tree stored as a flat node slice rooted at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Leaves returns the number of leaf nodes.
func (t *Tree) Leaves() int {
	n := 0
	for _, node := range t.Nodes {
		if node.Left < 0 {
			n++
		}
	}
	return n
}

type treeConfig struct {
	numLeaves       int
	maxDepth        int // <= 0 means unlimited
	minChildSamples int
	minChildHessian float64
	lambda          float64
	shrinkage       float64
}

type split struct {
	ok        bool
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
}

type openLeaf struct {
	node  int
	rows  []int
	depth int
	best  split
}

// treeGrower fits one tree to per-sample gradients and hessians, growing
// leaf-wise: the leaf with the largest gain is split next.
type treeGrower struct {
	X    [][]float64
	grad []float64
	hess []float64
	cfg  treeConfig
}

func (g *treeGrower) grow(rows []int, splitCounts []float64) *Tree {
	t := &Tree{}
	root := g.newNode(t, rows)
	leaves := []*openLeaf{{node: root, rows: rows, depth: 0}}
	leaves[0].best = g.bestSplit(rows)

	for len(leaves) < g.cfg.numLeaves {
		pick := -1
		for i, l := range leaves {
			if !l.best.ok || l.best.gain <= 0 {
				continue
			}
			if g.cfg.maxDepth > 0 && l.depth >= g.cfg.maxDepth {
				continue
			}
			if pick < 0 || l.best.gain > leaves[pick].best.gain {
				pick = i
			}
		}
		if pick < 0 {
			break
		}

		l := leaves[pick]
		s := l.best
		left := g.newNode(t, s.left)
		right := g.newNode(t, s.right)
		n := &t.Nodes[l.node]
		n.Feature, n.Threshold, n.Left, n.Right = s.feature, s.threshold, left, right
		splitCounts[s.feature]++

		leftLeaf := &openLeaf{node: left, rows: s.left, depth: l.depth + 1, best: g.bestSplit(s.left)}
		rightLeaf := &openLeaf{node: right, rows: s.right, depth: l.depth + 1, best: g.bestSplit(s.right)}
		leaves[pick] = leftLeaf
		leaves = append(leaves, rightLeaf)
	}
	return t
}

func (g *treeGrower) newNode(t *Tree, rows []int) int {
	var sg, sh float64
	for _, r := range rows {
		sg += g.grad[r]
		sh += g.hess[r]
	}
	t.Nodes = append(t.Nodes, Node{
		Feature: -1,
		Left:    -1,
		Right:   -1,
		Value:   -sg / (sh + g.cfg.lambda) * g.cfg.shrinkage,
	})
	return len(t.Nodes) - 1
}

func (g *treeGrower) score(sg, sh float64) float64 {
	return sg * sg / (sh + g.cfg.lambda)
}

// bestSplit scans every feature for the threshold with the largest
// second-order gain.
func (g *treeGrower) bestSplit(rows []int) split {
	best := split{}
	n := len(rows)
	if n < 2*g.cfg.minChildSamples || n < 2 {
		return best
	}

	var totalG, totalH float64
	for _, r := range rows {
		totalG += g.grad[r]
		totalH += g.hess[r]
	}
	parent := g.score(totalG, totalH)

	sorted := make([]int, n)
	nFeatures := len(g.X[rows[0]])
	for f := 0; f < nFeatures; f++ {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(a, b int) bool { return g.X[sorted[a]][f] < g.X[sorted[b]][f] })

		var lg, lh float64
		for i := 0; i < n-1; i++ {
			r := sorted[i]
			lg += g.grad[r]
			lh += g.hess[r]

			cur, next := g.X[r][f], g.X[sorted[i+1]][f]
			if cur == next {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < g.cfg.minChildSamples || nr < g.cfg.minChildSamples {
				continue
			}
			rg, rh := totalG-lg, totalH-lh
			if lh < g.cfg.minChildHessian || rh < g.cfg.minChildHessian {
				continue
			}
			gain := g.score(lg, lh) + g.score(rg, rh) - parent
			if !best.ok || gain > best.gain {
				best = split{ok: true, feature: f, threshold: (cur + next) / 2, gain: gain}
			}
		}
	}
	if !best.ok {
		return best
	}

	for _, r := range rows {
		if g.X[r][best.feature] <= best.threshold {
			best.left = append(best.left, r)
		} else {
			best.right = append(best.right, r)
		}
	}
	return best
}
