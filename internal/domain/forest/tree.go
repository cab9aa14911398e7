package forest

import (
	"math"
	"math/rand"
	"slices"
)

// Node is one entry of a flattened decision tree. Internal nodes route rows
// with row[Feature] <= Threshold to Left and the rest to Right. Leaves carry
// the fraction of positive training samples that reached them.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a binary classification tree stored as a node slice rooted at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(row []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, ErrNotFitted
	}
	idx := 0
	for range len(t.Nodes) {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value, nil
		}
		if node.Feature < 0 || node.Feature >= len(row) {
			return 0, ErrCorruptTree
		}
		if row[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
		if idx <= 0 || idx >= len(t.Nodes) {
			return 0, ErrCorruptTree
		}
	}
	return 0, ErrCorruptTree
}

func (t *Tree) validate(features int) error {
	if len(t.Nodes) == 0 {
		return ErrNotFitted
	}
	for i, node := range t.Nodes {
		if node.Leaf {
			if node.Value < 0 || node.Value > 1 || math.IsNaN(node.Value) {
				return ErrCorruptTree
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= features {
			return ErrCorruptTree
		}
		// children always follow their parent in the flattened layout
		if node.Left <= i || node.Right <= i || node.Left >= len(t.Nodes) || node.Right >= len(t.Nodes) {
			return ErrCorruptTree
		}
	}
	return nil
}

// grower builds a single tree over a bootstrap sample.
type grower struct {
	rows        [][]float64
	labels      []int
	maxFeatures int
	maxDepth    int
	minSplit    int
	rng         *rand.Rand
	nodes       []Node
}

func (g *grower) grow(sample []int) Tree {
	g.nodes = g.nodes[:0]
	g.build(sample, 0)
	return Tree{Nodes: slices.Clone(g.nodes)}
}

// build appends the subtree for sample and returns its root index.
func (g *grower) build(sample []int, depth int) int {
	idx := len(g.nodes)
	positives := 0
	for _, i := range sample {
		positives += g.labels[i]
	}
	g.nodes = append(g.nodes, Node{
		Feature: -1,
		Left:    -1,
		Right:   -1,
		Value:   float64(positives) / float64(len(sample)),
		Leaf:    true,
	})
	if positives == 0 || positives == len(sample) || len(sample) < g.minSplit {
		return idx
	}
	if g.maxDepth > 0 && depth >= g.maxDepth {
		return idx
	}
	feature, threshold, ok := g.bestSplit(sample, positives)
	if !ok {
		return idx
	}
	left := make([]int, 0, len(sample))
	right := make([]int, 0, len(sample))
	for _, i := range sample {
		if g.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.build(left, depth+1)
	r := g.build(right, depth+1)
	g.nodes[idx] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r, Value: g.nodes[idx].Value}
	return idx
}

// bestSplit draws features in random order and scores every midpoint
// threshold by weighted gini impurity. It keeps drawing past maxFeatures
// until at least one non-constant feature has been examined.
func (g *grower) bestSplit(sample []int, positives int) (int, float64, bool) {
	n := len(sample)
	features := g.rng.Perm(len(g.rows[0]))
	bestFeature, bestThreshold, bestScore := -1, 0.0, math.Inf(1)

	order := slices.Clone(sample)
	visited := 0
	for _, f := range features {
		if visited >= g.maxFeatures && bestFeature >= 0 {
			break
		}
		slices.SortFunc(order, func(a, b int) int {
			switch va, vb := g.rows[a][f], g.rows[b][f]; {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return a - b
		})
		if g.rows[order[0]][f] == g.rows[order[n-1]][f] {
			continue
		}
		visited++

		leftPos := 0
		for k := 0; k < n-1; k++ {
			leftPos += g.labels[order[k]]
			lo, hi := g.rows[order[k]][f], g.rows[order[k+1]][f]
			if lo == hi {
				continue
			}
			leftN := k + 1
			score := weightedGini(leftN, leftPos, n-leftN, positives-leftPos)
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold == hi {
					bestThreshold = lo
				}
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedGini(leftN, leftPos, rightN, rightPos int) float64 {
	total := float64(leftN + rightN)
	return float64(leftN)/total*gini(leftN, leftPos) + float64(rightN)/total*gini(rightN, rightPos)
}

func gini(n, pos int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 1 - p*p - (1-p)*(1-p)
}
