package som

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// adjacentDistances returns the reference vector distance of every pair of 4-adjacent cells,
// each pair counted once (right and down neighbours).
func (n *Network) adjacentDistances() []float64 {
	distances := make([]float64, 0, 2*n.width*n.height)
	for y := 0; y < n.height; y++ {
		for x := 0; x < n.width; x++ {
			p := Position{X: x, Y: y}
			if x+1 < n.width {
				distances = append(distances, n.refDistance(p, Position{X: x + 1, Y: y}))
			}
			if y+1 < n.height {
				distances = append(distances, n.refDistance(p, Position{X: x, Y: y + 1}))
			}
		}
	}
	return distances
}

// ComputeRefVectorsDistanceMean returns the mean distance between adjacent reference vectors.
// A grid without adjacent cells has a mean of 0.
func (n *Network) ComputeRefVectorsDistanceMean() float64 {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	if n.state == Uninitialized {
		return 0
	}
	distances := n.adjacentDistances()
	if len(distances) == 0 {
		return 0
	}
	return stat.Mean(distances, nil)
}

// ComputeRefVectorsDistanceMedian returns the (lower) median distance between adjacent reference vectors.
// A grid without adjacent cells has a median of 0.
func (n *Network) ComputeRefVectorsDistanceMedian() float64 {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	if n.state == Uninitialized {
		return 0
	}
	distances := n.adjacentDistances()
	if len(distances) == 0 {
		return 0
	}
	sort.Float64s(distances)
	return stat.Quantile(0.5, stat.Empirical, distances, nil)
}
