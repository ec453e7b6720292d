package buffer

import (
	"fmt"
	"math"
)

// Stats tracks the extent of a set of numbers.
type Stats struct {
	count    int
	min, max float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set.
func (s *Stats) Push(v float64) {
	s.count++
	if s.min > v {
		s.min = v
	}
	if s.max < v {
		s.max = v
	}
}

// Count returns the number of elements.
func (s Stats) Count() int {
	return s.count
}

// Min returns the smallest element pushed so far.
// NOTE : it is only meaningful once at least one element has been pushed.
func (s Stats) Min() float64 {
	return s.min
}

// Max returns the largest element pushed so far.
func (s Stats) Max() float64 {
	return s.max
}

// StatsCollector is a collection of Stats variables.
// This enables multi-dimensional tracking, one Stats per dimension.
type StatsCollector struct {
	dim   int
	stats []*Stats
}

// NewStatsCollector creates a new Stats collector.
func NewStatsCollector(dim int) *StatsCollector {
	stats := make([]*Stats, dim)
	for i := 0; i < dim; i++ {
		stats[i] = NewStats()
	}
	return &StatsCollector{
		dim:   dim,
		stats: stats,
	}
}

// Push pushes each value to the corresponding dimension.
func (sc *StatsCollector) Push(v ...float64) error {
	if len(v) != sc.dim {
		return fmt.Errorf("inconsistent dimensions %d vs %d", len(v), sc.dim)
	}
	for i := 0; i < len(sc.stats); i++ {
		sc.stats[i].Push(v[i])
	}
	return nil
}

// Stats returns the per-dimension stats.
func (sc StatsCollector) Stats() []*Stats {
	return sc.stats
}
