package som

import (
	"fmt"
	"io"

	"github.com/drakos74/free-music/internal/buffer"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
)

// Range is the observed span of values for one dimension.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Degenerate checks if the dimension has no variance.
func (r Range) Degenerate() bool {
	return r.Max == r.Min
}

// DataNormalizer rescales every dimension into [0,1] based on the ranges observed in a corpus.
type DataNormalizer struct {
	dim    int
	ranges []Range
	clip   xmath.Op
}

// NewDataNormalizer creates a new normalizer for vectors of the given dimension.
func NewDataNormalizer(dim int) *DataNormalizer {
	return &DataNormalizer{
		dim:  dim,
		clip: xmath.Clip(0, 1),
	}
}

// ComputeNormalizationFactors records the min and max of each dimension across the corpus.
// Dimensions without variance are kept and will normalize to 0.
func (n *DataNormalizer) ComputeNormalizationFactors(corpus []Vector) error {
	if len(corpus) == 0 {
		return fmt.Errorf("cannot compute normalization factors: %w", ErrEmptyCorpus)
	}
	collector := buffer.NewStatsCollector(n.dim)
	for i, v := range corpus {
		if err := CheckVector(v, n.dim); err != nil {
			return fmt.Errorf("invalid vector at %d: %w", i, err)
		}
		if err := collector.Push(v...); err != nil {
			return fmt.Errorf("could not collect vector at %d: %w", i, err)
		}
	}

	ranges := make([]Range, n.dim)
	for d, stats := range collector.Stats() {
		ranges[d] = Range{
			Min: stats.Min(),
			Max: stats.Max(),
		}
		if ranges[d].Degenerate() {
			log.Warn().
				Int("dimension", d).
				Float64("value", stats.Min()).
				Int("vectors", stats.Count()).
				Msg("degenerate dimension")
		}
	}
	n.ranges = ranges
	return nil
}

// NormalizeData rescales the vector in place.
// Values outside the observed range are clamped to [0,1].
func (n *DataNormalizer) NormalizeData(v Vector) error {
	if n.ranges == nil {
		return fmt.Errorf("normalization factors not computed: %w", ErrNotReady)
	}
	if err := CheckVector(v, n.dim); err != nil {
		return err
	}
	for d, r := range n.ranges {
		if r.Degenerate() {
			v[d] = 0
			continue
		}
		v[d] = n.clip((v[d] - r.Min) / (r.Max - r.Min))
	}
	return nil
}

// Factors returns a copy of the normalization parameters.
func (n *DataNormalizer) Factors() []Range {
	if n.ranges == nil {
		return nil
	}
	ranges := make([]Range, len(n.ranges))
	copy(ranges, n.ranges)
	return ranges
}

// DegenerateDimensions returns the dimensions without variance in the corpus.
func (n *DataNormalizer) DegenerateDimensions() []int {
	dd := make([]int, 0)
	for d, r := range n.ranges {
		if r.Degenerate() {
			dd = append(dd, d)
		}
	}
	return dd
}

// Dump writes the normalization parameters in a human readable form.
func (n *DataNormalizer) Dump(w io.Writer) error {
	for d, r := range n.ranges {
		if _, err := fmt.Fprintf(w, "%d: min = %f, max = %f\n", d, r.Min, r.Max); err != nil {
			return err
		}
	}
	return nil
}
