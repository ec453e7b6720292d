package som

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/cdipaolo/goml/cluster"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
)

// Initializer sets the starting reference vectors of a network.
// samples are the (normalized) training vectors and may be empty for data independent initializers.
type Initializer func(refs *Matrix[Vector], dim int, samples []Vector) error

// RandomInit draws every component uniformly from [0,1), the range of normalized data.
// The same seed always produces the same network.
func RandomInit(seed int64) Initializer {
	return func(refs *Matrix[Vector], dim int, samples []Vector) error {
		rnd := rand.New(rand.NewSource(seed))
		for i := 0; i < refs.Len(); i++ {
			v := xmath.Vec(dim)
			for d := range v {
				v[d] = rnd.Float64()
			}
			refs.Set(refs.Position(i), v)
		}
		return nil
	}
}

// ConstInit sets every component of every reference vector to the given value.
func ConstInit(value float64) Initializer {
	return func(refs *Matrix[Vector], dim int, samples []Vector) error {
		for i := 0; i < refs.Len(); i++ {
			refs.Set(refs.Position(i), xmath.Const(value)(dim, i))
		}
		return nil
	}
}

// SampleInit copies training samples into the cells following a seeded permutation.
// If there are fewer samples than cells, samples are reused.
func SampleInit(seed int64) Initializer {
	return func(refs *Matrix[Vector], dim int, samples []Vector) error {
		if len(samples) == 0 {
			return fmt.Errorf("cannot initialize from samples: %w", ErrEmptyCorpus)
		}
		rnd := rand.New(rand.NewSource(seed))
		perm := rnd.Perm(len(samples))
		for i := 0; i < refs.Len(); i++ {
			s := samples[perm[i%len(perm)]]
			if err := CheckDim(s, dim); err != nil {
				return err
			}
			refs.Set(refs.Position(i), s.Copy())
		}
		return nil
	}
}

// KMeansInit seeds the cells with k-means centroids of the samples, one cluster per cell.
// It falls back to a random initialization if there are not enough samples to form the clusters.
// NOTE : the k-means centroid selection is not seeded, so the resulting network is not reproducible.
func KMeansInit(iterations int, seed int64) Initializer {
	return func(refs *Matrix[Vector], dim int, samples []Vector) error {
		k := refs.Len()
		if len(samples) < k {
			log.Warn().
				Int("samples", len(samples)).
				Int("cells", k).
				Msg("not enough samples for k-means initialization, falling back to random")
			return RandomInit(seed)(refs, dim, samples)
		}
		data := make([][]float64, len(samples))
		for i, s := range samples {
			if err := CheckDim(s, dim); err != nil {
				return err
			}
			data[i] = s.Copy()
		}
		model := cluster.NewKMeans(k, iterations, data)
		model.Output = io.Discard
		if err := model.Learn(); err != nil {
			return fmt.Errorf("could not train k-means: %w", err)
		}
		if len(model.Centroids) != k {
			return fmt.Errorf("k-means produced %d centroids for %d cells", len(model.Centroids), k)
		}
		for i, c := range model.Centroids {
			refs.Set(refs.Position(i), xmath.Vec(dim).With(c...))
		}
		return nil
	}
}
