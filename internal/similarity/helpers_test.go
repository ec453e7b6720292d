package similarity

import (
	"fmt"
	"testing"

	"github.com/drakos74/free-music/internal/math/som"
	"github.com/drakos74/free-music/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// corners are the cluster centers of the test corpus.
var corners = []som.Vector{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

// opposite maps every cluster to the one on the other side of the square.
var opposite = map[int]int{0: 3, 1: 2, 2: 1, 3: 0}

func id(cluster, i int) string {
	return fmt.Sprintf("%d-%d", cluster, i)
}

// corpus generates n items around every corner of the unit square.
func corpus(n int) []Item {
	offsets := []float64{-0.05, -0.02, 0, 0.02, 0.05}
	items := make([]Item, 0)
	for i := 0; i < n; i++ {
		for c, corner := range corners {
			o := offsets[i%len(offsets)]
			items = append(items, Item{
				ID:       id(c, i),
				Features: som.Vector{corner[0] + o, corner[1] - o},
			})
		}
	}
	return items
}

func testConfig() Config {
	return Config{
		Width:      2,
		Height:     2,
		Iterations: 100,
		Features:   som.Layout{{Name: "xy", Size: 2}},
		Schedule: &som.Schedule{
			LearningRate: som.Span{Start: 0.5, End: 0.01},
			Radius:       som.Span{Start: 1, End: 0.5},
			Decay:        som.Exponential,
		},
		Mode:      som.Online,
		Init:      InitRandom,
		Seed:      1,
		Threshold: ThresholdMedian,
	}
}

func newSearcher(t *testing.T, cfg Config) (*Searcher, *metrics.Metrics) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	s, err := NewSearcher(cfg)
	require.NoError(t, err)
	return s.WithMetrics(m), m
}
