package som

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cells initializes the network with the given reference vectors in row-major order.
func cells(vv ...Vector) Initializer {
	return func(refs *Matrix[Vector], dim int, samples []Vector) error {
		for i, v := range vv {
			refs.Set(refs.Position(i), v.Copy())
		}
		return nil
	}
}

// clusters generates points around the corners of the unit square.
func clusters(n int) ([]Vector, []int) {
	corners := []Vector{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	offsets := []float64{-0.05, -0.02, 0, 0.02, 0.05}
	samples := make([]Vector, 0)
	labels := make([]int, 0)
	for i := 0; i < n; i++ {
		for c, corner := range corners {
			o := offsets[i%len(offsets)]
			samples = append(samples, Vector{corner[0] + o, corner[1] - o})
			labels = append(labels, c)
		}
	}
	return samples, labels
}

func TestNewNetwork(t *testing.T) {
	_, err := NewNetwork(0, 2, 2)
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, err = NewNetwork(2, 2, 0)
	assert.True(t, errors.Is(err, ErrConfiguration))

	net, err := NewNetwork(3, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, Uninitialized, net.State())
	assert.Equal(t, Vector{1, 1, 1, 1}, net.Weights())

	_, err = net.ClosestRefVectorPosition(Vector{0, 0, 0, 0})
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestNetwork_SetDataWeights(t *testing.T) {
	net, err := NewNetwork(2, 2, 2)
	require.NoError(t, err)

	assert.True(t, errors.Is(net.SetDataWeights(Vector{1}), ErrConfiguration))
	assert.True(t, errors.Is(net.SetDataWeights(Vector{1, -1}), ErrConfiguration))

	w := Vector{0.5, 0.5}
	require.NoError(t, net.SetDataWeights(w))
	w[0] = 10
	assert.Equal(t, Vector{0.5, 0.5}, net.Weights())
}

func TestNetwork_Distance(t *testing.T) {
	net, err := NewNetwork(2, 1, 2)
	require.NoError(t, err)
	require.NoError(t, net.SetDataWeights(Vector{0.5, 2}))
	require.NoError(t, net.Initialize(cells(Vector{0, 0}, Vector{1, 2}), nil))

	// 0.5 * 1^2 + 2 * 2^2
	assert.Equal(t, 8.5, net.RefVectorsDistance(Position{0, 0}, Position{1, 0}))
	assert.Equal(t, 8.5, net.RefVectorsDistance(Position{1, 0}, Position{0, 0}))
	assert.Equal(t, 0.0, net.RefVectorsDistance(Position{1, 0}, Position{1, 0}))

	d, err := net.Distance(Vector{1, 0}, Position{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, d)

	_, err = net.Distance(Vector{1}, Position{0, 0})
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestNetwork_ClosestRefVectorPosition(t *testing.T) {
	net, err := NewNetwork(2, 2, 1)
	require.NoError(t, err)
	require.NoError(t, net.Initialize(cells(Vector{0}, Vector{1}, Vector{2}, Vector{3}), nil))

	type test struct {
		input    Vector
		position Position
	}

	tests := map[string]test{
		"exact-first": {
			input:    Vector{0},
			position: Position{0, 0},
		},
		"exact-last": {
			input:    Vector{3},
			position: Position{1, 1},
		},
		"row-major": {
			input:    Vector{2.2},
			position: Position{0, 1},
		},
		"tie-keeps-first": {
			input:    Vector{1.5},
			position: Position{1, 0},
		},
		"outside": {
			input:    Vector{100},
			position: Position{1, 1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := net.ClosestRefVectorPosition(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.position, p)
		})
	}

	_, err = net.ClosestRefVectorPosition(Vector{1, 2})
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestNetwork_ClosestRefVectorPosition_Identical(t *testing.T) {
	net, err := NewNetwork(3, 3, 2)
	require.NoError(t, err)
	require.NoError(t, net.Initialize(ConstInit(0.5), nil))

	p, err := net.ClosestRefVectorPosition(Vector{0.1, 0.9})
	require.NoError(t, err)
	assert.Equal(t, Position{0, 0}, p)
}

func TestNetwork_ClosestRefVectorPosition_Bounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	samples := make([]Vector, 50)
	for i := range samples {
		samples[i] = Vector{rnd.Float64(), rnd.Float64(), rnd.Float64()}
	}

	net, err := NewNetwork(4, 3, 3)
	require.NoError(t, err)
	require.NoError(t, net.Train(samples, 5, DefaultSchedule(4, 3), nil))

	for i := 0; i < 100; i++ {
		v := Vector{rnd.NormFloat64() * 10, rnd.NormFloat64() * 10, rnd.NormFloat64() * 10}
		p, err := net.ClosestRefVectorPosition(v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.X, 0)
		assert.Less(t, p.X, 4)
		assert.GreaterOrEqual(t, p.Y, 0)
		assert.Less(t, p.Y, 3)
	}
}

func TestNetwork_ClosestRefVectorPositionFrom(t *testing.T) {
	net, err := NewNetwork(2, 2, 1)
	require.NoError(t, err)
	// {0,0}=0 {1,0}=1
	// {0,1}=1 {1,1}=2
	require.NoError(t, net.Initialize(cells(Vector{0}, Vector{1}, Vector{1}, Vector{2}), nil))

	visited := NewPositionSet(Position{0, 0})

	// tie between {1,0} and {0,1}, row-major scan picks {1,0}
	p, ok := net.ClosestRefVectorPositionFrom(visited, 1.5)
	require.True(t, ok)
	assert.Equal(t, Position{1, 0}, p)
	visited.Add(p)

	p, ok = net.ClosestRefVectorPositionFrom(visited, 1.5)
	require.True(t, ok)
	assert.Equal(t, Position{0, 1}, p)
	visited.Add(p)

	// {1,1} is 4 away from the anchor
	_, ok = net.ClosestRefVectorPositionFrom(visited, 1.5)
	assert.False(t, ok)

	p, ok = net.ClosestRefVectorPositionFrom(visited, 4)
	require.True(t, ok)
	assert.Equal(t, Position{1, 1}, p)
	visited.Add(p)

	// everything visited
	_, ok = net.ClosestRefVectorPositionFrom(visited, 100)
	assert.False(t, ok)
}

func TestNetwork_ClosestRefVectorPositionFrom_Anchor(t *testing.T) {
	net, err := NewNetwork(3, 1, 1)
	require.NoError(t, err)
	require.NoError(t, net.Initialize(cells(Vector{0}, Vector{1}, Vector{2}), nil))

	// {2,0} is 1 away from the visited {1,0} but 4 away from the anchor
	visited := NewPositionSet(Position{0, 0})
	visited.Add(Position{1, 0})

	_, ok := net.ClosestRefVectorPositionFrom(visited, 1)
	assert.False(t, ok)
}

func TestNetwork_ClosestRefVectorPositionFrom_Properties(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	samples := make([]Vector, 200)
	for i := range samples {
		samples[i] = Vector{rnd.Float64(), rnd.Float64()}
	}

	net, err := NewNetwork(5, 5, 2)
	require.NoError(t, err)
	require.NoError(t, net.Train(samples, 10, DefaultSchedule(5, 5), nil))

	median := net.ComputeRefVectorsDistanceMedian()
	for i := 0; i < 25; i++ {
		anchor := Position{X: i % 5, Y: i / 5}
		visited := NewPositionSet(anchor)
		for {
			p, ok := net.ClosestRefVectorPositionFrom(visited, median)
			if !ok {
				break
			}
			assert.False(t, visited.Has(p))
			assert.LessOrEqual(t, net.RefVectorsDistance(anchor, p), median)
			visited.Add(p)
		}
	}
}

func TestNetwork_DistanceStatistics(t *testing.T) {
	net, err := NewNetwork(3, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, net.ComputeRefVectorsDistanceMean())

	require.NoError(t, net.Initialize(cells(Vector{0}, Vector{1}, Vector{3}), nil))
	// adjacent distances are 1 and 4
	assert.Equal(t, 2.5, net.ComputeRefVectorsDistanceMean())
	assert.Equal(t, 1.0, net.ComputeRefVectorsDistanceMedian())

	grid, err := NewNetwork(2, 2, 1)
	require.NoError(t, err)
	require.NoError(t, grid.Initialize(cells(Vector{0}, Vector{1}, Vector{2}, Vector{4}), nil))
	// right : 1, 4 down : 4, 9
	assert.Equal(t, 4.5, grid.ComputeRefVectorsDistanceMean())
	assert.Equal(t, 4.0, grid.ComputeRefVectorsDistanceMedian())
}

func TestNetwork_DistanceStatistics_Degenerate(t *testing.T) {
	single, err := NewNetwork(1, 1, 2)
	require.NoError(t, err)
	require.NoError(t, single.Train([]Vector{{0.2, 0.3}}, 3, DefaultSchedule(1, 1), nil))
	assert.Equal(t, 0.0, single.ComputeRefVectorsDistanceMean())
	assert.Equal(t, 0.0, single.ComputeRefVectorsDistanceMedian())

	// zero variance data on a network starting from that same value
	flat, err := NewNetwork(3, 3, 2)
	require.NoError(t, err)
	require.NoError(t, flat.Initialize(ConstInit(0), nil))
	require.NoError(t, flat.Train([]Vector{{0, 0}, {0, 0}}, 5, DefaultSchedule(3, 3), nil))
	assert.Equal(t, 0.0, flat.ComputeRefVectorsDistanceMean())

	trained, err := NewNetwork(3, 3, 2)
	require.NoError(t, err)
	samples, _ := clusters(5)
	require.NoError(t, trained.Train(samples, 5, DefaultSchedule(3, 3), nil))
	assert.Greater(t, trained.ComputeRefVectorsDistanceMean(), 0.0)
	assert.Greater(t, trained.ComputeRefVectorsDistanceMedian(), 0.0)
}

func TestNetwork_Distance_Trained(t *testing.T) {
	samples, _ := clusters(5)

	net, err := NewNetwork(3, 2, 2)
	require.NoError(t, err)
	require.NoError(t, net.SetDataWeights(Vector{0.5, 2}))
	require.NoError(t, net.Train(samples, 10, DefaultSchedule(3, 2), nil))

	weighted := func(a, b Vector) float64 {
		var sum float64
		for d := range a {
			sum += net.Weights()[d] * (a[d] - b[d]) * (a[d] - b[d])
		}
		return sum
	}

	for i := 0; i < 6; i++ {
		a := Position{X: i % 3, Y: i / 3}
		for j := 0; j < 6; j++ {
			b := Position{X: j % 3, Y: j / 3}
			expected := weighted(net.RefVector(a), net.RefVector(b))
			assert.InDelta(t, expected, net.RefVectorsDistance(a, b), 1e-12)
		}
		for _, s := range samples {
			d, err := net.Distance(s, a)
			require.NoError(t, err)
			assert.InDelta(t, weighted(s, net.RefVector(a)), d, 1e-12)
		}
	}

	// the inputs are left untouched by the distance computation
	before := samples[0].Copy()
	_, err = net.ClosestRefVectorPosition(samples[0])
	require.NoError(t, err)
	assert.Equal(t, before, samples[0])

	_, err = net.ClosestRefVectorPosition(Vector{math.NaN(), 0})
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, err = net.Distance(Vector{0, math.Inf(1)}, Position{})
	assert.True(t, errors.Is(err, ErrConfiguration))
}
