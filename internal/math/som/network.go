package som

import (
	"fmt"
	"math"
	"sync"

	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/viterin/vek"
)

// State is the lifecycle state of a network.
type State int

const (
	// Uninitialized networks have no reference vectors yet.
	Uninitialized State = iota
	// Initialized networks have reference vectors but were never trained.
	Initialized
	// Trained networks completed at least one training run.
	Trained
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Trained:
		return "trained"
	default:
		return "uninitialized"
	}
}

// Network is a self-organizing map of width x height reference vectors.
// Training requires exclusive access; once trained all queries are safe for concurrent use.
type Network struct {
	mutex   *sync.RWMutex
	width   int
	height  int
	dim     int
	weights Vector
	refs    *Matrix[Vector]
	state   State
}

// NewNetwork creates a new network for vectors of the given dimension.
// All dimensions weigh 1 until SetDataWeights is called.
func NewNetwork(width, height, dim int) (*Network, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d: %w", width, height, ErrConfiguration)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d: %w", dim, ErrConfiguration)
	}
	return &Network{
		mutex:   new(sync.RWMutex),
		width:   width,
		height:  height,
		dim:     dim,
		weights: xmath.Const(1)(dim, 0),
		refs:    NewMatrix[Vector](width, height),
	}, nil
}

// Width returns the number of grid columns.
func (n *Network) Width() int {
	return n.width
}

// Height returns the number of grid rows.
func (n *Network) Height() int {
	return n.height
}

// Dim returns the dimension of the vectors.
func (n *Network) Dim() int {
	return n.dim
}

// State returns the current lifecycle state.
func (n *Network) State() State {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.state
}

// SetDataWeights sets the per dimension weights used by the distance.
func (n *Network) SetDataWeights(weights Vector) error {
	if err := CheckDim(weights, n.dim); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	for d, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("invalid weight %f for dimension %d: %w", w, d, ErrConfiguration)
		}
	}
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.weights = weights.Copy()
	return nil
}

// Weights returns a copy of the weight vector.
func (n *Network) Weights() Vector {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.weights.Copy()
}

// Initialize sets the reference vectors with the given initializer.
// It can be called again to reset a trained network.
func (n *Network) Initialize(init Initializer, samples []Vector) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.initialize(init, samples)
}

func (n *Network) initialize(init Initializer, samples []Vector) error {
	refs := NewMatrix[Vector](n.width, n.height)
	if err := init(refs, n.dim, samples); err != nil {
		return fmt.Errorf("could not initialize network: %w", err)
	}
	for i := 0; i < refs.Len(); i++ {
		if err := CheckVector(refs.Get(refs.Position(i)), n.dim); err != nil {
			return fmt.Errorf("invalid reference vector at %v: %w", refs.Position(i), err)
		}
	}
	n.refs = refs
	n.state = Initialized
	return nil
}

// RefVector returns a copy of the reference vector of the given cell.
func (n *Network) RefVector(p Position) Vector {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.refs.Get(p).Copy()
}

// ClosestRefVectorPosition returns the best matching unit for the given normalized vector.
// Cells are scanned row-major, the first cell with the minimal distance wins ties.
func (n *Network) ClosestRefVectorPosition(v Vector) (Position, error) {
	if err := CheckVector(v, n.dim); err != nil {
		return Position{}, err
	}
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	if n.state == Uninitialized {
		return Position{}, fmt.Errorf("network has no reference vectors: %w", ErrNotReady)
	}
	return n.bmu(v, n.newScratch()), nil
}

// Distance returns the weighted distance of the vector to the reference vector of the given cell.
func (n *Network) Distance(v Vector, p Position) (float64, error) {
	if err := CheckVector(v, n.dim); err != nil {
		return 0, err
	}
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.distance(v, n.refs.Get(p), n.newScratch()), nil
}

// RefVectorsDistance returns the weighted distance between the reference vectors of two cells.
func (n *Network) RefVectorsDistance(a, b Position) float64 {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.refDistance(a, b)
}

// ClosestRefVectorPositionFrom returns the cell closest to the anchor of the visited set,
// that is not yet visited and whose reference vector distance to the anchor does not exceed maxDistance.
// Cells are scanned row-major, the first cell with the minimal distance wins ties.
// It returns false if no cell qualifies.
func (n *Network) ClosestRefVectorPositionFrom(visited *PositionSet, maxDistance float64) (Position, bool) {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	anchor := visited.Anchor()
	if !n.refs.Contains(anchor) || n.state == Uninitialized {
		return Position{}, false
	}

	var closest Position
	var found bool
	minDistance := math.MaxFloat64
	for i := 0; i < n.refs.Len(); i++ {
		p := n.refs.Position(i)
		if visited.Has(p) {
			continue
		}
		d := n.refDistance(anchor, p)
		if d > maxDistance {
			continue
		}
		if !found || d < minDistance {
			closest = p
			minDistance = d
			found = true
		}
	}
	return closest, found
}

func (n *Network) refDistance(a, b Position) float64 {
	return n.distance(n.refs.Get(a), n.refs.Get(b), n.newScratch())
}

// scratch holds the buffers of the distance kernel, one per goroutine.
type scratch struct {
	diff     []float64
	weighted []float64
}

func (n *Network) newScratch() *scratch {
	return &scratch{
		diff:     make([]float64, n.dim),
		weighted: make([]float64, n.dim),
	}
}

// bmu scans all cells for the closest reference vector.
func (n *Network) bmu(v Vector, buf *scratch) Position {
	best := 0
	minDistance := math.MaxFloat64
	for i := 0; i < n.refs.Len(); i++ {
		d := n.distance(v, n.refs.cells[i], buf)
		if i == 0 || d < minDistance {
			best = i
			minDistance = d
		}
	}
	return n.refs.Position(best)
}

// distance is the weighted sum of squares sum(w[d] * (v[d]-r[d])^2).
// vek rejects overlapping destination and input, hence the two buffers.
func (n *Network) distance(v, r Vector, buf *scratch) float64 {
	vek.Sub_Into(buf.diff, v, r)
	vek.Mul_Into(buf.weighted, buf.diff, n.weights)
	return vek.Dot(buf.weighted, buf.diff)
}
