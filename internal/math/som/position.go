package som

import (
	"fmt"

	"github.com/tidwall/btree"
)

// Position is the coordinate of a cell in the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Less orders positions lexicographically on (X, Y).
func (p Position) Less(o Position) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

func (p Position) String() string {
	return fmt.Sprintf("{%d, %d}", p.X, p.Y)
}

// gridDistanceSquared is the squared euclidean distance between two cells on the grid.
func gridDistanceSquared(a, b Position) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return dx*dx + dy*dy
}

// PositionSet is an ordered set of positions anchored at the first position added.
// The anchor is the reference point for the neighbour expansion.
type PositionSet struct {
	anchor Position
	tree   *btree.BTreeG[Position]
}

// NewPositionSet creates a new set containing only the anchor.
func NewPositionSet(anchor Position) *PositionSet {
	set := &PositionSet{
		anchor: anchor,
		tree: btree.NewBTreeG[Position](func(a, b Position) bool {
			return a.Less(b)
		}),
	}
	set.tree.Set(anchor)
	return set
}

// Anchor returns the first position of the set.
func (s *PositionSet) Anchor() Position {
	return s.anchor
}

// Add adds the position and returns false if it was already part of the set.
func (s *PositionSet) Add(p Position) bool {
	_, replaced := s.tree.Set(p)
	return !replaced
}

// Has checks if the position is part of the set.
func (s *PositionSet) Has(p Position) bool {
	_, ok := s.tree.Get(p)
	return ok
}

// Len returns the number of positions in the set.
func (s *PositionSet) Len() int {
	return s.tree.Len()
}

// Positions returns the positions of the set in lexicographic order.
func (s *PositionSet) Positions() []Position {
	positions := make([]Position, 0, s.tree.Len())
	s.tree.Scan(func(p Position) bool {
		positions = append(positions, p)
		return true
	})
	return positions
}
