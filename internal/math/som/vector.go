package som

import (
	"fmt"
	"sort"

	"github.com/drakos74/go-ex-machina/xmath"
)

// Vector is a fixed length numeric descriptor e.g. the acoustic features of a track
// or the reference vector of a grid cell.
type Vector = xmath.Vector

// Group is a named block of consecutive dimensions within a feature vector.
type Group struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Size int    `json:"size" yaml:"size" validate:"gt=0"`
}

// Layout is the ordered list of feature groups making up a feature vector.
type Layout []Group

// Dim returns the total dimension of the vectors described by the layout.
func (l Layout) Dim() int {
	var d int
	for _, g := range l {
		d += g.Size
	}
	return d
}

// Validate checks that the layout describes a usable vector.
func (l Layout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("no feature groups: %w", ErrConfiguration)
	}
	names := make(map[string]struct{}, len(l))
	for _, g := range l {
		if g.Name == "" {
			return fmt.Errorf("feature group without name: %w", ErrConfiguration)
		}
		if g.Size <= 0 {
			return fmt.Errorf("feature group '%s' has size %d: %w", g.Name, g.Size, ErrConfiguration)
		}
		if _, ok := names[g.Name]; ok {
			return fmt.Errorf("duplicate feature group '%s': %w", g.Name, ErrConfiguration)
		}
		names[g.Name] = struct{}{}
	}
	return nil
}

// Sorted returns a copy of the layout ordered by group name.
func (l Layout) Sorted() Layout {
	sorted := make(Layout, len(l))
	copy(sorted, l)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Weights returns the default weight vector for the layout.
// Every dimension of a group weighs 1/size, so that each group contributes equally
// to the distance regardless of its dimensionality.
func (l Layout) Weights() Vector {
	w := xmath.Vec(l.Dim())
	var index int
	for _, g := range l {
		for i := 0; i < g.Size; i++ {
			w[index] = 1 / float64(g.Size)
			index++
		}
	}
	return w
}

// Assemble concatenates the given named features into a single vector following the layout order.
// Groups not part of the layout are ignored.
func (l Layout) Assemble(features map[string][]float64) (Vector, error) {
	v := xmath.Vec(l.Dim())
	var index int
	for _, g := range l {
		values, ok := features[g.Name]
		if !ok {
			return nil, fmt.Errorf("missing feature group '%s': %w", g.Name, ErrConfiguration)
		}
		if len(values) != g.Size {
			return nil, fmt.Errorf("feature group '%s' has %d values instead of %d: %w", g.Name, len(values), g.Size, ErrConfiguration)
		}
		index += copy(v[index:], values)
	}
	return v, nil
}
