package som

import "fmt"

// Matrix is a width x height container addressed by grid positions.
// Cells are stored row-major in a single slice.
type Matrix[T any] struct {
	width  int
	height int
	cells  []T
}

// NewMatrix creates a new matrix with zero valued cells.
func NewMatrix[T any](width, height int) *Matrix[T] {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("invalid matrix size %dx%d", width, height))
	}
	return &Matrix[T]{
		width:  width,
		height: height,
		cells:  make([]T, width*height),
	}
}

// Width returns the number of columns.
func (m *Matrix[T]) Width() int {
	return m.width
}

// Height returns the number of rows.
func (m *Matrix[T]) Height() int {
	return m.height
}

// Len returns the number of cells.
func (m *Matrix[T]) Len() int {
	return len(m.cells)
}

// Contains checks if the position is within the matrix bounds.
func (m *Matrix[T]) Contains(p Position) bool {
	return p.X >= 0 && p.X < m.width && p.Y >= 0 && p.Y < m.height
}

// Index returns the linear index of the position.
func (m *Matrix[T]) Index(p Position) int {
	if !m.Contains(p) {
		panic(fmt.Sprintf("position %v out of bounds %dx%d", p, m.width, m.height))
	}
	return p.Y*m.width + p.X
}

// Position returns the position of the given linear index.
func (m *Matrix[T]) Position(i int) Position {
	return Position{X: i % m.width, Y: i / m.width}
}

// Get returns the value of the cell at the given position.
func (m *Matrix[T]) Get(p Position) T {
	return m.cells[m.Index(p)]
}

// Set sets the value of the cell at the given position.
func (m *Matrix[T]) Set(p Position, v T) {
	m.cells[m.Index(p)] = v
}

// Ref returns a pointer to the cell at the given position.
func (m *Matrix[T]) Ref(p Position) *T {
	return &m.cells[m.Index(p)]
}

// Each iterates over all cells in row-major order until the callback returns false.
func (m *Matrix[T]) Each(fn func(p Position, v T) bool) {
	for i, v := range m.cells {
		if !fn(m.Position(i), v) {
			return
		}
	}
}
