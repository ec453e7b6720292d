package som

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix_Index(t *testing.T) {
	m := NewMatrix[int](3, 2)

	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.Equal(t, 6, m.Len())

	for i := 0; i < m.Len(); i++ {
		p := m.Position(i)
		assert.True(t, m.Contains(p))
		assert.Equal(t, i, m.Index(p))
	}

	// row-major
	assert.Equal(t, Position{X: 2, Y: 0}, m.Position(2))
	assert.Equal(t, Position{X: 0, Y: 1}, m.Position(3))
}

func TestMatrix_GetSet(t *testing.T) {
	m := NewMatrix[[]string](2, 2)

	p := Position{X: 1, Y: 1}
	m.Set(p, []string{"a"})
	*m.Ref(p) = append(*m.Ref(p), "b")

	assert.Equal(t, []string{"a", "b"}, m.Get(p))
	assert.Nil(t, m.Get(Position{X: 0, Y: 1}))
}

func TestMatrix_Bounds(t *testing.T) {
	m := NewMatrix[int](2, 3)

	assert.False(t, m.Contains(Position{X: 2, Y: 0}))
	assert.False(t, m.Contains(Position{X: 0, Y: 3}))
	assert.False(t, m.Contains(Position{X: -1, Y: 0}))

	assert.Panics(t, func() {
		m.Get(Position{X: 2, Y: 0})
	})
	assert.Panics(t, func() {
		NewMatrix[int](0, 1)
	})
}

func TestMatrix_Each(t *testing.T) {
	m := NewMatrix[int](2, 2)
	for i := 0; i < m.Len(); i++ {
		m.Set(m.Position(i), i*10)
	}

	visited := make([]Position, 0)
	values := make([]int, 0)
	m.Each(func(p Position, v int) bool {
		visited = append(visited, p)
		values = append(values, v)
		return len(visited) < 3
	})

	assert.Equal(t, []Position{{0, 0}, {1, 0}, {0, 1}}, visited)
	assert.Equal(t, []int{0, 10, 20}, values)
}

func TestPositionSet(t *testing.T) {
	set := NewPositionSet(Position{X: 2, Y: 2})

	assert.Equal(t, Position{X: 2, Y: 2}, set.Anchor())
	assert.Equal(t, 1, set.Len())

	assert.True(t, set.Add(Position{X: 0, Y: 5}))
	assert.True(t, set.Add(Position{X: 2, Y: 0}))
	assert.False(t, set.Add(Position{X: 2, Y: 2}))

	assert.True(t, set.Has(Position{X: 0, Y: 5}))
	assert.False(t, set.Has(Position{X: 5, Y: 0}))

	// ordered lexicographically, anchor stays the first one added
	assert.Equal(t, []Position{{0, 5}, {2, 0}, {2, 2}}, set.Positions())
	assert.Equal(t, Position{X: 2, Y: 2}, set.Anchor())
}

func TestPosition_Less(t *testing.T) {
	assert.True(t, Position{X: 0, Y: 9}.Less(Position{X: 1, Y: 0}))
	assert.True(t, Position{X: 1, Y: 0}.Less(Position{X: 1, Y: 1}))
	assert.False(t, Position{X: 1, Y: 1}.Less(Position{X: 1, Y: 1}))
	assert.Equal(t, "{1, 2}", Position{X: 1, Y: 2}.String())
}
