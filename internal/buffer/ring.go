package buffer

// Ring is a ring buffer keeping the last x elements.
type Ring[T any] struct {
	index  int
	count  int
	values []T
}

// NewRing creates a new ring with the given buffer size.
func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		panic("ring size must be positive")
	}
	return &Ring[T]{
		values: make([]T, size),
	}
}

// Size returns the number of elements within the ring.
func (r *Ring[T]) Size() int {
	if r.count < len(r.values) {
		return r.count
	}
	return len(r.values)
}

// Push adds an element to the ring, replacing the oldest one if the ring is full.
func (r *Ring[T]) Push(v T) {
	r.values[r.index] = v
	r.index = (r.index + 1) % len(r.values)
	r.count++
}

// Get returns the ring elements, oldest first.
func (r *Ring[T]) Get() []T {
	if r.count < len(r.values) {
		return append([]T{}, r.values[:r.count]...)
	}
	v := make([]T, 0, len(r.values))
	v = append(v, r.values[r.index:]...)
	return append(v, r.values[:r.index]...)
}
