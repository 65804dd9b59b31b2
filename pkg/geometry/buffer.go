package geometry

import "fmt"

// Buffer is a fixed-length per-primitive attribute array. Every buffer of an
// adapter has the adapter's primitive count and is never resized, so
// buffers stay index-aligned.
//
// Buffers may be modified between renders but not while a render is in
// flight. Indices outside [0, Len) are a caller error and panic.
type Buffer[T any] struct {
	data []T
}

func newBuffer[T any](n int, fill T) *Buffer[T] {
	b := &Buffer[T]{data: make([]T, n)}
	b.Fill(fill)
	return b
}

// Len returns the fixed number of elements
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Get returns element i
func (b *Buffer[T]) Get(i int) T {
	return b.data[i]
}

// Set replaces element i
func (b *Buffer[T]) Set(i int, v T) {
	b.data[i] = v
}

// SetAll replaces every element; values must have exactly Len elements
func (b *Buffer[T]) SetAll(values []T) error {
	if len(values) != len(b.data) {
		return fmt.Errorf("buffer holds %d elements, got %d", len(b.data), len(values))
	}
	copy(b.data, values)
	return nil
}

// Fill sets every element to v
func (b *Buffer[T]) Fill(v T) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Slice returns the backing array for bulk access. Its length must not change.
func (b *Buffer[T]) Slice() []T {
	return b.data
}
