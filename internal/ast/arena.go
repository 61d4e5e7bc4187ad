package ast

// Arena is an append-only store with 1-based indices; index 0 is the
// invalid id. Nodes are immutable by convention: transforms allocate new
// nodes instead of mutating stored ones.
type Arena[T any] struct {
	data []T
}

// NewArena returns an arena whose backing slice has capacity capHint.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{
		data: make([]T, 0, capHint),
	}
}

// Allocate stores value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	return uint32(len(a.data)) //nolint:gosec // bounded by arena size
}

// Get returns a pointer to the stored node, or nil for index 0.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 {
		return nil
	}
	return &a.data[index-1]
}

func (a *Arena[T]) Len() uint32 {
	return uint32(len(a.data)) //nolint:gosec // bounded by arena size
}
