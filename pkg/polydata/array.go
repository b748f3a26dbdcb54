// Package polydata provides the polygonal mesh data model consumed by the
// GPU upload pipeline: typed attribute arrays, cell connectivity lists, and
// per-point or per-cell colors.
package polydata

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// FloatArray is a sequence of fixed-width tuples of floating point values.
type FloatArray interface {
	// Tuples returns the number of tuples.
	Tuples() int
	// Components returns the number of values per tuple.
	Components() int
	// Float32s returns the backing slice when it is already stored as float32.
	Float32s() ([]float32, bool)
	// Tuple narrows tuple i to float32 and writes it into dst.
	// dst must hold at least Components() values.
	Tuple(i int, dst []float32)
}

// Array stores tuples of a single float element type.
type Array[T constraints.Float] struct {
	Data          []T
	NumComponents int
}

// NewArray creates an array of tuples with the given width.
// Panics if len(data) is not a multiple of components.
func NewArray[T constraints.Float](components int, data ...T) *Array[T] {
	if components <= 0 || len(data)%components != 0 {
		panic(fmt.Sprintf("polydata: %d values do not form %d-component tuples", len(data), components))
	}
	return &Array[T]{Data: data, NumComponents: components}
}

// Tuples returns the number of tuples.
func (a *Array[T]) Tuples() int {
	if a == nil || a.NumComponents == 0 {
		return 0
	}
	return len(a.Data) / a.NumComponents
}

// Components returns the tuple width.
func (a *Array[T]) Components() int {
	return a.NumComponents
}

// Float32s returns the backing slice if T is float32.
func (a *Array[T]) Float32s() ([]float32, bool) {
	f, ok := any(a.Data).([]float32)
	return f, ok
}

// Tuple writes tuple i into dst, narrowing to float32.
func (a *Array[T]) Tuple(i int, dst []float32) {
	base := i * a.NumComponents
	for c := 0; c < a.NumComponents; c++ {
		dst[c] = float32(a.Data[base+c])
	}
}

// Append adds one tuple.
func (a *Array[T]) Append(values ...T) {
	if len(values) != a.NumComponents {
		panic(fmt.Sprintf("polydata: tuple of %d values appended to %d-component array", len(values), a.NumComponents))
	}
	a.Data = append(a.Data, values...)
}
