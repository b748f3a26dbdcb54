// Package mtime provides monotonically increasing modification timestamps.
//
// Every stamp draws from one process-wide counter, so stamps taken from
// different objects can be compared to decide which change happened last.
package mtime

import "sync/atomic"

var clock atomic.Uint64

// Now returns the current value of the global clock without advancing it.
func Now() uint64 {
	return clock.Load()
}

// Stamp records the last time an object was modified.
// The zero value has never been modified and is older than everything.
type Stamp struct {
	t uint64
}

// Modified advances the stamp to a fresh tick of the global clock.
func (s *Stamp) Modified() {
	s.t = clock.Add(1)
}

// Time returns the tick of the last modification.
func (s Stamp) Time() uint64 {
	return s.t
}

// Older reports whether the stamp predates tick t.
func (s Stamp) Older(t uint64) bool {
	return s.t < t
}
