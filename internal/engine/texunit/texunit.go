// Package texunit hands out texture units from a fixed allocation table.
package texunit

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshgl/internal/engine/gpu"
)

// ErrExhausted is returned when every texture unit is in use.
var ErrExhausted = errors.New("no texture unit available")

// Manager tracks which texture units are reserved and which texture each
// bound unit holds. It is owned by the render context and is not safe for
// concurrent use.
type Manager struct {
	dev       gpu.TextureDevice
	allocated []bool
	bound     map[uint32]int
}

// New creates a manager sized to the device's unit count.
func New(dev gpu.TextureDevice) *Manager {
	return &Manager{
		dev:       dev,
		allocated: make([]bool, dev.MaxTextureUnits()),
		bound:     make(map[uint32]int),
	}
}

// Count returns the number of texture units.
func (m *Manager) Count() int { return len(m.allocated) }

// Allocate reserves the lowest free unit.
func (m *Manager) Allocate() (int, error) {
	for i, used := range m.allocated {
		if !used {
			m.allocated[i] = true
			return i, nil
		}
	}
	return -1, ErrExhausted
}

// IsAllocated reports whether unit is reserved.
func (m *Manager) IsAllocated(unit int) bool {
	return unit >= 0 && unit < len(m.allocated) && m.allocated[unit]
}

// Free releases unit. Freeing a unit that is not allocated panics.
func (m *Manager) Free(unit int) {
	if !m.IsAllocated(unit) {
		panic(fmt.Sprintf("texunit: free of unallocated unit %d", unit))
	}
	m.allocated[unit] = false
	for tex, u := range m.bound {
		if u == unit {
			delete(m.bound, tex)
		}
	}
}

// UnitFor returns the unit texture is bound to, allocating and binding a
// unit on first use.
func (m *Manager) UnitFor(texture uint32) (int, error) {
	if u, ok := m.bound[texture]; ok {
		return u, nil
	}
	u, err := m.Allocate()
	if err != nil {
		return -1, fmt.Errorf("texture %d: %w", texture, err)
	}
	m.dev.BindTexture(u, texture)
	m.bound[texture] = u
	return u, nil
}

// ReleaseAll frees every unit, typically at the end of a frame.
func (m *Manager) ReleaseAll() {
	for i := range m.allocated {
		m.allocated[i] = false
	}
	clear(m.bound)
}
