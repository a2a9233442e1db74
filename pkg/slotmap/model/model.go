// Package model provides a deliberately simple, in-memory model of slotmap's
// publicly observable behavior.
//
// The model is intentionally easy to audit: live values sit in a Go map keyed
// by handle, free slots sit in a plain stack, and nothing is packed or moved.
// It reports contract violations as errors instead of panicking, so tests can
// compare them against the panics of the real implementation.
package model

import (
	"cmp"
	"slices"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

// Entry is a live handle and its value.
type Entry[V any] struct {
	Handle slotmap.Handle
	Value  V
}

// Model mirrors a [slotmap.SlotMap] with the same capacity.
type Model[V any] struct {
	Capacity int

	// Live maps every live handle to its value.
	Live map[slotmap.Handle]V

	// Dead records every handle that was issued and later removed or cleared.
	Dead map[slotmap.Handle]bool

	// FreeSlots is a stack of unused slot indices. The last element is the
	// next slot Add hands out; Remove pushes onto the end.
	FreeSlots []uint32

	// NextGeneration is the generation the next Add stamps. Add, Remove and
	// Clear each consume one generation.
	NextGeneration uint32
}

// New validates capacity and returns an empty model.
func New[V any](capacity int) (*Model[V], error) {
	if capacity < 1 || capacity > slotmap.MaxCapacity {
		return nil, slotmap.ErrInvalidCapacity
	}

	m := &Model[V]{
		Capacity:       capacity,
		Live:           make(map[slotmap.Handle]V),
		Dead:           make(map[slotmap.Handle]bool),
		NextGeneration: 1,
	}
	m.resetFreeSlots()

	return m, nil
}

// Clone makes a deep copy so metamorphic tests can fork the exact same state.
func (m *Model[V]) Clone() *Model[V] {
	if m == nil {
		return nil
	}

	live := make(map[slotmap.Handle]V, len(m.Live))
	for h, v := range m.Live {
		live[h] = v
	}

	dead := make(map[slotmap.Handle]bool, len(m.Dead))
	for h := range m.Dead {
		dead[h] = true
	}

	return &Model[V]{
		Capacity:       m.Capacity,
		Live:           live,
		Dead:           dead,
		FreeSlots:      slices.Clone(m.FreeSlots),
		NextGeneration: m.NextGeneration,
	}
}

// Add stores value and returns the handle the real map is expected to issue.
func (m *Model[V]) Add(value V) (slotmap.Handle, error) {
	if len(m.Live) == m.Capacity {
		return slotmap.Handle{}, slotmap.ErrFull
	}

	last := len(m.FreeSlots) - 1
	slotIndex := m.FreeSlots[last]
	m.FreeSlots = m.FreeSlots[:last]

	h := handle(slotIndex, m.NextGeneration)
	m.NextGeneration++
	m.Live[h] = value

	return h, nil
}

// Remove deletes the value for h.
func (m *Model[V]) Remove(h slotmap.Handle) error {
	if len(m.Live) == 0 {
		return slotmap.ErrEmpty
	}

	if _, ok := m.Live[h]; !ok {
		return slotmap.ErrStaleHandle
	}

	delete(m.Live, h)
	m.Dead[h] = true
	m.FreeSlots = append(m.FreeSlots, h.SlotIndex())
	m.NextGeneration++

	return nil
}

// Contains reports whether h is live.
func (m *Model[V]) Contains(h slotmap.Handle) bool {
	_, ok := m.Live[h]

	return ok
}

// Get returns the value for h.
func (m *Model[V]) Get(h slotmap.Handle) (V, error) {
	v, ok := m.Live[h]
	if !ok {
		var zero V

		return zero, slotmap.ErrStaleHandle
	}

	return v, nil
}

// Set replaces the value for h.
func (m *Model[V]) Set(h slotmap.Handle, value V) error {
	if _, ok := m.Live[h]; !ok {
		return slotmap.ErrStaleHandle
	}

	m.Live[h] = value

	return nil
}

// Len returns the number of live values.
func (m *Model[V]) Len() int {
	return len(m.Live)
}

// Clear kills every live handle and restores the initial free slot order.
func (m *Model[V]) Clear() {
	for h := range m.Live {
		m.Dead[h] = true
	}

	m.Live = make(map[slotmap.Handle]V)
	m.resetFreeSlots()
	m.NextGeneration++
}

// Entries returns the live entries sorted by slot index.
//
// The real map iterates in packed order, which the model does not track;
// callers sort both sides before comparing.
func (m *Model[V]) Entries() []Entry[V] {
	entries := make([]Entry[V], 0, len(m.Live))
	for h, v := range m.Live {
		entries = append(entries, Entry[V]{Handle: h, Value: v})
	}

	SortEntries(entries)

	return entries
}

// LiveHandles returns the live handles sorted by slot index.
func (m *Model[V]) LiveHandles() []slotmap.Handle {
	return sortedHandles(m.Live)
}

// DeadHandles returns every dead handle sorted by slot index, then generation.
func (m *Model[V]) DeadHandles() []slotmap.Handle {
	return sortedHandles(m.Dead)
}

// SortEntries sorts entries by slot index, then generation.
func SortEntries[V any](entries []Entry[V]) {
	slices.SortFunc(entries, func(a, b Entry[V]) int {
		return compareHandles(a.Handle, b.Handle)
	})
}

func (m *Model[V]) resetFreeSlots() {
	m.FreeSlots = make([]uint32, 0, m.Capacity)
	for i := m.Capacity - 1; i >= 0; i-- {
		m.FreeSlots = append(m.FreeSlots, uint32(i))
	}
}

func sortedHandles[T any](set map[slotmap.Handle]T) []slotmap.Handle {
	handles := make([]slotmap.Handle, 0, len(set))
	for h := range set {
		handles = append(handles, h)
	}

	slices.SortFunc(handles, compareHandles)

	return handles
}

func compareHandles(a, b slotmap.Handle) int {
	if c := cmp.Compare(a.SlotIndex(), b.SlotIndex()); c != 0 {
		return c
	}

	return cmp.Compare(a.Generation(), b.Generation())
}

func handle(slotIndex, generation uint32) slotmap.Handle {
	return slotmap.HandleFromBits(uint64(generation)<<32 | uint64(slotIndex))
}
