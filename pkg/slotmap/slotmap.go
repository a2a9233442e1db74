package slotmap

import (
	"fmt"
	"iter"
	"slices"
)

// SlotMap is a fixed-capacity container of V values addressed by [Handle].
//
// It keeps three buffers of equal length, allocated once by [New]:
//
//   - slots: the sparse table indexed by handle slot index. Free slots form
//     a singly linked free list; occupied slots point into dense.
//   - dense: live values packed in [0, Len()).
//   - backRef: backRef[i] is the slot that owns dense[i].
//
// Removal moves the last live value into the vacated dense position
// (swap-and-pop), so dense stays contiguous and iteration order may change
// after any Remove.
//
// The zero SlotMap is not usable; construct one with [New].
type SlotMap[V any] struct {
	slots   []slot
	dense   []V
	backRef []uint32

	firstFree      uint32 // head of the free list; len(slots) means none left
	nextGeneration uint32 // bumped on every Add, Remove and Clear
	count          uint32
}

// New returns an empty map that can hold up to capacity values.
//
// New panics with an error wrapping [ErrInvalidCapacity] if capacity is
// below 1 or above [MaxCapacity].
func New[V any](capacity int) *SlotMap[V] {
	if capacity < 1 || capacity > MaxCapacity {
		panic(fmt.Errorf("new with capacity %d (must be 1..%d): %w", capacity, MaxCapacity, ErrInvalidCapacity))
	}

	m := &SlotMap[V]{
		slots:          make([]slot, capacity),
		dense:          make([]V, capacity),
		backRef:        make([]uint32, capacity),
		nextGeneration: firstGeneration,
	}

	for i := range m.slots {
		m.slots[i] = freeSlot(uint32(i)+1, 0)
	}

	return m
}

// Add stores value and returns the handle that now refers to it.
//
// Add panics with an error wrapping [ErrFull] if every slot is in use.
func (m *SlotMap[V]) Add(value V) Handle {
	if m.Full() {
		panic(fmt.Errorf("add: all %d slots in use: %w", len(m.slots), ErrFull))
	}

	slotIndex := m.firstFree
	m.firstFree = m.slots[slotIndex].nextFree()

	generation := m.nextGeneration
	m.slots[slotIndex] = occupiedSlot(m.count, generation)

	m.dense[m.count] = value
	m.backRef[m.count] = slotIndex

	m.count++
	m.nextGeneration++

	return Handle{slot: slotIndex, generation: generation}
}

// Remove deletes the value referred to by h. h and every copy of it become
// permanently invalid.
//
// The last value in iteration order moves into the removed value's position.
//
// Remove panics with an error wrapping [ErrEmpty] if the map is empty, or
// [ErrStaleHandle] if h is not live.
func (m *SlotMap[V]) Remove(h Handle) {
	if m.count == 0 {
		panic(fmt.Errorf("remove %s: %w", h, ErrEmpty))
	}

	if !m.Contains(h) {
		panic(fmt.Errorf("remove %s: %w", h, ErrStaleHandle))
	}

	denseIndex := m.slots[h.slot].denseIndex()
	last := m.count - 1

	if denseIndex != last {
		moved := m.backRef[last]

		m.dense[denseIndex] = m.dense[last]
		m.backRef[denseIndex] = moved
		m.slots[moved] = occupiedSlot(denseIndex, m.slots[moved].generation)
	}

	// Drop the reference so removed values can be collected.
	var zero V
	m.dense[last] = zero

	m.slots[h.slot] = freeSlot(m.firstFree, m.nextGeneration)
	m.firstFree = h.slot

	m.count--
	m.nextGeneration++
}

// Contains reports whether h refers to a live value in m.
//
// It never panics, whatever h holds.
func (m *SlotMap[V]) Contains(h Handle) bool {
	if int(h.slot) >= len(m.slots) {
		return false
	}

	s := m.slots[h.slot]

	return s.isOccupied() && s.generation == h.generation
}

// Get returns a copy of the value referred to by h.
//
// Get panics with an error wrapping [ErrStaleHandle] if h is not live.
func (m *SlotMap[V]) Get(h Handle) V {
	if !m.Contains(h) {
		panic(fmt.Errorf("get %s: %w", h, ErrStaleHandle))
	}

	return m.dense[m.slots[h.slot].denseIndex()]
}

// Lookup returns the value referred to by h and true, or the zero value and
// false if h is not live.
func (m *SlotMap[V]) Lookup(h Handle) (V, bool) {
	if !m.Contains(h) {
		var zero V

		return zero, false
	}

	return m.dense[m.slots[h.slot].denseIndex()], true
}

// Set replaces the value referred to by h. The handle stays valid.
//
// Set panics with an error wrapping [ErrStaleHandle] if h is not live.
func (m *SlotMap[V]) Set(h Handle, value V) {
	if !m.Contains(h) {
		panic(fmt.Errorf("set %s: %w", h, ErrStaleHandle))
	}

	m.dense[m.slots[h.slot].denseIndex()] = value
}

// Len returns the number of live values.
func (m *SlotMap[V]) Len() int { return int(m.count) }

// Cap returns the capacity fixed by [New].
func (m *SlotMap[V]) Cap() int { return len(m.slots) }

// Empty reports whether the map holds no live values.
func (m *SlotMap[V]) Empty() bool { return m.count == 0 }

// Full reports whether every slot is in use, i.e. whether Add would panic.
func (m *SlotMap[V]) Full() bool { return int(m.count) == len(m.slots) }

// Clear removes every value and invalidates every handle issued so far.
//
// It runs in O(capacity). Slot assignment after Clear starts over exactly
// as in a new map, but generations keep counting up, so a handle issued
// before Clear never validates against a slot reused after it.
func (m *SlotMap[V]) Clear() {
	generation := m.nextGeneration

	for i := range m.slots {
		m.slots[i] = freeSlot(uint32(i)+1, generation)
	}

	clear(m.dense[:m.count])

	m.firstFree = 0
	m.count = 0
	m.nextGeneration++
}

// All returns an iterator over the live values in packed order.
//
// The sequence may be restarted at any time. Mutating the map while
// iterating is not supported: Remove relocates values, so a value may be
// skipped or visited twice.
func (m *SlotMap[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for i := range m.count {
			if !yield(m.dense[i]) {
				return
			}
		}
	}
}

// Entries returns an iterator over the live values paired with their
// current handles, in packed order. The same mutation caveat as [SlotMap.All]
// applies.
func (m *SlotMap[V]) Entries() iter.Seq2[Handle, V] {
	return func(yield func(Handle, V) bool) {
		for i := range m.count {
			slotIndex := m.backRef[i]
			h := Handle{slot: slotIndex, generation: m.slots[slotIndex].generation}

			if !yield(h, m.dense[i]) {
				return
			}
		}
	}
}

// Values returns a copy of the live values in packed order.
func (m *SlotMap[V]) Values() []V {
	return slices.Clone(m.dense[:m.count:m.count])
}
