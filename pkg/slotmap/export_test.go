package slotmap

import "fmt"

// Export internal checks for testing.
// This file is only compiled during tests.

// CheckInvariantsForTesting walks the free list and the dense/back-ref tables
// and returns a description of the first broken invariant, or nil.
func CheckInvariantsForTesting[V any](m *SlotMap[V]) error {
	capacity := uint32(len(m.slots))

	if len(m.dense) != len(m.slots) || len(m.backRef) != len(m.slots) {
		return fmt.Errorf("buffer lengths differ: slots=%d dense=%d backRef=%d", len(m.slots), len(m.dense), len(m.backRef))
	}

	if m.count > capacity {
		return fmt.Errorf("count %d exceeds capacity %d", m.count, capacity)
	}

	seen := make([]bool, capacity)

	for i := range m.count {
		slotIndex := m.backRef[i]
		if slotIndex >= capacity {
			return fmt.Errorf("backRef[%d]=%d out of range", i, slotIndex)
		}

		if seen[slotIndex] {
			return fmt.Errorf("slot %d owns more than one dense index", slotIndex)
		}

		seen[slotIndex] = true

		s := m.slots[slotIndex]
		if !s.isOccupied() {
			return fmt.Errorf("backRef[%d]=%d points at a free slot", i, slotIndex)
		}

		if s.link != i {
			return fmt.Errorf("slot %d dense index %d, want %d", slotIndex, s.link, i)
		}
	}

	freeLen := uint32(0)

	for next := m.firstFree; next != capacity; {
		if next > capacity {
			return fmt.Errorf("free list link %d out of range", next)
		}

		if seen[next] {
			return fmt.Errorf("slot %d reached twice (free list cycle or occupied)", next)
		}

		seen[next] = true

		s := m.slots[next]
		if s.isOccupied() {
			return fmt.Errorf("free list reaches occupied slot %d", next)
		}

		freeLen++
		next = s.link
	}

	if freeLen+m.count != capacity {
		return fmt.Errorf("free list length %d + count %d != capacity %d", freeLen, m.count, capacity)
	}

	for i, s := range m.slots {
		if s.generation >= m.nextGeneration {
			return fmt.Errorf("slot %d generation %d not below next generation %d", i, s.generation, m.nextGeneration)
		}
	}

	return nil
}

// NextGenerationForTesting returns the generation the next Add will stamp.
func NextGenerationForTesting[V any](m *SlotMap[V]) uint32 {
	return m.nextGeneration
}
