package slotmap

// slotState is the tag of a slot's link field.
type slotState uint8

const (
	slotFree slotState = iota
	slotOccupied
)

// slot is one entry in the sparse table.
//
// link is interpreted by state: the next free slot index while free, the
// dense index of the slot's value while occupied. Read it only through
// nextFree and denseIndex, which check the tag.
type slot struct {
	link       uint32
	generation uint32
	state      slotState
}

func freeSlot(next, generation uint32) slot {
	return slot{link: next, generation: generation, state: slotFree}
}

func occupiedSlot(dense, generation uint32) slot {
	return slot{link: dense, generation: generation, state: slotOccupied}
}

func (s slot) isOccupied() bool {
	return s.state == slotOccupied
}

func (s slot) nextFree() uint32 {
	if s.state != slotFree {
		panic("slotmap: internal: next free link read from occupied slot")
	}

	return s.link
}

func (s slot) denseIndex() uint32 {
	if s.state != slotOccupied {
		panic("slotmap: internal: dense index read from free slot")
	}

	return s.link
}
