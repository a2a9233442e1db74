package slotmap

import "math"

// MaxCapacity is the largest capacity accepted by [New].
//
// Slot indices are uint32 and the free list uses the capacity itself as its
// end-of-list marker, so the capacity must stay representable as both a
// uint32 and an int on 32-bit platforms.
const MaxCapacity = math.MaxInt32

// firstGeneration is the first generation stamped into a handle.
//
// Starting above zero keeps the zero [Handle] permanently invalid.
const firstGeneration uint32 = 1
