package slotmap

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle identifies one insertion into a [SlotMap].
//
// A Handle is a small comparable value: copy it freely, use it as a map key,
// compare it with ==. It carries no ownership; the map that issued it is the
// only authority on whether it still refers to a live value.
//
// The zero Handle is never issued and is never live.
type Handle struct {
	slot       uint32
	generation uint32
}

// SlotIndex returns the slot the handle refers to.
func (h Handle) SlotIndex() uint32 { return h.slot }

// Generation returns the generation stamped into the handle when it was issued.
func (h Handle) Generation() uint32 { return h.generation }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// Equal reports whether h and other refer to the same insertion.
// It is equivalent to ==; go-cmp picks it up in place of the unexported fields.
func (h Handle) Equal(other Handle) bool { return h == other }

// Bits packs the handle into a uint64 with the generation in the high 32 bits
// and the slot index in the low 32 bits.
func (h Handle) Bits() uint64 {
	return uint64(h.generation)<<32 | uint64(h.slot)
}

// HandleFromBits is the inverse of [Handle.Bits].
//
// The result is not checked against any map. Use [SlotMap.Contains] before
// trusting it.
func HandleFromBits(bits uint64) Handle {
	return Handle{slot: uint32(bits), generation: uint32(bits >> 32)}
}

// String formats the handle as "<slot>v<generation>", e.g. "3v17".
func (h Handle) String() string {
	buf := make([]byte, 0, 24)
	buf = strconv.AppendUint(buf, uint64(h.slot), 10)
	buf = append(buf, 'v')
	buf = strconv.AppendUint(buf, uint64(h.generation), 10)

	return string(buf)
}

// ParseHandle parses the "<slot>v<generation>" form produced by [Handle.String].
//
// Like [HandleFromBits], the result is not checked against any map.
func ParseHandle(s string) (Handle, error) {
	slotPart, genPart, ok := strings.Cut(s, "v")
	if !ok {
		return Handle{}, fmt.Errorf("parse %q: missing 'v' separator: %w", s, ErrInvalidHandle)
	}

	slotIndex, err := strconv.ParseUint(slotPart, 10, 32)
	if err != nil {
		return Handle{}, fmt.Errorf("parse %q: slot index: %w", s, ErrInvalidHandle)
	}

	generation, err := strconv.ParseUint(genPart, 10, 32)
	if err != nil {
		return Handle{}, fmt.Errorf("parse %q: generation: %w", s, ErrInvalidHandle)
	}

	return Handle{slot: uint32(slotIndex), generation: uint32(generation)}, nil
}
