package slotmap

import "errors"

// Sentinel errors used by slotmap.
//
// Contract violations panic with an error wrapping one of these, so
// recovered values can be inspected with [errors.Is]:
//
//	defer func() {
//	    if err, ok := recover().(error); ok && errors.Is(err, slotmap.ErrStaleHandle) {
//	        // caller held a removed handle
//	    }
//	}()
var (
	// ErrFull indicates Add was called with every slot in use.
	//
	// The map never grows. Check [SlotMap.Full] before adding when the
	// number of live values is not otherwise bounded.
	//
	// This is a programming error.
	ErrFull = errors.New("slotmap: full")

	// ErrEmpty indicates Remove was called on a map with no live values.
	//
	// This is a programming error.
	ErrEmpty = errors.New("slotmap: empty")

	// ErrStaleHandle indicates a handle that does not refer to a live value:
	// it was removed, invalidated by Clear, or never issued by this map.
	//
	// Recovery: gate access on [SlotMap.Contains] or use [SlotMap.Lookup].
	ErrStaleHandle = errors.New("slotmap: stale handle")

	// ErrInvalidCapacity indicates [New] was called with a capacity below 1
	// or above [MaxCapacity].
	//
	// This is a programming error.
	ErrInvalidCapacity = errors.New("slotmap: invalid capacity")

	// ErrInvalidHandle indicates a handle string could not be parsed.
	//
	// Returned by [ParseHandle]; never used for panics.
	ErrInvalidHandle = errors.New("slotmap: invalid handle")
)
