// Package slotmap provides a fixed-capacity slot map with generational handles.
//
// A [SlotMap] stores values in a packed array and hands out [Handle] values
// that stay valid while the value they refer to is live, no matter how the
// packed array is rearranged by removals. A handle becomes invalid the moment
// its value is removed, and stays invalid even when the slot is reused.
//
// # Basic Usage
//
//	m := slotmap.New[string](4)
//
//	foo := m.Add("foo")
//	bar := m.Add("bar")
//
//	m.Get(foo) // "foo"
//
//	m.Remove(bar)
//	m.Contains(bar) // false
//
//	for v := range m.All() {
//	    // packed iteration over live values
//	}
//
// # Complexity
//
// Add, Remove, Contains and Get are O(1). Memory is allocated once by [New]
// and never grows. Clear is O(capacity).
//
// # Generations
//
// One 32-bit counter per map stamps every add, remove and clear, so each
// issued handle carries a generation no earlier handle had. The counter is
// not guarded against wrapping after 2^32 such operations.
//
// # Concurrency
//
// A SlotMap is NOT safe for concurrent use. Callers sharing a map between
// goroutines must serialize every call, for example with one mutex per map.
//
// # Error Handling
//
// Conditions fall into two categories:
//
// Contract violations (Add on a full map, Remove or Get with a stale or
// forged handle, Remove on an empty map) are programming errors and panic.
// The panic value is an error wrapping [ErrFull], [ErrEmpty] or
// [ErrStaleHandle], so a recovered value can be checked with [errors.Is].
//
// Expected negative outcomes are plain values: [SlotMap.Contains] and
// [SlotMap.Lookup] report whether a handle is live without panicking.
// Callers that cannot guarantee handle freshness gate other calls on them.
package slotmap
