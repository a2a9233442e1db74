package testutil

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
	"github.com/calvinalkan/slotmap/pkg/slotmap/model"
)

// DefaultMaxOperations is the default number of operations per deterministic
// run or fuzz iteration.
const DefaultMaxOperations = 300

// RunConfig configures a model-vs-real run.
type RunConfig struct {
	// MaxOps is the maximum number of operations to execute.
	MaxOps int

	// CompareEveryN runs CompareState every N operations (0 to disable).
	// CompareState always runs after Remove and Clear.
	CompareEveryN int

	// Check, if set, runs after every CompareState against the real map.
	// Tests inside package slotmap use it to plug in structural checks.
	Check func(*slotmap.SlotMap[string]) error
}

// Harness holds the model and the real map under test.
//
// Both sides receive the same operation; the harness then compares the
// direct result and the observable state.
type Harness struct {
	Model *model.Model[string]
	Real  *slotmap.SlotMap[string]
}

// NewHarness constructs a harness for the given capacity.
func NewHarness(tb testing.TB, capacity int) *Harness {
	tb.Helper()

	state, err := model.New[string](capacity)
	if err != nil {
		tb.Fatalf("model.New(%d): %v", capacity, err)
	}

	return &Harness{
		Model: state,
		Real:  slotmap.New[string](capacity),
	}
}

// OpResult is the observable outcome of one operation.
//
// Err holds the name of the sentinel error the model returned or the real
// map panicked with.
type OpResult struct {
	Handle slotmap.Handle
	Value  string
	OK     bool
	Len    int
	Err    string
}

// RunOps executes operations from src and compares model and real after each.
func RunOps(tb testing.TB, capacity int, src OpSource, cfg RunConfig) {
	tb.Helper()

	if cfg.MaxOps <= 0 {
		tb.Fatalf("RunOps requires MaxOps > 0")
	}

	harness := NewHarness(tb, capacity)

	for opIndex := 1; opIndex <= cfg.MaxOps; opIndex++ {
		if g, ok := src.(*OpGenerator); ok && !g.HasMore() {
			return
		}

		operation := src.NextOp(harness.Model)

		modelResult := ApplyModel(harness, operation)
		realResult := ApplyReal(harness, operation)

		AssertOpMatch(tb, opIndex, operation, modelResult, realResult)

		if shouldCompare(operation, opIndex, cfg) {
			CompareState(tb, harness)

			if cfg.Check != nil {
				if err := cfg.Check(harness.Real); err != nil {
					tb.Fatalf("op %d %s: invariant broken: %v", opIndex, operation, err)
				}
			}
		}
	}
}

func shouldCompare(operation Operation, opIndex int, cfg RunConfig) bool {
	switch operation.(type) {
	case OpRemove, OpClear:
		return true
	}

	return cfg.CompareEveryN > 0 && opIndex%cfg.CompareEveryN == 0
}

// ApplyModel applies operation to the model.
func ApplyModel(harness *Harness, operation Operation) OpResult {
	state := harness.Model

	switch op := operation.(type) {
	case OpAdd:
		h, err := state.Add(op.Value)

		return OpResult{Handle: h, Len: state.Len(), Err: errName(err)}
	case OpRemove:
		err := state.Remove(op.Handle)

		return OpResult{Len: state.Len(), Err: errName(err)}
	case OpGet:
		v, err := state.Get(op.Handle)

		return OpResult{Value: v, Err: errName(err)}
	case OpLookup:
		v, err := state.Get(op.Handle)

		return OpResult{Value: v, OK: err == nil}
	case OpContains:
		return OpResult{OK: state.Contains(op.Handle)}
	case OpSet:
		err := state.Set(op.Handle, op.Value)

		return OpResult{Err: errName(err)}
	case OpLen:
		return OpResult{Len: state.Len()}
	case OpClear:
		state.Clear()

		return OpResult{Len: state.Len()}
	default:
		panic("testutil: unknown operation " + operation.Name())
	}
}

// ApplyReal applies operation to the real map, turning contract panics into
// error names.
func ApplyReal(harness *Harness, operation Operation) OpResult {
	sm := harness.Real

	var result OpResult

	err := catchContractPanic(func() {
		switch op := operation.(type) {
		case OpAdd:
			result.Handle = sm.Add(op.Value)
			result.Len = sm.Len()
		case OpRemove:
			sm.Remove(op.Handle)
			result.Len = sm.Len()
		case OpGet:
			result.Value = sm.Get(op.Handle)
		case OpLookup:
			result.Value, result.OK = sm.Lookup(op.Handle)
		case OpContains:
			result.OK = sm.Contains(op.Handle)
		case OpSet:
			sm.Set(op.Handle, op.Value)
		case OpLen:
			result.Len = sm.Len()
		case OpClear:
			sm.Clear()
			result.Len = sm.Len()
		default:
			panic("testutil: unknown operation " + operation.Name())
		}
	})
	if err != nil {
		// A failed call has no other observable result; keep Len consistent
		// with the model side, which reports it for mutating ops.
		result = OpResult{Err: errName(err)}

		switch operation.(type) {
		case OpAdd, OpRemove:
			result.Len = sm.Len()
		}
	}

	return result
}

// AssertOpMatch fails the test if model and real results differ.
func AssertOpMatch(tb testing.TB, opIndex int, operation Operation, modelResult, realResult OpResult) {
	tb.Helper()

	if diff := cmp.Diff(modelResult, realResult); diff != "" {
		tb.Fatalf("op %d %s: result mismatch (-model +real):\n%s", opIndex, operation, diff)
	}
}

// CompareState compares the full observable state of model and real map.
func CompareState(tb testing.TB, harness *Harness) {
	tb.Helper()

	state, sm := harness.Model, harness.Real

	if state.Len() != sm.Len() {
		tb.Fatalf("Len mismatch: model=%d real=%d", state.Len(), sm.Len())
	}

	if sm.Empty() != (state.Len() == 0) {
		tb.Fatalf("Empty()=%v with Len()=%d", sm.Empty(), sm.Len())
	}

	if sm.Full() != (state.Len() == state.Capacity) {
		tb.Fatalf("Full()=%v with Len()=%d Cap()=%d", sm.Full(), sm.Len(), sm.Cap())
	}

	var realEntries []model.Entry[string]
	for h, v := range sm.Entries() {
		realEntries = append(realEntries, model.Entry[string]{Handle: h, Value: v})
	}

	model.SortEntries(realEntries)

	if diff := cmp.Diff(state.Entries(), realEntries, cmpopts.EquateEmpty()); diff != "" {
		tb.Fatalf("entries mismatch (-model +real):\n%s", diff)
	}

	values := sm.Values()
	iterated := slices.Collect(sm.All())

	if diff := cmp.Diff(values, iterated, cmpopts.EquateEmpty()); diff != "" {
		tb.Fatalf("All() disagrees with Values() (-values +all):\n%s", diff)
	}

	for _, entry := range realEntries {
		if got := sm.Get(entry.Handle); got != entry.Value {
			tb.Fatalf("Get(%s)=%q, entries reported %q", entry.Handle, got, entry.Value)
		}
	}

	for _, h := range state.DeadHandles() {
		if sm.Contains(h) {
			tb.Fatalf("dead handle %s still validates", h)
		}
	}
}

func catchContractPanic(fn func()) (err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		recoveredErr, ok := recovered.(error)
		if !ok {
			panic(recovered)
		}

		err = recoveredErr
	}()

	fn()

	return nil
}

func errName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, slotmap.ErrFull):
		return "ErrFull"
	case errors.Is(err, slotmap.ErrEmpty):
		return "ErrEmpty"
	case errors.Is(err, slotmap.ErrStaleHandle):
		return "ErrStaleHandle"
	default:
		return "unexpected: " + err.Error()
	}
}
