package testutil

import (
	"fmt"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
	"github.com/calvinalkan/slotmap/pkg/slotmap/model"
)

// Operation is a single public-API call applied to both the model and the
// real map.
type Operation interface {
	Name() string
	String() string
}

// OpAdd represents an Add(value) call.
type OpAdd struct {
	Value string
}

// Name returns the operation name.
func (OpAdd) Name() string { return "Add" }
func (operation OpAdd) String() string {
	return fmt.Sprintf("Add(%q)", operation.Value)
}

// OpRemove represents a Remove(handle) call.
type OpRemove struct {
	Handle slotmap.Handle
}

// Name returns the operation name.
func (OpRemove) Name() string { return "Remove" }
func (operation OpRemove) String() string {
	return fmt.Sprintf("Remove(%s)", operation.Handle)
}

// OpGet represents a Get(handle) call.
type OpGet struct {
	Handle slotmap.Handle
}

// Name returns the operation name.
func (OpGet) Name() string { return "Get" }
func (operation OpGet) String() string {
	return fmt.Sprintf("Get(%s)", operation.Handle)
}

// OpLookup represents a Lookup(handle) call.
type OpLookup struct {
	Handle slotmap.Handle
}

// Name returns the operation name.
func (OpLookup) Name() string { return "Lookup" }
func (operation OpLookup) String() string {
	return fmt.Sprintf("Lookup(%s)", operation.Handle)
}

// OpContains represents a Contains(handle) call.
type OpContains struct {
	Handle slotmap.Handle
}

// Name returns the operation name.
func (OpContains) Name() string { return "Contains" }
func (operation OpContains) String() string {
	return fmt.Sprintf("Contains(%s)", operation.Handle)
}

// OpSet represents a Set(handle, value) call.
type OpSet struct {
	Handle slotmap.Handle
	Value  string
}

// Name returns the operation name.
func (OpSet) Name() string { return "Set" }
func (operation OpSet) String() string {
	return fmt.Sprintf("Set(%s, %q)", operation.Handle, operation.Value)
}

// OpLen represents a Len() call.
type OpLen struct{}

// Name returns the operation name.
func (OpLen) Name() string   { return "Len" }
func (OpLen) String() string { return "Len()" }

// OpClear represents a Clear() call.
type OpClear struct{}

// Name returns the operation name.
func (OpClear) Name() string   { return "Clear" }
func (OpClear) String() string { return "Clear()" }

// OpSource produces operations for RunOps. It sees the model so it can pick
// live, dead or forged handles.
type OpSource interface {
	NextOp(state *model.Model[string]) Operation
}

// OpGenConfig tunes OpGenerator.
type OpGenConfig struct {
	// AddPercent is the share of Add operations, 0-100.
	AddPercent int

	// RemovePercent is the share of Remove operations, 0-100.
	RemovePercent int

	// AllowClear enables occasional Clear operations.
	AllowClear bool
}

// DefaultOpGenConfig keeps the map hovering around half full.
func DefaultOpGenConfig() OpGenConfig {
	return OpGenConfig{AddPercent: 35, RemovePercent: 25, AllowClear: true}
}

// FillHeavyOpGenConfig drives the map into its capacity limit.
func FillHeavyOpGenConfig() OpGenConfig {
	return OpGenConfig{AddPercent: 60, RemovePercent: 10, AllowClear: false}
}

// OpGenerator derives operations from a byte stream.
type OpGenerator struct {
	stream *ByteStream
	cfg    OpGenConfig
	values int
}

// NewOpGenerator creates a generator over fuzz or PRNG bytes.
func NewOpGenerator(b []byte, cfg OpGenConfig) *OpGenerator {
	return &OpGenerator{stream: NewByteStream(b), cfg: cfg}
}

// HasMore reports whether the underlying stream has unread bytes.
func (g *OpGenerator) HasMore() bool {
	return g.stream.HasMore()
}

// NextOp returns the next operation.
func (g *OpGenerator) NextOp(state *model.Model[string]) Operation {
	roll := g.stream.NextIndex(100)

	switch {
	case roll < g.cfg.AddPercent:
		return OpAdd{Value: g.nextValue()}
	case roll < g.cfg.AddPercent+g.cfg.RemovePercent:
		return OpRemove{Handle: g.pickHandle(state)}
	}

	switch g.stream.NextIndex(8) {
	case 0, 1:
		return OpGet{Handle: g.pickHandle(state)}
	case 2:
		return OpLookup{Handle: g.pickHandle(state)}
	case 3, 4:
		return OpContains{Handle: g.pickHandle(state)}
	case 5:
		return OpSet{Handle: g.pickHandle(state), Value: g.nextValue()}
	case 6:
		return OpLen{}
	default:
		if g.cfg.AllowClear && g.stream.NextIndex(4) == 0 {
			return OpClear{}
		}

		return OpLen{}
	}
}

func (g *OpGenerator) nextValue() string {
	g.values++

	return fmt.Sprintf("v%d", g.values)
}

// pickHandle prefers live handles, then dead ones, then forged ones.
func (g *OpGenerator) pickHandle(state *model.Model[string]) slotmap.Handle {
	live := state.LiveHandles()
	dead := state.DeadHandles()

	choice := g.stream.NextIndex(10)

	switch {
	case choice < 7 && len(live) > 0:
		return live[g.stream.NextIndex(len(live))]
	case choice < 9 && len(dead) > 0:
		return dead[g.stream.NextIndex(len(dead))]
	default:
		slotIndex := uint32(g.stream.NextIndex(state.Capacity + 2))
		generation := uint32(g.stream.NextIndex(int(state.NextGeneration) + 2))

		return slotmap.HandleFromBits(uint64(generation)<<32 | uint64(slotIndex))
	}
}
