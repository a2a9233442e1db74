package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
	"github.com/calvinalkan/slotmap/pkg/slotmap/model"
)

func newTestModel(t *testing.T, capacity int) *model.Model[string] {
	t.Helper()

	m, err := model.New[string](capacity)
	require.NoError(t, err, "model.New(%d)", capacity)

	return m
}

func Test_Model_New_Returns_Error_When_Capacity_Invalid(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -3, slotmap.MaxCapacity + 1} {
		_, err := model.New[int](capacity)
		require.ErrorIs(t, err, slotmap.ErrInvalidCapacity, "New(%d)", capacity)
	}
}

func Test_Model_Add_Hands_Out_Slots_In_Order_When_Fresh(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, 3)

	for i := range 3 {
		h, err := m.Add("v")
		require.NoError(t, err, "Add %d", i)
		assert.Equal(t, uint32(i), h.SlotIndex(), "slot for add %d", i)
		assert.Equal(t, uint32(i+1), h.Generation(), "generation for add %d", i)
	}

	_, err := m.Add("overflow")
	require.ErrorIs(t, err, slotmap.ErrFull, "Add on full model")
}

func Test_Model_Remove_Returns_Sentinels_When_Contract_Violated(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, 2)

	require.ErrorIs(t, m.Remove(slotmap.Handle{}), slotmap.ErrEmpty, "Remove on empty model")

	h, err := m.Add("x")
	require.NoError(t, err)
	require.NoError(t, m.Remove(h), "Remove live handle")

	_, err = m.Add("keep")
	require.NoError(t, err)

	require.ErrorIs(t, m.Remove(h), slotmap.ErrStaleHandle, "Remove dead handle")
	assert.True(t, m.Dead[h], "removed handle should be recorded dead")
}

func Test_Model_Matches_Reference_Scenario_When_Capacity_Is_Four(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, 4)

	foo, _ := m.Add("foo")
	bar, _ := m.Add("bar")
	require.NoError(t, m.Remove(bar))

	reuse, _ := m.Add("reuse")

	assert.False(t, m.Contains(bar), "bar is dead")
	assert.True(t, m.Contains(foo), "foo is live")
	assert.Equal(t, bar.SlotIndex(), reuse.SlotIndex(), "slot reused")
	assert.Equal(t, uint32(4), reuse.Generation(), "add, add, remove consumed generations 1-3")
}

func Test_Model_Clear_Moves_Live_Handles_To_Dead_When_Called(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, 2)

	a, _ := m.Add("a")
	b, _ := m.Add("b")

	m.Clear()

	assert.Equal(t, 0, m.Len(), "Len after Clear")
	assert.True(t, m.Dead[a], "a dead after Clear")
	assert.True(t, m.Dead[b], "b dead after Clear")

	c, err := m.Add("c")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), c.SlotIndex(), "slot order restarts")
	assert.Equal(t, uint32(4), c.Generation(), "Clear consumes one generation")
}

func Test_Model_Clone_Is_Independent_When_Mutated(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, 3)
	h, _ := m.Add("a")

	clone := m.Clone()

	diff := cmp.Diff(m, clone)
	require.Empty(t, diff, "clone should equal original")

	require.NoError(t, clone.Set(h, "changed"))
	_, err := clone.Add("b")
	require.NoError(t, err)

	v, err := m.Get(h)
	require.NoError(t, err)
	assert.Equal(t, "a", v, "original value unchanged")
	assert.Equal(t, 1, m.Len(), "original Len unchanged")
	assert.Len(t, m.FreeSlots, 2, "original free slots unchanged")
}

func Test_Model_Clone_Returns_Nil_When_Model_Is_Nil(t *testing.T) {
	t.Parallel()

	var m *model.Model[string]

	assert.Nil(t, m.Clone(), "clone of nil model")
}
