package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoRedoInverse(t *testing.T) {
	s := New("a", 0)
	s.Set("b")
	require.True(t, s.CanUndo())
	require.False(t, s.CanRedo())

	require.True(t, s.Undo())
	assert.Equal(t, "a", s.Current())
	assert.True(t, s.CanRedo())

	require.True(t, s.Redo())
	assert.Equal(t, "b", s.Current())
	assert.False(t, s.CanRedo())
}

func TestUndoRedoEmptyAreNoops(t *testing.T) {
	s := New(1, 0)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.Equal(t, 1, s.Current())
}

func TestSetClearsFuture(t *testing.T) {
	s := New(0, 0)
	s.Set(1)
	s.Set(2)
	s.Undo()
	require.True(t, s.CanRedo())

	s.Set(3)
	assert.False(t, s.CanRedo())
	_, future := s.Len()
	assert.Zero(t, future)
	assert.Equal(t, 3, s.Current())
}

func TestLimitEvictsOldest(t *testing.T) {
	s := New(0, DefaultLimit)
	for i := 1; i <= 60; i++ {
		s.Set(i)
	}
	past, _ := s.Len()
	require.Equal(t, DefaultLimit, past)

	undone := 0
	for s.Undo() {
		undone++
	}
	assert.Equal(t, DefaultLimit, undone)
	// 60 - 50: states 0..9 were evicted.
	assert.Equal(t, 10, s.Current())
}

func TestRedoStackIsCapped(t *testing.T) {
	s := New(0, 3)
	for i := 1; i <= 3; i++ {
		s.Set(i)
	}
	for s.Undo() {
	}
	_, future := s.Len()
	assert.Equal(t, 3, future)
	assert.Equal(t, 0, s.Current())
}

func TestResetClearsStacks(t *testing.T) {
	s := New("x", 0)
	s.Set("y")
	s.Set("z")
	s.Undo()

	s.Reset("fresh")
	assert.Equal(t, "fresh", s.Current())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestCurrentNeverOnStacks(t *testing.T) {
	s := New(0, 5)
	for i := 1; i <= 8; i++ {
		s.Set(i)
	}
	s.Undo()
	s.Undo()
	cur := s.Current()
	for _, v := range s.past {
		assert.NotEqual(t, cur, v)
	}
	for _, v := range s.future {
		assert.NotEqual(t, cur, v)
	}
}

func TestAmendFoldsIntoLatestStep(t *testing.T) {
	s := New("a", 0)
	s.Set("b")
	s.Amend("c")
	assert.Equal(t, "c", s.Current())
	past, future := s.Len()
	assert.Equal(t, 1, past)
	assert.Equal(t, 0, future)

	require.True(t, s.Undo())
	assert.Equal(t, "a", s.Current())
	require.True(t, s.Redo())
	assert.Equal(t, "c", s.Current())

	s.Undo()
	s.Amend("z")
	assert.False(t, s.CanRedo(), "amend clears the future")
}
