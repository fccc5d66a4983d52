package history

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	value int
}

func incr(c *counter, name string) Action {
	return NewFuncAction(name, func() { c.value++ }, func() { c.value-- })
}

func TestUndoRedo(t *testing.T) {
	c := &counter{}
	h := NewHistory()
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())

	h.Do(incr(c, "a"))
	h.Do(incr(c, "b"))
	assert.Equal(t, 2, c.value)
	assert.Equal(t, 2, h.UndoCount())

	require.True(t, h.Undo())
	assert.Equal(t, 1, c.value)
	assert.True(t, h.CanRedo())

	require.True(t, h.Redo())
	assert.Equal(t, 2, c.value)
	assert.False(t, h.CanRedo())
	assert.True(t, h.CanUndo())
}

func TestPushClearsRedo(t *testing.T) {
	c := &counter{}
	h := NewHistory()
	h.Do(incr(c, "a"))
	h.Undo()
	require.Equal(t, 1, h.RedoCount())

	h.Push(incr(c, "b"))
	assert.Zero(t, h.RedoCount())
	assert.Equal(t, 1, h.UndoCount())
}

func TestUndoStackIsBounded(t *testing.T) {
	c := &counter{}
	h := NewHistory()
	assert.Equal(t, DefaultMaxSize, h.MaxSize())
	for i := range DefaultMaxSize + 5 {
		h.Do(incr(c, fmt.Sprintf("edit %d", i)))
	}
	assert.Equal(t, DefaultMaxSize, h.UndoCount())

	for h.Undo() {
	}
	assert.Equal(t, 5, c.value)

	small := NewHistory(WithMaxSize(2), WithMaxSize(0))
	assert.Equal(t, 2, small.MaxSize())
}

func TestClear(t *testing.T) {
	h := NewHistory()
	h.Push(NewFuncAction("noop", nil, nil))
	h.Undo()
	h.Push(nil)
	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestPropertyActionUsesClampingSetters(t *testing.T) {
	p, err := projector.NewProjector(common.NewIDAllocator(), "panasonic_pt_rq13k", "")
	require.NoError(t, err)
	defer p.Release()

	before := p.Intensity()
	change, ok := CaptureChange(p, property.Intensity, 0.25)
	require.True(t, ok)
	assert.Equal(t, before, change.Old)

	h := NewHistory()
	h.Do(NewPropertyAction("dim", p, change))
	assert.Equal(t, float32(0.25), p.Intensity())

	h.Undo()
	assert.Equal(t, before, p.Intensity())
	h.Redo()
	assert.Equal(t, float32(0.25), p.Intensity())

	_, ok = CaptureChange(p, property.ScaleX, 1)
	assert.False(t, ok)
}
