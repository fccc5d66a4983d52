package window

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newUnopened(options ...WindowBuilderOption) *previewWindow {
	w := &previewWindow{mu: &sync.Mutex{}, width: DefaultWidth, height: DefaultHeight,
		minWidth: DefaultMinWidth, minHeight: DefaultMinHeight}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func TestBuilderOptions(t *testing.T) {
	w := newUnopened(
		WithTitle("Show"),
		WithSize(1920, 0),
		WithMinSize(0, 200),
		WithMaxSize(-5, 2160),
		WithFullscreen(true, 2),
	)
	assert.Equal(t, "Show", w.title)
	assert.Equal(t, 1920, w.width)
	assert.Equal(t, DefaultHeight, w.height)
	assert.Equal(t, 1, w.minWidth)
	assert.Equal(t, 200, w.minHeight)
	assert.Zero(t, w.maxWidth)
	assert.Equal(t, 2160, w.maxHeight)
	assert.True(t, w.fullscreen)
	assert.Equal(t, 2, w.monitor)
}

func TestButtonDispatch(t *testing.T) {
	w := newUnopened()
	var buttons []MouseButton
	var middle []bool
	w.SetMouseButtonCallback(func(b MouseButton, pressed bool, _, _ int32) { buttons = append(buttons, b) })
	w.SetMiddleMouseDownCallback(func(_, _ int32) { middle = append(middle, true) })
	w.SetMiddleMouseUpCallback(func(_, _ int32) { middle = append(middle, false) })

	w.dispatchButton(MouseLeft, true, 0, 0)
	w.dispatchButton(MouseMiddle, true, 1, 1)
	w.dispatchButton(MouseMiddle, false, 2, 2)

	assert.Equal(t, []MouseButton{MouseLeft, MouseMiddle, MouseMiddle}, buttons)
	assert.Equal(t, []bool{true, false}, middle)
}

func TestResizeAndRequests(t *testing.T) {
	w := newUnopened()
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })
	w.setSize(800, 600)
	assert.Equal(t, [2]int{800, 600}, got)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())

	w.SetTitle("Renamed")
	assert.Empty(t, w.title)
	w.drainRequests()
	assert.Equal(t, "Renamed", w.title)
	assert.Empty(t, w.requests)
}

func TestClosedWindow(t *testing.T) {
	w := newUnopened()
	assert.False(t, w.IsRunning())
	assert.ErrorIs(t, w.Close(), ErrClosed)
	assert.Nil(t, w.SurfaceDescriptor())
	w.ToggleFullscreen()
	w.drainRequests()
	assert.False(t, w.Fullscreen())
}
