// Package window opens the preview window and turns its input events into callbacks.
// All GLFW calls stay on the thread that created the window; other goroutines reach it through
// requests queued for the message loop.
package window

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Default window geometry.
const (
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultMinWidth  = 640
	DefaultMinHeight = 360
)

// Mouse buttons reported to button callbacks.
const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// MouseButton identifies a mouse button.
type MouseButton int

// Window provides the preview surface and its input events.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration on the window thread.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and auto-repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common key codes
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the callback for every mouse button press and release.
	//
	// Parameters:
	//   - callback: function receiving the button, whether it was pressed, and the cursor position
	SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y int32))

	// SetMiddleMouseDownCallback sets the callback for middle mouse button press.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMiddleMouseDownCallback(callback func(x, y int32))

	// SetMiddleMouseUpCallback sets the callback for middle mouse button release.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMiddleMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving mouse x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// SetTitle changes the title bar text. Safe to call from any goroutine.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// ToggleFullscreen switches between the windowed size and fullscreen on the configured
	// monitor. Safe to call from any goroutine.
	ToggleFullscreen()

	// Fullscreen reports whether the window currently covers a monitor.
	Fullscreen() bool

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil after close
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and no close was requested.
	IsRunning() bool

	// Close requests the window to close. Safe to call from any goroutine; the platform window is
	// destroyed when ProcessMessages returns.
	//
	// Returns:
	//   - error: ErrClosed if the window was already destroyed
	Close() error

	// ProcessMessages runs the message loop on the calling thread until the window closes, then
	// destroys the platform window.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// callbacks holds the event handlers. They are read on the window thread only.
type callbacks struct {
	update     func()
	resize     func(width, height int)
	scroll     func(delta float32)
	keyDown    func(keyCode uint32)
	keyUp      func(keyCode uint32)
	button     func(button MouseButton, pressed bool, x, y int32)
	middleDown func(x, y int32)
	middleUp   func(x, y int32)
	mouseMove  func(x, y int32)
}

// previewWindow implements Window on top of GLFW.
type previewWindow struct {
	mu *sync.Mutex

	title      string
	minWidth   int
	minHeight  int
	maxWidth   int // 0 = unlimited
	maxHeight  int
	width      int
	height     int
	monitor    int
	fullscreen bool
	closing    bool

	// windowed geometry restored when leaving fullscreen
	restoreX, restoreY, restoreW, restoreH int

	requests []func()
	cb       callbacks
	platform *platformState
}

var _ Window = &previewWindow{}

// NewWindow opens a window with the specified options.
// Must be called from the thread that later runs ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: a wrapped GLFW initialization or creation error
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &previewWindow{
		mu:        &sync.Mutex{},
		title:     "Projection Mapper",
		minWidth:  DefaultMinWidth,
		minHeight: DefaultMinHeight,
		width:     DefaultWidth,
		height:    DefaultHeight,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *previewWindow) SetUpdateCallback(callback func()) {
	w.cb.update = callback
}

func (w *previewWindow) SetResizeCallback(callback func(width, height int)) {
	w.cb.resize = callback
}

func (w *previewWindow) SetScrollCallback(callback func(delta float32)) {
	w.cb.scroll = callback
}

func (w *previewWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.cb.keyDown = callback
}

func (w *previewWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.cb.keyUp = callback
}

func (w *previewWindow) SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y int32)) {
	w.cb.button = callback
}

func (w *previewWindow) SetMiddleMouseDownCallback(callback func(x, y int32)) {
	w.cb.middleDown = callback
}

func (w *previewWindow) SetMiddleMouseUpCallback(callback func(x, y int32)) {
	w.cb.middleUp = callback
}

func (w *previewWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.cb.mouseMove = callback
}

// request queues fn for the next message loop iteration.
func (w *previewWindow) request(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.requests = append(w.requests, fn)
}

func (w *previewWindow) drainRequests() {
	w.mu.Lock()
	pending := w.requests
	w.requests = nil
	w.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (w *previewWindow) SetTitle(title string) {
	w.request(func() {
		w.mu.Lock()
		w.title = title
		w.mu.Unlock()
		w.applyTitle(title)
	})
}

func (w *previewWindow) ToggleFullscreen() {
	w.request(w.toggleFullscreen)
}

func (w *previewWindow) Fullscreen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fullscreen
}

func (w *previewWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return w.surfaceDescriptor()
}

func (w *previewWindow) IsRunning() bool {
	w.mu.Lock()
	closing := w.closing
	w.mu.Unlock()
	return !closing && w.platformOpen()
}

func (w *previewWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.platform == nil {
		return ErrClosed
	}
	w.closing = true
	w.platform.requestClose()
	return nil
}

func (w *previewWindow) ProcessMessages() {
	defer w.destroy()
	for w.IsRunning() {
		w.poll()
		w.drainRequests()
		if w.cb.update != nil {
			w.cb.update()
		}
	}
}

func (w *previewWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *previewWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// setSize records a framebuffer size reported by the platform.
func (w *previewWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	if w.cb.resize != nil {
		w.cb.resize(width, height)
	}
}

func (w *previewWindow) dispatchButton(button MouseButton, pressed bool, x, y int32) {
	if w.cb.button != nil {
		w.cb.button(button, pressed, x, y)
	}
	if button != MouseMiddle {
		return
	}
	if pressed && w.cb.middleDown != nil {
		w.cb.middleDown(x, y)
	}
	if !pressed && w.cb.middleUp != nil {
		w.cb.middleUp(x, y)
	}
}
