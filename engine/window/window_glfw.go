package window

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// platformState holds the GLFW window handle.
type platformState struct {
	once   *sync.Once
	handle *glfw.Window
}

// requestClose flags the window for closing. glfwSetWindowShouldClose may be called from any thread.
func (p *platformState) requestClose() {
	p.handle.SetShouldClose(true)
}

// open initializes GLFW and creates the window with its input callbacks.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func (w *previewWindow) open() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: init glfw: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	var monitor *glfw.Monitor
	width, height := w.width, w.height
	if w.fullscreen {
		m, err := pickMonitor(w.monitor)
		if err != nil {
			glfw.Terminate()
			return err
		}
		mode := m.GetVideoMode()
		monitor, width, height = m, mode.Width, mode.Height
	}

	handle, err := glfw.CreateWindow(width, height, w.title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("window: create: %w", err)
	}
	w.platform = &platformState{once: &sync.Once{}, handle: handle}
	w.restoreW, w.restoreH = w.width, w.height
	w.restoreX, w.restoreY = handle.GetPos()
	w.applySizeLimits()

	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press, glfw.Repeat:
			if w.cb.keyDown != nil {
				w.cb.keyDown(uint32(key))
			}
		case glfw.Release:
			if w.cb.keyUp != nil {
				w.cb.keyUp(uint32(key))
			}
		}
	})

	handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.cb.scroll != nil {
			w.cb.scroll(float32(yoff))
		}
	})

	handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := mouseButtons[button]
		if !ok || action == glfw.Repeat {
			return
		}
		x, y := win.GetCursorPos()
		w.dispatchButton(b, action == glfw.Press, int32(x), int32(y))
	})

	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.cb.mouseMove != nil {
			w.cb.mouseMove(int32(x), int32(y))
		}
	})

	// Framebuffer size differs from window size on high-DPI displays; the surface needs pixels.
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
	})

	fbWidth, fbHeight := handle.GetFramebufferSize()
	w.mu.Lock()
	w.width, w.height = fbWidth, fbHeight
	w.mu.Unlock()

	slog.Info("window: opened", "title", w.title, "width", fbWidth, "height", fbHeight, "fullscreen", w.fullscreen)
	return nil
}

var mouseButtons = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseLeft,
	glfw.MouseButtonRight:  MouseRight,
	glfw.MouseButtonMiddle: MouseMiddle,
}

func pickMonitor(index int) (*glfw.Monitor, error) {
	monitors := glfw.GetMonitors()
	if len(monitors) == 0 {
		return nil, ErrNoMonitor
	}
	if index < 0 || index >= len(monitors) {
		slog.Warn("window: monitor out of range, using primary", "monitor", index, "monitors", len(monitors))
		return glfw.GetPrimaryMonitor(), nil
	}
	return monitors[index], nil
}

func (w *previewWindow) applySizeLimits() {
	maxW, maxH := glfw.DontCare, glfw.DontCare
	if w.maxWidth > 0 {
		maxW = w.maxWidth
	}
	if w.maxHeight > 0 {
		maxH = w.maxHeight
	}
	w.platform.handle.SetSizeLimits(w.minWidth, w.minHeight, maxW, maxH)
}

func (w *previewWindow) applyTitle(title string) {
	if w.platform != nil {
		w.platform.handle.SetTitle(title)
	}
}

func (w *previewWindow) toggleFullscreen() {
	if w.platform == nil {
		return
	}
	h := w.platform.handle

	w.mu.Lock()
	going := !w.fullscreen
	w.mu.Unlock()

	if going {
		m, err := pickMonitor(w.monitor)
		if err != nil {
			slog.Warn("window: fullscreen unavailable", "error", err)
			return
		}
		w.restoreX, w.restoreY = h.GetPos()
		w.restoreW, w.restoreH = h.GetSize()
		mode := m.GetVideoMode()
		h.SetMonitor(m, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	} else {
		h.SetMonitor(nil, w.restoreX, w.restoreY, w.restoreW, w.restoreH, glfw.DontCare)
	}

	w.mu.Lock()
	w.fullscreen = going
	w.mu.Unlock()
	slog.Info("window: fullscreen", "enabled", going, "monitor", w.monitor)
}

// surfaceDescriptor uses the wgpuglfw bridge, which has Windows, X11, Wayland and macOS variants.
func (w *previewWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.platform.handle)
}

func (w *previewWindow) platformOpen() bool {
	return w.platform != nil && !w.platform.handle.ShouldClose()
}

func (w *previewWindow) poll() {
	glfw.PollEvents()
}

// destroy releases the GLFW window and library. Runs once, on the window thread.
func (w *previewWindow) destroy() {
	w.mu.Lock()
	p := w.platform
	w.mu.Unlock()
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.handle.Destroy()
		glfw.Terminate()
		w.mu.Lock()
		w.platform = nil
		w.mu.Unlock()
		slog.Info("window: closed")
	})
}
