package window

// WindowBuilderOption is a functional option for configuring a window before it opens.
type WindowBuilderOption func(w *previewWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *previewWindow) {
		w.title = title
	}
}

// WithSize sets the requested windowed client size. Non-positive values keep the default.
//
// Parameters:
//   - width, height: size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *previewWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithMinSize sets the smallest size the window can be resized to.
//
// Parameters:
//   - width, height: minimum size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *previewWindow) {
		w.minWidth, w.minHeight = max(width, 1), max(height, 1)
	}
}

// WithMaxSize sets the largest size the window can be resized to. Zero leaves a dimension
// unlimited.
//
// Parameters:
//   - width, height: maximum size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *previewWindow) {
		w.maxWidth, w.maxHeight = max(width, 0), max(height, 0)
	}
}

// WithFullscreen opens the window fullscreen on a monitor, typically the projector output.
//
// Parameters:
//   - enabled: open fullscreen
//   - monitor: index into the connected monitors; out of range falls back to the primary
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithFullscreen(enabled bool, monitor int) WindowBuilderOption {
	return func(w *previewWindow) {
		w.fullscreen = enabled
		w.monitor = monitor
	}
}
