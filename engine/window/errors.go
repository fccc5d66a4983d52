package window

import "errors"

var (
	// ErrClosed is returned when operating on a destroyed window.
	ErrClosed = errors.New("window: closed")
	// ErrNoMonitor is returned when no monitor is connected for fullscreen output.
	ErrNoMonitor = errors.New("window: no monitor")
)
