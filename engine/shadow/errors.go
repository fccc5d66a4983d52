package shadow

import "errors"

var (
	// ErrNoBackend is returned when a Manager is created without a backend.
	ErrNoBackend = errors.New("shadow: backend is required")
	// ErrReleased is returned when a released Manager is asked to render.
	ErrReleased = errors.New("shadow: manager released")
)
