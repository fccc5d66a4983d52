package compositor

import "errors"

var (
	// ErrNoBackend is returned when a Compositor is created without a backend.
	ErrNoBackend = errors.New("compositor: backend is required")
	// ErrNotPrepared is returned when Render is called before Prepare.
	ErrNotPrepared = errors.New("compositor: render called before prepare")
)
