package drawable

import "errors"

var (
	// ErrNoAllocator is returned when a drawable is created without an id allocator.
	ErrNoAllocator = errors.New("drawable: id allocator is required")
	// ErrNoModel is returned when a drawable is created without a mesh.
	ErrNoModel = errors.New("drawable: model is required")
	// ErrReleased is returned when GPU resources are requested for a released drawable.
	ErrReleased = errors.New("drawable: released")
)
