package projector

import "errors"

var (
	// ErrUnknownModel is returned when a projector model id is not in the catalog.
	ErrUnknownModel = errors.New("projector: unknown model")
	// ErrUnknownLens is returned when a lens id is not in the catalog.
	ErrUnknownLens = errors.New("projector: unknown lens")
	// ErrNoAllocator is returned when a projector is constructed without an id allocator.
	ErrNoAllocator = errors.New("projector: id allocator is required")
)
