package timeline

import "errors"

var (
	// ErrUnknownTarget is returned when a keyframe names an entity the resolver does not know.
	ErrUnknownTarget = errors.New("timeline: unknown target")
	// ErrPropertyUnsupported is returned when the target does not expose the keyed property.
	ErrPropertyUnsupported = errors.New("timeline: property not supported by target")
)
