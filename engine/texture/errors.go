package texture

import "errors"

var (
	// ErrUnknownPattern is returned for test pattern names that are not registered.
	ErrUnknownPattern = errors.New("texture: unknown pattern")
	// ErrInvalidSize is returned for images or patterns with a non-positive dimension.
	ErrInvalidSize = errors.New("texture: invalid size")
	// ErrUnsupportedFormat is returned when exporting to an extension without an encoder.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")
)
