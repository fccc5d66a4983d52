package engine

import "errors"

// ErrNoRenderer is returned by NewEngine when no renderer was supplied.
var ErrNoRenderer = errors.New("engine: renderer is required")
