package project

import "errors"

var (
	// ErrUnsupportedVersion is returned when a project file was written by an incompatible version.
	ErrUnsupportedVersion = errors.New("project: unsupported version")
	// ErrInvalid is returned by Apply when validation reports errors.
	ErrInvalid = errors.New("project: invalid project")
)
