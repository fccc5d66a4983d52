package config

import "errors"

var (
	// ErrInvalid is returned by Validate when a setting is outside its allowed range.
	ErrInvalid = errors.New("config: invalid setting")
	// ErrUnknownLogLevel is returned by Level for names other than debug, info, warn and error.
	ErrUnknownLogLevel = errors.New("config: unknown log level")
)
