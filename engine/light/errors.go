package light

import "errors"

// ErrUnknownLightType is returned when a light type name is not registered.
var ErrUnknownLightType = errors.New("light: unknown light type")
