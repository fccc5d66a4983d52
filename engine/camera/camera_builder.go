package camera

import "github.com/Carmen-Shannon/oxy-projector/common"

// CameraBuilderOption configures the preview camera in NewCamera. Values are validated the same
// way as the matching setters.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the vertical field of view in degrees, clamped to [1, 179].
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = common.Clamp(fov, 1, 179)
	}
}

// WithAspect sets width / height. Non-positive values are ignored.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far distances. A pair with near <= 0 or far <= near is ignored.
//
// Parameters:
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - CameraBuilderOption: the option
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if near > 0 && far > near {
			c.near, c.far = near, far
		}
	}
}

// WithController attaches the orbit controller the camera follows. NewCamera creates a default
// controller otherwise.
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
