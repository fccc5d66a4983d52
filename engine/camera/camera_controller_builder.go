package camera

import "github.com/Carmen-Shannon/oxy-projector/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial camera position.
//
// Parameters:
//   - p: world-space position
//
// Returns:
//   - CameraControllerOption: a function that sets the position
func WithPosition(p common.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = p
	}
}

// WithTarget sets the initial look-at point.
//
// Parameters:
//   - t: world-space target
//
// Returns:
//   - CameraControllerOption: a function that sets the target
func WithTarget(t common.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = t
	}
}

// WithAngles sets the initial orbit angles in degrees. Position is not moved until the next orbit or zoom.
//
// Parameters:
//   - azimuth: horizontal angle
//   - elevation: vertical angle
//
// Returns:
//   - CameraControllerOption: a function that sets the angles
func WithAngles(azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
		cc.elevation = common.Clamp(elevation, -MaxElevation, MaxElevation)
	}
}

// WithMoveSpeed sets the keyboard movement speed in units per second.
//
// Parameters:
//   - speed: movement speed
//
// Returns:
//   - CameraControllerOption: a function that sets the move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithRotateSpeed sets the orbit speed in degrees per pixel.
//
// Parameters:
//   - speed: orbit speed
//
// Returns:
//   - CameraControllerOption: a function that sets the rotate speed
func WithRotateSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotateSpeed = speed
	}
}

// WithZoomSpeed sets the distance change per scroll step.
//
// Parameters:
//   - speed: zoom speed
//
// Returns:
//   - CameraControllerOption: a function that sets the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}
