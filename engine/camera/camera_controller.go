package camera

import "github.com/Carmen-Shannon/oxy-projector/common"

// CameraController defines the union interface for camera control systems.
// Controllers own positional state (position, target, up). Camera reads from the controller
// and computes view/projection matrices. Embeds orbitCameraController and
// planarCameraController so orbit, pan and keyboard movement share one instance.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: world-space camera position
	Position() common.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - common.Vec3: world-space target position
	Target() common.Vec3

	// Up returns the up vector used for the view basis.
	//
	// Returns:
	//   - common.Vec3: the up vector
	Up() common.Vec3

	// SetTarget sets the look-at point without moving the camera.
	//
	// Parameters:
	//   - t: world-space coordinates
	SetTarget(t common.Vec3)

	// SetPosition sets the camera's world-space position directly and updates the orbit distance.
	//
	// Parameters:
	//   - p: world-space coordinates
	SetPosition(p common.Vec3)

	// SetUp sets the up vector.
	//
	// Parameters:
	//   - up: the up vector, normalized on store
	SetUp(up common.Vec3)

	// Forward returns the unit vector from position to target.
	//
	// Returns:
	//   - common.Vec3: the forward direction, or -Z when position equals target
	Forward() common.Vec3

	// Right returns normalize(forward × up).
	//
	// Returns:
	//   - common.Vec3: the right direction, or zero when forward is parallel to up
	Right() common.Vec3

	// ApplyPreset moves the camera to one of the standard views.
	//
	// Parameters:
	//   - p: the preset
	ApplyPreset(p Preset)
}

// orbitCameraController controls the camera by spherical angles around the target.
type orbitCameraController interface {
	// Orbit rotates around the target by a mouse delta in pixels.
	// Azimuth decreases by dx·RotateSpeed and elevation by dy·RotateSpeed, clamped to ±MaxElevation.
	//
	// Parameters:
	//   - dx, dy: mouse movement since the last frame
	Orbit(dx, dy float32)

	// Zoom moves the camera along the orbit radius. Positive scroll moves closer.
	// The distance never drops below MinDistance.
	//
	// Parameters:
	//   - scroll: scroll wheel offset
	Zoom(scroll float32)

	// Distance returns the orbit radius.
	//
	// Returns:
	//   - float32: distance from position to target
	Distance() float32

	// SetDistance sets the orbit radius and recomputes the position.
	//
	// Parameters:
	//   - d: the new distance, clamped to at least MinDistance
	SetDistance(d float32)

	// Azimuth returns the horizontal orbit angle in degrees.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// Elevation returns the vertical orbit angle in degrees.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32

	// SetAngles sets azimuth and elevation in degrees and recomputes the position.
	//
	// Parameters:
	//   - azimuth: horizontal angle
	//   - elevation: vertical angle, clamped to ±MaxElevation
	SetAngles(azimuth, elevation float32)

	RotateSpeed() float32
	ZoomSpeed() float32
}

// planarCameraController translates the camera and its target together.
type planarCameraController interface {
	// Move translates position and target by MoveSpeed·dt along the normalized sum of the requested axes.
	//
	// Parameters:
	//   - forward: +1 for W, -1 for S
	//   - right: +1 for D, -1 for A
	//   - up: +1 for E, -1 for Q
	//   - dt: frame time in seconds
	Move(forward, right, up, dt float32)

	// Pan drags the camera in its right/up plane by a mouse delta, scaled by MoveSpeed·dt·0.1.
	//
	// Parameters:
	//   - dx, dy: mouse movement since the last frame
	//   - dt: frame time in seconds
	Pan(dx, dy, dt float32)

	MoveSpeed() float32
}
