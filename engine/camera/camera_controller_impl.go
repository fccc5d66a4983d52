package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/chewxy/math32"
)

// Controller defaults.
const (
	DefaultMoveSpeed   float32 = 5
	DefaultRotateSpeed float32 = 0.2
	DefaultZoomSpeed   float32 = 2
	DefaultAzimuth     float32 = 45
	DefaultElevation   float32 = 30

	MinDistance  float32 = 0.5
	MaxElevation float32 = 89

	panScale float32 = 0.1
)

// DefaultPosition is the camera position of a new session.
var DefaultPosition = common.Vec3{15, 10, 15}

type cameraControllerImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3
	up       common.Vec3

	distance  float32
	azimuth   float32 // degrees around Y
	elevation float32 // degrees from the horizontal plane

	moveSpeed   float32
	rotateSpeed float32
	zoomSpeed   float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller at the default perspective view with any options applied.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - CameraController: the controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		position:    DefaultPosition,
		up:          common.Vec3{0, 1, 0},
		azimuth:     DefaultAzimuth,
		elevation:   DefaultElevation,
		moveSpeed:   DefaultMoveSpeed,
		rotateSpeed: DefaultRotateSpeed,
		zoomSpeed:   DefaultZoomSpeed,
	}
	for _, option := range options {
		option(cc)
	}
	cc.distance = cc.position.Sub(cc.target).Length()
	return cc
}

// updatePosition places the camera on the orbit sphere around the target.
func (cc *cameraControllerImpl) updatePosition() {
	az := common.DegToRad(cc.azimuth)
	el := common.DegToRad(cc.elevation)
	sinEl, cosEl := math32.Sincos(el)
	sinAz, cosAz := math32.Sincos(az)
	cc.position = cc.target.Add(common.Vec3{
		cc.distance * cosEl * cosAz,
		cc.distance * sinEl,
		cc.distance * cosEl * sinAz,
	})
}

func (cc *cameraControllerImpl) forward() common.Vec3 {
	return cc.target.Sub(cc.position).NormalizeOr(common.Vec3{0, 0, -1})
}

func (cc *cameraControllerImpl) right() common.Vec3 {
	return cc.forward().Cross(cc.up).NormalizeOr(common.Vec3{})
}

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Up() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.up
}

func (cc *cameraControllerImpl) SetTarget(t common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = t
	cc.distance = cc.position.Sub(cc.target).Length()
}

func (cc *cameraControllerImpl) SetPosition(p common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = p
	cc.distance = cc.position.Sub(cc.target).Length()
}

func (cc *cameraControllerImpl) SetUp(up common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.up = up.NormalizeOr(common.Vec3{0, 1, 0})
}

func (cc *cameraControllerImpl) Forward() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.forward()
}

func (cc *cameraControllerImpl) Right() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.right()
}

func (cc *cameraControllerImpl) Orbit(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= dx * cc.rotateSpeed
	cc.elevation = common.Clamp(cc.elevation-dy*cc.rotateSpeed, -MaxElevation, MaxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(scroll float32) {
	if scroll == 0 {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.distance = max(MinDistance, cc.distance-scroll*cc.zoomSpeed)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Distance() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.distance
}

func (cc *cameraControllerImpl) SetDistance(d float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.distance = max(MinDistance, d)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetAngles(azimuth, elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.elevation = common.Clamp(elevation, -MaxElevation, MaxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) RotateSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotateSpeed
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) Move(forward, right, up, dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	dir := cc.forward().Scale(forward).Add(cc.right().Scale(right)).Add(cc.up.Scale(up))
	if dir.Length() < common.Epsilon {
		return
	}
	offset := dir.Normalize().Scale(cc.moveSpeed * dt)
	cc.position = cc.position.Add(offset)
	cc.target = cc.target.Add(offset)
}

func (cc *cameraControllerImpl) Pan(dx, dy, dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	amount := cc.moveSpeed * dt * panScale
	offset := cc.right().Scale(-dx * amount).Add(cc.up.Scale(-dy * amount))
	cc.position = cc.position.Add(offset)
	cc.target = cc.target.Add(offset)
}

func (cc *cameraControllerImpl) ApplyPreset(p Preset) {
	def, ok := presets[p]
	if !ok {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = common.Vec3{}
	cc.position = def.position
	cc.up = def.up
	cc.azimuth = def.azimuth
	cc.elevation = def.elevation
	cc.distance = cc.position.Length()
}
