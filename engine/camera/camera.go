package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
)

// Viewer camera defaults.
const (
	DefaultFov  float32 = 60
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 1000
)

// providerSeq names the lazily created uniform providers.
var providerSeq atomic.Uint64

// Camera is the editor viewport camera. It takes no part in projector illumination; it only decides
// how the preview shows the scene. The view follows the attached CameraController and is recomputed
// by Update once per tick.
type Camera interface {
	// Fov returns the vertical field of view in degrees.
	Fov() float32

	// Aspect returns width / height of the viewport.
	Aspect() float32

	Near() float32
	Far() float32

	ViewMatrix() common.Mat4
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns projection * view as of the last update.
	//
	// Returns:
	//   - common.Mat4: the matrix uploaded in the camera uniform
	ViewProjectionMatrix() common.Mat4

	// Frustum returns the clip planes of ViewProjectionMatrix. The compositor culls with it.
	//
	// Returns:
	//   - common.Frustum: world-space planes, normals pointing inward
	Frustum() common.Frustum

	Controller() CameraController
	SetController(ctrl CameraController)

	// BindGroupProvider returns the provider holding the camera and lighting uniforms, or nil before
	// the compositor first prepares a frame.
	BindGroupProvider() bind_group_provider.BindGroupProvider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)

	// Uniform packs the last computed view-projection and the eye position.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform data
	Uniform() GPUCameraUniform

	// Update recomputes the matrices from the controller.
	Update()

	// SetFov sets the vertical field of view, clamped to [1, 179] degrees.
	SetFov(fov float32)

	// SetAspect follows a viewport resize. Non-positive values, such as those of a minimized window,
	// are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetClipPlanes sets the depth range. A pair with near <= 0 or far <= near is ignored.
	//
	// Parameters:
	//   - near: the near plane distance
	//   - far: the far plane distance
	SetClipPlanes(near, far float32)

	// Release frees the uniform provider.
	Release()
}

type cameraImpl struct {
	mu *sync.Mutex

	fov    float32
	aspect float32
	near   float32
	far    float32

	view     common.Mat4
	proj     common.Mat4
	viewProj common.Mat4

	controller CameraController
	provider   bind_group_provider.BindGroupProvider
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective viewer camera. A default orbit controller is attached when none is
// given.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Camera: the camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		fov:    DefaultFov,
		aspect: 1,
		near:   DefaultNear,
		far:    DefaultFar,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.recompute()
	return c
}

// NewUniformProvider creates an empty provider with a unique name for a camera's uniforms.
//
// Returns:
//   - bind_group_provider.BindGroupProvider: the provider, without buffers
func NewUniformProvider() bind_group_provider.BindGroupProvider {
	return bind_group_provider.NewBindGroupProvider("camera_" + strconv.FormatUint(providerSeq.Add(1), 10))
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *cameraImpl) ViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustumFromMatrix(c.ViewProjectionMatrix())
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	if ctrl == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.recompute()
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider
}

func (c *cameraImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = provider
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return NewGPUCameraUniform(c.viewProj, c.controller.Position())
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = common.Clamp(fov, 1, 179)
	c.recompute()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if !(aspect > 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.recompute()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	if !(near > 0 && far > near) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near, c.far = near, far
	c.recompute()
}

func (c *cameraImpl) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil {
		c.provider.Release()
		c.provider = nil
	}
}

// recompute must be called with mu held.
func (c *cameraImpl) recompute() {
	common.LookAt(c.view[:], c.controller.Position(), c.controller.Target(), c.controller.Up())
	common.Perspective(c.proj[:], common.DegToRad(c.fov), c.aspect, c.near, c.far)
	common.Mul4(c.viewProj[:], c.proj[:], c.view[:])
}
