// Package drawable holds the scene objects that projectors light: a primitive mesh placed by a
// translation, quaternion rotation and non-uniform scale.
package drawable

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultColor is the base colour of new drawables.
var DefaultColor = common.Vec3{0.533, 0.533, 0.533}

type drawableImpl struct {
	mu *sync.Mutex

	id   uint64
	name string
	mdl  model.Model

	position common.Vec3
	rotation common.Quat
	scale    common.Vec3

	visible       bool
	castShadow    bool
	receiveShadow bool
	color         common.Vec3

	objectProvider bind_group_provider.BindGroupProvider
	released       bool
}

// Drawable defines the interface for a mesh placed in the scene.
// Drawables expose position, scale and visibility through the property registry so timelines can animate them.
type Drawable interface {
	property.Target

	// Name returns the display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SetName sets the display name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Model returns the mesh drawn for this object.
	//
	// Returns:
	//   - model.Model: the mesh
	Model() model.Model

	// Kind returns the primitive kind of the mesh.
	//
	// Returns:
	//   - model.Kind: the primitive kind
	Kind() model.Kind

	// Position returns the world position.
	//
	// Returns:
	//   - common.Vec3: the position
	Position() common.Vec3

	// SetPosition moves the object.
	//
	// Parameters:
	//   - p: the new world position
	SetPosition(p common.Vec3)

	// Rotation returns the orientation quaternion.
	//
	// Returns:
	//   - common.Quat: the unit rotation
	Rotation() common.Quat

	// SetRotation sets the orientation. The quaternion is normalized on store.
	//
	// Parameters:
	//   - q: the new rotation
	SetRotation(q common.Quat)

	// SetRotationEuler sets the orientation from Euler angles in degrees.
	//
	// Parameters:
	//   - x, y, z: rotation around each axis in degrees
	SetRotationEuler(x, y, z float32)

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - common.Vec3: the scale
	Scale() common.Vec3

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - s: the new scale
	SetScale(s common.Vec3)

	Visible() bool
	SetVisible(v bool)
	CastShadow() bool
	SetCastShadow(v bool)
	ReceiveShadow() bool
	SetReceiveShadow(v bool)

	// Color returns the base colour.
	//
	// Returns:
	//   - common.Vec3: linear RGB in [0,1]
	Color() common.Vec3

	// SetColor sets the base colour, clamping each channel to [0,1].
	//
	// Parameters:
	//   - c: the new colour
	SetColor(c common.Vec3)

	// ModelMatrix returns translation * rotation * scale.
	//
	// Returns:
	//   - common.Mat4: the world transform
	ModelMatrix() common.Mat4

	// BoundingSphere returns the world-space bounding sphere of the mesh.
	//
	// Returns:
	//   - common.Vec3: the center
	//   - float32: the radius scaled by the largest axis scale
	BoundingSphere() (common.Vec3, float32)

	// Uniform packs the current transform and material into the object uniform layout.
	//
	// Returns:
	//   - GPUObjectUniform: the uniform data
	Uniform() GPUObjectUniform

	// ObjectProvider returns the provider holding the object uniform buffer and bind group, or nil before upload.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider or nil
	ObjectProvider() bind_group_provider.BindGroupProvider

	// SetObjectProvider stores the provider created on upload.
	//
	// Parameters:
	//   - provider: the object uniform provider
	SetObjectProvider(provider bind_group_provider.BindGroupProvider)

	// EnsureGPU uploads the mesh and creates the object uniform bind group if they do not exist yet.
	// The same object bind group is used by the depth and composite pipelines.
	//
	// Parameters:
	//   - u: the uploader, usually the renderer
	//   - objectLayout: the group 1 layout descriptor of the pipelines drawing this object
	//
	// Returns:
	//   - error: ErrReleased after Release, or the wrapped upload error
	EnsureGPU(u Uploader, objectLayout wgpu.BindGroupLayoutDescriptor) error

	// ObjectWrite packs the current object uniform as a buffer write for the object provider.
	//
	// Returns:
	//   - bind_group_provider.BufferWrite: the staged write
	//   - bool: false before EnsureGPU
	ObjectWrite() (bind_group_provider.BufferWrite, bool)

	// Release frees the GPU geometry and uniform resources. Subsequent calls do nothing.
	Release()
}

var _ Drawable = &drawableImpl{}

// NewDrawable creates a drawable for a mesh. The id comes from the scene's allocator unless WithID is given.
//
// Parameters:
//   - ids: the scene's id allocator
//   - mdl: the mesh to draw
//   - options: builder options applied after defaults
//
// Returns:
//   - Drawable: the new drawable
//   - error: ErrNoAllocator or ErrNoModel
func NewDrawable(ids *common.IDAllocator, mdl model.Model, options ...DrawableBuilderOption) (Drawable, error) {
	if ids == nil {
		return nil, ErrNoAllocator
	}
	if mdl == nil {
		return nil, ErrNoModel
	}
	d := &drawableImpl{
		mu:            &sync.Mutex{},
		mdl:           mdl,
		rotation:      common.IdentityQuat(),
		scale:         common.Vec3{1, 1, 1},
		visible:       true,
		castShadow:    true,
		receiveShadow: true,
		color:         DefaultColor,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.id == 0 {
		d.id = ids.Next()
	} else {
		ids.Observe(d.id)
	}
	if d.name == "" {
		d.name = fmt.Sprintf("%s #%d", mdl.Kind(), d.id)
	}
	slog.Debug("drawable created", "id", d.id, "kind", mdl.Kind())
	return d, nil
}

func (d *drawableImpl) ID() uint64 {
	return d.id
}

func (d *drawableImpl) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

func (d *drawableImpl) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

func (d *drawableImpl) Model() model.Model {
	return d.mdl
}

func (d *drawableImpl) Kind() model.Kind {
	return d.mdl.Kind()
}

func (d *drawableImpl) Position() common.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *drawableImpl) SetPosition(p common.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = p
}

func (d *drawableImpl) Rotation() common.Quat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotation
}

func (d *drawableImpl) SetRotation(q common.Quat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotation = q.Normalize()
}

func (d *drawableImpl) SetRotationEuler(x, y, z float32) {
	d.SetRotation(common.QuatFromEuler(x, y, z))
}

func (d *drawableImpl) Scale() common.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scale
}

func (d *drawableImpl) SetScale(s common.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scale = s
}

func (d *drawableImpl) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

func (d *drawableImpl) SetVisible(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = v
}

func (d *drawableImpl) CastShadow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.castShadow
}

func (d *drawableImpl) SetCastShadow(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.castShadow = v
}

func (d *drawableImpl) ReceiveShadow() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.receiveShadow
}

func (d *drawableImpl) SetReceiveShadow(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.receiveShadow = v
}

func (d *drawableImpl) Color() common.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.color
}

func (d *drawableImpl) SetColor(c common.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range c {
		d.color[i] = common.Clamp(c[i], 0, 1)
	}
}

func (d *drawableImpl) ModelMatrix() common.Mat4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modelMatrix()
}

func (d *drawableImpl) BoundingSphere() (common.Vec3, float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := max(abs(d.scale[0]), abs(d.scale[1]), abs(d.scale[2]))
	return d.position, d.mdl.BoundingRadius() * s
}

func (d *drawableImpl) Uniform() GPUObjectUniform {
	d.mu.Lock()
	defer d.mu.Unlock()
	return NewGPUObjectUniform(d.modelMatrix(), d.color, d.receiveShadow)
}

func (d *drawableImpl) ObjectProvider() bind_group_provider.BindGroupProvider {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.objectProvider
}

func (d *drawableImpl) SetObjectProvider(provider bind_group_provider.BindGroupProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objectProvider = provider
}

func (d *drawableImpl) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	if d.objectProvider != nil {
		d.objectProvider.Release()
		d.objectProvider = nil
	}
	d.mdl.Release()
}

func (d *drawableImpl) Get(p property.Property) (float32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch p {
	case property.PositionX, property.PositionY, property.PositionZ:
		return d.position[p-property.PositionX], true
	case property.ScaleX, property.ScaleY, property.ScaleZ:
		return d.scale[p-property.ScaleX], true
	case property.Visible:
		return property.Float(d.visible), true
	}
	return 0, false
}

func (d *drawableImpl) Set(p property.Property, v float32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch p {
	case property.PositionX, property.PositionY, property.PositionZ:
		d.position[p-property.PositionX] = v
	case property.ScaleX, property.ScaleY, property.ScaleZ:
		d.scale[p-property.ScaleX] = v
	case property.Visible:
		d.visible = property.Bool(v)
	default:
		return false
	}
	return true
}

func (d *drawableImpl) modelMatrix() common.Mat4 {
	var m common.Mat4
	common.BuildTRSMatrix(m[:], d.position, d.rotation, d.scale)
	return m
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
