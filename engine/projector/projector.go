package projector

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// Parameter bounds and defaults.
const (
	MaxKeystone      float32 = 50
	MaxCornerOffset  float32 = 100
	MaxSoftEdge      float32 = 100
	MinSoftEdgeGamma float32 = 0.1
	MaxSoftEdgeGamma float32 = 10
	MaxIntensity     float32 = 2

	DefaultSoftEdgeGamma float32 = 2.2
	DefaultShadowBias    float32 = 0.003
	DefaultNear          float32 = 0.1
	DefaultFar           float32 = 200
	DefaultProjectionFar float32 = 500

	// NoSlot marks a projector that holds no shadow slot this frame.
	NoSlot = -1

	minAimDistance float32 = 1e-4
)

// DefaultPosition is where new projectors are placed.
var DefaultPosition = common.Vec3{0, 2.5, 10}

// defaultAim is the offset from position to target for new projectors.
var defaultAim = common.Vec3{0, 0, -8}

// Orientation is the mounting of the projector body.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Corner selects one corner of the projected image.
type Corner int

const (
	CornerTL Corner = iota
	CornerTR
	CornerBL
	CornerBR
)

// SoftEdge is the blend margin configuration, margins in percent of the image.
type SoftEdge struct {
	Left, Right, Top, Bottom float32
	Gamma                    float32
}

// TextureHandle is a GPU texture bound to a projector as its projected image.
// The projector owns the handle and releases it when replaced or on Release.
type TextureHandle interface {
	View() *wgpu.TextureView
	Release()
}

type projectorImpl struct {
	mu *sync.Mutex

	id    uint64
	name  string
	model Model
	lens  Lens

	position common.Vec3
	target   common.Vec3

	throwRatio    float32
	near          float32
	far           float32
	projectionFar float32
	shiftH        float32
	shiftV        float32

	keystoneV       float32
	keystoneH       float32
	keystoneCorners common.Corners
	cornerPin       common.Corners
	softEdge        SoftEdge

	intensity   float32
	active      bool
	shadowBias  float32
	shadowSlot  int
	orientation Orientation
	texture     TextureHandle

	aimed bool // target set explicitly at construction
}

// Projector is a virtual projector placed in the scene.
//
// All state is changed through setters that clamp their input to the bound lens and the documented
// parameter ranges, so the projector is render-safe after every call. Matrices are derived from the
// stored state on every query.
type Projector interface {
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

	// Model returns the projector body specification.
	//
	// Returns:
	//   - Model: the catalog entry
	Model() Model

	// Lens returns the bound lens specification.
	//
	// Returns:
	//   - Lens: the catalog entry
	Lens() Lens

	// SetLens binds a different lens and re-clamps throw ratio and shift to its limits.
	//
	// Parameters:
	//   - id: the lens id
	//
	// Returns:
	//   - error: ErrUnknownLens when the id is not in the catalog
	SetLens(id string) error

	// Position returns the lens position in world space.
	//
	// Returns:
	//   - common.Vec3: the position
	Position() common.Vec3

	// SetPosition moves the projector without changing its target.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p common.Vec3)

	// Target returns the world-space point the projector aims at.
	//
	// Returns:
	//   - common.Vec3: the target
	Target() common.Vec3

	// SetTarget changes the aim point.
	//
	// Parameters:
	//   - t: the new target
	SetTarget(t common.Vec3)

	// Forward returns the normalized aim direction. When target and position coincide
	// the default forward (0, 0, -1) is returned.
	//
	// Returns:
	//   - common.Vec3: the unit forward vector
	Forward() common.Vec3

	// ThrowRatio returns the current throw ratio.
	//
	// Returns:
	//   - float32: the throw ratio, always within the lens range
	ThrowRatio() float32

	// SetThrowRatio sets the throw ratio, clamped to the lens range.
	//
	// Parameters:
	//   - r: the requested throw ratio
	//
	// Returns:
	//   - float32: the stored value
	SetThrowRatio(r float32) float32

	// Aspect returns the image aspect ratio, inverted for portrait mounting.
	//
	// Returns:
	//   - float32: width / height of the projected image
	Aspect() float32

	// Orientation returns the mounting.
	//
	// Returns:
	//   - Orientation: landscape or portrait
	Orientation() Orientation

	// SetOrientation changes the mounting. Unknown values are ignored.
	//
	// Parameters:
	//   - o: the mounting
	SetOrientation(o Orientation)

	// ClipPlanes returns the depth range used for projection and the far cut-off for illumination.
	//
	// Returns:
	//   - near: the near plane
	//   - far: the far plane of the projection and shadow depth
	//   - projectionFar: the distance beyond which surfaces receive no light
	ClipPlanes() (near, far, projectionFar float32)

	// SetClipPlanes sets the depth range. Invalid combinations are corrected so that 0 < near < far.
	//
	// Parameters:
	//   - near: the near plane
	//   - far: the far plane
	//   - projectionFar: the illumination cut-off
	SetClipPlanes(near, far, projectionFar float32)

	// LensShift returns the normalized lens shift.
	//
	// Returns:
	//   - h: horizontal shift
	//   - v: vertical shift
	LensShift() (h, v float32)

	// SetLensShift sets the lens shift, each axis clamped to ±lens shift / 100.
	//
	// Parameters:
	//   - h: horizontal shift
	//   - v: vertical shift
	//
	// Returns:
	//   - float32, float32: the stored values
	SetLensShift(h, v float32) (float32, float32)

	// Keystone returns the basic keystone correction in percent.
	//
	// Returns:
	//   - v: vertical keystone
	//   - h: horizontal keystone
	Keystone() (v, h float32)

	// SetKeystone sets the basic keystone, each clamped to ±50.
	//
	// Parameters:
	//   - v: vertical keystone
	//   - h: horizontal keystone
	SetKeystone(v, h float32)

	// KeystoneCorners returns the per-corner keystone offsets.
	//
	// Returns:
	//   - common.Corners: offsets in percent
	KeystoneCorners() common.Corners

	// SetKeystoneCorner sets one corner keystone offset, each axis clamped to ±100.
	//
	// Parameters:
	//   - c: the corner
	//   - x, y: offsets in percent
	SetKeystoneCorner(c Corner, x, y float32)

	// ResetKeystone zeroes the basic keystone and all eight corner keystone values.
	ResetKeystone()

	// CornerPin returns the corner pin offsets.
	//
	// Returns:
	//   - common.Corners: offsets in percent
	CornerPin() common.Corners

	// SetCornerPin sets one corner pin offset, each axis clamped to ±100.
	//
	// Parameters:
	//   - c: the corner
	//   - x, y: offsets in percent
	SetCornerPin(c Corner, x, y float32)

	// ResetCornerPin zeroes all corner pin offsets.
	ResetCornerPin()

	// SoftEdge returns the blend configuration.
	//
	// Returns:
	//   - SoftEdge: margins and gamma
	SoftEdge() SoftEdge

	// SetSoftEdge sets the four margins, each clamped to [0, 100].
	//
	// Parameters:
	//   - left, right, top, bottom: margins in percent
	SetSoftEdge(left, right, top, bottom float32)

	// SetSoftEdgeGamma sets the falloff exponent, clamped to [0.1, 10].
	//
	// Parameters:
	//   - gamma: the exponent
	SetSoftEdgeGamma(gamma float32)

	// ResetSoftEdge zeroes the margins and restores gamma to 2.2.
	ResetSoftEdge()

	// Warp returns the combined keystone and corner pin parameters.
	//
	// Returns:
	//   - common.WarpParams: the footprint corrections
	Warp() common.WarpParams

	// Intensity returns the brightness multiplier.
	//
	// Returns:
	//   - float32: intensity in [0, 2]
	Intensity() float32

	// SetIntensity sets the brightness multiplier, clamped to [0, 2].
	//
	// Parameters:
	//   - i: the multiplier
	SetIntensity(i float32)

	// Active reports whether the projector illuminates the scene.
	//
	// Returns:
	//   - bool: true when active
	Active() bool

	// SetActive turns illumination on or off. Other projectors are unaffected.
	//
	// Parameters:
	//   - active: the new state
	SetActive(active bool)

	// ShadowBias returns the depth comparison tolerance.
	//
	// Returns:
	//   - float32: the bias
	ShadowBias() float32

	// SetShadowBias sets the depth comparison tolerance, clamped to [0, 1].
	//
	// Parameters:
	//   - bias: the tolerance
	SetShadowBias(bias float32)

	// ShadowSlot returns the shadow target the projector was assigned for the current frame.
	//
	// Returns:
	//   - int: the slot index or NoSlot
	ShadowSlot() int

	// SetShadowSlot records the assigned shadow target. Called by the shadow pass manager.
	//
	// Parameters:
	//   - slot: slot index or NoSlot
	SetShadowSlot(slot int)

	// Texture returns the projected image, or nil when none is bound.
	//
	// Returns:
	//   - TextureHandle: the bound texture
	Texture() TextureHandle

	// SetTexture binds a projected image, releasing the previously bound one.
	//
	// Parameters:
	//   - t: the new texture, or nil to unbind
	SetTexture(t TextureHandle)

	// FOV returns the vertical field of view derived from throw ratio and aspect.
	//
	// Returns:
	//   - float32: vertical field of view in degrees
	FOV() float32

	// ViewMatrix returns the look-at matrix from position toward target.
	//
	// Returns:
	//   - common.Mat4: the view matrix
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the shifted perspective matrix.
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	ProjectionMatrix() common.Mat4

	// ShadowMatrix returns ProjectionMatrix() * ViewMatrix().
	//
	// Returns:
	//   - common.Mat4: the combined matrix
	ShadowMatrix() common.Mat4

	// Snapshot captures the render state of the projector for one frame.
	//
	// Returns:
	//   - Snapshot: an immutable copy with matrices computed once
	Snapshot() Snapshot

	// Spec summarises the projector for reports.
	//
	// Returns:
	//   - Spec: the summary
	Spec() Spec

	// Release frees the bound texture. The projector stays usable without a texture.
	Release()
}

var _ Projector = &projectorImpl{}

// NewProjector creates a projector of the given model with the given lens. An empty lensID selects the
// model's default lens. The throw ratio starts at the lens minimum.
//
// Parameters:
//   - ids: the scene's id allocator
//   - modelID: the projector model id
//   - lensID: the lens id, or "" for the model default
//   - options: builder options applied after defaults
//
// Returns:
//   - Projector: the new projector
//   - error: ErrUnknownModel, ErrUnknownLens or ErrNoAllocator
func NewProjector(ids *common.IDAllocator, modelID, lensID string, options ...ProjectorBuilderOption) (Projector, error) {
	if ids == nil {
		return nil, ErrNoAllocator
	}
	model, ok := LookupModel(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	if lensID == "" {
		lensID = model.DefaultLens
	}
	lens, ok := LookupLens(lensID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLens, lensID)
	}

	p := &projectorImpl{
		mu:            &sync.Mutex{},
		model:         model,
		lens:          lens,
		position:      DefaultPosition,
		target:        DefaultPosition.Add(defaultAim),
		throwRatio:    lens.ThrowMin,
		near:          DefaultNear,
		far:           DefaultFar,
		projectionFar: DefaultProjectionFar,
		softEdge:      SoftEdge{Gamma: DefaultSoftEdgeGamma},
		intensity:     1,
		active:        true,
		shadowBias:    DefaultShadowBias,
		shadowSlot:    NoSlot,
		orientation:   OrientationLandscape,
	}
	for _, opt := range options {
		opt(p)
	}
	if !p.aimed {
		p.target = p.position.Add(defaultAim)
	}

	if p.id == 0 {
		p.id = ids.Next()
	} else {
		ids.Observe(p.id)
	}
	if p.name == "" {
		p.name = fmt.Sprintf("%s #%d", model.Name, p.id)
	}

	slog.Debug("projector created", "id", p.id, "model", model.ID, "lens", lens.ID)
	return p, nil
}

func (p *projectorImpl) ID() uint64 {
	return p.id
}

func (p *projectorImpl) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *projectorImpl) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

func (p *projectorImpl) Model() Model {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

func (p *projectorImpl) Lens() Lens {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lens
}

func (p *projectorImpl) SetLens(id string) error {
	lens, ok := LookupLens(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLens, id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lens = lens
	p.throwRatio = clampFinite(p.throwRatio, lens.ThrowMin, lens.ThrowMax)
	p.shiftH, p.shiftV = p.clampShift(p.shiftH, p.shiftV)
	return nil
}

func (p *projectorImpl) Position() common.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *projectorImpl) SetPosition(v common.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = v
}

func (p *projectorImpl) Target() common.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

func (p *projectorImpl) SetTarget(t common.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = t
}

func (p *projectorImpl) Forward() common.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.forward()
}

func (p *projectorImpl) ThrowRatio() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.throwRatio
}

func (p *projectorImpl) SetThrowRatio(r float32) float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.throwRatio = clampFinite(r, p.lens.ThrowMin, p.lens.ThrowMax)
	return p.throwRatio
}

func (p *projectorImpl) Aspect() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aspect()
}

func (p *projectorImpl) Orientation() Orientation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orientation
}

func (p *projectorImpl) SetOrientation(o Orientation) {
	if o != OrientationLandscape && o != OrientationPortrait {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orientation = o
}

func (p *projectorImpl) ClipPlanes() (near, far, projectionFar float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.near, p.far, p.projectionFar
}

func (p *projectorImpl) SetClipPlanes(near, far, projectionFar float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !(near > 0) {
		near = DefaultNear
	}
	if !(far > near) {
		far = near * 1000
	}
	if !(projectionFar > 0) {
		projectionFar = far
	}
	p.near, p.far, p.projectionFar = near, far, projectionFar
}

func (p *projectorImpl) LensShift() (h, v float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shiftH, p.shiftV
}

func (p *projectorImpl) SetLensShift(h, v float32) (float32, float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shiftH, p.shiftV = p.clampShift(h, v)
	return p.shiftH, p.shiftV
}

func (p *projectorImpl) Keystone() (v, h float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keystoneV, p.keystoneH
}

func (p *projectorImpl) SetKeystone(v, h float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keystoneV = clampFinite(v, -MaxKeystone, MaxKeystone)
	p.keystoneH = clampFinite(h, -MaxKeystone, MaxKeystone)
}

func (p *projectorImpl) KeystoneCorners() common.Corners {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keystoneCorners
}

func (p *projectorImpl) SetKeystoneCorner(c Corner, x, y float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	setCorner(&p.keystoneCorners, c, x, y)
}

func (p *projectorImpl) ResetKeystone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keystoneV, p.keystoneH = 0, 0
	p.keystoneCorners = common.Corners{}
}

func (p *projectorImpl) CornerPin() common.Corners {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cornerPin
}

func (p *projectorImpl) SetCornerPin(c Corner, x, y float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	setCorner(&p.cornerPin, c, x, y)
}

func (p *projectorImpl) ResetCornerPin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cornerPin = common.Corners{}
}

func (p *projectorImpl) SoftEdge() SoftEdge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.softEdge
}

func (p *projectorImpl) SetSoftEdge(left, right, top, bottom float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.softEdge.Left = clampFinite(left, 0, MaxSoftEdge)
	p.softEdge.Right = clampFinite(right, 0, MaxSoftEdge)
	p.softEdge.Top = clampFinite(top, 0, MaxSoftEdge)
	p.softEdge.Bottom = clampFinite(bottom, 0, MaxSoftEdge)
}

func (p *projectorImpl) SetSoftEdgeGamma(gamma float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if math32.IsNaN(gamma) {
		gamma = DefaultSoftEdgeGamma
	}
	p.softEdge.Gamma = common.Clamp(gamma, MinSoftEdgeGamma, MaxSoftEdgeGamma)
}

func (p *projectorImpl) ResetSoftEdge() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.softEdge = SoftEdge{Gamma: DefaultSoftEdgeGamma}
}

func (p *projectorImpl) Warp() common.WarpParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.warp()
}

func (p *projectorImpl) Intensity() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.intensity
}

func (p *projectorImpl) SetIntensity(i float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intensity = clampFinite(i, 0, MaxIntensity)
}

func (p *projectorImpl) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *projectorImpl) SetActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = active
}

func (p *projectorImpl) ShadowBias() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shadowBias
}

func (p *projectorImpl) SetShadowBias(bias float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shadowBias = clampFinite(bias, 0, 1)
}

func (p *projectorImpl) ShadowSlot() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shadowSlot
}

func (p *projectorImpl) SetShadowSlot(slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slot < 0 {
		slot = NoSlot
	}
	p.shadowSlot = slot
}

func (p *projectorImpl) Texture() TextureHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.texture
}

func (p *projectorImpl) SetTexture(t TextureHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.texture != nil && p.texture != t {
		p.texture.Release()
	}
	p.texture = t
}

func (p *projectorImpl) FOV() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fov()
}

func (p *projectorImpl) ViewMatrix() common.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewMatrix()
}

func (p *projectorImpl) ProjectionMatrix() common.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projectionMatrix()
}

func (p *projectorImpl) ShadowMatrix() common.Mat4 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.projectionMatrix().Mul(p.viewMatrix())
}

func (p *projectorImpl) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.texture != nil {
		p.texture.Release()
		p.texture = nil
	}
}

func (p *projectorImpl) aspect() float32 {
	if p.orientation == OrientationPortrait {
		return 1 / p.model.Aspect
	}
	return p.model.Aspect
}

func (p *projectorImpl) forward() common.Vec3 {
	return p.target.Sub(p.position).NormalizeOr(common.Vec3{0, 0, -1})
}

// fov relies on the catalog guaranteeing positive throw ratios and aspects.
func (p *projectorImpl) fov() float32 {
	fov, _ := common.ThrowRatioToVerticalFOV(p.throwRatio, p.aspect())
	return fov
}

func (p *projectorImpl) viewMatrix() common.Mat4 {
	fwd := p.target.Sub(p.position)
	if fwd.Length() < minAimDistance {
		fwd = common.Vec3{0, 0, -1}
	}
	fwd = fwd.Normalize()

	up := common.Vec3{0, 1, 0}
	if fwd.Cross(up).Length() < common.Epsilon {
		up = common.Vec3{0, 0, -1}
	}
	right := fwd.Cross(up).Normalize()
	up = right.Cross(fwd)

	var view common.Mat4
	common.LookAt(view[:], p.position, p.position.Add(fwd), up)
	return view
}

func (p *projectorImpl) projectionMatrix() common.Mat4 {
	var proj common.Mat4
	common.BuildProjectionMatrix(proj[:], p.fov(), p.aspect(), p.near, p.far, p.shiftH, p.shiftV)
	return proj
}

func (p *projectorImpl) warp() common.WarpParams {
	return common.WarpParams{
		KeystoneV:       p.keystoneV,
		KeystoneH:       p.keystoneH,
		KeystoneCorners: p.keystoneCorners,
		CornerPin:       p.cornerPin,
	}
}

func (p *projectorImpl) clampShift(h, v float32) (float32, float32) {
	maxH := p.lens.ShiftH / 100
	maxV := p.lens.ShiftV / 100
	return clampFinite(h, -maxH, maxH), clampFinite(v, -maxV, maxV)
}

func setCorner(c *common.Corners, corner Corner, x, y float32) {
	v := common.Vec2{
		clampFinite(x, -MaxCornerOffset, MaxCornerOffset),
		clampFinite(y, -MaxCornerOffset, MaxCornerOffset),
	}
	switch corner {
	case CornerTL:
		c.TL = v
	case CornerTR:
		c.TR = v
	case CornerBL:
		c.BL = v
	case CornerBR:
		c.BR = v
	}
}

// clampFinite clamps v to [lo, hi], mapping NaN to lo.
func clampFinite(v, lo, hi float32) float32 {
	if math32.IsNaN(v) {
		return lo
	}
	return common.Clamp(v, lo, hi)
}
