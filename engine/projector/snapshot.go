package projector

import "github.com/Carmen-Shannon/oxy-projector/common"

// Snapshot is the render state of one projector for one frame. The shadow pass and the compositor
// both read their matrices from the same Snapshot, so the two passes see identical values.
type Snapshot struct {
	ID     uint64
	Slot   int
	Active bool

	View       common.Mat4
	Projection common.Mat4
	Shadow     common.Mat4 // Projection * View

	Position      common.Vec3
	Intensity     float32
	ShadowBias    float32
	Near          float32
	Far           float32
	ProjectionFar float32

	Warp     common.WarpParams
	SoftEdge SoftEdge
	Texture  TextureHandle
}

// Spec is the human readable summary of a projector used by reports.
type Spec struct {
	ID         uint64
	Name       string
	ModelName  string
	LensName   string
	Lumens     int
	Resolution string
	Aspect     float32

	ThrowRatio float32
	FOV        float32
	Position   common.Vec3
	Target     common.Vec3
	Intensity  float32
	Active     bool

	LensShiftH float32
	LensShiftV float32
	KeystoneH  float32
	KeystoneV  float32

	// Distance is the lens to target distance the image size is computed at.
	Distance    float32
	ImageWidth  float32
	ImageHeight float32
	Illuminance float32 // lux at the target distance, matte white screen
}

func (p *projectorImpl) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := p.viewMatrix()
	proj := p.projectionMatrix()
	return Snapshot{
		ID:            p.id,
		Slot:          p.shadowSlot,
		Active:        p.active,
		View:          view,
		Projection:    proj,
		Shadow:        proj.Mul(view),
		Position:      p.position,
		Intensity:     p.intensity,
		ShadowBias:    p.shadowBias,
		Near:          p.near,
		Far:           p.far,
		ProjectionFar: p.projectionFar,
		Warp:          p.warp(),
		SoftEdge:      p.softEdge,
		Texture:       p.texture,
	}
}

func (p *projectorImpl) Spec() Spec {
	p.mu.Lock()
	defer p.mu.Unlock()

	distance := p.target.Sub(p.position).Length()
	aspect := p.aspect()
	w, h := common.ProjectionSize(p.throwRatio, distance, aspect)
	return Spec{
		ID:          p.id,
		Name:        p.name,
		ModelName:   p.model.Name,
		LensName:    p.lens.Name,
		Lumens:      p.model.Lumens,
		Resolution:  p.model.Resolution,
		Aspect:      aspect,
		ThrowRatio:  p.throwRatio,
		FOV:         p.fov(),
		Position:    p.position,
		Target:      p.target,
		Intensity:   p.intensity,
		Active:      p.active,
		LensShiftH:  p.shiftH,
		LensShiftV:  p.shiftV,
		KeystoneH:   p.keystoneH,
		KeystoneV:   p.keystoneV,
		Distance:    distance,
		ImageWidth:  w,
		ImageHeight: h,
		Illuminance: common.Illuminance(float32(p.model.Lumens)*p.intensity, w*h, 1),
	}
}
