package projector

import "github.com/Carmen-Shannon/oxy-projector/common"

// ProjectorBuilderOption is a function that configures a Projector instance during construction.
// Numeric options clamp to the same ranges as the setters.
type ProjectorBuilderOption func(*projectorImpl)

// WithID is an option builder that restores a persisted id instead of allocating a new one.
// The allocator is advanced past the id.
//
// Parameters:
//   - id: the persisted id, must be non-zero
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the id option to a projectorImpl
func WithID(id uint64) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.id = id
	}
}

// WithName is an option builder that sets the display name.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the name option to a projectorImpl
func WithName(name string) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.name = name
	}
}

// WithPosition is an option builder that sets the lens position. Unless WithTarget is also given,
// the target is placed 8 units down -Z from the position.
//
// Parameters:
//   - pos: world-space position
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the position option to a projectorImpl
func WithPosition(pos common.Vec3) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.position = pos
	}
}

// WithTarget is an option builder that sets the aim point.
//
// Parameters:
//   - target: world-space aim point
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the target option to a projectorImpl
func WithTarget(target common.Vec3) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.target = target
		p.aimed = true
	}
}

// WithThrowRatio is an option builder that sets the throw ratio, clamped to the lens range.
//
// Parameters:
//   - r: the throw ratio
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the throw ratio option to a projectorImpl
func WithThrowRatio(r float32) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.throwRatio = clampFinite(r, p.lens.ThrowMin, p.lens.ThrowMax)
	}
}

// WithLensShift is an option builder that sets the lens shift, clamped to the lens limits.
//
// Parameters:
//   - h: horizontal shift
//   - v: vertical shift
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the lens shift option to a projectorImpl
func WithLensShift(h, v float32) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.shiftH, p.shiftV = p.clampShift(h, v)
	}
}

// WithKeystone is an option builder that sets the basic keystone correction.
//
// Parameters:
//   - v: vertical keystone in percent
//   - h: horizontal keystone in percent
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the keystone option to a projectorImpl
func WithKeystone(v, h float32) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.keystoneV = clampFinite(v, -MaxKeystone, MaxKeystone)
		p.keystoneH = clampFinite(h, -MaxKeystone, MaxKeystone)
	}
}

// WithIntensity is an option builder that sets the brightness multiplier.
//
// Parameters:
//   - i: the multiplier in [0, 2]
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the intensity option to a projectorImpl
func WithIntensity(i float32) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.intensity = clampFinite(i, 0, MaxIntensity)
	}
}

// WithActive is an option builder that sets whether the projector illuminates the scene.
//
// Parameters:
//   - active: the initial state
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the active option to a projectorImpl
func WithActive(active bool) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.active = active
	}
}

// WithOrientation is an option builder that sets the mounting.
//
// Parameters:
//   - o: landscape or portrait
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the orientation option to a projectorImpl
func WithOrientation(o Orientation) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		if o == OrientationPortrait {
			p.orientation = o
		}
	}
}

// WithClipPlanes is an option builder that sets the projection depth range and illumination cut-off.
//
// Parameters:
//   - near: near plane
//   - far: far plane
//   - projectionFar: illumination cut-off
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the clip plane option to a projectorImpl
func WithClipPlanes(near, far, projectionFar float32) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		if near > 0 && far > near {
			p.near, p.far = near, far
		}
		if projectionFar > 0 {
			p.projectionFar = projectionFar
		}
	}
}

// WithShadowBias is an option builder that sets the depth comparison tolerance.
//
// Parameters:
//   - bias: the tolerance
//
// Returns:
//   - ProjectorBuilderOption: a function that applies the shadow bias option to a projectorImpl
func WithShadowBias(bias float32) ProjectorBuilderOption {
	return func(p *projectorImpl) {
		p.shadowBias = clampFinite(bias, 0, 1)
	}
}
