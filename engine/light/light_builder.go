package light

import "github.com/Carmen-Shannon/oxy-projector/common"

// LightBuilderOption configures a light in NewLight. Options run after the defaults of the light type.
type LightBuilderOption func(*lightImpl)

// WithID restores a persisted id.
func WithID(id uint64) LightBuilderOption {
	return func(l *lightImpl) { l.id = id }
}

// WithName sets the display name.
func WithName(name string) LightBuilderOption {
	return func(l *lightImpl) { l.name = name }
}

// WithPosition places a point or spot light.
func WithPosition(p common.Vec3) LightBuilderOption {
	return func(l *lightImpl) { l.position = p }
}

// WithDirection aims a directional or spot light. A zero vector keeps the current direction.
//
// Parameters:
//   - d: the direction, normalized on store
//
// Returns:
//   - LightBuilderOption: the option
func WithDirection(d common.Vec3) LightBuilderOption {
	return func(l *lightImpl) { l.direction = d.NormalizeOr(l.direction) }
}

// WithColor sets the linear RGB colour.
func WithColor(c common.Vec3) LightBuilderOption {
	return func(l *lightImpl) { l.color = c }
}

// WithIntensity sets the intensity multiplier. Negative values become 0.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) { l.intensity = max(intensity, 0) }
}

// WithRange sets the distance past which point and spot lights contribute nothing.
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) { l.lightRange = max(lightRange, 0) }
}

// WithAttenuation sets the falloff coefficients through SetAttenuation.
//
// Parameters:
//   - constant, linear, quadratic: the coefficients of 1 / (c + l·d + q·d²)
//
// Returns:
//   - LightBuilderOption: the option
func WithAttenuation(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *lightImpl) { l.SetAttenuation(constant, linear, quadratic) }
}

// WithSpotCone sets the cone half-angles in degrees. The outer angle is raised to the inner one when
// smaller.
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) { l.SetSpotCone(innerDeg, outerDeg) }
}

// WithEnabled includes or excludes the light from SceneLighting.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) { l.enabled = enabled }
}

// WithCastsShadows flags the light as a shadow caster.
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) { l.castsShadows = castsShadows }
}
