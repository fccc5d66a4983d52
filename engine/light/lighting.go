package light

import "github.com/Carmen-Shannon/oxy-projector/common"

// Lighting is the scene-wide base illumination applied under projector light.
type Lighting struct {
	Ambient              float32
	DirectionalIntensity float32
	Direction            common.Vec3 // direction towards the light
}

// DefaultLighting returns the lighting of a new scene.
func DefaultLighting() Lighting {
	return Lighting{
		Ambient:              0.1,
		DirectionalIntensity: 0.5,
		Direction:            common.Vec3{0.5, 0.8, 0.5},
	}
}

// Normalized returns the lighting with a unit direction and non-negative intensities.
func (l Lighting) Normalized() Lighting {
	l.Ambient = max(l.Ambient, 0)
	l.DirectionalIntensity = max(l.DirectionalIntensity, 0)
	l.Direction = l.Direction.NormalizeOr(common.Vec3{0, 1, 0})
	return l
}
