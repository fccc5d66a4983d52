package light

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/chewxy/math32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Affects all fragments uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis, controlled by inner and outer cone angles.
	LightTypeSpot

	// LightTypeAmbient adds a uniform colour to every fragment.
	LightTypeAmbient
)

var lightTypeNames = map[LightType]string{
	LightTypeDirectional: "directional",
	LightTypePoint:       "point",
	LightTypeSpot:        "spot",
	LightTypeAmbient:     "ambient",
}

// String returns the persisted name of the light type.
func (t LightType) String() string {
	if n, ok := lightTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("light(%d)", int(t))
}

// ParseLightType maps a persisted name to a LightType.
//
// Parameters:
//   - s: the type name
//
// Returns:
//   - LightType: the type
//   - error: ErrUnknownLightType when s is not registered
func ParseLightType(s string) (LightType, error) {
	for t, n := range lightTypeNames {
		if n == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLightType, s)
}

// Defaults applied by NewLight.
const (
	DefaultIntensity  float32 = 1
	DefaultShadowBias float32 = 0.003

	DefaultConstant  float32 = 1
	DefaultLinear    float32 = 0.09
	DefaultQuadratic float32 = 0.032
	DefaultRange     float32 = 100

	DefaultInnerConeDeg float32 = 12.5
	DefaultOuterConeDeg float32 = 17.5

	DefaultAmbientLevel float32 = 0.2
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	id           uint64
	name         string
	lightType    LightType
	position     common.Vec3
	direction    common.Vec3
	color        common.Vec3
	intensity    float32
	lightRange   float32
	constant     float32
	linear       float32
	quadratic    float32
	innerDeg     float32
	outerDeg     float32
	enabled      bool
	castsShadows bool
	shadowBias   float32
}

// Light defines the interface for a light source in the scene.
//
// Lights add to the base shading underneath projector contributions. All light types
// share this interface; type-specific properties (e.g. cone angles for spot lights)
// are ignored when not applicable.
type Light interface {
	property.Target

	// SetID assigns the scene id. Called by the scene when the light is added.
	//
	// Parameters:
	//   - id: the id to assign
	SetID(id uint64)

	// Name returns the display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional and ambient lights.
	//
	// Returns:
	//   - common.Vec3: the position
	Position() common.Vec3

	// Direction returns the normalized direction the light travels.
	// For spot lights this is the cone axis.
	//
	// Returns:
	//   - common.Vec3: the unit direction
	Direction() common.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - common.Vec3: color as (r, g, b)
	Color() common.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// Attenuation returns the constant, linear and quadratic falloff coefficients.
	//
	// Returns:
	//   - constant, linear, quadratic: the coefficients
	Attenuation() (constant, linear, quadratic float32)

	// CalculateRange returns the distance at which attenuation falls to threshold,
	// solving quadratic·d² + linear·d + (constant − 1/threshold) = 0.
	//
	// Parameters:
	//   - threshold: the attenuation cutoff in (0, 1]
	//
	// Returns:
	//   - float32: the distance, or the current range when no positive root exists
	CalculateRange(threshold float32) float32

	// SpotCone returns the inner and outer cone half-angles in degrees.
	//
	// Returns:
	//   - inner, outer: the angles
	SpotCone() (inner, outer float32)

	Enabled() bool
	CastsShadows() bool
	ShadowBias() float32

	SetPosition(p common.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	// A zero vector keeps the current direction.
	//
	// Parameters:
	//   - d: the new direction
	SetDirection(d common.Vec3)

	SetColor(c common.Vec3)
	SetIntensity(intensity float32)
	SetRange(lightRange float32)

	// SetAttenuation sets the falloff coefficients. Negative values clamp to zero and constant to at least 1e-4.
	//
	// Parameters:
	//   - constant, linear, quadratic: the coefficients
	SetAttenuation(constant, linear, quadratic float32)

	// SetSpotCone sets the inner and outer cone half-angles in degrees.
	// The outer angle never drops below the inner angle.
	//
	// Parameters:
	//   - innerDeg: inner cone half-angle in degrees
	//   - outerDeg: outer cone half-angle in degrees
	SetSpotCone(innerDeg, outerDeg float32)

	SetEnabled(enabled bool)
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with the defaults of that type and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  common.Vec3{0, -1, 0},
		color:      common.Vec3{1, 1, 1},
		intensity:  DefaultIntensity,
		lightRange: DefaultRange,
		constant:   DefaultConstant,
		linear:     DefaultLinear,
		quadratic:  DefaultQuadratic,
		innerDeg:   DefaultInnerConeDeg,
		outerDeg:   DefaultOuterConeDeg,
		enabled:    true,
		shadowBias: DefaultShadowBias,
	}
	switch lightType {
	case LightTypeDirectional:
		l.castsShadows = true
	case LightTypeAmbient:
		l.color = common.Vec3{DefaultAmbientLevel, DefaultAmbientLevel, DefaultAmbientLevel}
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.outerDeg < l.innerDeg {
		l.outerDeg = l.innerDeg
	}
	return l
}

// NewLightByName is the factory used by project loading and the CLI.
//
// Parameters:
//   - typeName: "directional", "point", "spot" or "ambient"
//   - opts: builder options
//
// Returns:
//   - Light: the light
//   - error: ErrUnknownLightType for other names
func NewLightByName(typeName string, opts ...LightBuilderOption) (Light, error) {
	t, err := ParseLightType(typeName)
	if err != nil {
		return nil, err
	}
	return NewLight(t, opts...), nil
}

func (l *lightImpl) ID() uint64 {
	return l.id
}

func (l *lightImpl) SetID(id uint64) {
	l.id = id
}

func (l *lightImpl) Name() string {
	if l.name == "" {
		return fmt.Sprintf("%s light #%d", l.lightType, l.id)
	}
	return l.name
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() common.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() common.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() common.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Attenuation() (float32, float32, float32) {
	return l.constant, l.linear, l.quadratic
}

func (l *lightImpl) CalculateRange(threshold float32) float32 {
	if !(threshold > 0) {
		return l.lightRange
	}
	c := l.constant - 1/threshold
	if l.quadratic == 0 {
		if l.linear == 0 {
			return l.lightRange
		}
		d := -c / l.linear
		if d <= 0 {
			return l.lightRange
		}
		return d
	}
	disc := l.linear*l.linear - 4*l.quadratic*c
	if disc < 0 {
		return l.lightRange
	}
	d := (-l.linear + math32.Sqrt(disc)) / (2 * l.quadratic)
	if d <= 0 {
		return l.lightRange
	}
	return d
}

func (l *lightImpl) SpotCone() (float32, float32) {
	return l.innerDeg, l.outerDeg
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) ShadowBias() float32 {
	return l.shadowBias
}

func (l *lightImpl) SetPosition(p common.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d common.Vec3) {
	l.direction = d.NormalizeOr(l.direction)
}

func (l *lightImpl) SetColor(c common.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = max(intensity, 0)
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = max(lightRange, 0)
}

func (l *lightImpl) SetAttenuation(constant, linear, quadratic float32) {
	l.constant = max(constant, 1e-4)
	l.linear = max(linear, 0)
	l.quadratic = max(quadratic, 0)
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerDeg = common.Clamp(innerDeg, 0, 89)
	l.outerDeg = common.Clamp(max(outerDeg, l.innerDeg), 0, 89)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}

func (l *lightImpl) Get(p property.Property) (float32, bool) {
	switch p {
	case property.PositionX, property.PositionY, property.PositionZ:
		return l.position[p-property.PositionX], true
	case property.Intensity:
		return l.intensity, true
	case property.Active:
		return property.Float(l.enabled), true
	}
	return 0, false
}

func (l *lightImpl) Set(p property.Property, v float32) bool {
	switch p {
	case property.PositionX, property.PositionY, property.PositionZ:
		l.position[p-property.PositionX] = v
	case property.Intensity:
		l.SetIntensity(v)
	case property.Active:
		l.enabled = property.Bool(v)
	default:
		return false
	}
	return true
}
