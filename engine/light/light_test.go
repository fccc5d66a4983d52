package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsPerType(t *testing.T) {
	p := NewLight(LightTypePoint)
	c, l, q := p.Attenuation()
	assert.Equal(t, DefaultConstant, c)
	assert.Equal(t, DefaultLinear, l)
	assert.Equal(t, DefaultQuadratic, q)
	assert.Equal(t, DefaultRange, p.Range())
	assert.Equal(t, common.Vec3{1, 1, 1}, p.Color())
	assert.Equal(t, float32(1), p.Intensity())
	assert.Equal(t, DefaultShadowBias, p.ShadowBias())
	assert.True(t, p.Enabled())
	assert.False(t, p.CastsShadows())

	d := NewLight(LightTypeDirectional)
	assert.Equal(t, common.Vec3{0, -1, 0}, d.Direction())
	assert.True(t, d.CastsShadows())

	s := NewLight(LightTypeSpot)
	inner, outer := s.SpotCone()
	assert.Equal(t, DefaultInnerConeDeg, inner)
	assert.Equal(t, DefaultOuterConeDeg, outer)

	a := NewLight(LightTypeAmbient)
	assert.Equal(t, common.Vec3{0.2, 0.2, 0.2}, a.Color())
}

func TestCalculateRange(t *testing.T) {
	l := NewLight(LightTypePoint)
	assert.InDelta(t, 54.233, l.CalculateRange(0.01), 1e-2)
	assert.InDelta(t, 87.873, l.CalculateRange(1.0/256), 1e-2)
	assert.Equal(t, DefaultRange, l.CalculateRange(0))

	linear := NewLight(LightTypePoint, WithAttenuation(1, 0.5, 0))
	assert.InDelta(t, 18, linear.CalculateRange(0.1), 1e-4)
}

func TestSpotConeOuterNeverBelowInner(t *testing.T) {
	s := NewLight(LightTypeSpot, WithSpotCone(30, 10))
	inner, outer := s.SpotCone()
	assert.Equal(t, float32(30), inner)
	assert.Equal(t, float32(30), outer)

	s.SetSpotCone(5, 20)
	inner, outer = s.SpotCone()
	assert.Equal(t, float32(5), inner)
	assert.Equal(t, float32(20), outer)
}

func TestSetDirectionNormalizesAndKeepsOnZero(t *testing.T) {
	l := NewLight(LightTypeDirectional)
	l.SetDirection(common.Vec3{0, 0, -3})
	assert.Equal(t, common.Vec3{0, 0, -1}, l.Direction())
	l.SetDirection(common.Vec3{})
	assert.Equal(t, common.Vec3{0, 0, -1}, l.Direction())
}

func TestNewLightByName(t *testing.T) {
	for _, name := range []string{"directional", "point", "spot", "ambient"} {
		l, err := NewLightByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, l.Type().String())
	}
	_, err := NewLightByName("area")
	assert.ErrorIs(t, err, ErrUnknownLightType)
}

func TestLightPropertyTarget(t *testing.T) {
	l := NewLight(LightTypePoint)
	l.SetID(3)
	assert.Equal(t, uint64(3), l.ID())
	assert.Equal(t, "point light #3", l.Name())

	assert.True(t, l.Set(property.PositionY, 2))
	assert.True(t, l.Set(property.Intensity, -1))
	assert.False(t, l.Set(property.ThrowRatio, 1))
	assert.Equal(t, common.Vec3{0, 2, 0}, l.Position())
	assert.Zero(t, l.Intensity())
}

func TestGPULayoutSizes(t *testing.T) {
	assert.Equal(t, 80, (&GPULight{}).Size())
	assert.Equal(t, 672, (&GPUSceneLighting{}).Size())
}

func TestNewGPUSceneLighting(t *testing.T) {
	lights := []Light{
		NewLight(LightTypeAmbient, WithIntensity(0.5)),
		NewLight(LightTypePoint, WithPosition(common.Vec3{1, 2, 3})),
		NewLight(LightTypeSpot, WithEnabled(false)),
	}
	g := NewGPUSceneLighting(DefaultLighting(), lights)

	assert.Equal(t, uint32(1), g.LightCount)
	assert.InDelta(t, 0.2, g.Ambient[0], 1e-6)
	assert.InDelta(t, 1, g.Direction[0]*g.Direction[0]+g.Direction[1]*g.Direction[1]+g.Direction[2]*g.Direction[2], 1e-5)
	assert.Equal(t, float32(0.5), g.DirectionalIntensity)
	assert.Equal(t, [3]float32{1, 2, 3}, g.Lights[0].Position)
	assert.InDelta(t, math.Cos(12.5*math.Pi/180), g.Lights[0].InnerCone, 1e-5)

	buf := g.Marshal()
	require.Len(t, buf, 672)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[28:]))
	assert.Equal(t, uint32(LightTypePoint), binary.LittleEndian.Uint32(buf[32+12:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[32+68:]))
}

func TestSceneLightsCapped(t *testing.T) {
	var lights []Light
	for range MaxSceneLights + 3 {
		lights = append(lights, NewLight(LightTypePoint))
	}
	g := NewGPUSceneLighting(DefaultLighting(), lights)
	assert.Equal(t, uint32(MaxSceneLights), g.LightCount)
}
