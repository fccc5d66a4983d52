package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
)

// MaxSceneLights is the number of light slots in the scene lighting uniform.
// Enabled non-ambient lights beyond this count are not evaluated on the GPU.
const MaxSceneLights = 8

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (80 bytes, uniform aligned).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 80 bytes.
type GPULight struct {
	Position   [3]float32 // offset  0: world-space position (point/spot) or unused (directional)
	LightType  uint32     // offset 12: 0 = directional, 1 = point, 2 = spot
	Color      [3]float32 // offset 16: RGB color
	Intensity  float32    // offset 28: scalar multiplier
	Direction  [3]float32 // offset 32: normalized travel direction (directional/spot)
	LightRange float32    // offset 44: attenuation cutoff distance
	InnerCone  float32    // offset 48: cos(inner half-angle) for spot
	OuterCone  float32    // offset 52: cos(outer half-angle) for spot
	Constant   float32    // offset 56: constant attenuation
	Linear     float32    // offset 60: linear attenuation
	Quadratic  float32    // offset 64: quadratic attenuation
	Enabled    uint32     // offset 68: 1 when the light contributes
	_pad0      uint32     // offset 72: padding
	_pad1      uint32     // offset 76: padding to 80
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 80)
	putVec3(buf[0:], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	putVec3(buf[32:], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.LightRange))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.InnerCone))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.OuterCone))
	binary.LittleEndian.PutUint32(buf[56:60], math.Float32bits(g.Constant))
	binary.LittleEndian.PutUint32(buf[60:64], math.Float32bits(g.Linear))
	binary.LittleEndian.PutUint32(buf[64:68], math.Float32bits(g.Quadratic))
	binary.LittleEndian.PutUint32(buf[68:72], g.Enabled)
	return buf
}

// ToGPULight converts a Light interface value into the GPU-aligned GPULight struct.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	c, lin, q := l.Attenuation()
	inner, outer := l.SpotCone()
	g := GPULight{
		Position:   l.Position(),
		LightType:  uint32(l.Type()),
		Color:      l.Color(),
		Intensity:  l.Intensity(),
		Direction:  l.Direction(),
		LightRange: l.Range(),
		InnerCone:  cosDeg(inner),
		OuterCone:  cosDeg(outer),
		Constant:   c,
		Linear:     lin,
		Quadratic:  q,
	}
	if l.Enabled() {
		g.Enabled = 1
	}
	return g
}

// GPUSceneLightingSource is the canonical WGSL definition of the SceneLighting struct.
// Matches GPUSceneLighting layout exactly (672 bytes).
//
//go:embed assets/scene_lighting.wgsl
var GPUSceneLightingSource string

// GPUSceneLighting is the lighting uniform bound at group 0 binding 1 of the main pipeline.
// Size: 32 + MaxSceneLights*80 = 672 bytes.
type GPUSceneLighting struct {
	Direction            [3]float32 // offset  0: unit direction towards the directional light
	DirectionalIntensity float32    // offset 12
	Ambient              [3]float32 // offset 16: ambient colour, scene level plus ambient lights
	LightCount           uint32     // offset 28: used entries of Lights
	Lights               [MaxSceneLights]GPULight
}

// Size returns the size of the GPUSceneLighting struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (672)
func (g *GPUSceneLighting) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSceneLighting struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 672-byte buffer ready for GPU upload
func (g *GPUSceneLighting) Marshal() []byte {
	buf := make([]byte, 32+MaxSceneLights*80)
	putVec3(buf[0:], g.Direction)
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.DirectionalIntensity))
	putVec3(buf[16:], g.Ambient)
	binary.LittleEndian.PutUint32(buf[28:32], g.LightCount)
	for i := range g.Lights {
		copy(buf[32+i*80:], g.Lights[i].Marshal())
	}
	return buf
}

// NewGPUSceneLighting folds the scene lighting and the light list into the uniform layout.
// Ambient lights add colour×intensity to the ambient term. Other enabled lights fill the
// light slots in order, up to MaxSceneLights.
//
// Parameters:
//   - lighting: the scene-wide base lighting
//   - lights: the scene's lights
//
// Returns:
//   - GPUSceneLighting: the packed uniform
func NewGPUSceneLighting(lighting Lighting, lights []Light) GPUSceneLighting {
	lighting = lighting.Normalized()
	g := GPUSceneLighting{
		Direction:            lighting.Direction,
		DirectionalIntensity: lighting.DirectionalIntensity,
		Ambient:              [3]float32{lighting.Ambient, lighting.Ambient, lighting.Ambient},
	}
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		if l.Type() == LightTypeAmbient {
			c := l.Color()
			for i := range 3 {
				g.Ambient[i] += c[i] * l.Intensity()
			}
			continue
		}
		if g.LightCount >= MaxSceneLights {
			continue
		}
		g.Lights[g.LightCount] = ToGPULight(l)
		g.LightCount++
	}
	return g
}

func putVec3(buf []byte, v [3]float32) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v[i]))
	}
}

// cosDeg converts an angle in degrees to the cosine of that angle in radians.
func cosDeg(deg float32) float32 {
	return math32.Cos(deg * math32.Pi / 180)
}
