package drawable

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-projector/common"
)

// GPUObjectUniformSource is the canonical WGSL definition of the ObjectUniform struct.
// Matches GPUObjectUniform layout exactly (144 bytes).
//
//go:embed assets/object.wgsl
var GPUObjectUniformSource string

// GPUObjectUniform is the per-drawable uniform bound at group 1 of the depth and main pipelines.
// Size: 144 bytes.
type GPUObjectUniform struct {
	Model         [16]float32 // offset   0: model matrix (column-major)
	NormalMatrix  [16]float32 // offset  64: inverse transpose of the model matrix
	Color         [3]float32  // offset 128: linear RGB base colour
	ReceiveShadow uint32      // offset 140: 1 when projector shadows apply to this object
}

// Size returns the size of the GPUObjectUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUObjectUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUObjectUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 144-byte buffer ready for GPU upload.
func (g *GPUObjectUniform) Marshal() []byte {
	buf := make([]byte, 144)
	for i, v := range g.Model {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.NormalMatrix {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	for i, v := range g.Color {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[140:], g.ReceiveShadow)
	return buf
}

// NewGPUObjectUniform packs a model matrix, colour and shadow flag into the uniform layout.
//
// Parameters:
//   - model: the world transform
//   - color: the base colour
//   - receiveShadow: whether projector shadows apply
//
// Returns:
//   - GPUObjectUniform: the packed uniform
func NewGPUObjectUniform(model common.Mat4, color common.Vec3, receiveShadow bool) GPUObjectUniform {
	u := GPUObjectUniform{
		Model:        model,
		NormalMatrix: common.NormalMatrix(model),
		Color:        color,
	}
	if receiveShadow {
		u.ReceiveShadow = 1
	}
	return u
}
