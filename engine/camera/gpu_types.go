package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-projector/common"
)

// GPUCameraUniformSource declares the CameraUniform struct written by GPUCameraUniform.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the preview camera as bound at group 0 binding 0 of the composite and
// overlay passes. The trailing word pads the vec3 position to the 16 byte struct alignment.
type GPUCameraUniform struct {
	ViewProj       [16]float32
	CameraPosition [3]float32
	_              float32
}

// NewGPUCameraUniform packs a view-projection matrix and eye position.
//
// Parameters:
//   - viewProj: the column-major view-projection matrix
//   - eye: the world-space camera position
//
// Returns:
//   - GPUCameraUniform: the packed uniform
func NewGPUCameraUniform(viewProj common.Mat4, eye common.Vec3) GPUCameraUniform {
	return GPUCameraUniform{ViewProj: viewProj, CameraPosition: eye}
}

// Size returns the uniform size in bytes (80).
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the uniform little endian in WGSL field order.
//
// Returns:
//   - []byte: Size() bytes ready for a buffer write
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	words := append(g.ViewProj[:0:0], g.ViewProj[:]...)
	words = append(words, g.CameraPosition[:]...)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(w))
	}
	return buf
}
