package projector

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUDepthUniformSource is the canonical WGSL definition of the DepthUniform struct.
// Matches GPUDepthUniform layout exactly (144 bytes).
//
//go:embed assets/depth_uniform.wgsl
var GPUDepthUniformSource string

// GPUDepthUniform is the per-slot uniform read by the shadow depth pass.
// Size: 144 bytes (WGSL uniform aligned).
type GPUDepthUniform struct {
	View     [16]float32 // offset   0
	ViewProj [16]float32 // offset  64
	Near     float32     // offset 128
	Far      float32     // offset 132
	_pad     [2]float32  // offset 136
}

// NewGPUDepthUniform packs the depth pass matrices of a snapshot.
//
// Parameters:
//   - s: the projector snapshot
//
// Returns:
//   - GPUDepthUniform: the packed uniform
func NewGPUDepthUniform(s Snapshot) GPUDepthUniform {
	return GPUDepthUniform{
		View:     s.View,
		ViewProj: s.Shadow,
		Near:     s.Near,
		Far:      s.Far,
	}
}

// Size returns the size of the GPUDepthUniform struct in bytes.
func (g *GPUDepthUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDepthUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUDepthUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.View[:])
	putFloats(buf, 64, g.ViewProj[:])
	binary.LittleEndian.PutUint32(buf[128:], math.Float32bits(g.Near))
	binary.LittleEndian.PutUint32(buf[132:], math.Float32bits(g.Far))
	return buf
}
