package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for mesh pipelines.
// Matches GPUVertex layout exactly (24 bytes, tightly packed vertex attributes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 24 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space
	Normal   [3]float32 // offset 12: unit surface normal
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 24-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 24)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(g.Normal[i]))
	}
	return buf
}

// GPULineVertexSource is the canonical WGSL definition of the LineVertexInput struct for helper line pipelines.
// Matches GPULineVertex layout exactly (24 bytes).
//
//go:embed assets/line_vertex.wgsl
var GPULineVertexSource string

// GPULineVertex is the GPU representation of one end of a coloured helper line.
// Size: 24 bytes.
type GPULineVertex struct {
	Position [3]float32 // offset  0: world-space position
	Color    [3]float32 // offset 12: linear RGB colour
}

// Size returns the size of the GPULineVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPULineVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULineVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 24-byte buffer ready for GPU upload.
func (g *GPULineVertex) Marshal() []byte {
	buf := make([]byte, 24)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}

// MarshalVertices packs a vertex slice into one contiguous upload buffer.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: the packed vertex data
func MarshalVertices(vertices []GPUVertex) []byte {
	out := make([]byte, 0, len(vertices)*24)
	for i := range vertices {
		out = append(out, vertices[i].Marshal()...)
	}
	return out
}

// MarshalLineVertices packs a line vertex slice into one contiguous upload buffer.
//
// Parameters:
//   - vertices: the line vertices to pack, two per segment
//
// Returns:
//   - []byte: the packed vertex data
func MarshalLineVertices(vertices []GPULineVertex) []byte {
	out := make([]byte, 0, len(vertices)*24)
	for i := range vertices {
		out = append(out, vertices[i].Marshal()...)
	}
	return out
}

// MarshalIndices packs uint32 indices little endian for an IndexFormatUint32 index buffer.
//
// Parameters:
//   - indices: the triangle list indices
//
// Returns:
//   - []byte: the packed index data
func MarshalIndices(indices []uint32) []byte {
	out := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}

// ComputeBoundingRadius calculates the bounding sphere radius from the vertex positions.
// The radius is the maximum distance from the origin across all vertices in the slice.
//
// Parameters:
//   - vertices: the vertex data to compute the bounding radius from
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}
