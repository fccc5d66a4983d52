package projector

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-projector/common"
)

// MaxSlots is the number of projectors composited and shadowed per frame.
const MaxSlots = 4

// GPUProjectorSlotSource is the canonical WGSL definition of the ProjectorSlot and ProjectorBlock structs.
// Matches GPUProjectorSlot layout exactly (336 bytes per slot).
//
//go:embed assets/projector_slot.wgsl
var GPUProjectorSlotSource string

// Byte offsets into the ProjectorBlock uniform.
const (
	// SlotStride is the array stride of ProjectorBlock.slots.
	SlotStride = 336
	// ActiveOffset is the offset of the active word inside a slot.
	ActiveOffset = 208
	// BlockSize is the size of the whole ProjectorBlock.
	BlockSize = SlotStride * MaxSlots
)

// GPUProjectorSlot is the GPU-aligned representation of one projector slot.
// Matches the WGSL ProjectorSlot struct layout exactly (see GPUProjectorSlotSource).
// Size: 336 bytes (WGSL uniform aligned).
type GPUProjectorSlot struct {
	ViewProj        [16]float32 // offset   0: projection * view used for texture lookup
	ShadowMatrix    [16]float32 // offset  64: projection * view used for shadow lookup
	ShadowView      [16]float32 // offset 128: view matrix for linear depth reconstruction
	Position        [3]float32  // offset 192: lens position
	Intensity       float32     // offset 204
	Active          uint32      // offset 208
	HasTexture      uint32      // offset 212
	TextureUnit     uint32      // offset 216: 0-3
	ShadowUnit      uint32      // offset 220: 4-7
	ShadowBias      float32     // offset 224
	DepthMapFar     float32     // offset 228: far plane the depth map was normalized by
	ProjectionFar   float32     // offset 232
	SoftEdgeGamma   float32     // offset 236
	Keystone        [4]float32  // offset 240: v, h, 0, 0
	KeystoneCorners [8]float32  // offset 256: tl.xy, tr.xy, bl.xy, br.xy
	CornerPin       [8]float32  // offset 288: tl.xy, tr.xy, bl.xy, br.xy
	SoftEdge        [4]float32  // offset 320: left, right, top, bottom
}

// NewGPUProjectorSlot packs a frame snapshot into its uniform representation.
// Texture unit and shadow unit are derived from the snapshot's slot.
//
// Parameters:
//   - s: the projector snapshot, which must hold a slot in [0, MaxSlots)
//   - hasTexture: whether a projection image is bound for the slot
//
// Returns:
//   - GPUProjectorSlot: the packed slot
func NewGPUProjectorSlot(s Snapshot, hasTexture bool) GPUProjectorSlot {
	g := GPUProjectorSlot{
		ViewProj:      s.Shadow,
		ShadowMatrix:  s.Shadow,
		ShadowView:    s.View,
		Position:      s.Position,
		Intensity:     s.Intensity,
		Active:        boolWord(s.Active),
		HasTexture:    boolWord(hasTexture),
		TextureUnit:   uint32(s.Slot),
		ShadowUnit:    uint32(MaxSlots + s.Slot),
		ShadowBias:    s.ShadowBias,
		DepthMapFar:   s.Far,
		ProjectionFar: s.ProjectionFar,
		SoftEdgeGamma: s.SoftEdge.Gamma,
		Keystone:      [4]float32{s.Warp.KeystoneV, s.Warp.KeystoneH, 0, 0},
		SoftEdge:      [4]float32{s.SoftEdge.Left, s.SoftEdge.Right, s.SoftEdge.Top, s.SoftEdge.Bottom},
	}
	g.KeystoneCorners = flattenCorners(s.Warp.KeystoneCorners)
	g.CornerPin = flattenCorners(s.Warp.CornerPin)
	return g
}

// Size returns the size of the GPUProjectorSlot struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (336)
func (g *GPUProjectorSlot) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUProjectorSlot struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUProjectorSlot) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.ViewProj[:])
	putFloats(buf, 64, g.ShadowMatrix[:])
	putFloats(buf, 128, g.ShadowView[:])
	putFloats(buf, 192, g.Position[:])
	binary.LittleEndian.PutUint32(buf[204:], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[208:], g.Active)
	binary.LittleEndian.PutUint32(buf[212:], g.HasTexture)
	binary.LittleEndian.PutUint32(buf[216:], g.TextureUnit)
	binary.LittleEndian.PutUint32(buf[220:], g.ShadowUnit)
	binary.LittleEndian.PutUint32(buf[224:], math.Float32bits(g.ShadowBias))
	binary.LittleEndian.PutUint32(buf[228:], math.Float32bits(g.DepthMapFar))
	binary.LittleEndian.PutUint32(buf[232:], math.Float32bits(g.ProjectionFar))
	binary.LittleEndian.PutUint32(buf[236:], math.Float32bits(g.SoftEdgeGamma))
	putFloats(buf, 240, g.Keystone[:])
	putFloats(buf, 256, g.KeystoneCorners[:])
	putFloats(buf, 288, g.CornerPin[:])
	putFloats(buf, 320, g.SoftEdge[:])
	return buf
}

// InactiveWord returns the 4 byte active word written for a slot that is switched off.
//
// Returns:
//   - []byte: a little endian zero word
func InactiveWord() []byte {
	return make([]byte, 4)
}

// SlotOffset returns the byte offset of slot i inside the ProjectorBlock uniform.
//
// Parameters:
//   - slot: the slot index
//
// Returns:
//   - uint64: the byte offset
func SlotOffset(slot int) uint64 {
	return uint64(slot * SlotStride)
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func flattenCorners(c common.Corners) [8]float32 {
	return [8]float32{c.TL[0], c.TL[1], c.TR[0], c.TR[1], c.BL[0], c.BL[1], c.BR[0], c.BR[1]}
}

func putFloats(buf []byte, off int, vals []float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(v))
	}
}
