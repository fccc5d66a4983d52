package projector

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUProjectorSlotLayout(t *testing.T) {
	var g GPUProjectorSlot
	assert.Equal(t, SlotStride, g.Size())
	assert.Len(t, g.Marshal(), SlotStride)
	assert.Equal(t, 1344, BlockSize)
	assert.Equal(t, uint64(672), SlotOffset(2))
}

func TestNewGPUProjectorSlot(t *testing.T) {
	p := newTestProjector(t, WithKeystone(10, -5))
	p.SetShadowSlot(2)
	p.SetCornerPin(CornerTR, 3, 4)
	p.SetSoftEdge(1, 2, 3, 4)
	s := p.Snapshot()

	g := NewGPUProjectorSlot(s, true)
	assert.Equal(t, uint32(2), g.TextureUnit)
	assert.Equal(t, uint32(6), g.ShadowUnit)
	assert.Equal(t, uint32(1), g.Active)
	assert.Equal(t, uint32(1), g.HasTexture)
	assert.Equal(t, [16]float32(s.Shadow), g.ShadowMatrix)
	assert.Equal(t, [16]float32(s.View), g.ShadowView)
	assert.Equal(t, [4]float32{10, -5, 0, 0}, g.Keystone)
	assert.Equal(t, [8]float32{0, 0, 3, 4, 0, 0, 0, 0}, g.CornerPin)
	assert.Equal(t, [4]float32{1, 2, 3, 4}, g.SoftEdge)
	assert.Equal(t, DefaultFar, g.DepthMapFar)

	buf := g.Marshal()
	require.Len(t, buf, SlotStride)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[ActiveOffset:]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(buf[220:]))
	assert.Equal(t, s.Position[1], math.Float32frombits(binary.LittleEndian.Uint32(buf[196:])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[288+8:])))
	assert.Equal(t, s.Shadow[5], math.Float32frombits(binary.LittleEndian.Uint32(buf[64+20:])))
}

func TestInactiveWord(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0}, InactiveWord())
}

func TestGPUDepthUniform(t *testing.T) {
	p := newTestProjector(t)
	s := p.Snapshot()
	g := NewGPUDepthUniform(s)
	assert.Equal(t, 144, g.Size())

	buf := g.Marshal()
	require.Len(t, buf, 144)
	assert.Equal(t, s.View[12], math.Float32frombits(binary.LittleEndian.Uint32(buf[48:])))
	assert.Equal(t, s.Shadow[0], math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])))
	assert.Equal(t, s.Near, math.Float32frombits(binary.LittleEndian.Uint32(buf[128:])))
	assert.Equal(t, s.Far, math.Float32frombits(binary.LittleEndian.Uint32(buf[132:])))
}
