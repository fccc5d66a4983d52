package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}}
	assert.Equal(t, 24, v.Size())
	buf := v.Marshal()
	require.Len(t, buf, 24)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))

	l := GPULineVertex{Color: [3]float32{0.3, 0.3, 0.3}}
	assert.Equal(t, 24, l.Size())
	assert.Len(t, MarshalLineVertices([]GPULineVertex{l, l}), 48)
}

func TestMarshalIndices(t *testing.T) {
	buf := MarshalIndices([]uint32{0, 7, 65536})
	require.Len(t, buf, 12)
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, uint32(65536), binary.LittleEndian.Uint32(buf[8:]))
}

func TestPrimitiveCounts(t *testing.T) {
	tests := []struct {
		kind     Kind
		vertices int
		indices  int
		radius   float32
	}{
		{KindCube, 24, 36, float32(math.Sqrt(0.75))},
		{KindPlane, 4, 6, float32(math.Sqrt(8))},
		{KindSphere, 33 * 17, 32*14*6 + 32*2*3, 1},
		{KindCylinder, 66 + 34*2, 32*6 + 32*3*2, float32(math.Sqrt(2))},
		{KindCone, 66 + 34, 32*6 + 32*3, float32(math.Sqrt(2))},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			m, err := NewPrimitive(tt.kind, "obj")
			require.NoError(t, err)
			assert.Equal(t, tt.kind, m.Kind())
			assert.Equal(t, "obj", m.Name())
			assert.Len(t, m.Vertices(), tt.vertices)
			assert.Equal(t, tt.indices, m.IndexCount())
			assert.Len(t, m.VertexData(), tt.vertices*24)
			assert.Len(t, m.IndexData(), tt.indices*4)
			assert.InDelta(t, tt.radius, m.BoundingRadius(), 1e-4)
			for _, idx := range m.Indices() {
				require.Less(t, int(idx), tt.vertices)
			}
			for _, v := range m.Vertices() {
				n := v.Normal
				assert.InDelta(t, 1, math.Sqrt(float64(n[0]*n[0]+n[1]*n[1]+n[2]*n[2])), 1e-4)
			}
		})
	}
}

func TestNewPrimitiveUnknown(t *testing.T) {
	_, err := NewPrimitive(Kind("teapot"), "x")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("custom")
	assert.False(t, ok)
}

func TestPlaneFacesUp(t *testing.T) {
	vertices, _ := Plane(4, 4)
	for _, v := range vertices {
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
		assert.Zero(t, v.Position[1])
	}
}

func TestReleaseWithoutUpload(t *testing.T) {
	m := NewModel(WithName("empty"))
	assert.Nil(t, m.MeshProvider())
	assert.NotPanics(t, m.Release)
	assert.Zero(t, m.BoundingRadius())
	assert.Equal(t, KindCustom, m.Kind())
}
