package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLayouts(t *testing.T) {
	tests := []struct {
		typeName string
		size     uint64
		align    uint64
	}{
		{"f32", 4, 4},
		{"f16", 2, 2},
		{"vec2<f32>", 8, 8},
		{"vec3<f32>", 12, 16},
		{"vec3f", 12, 16},
		{"vec4<u32>", 16, 16},
		{"vec2h", 4, 4},
		{"mat2x2<f32>", 16, 8},
		{"mat3x3<f32>", 48, 16},
		{"mat4x4f", 64, 16},
		{"mat4x3<f32>", 64, 16},
		{"mat3x2<f32>", 24, 8},
		{"atomic<u32>", 4, 4},
		{"array<vec3<f32>, 3>", 48, 16},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			l, ok := resolveLayout(tt.typeName, nil)
			require.True(t, ok)
			assert.Equal(t, tt.size, l.size)
			assert.Equal(t, tt.align, l.align)
		})
	}

	_, ok := resolveLayout("texture_2d<f32>", nil)
	assert.False(t, ok)
}

func TestStructLayoutOffsets(t *testing.T) {
	vs, err := NewShader("composite.vs", ShaderTypeVertex, testCompositeSource)
	require.NoError(t, err)

	slot, ok := vs.StructLayout("ProjectorSlot")
	require.True(t, ok)
	assert.Equal(t, uint64(336), slot.Size)
	assert.Equal(t, uint64(16), slot.Align)

	offsets := make(map[string]uint64, len(slot.Fields))
	for _, f := range slot.Fields {
		offsets[f.Name] = f.Offset
	}
	assert.Equal(t, uint64(192), offsets["position"])
	assert.Equal(t, uint64(204), offsets["intensity"])
	assert.Equal(t, uint64(240), offsets["keystone"])
	assert.Equal(t, uint64(320), offsets["softEdge"])

	light, ok := vs.StructLayout("Light")
	require.True(t, ok)
	assert.Equal(t, uint64(80), light.Size)
	assert.Equal(t, "color", light.Fields[2].Name)
	assert.Equal(t, uint64(16), light.Fields[2].Offset)

	out, ok := vs.StructLayout("VertexOutput")
	require.True(t, ok)
	assert.Empty(t, out.Fields)

	_, ok = vs.StructLayout("Material")
	assert.False(t, ok)
}

const runtimeArraySource = `
struct Items {
    count: u32,
    items: array<vec4<f32>>,
};

/* disabled:
@group(0) @binding(7) var<uniform> ghost: Items;
/* nested */ still a comment */
@group(0) @binding(1) var<storage, read_write> items: Items; // trailing
@group(0) @binding(0) var<storage, read> weights: array<f32>;
@group(1) @binding(0) var depthTex: texture_depth_2d;
@group(1) @binding(1) var shadowSampler: sampler_comparison;
@group(1) @binding(2) var samples: texture_multisampled_2d<u32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0);
}
`

func TestReflectRuntimeArraysAndHandles(t *testing.T) {
	mod := reflectModule(runtimeArraySource)
	assert.Equal(t, "fs_main", mod.entryPoint(ShaderTypeFragment))
	assert.Empty(t, mod.entryPoint(ShaderTypeVertex))

	items := mod.layouts["Items"]
	assert.Equal(t, uint64(16), items.Size)
	assert.Equal(t, uint64(16), items.RuntimeStride)
	require.Len(t, items.Fields, 1)

	groups, names := mod.bindGroups(wgpu.ShaderStageFragment)
	g0 := groups[0].Entries
	require.Len(t, g0, 2)
	assert.Equal(t, uint32(0), g0[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, g0[0].Buffer.Type)
	assert.Equal(t, uint64(4), g0[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, g0[1].Buffer.Type)
	assert.Equal(t, uint64(16), g0[1].Buffer.MinBindingSize)
	assert.Equal(t, "items", names[0][1])

	g1 := groups[1].Entries
	require.Len(t, g1, 3)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, g1[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, g1[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, g1[1].Sampler.Type)
	assert.True(t, g1[2].Texture.Multisampled)
	assert.Equal(t, wgpu.TextureSampleTypeUint, g1[2].Texture.SampleType)
}

func TestVertexLayoutsSkipOutputs(t *testing.T) {
	mod := reflectModule(`
struct In {
    @location(0) uv: vec2<f32>,
    @location(2) tint: vec4<f32>,
};
struct Out {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
};
`)
	layouts := mod.vertexLayouts()
	require.Len(t, layouts, 1)
	l := layouts[0][0]
	assert.Equal(t, uint64(24), l.ArrayStride)
	require.Len(t, l.Attributes, 2)
	assert.Equal(t, uint64(8), l.Attributes[1].Offset)
	assert.Equal(t, uint32(2), l.Attributes[1].ShaderLocation)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, l.Attributes[1].Format)
}

func TestRegisteredStructsMatchGoTypes(t *testing.T) {
	vs, err := NewShader("composite.vs", ShaderTypeVertex, testCompositeSource)
	require.NoError(t, err)

	var (
		cam  camera.GPUCameraUniform
		obj  drawable.GPUObjectUniform
		lt   light.GPULight
		lit  light.GPUSceneLighting
		slot projector.GPUProjectorSlot
	)
	sizes := map[string]int{
		"CameraUniform":  cam.Size(),
		"ObjectUniform":  obj.Size(),
		"Light":          lt.Size(),
		"SceneLighting":  lit.Size(),
		"ProjectorSlot":  slot.Size(),
		"ProjectorBlock": projector.BlockSize,
	}
	for name, size := range sizes {
		t.Run(name, func(t *testing.T) {
			l, ok := vs.StructLayout(name)
			require.True(t, ok)
			assert.Equal(t, uint64(size), l.Size)
		})
	}
}
