package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLineSource = `
//@oxy:include line_vertex
//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera

struct LineOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec3<f32>,
};

@vertex
fn vs_main(in: LineVertexInput) -> LineOutput {
    var out: LineOutput;
    out.clip = camera.viewProj * vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: LineOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0);
}
`

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("mesh", PipelineTypeRender)
	assert.Equal(t, "mesh", p.PipelineKey())
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Nil(t, p.Pipeline())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
	assert.Empty(t, p.BindGroupLayoutDescriptors())
	p.Release()
}

func TestNewPipelineOptions(t *testing.T) {
	vs, fs, err := shader.NewStagePair("line", testLineSource)
	require.NoError(t, err)

	p := NewPipeline("line", PipelineTypeRender,
		WithStages(vs, fs),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithDepth(true, false),
		WithDepthBias(2, 1.5),
		WithCullMode(wgpu.CullModeBack),
		WithAlphaBlend(),
	)
	assert.Equal(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Equal(t, fs, p.Shader(shader.ShaderTypeFragment))
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.True(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, int32(2), p.DepthBias())
	assert.Equal(t, float32(1.5), p.DepthBiasSlopeScale())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())

	g0 := p.BindGroupLayoutDescriptor(0)
	require.Len(t, g0.Entries, 1)
	assert.Equal(t, uint64(80), g0.Entries[0].Buffer.MinBindingSize)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vs := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fs := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		2: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := MergeBindGroupLayouts(vs, fs)
	require.Len(t, merged, 3)

	g0 := merged[0].Entries
	require.Len(t, g0, 2)
	assert.Equal(t, uint32(0), g0[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, g0[0].Visibility)
	assert.Equal(t, uint32(2), g0[1].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, g0[1].Visibility)

	assert.Equal(t, vs[1], merged[1])
	assert.Equal(t, fs[2], merged[2])
}
