package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompositeSource = `
//@oxy:include vertex
//@oxy:include camera
//@oxy:include scene_lighting
//@oxy:include object
//@oxy:include projector_block

//@oxy:group 0 0 storage_uniform camera camera
//@oxy:group 0 1 storage_uniform lighting scene_lighting
//@oxy:group 1 0 storage_uniform object object
//@oxy:group 2 0 storage_uniform projectors projector_block

//@oxy:provider 2 1 projectors projector_texture
@group(2) @binding(1) var projectorTex0: texture_2d<f32>;
//@oxy:provider 2 2 projectors projector_texture
@group(2) @binding(2) var projectorTex1: texture_2d<f32>;
//@oxy:provider 2 5 projectors shadow_map
@group(2) @binding(5) var shadowMap0: texture_2d<f32>;
//@oxy:provider 2 9 projectors projector_sampler
@group(2) @binding(9) var projectorSampler: sampler;

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = camera.viewProj * object.model * vec4<f32>(in.position, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(object.color, 1.0);
}
`

func TestNewShaderReflectsLayouts(t *testing.T) {
	vs, err := NewShader("composite.vs", ShaderTypeVertex, testCompositeSource)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, "composite.vs", vs.Module().Label)
	assert.NotContains(t, vs.Source(), "@oxy:")

	g0 := vs.BindGroupLayoutDescriptor(0)
	require.Len(t, g0.Entries, 2)
	assert.Equal(t, uint64(80), g0.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(672), g0.Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, g0.Entries[0].Visibility)

	g1 := vs.BindGroupLayoutDescriptor(1)
	require.Len(t, g1.Entries, 1)
	assert.Equal(t, uint64(144), g1.Entries[0].Buffer.MinBindingSize)

	g2 := vs.BindGroupLayoutDescriptor(2)
	require.Len(t, g2.Entries, 5)
	assert.Equal(t, uint64(1344), g2.Entries[0].Buffer.MinBindingSize)

	layouts := vs.VertexLayout(0)
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(24), layouts[0].ArrayStride)
	assert.Len(t, layouts[0].Attributes, 2)
}

func TestShadowMapRoleIsUnfilterable(t *testing.T) {
	fs, err := NewShader("composite.fs", ShaderTypeFragment, testCompositeSource)
	require.NoError(t, err)
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Empty(t, fs.VertexLayouts())

	entries := fs.BindGroupLayoutDescriptor(2).Entries
	byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(entries))
	for _, e := range entries {
		byBinding[e.Binding] = e
	}
	assert.Equal(t, wgpu.TextureSampleTypeFloat, byBinding[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, byBinding[5].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, byBinding[9].Sampler.Type)
}

func TestShaderBindingsByRole(t *testing.T) {
	vs, err := NewShader("composite.vs", ShaderTypeVertex, testCompositeSource)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, vs.Bindings(2, AnnotationArgProjectorTexture))
	assert.Equal(t, []int{5}, vs.Bindings(2, AnnotationArgShadowMap))
	assert.Equal(t, []int{9}, vs.Bindings(2, AnnotationArgProjectorSampler))
	assert.Empty(t, vs.Bindings(0, AnnotationArgShadowMap))

	b, ok := vs.BindGroupFromVarName(2, "shadowMap0")
	assert.True(t, ok)
	assert.Equal(t, 5, b)
	assert.Equal(t, "projectors", vs.BindGroupVarName(2, 0))
}

func TestNewStagePair(t *testing.T) {
	vs, fs, err := NewStagePair("composite", testCompositeSource)
	require.NoError(t, err)
	assert.Equal(t, "composite.vs", vs.Key())
	assert.Equal(t, "composite.fs", fs.Key())
	assert.Equal(t, ShaderTypeVertex, vs.ShaderType())
	assert.Equal(t, ShaderTypeFragment, fs.ShaderType())
	assert.Equal(t, vs.BindGroupLayoutDescriptor(0), fs.BindGroupLayoutDescriptor(0))
}

func TestNewShaderMissingEntryPoint(t *testing.T) {
	_, err := NewShader("broken", ShaderTypeFragment, "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }\n")
	assert.Error(t, err)
}

func TestNewShaderFromPathMissingFile(t *testing.T) {
	_, err := NewShaderFromPath("missing", ShaderTypeVertex, "does/not/exist.wgsl")
	assert.Error(t, err)
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include light\n//@oxy:include scene_lighting\n//@oxy:include light\n")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct Light {"))
	assert.Equal(t, 1, strings.Count(out, "struct SceneLighting {"))
	assert.Less(t, strings.Index(out, "struct Light {"), strings.Index(out, "struct SceneLighting {"))
}

func TestPreProcessorNestedInclude(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include scene_lighting\n")
	require.NoError(t, err)
	assert.Contains(t, out, "struct Light {")
	assert.Less(t, strings.Index(out, "struct Light {"), strings.Index(out, "struct SceneLighting {"))
}

func TestPreProcessorDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include depth_uniform\n//@oxy:group 0 0 storage_uniform depth depth_uniform\n//@oxy:provider 0 0 depth\n")
	require.NoError(t, err)
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> depth: DepthUniform;")

	decls := pp.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, AnnotationTypeProvider, decls[1].Type)
	assert.Equal(t, AnnotationArgDepth, decls[1].Args[0])

	_, err = pp.Process("fn main() {}\n")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestParseAnnotationErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", "//@oxy:"},
		{"unknown type", "//@oxy:bogus 1 2"},
		{"unknown include", "//@oxy:include material"},
		{"group arity", "//@oxy:group 0 0 storage_uniform camera"},
		{"group number", "//@oxy:group x 0 storage_uniform camera camera"},
		{"negative binding", "//@oxy:provider 2 -1 projectors"},
		{"address space", "//@oxy:group 0 0 storage_private camera camera"},
		{"array element", "//@oxy:group 0 0 storage_read items array<material>"},
		{"provider identity", "//@oxy:provider 0 0 shadows"},
		{"provider role", "//@oxy:provider 2 1 projectors albedo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAnnotation(tt.line, 1)
			assert.ErrorIs(t, err, ErrAnnotation)
		})
	}
}

func TestParseAnnotationPlainLine(t *testing.T) {
	a, err := parseAnnotation("// an ordinary comment", 3)
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestPreProcessorRejectsGroupInsideInclude(t *testing.T) {
	pp := &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera: {Source: "//@oxy:group 0 0 storage_uniform camera camera\n", Type: "CameraUniform"},
		},
	}
	_, err := pp.Process("//@oxy:include camera\n")
	assert.Error(t, err)
}
