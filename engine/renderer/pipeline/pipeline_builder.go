package pipeline

import (
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a Pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithStages sets the vertex and fragment shader, usually from shader.NewStagePair.
//
// Parameters:
//   - vs: the vertex stage
//   - fs: the fragment stage
//
// Returns:
//   - PipelineBuilderOption: the option
func WithStages(vs, fs shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = vs
		p.fragmentShader = fs
	}
}

// WithDepth sets the depth test and depth write state. Overlays that must not occlude the
// projected scene test without writing.
//
// Parameters:
//   - test: compare against the depth attachment
//   - write: write the fragment depth
//
// Returns:
//   - PipelineBuilderOption: the option
func WithDepth(test, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = test
		p.depthWriteEnabled = write
	}
}

// WithDepthBias sets the rasterizer depth bias.
//
// Parameters:
//   - bias: the constant bias
//   - slopeScale: the slope scaled bias
//
// Returns:
//   - PipelineBuilderOption: the option
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithAlphaBlend enables source-over blending with the default blend state.
func WithAlphaBlend() PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = true
	}
}

// WithCullMode sets the face culling mode. Pipelines default to wgpu.CullModeNone so both faces
// of scene geometry receive projection.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology, wgpu.PrimitiveTopologyLineList for overlays.
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}
