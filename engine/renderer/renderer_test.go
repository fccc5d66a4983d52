package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

var _ projector.TextureHandle = (*Texture)(nil)

func TestNilTargetsReleaseSafely(t *testing.T) {
	var rt *RenderTarget
	rt.Release()
	(&RenderTarget{Label: "shadow_0"}).Release()

	var tex *Texture
	assert.Nil(t, tex.View())
	tex.Release()
}

func TestBuilderOptions(t *testing.T) {
	r := &renderer{}
	WithClearColor(0.2, 0.3, 0.4)(r)
	WithMSAA(MSAAOff)(r)
	WithPresentMode(PresentModeVSync)(r)
	WithForceSoftwareRenderer(true)(r)

	assert.Equal(t, wgpu.Color{R: 0.2, G: 0.3, B: 0.4, A: 1}, *r.pendingClearColor)
	assert.Equal(t, MSAAOff, *r.pendingMSAA)
	assert.Equal(t, PresentModeVSync, *r.pendingPresentMode)
	assert.True(t, r.forceFallbackAdapter)
}

func TestConfigMappings(t *testing.T) {
	assert.Equal(t, PresentModeVSync, PresentModeFor(true))
	assert.Equal(t, PresentModeUncapped, PresentModeFor(false))
	assert.Equal(t, "uncapped", PresentModeUncapped.String())

	tests := map[int]MSAASampleCount{-1: MSAAOff, 0: MSAAOff, 1: MSAAOff, 2: MSAA4x, 4: MSAA4x, 8: MSAA8x, 16: MSAA16x, 32: MSAA4x}
	for samples, want := range tests {
		assert.Equal(t, want, MSAAFromSamples(samples), "samples %d", samples)
	}
}

func TestFormats(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatR32Float, DepthColorFormat)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, DepthAttachmentFormat)
	assert.InDelta(t, 0.071, DefaultClearColor.R, 1e-9)
}
