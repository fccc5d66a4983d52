package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBuilderOption configures a renderer in NewRenderer. Options are applied before the
// adapter is requested.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - RendererBuilderOption: the option
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the main pass sample count. The default is MSAA4x.
//
// Parameters:
//   - count: the sample count, see MSAAFromSamples
//
// Returns:
//   - RendererBuilderOption: the option
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer requests the fallback adapter, for machines without a GPU such as
// CI hosts exporting reports. A software Vulkan driver (lavapipe, SwiftShader) must be installed.
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the colour the preview is cleared to, DefaultClearColor otherwise.
//
// Parameters:
//   - red, green, blue: the channels in [0, 1]
//
// Returns:
//   - RendererBuilderOption: the option
func WithClearColor(red, green, blue float64) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingClearColor = &wgpu.Color{R: red, G: green, B: blue, A: 1}
	}
}
