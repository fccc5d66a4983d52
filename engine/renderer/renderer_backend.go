package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType selects the GPU API behind a Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU renders through wgpu-native.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls when finished frames reach the preview surface.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank. Projector outputs should use it to avoid tearing
	// across blended overlaps.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately.
	PresentModeUncapped
)

// PresentModeFor maps the window.vsync setting to a present mode.
//
// Parameters:
//   - vsync: the configured vsync flag
//
// Returns:
//   - PresentMode: PresentModeVSync or PresentModeUncapped
func PresentModeFor(vsync bool) PresentMode {
	if vsync {
		return PresentModeVSync
	}
	return PresentModeUncapped
}

func (m PresentMode) String() string {
	if m == PresentModeUncapped {
		return "uncapped"
	}
	return "vsync"
}

// DefaultClearColor is the dark grey the surface is cleared to.
var DefaultClearColor = wgpu.Color{R: 0.071, G: 0.078, B: 0.090, A: 1}

// MSAASampleCount is the sample count of the main pass colour and depth attachments. WebGPU
// guarantees 1 and 4; 8 and 16 depend on the adapter. Shadow targets are always single sampled.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4
	MSAA8x  MSAASampleCount = 8
	MSAA16x MSAASampleCount = 16
)

// MSAAFromSamples maps the window.msaa setting to a sample count. Zero and one disable MSAA and
// any other unsupported value falls back to MSAA4x.
//
// Parameters:
//   - samples: the configured sample count
//
// Returns:
//   - MSAASampleCount: the sample count passed to WithMSAA
func MSAAFromSamples(samples int) MSAASampleCount {
	switch MSAASampleCount(max(samples, 1)) {
	case MSAAOff:
		return MSAAOff
	case MSAA8x:
		return MSAA8x
	case MSAA16x:
		return MSAA16x
	}
	return MSAA4x
}

// RendererBackend is everything a Renderer needs from its GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
