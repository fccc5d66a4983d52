package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the presentation target a Renderer draws into, typically the application window.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color

	// last configured surface size, reused when the present mode changes
	width, height int
}

// Renderer owns the GPU device and the pipeline cache. A frame encodes the shadow passes first,
// one per active projector slot, then the main pass into the preview surface:
//
//	BeginShadowFrame, (BeginShadowPass, ShadowDrawCall..., EndShadowPass)..., EndShadowFrame
//	BeginFrame, DrawCall..., EndFrame, Present
//
// Frame methods must be called from the render goroutine.
type Renderer interface {
	// Pipeline returns a registered pipeline, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline or nil
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU pipelines and caches them by key. Keys already registered
	// are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines
	//
	// Returns:
	//   - error: the first creation failure
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface. A minimized window reports zero and is ignored.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be recreated
	Resize(width, height int) error

	// SetClearColor sets the preview background.
	SetClearColor(r, g, b float64)

	// SetPresentMode switches the present mode and reconfigures the surface at its last size.
	//
	// Parameters:
	//   - mode: PresentModeVSync or PresentModeUncapped
	//
	// Returns:
	//   - error: an error if the attachments could not be recreated
	SetPresentMode(mode PresentMode) error

	// InitMeshBuffers uploads an indexed mesh onto provider.
	//
	// Parameters:
	//   - provider: the mesh provider
	//   - vertexData: packed model.GPUVertex data
	//   - indexData: uint32 indices
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// WriteVertexBuffer uploads non-indexed vertices such as helper lines, growing the provider's
	// vertex buffer when the data no longer fits.
	//
	// Parameters:
	//   - provider: the provider owning the vertex buffer
	//   - vertexData: the vertex bytes
	//   - vertexCount: the number of vertices to draw
	//
	// Returns:
	//   - error: an error if buffer creation fails
	WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// InitBindGroup creates the buffers of a reflected layout and the bind group itself. Texture
	// and sampler bindings must already be set on provider.
	//
	// Parameters:
	//   - provider: the provider receiving the resources
	//   - descriptor: the reflected layout
	//   - bufferUsageOverrides: usage flags OR-ed into a binding's buffer usage (nil safe)
	//   - bufferSizeOverrides: buffer sizes replacing MinBindingSize (nil safe)
	//
	// Returns:
	//   - error: an error if creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads pixels into a texture owned by provider at a binding.
	//
	// Parameters:
	//   - provider: the owning provider
	//   - bindingKey: the binding index
	//   - stagingData: RGBA8 pixels and size
	//
	// Returns:
	//   - error: an error if creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler owned by provider at a binding.
	//
	// Parameters:
	//   - provider: the owning provider
	//   - bindingKey: the binding index
	//   - samplerStagingData: the sampler state
	//
	// Returns:
	//   - error: an error if creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// CreateRenderTarget creates a single sampled shadow target: a sampleable DepthColorFormat
	// texture holding linear depth plus a DepthAttachmentFormat attachment.
	//
	// Parameters:
	//   - label: the debug label
	//   - width, height: the size in texels
	//
	// Returns:
	//   - *RenderTarget: the target, released by the caller
	//   - error: an error if creation fails
	CreateRenderTarget(label string, width, height int) (*RenderTarget, error)

	// CreateImageTexture uploads a projector image as an sRGB texture owned by the caller.
	//
	// Parameters:
	//   - label: the debug label
	//   - stagingData: RGBA8 pixels and size
	//
	// Returns:
	//   - *Texture: the texture
	//   - error: an error if the data is malformed or creation fails
	CreateImageTexture(label string, stagingData common.TextureStagingData) (*Texture, error)

	// WriteBuffers queues buffer writes, merging contiguous writes to the same binding.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the surface texture and begins the main pass.
	//
	// Returns:
	//   - error: an error if no surface texture is available
	BeginFrame() error

	// DrawCall encodes a draw in the main pass. Providers without an index buffer draw their
	// vertex count.
	//
	// Parameters:
	//   - pipelineKey: a registered render pipeline
	//   - meshProvider: the vertex and index buffers
	//   - instanceCount: the instance count
	//   - bindGroups: bound in order as groups 0..n
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the main pass and submits it.
	EndFrame()

	// Present shows the submitted frame.
	Present()

	// BeginShadowFrame opens the encoder shared by every shadow pass of a frame.
	//
	// Returns:
	//   - error: an error if the encoder could not be created
	BeginShadowFrame() error

	// BeginShadowPass begins a pass into target, clearing colour and depth to 1.
	BeginShadowPass(target *RenderTarget)

	// ShadowDrawCall encodes a draw in the current shadow pass.
	//
	// Parameters:
	//   - pipelineKey: a registered depth pipeline
	//   - meshProvider: the vertex and index buffers
	//   - instanceCount: the instance count
	//   - bindGroups: bound in order as groups 0..n
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	ShadowDrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	EndShadowPass()

	// EndShadowFrame submits every shadow pass of the frame.
	EndShadowFrame()

	// Release releases every cached pipeline and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type drawing into surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the presentation target, typically the application window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error if no adapter or device could be acquired
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(r.pendingClearColor.R, r.pendingClearColor.G, r.pendingClearColor.B)
	}

	if err := r.backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	r.width, r.height = surface.Width(), surface.Height()
	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return err
	}
	if width > 0 && height > 0 {
		r.mu.Lock()
		r.width, r.height = width, height
		r.mu.Unlock()
	}
	return nil
}

func (r *renderer) SetClearColor(red, green, blue float64) {
	r.backend.SetClearColor(red, green, blue)
}

func (r *renderer) SetPresentMode(mode PresentMode) error {
	r.backend.SetPresentMode(mode)
	r.mu.Lock()
	w, h := r.width, r.height
	r.mu.Unlock()
	return r.backend.ConfigureSurface(w, h)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	return r.backend.WriteVertexBuffer(provider, vertexData, vertexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) CreateRenderTarget(label string, width, height int) (*RenderTarget, error) {
	return r.backend.CreateRenderTarget(label, width, height)
}

func (r *renderer) CreateImageTexture(label string, stagingData common.TextureStagingData) (*Texture, error) {
	return r.backend.CreateImageTexture(label, stagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(bind_group_provider.Coalesce(writes))
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) BeginShadowFrame() error {
	return r.backend.BeginShadowFrame()
}

func (r *renderer) BeginShadowPass(target *RenderTarget) {
	r.backend.BeginShadowPass(target)
}

func (r *renderer) ShadowDrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("depth pipeline %q not found in cache", pipelineKey)
	}

	r.backend.ShadowDrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndShadowPass() {
	r.backend.EndShadowPass()
}

func (r *renderer) EndShadowFrame() {
	r.backend.EndShadowFrame()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
