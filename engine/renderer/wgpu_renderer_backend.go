package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// DepthColorFormat is the colour format of shadow depth targets. Linear depth normalized by far is
	// written in the red channel.
	DepthColorFormat = wgpu.TextureFormatR32Float

	// DepthAttachmentFormat is the depth attachment format used by shadow depth targets.
	DepthAttachmentFormat = wgpu.TextureFormatDepth32Float

	// mainDepthFormat is the depth format of the preview pass.
	mainDepthFormat = wgpu.TextureFormatDepth24Plus

	// imageFormat is the format of uploaded projector images and patterns.
	imageFormat = wgpu.TextureFormatRGBA8UnormSrgb
)

var (
	errSurfaceNotConfigured = errors.New("surface not configured")
	errFrameNotPresented    = errors.New("previous frame not presented")
)

// bufferUsages maps a reflected buffer binding to the usage of the buffer created for it.
var bufferUsages = map[wgpu.BufferBindingType]wgpu.BufferUsage{
	wgpu.BufferBindingTypeUniform:         wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	wgpu.BufferBindingTypeStorage:         wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	wgpu.BufferBindingTypeReadOnlyStorage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
}

// attachment is a texture and the single view the backend renders into or samples from.
type attachment struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (a *attachment) release() {
	if a.view != nil {
		a.view.Release()
		a.view = nil
	}
	if a.texture != nil {
		a.texture.Release()
		a.texture = nil
	}
}

// encoding is an open command encoder and the pass currently recorded into it.
type encoding struct {
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

func (e *encoding) endPass() {
	if e.pass == nil {
		return
	}
	e.pass.End()
	e.pass.Release()
	e.pass = nil
}

// submit ends the open pass, finishes the encoder and submits it. The encoder is released either way.
func (e *encoding) submit(q *wgpu.Queue) error {
	e.endPass()
	if e.encoder == nil {
		return nil
	}
	defer func() {
		e.encoder.Release()
		e.encoder = nil
	}()
	cmd, err := e.encoder.Finish(nil)
	if err != nil {
		return err
	}
	q.Submit(cmd)
	cmd.Release()
	return nil
}

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	clearColor    wgpu.Color

	// nil until the first ConfigureSurface with a non-zero size
	mainPass *wgpu.RenderPassDescriptor
	msaa     attachment
	depth    attachment

	frame        encoding
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	shadow encoding
}

// wgpuRendererBackend is the wgpu-native implementation surface of RendererBackend. Methods
// shared with Renderer behave as documented there; the rest are listed here.
type wgpuRendererBackend interface {
	// ConfigureSurface configures the swapchain and recreates the MSAA and depth attachments.
	// Zero sizes are ignored.
	ConfigureSurface(width, height int) error

	// SetPresentMode records the mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	SetClearColor(r, g, b float64)

	// RegisterRenderPipeline creates the GPU pipeline of p. Depth pipelines target
	// DepthColorFormat and DepthAttachmentFormat single sampled; render pipelines target the
	// surface at the configured sample count.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error
	CreateRenderTarget(label string, width, height int) (*RenderTarget, error)
	CreateImageTexture(label string, stagingData common.TextureStagingData) (*Texture, error)
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	BeginFrame() error
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)
	EndFrame()
	Present()

	BeginShadowFrame() error
	BeginShadowPass(target *RenderTarget)
	ShadowDrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)
	EndShadowPass()
	EndShadowFrame()

	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend locks the calling goroutine to its thread, which must stay the render thread.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("renderer: nil surface descriptor")
	}
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		clearColor:  DefaultClearColor,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	var err error
	b.adapter, err = b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}

	b.device, err = b.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "oxy-projector",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	b.queue = b.device.GetQueue()

	slog.Info("renderer: device ready", "fallback", forceFallbackAdapter, "msaa", uint32(sampleCount))
	return b, nil
}

// newAttachment must be called with mu held.
func (b *wgpuRendererBackendImpl) newAttachment(label string, format wgpu.TextureFormat, usage wgpu.TextureUsage, samples uint32, width, height int) (attachment, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return attachment{}, fmt.Errorf("%s: texture: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return attachment{}, fmt.Errorf("%s: view: %w", label, err)
	}
	return attachment{texture: tex, view: view}, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}

	caps := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = caps.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   caps.AlphaModes[0],
	})

	b.msaa.release()
	b.depth.release()
	b.mainPass = nil

	samples := uint32(b.sampleCount)
	var err error
	if samples > 1 {
		b.msaa, err = b.newAttachment("preview msaa", b.surfaceFormat, wgpu.TextureUsageRenderAttachment, samples, width, height)
		if err != nil {
			return fmt.Errorf("renderer: %w", err)
		}
	}
	b.depth, err = b.newAttachment("preview depth", mainDepthFormat, wgpu.TextureUsageRenderAttachment, samples, width, height)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	// with MSAA the pass draws into the multisampled texture and resolves into the swapchain view
	// set by BeginFrame; without it BeginFrame sets the swapchain view directly
	color := wgpu.RenderPassColorAttachment{
		View:       b.msaa.view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if samples > 1 {
		color.StoreOp = wgpu.StoreOpDiscard
	}
	b.mainPass = &wgpu.RenderPassDescriptor{
		Label:            "preview",
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1,
		},
	}
	slog.Debug("renderer: surface configured", "width", width, "height", height, "format", b.surfaceFormat)
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.presentMode = wgpu.PresentModeImmediate
	if mode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(r, g, bl float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = wgpu.Color{R: r, G: g, B: bl, A: 1}
	if b.mainPass != nil {
		b.mainPass.ColorAttachments[0].ClearValue = b.clearColor
	}
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vsh, fsh := p.Shader(shader.ShaderTypeVertex), p.Shader(shader.ShaderTypeFragment)
	if vsh == nil || fsh == nil {
		return fmt.Errorf("%s: a vertex and a fragment shader are required", p.PipelineKey())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// depth pipelines render into shadow targets; render pipelines into the preview surface
	colorFormat, depthFormat, samples := DepthColorFormat, DepthAttachmentFormat, uint32(1)
	if p.Type() == pipeline.PipelineTypeRender {
		if b.mainPass == nil {
			return fmt.Errorf("%s: %w", p.PipelineKey(), errSurfaceNotConfigured)
		}
		colorFormat, depthFormat, samples = b.surfaceFormat, mainDepthFormat, uint32(b.sampleCount)
	}

	vs, err := b.device.CreateShaderModule(vsh.Module())
	if err != nil {
		return fmt.Errorf("%s: vertex module: %w", p.PipelineKey(), err)
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fsh.Module())
	if err != nil {
		return fmt.Errorf("%s: fragment module: %w", p.PipelineKey(), err)
	}
	defer fs.Release()

	layout, release, err := b.pipelineLayout(p)
	if err != nil {
		return err
	}
	defer release()

	var buffers []wgpu.VertexBufferLayout
	for i := range len(vsh.VertexLayouts()) {
		buffers = append(buffers, vsh.VertexLayout(i)...)
	}

	target := wgpu.ColorTargetState{Format: colorFormat, WriteMask: p.WriteMask()}
	if p.BlendEnabled() && p.Type() == pipeline.PipelineTypeRender {
		target.Blend = p.BlendState()
	}
	compare := wgpu.CompareFunctionAlways
	if p.DepthTestEnabled() {
		compare = wgpu.CompareFunctionLess
	}
	keep := wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways}

	rp, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey(),
		Layout: layout,
		Vertex: wgpu.VertexState{Module: vs, EntryPoint: vsh.EntryPoint(), Buffers: buffers},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fsh.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{Count: samples, Mask: 0xFFFFFFFF},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              depthFormat,
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        compare,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront:        keep,
			StencilBack:         keep,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: create pipeline: %w", p.PipelineKey(), err)
	}
	p.SetRenderPipeline(rp)
	return nil
}

// pipelineLayout creates one bind group layout per group index up to the highest one used. Gaps get
// an empty layout. The returned func releases the layouts once the pipeline holds them.
func (b *wgpuRendererBackendImpl) pipelineLayout(p pipeline.Pipeline) (*wgpu.PipelineLayout, func(), error) {
	descs := p.BindGroupLayoutDescriptors()
	count := 0
	for g := range descs {
		count = max(count, g+1)
	}

	groups := make([]*wgpu.BindGroupLayout, 0, count)
	release := func() {
		for _, l := range groups {
			l.Release()
		}
	}
	for g := range count {
		desc := descs[g]
		l, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("%s: group %d layout: %w", p.PipelineKey(), g, err)
		}
		groups = append(groups, l)
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: groups,
	})
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("%s: pipeline layout: %w", p.PipelineKey(), err)
	}
	return layout, func() {
		layout.Release()
		release()
	}, nil
}

// newBuffer creates a buffer and uploads data into it when data is non-empty. Must be called with
// mu held.
func (b *wgpuRendererBackendImpl) newBuffer(label string, usage wgpu.BufferUsage, size uint64, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if len(data) > 0 {
		b.queue.WriteBuffer(buf, 0, data)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.newBuffer(provider.Label()+" vertices", wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, uint64(len(vertexData)), vertexData)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
		provider.SetVertexBufferSize(uint64(len(vertexData)))
	}
	if len(indexData) > 0 {
		buf, err := b.newBuffer(provider.Label()+" indices", wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, uint64(len(indexData)), indexData)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	provider.SetVertexCount(vertexCount)
	if len(vertexData) == 0 {
		return nil
	}

	size := uint64(len(vertexData))
	if provider.VertexBuffer() != nil && provider.VertexBufferSize() >= size {
		b.queue.WriteBuffer(provider.VertexBuffer(), 0, vertexData)
		return nil
	}

	if old := provider.VertexBuffer(); old != nil {
		old.Release()
	}
	// powers of two from 256 bytes so helper lines that change every frame rarely reallocate
	capacity := uint64(256)
	for capacity < size {
		capacity <<= 1
	}
	buf, err := b.newBuffer(provider.Label()+" vertices", wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, capacity, vertexData)
	if err != nil {
		provider.SetVertexBuffer(nil)
		provider.SetVertexBufferSize(0)
		return err
	}
	provider.SetVertexBuffer(buf)
	provider.SetVertexBufferSize(capacity)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		descriptor.Label = provider.Label()
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return fmt.Errorf("%s: layout: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, le := range descriptor.Entries {
		binding := int(le.Binding)
		entry := wgpu.BindGroupEntry{Binding: le.Binding}

		switch {
		case le.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			if entry.TextureView = provider.TextureView(binding); entry.TextureView == nil {
				return fmt.Errorf("%s: binding %d: no texture view", provider.Label(), binding)
			}
		case le.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			if entry.Sampler = provider.Sampler(binding); entry.Sampler == nil {
				return fmt.Errorf("%s: binding %d: no sampler", provider.Label(), binding)
			}
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				size := le.Buffer.MinBindingSize
				if s, ok := bufferSizeOverrides[binding]; ok {
					size = s
				}
				usage := bufferUsages[le.Buffer.Type] | bufferUsageOverrides[binding]
				var err error
				if buf, err = b.newBuffer(fmt.Sprintf("%s binding %d", provider.Label(), binding), usage, size, nil); err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			entry.Buffer = buf
			entry.Size = wgpu.WholeSize
		}
		entries = append(entries, entry)
	}

	provider.ReleaseBindGroup()
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label(),
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s: bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bg)
	return nil
}

// uploadImage creates a sampled sRGB texture from tightly packed RGBA8 pixels. Must be called with mu
// held.
func (b *wgpuRendererBackendImpl) uploadImage(label string, data common.TextureStagingData) (attachment, error) {
	if data.Width == 0 || data.Height == 0 {
		return attachment{}, fmt.Errorf("%s: empty image", label)
	}
	if want := int(data.Width * data.Height * 4); len(data.Pixels) != want {
		return attachment{}, fmt.Errorf("%s: pixel data is %d bytes, want %d", label, len(data.Pixels), want)
	}

	img, err := b.newAttachment(label, imageFormat, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, 1, int(data.Width), int(data.Height))
	if err != nil {
		return attachment{}, err
	}
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: img.texture, Aspect: wgpu.TextureAspectAll},
		data.Pixels,
		&wgpu.TextureDataLayout{BytesPerRow: data.Width * 4, RowsPerImage: data.Height},
		&wgpu.Extent3D{Width: data.Width, Height: data.Height, DepthOrArrayLayers: 1},
	)
	return img, nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	img, err := b.uploadImage(fmt.Sprintf("%s texture %d", provider.Label(), bindingKey), stagingData)
	if err != nil {
		return err
	}
	// the view keeps the texture alive; the provider releases the view
	img.texture.Release()
	provider.SetTextureView(bindingKey, img.view)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := samplerStagingData
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         fmt.Sprintf("%s sampler %d", provider.Label(), bindingKey),
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
		Compare:       s.Compare,
	})
	if err != nil {
		return fmt.Errorf("%s: sampler %d: %w", provider.Label(), bindingKey, err)
	}
	provider.SetSampler(bindingKey, samp)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateRenderTarget(label string, width, height int) (*RenderTarget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	color, err := b.newAttachment(label+" linear depth", DepthColorFormat, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding, 1, width, height)
	if err != nil {
		return nil, err
	}
	depth, err := b.newAttachment(label+" depth", DepthAttachmentFormat, wgpu.TextureUsageRenderAttachment, 1, width, height)
	if err != nil {
		color.release()
		return nil, err
	}
	return &RenderTarget{
		Label:        label,
		Width:        width,
		Height:       height,
		ColorTexture: color.texture,
		ColorView:    color.view,
		DepthTexture: depth.texture,
		DepthView:    depth.view,
	}, nil
}

func (b *wgpuRendererBackendImpl) CreateImageTexture(label string, stagingData common.TextureStagingData) (*Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	img, err := b.uploadImage(label, stagingData)
	if err != nil {
		return nil, err
	}
	return &Texture{
		Label:   label,
		Width:   stagingData.Width,
		Height:  stagingData.Height,
		texture: img.texture,
		view:    img.view,
	}, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if buf := w.Provider.Buffer(w.Binding); buf != nil {
			b.queue.WriteBuffer(buf, w.Offset, w.Data)
		}
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return errFrameNotPresented
	}
	if b.mainPass == nil {
		return errSurfaceNotConfigured
	}

	tex, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("surface view: %w", err)
	}
	enc, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		tex.Release()
		return fmt.Errorf("command encoder: %w", err)
	}

	if b.sampleCount > 1 {
		b.mainPass.ColorAttachments[0].ResolveTarget = view
	} else {
		b.mainPass.ColorAttachments[0].View = view
	}
	b.frame = encoding{encoder: enc, pass: enc.BeginRenderPass(b.mainPass)}
	b.frameSurface, b.frameView = tex, view
	return nil
}

// encodeDraw skips providers that have no vertex buffer yet.
func encodeDraw(pass *wgpu.RenderPassEncoder, p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, instances uint32, groups []bind_group_provider.BindGroupProvider) {
	if pass == nil || mesh.VertexBuffer() == nil {
		return
	}
	pass.SetPipeline(p.Pipeline())
	for i, g := range groups {
		pass.SetBindGroup(uint32(i), g.BindGroup(), nil)
	}
	pass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	if mesh.IndexBuffer() == nil {
		pass.Draw(uint32(mesh.VertexCount()), instances, 0, 0)
		return
	}
	pass.SetIndexBuffer(mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(mesh.IndexCount()), instances, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	encodeDraw(b.frame.pass, p, meshProvider, instanceCount, bindGroups)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame.encoder == nil {
		return
	}
	if err := b.frame.submit(b.queue); err != nil {
		// nothing was submitted, so the surface texture is dropped without presenting
		slog.Warn("renderer: submit frame", "error", err)
		b.releaseFrameSurface()
	}
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) BeginShadowFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	enc, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("shadow encoder: %w", err)
	}
	b.shadow = encoding{encoder: enc}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginShadowPass(target *RenderTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadow.encoder == nil || target == nil {
		return
	}
	b.shadow.endPass()
	// both attachments clear to 1 so uncovered texels read as the far plane
	b.shadow.pass = b.shadow.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: target.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target.ColorView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 1, G: 1, B: 1, A: 1},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            target.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1,
		},
	})
}

func (b *wgpuRendererBackendImpl) ShadowDrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	encodeDraw(b.shadow.pass, p, meshProvider, instanceCount, bindGroups)
}

func (b *wgpuRendererBackendImpl) EndShadowPass() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shadow.endPass()
}

func (b *wgpuRendererBackendImpl) EndShadowFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.shadow.submit(b.queue); err != nil {
		slog.Warn("renderer: submit shadow passes", "error", err)
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frame.endPass()
	b.shadow.endPass()
	for _, e := range []*wgpu.CommandEncoder{b.frame.encoder, b.shadow.encoder} {
		if e != nil {
			e.Release()
		}
	}
	b.frame, b.shadow = encoding{}, encoding{}
	b.releaseFrameSurface()
	b.msaa.release()
	b.depth.release()
	b.mainPass = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
