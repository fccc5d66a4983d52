// Package bind_group_provider holds the GPU resources behind one bind group: its buffers,
// texture views, samplers and, for meshes, the vertex and index buffers.
package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the implementation of BindGroupProvider. Resources are created by the
// renderer backend and handed in through the setters; the provider only owns their lifetime.
type bindGroupProvider struct {
	label string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	textureViews    map[int]*wgpu.TextureView
	samplers        map[int]*wgpu.Sampler
	// borrowed views belong to a shadow target or projector image and are not released here
	borrowed map[int]bool

	vertexBuffer     *wgpu.Buffer
	vertexBufferSize uint64
	vertexCount      int
	indexBuffer      *wgpu.Buffer
	indexCount       int
}

// BindGroupProvider is the GPU side of a camera, drawable, shadow slot or the composite pass.
//
// A pass creates a provider, attaches borrowed views, asks the renderer to build the bind group
// against a reflected layout, stages BufferWrite values each frame and binds BindGroup when
// drawing. A provider is not safe for concurrent use; the owning pass serializes access.
type BindGroupProvider interface {
	// Release frees every owned resource. Borrowed texture views are dropped without release.
	Release()

	// ReleaseBindGroup frees only the bind group so it can be rebuilt against new views, such as
	// after a projector image or shadow target changes.
	ReleaseBindGroup()

	// Label returns the debug label, also used for GPU object labels.
	Label() string

	// BindGroup returns the bind group, nil until initialized.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was built against, nil until initialized.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every buffer keyed by binding. The map is owned by the provider.
	Buffers() map[int]*wgpu.Buffer

	// TextureView returns the view at a binding, owned or borrowed, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view or nil
	TextureView(binding int) *wgpu.TextureView

	// TextureViews returns every view keyed by binding. The map is owned by the provider.
	TextureViews() map[int]*wgpu.TextureView

	// Sampler returns the sampler at a binding, or nil.
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the mesh vertex buffer, or nil.
	VertexBuffer() *wgpu.Buffer

	// VertexBufferSize returns the allocated vertex buffer size in bytes. Helper lines reuse the
	// buffer while the new data fits.
	VertexBufferSize() uint64

	// VertexCount returns the vertex count of a non-indexed draw.
	VertexCount() int

	// IndexBuffer returns the mesh index buffer, or nil for non-indexed draws.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the index count of an indexed draw.
	IndexCount() int

	// SetBindGroup stores the bind group built by the renderer.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the layout the bind group was built against.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores an owned buffer at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores an owned view at a binding, replacing any borrowed one.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the view
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetBorrowedTextureView references a view owned elsewhere at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the view
	SetBorrowedTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler stores an owned sampler at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// SetVertexBuffer stores the mesh vertex buffer.
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetVertexBufferSize records the allocated vertex buffer size in bytes.
	SetVertexBufferSize(size uint64)

	// SetVertexCount sets the vertex count of a non-indexed draw.
	SetVertexCount(count int)

	// SetIndexBuffer stores the mesh index buffer.
	SetIndexBuffer(buf *wgpu.Buffer)

	// SetIndexCount sets the index count of an indexed draw.
	SetIndexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: the debug label, e.g. "shadow_depth_0"
//   - options: attached resources
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
		borrowed:     make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) TextureViews() map[int]*wgpu.TextureView {
	return p.textureViews
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) VertexBufferSize() uint64 {
	return p.vertexBufferSize
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
	delete(p.borrowed, binding)
}

func (p *bindGroupProvider) SetBorrowedTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
	p.borrowed[binding] = true
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetVertexBufferSize(size uint64) {
	p.vertexBufferSize = size
}

func (p *bindGroupProvider) SetVertexCount(count int) {
	p.vertexCount = count
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) ReleaseBindGroup() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) Release() {
	p.ReleaseBindGroup()
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for binding, tv := range p.textureViews {
		if tv != nil && !p.borrowed[binding] {
			tv.Release()
		}
	}
	clear(p.textureViews)
	clear(p.borrowed)
	for _, s := range p.samplers {
		if s != nil {
			s.Release()
		}
	}
	clear(p.samplers)
	for _, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
	}
	clear(p.buffers)
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	p.vertexBufferSize = 0
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
