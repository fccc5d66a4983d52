// Package compositor draws the scene in a single main pass in which up to four projectors light every
// visible drawable, each masked by its linear depth map.
package compositor

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// Pipeline cache keys.
const (
	DefaultPipelineKey     = "composite"
	DefaultLinePipelineKey = "composite_lines"
)

// CompositeShaderSource is the WGSL source of the main pass.
//
//go:embed assets/composite.wgsl
var CompositeShaderSource string

// LineShaderSource is the WGSL source of the helper line pass.
//
//go:embed assets/line.wgsl
var LineShaderSource string

// Backend is the subset of the renderer the main pass uses. renderer.Renderer satisfies it.
type Backend interface {
	drawable.Uploader
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error
	WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginFrame() error
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
	EndFrame()
}

// ShadowMaps exposes the linear depth view of each slot. shadow.Manager satisfies it.
type ShadowMaps interface {
	ColorView(slot int) *wgpu.TextureView
}

// boundViews identifies the views currently referenced by the projector bind group.
type boundViews struct {
	textures [projector.MaxSlots]projector.TextureHandle
	shadows  [projector.MaxSlots]*wgpu.TextureView
}

type compositor struct {
	mu *sync.Mutex

	backend Backend
	shadows ShadowMaps

	pipelineKey     string
	linePipelineKey string
	pipe            pipeline.Pipeline
	linePipe        pipeline.Pipeline

	textureBindings []int
	shadowBindings  []int
	samplerBinding  int

	projectorProvider   bind_group_provider.BindGroupProvider
	placeholderProvider bind_group_provider.BindGroupProvider
	lineProvider        bind_group_provider.BindGroupProvider

	bound    boundViews
	hasBound bool

	prepared       bool
	cameraProvider bind_group_provider.BindGroupProvider
	drawables      []drawable.Drawable
	lineCount      int

	released bool
}

// Compositor renders the main pass.
//
// Each frame, Prepare uploads the camera, lighting, object and projector uniforms and Render encodes
// one draw per visible drawable followed by the helper lines. Slots without a projector only have
// their active word cleared; the rest of their data is left as it was.
type Compositor interface {
	// PipelineKey returns the cache key of the main pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// LinePipelineKey returns the cache key of the helper line pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	LinePipelineKey() string

	// Pipeline returns the registered main pipeline.
	//
	// Returns:
	//   - pipeline.Pipeline: the main pipeline
	Pipeline() pipeline.Pipeline

	// ProjectorProvider returns the provider of the group 2 projector bindings.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the projector provider
	ProjectorProvider() bind_group_provider.BindGroupProvider

	// Prepare stages every uniform for the frame and rebuilds the projector bind group when a bound
	// texture or depth view changed.
	//
	// Parameters:
	//   - sc: the scene to draw
	//   - frames: the projector snapshots of this frame, as used by the shadow pass
	//
	// Returns:
	//   - error: a wrapped upload or bind group error
	Prepare(sc scene.Scene, frames []projector.Snapshot) error

	// Render encodes the main pass for the state staged by the last Prepare.
	//
	// Returns:
	//   - error: ErrNotPrepared, or a wrapped frame or draw error
	Render() error

	// Release releases the placeholder texture and the providers owned by the compositor.
	// Subsequent calls do nothing.
	Release()
}

var _ Compositor = &compositor{}

// NewCompositor registers the main and line pipelines and creates the projector bindings.
//
// Parameters:
//   - backend: the renderer the pipelines and resources are created on
//   - shadows: the source of the per-slot depth views, nil to bind the placeholder
//   - options: builder options applied before creation
//
// Returns:
//   - Compositor: the compositor
//   - error: an error if a shader, a pipeline or the placeholder texture could not be created
func NewCompositor(backend Backend, shadows ShadowMaps, options ...CompositorBuilderOption) (Compositor, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	c := &compositor{
		mu:              &sync.Mutex{},
		backend:         backend,
		shadows:         shadows,
		pipelineKey:     DefaultPipelineKey,
		linePipelineKey: DefaultLinePipelineKey,
	}
	for _, opt := range options {
		opt(c)
	}

	vs, fs, err := shader.NewStagePair(c.pipelineKey, CompositeShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compositor: composite shader: %w", err)
	}
	lvs, lfs, err := shader.NewStagePair(c.linePipelineKey, LineShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compositor: line shader: %w", err)
	}

	c.textureBindings = fs.Bindings(2, shader.AnnotationArgProjectorTexture)
	c.shadowBindings = fs.Bindings(2, shader.AnnotationArgShadowMap)
	samplers := fs.Bindings(2, shader.AnnotationArgProjectorSampler)
	if len(c.textureBindings) != projector.MaxSlots || len(c.shadowBindings) != projector.MaxSlots || len(samplers) != 1 {
		return nil, fmt.Errorf("compositor: shader declares %d textures, %d shadow maps and %d samplers",
			len(c.textureBindings), len(c.shadowBindings), len(samplers))
	}
	c.samplerBinding = samplers[0]

	c.pipe = pipeline.NewPipeline(c.pipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithStages(vs, fs),
	)
	c.linePipe = pipeline.NewPipeline(c.linePipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithStages(lvs, lfs),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		pipeline.WithDepth(true, false),
	)
	if err := backend.RegisterPipelines(c.pipe, c.linePipe); err != nil {
		return nil, fmt.Errorf("compositor: register pipelines: %w", err)
	}

	c.placeholderProvider = bind_group_provider.NewBindGroupProvider("composite_placeholder")
	white := common.TextureStagingData{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	if err := backend.InitTextureView(c.placeholderProvider, 0, white); err != nil {
		c.placeholderProvider.Release()
		return nil, fmt.Errorf("compositor: placeholder texture: %w", err)
	}

	c.projectorProvider = bind_group_provider.NewBindGroupProvider("composite_projectors")
	if err := backend.InitSampler(c.projectorProvider, c.samplerBinding, common.LinearClampSampler()); err != nil {
		c.projectorProvider.Release()
		c.placeholderProvider.Release()
		return nil, fmt.Errorf("compositor: projector sampler: %w", err)
	}

	c.lineProvider = bind_group_provider.NewBindGroupProvider("composite_lines")
	return c, nil
}

func (c *compositor) PipelineKey() string {
	return c.pipelineKey
}

func (c *compositor) LinePipelineKey() string {
	return c.linePipelineKey
}

func (c *compositor) Pipeline() pipeline.Pipeline {
	return c.pipe
}

func (c *compositor) ProjectorProvider() bind_group_provider.BindGroupProvider {
	return c.projectorProvider
}

func (c *compositor) Prepare(sc scene.Scene, frames []projector.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prepared = false

	cam := sc.Camera()
	camProvider := cam.BindGroupProvider()
	if camProvider == nil {
		camProvider = camera.NewUniformProvider()
		if err := c.backend.InitBindGroup(camProvider, c.pipe.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
			camProvider.Release()
			return fmt.Errorf("compositor: camera bind group: %w", err)
		}
		cam.SetBindGroupProvider(camProvider)
	}
	camUniform := cam.Uniform()
	lighting := light.NewGPUSceneLighting(sc.Lighting(), sc.Lights())
	writes := []bind_group_provider.BufferWrite{
		{Provider: camProvider, Binding: 0, Data: camUniform.Marshal()},
		{Provider: camProvider, Binding: 1, Data: lighting.Marshal()},
	}

	objectLayout := c.pipe.BindGroupLayoutDescriptor(1)
	frustum := cam.Frustum()
	var drawables []drawable.Drawable
	for _, d := range sc.VisibleObjects() {
		// culled objects still cast shadows; the depth passes draw the full visible list
		if center, radius := d.BoundingSphere(); !frustum.IntersectsSphere(center, radius) {
			continue
		}
		drawables = append(drawables, d)
		if err := d.EnsureGPU(c.backend, objectLayout); err != nil {
			return fmt.Errorf("compositor: %w", err)
		}
		if w, ok := d.ObjectWrite(); ok {
			writes = append(writes, w)
		}
	}

	var bySlot [projector.MaxSlots]*projector.Snapshot
	for i := range frames {
		f := &frames[i]
		if f.Active && f.Slot >= 0 && f.Slot < projector.MaxSlots {
			bySlot[f.Slot] = f
		}
	}

	if err := c.bindViews(bySlot); err != nil {
		return err
	}
	writes = append(writes, slotWrites(c.projectorProvider, bySlot)...)

	c.lineCount = 0
	if lines := sc.HelperLines(); len(lines) > 0 {
		if err := c.backend.WriteVertexBuffer(c.lineProvider, model.MarshalLineVertices(lines), len(lines)); err != nil {
			return fmt.Errorf("compositor: helper lines: %w", err)
		}
		c.lineCount = len(lines)
	}

	c.backend.WriteBuffers(writes)
	c.cameraProvider = camProvider
	c.drawables = drawables
	c.prepared = true
	return nil
}

// bindViews points the texture and depth bindings at the slot views and rebuilds the bind group
// when any of them changed.
func (c *compositor) bindViews(bySlot [projector.MaxSlots]*projector.Snapshot) error {
	var want boundViews
	for s, f := range bySlot {
		if f != nil && f.Texture != nil && f.Texture.View() != nil {
			want.textures[s] = f.Texture
		}
		if c.shadows != nil {
			want.shadows[s] = c.shadows.ColorView(s)
		}
	}
	if c.hasBound && want == c.bound {
		return nil
	}

	placeholder := c.placeholderProvider.TextureView(0)
	for s := range projector.MaxSlots {
		view := placeholder
		if want.textures[s] != nil {
			view = want.textures[s].View()
		}
		c.projectorProvider.SetBorrowedTextureView(c.textureBindings[s], view)

		depth := placeholder
		if want.shadows[s] != nil {
			depth = want.shadows[s]
		}
		c.projectorProvider.SetBorrowedTextureView(c.shadowBindings[s], depth)
	}

	if err := c.backend.InitBindGroup(c.projectorProvider, c.pipe.BindGroupLayoutDescriptor(2), nil, nil); err != nil {
		c.hasBound = false
		return fmt.Errorf("compositor: projector bind group: %w", err)
	}
	c.bound = want
	c.hasBound = true
	slog.Debug("projector bind group rebuilt")
	return nil
}

// slotWrites writes every occupied slot in full and only the active word of empty ones.
func slotWrites(provider bind_group_provider.BindGroupProvider, bySlot [projector.MaxSlots]*projector.Snapshot) []bind_group_provider.BufferWrite {
	writes := make([]bind_group_provider.BufferWrite, 0, projector.MaxSlots)
	for s, f := range bySlot {
		if f == nil {
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: provider,
				Binding:  0,
				Offset:   projector.SlotOffset(s) + projector.ActiveOffset,
				Data:     projector.InactiveWord(),
			})
			continue
		}
		hasTexture := f.Texture != nil && f.Texture.View() != nil
		g := projector.NewGPUProjectorSlot(*f, hasTexture)
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  0,
			Offset:   projector.SlotOffset(s),
			Data:     g.Marshal(),
		})
	}
	return writes
}

func (c *compositor) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.prepared {
		return ErrNotPrepared
	}

	if err := c.backend.BeginFrame(); err != nil {
		return fmt.Errorf("compositor: begin frame: %w", err)
	}
	defer c.backend.EndFrame()

	for _, d := range c.drawables {
		groups := []bind_group_provider.BindGroupProvider{c.cameraProvider, d.ObjectProvider(), c.projectorProvider}
		if err := c.backend.DrawCall(c.pipelineKey, d.Model().MeshProvider(), 1, groups); err != nil {
			return fmt.Errorf("compositor: draw %d: %w", d.ID(), err)
		}
	}
	if c.lineCount > 0 {
		groups := []bind_group_provider.BindGroupProvider{c.cameraProvider}
		if err := c.backend.DrawCall(c.linePipelineKey, c.lineProvider, 1, groups); err != nil {
			return fmt.Errorf("compositor: draw helper lines: %w", err)
		}
	}
	return nil
}

func (c *compositor) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	c.prepared = false
	c.drawables = nil
	c.cameraProvider = nil
	c.projectorProvider.Release()
	c.placeholderProvider.Release()
	c.lineProvider.Release()
}
