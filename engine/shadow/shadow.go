// Package shadow renders one linear depth map per active projector. The maps are sampled by the
// compositor to decide which surfaces a projector can reach.
package shadow

import (
	_ "embed"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaxSlots is the number of depth targets the Manager owns.
const MaxSlots = projector.MaxSlots

// DefaultResolution is the width and height in texels of every depth target.
const DefaultResolution = 2048

// DefaultPipelineKey is the cache key of the linear depth pipeline.
const DefaultPipelineKey = "shadow_depth"

// DepthShaderSource is the WGSL source of the linear depth pass.
//
//go:embed assets/depth.wgsl
var DepthShaderSource string

// Backend is the subset of the renderer the shadow pass uses. renderer.Renderer satisfies it.
type Backend interface {
	drawable.Uploader
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	CreateRenderTarget(label string, width, height int) (*renderer.RenderTarget, error)
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginShadowFrame() error
	BeginShadowPass(target *renderer.RenderTarget)
	ShadowDrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
	EndShadowPass()
	EndShadowFrame()
}

// Assignment binds an active projector to a depth slot for one frame.
// Frame is the projector's snapshot taken after the slot was set; both render passes read it.
type Assignment struct {
	ProjectorID uint64
	Slot        int
	Frame       projector.Snapshot
}

// Frames returns the snapshots of the assignments in order.
//
// Parameters:
//   - assignments: the result of Manager.Assign
//
// Returns:
//   - []projector.Snapshot: one snapshot per assignment
func Frames(assignments []Assignment) []projector.Snapshot {
	out := make([]projector.Snapshot, len(assignments))
	for i, a := range assignments {
		out[i] = a.Frame
	}
	return out
}

type manager struct {
	mu *sync.Mutex

	backend     Backend
	resolution  int
	pipelineKey string
	pipe        pipeline.Pipeline

	targets        [MaxSlots]*renderer.RenderTarget
	depthProviders [MaxSlots]bind_group_provider.BindGroupProvider
	owners         [MaxSlots]projector.Projector

	touched    []int
	lastActive []uint64
	released   bool
}

// Manager owns the fixed pool of depth targets and renders them each frame.
//
// Slots are stable: a projector keeps its slot for as long as it stays active, and freed slots are
// handed to newly active projectors lowest index first. Projectors beyond MaxSlots receive no slot
// and are skipped for the frame.
type Manager interface {
	// Resolution returns the width and height of every depth target.
	//
	// Returns:
	//   - int: the target size in texels
	Resolution() int

	// PipelineKey returns the cache key of the depth pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Pipeline returns the registered depth pipeline.
	//
	// Returns:
	//   - pipeline.Pipeline: the depth pipeline
	Pipeline() pipeline.Pipeline

	// Target returns the depth target of a slot.
	//
	// Parameters:
	//   - slot: the slot index in [0, MaxSlots)
	//
	// Returns:
	//   - *renderer.RenderTarget: the target, or nil for an out of range slot
	Target(slot int) *renderer.RenderTarget

	// ColorView returns the linear depth view of a slot for binding in the composite pass.
	//
	// Parameters:
	//   - slot: the slot index in [0, MaxSlots)
	//
	// Returns:
	//   - *wgpu.TextureView: the view, nil for an out of range slot or a target without textures
	ColorView(slot int) *wgpu.TextureView

	// Assign hands out slots to the active projectors, in order. Each projector's shadow slot is
	// updated, including projectors that lost their slot since the previous call.
	//
	// Parameters:
	//   - projectors: the active projectors in scene order
	//
	// Returns:
	//   - []Assignment: one entry per projector that holds a slot, in input order
	Assign(projectors []projector.Projector) []Assignment

	// Render clears every assigned target and draws each visible shadow casting drawable into it.
	//
	// Parameters:
	//   - frames: the snapshots returned by Assign
	//   - drawables: the scene's visible drawables
	//
	// Returns:
	//   - error: ErrReleased, or a wrapped upload or draw error
	Render(frames []projector.Snapshot, drawables []drawable.Drawable) error

	// TouchedTargets returns the slots rendered by the last Render call, in render order.
	//
	// Returns:
	//   - []int: the slot indices
	TouchedTargets() []int

	// Release releases every target and depth provider. Subsequent calls do nothing.
	Release()
}

var _ Manager = &manager{}

// NewManager registers the depth pipeline and allocates MaxSlots depth targets.
//
// Parameters:
//   - backend: the renderer the targets and the pipeline are created on
//   - options: builder options applied before allocation
//
// Returns:
//   - Manager: the manager
//   - error: an error if the shader, the pipeline, a target or a depth provider could not be created
func NewManager(backend Backend, options ...ManagerBuilderOption) (Manager, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	m := &manager{
		mu:          &sync.Mutex{},
		backend:     backend,
		resolution:  DefaultResolution,
		pipelineKey: DefaultPipelineKey,
	}
	for _, opt := range options {
		opt(m)
	}

	vs, fs, err := shader.NewStagePair(m.pipelineKey, DepthShaderSource)
	if err != nil {
		return nil, fmt.Errorf("shadow: depth shader: %w", err)
	}
	m.pipe = pipeline.NewPipeline(m.pipelineKey, pipeline.PipelineTypeDepth,
		pipeline.WithStages(vs, fs),
	)
	if err := backend.RegisterPipelines(m.pipe); err != nil {
		return nil, fmt.Errorf("shadow: register pipeline: %w", err)
	}

	depthLayout := m.pipe.BindGroupLayoutDescriptor(0)
	for i := range MaxSlots {
		t, err := backend.CreateRenderTarget(fmt.Sprintf("shadow_target_%d", i), m.resolution, m.resolution)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("shadow: create target %d: %w", i, err)
		}
		m.targets[i] = t

		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("shadow_depth_%d", i))
		if err := backend.InitBindGroup(p, depthLayout, nil, nil); err != nil {
			p.Release()
			m.Release()
			return nil, fmt.Errorf("shadow: depth bind group %d: %w", i, err)
		}
		m.depthProviders[i] = p
	}

	slog.Info("shadow targets allocated", "slots", MaxSlots, "resolution", m.resolution)
	return m, nil
}

func (m *manager) Resolution() int {
	return m.resolution
}

func (m *manager) PipelineKey() string {
	return m.pipelineKey
}

func (m *manager) Pipeline() pipeline.Pipeline {
	return m.pipe
}

func (m *manager) Target(slot int) *renderer.RenderTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slot < 0 || slot >= MaxSlots {
		return nil
	}
	return m.targets[slot]
}

func (m *manager) ColorView(slot int) *wgpu.TextureView {
	t := m.Target(slot)
	if t == nil {
		return nil
	}
	return t.ColorView
}

func (m *manager) Assign(projectors []projector.Projector) []Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]projector.Projector, 0, len(projectors))
	activeIDs := make([]uint64, 0, len(projectors))
	for _, p := range projectors {
		if p == nil || !p.Active() || slices.Contains(activeIDs, p.ID()) {
			continue
		}
		active = append(active, p)
		activeIDs = append(activeIDs, p.ID())
	}

	// free slots whose owner is gone
	for i, owner := range m.owners {
		if owner != nil && !slices.Contains(activeIDs, owner.ID()) {
			owner.SetShadowSlot(projector.NoSlot)
			m.owners[i] = nil
		}
	}

	held := func(p projector.Projector) int {
		for i, owner := range m.owners {
			if owner != nil && owner.ID() == p.ID() {
				return i
			}
		}
		return projector.NoSlot
	}

	var skipped []uint64
	slotOf := make([]int, len(active))
	for i, p := range active {
		slotOf[i] = held(p)
	}
	for i, p := range active {
		if slotOf[i] != projector.NoSlot {
			continue
		}
		free := slices.Index(m.owners[:], nil)
		if free < 0 {
			skipped = append(skipped, p.ID())
			p.SetShadowSlot(projector.NoSlot)
			continue
		}
		m.owners[free] = p
		slotOf[i] = free
	}

	if len(skipped) > 0 && !slices.Equal(activeIDs, m.lastActive) {
		for _, id := range skipped {
			slog.Warn("shadow: projector skipped", "projector", id, "active", len(active))
		}
	}
	m.lastActive = activeIDs

	out := make([]Assignment, 0, min(len(active), MaxSlots))
	for i, p := range active {
		if slotOf[i] == projector.NoSlot {
			continue
		}
		p.SetShadowSlot(slotOf[i])
		out = append(out, Assignment{ProjectorID: p.ID(), Slot: slotOf[i], Frame: p.Snapshot()})
	}
	return out
}

func (m *manager) Render(frames []projector.Snapshot, drawables []drawable.Drawable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ErrReleased
	}
	m.touched = m.touched[:0]

	objectLayout := m.pipe.BindGroupLayoutDescriptor(1)
	casters := make([]drawable.Drawable, 0, len(drawables))
	var writes []bind_group_provider.BufferWrite
	for _, d := range drawables {
		if !d.Visible() || !d.CastShadow() {
			continue
		}
		if err := d.EnsureGPU(m.backend, objectLayout); err != nil {
			return fmt.Errorf("shadow: %w", err)
		}
		if w, ok := d.ObjectWrite(); ok {
			writes = append(writes, w)
		}
		casters = append(casters, d)
	}

	passes := make([]projector.Snapshot, 0, len(frames))
	for _, f := range frames {
		if f.Slot < 0 || f.Slot >= MaxSlots || m.targets[f.Slot] == nil {
			continue
		}
		u := projector.NewGPUDepthUniform(f)
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: m.depthProviders[f.Slot],
			Binding:  0,
			Data:     u.Marshal(),
		})
		passes = append(passes, f)
	}
	if len(passes) == 0 {
		return nil
	}
	m.backend.WriteBuffers(writes)

	if err := m.backend.BeginShadowFrame(); err != nil {
		return fmt.Errorf("shadow: begin frame: %w", err)
	}
	defer m.backend.EndShadowFrame()

	for _, f := range passes {
		m.backend.BeginShadowPass(m.targets[f.Slot])
		for _, d := range casters {
			groups := []bind_group_provider.BindGroupProvider{m.depthProviders[f.Slot], d.ObjectProvider()}
			if err := m.backend.ShadowDrawCall(m.pipelineKey, d.Model().MeshProvider(), 1, groups); err != nil {
				m.backend.EndShadowPass()
				return fmt.Errorf("shadow: draw slot %d: %w", f.Slot, err)
			}
		}
		m.backend.EndShadowPass()
		m.touched = append(m.touched, f.Slot)
		slog.Debug("shadow pass", "slot", f.Slot, "projector", f.ID, "casters", len(casters))
	}
	return nil
}

func (m *manager) TouchedTargets() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.touched)
}

func (m *manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	m.released = true
	for i := range MaxSlots {
		if m.targets[i] != nil {
			m.targets[i].Release()
			m.targets[i] = nil
		}
		if m.depthProviders[i] != nil {
			m.depthProviders[i].Release()
			m.depthProviders[i] = nil
		}
		if m.owners[i] != nil {
			m.owners[i].SetShadowSlot(projector.NoSlot)
			m.owners[i] = nil
		}
	}
	m.touched = nil
}
