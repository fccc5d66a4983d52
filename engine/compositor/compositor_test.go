package compositor

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "panasonic_pt_rq13k"

type draw struct {
	key    string
	groups int
}

type fakeBackend struct {
	pipelines    []string
	bindGroups   map[string]int
	writes       []bind_group_provider.BufferWrite
	draws        []draw
	lineVertices int
	frames       int
	ended        int
	failDraw     error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bindGroups: map[string]int{}}
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, _ wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, _ map[int]uint64) error {
	f.bindGroups[provider.Label()]++
	return nil
}

func (f *fakeBackend) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		f.pipelines = append(f.pipelines, p.PipelineKey())
	}
	return nil
}

func (f *fakeBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}

func (f *fakeBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}

func (f *fakeBackend) WriteVertexBuffer(provider bind_group_provider.BindGroupProvider, _ []byte, count int) error {
	provider.SetVertexCount(count)
	f.lineVertices = count
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) BeginFrame() error {
	f.frames++
	return nil
}

func (f *fakeBackend) DrawCall(key string, _ bind_group_provider.BindGroupProvider, _ uint32, groups []bind_group_provider.BindGroupProvider) error {
	if f.failDraw != nil {
		return f.failDraw
	}
	f.draws = append(f.draws, draw{key: key, groups: len(groups)})
	return nil
}

func (f *fakeBackend) EndFrame() {
	f.ended++
}

// slotWrite returns the last write into the projector block starting at offset.
func (f *fakeBackend) slotWrite(offset uint64) []byte {
	for i := len(f.writes) - 1; i >= 0; i-- {
		w := f.writes[i]
		if w.Provider.Label() == "composite_projectors" && w.Offset == offset {
			return w.Data
		}
	}
	return nil
}

type fakeShadows struct {
	views [projector.MaxSlots]*wgpu.TextureView
}

func (f *fakeShadows) ColorView(slot int) *wgpu.TextureView {
	if slot < 0 || slot >= projector.MaxSlots {
		return nil
	}
	return f.views[slot]
}

type fakeTexture struct {
	view *wgpu.TextureView
}

func (t *fakeTexture) View() *wgpu.TextureView { return t.view }
func (t *fakeTexture) Release()                {}

func newTestScene(t *testing.T, drawables, projectors int) (scene.Scene, []projector.Projector) {
	t.Helper()
	sc := scene.NewScene("test", scene.WithHelpers(false, false, false))
	for range drawables {
		m, err := model.NewPrimitive(model.KindCube, "")
		require.NoError(t, err)
		d, err := drawable.NewDrawable(sc.IDs(), m)
		require.NoError(t, err)
		sc.AddDrawable(d)
	}
	out := make([]projector.Projector, projectors)
	for i := range out {
		p, err := projector.NewProjector(sc.IDs(), testModel, "",
			projector.WithPosition(common.Vec3{float32(i) * 2, 2.5, 10}))
		require.NoError(t, err)
		p.SetShadowSlot(i)
		sc.AddProjector(p)
		out[i] = p
	}
	return sc, out
}

func snapshots(projectors []projector.Projector) []projector.Snapshot {
	out := make([]projector.Snapshot, len(projectors))
	for i, p := range projectors {
		out[i] = p.Snapshot()
	}
	return out
}

func TestNewCompositorReflectsProjectorBindings(t *testing.T) {
	fb := newFakeBackend()
	c, err := NewCompositor(fb, nil)
	require.NoError(t, err)
	defer c.Release()

	assert.Equal(t, []string{DefaultPipelineKey, DefaultLinePipelineKey}, fb.pipelines)

	impl := c.(*compositor)
	assert.Equal(t, []int{1, 2, 3, 4}, impl.textureBindings)
	assert.Equal(t, []int{5, 6, 7, 8}, impl.shadowBindings)
	assert.Equal(t, 9, impl.samplerBinding)

	g2 := c.Pipeline().BindGroupLayoutDescriptor(2)
	assert.Len(t, g2.Entries, 10)
}

func TestNewCompositorOptions(t *testing.T) {
	fb := newFakeBackend()
	c, err := NewCompositor(fb, nil, WithPipelineKey("main"), WithLinePipelineKey(""), WithLinePipelineKey("lines"))
	require.NoError(t, err)
	defer c.Release()

	assert.Equal(t, "main", c.PipelineKey())
	assert.Equal(t, "lines", c.LinePipelineKey())
	assert.Equal(t, []string{"main", "lines"}, fb.pipelines)

	_, err = NewCompositor(nil, nil)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestRenderRequiresPrepare(t *testing.T) {
	c, err := NewCompositor(newFakeBackend(), nil)
	require.NoError(t, err)
	defer c.Release()

	assert.ErrorIs(t, c.Render(), ErrNotPrepared)
}

func TestInactiveProjectorLeavesOthersUnchanged(t *testing.T) {
	fbSingle := newFakeBackend()
	single, err := NewCompositor(fbSingle, nil)
	require.NoError(t, err)
	defer single.Release()

	sc1, ps1 := newTestScene(t, 1, 1)
	defer sc1.Release()
	require.NoError(t, single.Prepare(sc1, snapshots(ps1)))

	fbMulti := newFakeBackend()
	multi, err := NewCompositor(fbMulti, nil)
	require.NoError(t, err)
	defer multi.Release()

	sc3, ps3 := newTestScene(t, 1, 3)
	defer sc3.Release()
	ps3[2].SetActive(false)
	require.NoError(t, multi.Prepare(sc3, snapshots(ps3)))

	want := fbSingle.slotWrite(projector.SlotOffset(0))
	require.NotNil(t, want)
	assert.Equal(t, want, fbMulti.slotWrite(projector.SlotOffset(0)))
	assert.NotNil(t, fbMulti.slotWrite(projector.SlotOffset(1)))

	inactive := fbMulti.slotWrite(projector.SlotOffset(2) + projector.ActiveOffset)
	assert.Equal(t, projector.InactiveWord(), inactive)
	assert.Nil(t, fbMulti.slotWrite(projector.SlotOffset(2)))
}

func TestProjectorBindGroupRebuiltOnlyOnChange(t *testing.T) {
	fb := newFakeBackend()
	shadows := &fakeShadows{}
	for i := range shadows.views {
		shadows.views[i] = &wgpu.TextureView{}
	}
	c, err := NewCompositor(fb, shadows)
	require.NoError(t, err)
	defer c.Release()

	sc, ps := newTestScene(t, 2, 2)
	defer sc.Release()

	require.NoError(t, c.Prepare(sc, snapshots(ps)))
	require.NoError(t, c.Prepare(sc, snapshots(ps)))
	assert.Equal(t, 1, fb.bindGroups["composite_projectors"])

	tex := &fakeTexture{view: &wgpu.TextureView{}}
	ps[1].SetTexture(tex)
	require.NoError(t, c.Prepare(sc, snapshots(ps)))
	assert.Equal(t, 2, fb.bindGroups["composite_projectors"])
	assert.Same(t, tex.view, c.ProjectorProvider().TextureView(2))
	assert.Same(t, shadows.views[1], c.ProjectorProvider().TextureView(6))

	shadows.views[0] = &wgpu.TextureView{}
	require.NoError(t, c.Prepare(sc, snapshots(ps)))
	assert.Equal(t, 3, fb.bindGroups["composite_projectors"])

	// the camera bind group is created once and kept by the camera
	camProvider := sc.Camera().BindGroupProvider()
	require.NotNil(t, camProvider)
	assert.Equal(t, 1, fb.bindGroups[camProvider.Label()])
}

func TestRenderDrawsVisibleObjects(t *testing.T) {
	fb := newFakeBackend()
	c, err := NewCompositor(fb, nil)
	require.NoError(t, err)
	defer c.Release()

	sc, ps := newTestScene(t, 3, 1)
	defer sc.Release()
	sc.Drawables()[1].SetVisible(false)

	require.NoError(t, c.Prepare(sc, snapshots(ps)))
	require.NoError(t, c.Render())

	assert.Equal(t, 1, fb.frames)
	assert.Equal(t, 1, fb.ended)
	require.Len(t, fb.draws, 2)
	for _, d := range fb.draws {
		assert.Equal(t, DefaultPipelineKey, d.key)
		assert.Equal(t, 3, d.groups)
	}
}

func TestPrepareCullsObjectsOutsideCamera(t *testing.T) {
	fb := newFakeBackend()
	c, err := NewCompositor(fb, nil)
	require.NoError(t, err)
	defer c.Release()

	sc, ps := newTestScene(t, 2, 1)
	defer sc.Release()
	// behind the default camera at (15, 10, 15)
	sc.Drawables()[0].SetPosition(common.Vec3{60, 40, 60})

	require.NoError(t, c.Prepare(sc, snapshots(ps)))
	require.NoError(t, c.Render())
	assert.Len(t, fb.draws, 1)
}

func TestRenderDrawsHelperLines(t *testing.T) {
	fb := newFakeBackend()
	c, err := NewCompositor(fb, nil)
	require.NoError(t, err)
	defer c.Release()

	sc, ps := newTestScene(t, 1, 1)
	defer sc.Release()
	sc.SetHelpers(true, true, true)

	require.NoError(t, c.Prepare(sc, snapshots(ps)))
	require.NoError(t, c.Render())

	assert.Equal(t, len(sc.HelperLines()), fb.lineVertices)
	require.Len(t, fb.draws, 2)
	assert.Equal(t, DefaultLinePipelineKey, fb.draws[1].key)
	assert.Equal(t, 1, fb.draws[1].groups)
}

func TestRenderEndsFrameOnDrawError(t *testing.T) {
	fb := newFakeBackend()
	c, err := NewCompositor(fb, nil)
	require.NoError(t, err)
	defer c.Release()

	sc, ps := newTestScene(t, 1, 0)
	defer sc.Release()
	require.NoError(t, c.Prepare(sc, snapshots(ps)))

	fb.failDraw = errors.New("lost device")
	err = c.Render()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lost device")
	assert.Equal(t, 1, fb.ended)
}
