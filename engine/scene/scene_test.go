package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "panasonic_pt_rq13k"

func newDrawable(t *testing.T, s Scene, opts ...drawable.DrawableBuilderOption) drawable.Drawable {
	t.Helper()
	m, err := model.NewPrimitive(model.KindCube, "")
	require.NoError(t, err)
	d, err := drawable.NewDrawable(s.IDs(), m, opts...)
	require.NoError(t, err)
	return d
}

func newProjector(t *testing.T, s Scene, opts ...projector.ProjectorBuilderOption) projector.Projector {
	t.Helper()
	p, err := projector.NewProjector(s.IDs(), testModel, "", opts...)
	require.NoError(t, err)
	return p
}

type fakeTexture struct{ released int }

func (f *fakeTexture) View() *wgpu.TextureView { return nil }
func (f *fakeTexture) Release()                { f.released++ }

type countingUpdater struct {
	calls int
	total float32
}

func (c *countingUpdater) Update(dt float32) {
	c.calls++
	c.total += dt
}

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene("stage")
	assert.Equal(t, "stage", s.Name())
	assert.NotNil(t, s.Camera())
	assert.True(t, s.ShowHelpers())
	assert.True(t, s.ShowGrid())
	assert.True(t, s.ShowFrustums())
	assert.Equal(t, light.DefaultLighting(), s.Lighting())
	assert.Equal(t, Stats{Cameras: 1}, s.Stats())
}

func TestSceneOrderAndFilters(t *testing.T) {
	s := NewScene("stage")
	a := newDrawable(t, s)
	b := newDrawable(t, s, drawable.WithVisible(false))
	c := newDrawable(t, s)
	s.AddDrawable(a)
	s.AddDrawable(b)
	s.AddDrawable(c)

	p1 := newProjector(t, s)
	p2 := newProjector(t, s, projector.WithActive(false))
	p3 := newProjector(t, s)
	s.AddProjector(p1)
	s.AddProjector(p2)
	s.AddProjector(p3)

	assert.Equal(t, []drawable.Drawable{a, b, c}, s.Drawables())
	assert.Equal(t, []drawable.Drawable{a, c}, s.VisibleObjects())
	assert.Equal(t, []projector.Projector{p1, p3}, s.ActiveProjectors())
	assert.Equal(t, Stats{Objects: 3, Projectors: 3, Cameras: 1, ActiveProjectors: 2, VisibleObjects: 2}, s.Stats())
}

func TestSceneRemoveReleases(t *testing.T) {
	s := NewScene("stage")
	p := newProjector(t, s)
	tex := &fakeTexture{}
	p.SetTexture(tex)
	s.AddProjector(p)

	assert.True(t, s.RemoveProjector(p.ID()))
	assert.Equal(t, 1, tex.released)
	assert.False(t, s.RemoveProjector(p.ID()))
	assert.Empty(t, s.Projectors())
	assert.False(t, s.RemoveDrawable(999))
}

func TestSceneLights(t *testing.T) {
	s := NewScene("stage")
	l := light.NewLight(light.LightTypePoint)
	s.AddLight(l)
	assert.NotZero(t, l.ID())
	assert.Len(t, s.Lights(), 1)

	target, ok := s.Target(l.ID())
	require.True(t, ok)
	assert.True(t, target.Set(property.Intensity, 2))
	assert.InDelta(t, 2, l.Intensity(), 1e-6)

	assert.True(t, s.RemoveLight(l.ID()))
	assert.Empty(t, s.Lights())
}

func TestSceneTargetResolution(t *testing.T) {
	s := NewScene("stage")
	d := newDrawable(t, s)
	p := newProjector(t, s)
	s.AddDrawable(d)
	s.AddProjector(p)

	got, ok := s.Target(d.ID())
	require.True(t, ok)
	assert.Equal(t, d.ID(), got.ID())
	got, ok = s.Target(p.ID())
	require.True(t, ok)
	assert.Equal(t, p.ID(), got.ID())
	_, ok = s.Target(12345)
	assert.False(t, ok)
}

func TestSceneObservesForeignIDs(t *testing.T) {
	s := NewScene("stage")
	d := newDrawable(t, s, drawable.WithID(40))
	s.AddDrawable(d)
	assert.Greater(t, s.IDs().Next(), uint64(40))
}

func TestSceneToggles(t *testing.T) {
	s := NewScene("stage", WithHelpers(true, false, true))
	assert.False(t, s.ShowGrid())
	s.ToggleGrid()
	s.ToggleFrustums()
	assert.True(t, s.ShowGrid())
	assert.False(t, s.ShowFrustums())

	p := newProjector(t, s)
	s.AddProjector(p)
	assert.Len(t, s.HelperLines(), GridLineCount*2)

	s.ToggleFrustums()
	assert.Len(t, s.HelperLines(), GridLineCount*2+24)

	s.ToggleHelpers()
	assert.Empty(t, s.HelperLines())
}

func TestGridLines(t *testing.T) {
	s := NewScene("stage")
	lines := s.GridLines()
	require.Len(t, lines, GridLineCount*2)

	var red, blue int
	for i := 0; i < len(lines); i += 2 {
		a, b := lines[i], lines[i+1]
		assert.Equal(t, a.Color, b.Color)
		assert.Zero(t, a.Position[1])
		switch a.Color {
		case GridAxisXColor:
			red++
			assert.Equal(t, [3]float32{-GridHalfExtent, 0, 0}, a.Position)
			assert.Equal(t, [3]float32{GridHalfExtent, 0, 0}, b.Position)
		case GridAxisZColor:
			blue++
			assert.Equal(t, [3]float32{0, 0, -GridHalfExtent}, a.Position)
		}
	}
	assert.Equal(t, 1, red)
	assert.Equal(t, 1, blue)
}

func TestFrustumLinesReachTarget(t *testing.T) {
	s := NewScene("stage")
	p := newProjector(t, s,
		projector.WithPosition(common.Vec3{0, 0, 10}),
		projector.WithTarget(common.Vec3{0, 0, 0}),
	)
	lines := s.FrustumLines(p)
	require.Len(t, lines, 24)

	// every third segment joins a near corner to a far corner; the far end lies on the target plane
	for i := 0; i < 4; i++ {
		far := lines[i*6+5].Position
		assert.InDelta(t, 0, far[2], 1e-3)
		assert.Equal(t, FrustumActiveColor, lines[i*6].Color)
	}

	p.SetActive(false)
	assert.Equal(t, FrustumPassiveColor, s.FrustumLines(p)[0].Color)
}

func TestSceneUpdateAndDetach(t *testing.T) {
	s := NewScene("stage")
	u := &countingUpdater{}
	s.Attach(u)
	s.Update(0.5)
	s.Update(0.25)
	assert.Equal(t, 2, u.calls)
	assert.InDelta(t, 0.75, u.total, 1e-6)

	s.Detach(u)
	s.Update(1)
	assert.Equal(t, 2, u.calls)
}

func TestSceneClearAndRelease(t *testing.T) {
	s := NewScene("stage")
	p := newProjector(t, s)
	tex := &fakeTexture{}
	p.SetTexture(tex)
	s.AddProjector(p)
	s.AddDrawable(newDrawable(t, s))
	s.SetLighting(light.Lighting{Ambient: 0.3, DirectionalIntensity: 0.4, Direction: common.Vec3{0, 1, 0}})

	s.Clear()
	assert.Equal(t, 1, tex.released)
	assert.Equal(t, Stats{Cameras: 1}, s.Stats())
	assert.InDelta(t, 0.3, s.Lighting().Ambient, 1e-6)

	s.Release()
	s.Release()
	assert.Equal(t, 1, tex.released)
}
