package project

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "panasonic_pt_rq13k"

var created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSession(t *testing.T) (scene.Scene, timeline.Timeline) {
	t.Helper()
	sc := scene.NewScene("stage", scene.WithHelpers(false, false, false))
	t.Cleanup(sc.Release)

	m, err := model.NewPrimitive(model.KindCube, "box")
	require.NoError(t, err)
	d, err := drawable.NewDrawable(sc.IDs(), m,
		drawable.WithName("box"),
		drawable.WithPosition(common.Vec3{1, 0.5, -2}),
		drawable.WithScale(common.Vec3{2, 1, 1}),
		drawable.WithColor(common.Vec3{0.8, 0.2, 0.2}),
		drawable.WithShadows(true, false),
	)
	require.NoError(t, err)
	sc.AddDrawable(d)

	p, err := projector.NewProjector(sc.IDs(), testModel, "",
		projector.WithName("front"),
		projector.WithPosition(common.Vec3{0, 2, 6}),
		projector.WithTarget(common.Vec3{0, 1, 0}),
		projector.WithLensShift(0.05, 0),
		projector.WithKeystone(4, 0),
		projector.WithIntensity(0.8),
	)
	require.NoError(t, err)
	p.SetCornerPin(projector.CornerTR, 10, -5)
	p.SetSoftEdge(15, 0, 0, 0)
	sc.AddProjector(p)

	sc.AddLight(light.NewLight(light.LightTypePoint, light.WithName("fill"), light.WithPosition(common.Vec3{0, 4, 0})))

	tl := timeline.NewTimeline(sc, timeline.WithLoop(true))
	tl.InsertKeyframe(timeline.Keyframe{Time: 0, TargetID: p.ID(), Property: property.Intensity, Value: 0.2})
	tl.InsertKeyframe(timeline.Keyframe{Time: 4, TargetID: p.ID(), Property: property.Intensity, Value: 0.8, Easing: timeline.EaseInOutSine})
	tl.Seek(4)
	return sc, tl
}

func TestRoundTrip(t *testing.T) {
	sc, tl := newSession(t)
	f := Capture(sc, tl, created)
	assert.Equal(t, Version, f.Version)
	assert.Equal(t, "2026-03-01T12:00:00Z", f.Created)
	require.Len(t, f.Scene.Objects, 1)
	require.Len(t, f.Scene.Projectors, 1)
	require.Len(t, f.Scene.Lights, 1)
	require.Len(t, f.Timeline.Clips, 1)
	assert.Equal(t, "intensity", f.Timeline.Clips[0].Keyframes[0].Property)

	data, err := Marshal(f)
	require.NoError(t, err)
	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	sc2 := scene.NewScene("other", scene.WithHelpers(false, false, false))
	defer sc2.Release()
	tl2 := timeline.NewTimeline(sc2)
	issues, err := Apply(decoded, sc2, tl2)
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Equal(t, f, Capture(sc2, tl2, created))
	assert.True(t, tl2.Loop())
	assert.InDelta(t, 0.8, sc2.Projectors()[0].Intensity(), 1e-6)
}

func TestSaveLoad(t *testing.T) {
	sc, tl := newSession(t)
	path := filepath.Join(t.TempDir(), "nested", "show.yaml")
	require.NoError(t, Save(path, sc, tl))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "stage", f.Name)
	assert.Len(t, f.Scene.Projectors, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUnmarshalRejectsVersion(t *testing.T) {
	_, err := Unmarshal([]byte("version: \"2.0\"\nscene: {}\n"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Unmarshal([]byte("version: [\n"))
	assert.Error(t, err)
}

func TestValidateReportsIssues(t *testing.T) {
	f := File{
		Version: Version,
		Created: "yesterday",
		Scene: SceneData{
			Objects: []ObjectData{
				{ID: 1, Type: "cube"},
				{ID: 2, Type: "teapot"},
			},
			Projectors: []ProjectorData{
				{ID: 1, ModelID: testModel},
				{ID: 3, ModelID: "nope"},
				{ID: 4, ModelID: testModel, LensID: "nope"},
				{ID: 5, ModelID: testModel, Orientation: "sideways", ThrowRatio: 99},
			},
			Lights: []LightData{{ID: 6, Type: "laser"}},
		},
		Timeline: TimelineData{Clips: []ClipData{{
			Name: "a",
			Keyframes: []KeyframeData{
				{Time: -1, TargetID: 42, Property: "wobble", Easing: "jiggle"},
			},
		}}},
	}

	codes := map[string]IssueLevel{}
	for _, i := range Validate(f) {
		codes[i.Code] = i.Level
		assert.NotEmpty(t, i.Path)
	}
	assert.Equal(t, IssueWarning, codes[CodeCreated])
	assert.Equal(t, IssueError, codes[CodeDuplicateID])
	assert.Equal(t, IssueWarning, codes[CodeUnknownType])
	assert.Equal(t, IssueError, codes[CodeUnknownModel])
	assert.Equal(t, IssueError, codes[CodeUnknownLens])
	assert.Equal(t, IssueWarning, codes[CodeOrientation])
	assert.Equal(t, IssueWarning, codes[CodeThrowRange])
	assert.Equal(t, IssueWarning, codes[CodeUnknownLight])
	assert.Equal(t, IssueWarning, codes[CodeUnknownProperty])
	assert.Equal(t, IssueWarning, codes[CodeUnknownTarget])
	assert.Equal(t, IssueWarning, codes[CodeUnknownEasing])
	assert.Equal(t, IssueWarning, codes[CodeTime])
}

func TestApplyAbortsOnErrors(t *testing.T) {
	sc, tl := newSession(t)
	f := File{Version: Version, Scene: SceneData{Projectors: []ProjectorData{{ModelID: "nope"}}}}

	issues, err := Apply(f, sc, tl)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.True(t, HasErrors(issues))
	assert.Len(t, sc.Projectors(), 1)
}

func TestApplySkipsWarnedEntries(t *testing.T) {
	sc := scene.NewScene("stage", scene.WithHelpers(false, false, false))
	defer sc.Release()
	f := File{
		Version: Version,
		Scene: SceneData{
			Objects: []ObjectData{{ID: 3, Type: "custom"}, {ID: 4, Type: "sphere", Scale: [3]float32{1, 1, 1}, Visible: true}},
			Lights:  []LightData{{ID: 5, Type: "laser"}},
		},
	}
	issues, err := Apply(f, sc, nil)
	require.NoError(t, err)
	assert.Len(t, issues, 2)
	require.Len(t, sc.Drawables(), 1)
	assert.Equal(t, uint64(4), sc.Drawables()[0].ID())
	assert.Empty(t, sc.Lights())
	assert.Greater(t, sc.IDs().Next(), uint64(4))
}

func TestWriteReport(t *testing.T) {
	sc, _ := newSession(t)
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sc, created))

	out := buf.String()
	assert.Contains(t, out, "PROJECTION MAPPING TECHNICAL REPORT")
	assert.Contains(t, out, "PROJECTOR 1: front (active)")
	assert.Contains(t, out, "Throw ratio:")
	assert.Contains(t, out, "Illuminance:")
	assert.Contains(t, out, "1 (1 active)")
	assert.Contains(t, out, "2026-03-01T12:00:00Z")
}
