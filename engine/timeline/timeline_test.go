package timeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	id     uint64
	values map[property.Property]float32
	sets   int
}

func (f *fakeTarget) ID() uint64 { return f.id }

func (f *fakeTarget) Get(p property.Property) (float32, bool) {
	v, ok := f.values[p]
	return v, ok
}

func (f *fakeTarget) Set(p property.Property, v float32) bool {
	if _, ok := f.values[p]; !ok {
		return false
	}
	f.values[p] = v
	f.sets++
	return true
}

type fakeResolver map[uint64]*fakeTarget

func (r fakeResolver) Target(id uint64) (property.Target, bool) {
	t, ok := r[id]
	if !ok {
		return nil, false
	}
	return t, true
}

func newFixture() (*fakeTarget, fakeResolver) {
	target := &fakeTarget{id: 7, values: map[property.Property]float32{
		property.PositionX: 0,
		property.Intensity: 1,
	}}
	return target, fakeResolver{7: target}
}

func TestEasingEndpoints(t *testing.T) {
	for _, name := range EasingNames() {
		t.Run(name, func(t *testing.T) {
			f := Easing(name)
			assert.InDelta(t, 0, f(0), 1e-3)
			assert.InDelta(t, 1, f(1), 1e-3)
		})
	}
}

func TestEasingFallsBackToLinear(t *testing.T) {
	assert.False(t, IsEasing("wobble"))
	assert.Equal(t, float32(0.25), Easing("wobble")(0.25))
	assert.Len(t, EasingNames(), 28)
	assert.Equal(t, EaseLinear, EasingNames()[0])
}

func TestEasingShapes(t *testing.T) {
	assert.InDelta(t, 0.25, Easing(EaseInQuad)(0.5), 1e-6)
	assert.InDelta(t, 0.75, Easing(EaseOutQuad)(0.5), 1e-6)
	assert.InDelta(t, 0.5, Easing(EaseInOutCubic)(0.5), 1e-6)
	assert.InDelta(t, 0.5, Easing(EaseInOutSine)(0.5), 1e-6)
	assert.Less(t, Easing(EaseInBack)(0.2), float32(0))
	assert.Greater(t, Easing(EaseOutBack)(0.8), float32(1))
}

func TestClipEvaluateInterpolates(t *testing.T) {
	target, r := newFixture()
	c := NewClip("move")
	c.AddKeyframe(Keyframe{Time: 0, TargetID: 7, Property: property.PositionX, Value: 0})
	c.AddKeyframe(Keyframe{Time: 2, TargetID: 7, Property: property.PositionX, Value: 10, Easing: EaseLinear})

	tests := []struct {
		name string
		time float32
		want float32
	}{
		{"before first", -1, 0},
		{"start", 0, 0},
		{"middle", 1, 5},
		{"end", 2, 10},
		{"after last", 5, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1, c.Evaluate(tt.time, r))
			assert.InDelta(t, tt.want, target.values[property.PositionX], 1e-5)
		})
	}
	assert.Equal(t, float32(2), c.Duration())
}

func TestClipEasingAppliesToIncomingSegment(t *testing.T) {
	c := NewClip("ease")
	c.AddKeyframe(Keyframe{Time: 0, TargetID: 1, Property: property.Intensity, Value: 0})
	c.AddKeyframe(Keyframe{Time: 1, TargetID: 1, Property: property.Intensity, Value: 1, Easing: EaseInQuad})

	v, ok := c.Value(1, property.Intensity, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 0.25, v, 1e-6)

	_, ok = c.Value(2, property.Intensity, 0.5)
	assert.False(t, ok)
}

func TestClipReplaceAndRemove(t *testing.T) {
	c := NewClip("edit")
	c.AddKeyframe(Keyframe{Time: 1, TargetID: 1, Property: property.PositionX, Value: 1, Easing: "nope"})
	c.AddKeyframe(Keyframe{Time: 1, TargetID: 1, Property: property.PositionX, Value: 3})
	c.AddKeyframe(Keyframe{Time: 0.5, TargetID: 2, Property: property.PositionX, Value: 2})

	keys := c.Keyframes()
	require.Len(t, keys, 2)
	assert.Equal(t, uint64(2), keys[0].TargetID)
	assert.Equal(t, float32(3), keys[1].Value)
	assert.Equal(t, EaseLinear, keys[1].Easing)

	assert.False(t, c.RemoveKeyframe(1, property.PositionX, 2))
	assert.True(t, c.RemoveKeyframe(1, property.PositionX, 1))
	assert.Equal(t, 1, c.TrackCount())
	assert.Equal(t, 1, c.RemoveTarget(2))
	assert.Zero(t, c.TrackCount())
}

func TestClipSkipsUnresolvedTargets(t *testing.T) {
	_, r := newFixture()
	c := NewClip("orphan")
	c.AddKeyframe(Keyframe{Time: 0, TargetID: 99, Property: property.PositionX, Value: 1})
	assert.Zero(t, c.Evaluate(0, r))
	assert.Zero(t, c.Evaluate(0, nil))
}

func TestTimelineDefaults(t *testing.T) {
	tl := NewTimeline(nil)
	assert.Equal(t, DefaultDuration, tl.Duration())
	assert.Equal(t, DefaultSpeed, tl.Speed())
	assert.False(t, tl.Playing())
	assert.False(t, tl.Loop())
	assert.Nil(t, tl.ActiveClip())

	tl = NewTimeline(nil, WithDuration(4), WithSpeed(2), WithLoop(true), WithCurrentTime(9), WithSpeed(-1))
	assert.Equal(t, float32(4), tl.Duration())
	assert.Equal(t, float32(2), tl.Speed())
	assert.True(t, tl.Loop())
	assert.Equal(t, float32(4), tl.CurrentTime())
}

func TestTimelinePlaybackClampsAndPauses(t *testing.T) {
	target, r := newFixture()
	tl := NewTimeline(r)
	tl.InsertKeyframe(Keyframe{Time: 0, TargetID: 7, Property: property.PositionX, Value: 0})
	tl.InsertKeyframe(Keyframe{Time: 10, TargetID: 7, Property: property.PositionX, Value: 10})

	tl.Update(1)
	assert.Zero(t, tl.CurrentTime())
	assert.Zero(t, target.sets)

	tl.Play()
	tl.Update(2.5)
	assert.Equal(t, float32(2.5), tl.CurrentTime())
	assert.InDelta(t, 2.5, target.values[property.PositionX], 1e-5)

	tl.Update(20)
	assert.Equal(t, float32(10), tl.CurrentTime())
	assert.False(t, tl.Playing())
	assert.InDelta(t, 10, target.values[property.PositionX], 1e-5)
}

func TestTimelinePlaybackLoops(t *testing.T) {
	_, r := newFixture()
	tl := NewTimeline(r, WithLoop(true), WithSpeed(2))
	tl.Play()
	tl.Update(6)
	assert.InDelta(t, 2, tl.CurrentTime(), 1e-5)
	assert.True(t, tl.Playing())
}

func TestTimelineSeekAndProgress(t *testing.T) {
	target, r := newFixture()
	tl := NewTimeline(r)
	tl.InsertKeyframe(Keyframe{Time: 0, TargetID: 7, Property: property.Intensity, Value: 0})
	tl.InsertKeyframe(Keyframe{Time: 10, TargetID: 7, Property: property.Intensity, Value: 1})

	tl.Seek(-3)
	assert.Zero(t, tl.CurrentTime())
	tl.Seek(30)
	assert.Equal(t, float32(10), tl.CurrentTime())
	assert.Equal(t, float32(1), tl.Progress())

	tl.SetProgress(0.5)
	assert.Equal(t, float32(5), tl.CurrentTime())
	assert.InDelta(t, 0.5, target.values[property.Intensity], 1e-5)

	tl.Stop()
	assert.Zero(t, tl.CurrentTime())
}

func TestTimelineAddKeyframeReadsCurrentValue(t *testing.T) {
	target, r := newFixture()
	tl := NewTimeline(r)
	target.values[property.Intensity] = 0.8

	tl.Seek(3)
	k, err := tl.AddKeyframe(7, property.Intensity, EaseOutQuad)
	require.NoError(t, err)
	assert.Equal(t, float32(3), k.Time)
	assert.Equal(t, float32(0.8), k.Value)
	require.NotNil(t, tl.ActiveClip())
	assert.Equal(t, DefaultClipName, tl.ActiveClip().Name())

	_, err = tl.AddKeyframe(99, property.Intensity, EaseLinear)
	assert.ErrorIs(t, err, ErrUnknownTarget)
	_, err = tl.AddKeyframe(7, property.ThrowRatio, EaseLinear)
	assert.ErrorIs(t, err, ErrPropertyUnsupported)
}

func TestTimelineKeyframeExtendsDuration(t *testing.T) {
	tl := NewTimeline(nil)
	tl.InsertKeyframe(Keyframe{Time: 14, TargetID: 1, Property: property.PositionX, Value: 1})
	assert.Equal(t, float32(14), tl.Duration())

	tl.ClearAnimation()
	assert.Equal(t, DefaultDuration, tl.Duration())
	assert.Empty(t, tl.Keyframes())
}

func TestTimelineRecording(t *testing.T) {
	_, r := newFixture()
	tl := NewTimeline(r)

	require.NoError(t, tl.RecordKeyframe(7, property.PositionX))
	assert.Empty(t, tl.Keyframes())

	tl.StartRecording()
	assert.True(t, tl.Recording())
	require.NoError(t, tl.RecordKeyframe(7, property.PositionX))
	tl.StopRecording()
	assert.Len(t, tl.Keyframes(), 1)
}

func TestTimelineClips(t *testing.T) {
	tl := NewTimeline(nil)
	a := tl.CreateClip("a")
	tl.CreateClip("b")
	assert.Same(t, a, tl.ActiveClip())

	assert.True(t, tl.SetActiveClip("b"))
	assert.False(t, tl.SetActiveClip("c"))
	assert.True(t, tl.RemoveClip("b"))
	assert.Same(t, a, tl.ActiveClip())
	assert.False(t, tl.RemoveClip("b"))
	assert.Len(t, tl.Clips(), 1)
}
