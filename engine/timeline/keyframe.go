package timeline

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-projector/engine/property"
)

// Keyframe is the value one property of one entity takes at a point in time. Easing shapes the
// interpolation from the previous keyframe of the same track into this one.
type Keyframe struct {
	Time     float32
	TargetID uint64
	Property property.Property
	Value    float32
	Easing   string
}

// Resolver maps entity ids to property targets. scene.Scene satisfies it.
type Resolver interface {
	Target(id uint64) (property.Target, bool)
}

type trackKey struct {
	targetID uint64
	prop     property.Property
}

// track holds the keyframes of one (target, property) pair sorted by time.
type track struct {
	key       trackKey
	keyframes []Keyframe
}

func (t *track) insert(k Keyframe) {
	i, found := slices.BinarySearchFunc(t.keyframes, k.Time, func(e Keyframe, time float32) int {
		switch {
		case e.Time < time:
			return -1
		case e.Time > time:
			return 1
		}
		return 0
	})
	if found {
		t.keyframes[i] = k
		return
	}
	t.keyframes = slices.Insert(t.keyframes, i, k)
}

// evaluate returns the track value at time. Before the first keyframe the first value holds and
// after the last keyframe the last value holds.
func (t *track) evaluate(time float32) (float32, bool) {
	n := len(t.keyframes)
	if n == 0 {
		return 0, false
	}
	if time <= t.keyframes[0].Time {
		return t.keyframes[0].Value, true
	}
	if time >= t.keyframes[n-1].Time {
		return t.keyframes[n-1].Value, true
	}

	next := slices.IndexFunc(t.keyframes, func(k Keyframe) bool { return k.Time > time })
	a, b := t.keyframes[next-1], t.keyframes[next]
	span := b.Time - a.Time
	if span <= 0 {
		return a.Value, true
	}
	u := Easing(b.Easing)((time - a.Time) / span)
	return a.Value + (b.Value-a.Value)*u, true
}

// Clip is a named set of property tracks. Tracks keep the order in which they were first keyed.
// A Clip is not safe for concurrent use; Timeline serializes access to the clips it owns.
type Clip struct {
	name   string
	tracks []*track
}

// NewClip creates an empty clip.
//
// Parameters:
//   - name: the display name of the clip
//
// Returns:
//   - *Clip: the clip
func NewClip(name string) *Clip {
	return &Clip{name: name}
}

// Name returns the display name of the clip.
func (c *Clip) Name() string {
	return c.name
}

// AddKeyframe inserts k into the track of its target and property. A keyframe already at the
// same time on that track is replaced.
//
// Parameters:
//   - k: the keyframe
func (c *Clip) AddKeyframe(k Keyframe) {
	if !IsEasing(k.Easing) {
		k.Easing = EaseLinear
	}
	key := trackKey{targetID: k.TargetID, prop: k.Property}
	for _, t := range c.tracks {
		if t.key == key {
			t.insert(k)
			return
		}
	}
	t := &track{key: key}
	t.insert(k)
	c.tracks = append(c.tracks, t)
}

// RemoveKeyframe deletes the keyframe of a track at an exact time. Tracks left empty are dropped.
//
// Parameters:
//   - targetID: the entity id of the track
//   - p: the property of the track
//   - time: the keyframe time
//
// Returns:
//   - bool: true when a keyframe was removed
func (c *Clip) RemoveKeyframe(targetID uint64, p property.Property, time float32) bool {
	key := trackKey{targetID: targetID, prop: p}
	for ti, t := range c.tracks {
		if t.key != key {
			continue
		}
		i := slices.IndexFunc(t.keyframes, func(k Keyframe) bool { return k.Time == time })
		if i < 0 {
			return false
		}
		t.keyframes = slices.Delete(t.keyframes, i, i+1)
		if len(t.keyframes) == 0 {
			c.tracks = slices.Delete(c.tracks, ti, ti+1)
		}
		return true
	}
	return false
}

// RemoveTarget drops every track of an entity.
//
// Parameters:
//   - targetID: the entity id
//
// Returns:
//   - int: the number of tracks removed
func (c *Clip) RemoveTarget(targetID uint64) int {
	before := len(c.tracks)
	c.tracks = slices.DeleteFunc(c.tracks, func(t *track) bool { return t.key.targetID == targetID })
	return before - len(c.tracks)
}

// Keyframes returns every keyframe of the clip sorted by time. Keyframes at equal times keep
// track order.
func (c *Clip) Keyframes() []Keyframe {
	var out []Keyframe
	for _, t := range c.tracks {
		out = append(out, t.keyframes...)
	}
	slices.SortStableFunc(out, func(a, b Keyframe) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return out
}

// Duration returns the time of the last keyframe, or 0 for an empty clip.
func (c *Clip) Duration() float32 {
	var d float32
	for _, t := range c.tracks {
		if n := len(t.keyframes); n > 0 && t.keyframes[n-1].Time > d {
			d = t.keyframes[n-1].Time
		}
	}
	return d
}

// TrackCount returns the number of tracks in the clip.
func (c *Clip) TrackCount() int {
	return len(c.tracks)
}

// Value evaluates one track at a time without applying it.
//
// Parameters:
//   - targetID: the entity id of the track
//   - p: the property of the track
//   - time: the evaluation time in seconds
//
// Returns:
//   - float32: the interpolated value
//   - bool: false when the clip has no such track
func (c *Clip) Value(targetID uint64, p property.Property, time float32) (float32, bool) {
	key := trackKey{targetID: targetID, prop: p}
	for _, t := range c.tracks {
		if t.key == key {
			return t.evaluate(time)
		}
	}
	return 0, false
}

// Evaluate writes every track value at time through the resolved targets' setters. Tracks whose
// target no longer resolves are skipped.
//
// Parameters:
//   - time: the evaluation time in seconds
//   - r: the resolver of target ids
//
// Returns:
//   - int: the number of properties written
func (c *Clip) Evaluate(time float32, r Resolver) int {
	if r == nil {
		return 0
	}
	applied := 0
	for _, t := range c.tracks {
		v, ok := t.evaluate(time)
		if !ok {
			continue
		}
		target, ok := r.Target(t.key.targetID)
		if !ok {
			continue
		}
		if target.Set(t.key.prop, v) {
			applied++
		}
	}
	return applied
}

// Clear removes every track.
func (c *Clip) Clear() {
	c.tracks = nil
}
