// Package timeline animates entity properties with keyframes. Playback advances a clock that is
// evaluated against the active clip each frame, writing values through the property registry.
package timeline

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/chewxy/math32"
)

// Playback defaults.
const (
	DefaultDuration float32 = 10
	DefaultSpeed    float32 = 1
	DefaultClipName         = "Animation"
)

type timeline struct {
	mu *sync.Mutex

	resolver Resolver

	clips  []*Clip
	active *Clip

	currentTime float32
	duration    float32
	speed       float32
	loop        bool
	playing     bool

	recording   bool
	recordStart float32
}

// Timeline owns the animation clips of a session and the playback clock that drives them.
// It satisfies scene.Updater so the scene advances it once per frame.
// Thread-safe for concurrent access.
type Timeline interface {
	// Update advances the clock by dt scaled by the playback speed and applies the active clip.
	// Past the end the clock wraps when looping, otherwise it clamps to the duration and pauses.
	// Does nothing while paused.
	//
	// Parameters:
	//   - dt: elapsed seconds since the last frame
	Update(dt float32)

	// Play starts playback from the current time.
	Play()

	// Pause stops playback and keeps the current time.
	Pause()

	// Stop stops playback and rewinds to 0.
	Stop()

	// TogglePlay switches between Play and Pause.
	//
	// Returns:
	//   - bool: true when the timeline is now playing
	TogglePlay() bool

	// Playing reports whether the clock is advancing.
	//
	// Returns:
	//   - bool: true while playing
	Playing() bool

	// Seek moves the clock, clamped to [0, duration], and applies the active clip at that time.
	//
	// Parameters:
	//   - t: the time in seconds
	Seek(t float32)

	// CurrentTime returns the clock position in seconds.
	//
	// Returns:
	//   - float32: the current time
	CurrentTime() float32

	// Duration returns the playback length in seconds.
	//
	// Returns:
	//   - float32: the duration
	Duration() float32

	// SetDuration sets the playback length. Values <= 0 are ignored and the clock is clamped.
	//
	// Parameters:
	//   - d: the duration in seconds
	SetDuration(d float32)

	// Loop reports whether playback wraps at the end.
	//
	// Returns:
	//   - bool: true when looping
	Loop() bool

	// SetLoop enables or disables wrapping.
	//
	// Parameters:
	//   - loop: true to wrap at the end
	SetLoop(loop bool)

	// Speed returns the playback speed multiplier.
	//
	// Returns:
	//   - float32: the speed
	Speed() float32

	// SetSpeed sets the playback speed multiplier. Values <= 0 are ignored.
	//
	// Parameters:
	//   - speed: the multiplier
	SetSpeed(speed float32)

	// Progress returns the current time as a fraction of the duration.
	//
	// Returns:
	//   - float32: progress in [0, 1]
	Progress() float32

	// SetProgress seeks to a fraction of the duration.
	//
	// Parameters:
	//   - p: progress, clamped to [0, 1]
	SetProgress(p float32)

	// CreateClip appends a new clip. The first clip created becomes active.
	//
	// Parameters:
	//   - name: the display name
	//
	// Returns:
	//   - *Clip: the clip
	CreateClip(name string) *Clip

	// Clips returns the clips in creation order.
	//
	// Returns:
	//   - []*Clip: a copy of the clip list
	Clips() []*Clip

	// ActiveClip returns the clip evaluated during playback, or nil when there are none.
	//
	// Returns:
	//   - *Clip: the active clip
	ActiveClip() *Clip

	// SetActiveClip activates the first clip with the given name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - bool: false when no clip has that name
	SetActiveClip(name string) bool

	// RemoveClip deletes the first clip with the given name. When it was active the first
	// remaining clip becomes active.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - bool: false when no clip has that name
	RemoveClip(name string) bool

	// AddKeyframe keys the current value of a property at the current time into the active clip,
	// creating a clip when none exists. The duration grows to cover the keyframe.
	//
	// Parameters:
	//   - targetID: the entity id
	//   - p: the property to key
	//   - easing: the easing into this keyframe, unknown names fall back to linear
	//
	// Returns:
	//   - Keyframe: the stored keyframe
	//   - error: ErrUnknownTarget or ErrPropertyUnsupported
	AddKeyframe(targetID uint64, p property.Property, easing string) (Keyframe, error)

	// InsertKeyframe stores an explicit keyframe into the active clip, creating a clip when none
	// exists. The duration grows to cover the keyframe.
	//
	// Parameters:
	//   - k: the keyframe
	InsertKeyframe(k Keyframe)

	// RemoveKeyframe deletes a keyframe of the active clip.
	//
	// Parameters:
	//   - targetID: the entity id
	//   - p: the property
	//   - time: the exact keyframe time
	//
	// Returns:
	//   - bool: true when a keyframe was removed
	RemoveKeyframe(targetID uint64, p property.Property, time float32) bool

	// Keyframes returns every keyframe of the active clip sorted by time.
	//
	// Returns:
	//   - []Keyframe: the keyframes
	Keyframes() []Keyframe

	// ClearAnimation removes every keyframe of the active clip and resets the duration.
	ClearAnimation()

	// StartRecording enables RecordKeyframe.
	StartRecording()

	// StopRecording disables RecordKeyframe.
	StopRecording()

	// Recording reports whether recording is enabled.
	//
	// Returns:
	//   - bool: true while recording
	Recording() bool

	// RecordKeyframe keys a property with linear easing while recording. Does nothing otherwise.
	//
	// Parameters:
	//   - targetID: the entity id
	//   - p: the property
	//
	// Returns:
	//   - error: an AddKeyframe error
	RecordKeyframe(targetID uint64, p property.Property) error

	// SetResolver replaces the resolver used to reach keyed entities.
	//
	// Parameters:
	//   - r: the resolver
	SetResolver(r Resolver)
}

var _ Timeline = &timeline{}

// NewTimeline creates a stopped timeline with the default duration and speed and no clips.
//
// Parameters:
//   - resolver: maps keyframe target ids to entities, usually the scene
//   - options: functional options to further configure the timeline
//
// Returns:
//   - Timeline: the timeline
func NewTimeline(resolver Resolver, options ...TimelineBuilderOption) Timeline {
	t := &timeline{
		mu:       &sync.Mutex{},
		resolver: resolver,
		duration: DefaultDuration,
		speed:    DefaultSpeed,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *timeline) Update(dt float32) {
	t.mu.Lock()
	if !t.playing {
		t.mu.Unlock()
		return
	}
	t.currentTime += dt * t.speed
	if t.currentTime >= t.duration {
		if t.loop {
			t.currentTime = math32.Mod(t.currentTime, t.duration)
		} else {
			t.currentTime = t.duration
			t.playing = false
			slog.Debug("timeline: reached end", "time", t.currentTime)
		}
	}
	clip, now, r := t.active, t.currentTime, t.resolver
	t.mu.Unlock()

	// entity setters take their own locks
	if clip != nil {
		clip.Evaluate(now, r)
	}
}

func (t *timeline) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = true
}

func (t *timeline) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
}

func (t *timeline) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = false
	t.currentTime = 0
}

func (t *timeline) TogglePlay() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing = !t.playing
	return t.playing
}

func (t *timeline) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

func (t *timeline) Seek(time float32) {
	t.mu.Lock()
	t.currentTime = clamp(time, 0, t.duration)
	clip, now, r := t.active, t.currentTime, t.resolver
	t.mu.Unlock()

	if clip != nil {
		clip.Evaluate(now, r)
	}
}

func (t *timeline) CurrentTime() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentTime
}

func (t *timeline) Duration() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

func (t *timeline) SetDuration(d float32) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = d
	t.currentTime = clamp(t.currentTime, 0, d)
}

func (t *timeline) Loop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loop
}

func (t *timeline) SetLoop(loop bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loop = loop
}

func (t *timeline) Speed() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speed
}

func (t *timeline) SetSpeed(speed float32) {
	if speed <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.speed = speed
}

func (t *timeline) Progress() float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.duration <= 0 {
		return 0
	}
	return t.currentTime / t.duration
}

func (t *timeline) SetProgress(p float32) {
	t.Seek(clamp(p, 0, 1) * t.Duration())
}

func (t *timeline) CreateClip(name string) *Clip {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createClip(name)
}

func (t *timeline) createClip(name string) *Clip {
	c := NewClip(name)
	t.clips = append(t.clips, c)
	if t.active == nil {
		t.active = c
	}
	return c
}

func (t *timeline) Clips() []*Clip {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.clips)
}

func (t *timeline) ActiveClip() *Clip {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *timeline) SetActiveClip(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clips {
		if c.Name() == name {
			t.active = c
			return true
		}
	}
	return false
}

func (t *timeline) RemoveClip(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := slices.IndexFunc(t.clips, func(c *Clip) bool { return c.Name() == name })
	if i < 0 {
		return false
	}
	removed := t.clips[i]
	t.clips = slices.Delete(t.clips, i, i+1)
	if t.active == removed {
		t.active = nil
		if len(t.clips) > 0 {
			t.active = t.clips[0]
		}
	}
	return true
}

func (t *timeline) AddKeyframe(targetID uint64, p property.Property, easing string) (Keyframe, error) {
	t.mu.Lock()
	r := t.resolver
	t.mu.Unlock()

	if r == nil {
		return Keyframe{}, fmt.Errorf("%w: %d", ErrUnknownTarget, targetID)
	}
	target, ok := r.Target(targetID)
	if !ok {
		return Keyframe{}, fmt.Errorf("%w: %d", ErrUnknownTarget, targetID)
	}
	v, ok := target.Get(p)
	if !ok {
		return Keyframe{}, fmt.Errorf("%w: %s on %d", ErrPropertyUnsupported, p, targetID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	k := Keyframe{Time: t.currentTime, TargetID: targetID, Property: p, Value: v, Easing: easing}
	t.insertKeyframe(k)
	slog.Debug("timeline: keyframe added", "target", targetID, "property", p.String(), "time", k.Time)
	return k, nil
}

func (t *timeline) InsertKeyframe(k Keyframe) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.insertKeyframe(k)
}

func (t *timeline) insertKeyframe(k Keyframe) {
	if t.active == nil {
		t.createClip(DefaultClipName)
	}
	t.active.AddKeyframe(k)
	if k.Time > t.duration {
		t.duration = k.Time
	}
}

func (t *timeline) RemoveKeyframe(targetID uint64, p property.Property, time float32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return false
	}
	return t.active.RemoveKeyframe(targetID, p, time)
}

func (t *timeline) Keyframes() []Keyframe {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return nil
	}
	return t.active.Keyframes()
}

func (t *timeline) ClearAnimation() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return
	}
	t.active.Clear()
	t.duration = DefaultDuration
	t.currentTime = clamp(t.currentTime, 0, t.duration)
}

func (t *timeline) StartRecording() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recording = true
	t.recordStart = t.currentTime
	slog.Info("timeline: recording started", "time", t.recordStart)
}

func (t *timeline) StopRecording() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recording {
		slog.Info("timeline: recording stopped", "from", t.recordStart, "to", t.currentTime)
	}
	t.recording = false
}

func (t *timeline) Recording() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recording
}

func (t *timeline) RecordKeyframe(targetID uint64, p property.Property) error {
	if !t.Recording() {
		return nil
	}
	_, err := t.AddKeyframe(targetID, p, EaseLinear)
	return err
}

func (t *timeline) SetResolver(r Resolver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resolver = r
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
