package timeline

// TimelineBuilderOption is a function that configures a Timeline instance during construction.
type TimelineBuilderOption func(*timeline)

// WithDuration is an option builder that sets the playback length. Values <= 0 are ignored.
//
// Parameters:
//   - d: the duration in seconds
//
// Returns:
//   - TimelineBuilderOption: a function that applies the duration option to a timeline
func WithDuration(d float32) TimelineBuilderOption {
	return func(t *timeline) {
		if d > 0 {
			t.duration = d
		}
	}
}

// WithSpeed is an option builder that sets the playback speed multiplier. Values <= 0 are ignored.
//
// Parameters:
//   - speed: the multiplier
//
// Returns:
//   - TimelineBuilderOption: a function that applies the speed option to a timeline
func WithSpeed(speed float32) TimelineBuilderOption {
	return func(t *timeline) {
		if speed > 0 {
			t.speed = speed
		}
	}
}

// WithLoop is an option builder that enables wrapping at the end of playback.
//
// Parameters:
//   - loop: true to wrap
//
// Returns:
//   - TimelineBuilderOption: a function that applies the loop option to a timeline
func WithLoop(loop bool) TimelineBuilderOption {
	return func(t *timeline) {
		t.loop = loop
	}
}

// WithCurrentTime is an option builder that positions the clock, clamped to [0, duration].
// Apply it after WithDuration.
//
// Parameters:
//   - time: the time in seconds
//
// Returns:
//   - TimelineBuilderOption: a function that applies the time option to a timeline
func WithCurrentTime(time float32) TimelineBuilderOption {
	return func(t *timeline) {
		t.currentTime = clamp(time, 0, t.duration)
	}
}
