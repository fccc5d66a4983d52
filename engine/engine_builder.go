package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-projector/engine/history"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
	"github.com/Carmen-Shannon/oxy-projector/engine/window"
)

// EngineBuilderOption configures an Engine in NewEngine.
type EngineBuilderOption func(*engine)

// WithProfiling logs frame rate and memory samples once per second.
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets how often input, the camera and the timeline are updated.
//
// Parameters:
//   - fps: ticks per second, 60 when not positive
//
// Returns:
//   - EngineBuilderOption: the option
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow attaches the window whose input and resize events drive the engine.
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer frames are drawn with. Required.
//
// Parameters:
//   - r: the renderer, released by Engine.Release
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene replaces the empty default scene.
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithTimeline attaches a timeline that is advanced every tick. Its resolver should be the scene.
func WithTimeline(tl timeline.Timeline) EngineBuilderOption {
	return func(e *engine) {
		e.timeline = tl
	}
}

// WithHistory sets the stack behind the Ctrl+Z and Ctrl+Y shortcuts.
func WithHistory(h history.History) EngineBuilderOption {
	return func(e *engine) {
		e.history = h
	}
}

// WithShadowResolution sets the edge length of every projector depth target. Non-positive values
// keep shadow.DefaultResolution.
func WithShadowResolution(size int) EngineBuilderOption {
	return func(e *engine) {
		if size > 0 {
			e.shadowResolution = size
		}
	}
}

// WithRenderFrameLimit caps the render loop. 0 leaves it bound only by the present mode.
//
// Parameters:
//   - fps: the cap in frames per second
//
// Returns:
//   - EngineBuilderOption: the option
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
