package scene

import (
	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCamera sets the viewer camera. A default orbit camera is created otherwise.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithIDAllocator shares an existing allocator, for example when loading a project whose entities were created first.
//
// Parameters:
//   - ids: the allocator
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithIDAllocator(ids *common.IDAllocator) SceneBuilderOption {
	return func(s *scene) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithLighting sets the initial base lighting.
//
// Parameters:
//   - l: the lighting
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLighting(l light.Lighting) SceneBuilderOption {
	return func(s *scene) {
		s.lighting = l.Normalized()
	}
}

// WithHelpers sets the initial helper toggles.
//
// Parameters:
//   - helpers: master helper switch
//   - grid: reference grid
//   - frustums: projector frustums
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithHelpers(helpers, grid, frustums bool) SceneBuilderOption {
	return func(s *scene) {
		s.showHelpers = helpers
		s.showGrid = grid
		s.showFrustums = frustums
	}
}
