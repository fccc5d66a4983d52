package shadow

// ManagerBuilderOption is a functional option for configuring a Manager during construction.
type ManagerBuilderOption func(*manager)

// WithResolution sets the width and height of every depth target. Non-positive values are ignored.
//
// Parameters:
//   - size: the target size in texels
//
// Returns:
//   - ManagerBuilderOption: functional option to set the resolution
func WithResolution(size int) ManagerBuilderOption {
	return func(m *manager) {
		if size > 0 {
			m.resolution = size
		}
	}
}

// WithPipelineKey sets the cache key the depth pipeline is registered under.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - ManagerBuilderOption: functional option to set the pipeline key
func WithPipelineKey(key string) ManagerBuilderOption {
	return func(m *manager) {
		if key != "" {
			m.pipelineKey = key
		}
	}
}
