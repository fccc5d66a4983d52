package compositor

// CompositorBuilderOption configures a Compositor before its pipelines are registered.
type CompositorBuilderOption func(*compositor)

// WithPipelineKey overrides the cache key of the main pipeline. An empty key is ignored.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - CompositorBuilderOption: the option
func WithPipelineKey(key string) CompositorBuilderOption {
	return func(c *compositor) {
		if key != "" {
			c.pipelineKey = key
		}
	}
}

// WithLinePipelineKey overrides the cache key of the helper line pipeline. An empty key is ignored.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - CompositorBuilderOption: the option
func WithLinePipelineKey(key string) CompositorBuilderOption {
	return func(c *compositor) {
		if key != "" {
			c.linePipelineKey = key
		}
	}
}
