package history

// HistoryBuilderOption is a function that configures a History instance during construction.
type HistoryBuilderOption func(*history)

// WithMaxSize is an option builder that sets the capacity of the undo stack. Values < 1 are ignored.
//
// Parameters:
//   - n: the capacity
//
// Returns:
//   - HistoryBuilderOption: a function that applies the size option to a history
func WithMaxSize(n int) HistoryBuilderOption {
	return func(h *history) {
		if n >= 1 {
			h.maxSize = n
		}
	}
}
