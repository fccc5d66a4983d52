package bind_group_provider

import "slices"

// BufferWrite is one queue write into the buffer a provider holds at Binding.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// End returns the byte offset just past the written range.
func (w BufferWrite) End() uint64 {
	return w.Offset + uint64(len(w.Data))
}

// Coalesce merges runs of writes that target the same provider binding and continue exactly
// where the previous write ended, such as consecutive projector slots. Order is otherwise kept
// and the input slice and its data are not modified.
//
// Parameters:
//   - writes: the writes in submission order
//
// Returns:
//   - []BufferWrite: the merged writes
func Coalesce(writes []BufferWrite) []BufferWrite {
	if len(writes) < 2 {
		return writes
	}
	out := make([]BufferWrite, 0, len(writes))
	for _, w := range writes {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Provider == w.Provider && last.Binding == w.Binding && last.End() == w.Offset {
				last.Data = append(slices.Clip(last.Data), w.Data...)
				continue
			}
		}
		out = append(out, w)
	}
	return out
}
