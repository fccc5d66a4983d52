// Package history keeps bounded undo and redo stacks of reversible edits.
package history

import (
	"log/slog"
	"sync"
)

// DefaultMaxSize is the number of actions kept on the undo stack.
const DefaultMaxSize = 50

type history struct {
	mu *sync.Mutex

	maxSize int
	undo    []Action
	redo    []Action
}

// History records actions so they can be undone and redone.
// Pushing a new action clears the redo stack. When the undo stack exceeds its maximum size the
// oldest action is dropped.
// Thread-safe for concurrent access.
type History interface {
	// Push records an action that has already been applied.
	//
	// Parameters:
	//   - a: the action
	Push(a Action)

	// Do applies an action and records it.
	//
	// Parameters:
	//   - a: the action
	Do(a Action)

	// Undo reverts the most recent action and moves it to the redo stack.
	//
	// Returns:
	//   - bool: false when there is nothing to undo
	Undo() bool

	// Redo reapplies the most recently undone action.
	//
	// Returns:
	//   - bool: false when there is nothing to redo
	Redo() bool

	// CanUndo reports whether Undo would do anything.
	//
	// Returns:
	//   - bool: true when the undo stack is not empty
	CanUndo() bool

	// CanRedo reports whether Redo would do anything.
	//
	// Returns:
	//   - bool: true when the redo stack is not empty
	CanRedo() bool

	// UndoCount returns the size of the undo stack.
	//
	// Returns:
	//   - int: the number of undoable actions
	UndoCount() int

	// RedoCount returns the size of the redo stack.
	//
	// Returns:
	//   - int: the number of redoable actions
	RedoCount() int

	// MaxSize returns the capacity of the undo stack.
	//
	// Returns:
	//   - int: the capacity
	MaxSize() int

	// Clear empties both stacks.
	Clear()
}

var _ History = &history{}

// NewHistory creates empty undo and redo stacks.
//
// Parameters:
//   - options: functional options to further configure the history
//
// Returns:
//   - History: the history
func NewHistory(options ...HistoryBuilderOption) History {
	h := &history{
		mu:      &sync.Mutex{},
		maxSize: DefaultMaxSize,
	}
	for _, option := range options {
		option(h)
	}
	return h
}

func (h *history) Push(a Action) {
	if a == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, a)
	h.redo = h.redo[:0]
	if over := len(h.undo) - h.maxSize; over > 0 {
		h.undo = append(h.undo[:0], h.undo[over:]...)
	}
}

func (h *history) Do(a Action) {
	if a == nil {
		return
	}
	a.Apply()
	h.Push(a)
}

func (h *history) Undo() bool {
	h.mu.Lock()
	n := len(h.undo)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	a := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, a)
	h.mu.Unlock()

	a.Revert()
	slog.Debug("history: undone", "action", a.Name())
	return true
}

func (h *history) Redo() bool {
	h.mu.Lock()
	n := len(h.redo)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	a := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, a)
	h.mu.Unlock()

	a.Apply()
	slog.Debug("history: redone", "action", a.Name())
	return true
}

func (h *history) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *history) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

func (h *history) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

func (h *history) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

func (h *history) MaxSize() int {
	return h.maxSize
}

func (h *history) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}
