package history

import "github.com/Carmen-Shannon/oxy-projector/engine/property"

// Action is a reversible edit.
type Action interface {
	// Name returns a short label for logs and menus.
	//
	// Returns:
	//   - string: the label
	Name() string

	// Apply performs the edit. Called again on redo.
	Apply()

	// Revert restores the state from before Apply.
	Revert()
}

// Change is one property write from Old to New.
type Change struct {
	Property property.Property
	Old      float32
	New      float32
}

type propertyAction struct {
	name    string
	target  property.Target
	changes []Change
}

var _ Action = &propertyAction{}

// NewPropertyAction creates an action that writes a set of properties on one target. Apply writes
// every New value in order and Revert writes every Old value in reverse order.
//
// Parameters:
//   - name: the label of the action
//   - target: the entity the properties belong to
//   - changes: the property writes
//
// Returns:
//   - Action: the action
func NewPropertyAction(name string, target property.Target, changes ...Change) Action {
	return &propertyAction{name: name, target: target, changes: changes}
}

// CaptureChange reads the current value of p on target and pairs it with next.
//
// Parameters:
//   - target: the entity
//   - p: the property
//   - next: the value the change writes
//
// Returns:
//   - Change: the change
//   - bool: false when target does not expose p
func CaptureChange(target property.Target, p property.Property, next float32) (Change, bool) {
	old, ok := target.Get(p)
	if !ok {
		return Change{}, false
	}
	return Change{Property: p, Old: old, New: next}, true
}

func (a *propertyAction) Name() string {
	return a.name
}

func (a *propertyAction) Apply() {
	for _, c := range a.changes {
		a.target.Set(c.Property, c.New)
	}
}

func (a *propertyAction) Revert() {
	for i := len(a.changes) - 1; i >= 0; i-- {
		a.target.Set(a.changes[i].Property, a.changes[i].Old)
	}
}

type funcAction struct {
	name   string
	apply  func()
	revert func()
}

var _ Action = &funcAction{}

// NewFuncAction creates an action from a pair of closures. A nil closure does nothing.
//
// Parameters:
//   - name: the label of the action
//   - apply: performs the edit
//   - revert: restores the previous state
//
// Returns:
//   - Action: the action
func NewFuncAction(name string, apply, revert func()) Action {
	return &funcAction{name: name, apply: apply, revert: revert}
}

func (a *funcAction) Name() string {
	return a.name
}

func (a *funcAction) Apply() {
	if a.apply != nil {
		a.apply()
	}
}

func (a *funcAction) Revert() {
	if a.revert != nil {
		a.revert()
	}
}
