package engine

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
)

// binding identifies a shortcut: a key code plus whether a control key is held.
type binding struct {
	key  uint32
	ctrl bool
}

// input turns window events into camera motion and shortcut actions. Window callbacks and the
// tick goroutine both reach it, so all state sits behind mu.
type input struct {
	mu *sync.Mutex

	controller func() camera.CameraController
	held       map[uint32]bool
	bindings   map[binding]func()

	dragging bool
	panning  bool
	lastX    int32
	lastY    int32
	panDX    float32
	panDY    float32
}

func newInput(controller func() camera.CameraController) *input {
	return &input{
		mu:         &sync.Mutex{},
		controller: controller,
		held:       make(map[uint32]bool),
		bindings:   make(map[binding]func()),
	}
}

func (in *input) bind(key uint32, ctrl bool, action func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	b := binding{key: key, ctrl: ctrl}
	if action == nil {
		delete(in.bindings, b)
		return
	}
	in.bindings[b] = action
}

func (in *input) ctrlHeld() bool {
	return in.held[common.KeyLeftControl] || in.held[common.KeyRightControl]
}

func (in *input) shiftHeld() bool {
	return in.held[common.KeyLeftShift] || in.held[common.KeyRightShift]
}

// keyDown records the key and runs its shortcut. Auto-repeat of a held key does not run the
// shortcut again. The action runs without the lock so it may rebind keys or post work.
func (in *input) keyDown(key uint32) {
	in.mu.Lock()
	var action func()
	if !in.held[key] {
		action = in.bindings[binding{key: key, ctrl: in.ctrlHeld()}]
	}
	in.held[key] = true
	in.mu.Unlock()

	if action != nil {
		action()
	}
}

func (in *input) keyUp(key uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.held, key)
}

func (in *input) middleDown(x, y int32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.dragging = true
	in.panning = in.shiftHeld()
	in.lastX, in.lastY = x, y
}

func (in *input) middleUp(_, _ int32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.dragging = false
	in.panning = false
}

func (in *input) mouseMove(x, y int32) {
	in.mu.Lock()
	if !in.dragging {
		in.mu.Unlock()
		return
	}
	dx, dy := float32(x-in.lastX), float32(y-in.lastY)
	in.lastX, in.lastY = x, y
	if in.panning {
		in.panDX += dx
		in.panDY += dy
		in.mu.Unlock()
		return
	}
	in.mu.Unlock()

	if ctrl := in.controller(); ctrl != nil {
		ctrl.Orbit(dx, dy)
	}
}

func (in *input) scroll(delta float32) {
	if ctrl := in.controller(); ctrl != nil {
		ctrl.Zoom(delta)
	}
}

// tick applies held movement keys and the pan accumulated since the last tick. Movement is
// suspended while a control key is held so shortcuts such as Ctrl+S do not move the camera.
func (in *input) tick(dt float32) {
	in.mu.Lock()
	var forward, right, up float32
	if !in.ctrlHeld() {
		forward = axis(in.held, common.KeyW, common.KeyS)
		right = axis(in.held, common.KeyD, common.KeyA)
		up = axis(in.held, common.KeyE, common.KeyQ)
	}
	panDX, panDY := in.panDX, in.panDY
	in.panDX, in.panDY = 0, 0
	in.mu.Unlock()

	ctrl := in.controller()
	if ctrl == nil {
		return
	}
	if forward != 0 || right != 0 || up != 0 {
		ctrl.Move(forward, right, up, dt)
	}
	if panDX != 0 || panDY != 0 {
		ctrl.Pan(panDX, panDY, dt)
	}
}

func axis(held map[uint32]bool, positive, negative uint32) float32 {
	var v float32
	if held[positive] {
		v++
	}
	if held[negative] {
		v--
	}
	return v
}
