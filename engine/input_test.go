package engine

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInput() (*input, camera.CameraController) {
	cc := camera.NewCameraController()
	return newInput(func() camera.CameraController { return cc }), cc
}

func TestBindingsRespectControl(t *testing.T) {
	in, _ := newTestInput()
	var plain, ctrl int
	in.bind(common.KeyZ, false, func() { plain++ })
	in.bind(common.KeyZ, true, func() { ctrl++ })

	in.keyDown(common.KeyZ)
	in.keyDown(common.KeyZ)
	in.keyUp(common.KeyZ)
	assert.Equal(t, 1, plain)
	assert.Zero(t, ctrl)

	in.keyDown(common.KeyLeftControl)
	in.keyDown(common.KeyZ)
	assert.Equal(t, 1, plain)
	assert.Equal(t, 1, ctrl)

	in.bind(common.KeyZ, true, nil)
	in.keyUp(common.KeyZ)
	in.keyDown(common.KeyZ)
	assert.Equal(t, 1, ctrl)
}

func TestTickMovesCamera(t *testing.T) {
	in, cc := newTestInput()
	start := cc.Position()

	in.tick(0.1)
	assert.Equal(t, start, cc.Position())

	in.keyDown(common.KeyW)
	in.tick(0.1)
	moved := cc.Position()
	assert.NotEqual(t, start, moved)
	assert.InDelta(t, cc.MoveSpeed()*0.1, moved.Sub(start).Length(), 1e-4)

	in.keyDown(common.KeyRightControl)
	in.tick(0.1)
	assert.Equal(t, moved, cc.Position())

	in.keyUp(common.KeyRightControl)
	in.keyUp(common.KeyW)
	in.keyDown(common.KeyE)
	in.tick(0.1)
	assert.Greater(t, cc.Position()[1], moved[1])
}

func TestMiddleDragOrbits(t *testing.T) {
	in, cc := newTestInput()
	azimuth := cc.Azimuth()

	in.mouseMove(50, 50)
	assert.Equal(t, azimuth, cc.Azimuth())

	in.middleDown(100, 100)
	in.mouseMove(110, 100)
	assert.InDelta(t, azimuth-10*cc.RotateSpeed(), cc.Azimuth(), 1e-4)

	in.middleUp(110, 100)
	in.mouseMove(200, 100)
	assert.InDelta(t, azimuth-10*cc.RotateSpeed(), cc.Azimuth(), 1e-4)
}

func TestShiftDragPans(t *testing.T) {
	in, cc := newTestInput()
	azimuth := cc.Azimuth()
	target := cc.Target()

	in.keyDown(common.KeyLeftShift)
	in.middleDown(0, 0)
	in.mouseMove(20, 0)
	assert.Equal(t, azimuth, cc.Azimuth())
	assert.Equal(t, target, cc.Target())

	in.tick(1)
	assert.NotEqual(t, target, cc.Target())
	assert.Equal(t, azimuth, cc.Azimuth())

	panned := cc.Target()
	in.tick(1)
	assert.Equal(t, panned, cc.Target())
}

func TestScrollZooms(t *testing.T) {
	in, cc := newTestInput()
	before := cc.Distance()
	in.scroll(1)
	require.Less(t, cc.Distance(), before)
	assert.InDelta(t, before-cc.ZoomSpeed(), cc.Distance(), 1e-4)
}

func TestMissingControllerIsIgnored(t *testing.T) {
	in := newInput(func() camera.CameraController { return nil })
	in.keyDown(common.KeyW)
	in.middleDown(0, 0)
	in.mouseMove(5, 5)
	in.scroll(1)
	in.tick(0.1)
}
