package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroWarpIsIdentity(t *testing.T) {
	q := WarpParams{}.Quad()
	assert.Equal(t, UnitQuad, q)

	for _, p := range []Vec2{{0, 0}, {0.25, 0.75}, {0.5, 0.5}, {1, 1}, {0.9, 0.1}} {
		uv, ok := q.Inverse(p)
		require.True(t, ok)
		assert.InDelta(t, p[0], uv[0], 1e-5)
		assert.InDelta(t, p[1], uv[1], 1e-5)
	}
}

func TestVerticalKeystoneNarrowsTopEdge(t *testing.T) {
	q := WarpParams{KeystoneV: 20}.Quad()
	assert.InDelta(t, 0.1, q.TL[0], 1e-6)
	assert.InDelta(t, 0.9, q.TR[0], 1e-6)
	assert.Equal(t, UnitQuad.BL, q.BL)
	assert.Equal(t, UnitQuad.BR, q.BR)

	q = WarpParams{KeystoneV: -20}.Quad()
	assert.InDelta(t, 0.1, q.BL[0], 1e-6)
	assert.InDelta(t, 0.9, q.BR[0], 1e-6)
	assert.Equal(t, UnitQuad.TL, q.TL)
}

func TestHorizontalKeystoneShortensSideEdge(t *testing.T) {
	q := WarpParams{KeystoneH: 40}.Quad()
	assert.InDelta(t, 0.8, q.TR[1], 1e-6)
	assert.InDelta(t, 0.2, q.BR[1], 1e-6)
	assert.Equal(t, UnitQuad.TL, q.TL)

	q = WarpParams{KeystoneH: -40}.Quad()
	assert.InDelta(t, 0.8, q.TL[1], 1e-6)
	assert.InDelta(t, 0.2, q.BL[1], 1e-6)
}

func TestCornerOffsetsStack(t *testing.T) {
	w := WarpParams{
		KeystoneCorners: Corners{TL: Vec2{100, 0}},
		CornerPin:       Corners{TL: Vec2{0, -100}, BR: Vec2{-40, 40}},
	}
	q := w.Quad()
	assert.InDelta(t, 0.25, q.TL[0], 1e-6)
	assert.InDelta(t, 0.75, q.TL[1], 1e-6)
	assert.InDelta(t, 0.9, q.BR[0], 1e-6)
	assert.InDelta(t, 0.1, q.BR[1], 1e-6)
}

func TestWarpInverseUndoesForward(t *testing.T) {
	q := WarpParams{
		KeystoneV:       15,
		KeystoneH:       -10,
		KeystoneCorners: Corners{TR: Vec2{-20, 10}},
		CornerPin:       Corners{BL: Vec2{12, 8}},
	}.Quad()

	for _, uv := range []Vec2{{0.1, 0.1}, {0.5, 0.5}, {0.8, 0.3}, {0.2, 0.9}} {
		p := q.Forward(uv)
		back, ok := q.Inverse(p)
		require.True(t, ok)
		assert.InDelta(t, uv[0], back[0], 1e-4)
		assert.InDelta(t, uv[1], back[1], 1e-4)
	}
}

func TestWarpInverseOutsideFootprint(t *testing.T) {
	q := WarpParams{KeystoneV: 40}.Quad()
	uv, ok := q.Inverse(Vec2{0.05, 0.95})
	require.True(t, ok)
	outside := uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1
	assert.True(t, outside, "uv %v", uv)
}
