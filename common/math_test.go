package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func assertMatInDelta(t *testing.T, want, got Mat4, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "element %d", i)
	}
}

func TestMulIdentity(t *testing.T) {
	var m Mat4
	for i := range m {
		m[i] = float32(i + 1)
	}
	assert.Equal(t, m, IdentityMat4().Mul(m))
	assert.Equal(t, m, m.Mul(IdentityMat4()))
}

func TestInverse(t *testing.T) {
	var m Mat4
	BuildTRSMatrix(m[:], Vec3{1, 2, 3}, QuatFromEuler(10, 20, 30), Vec3{2, 1, 0.5})
	inv, ok := m.Inverse()
	assert.True(t, ok)
	assertMatInDelta(t, IdentityMat4(), m.Mul(inv), 1e-5)

	var zero Mat4
	_, ok = zero.Inverse()
	assert.False(t, ok)
}

func TestLookAtMapsTargetToNegativeZ(t *testing.T) {
	var view Mat4
	LookAt(view[:], Vec3{0, 2.5, 10}, Vec3{0, 2.5, 2}, Vec3{0, 1, 0})
	p := view.TransformPoint(Vec3{0, 2.5, 2})
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, -8, p[2], 1e-5)
}

func TestLookAtDegenerateHasNoNaN(t *testing.T) {
	var view Mat4
	LookAt(view[:], Vec3{1, 1, 1}, Vec3{1, 1, 1}, Vec3{0, 1, 0})
	for i, v := range view {
		assert.False(t, math32.IsNaN(v), "element %d", i)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	var proj Mat4
	Perspective(proj[:], DegToRad(60), 1.5, 0.1, 100)
	n := proj.TransformPoint(Vec3{0, 0, -0.1})
	f := proj.TransformPoint(Vec3{0, 0, -100})
	assert.InDelta(t, 0, n[2], 1e-5)
	assert.InDelta(t, 1, f[2], 1e-5)
}

func TestNormalMatrixUndoesNonUniformScale(t *testing.T) {
	var model Mat4
	BuildTRSMatrix(model[:], Vec3{5, 0, 0}, IdentityQuat(), Vec3{2, 1, 1})
	nm := NormalMatrix(model)
	assert.InDelta(t, 0.5, nm[0], 1e-6)
	assert.InDelta(t, 1, nm[5], 1e-6)
	assert.Equal(t, float32(0), nm[12])
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math32.Pi/2)
	v := q.Rotate(Vec3{1, 0, 0})
	assert.InDelta(t, 0, v[0], 1e-6)
	assert.InDelta(t, -1, v[2], 1e-6)

	var m Mat4
	BuildTRSMatrix(m[:], Vec3{}, q, Vec3{1, 1, 1})
	p := m.TransformPoint(Vec3{1, 0, 0})
	assert.InDelta(t, v[0], p[0], 1e-6)
	assert.InDelta(t, v[2], p[2], 1e-6)
}

func TestClampLerpSmoothstep(t *testing.T) {
	assert.Equal(t, float32(2), Clamp[float32](5, -2, 2))
	assert.Equal(t, -2, Clamp(-9, -2, 2))
	assert.Equal(t, float32(5), Lerp(0, 10, 0.5))
	assert.Equal(t, float32(0.5), Smoothstep(0, 1, 0.5))
	assert.Equal(t, float32(1), Smoothstep(0, 1, 3))
}

func TestFrustumIntersectsSphere(t *testing.T) {
	var proj, view Mat4
	Perspective(proj[:], DegToRad(60), 1, 0.1, 50)
	LookAt(view[:], Vec3{0, 0, 0}, Vec3{0, 0, -1}, Vec3{0, 1, 0})
	f := ExtractFrustumFromMatrix(proj.Mul(view))

	assert.True(t, f.IntersectsSphere(Vec3{0, 0, -10}, 1))
	assert.False(t, f.IntersectsSphere(Vec3{0, 0, 10}, 1))
	assert.False(t, f.IntersectsSphere(Vec3{0, 0, -80}, 1))
	assert.True(t, f.IntersectsSphere(Vec3{0, 0, -51}, 2))
}

func TestIDAllocator(t *testing.T) {
	a := NewIDAllocator()
	assert.Equal(t, uint64(1), a.Next())
	assert.Equal(t, uint64(2), a.Next())
	a.Observe(10)
	a.Observe(4)
	assert.Equal(t, uint64(11), a.Next())
	assert.Equal(t, uint64(11), a.Last())
}
