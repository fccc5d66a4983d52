package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrowRatioFOVRoundTrip(t *testing.T) {
	for _, r := range []float32{0.36, 0.8, 1.0, 1.3, 2.41, 5.5, 9.2} {
		for _, a := range []float32{1.0, 4.0 / 3.0, 1.6, 16.0 / 9.0, 2.35} {
			fov, err := ThrowRatioToVerticalFOV(r, a)
			require.NoError(t, err)
			assert.InDelta(t, r, VerticalFOVToThrowRatio(fov, a), float64(1e-3*r), "r=%v a=%v", r, a)
		}
	}
}

func TestThrowRatioToVerticalFOV(t *testing.T) {
	fov, err := ThrowRatioToVerticalFOV(1.3, 1.6)
	require.NoError(t, err)
	assert.InDelta(t, 27.03, fov, 0.5)

	fov, err = ThrowRatioToVerticalFOV(1.3, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 42.08, fov, 0.05)
}

func TestThrowRatioToVerticalFOVRejectsInvalid(t *testing.T) {
	_, err := ThrowRatioToVerticalFOV(0, 1.6)
	assert.ErrorIs(t, err, ErrInvalidThrowRatio)

	_, err = ThrowRatioToVerticalFOV(-2, 1.6)
	assert.ErrorIs(t, err, ErrInvalidThrowRatio)

	_, err = ThrowRatioToVerticalFOV(1.2, 0)
	assert.ErrorIs(t, err, ErrInvalidAspect)
}

func TestBuildProjectionMatrixZeroShiftMatchesPerspective(t *testing.T) {
	var shifted, plain Mat4
	BuildProjectionMatrix(shifted[:], 33.4, 1.6, 0.1, 200, 0, 0)
	Perspective(plain[:], DegToRad(33.4), 1.6, 0.1, 200)
	assert.Equal(t, plain, shifted)
}

func TestBuildProjectionMatrixShiftOverridesOffAxisTerms(t *testing.T) {
	var m, plain Mat4
	BuildProjectionMatrix(m[:], 30, 1.6, 0.1, 200, 0.1, -0.25)
	BuildProjectionMatrix(plain[:], 30, 1.6, 0.1, 200, 0, 0)

	assert.Equal(t, float32(0.2), m[8])
	assert.Equal(t, float32(-0.5), m[9])
	for i := range m {
		if i == 8 || i == 9 {
			continue
		}
		assert.Equal(t, plain[i], m[i], "element %d", i)
	}
}

func TestBuildProjectionMatrixOnlyOneShiftSetsBoth(t *testing.T) {
	var m Mat4
	BuildProjectionMatrix(m[:], 30, 1.6, 0.1, 200, 0.3, 0)
	assert.Equal(t, float32(0.6), m[8])
	assert.Equal(t, float32(0), m[9])
}

func TestProjectionSizeAndDistance(t *testing.T) {
	w, h := ProjectionSize(1.5, 6, 1.6)
	assert.InDelta(t, 4.0, w, 1e-5)
	assert.InDelta(t, 2.5, h, 1e-5)
	assert.InDelta(t, 6.0, ThrowDistance(1.5, 4), 1e-5)
}

func TestIlluminanceAndLuminance(t *testing.T) {
	assert.Equal(t, float32(0), Illuminance(10000, 0, 1))
	assert.InDelta(t, 1000, Illuminance(10000, 10, 1), 1e-3)
	assert.InDelta(t, 318.31, Luminance(1000, 1), 0.01)
}

func TestFrustumCornersShift(t *testing.T) {
	near, far := FrustumCorners(90, 1, 1, 10, 0, 0)
	assert.InDelta(t, -1, near.BL[0], 1e-5)
	assert.InDelta(t, 1, near.TR[1], 1e-5)
	assert.Equal(t, float32(-10), far.TL[2])

	shiftedNear, _ := FrustumCorners(90, 1, 1, 10, 0.5, 0)
	assert.InDelta(t, 0, shiftedNear.BL[0], 1e-5)
	assert.InDelta(t, 2, shiftedNear.BR[0], 1e-5)
}
