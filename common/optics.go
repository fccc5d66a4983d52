package common

import (
	"errors"

	"github.com/chewxy/math32"
)

var (
	// ErrInvalidThrowRatio is returned when a throw ratio is zero or negative.
	ErrInvalidThrowRatio = errors.New("optics: throw ratio must be positive")
	// ErrInvalidAspect is returned when an aspect ratio is zero or negative.
	ErrInvalidAspect = errors.New("optics: aspect ratio must be positive")
)

// ThrowRatioToVerticalFOV converts a lens throw ratio (distance / image width) to a vertical
// field of view. The horizontal half angle is atan(1/(2r)); the vertical half angle follows
// by dividing its tangent by the aspect ratio.
//
// Parameters:
//   - throwRatio: distance from lens to screen divided by image width
//   - aspect: image width divided by image height
//
// Returns:
//   - float32: vertical field of view in degrees
//   - error: ErrInvalidThrowRatio or ErrInvalidAspect for non-positive inputs
func ThrowRatioToVerticalFOV(throwRatio, aspect float32) (float32, error) {
	if !(throwRatio > 0) {
		return 0, ErrInvalidThrowRatio
	}
	if !(aspect > 0) {
		return 0, ErrInvalidAspect
	}
	halfH := math32.Atan(1 / (2 * throwRatio))
	halfV := math32.Atan(math32.Tan(halfH) / aspect)
	return RadToDeg(2 * halfV), nil
}

// VerticalFOVToThrowRatio is the inverse of ThrowRatioToVerticalFOV.
//
// Parameters:
//   - fovDegrees: vertical field of view in degrees
//   - aspect: image width divided by image height
//
// Returns:
//   - float32: the throw ratio
func VerticalFOVToThrowRatio(fovDegrees, aspect float32) float32 {
	halfV := DegToRad(fovDegrees) / 2
	halfH := math32.Atan(math32.Tan(halfV) * aspect)
	return 1 / (2 * math32.Tan(halfH))
}

// BuildProjectionMatrix writes a perspective matrix for the given vertical field of view into out,
// then applies lens shift as an off-axis offset. When either shift is nonzero, the column-major
// elements [8] and [9] (third column, x and y rows) are overwritten with 2*shiftH and 2*shiftV.
// With both shifts zero the result is exactly Perspective.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovDegrees: vertical field of view in degrees
//   - aspect: image aspect ratio
//   - near: near plane distance
//   - far: far plane distance
//   - shiftH: horizontal lens shift as a fraction of the frame (-1..1)
//   - shiftV: vertical lens shift as a fraction of the frame (-1..1)
func BuildProjectionMatrix(out []float32, fovDegrees, aspect, near, far, shiftH, shiftV float32) {
	Perspective(out, DegToRad(fovDegrees), aspect, near, far)
	if shiftH != 0 || shiftV != 0 {
		out[8] = 2 * shiftH
		out[9] = 2 * shiftV
	}
}

// ProjectionSize returns the image width and height in meters for a throw ratio at a given distance.
//
// Parameters:
//   - throwRatio: lens throw ratio
//   - distance: lens to screen distance in meters
//   - aspect: image aspect ratio
//
// Returns:
//   - width: image width in meters
//   - height: image height in meters
func ProjectionSize(throwRatio, distance, aspect float32) (width, height float32) {
	width = distance / throwRatio
	height = width / aspect
	return width, height
}

// ThrowDistance returns the lens to screen distance needed to fill the given width.
func ThrowDistance(throwRatio, width float32) float32 {
	return throwRatio * width
}

// Illuminance returns the incident light in lux for a projector of the given brightness spread over area square meters.
// Non-positive areas yield zero.
//
// Parameters:
//   - lumens: projector light output
//   - area: image area in square meters
//   - gain: screen gain (1.0 for matte white)
//
// Returns:
//   - float32: illuminance in lux
func Illuminance(lumens, area, gain float32) float32 {
	if area <= 0 {
		return 0
	}
	return lumens * gain / area
}

// Luminance approximates the reflected luminance in cd/m² of a Lambertian screen.
func Luminance(illuminance, gain float32) float32 {
	return illuminance * gain / math32.Pi
}

// FrustumQuad holds the four corners of a frustum cross-section.
type FrustumQuad struct {
	BL, BR, TR, TL Vec3
}

// FrustumCorners returns the near and far cross-sections of a (possibly shifted) projector frustum in view space.
// The frustum looks down -Z. Shift offsets both planes by a fraction of their half extents times two.
//
// Parameters:
//   - fovDegrees: vertical field of view
//   - aspect: image aspect ratio
//   - near: near plane distance
//   - far: far plane distance
//   - shiftH: horizontal lens shift
//   - shiftV: vertical lens shift
//
// Returns:
//   - nearQuad: the near plane corners
//   - farQuad: the far plane corners
func FrustumCorners(fovDegrees, aspect, near, far, shiftH, shiftV float32) (nearQuad, farQuad FrustumQuad) {
	t := math32.Tan(DegToRad(fovDegrees) / 2)
	quad := func(d float32) FrustumQuad {
		hv := d * t
		hh := hv * aspect
		l, r := hh*(-1+2*shiftH), hh*(1+2*shiftH)
		b, tp := hv*(-1+2*shiftV), hv*(1+2*shiftV)
		return FrustumQuad{
			BL: Vec3{l, b, -d},
			BR: Vec3{r, b, -d},
			TR: Vec3{r, tp, -d},
			TL: Vec3{l, tp, -d},
		}
	}
	return quad(near), quad(far)
}
