package common

import "github.com/chewxy/math32"

// Vec2 is a two component float32 vector.
type Vec2 [2]float32

// Corners holds one X/Y offset per image corner. Offsets are in percent (-100..100).
type Corners struct {
	TL, TR, BL, BR Vec2
}

// WarpParams is the full set of footprint corrections applied to a projected image.
// KeystoneV and KeystoneH are percentages in -50..50.
type WarpParams struct {
	KeystoneV       float32
	KeystoneH       float32
	KeystoneCorners Corners
	CornerPin       Corners
}

// WarpQuad is the displaced image footprint in projector uv space (origin bottom left, y up).
type WarpQuad struct {
	BL, BR, TR, TL Vec2
}

// CornerOffsetScale maps a corner offset of 100% to a quarter of the image.
const CornerOffsetScale float32 = 0.25

// UnitQuad is the undistorted footprint.
var UnitQuad = WarpQuad{BL: Vec2{0, 0}, BR: Vec2{1, 0}, TR: Vec2{1, 1}, TL: Vec2{0, 1}}

// Quad computes the displaced footprint for the parameters.
// Positive vertical keystone narrows the top edge and negative narrows the bottom edge, each side
// moving inward by |kv|/200. Positive horizontal keystone shortens the right edge and negative the left.
// Corner keystone and corner pin offsets are added on top, each 100% moving a corner by CornerOffsetScale.
//
// Returns:
//   - WarpQuad: the displaced corners
func (w WarpParams) Quad() WarpQuad {
	q := UnitQuad

	kv := w.KeystoneV / 200
	if kv > 0 {
		q.TL[0] += kv
		q.TR[0] -= kv
	} else if kv < 0 {
		q.BL[0] -= kv
		q.BR[0] += kv
	}

	kh := w.KeystoneH / 200
	if kh > 0 {
		q.TR[1] -= kh
		q.BR[1] += kh
	} else if kh < 0 {
		q.TL[1] += kh
		q.BL[1] -= kh
	}

	for _, c := range []Corners{w.KeystoneCorners, w.CornerPin} {
		q.TL = q.TL.add(c.TL.scale(CornerOffsetScale / 100))
		q.TR = q.TR.add(c.TR.scale(CornerOffsetScale / 100))
		q.BL = q.BL.add(c.BL.scale(CornerOffsetScale / 100))
		q.BR = q.BR.add(c.BR.scale(CornerOffsetScale / 100))
	}
	return q
}

// Forward maps normalized image coordinates (u, v) onto the quad by bilinear interpolation.
//
// Parameters:
//   - uv: image coordinates in [0,1]²
//
// Returns:
//   - Vec2: the displaced position in projector uv space
func (q WarpQuad) Forward(uv Vec2) Vec2 {
	u, v := uv[0], uv[1]
	return q.BL.scale((1 - u) * (1 - v)).
		add(q.BR.scale(u * (1 - v))).
		add(q.TR.scale(u * v)).
		add(q.TL.scale((1 - u) * v))
}

// Inverse finds the image coordinates whose Forward mapping lands on p.
// It solves the quadratic of the inverse bilinear map and prefers the root inside the unit square.
//
// Parameters:
//   - p: a position in projector uv space
//
// Returns:
//   - Vec2: the image coordinates
//   - bool: false when p has no preimage (outside a folded quad)
func (q WarpQuad) Inverse(p Vec2) (Vec2, bool) {
	e := q.BR.sub(q.BL)
	f := q.TL.sub(q.BL)
	g := q.BL.sub(q.BR).add(q.TR).sub(q.TL)
	h := p.sub(q.BL)

	k2 := cross2(g, f)
	k1 := cross2(e, f) + cross2(h, g)
	k0 := cross2(h, e)

	solveU := func(v float32) float32 {
		dx := e[0] + g[0]*v
		if math32.Abs(dx) > Epsilon {
			return (h[0] - f[0]*v) / dx
		}
		return (h[1] - f[1]*v) / (e[1] + g[1]*v)
	}

	if math32.Abs(k2) < Epsilon {
		if math32.Abs(k1) < Epsilon {
			return Vec2{}, false
		}
		v := -k0 / k1
		return Vec2{solveU(v), v}, true
	}

	disc := k1*k1 - 4*k0*k2
	if disc < 0 {
		return Vec2{}, false
	}
	disc = math32.Sqrt(disc)
	inv := 0.5 / k2
	v := (-k1 - disc) * inv
	u := solveU(v)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		v = (-k1 + disc) * inv
		u = solveU(v)
	}
	return Vec2{u, v}, true
}

func (v Vec2) add(o Vec2) Vec2 { return Vec2{v[0] + o[0], v[1] + o[1]} }
func (v Vec2) sub(o Vec2) Vec2 { return Vec2{v[0] - o[0], v[1] - o[1]} }
func (v Vec2) scale(s float32) Vec2 { return Vec2{v[0] * s, v[1] * s} }
func cross2(a, b Vec2) float32 { return a[0]*b[1] - a[1]*b[0] }
