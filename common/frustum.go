package common

// Plane is the set of points p with Normal·p + Distance = 0.
type Plane struct {
	Normal   Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum. The positive half-space of every plane is inside.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// Frustum plane indices.
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a combined projection * view matrix
// using the Gribb/Hartmann method, adapted to the WebGPU [0, 1] depth range.
//
// Parameters:
//   - viewProj: the projection * view matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj Mat4) Frustum {
	row := func(r int) Vec4 {
		return Vec4{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFrom(r3[0]+r0[0], r3[1]+r0[1], r3[2]+r0[2], r3[3]+r0[3])
	f.Planes[FrustumRight] = planeFrom(r3[0]-r0[0], r3[1]-r0[1], r3[2]-r0[2], r3[3]-r0[3])
	f.Planes[FrustumBottom] = planeFrom(r3[0]+r1[0], r3[1]+r1[1], r3[2]+r1[2], r3[3]+r1[3])
	f.Planes[FrustumTop] = planeFrom(r3[0]-r1[0], r3[1]-r1[1], r3[2]-r1[2], r3[3]-r1[3])
	// clip z >= 0 in WebGPU, so the near plane is row 2 alone
	f.Planes[FrustumNear] = planeFrom(r2[0], r2[1], r2[2], r2[3])
	f.Planes[FrustumFar] = planeFrom(r3[0]-r2[0], r3[1]-r2[1], r3[2]-r2[2], r3[3]-r2[3])
	return f
}

func planeFrom(a, b, c, d float32) Plane {
	n := Vec3{a, b, c}
	l := n.Length()
	if l == 0 {
		return Plane{Normal: n, Distance: d}
	}
	return Plane{Normal: n.Scale(1 / l), Distance: d / l}
}

// SignedDistance returns the signed distance from p to the plane, positive on the inside.
func (p Plane) SignedDistance(v Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// IntersectsSphere reports whether a bounding sphere is at least partially inside the frustum.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false only when the sphere lies entirely outside one plane
func (f Frustum) IntersectsSphere(center Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}
