package common

import "github.com/chewxy/math32"

// Quat is a rotation quaternion with the scalar part stored last.
type Quat struct {
	X, Y, Z, W float32
}

// IdentityQuat returns the quaternion representing no rotation.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds a unit quaternion rotating angle radians around axis.
// A zero axis yields the identity.
//
// Parameters:
//   - axis: rotation axis, normalized internally
//   - angle: rotation angle in radians
//
// Returns:
//   - Quat: the rotation
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	if axis.Length() < Epsilon {
		return IdentityQuat()
	}
	a := axis.Normalize()
	s, c := math32.Sincos(angle / 2)
	return Quat{X: a[0] * s, Y: a[1] * s, Z: a[2] * s, W: c}
}

// QuatFromEuler builds a rotation from Euler angles in degrees, applied X first, then Y, then Z
// (q = qz * qy * qx).
//
// Parameters:
//   - xDeg, yDeg, zDeg: rotation around each world axis in degrees
//
// Returns:
//   - Quat: the combined rotation
func QuatFromEuler(xDeg, yDeg, zDeg float32) Quat {
	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, DegToRad(xDeg))
	qy := QuatFromAxisAngle(Vec3{0, 1, 0}, DegToRad(yDeg))
	qz := QuatFromAxisAngle(Vec3{0, 0, 1}, DegToRad(zDeg))
	return qz.Mul(qy).Mul(qx)
}

// Mul returns the Hamilton product q*o, which applies o first and then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Normalize returns q scaled to unit length. A zero quaternion becomes the identity.
func (q Quat) Normalize() Quat {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l < Epsilon {
		return IdentityQuat()
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Rotate applies q to the vector v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// BuildTRSMatrix writes translation * rotation * scale into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - pos: translation
//   - rot: rotation, expected to be unit length
//   - scale: per-axis scale
func BuildTRSMatrix(out []float32, pos Vec3, rot Quat, scale Vec3) {
	x, y, z, w := rot.X, rot.Y, rot.Z, rot.W
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = (1 - 2*(yy+zz)) * scale[0]
	out[1] = 2 * (xy + wz) * scale[0]
	out[2] = 2 * (xz - wy) * scale[0]
	out[3] = 0

	out[4] = 2 * (xy - wz) * scale[1]
	out[5] = (1 - 2*(xx+zz)) * scale[1]
	out[6] = 2 * (yz + wx) * scale[1]
	out[7] = 0

	out[8] = 2 * (xz + wy) * scale[2]
	out[9] = 2 * (yz - wx) * scale[2]
	out[10] = (1 - 2*(xx+yy)) * scale[2]
	out[11] = 0

	out[12] = pos[0]
	out[13] = pos[1]
	out[14] = pos[2]
	out[15] = 1
}
