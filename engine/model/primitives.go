package model

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Default primitive dimensions.
const (
	DefaultCubeSize       float32 = 1
	DefaultPlaneSize      float32 = 4
	DefaultSphereRadius   float32 = 1
	DefaultSphereSegments         = 32
	DefaultRadialSegments         = 32
	DefaultCylinderHeight float32 = 2
)

// NewPrimitive builds a Model for one of the standard primitive kinds at default size.
//
// Parameters:
//   - kind: the primitive to generate
//   - name: the model name
//
// Returns:
//   - Model: the generated model
//   - error: an error when kind is not a primitive
func NewPrimitive(kind Kind, name string) (Model, error) {
	var vertices []GPUVertex
	var indices []uint32
	switch kind {
	case KindCube:
		vertices, indices = Cube(DefaultCubeSize)
	case KindPlane:
		vertices, indices = Plane(DefaultPlaneSize, DefaultPlaneSize)
	case KindSphere:
		vertices, indices = Sphere(DefaultSphereRadius, DefaultSphereSegments, DefaultSphereSegments/2)
	case KindCylinder:
		vertices, indices = Cylinder(DefaultSphereRadius, DefaultCylinderHeight, DefaultRadialSegments)
	case KindCone:
		vertices, indices = Cone(DefaultSphereRadius, DefaultCylinderHeight, DefaultRadialSegments)
	default:
		return nil, fmt.Errorf("model: unknown primitive %q", kind)
	}
	return NewModel(WithName(name), WithKind(kind), WithMesh(vertices, indices)), nil
}

// ParseKind maps a persisted type name to a primitive kind.
//
// Parameters:
//   - s: the type name
//
// Returns:
//   - Kind: the kind
//   - bool: false when s names no primitive
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Cube generates an axis aligned cube centred on the origin with flat shaded faces.
//
// Parameters:
//   - size: edge length
//
// Returns:
//   - []GPUVertex: 24 vertices, four per face
//   - []uint32: 36 indices
func Cube(size float32) ([]GPUVertex, []uint32) {
	h := size / 2
	faces := []struct {
		n    [3]float32
		u, v [3]float32
	}{
		{n: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
		{n: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
		{n: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p [3]float32
			for i := range 3 {
				p[i] = (f.n[i] + c[0]*f.u[i] + c[1]*f.v[i]) * h
			}
			vertices = append(vertices, GPUVertex{Position: p, Normal: f.n})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// Plane generates a quad on the XZ plane facing +Y, centred on the origin.
//
// Parameters:
//   - width: extent along X
//   - depth: extent along Z
//
// Returns:
//   - []GPUVertex: 4 vertices
//   - []uint32: 6 indices
func Plane(width, depth float32) ([]GPUVertex, []uint32) {
	hw, hd := width/2, depth/2
	up := [3]float32{0, 1, 0}
	vertices := []GPUVertex{
		{Position: [3]float32{-hw, 0, hd}, Normal: up},
		{Position: [3]float32{hw, 0, hd}, Normal: up},
		{Position: [3]float32{hw, 0, -hd}, Normal: up},
		{Position: [3]float32{-hw, 0, -hd}, Normal: up},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// Sphere generates a UV sphere centred on the origin.
//
// Parameters:
//   - radius: sphere radius
//   - segments: longitudinal slices, at least 3
//   - rings: latitudinal stacks, at least 2
//
// Returns:
//   - []GPUVertex: (segments+1)*(rings+1) vertices
//   - []uint32: the triangle list
func Sphere(radius float32, segments, rings int) ([]GPUVertex, []uint32) {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]GPUVertex, 0, (segments+1)*(rings+1))
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		sp, cp := math32.Sincos(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			st, ct := math32.Sincos(theta)
			n := [3]float32{sp * ct, cp, -sp * st}
			vertices = append(vertices, GPUVertex{
				Position: [3]float32{n[0] * radius, n[1] * radius, n[2] * radius},
				Normal:   n,
			})
		}
	}

	stride := uint32(segments + 1)
	indices := make([]uint32, 0, segments*rings*6)
	for r := range uint32(rings) {
		for s := range uint32(segments) {
			a := r*stride + s
			b := a + stride
			if r != 0 {
				indices = append(indices, a, b, a+1)
			}
			if r != uint32(rings)-1 {
				indices = append(indices, a+1, b, b+1)
			}
		}
	}
	return vertices, indices
}

// Cylinder generates a capped cylinder along Y, centred on the origin.
//
// Parameters:
//   - radius: cylinder radius
//   - height: total height
//   - segments: radial slices, at least 3
//
// Returns:
//   - []GPUVertex: side and cap vertices
//   - []uint32: the triangle list
func Cylinder(radius, height float32, segments int) ([]GPUVertex, []uint32) {
	return frustumMesh(radius, radius, height, segments)
}

// Cone generates a cone along Y with its apex at +height/2 and a capped base at -height/2.
//
// Parameters:
//   - radius: base radius
//   - height: total height
//   - segments: radial slices, at least 3
//
// Returns:
//   - []GPUVertex: side and base vertices
//   - []uint32: the triangle list
func Cone(radius, height float32, segments int) ([]GPUVertex, []uint32) {
	return frustumMesh(radius, 0, height, segments)
}

// frustumMesh builds a truncated cone between a bottom and top radius. A zero top radius omits the top cap.
func frustumMesh(bottom, top, height float32, segments int) ([]GPUVertex, []uint32) {
	segments = max(segments, 3)
	h := height / 2
	slope := (bottom - top) / height

	var vertices []GPUVertex
	var indices []uint32

	for s := 0; s <= segments; s++ {
		theta := 2 * math32.Pi * float32(s) / float32(segments)
		st, ct := math32.Sincos(theta)
		n := normalize3([3]float32{ct, slope, -st})
		vertices = append(vertices,
			GPUVertex{Position: [3]float32{ct * bottom, -h, -st * bottom}, Normal: n},
			GPUVertex{Position: [3]float32{ct * top, h, -st * top}, Normal: n},
		)
	}
	for s := range uint32(segments) {
		a := s * 2
		indices = append(indices, a, a+2, a+1, a+1, a+2, a+3)
	}

	addCap := func(y, r, ny float32) {
		center := uint32(len(vertices))
		n := [3]float32{0, ny, 0}
		vertices = append(vertices, GPUVertex{Position: [3]float32{0, y, 0}, Normal: n})
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			st, ct := math32.Sincos(theta)
			vertices = append(vertices, GPUVertex{Position: [3]float32{ct * r, y, -st * r}, Normal: n})
		}
		for s := range uint32(segments) {
			a, b := center+1+s, center+2+s
			if ny > 0 {
				indices = append(indices, center, a, b)
			} else {
				indices = append(indices, center, b, a)
			}
		}
	}
	addCap(-h, bottom, -1)
	if top > 0 {
		addCap(h, top, 1)
	}
	return vertices, indices
}

func normalize3(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
