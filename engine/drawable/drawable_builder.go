package drawable

import "github.com/Carmen-Shannon/oxy-projector/common"

// DrawableBuilderOption is a functional option for configuring a Drawable during construction.
type DrawableBuilderOption func(*drawableImpl)

// WithID sets the id of the Drawable. Used when restoring a saved project; the allocator is advanced past it.
//
// Parameters:
//   - id: the persisted id
//
// Returns:
//   - DrawableBuilderOption: functional option to set the id
func WithID(id uint64) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.id = id
	}
}

// WithName sets the display name of the Drawable.
//
// Parameters:
//   - name: the display name
//
// Returns:
//   - DrawableBuilderOption: functional option to set the name
func WithName(name string) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.name = name
	}
}

// WithPosition sets the initial world position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - DrawableBuilderOption: functional option to set the position
func WithPosition(p common.Vec3) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.position = p
	}
}

// WithRotation sets the initial orientation from Euler angles in degrees.
//
// Parameters:
//   - x, y, z: rotation around each axis in degrees
//
// Returns:
//   - DrawableBuilderOption: functional option to set the rotation
func WithRotation(x, y, z float32) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.rotation = common.QuatFromEuler(x, y, z)
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - s: the scale
//
// Returns:
//   - DrawableBuilderOption: functional option to set the scale
func WithScale(s common.Vec3) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.scale = s
	}
}

// WithColor sets the base colour.
//
// Parameters:
//   - c: linear RGB in [0,1]
//
// Returns:
//   - DrawableBuilderOption: functional option to set the colour
func WithColor(c common.Vec3) DrawableBuilderOption {
	return func(d *drawableImpl) {
		for i := range c {
			d.color[i] = common.Clamp(c[i], 0, 1)
		}
	}
}

// WithVisible sets whether the Drawable is rendered.
//
// Parameters:
//   - v: true to render
//
// Returns:
//   - DrawableBuilderOption: functional option to set visibility
func WithVisible(v bool) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.visible = v
	}
}

// WithShadows sets the cast and receive shadow flags.
//
// Parameters:
//   - cast: whether the object occludes projector light
//   - receive: whether projector shadows darken the object
//
// Returns:
//   - DrawableBuilderOption: functional option to set the shadow flags
func WithShadows(cast, receive bool) DrawableBuilderOption {
	return func(d *drawableImpl) {
		d.castShadow = cast
		d.receiveShadow = receive
	}
}
