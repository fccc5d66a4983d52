package drawable

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCube(t *testing.T, ids *common.IDAllocator, opts ...DrawableBuilderOption) Drawable {
	t.Helper()
	m, err := model.NewPrimitive(model.KindCube, "cube")
	require.NoError(t, err)
	d, err := NewDrawable(ids, m, opts...)
	require.NoError(t, err)
	return d
}

func TestNewDrawableDefaults(t *testing.T) {
	ids := common.NewIDAllocator()
	d := newCube(t, ids)

	assert.Equal(t, uint64(1), d.ID())
	assert.Equal(t, "cube #1", d.Name())
	assert.Equal(t, model.KindCube, d.Kind())
	assert.True(t, d.Visible())
	assert.True(t, d.CastShadow())
	assert.True(t, d.ReceiveShadow())
	assert.Equal(t, DefaultColor, d.Color())
	assert.Equal(t, common.Vec3{1, 1, 1}, d.Scale())
	assert.Equal(t, common.IdentityQuat(), d.Rotation())
	assert.Equal(t, common.IdentityMat4(), d.ModelMatrix())
}

func TestNewDrawableErrors(t *testing.T) {
	m, err := model.NewPrimitive(model.KindPlane, "p")
	require.NoError(t, err)

	_, err = NewDrawable(nil, m)
	assert.ErrorIs(t, err, ErrNoAllocator)
	_, err = NewDrawable(common.NewIDAllocator(), nil)
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestWithIDAdvancesAllocator(t *testing.T) {
	ids := common.NewIDAllocator()
	d := newCube(t, ids, WithID(7), WithName("box"))
	assert.Equal(t, uint64(7), d.ID())
	assert.Equal(t, "box", d.Name())
	assert.Equal(t, uint64(8), ids.Next())
}

func TestModelMatrixTRS(t *testing.T) {
	d := newCube(t, common.NewIDAllocator(),
		WithPosition(common.Vec3{1, 2, 3}),
		WithRotation(0, 90, 0),
		WithScale(common.Vec3{2, 1, 1}),
	)
	m := d.ModelMatrix()
	// +X scaled by 2, then rotated 90 degrees about Y onto -Z, then translated
	p := m.TransformPoint(common.Vec3{1, 0, 0})
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 1, p[2], 1e-5)

	center, radius := d.BoundingSphere()
	assert.Equal(t, common.Vec3{1, 2, 3}, center)
	assert.InDelta(t, 2*math.Sqrt(0.75), radius, 1e-5)
}

func TestSetColorClamps(t *testing.T) {
	d := newCube(t, common.NewIDAllocator())
	d.SetColor(common.Vec3{-1, 0.5, 3})
	assert.Equal(t, common.Vec3{0, 0.5, 1}, d.Color())
}

func TestSetRotationNormalizes(t *testing.T) {
	d := newCube(t, common.NewIDAllocator())
	d.SetRotation(common.Quat{W: 2})
	assert.Equal(t, common.IdentityQuat(), d.Rotation())
}

func TestPropertyTarget(t *testing.T) {
	d := newCube(t, common.NewIDAllocator())

	assert.True(t, d.Set(property.PositionY, 4))
	assert.True(t, d.Set(property.ScaleZ, 0.5))
	assert.True(t, d.Set(property.Visible, 0))
	assert.False(t, d.Set(property.ThrowRatio, 1))

	assert.Equal(t, common.Vec3{0, 4, 0}, d.Position())
	assert.Equal(t, common.Vec3{1, 1, 0.5}, d.Scale())
	assert.False(t, d.Visible())

	v, ok := d.Get(property.Visible)
	assert.True(t, ok)
	assert.Zero(t, v)
	_, ok = d.Get(property.Intensity)
	assert.False(t, ok)
}

func TestUniformLayout(t *testing.T) {
	d := newCube(t, common.NewIDAllocator(), WithPosition(common.Vec3{0, 0, 5}), WithShadows(true, false))
	u := d.Uniform()
	assert.Equal(t, 144, u.Size())
	assert.Equal(t, uint32(0), u.ReceiveShadow)

	d.SetReceiveShadow(true)
	u = d.Uniform()
	buf := u.Marshal()
	require.Len(t, buf, 144)
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(buf[14*4:])))
	assert.InDelta(t, 0.533, math.Float32frombits(binary.LittleEndian.Uint32(buf[128:])), 1e-6)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[140:]))
}

func TestReleaseIsIdempotent(t *testing.T) {
	d := newCube(t, common.NewIDAllocator())
	assert.NotPanics(t, func() {
		d.Release()
		d.Release()
	})
	assert.Nil(t, d.ObjectProvider())
}
