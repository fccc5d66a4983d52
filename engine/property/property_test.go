package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, p := range All() {
		got, err := Parse(p.String())
		require.NoError(t, err, p.String())
		assert.Equal(t, p, got)
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("focus_distance")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestTextMarshaling(t *testing.T) {
	b, err := ThrowRatio.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "throw_ratio", string(b))

	var p Property
	require.NoError(t, p.UnmarshalText([]byte("corner_pin_br_y")))
	assert.Equal(t, CornerPinBRY, p)

	assert.Error(t, p.UnmarshalText([]byte("nope")))
	_, err = Property(-1).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestBoolConversion(t *testing.T) {
	assert.True(t, Bool(1))
	assert.True(t, Bool(0.5))
	assert.False(t, Bool(0.49))
	assert.Equal(t, float32(1), Float(true))
	assert.Equal(t, float32(0), Float(false))
}

func TestCornerBlocksAreContiguous(t *testing.T) {
	assert.Equal(t, KeystoneTLX+7, KeystoneBRY)
	assert.Equal(t, CornerPinTLX+7, CornerPinBRY)
	assert.Equal(t, SoftEdgeL+3, SoftEdgeB)
}
