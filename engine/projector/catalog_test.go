package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalog(t *testing.T) {
	assert.Len(t, Lenses(), 31)
	assert.Len(t, Models(), 23)
	assert.Equal(t, []string{"Barco", "Epson", "Optoma", "Panasonic"}, Brands())

	for _, m := range Models() {
		_, ok := LookupLens(m.DefaultLens)
		assert.True(t, ok, "%s default lens %s", m.ID, m.DefaultLens)
		assert.Greater(t, m.Aspect, float32(0), m.ID)
	}
	for _, l := range Lenses() {
		assert.Greater(t, l.ThrowMin, float32(0), l.ID)
		assert.GreaterOrEqual(t, l.ThrowMax, l.ThrowMin, l.ID)
	}
}

func TestLookup(t *testing.T) {
	l, ok := LookupLens(testLens)
	require.True(t, ok)
	assert.Equal(t, "ET-D3LEW10", l.Name)
	assert.InDelta(t, 1.01, l.ThrowMin, 1e-6)
	assert.InDelta(t, 1.3, l.ThrowMax, 1e-6)

	m, ok := LookupModel(testModel)
	require.True(t, ok)
	assert.Equal(t, 10000, m.Lumens)
	assert.Equal(t, [2]int{5120, 3200}, m.ResolutionPixels)

	_, ok = LookupModel("nope")
	assert.False(t, ok)
}

func TestLookupModelReturnsCopy(t *testing.T) {
	m, _ := LookupModel(testModel)
	require.NotEmpty(t, m.CompatibleLenses)
	m.CompatibleLenses[0] = "mutated"

	again, _ := LookupModel(testModel)
	assert.NotEqual(t, "mutated", again.CompatibleLenses[0])
}

func TestFilterByBrand(t *testing.T) {
	models := ModelsByBrand("Panasonic")
	assert.Len(t, models, 7)
	for _, m := range models {
		assert.Equal(t, "Panasonic", m.Brand)
	}
	for _, l := range LensesByBrand("Epson") {
		assert.Equal(t, "Epson", l.Brand)
	}
	assert.Empty(t, ModelsByBrand("Acme"))
}

func TestCompatibleLenses(t *testing.T) {
	lenses, err := CompatibleLenses(testModel)
	require.NoError(t, err)
	require.NotEmpty(t, lenses)
	assert.Equal(t, "panasonic_et_d3leu100", lenses[0].ID)

	_, err = CompatibleLenses("nope")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestParseCatalogRejectsBadData(t *testing.T) {
	lens := []byte("lenses:\n- id: a\n  throw_min: 1\n  throw_max: 2\n")

	tests := []struct {
		name   string
		lenses []byte
		models []byte
	}{
		{"zero throw", []byte("lenses:\n- id: a\n  throw_min: 0\n  throw_max: 1\n"), []byte("projectors: []\n")},
		{"inverted throw", []byte("lenses:\n- id: a\n  throw_min: 2\n  throw_max: 1\n"), []byte("projectors: []\n")},
		{"duplicate lens", []byte("lenses:\n- id: a\n  throw_min: 1\n  throw_max: 1\n- id: a\n  throw_min: 1\n  throw_max: 1\n"), []byte("projectors: []\n")},
		{"missing default lens", lens, []byte("projectors:\n- id: p\n  aspect: 1.6\n  default_lens: b\n")},
		{"zero aspect", lens, []byte("projectors:\n- id: p\n  aspect: 0\n  default_lens: a\n")},
		{"malformed", []byte("lenses: [\n"), []byte("projectors: []\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog(tt.lenses, tt.models)
			assert.Error(t, err)
		})
	}

	c, err := parseCatalog(lens, []byte("projectors:\n- id: p\n  aspect: 1.6\n  default_lens: a\n"))
	require.NoError(t, err)
	assert.Len(t, c.models, 1)
}
