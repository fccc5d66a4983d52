package projector

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed assets/lenses.yaml
var lensCatalogSource []byte

//go:embed assets/projectors.yaml
var modelCatalogSource []byte

// Lens is an immutable lens specification from the catalog.
type Lens struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Brand       string  `yaml:"brand"`
	Series      string  `yaml:"series"`
	ThrowMin    float32 `yaml:"throw_min"`
	ThrowMax    float32 `yaml:"throw_max"`
	Fixed       bool    `yaml:"fixed"`
	ShiftH      float32 `yaml:"shift_h"` // percent of frame width
	ShiftV      float32 `yaml:"shift_v"` // percent of frame height
	Description string  `yaml:"description"`
}

// Model is an immutable projector body specification from the catalog.
type Model struct {
	ID               string     `yaml:"id"`
	Name             string     `yaml:"name"`
	Brand            string     `yaml:"brand"`
	Series           string     `yaml:"series"`
	Lumens           int        `yaml:"lumens"`
	Resolution       string     `yaml:"resolution"`
	ResolutionPixels [2]int     `yaml:"resolution_pixels"`
	Aspect           float32    `yaml:"aspect"`
	ChipSize         string     `yaml:"chip_size"`
	Type             string     `yaml:"type"`
	Contrast         string     `yaml:"contrast"`
	Weight           float32    `yaml:"weight"`     // kg
	Dimensions       [3]float32 `yaml:"dimensions"` // mm, W x H x D
	DefaultLens      string     `yaml:"default_lens"`
	CompatibleLenses []string   `yaml:"compatible_lenses"`
}

type catalog struct {
	lenses     map[string]Lens
	lensOrder  []string
	models     map[string]Model
	modelOrder []string
}

var (
	catalogOnce sync.Once
	loaded      *catalog
)

func defaultCatalog() *catalog {
	catalogOnce.Do(func() {
		c, err := parseCatalog(lensCatalogSource, modelCatalogSource)
		if err != nil {
			panic(fmt.Sprintf("projector: failed to load embedded catalog: %v", err))
		}
		loaded = c
	})
	return loaded
}

func parseCatalog(lensSrc, modelSrc []byte) (*catalog, error) {
	var lensDoc struct {
		Lenses []Lens `yaml:"lenses"`
	}
	if err := yaml.Unmarshal(lensSrc, &lensDoc); err != nil {
		return nil, fmt.Errorf("parse lenses: %w", err)
	}
	var modelDoc struct {
		Projectors []Model `yaml:"projectors"`
	}
	if err := yaml.Unmarshal(modelSrc, &modelDoc); err != nil {
		return nil, fmt.Errorf("parse projectors: %w", err)
	}

	c := &catalog{
		lenses: make(map[string]Lens, len(lensDoc.Lenses)),
		models: make(map[string]Model, len(modelDoc.Projectors)),
	}
	for _, l := range lensDoc.Lenses {
		if !(l.ThrowMin > 0) || l.ThrowMax < l.ThrowMin {
			return nil, fmt.Errorf("lens %s: invalid throw range [%v, %v]", l.ID, l.ThrowMin, l.ThrowMax)
		}
		if l.ShiftH < 0 || l.ShiftV < 0 {
			return nil, fmt.Errorf("lens %s: negative shift", l.ID)
		}
		if _, dup := c.lenses[l.ID]; dup {
			return nil, fmt.Errorf("lens %s: duplicate id", l.ID)
		}
		c.lenses[l.ID] = l
		c.lensOrder = append(c.lensOrder, l.ID)
	}
	for _, m := range modelDoc.Projectors {
		if !(m.Aspect > 0) {
			return nil, fmt.Errorf("projector %s: invalid aspect %v", m.ID, m.Aspect)
		}
		if _, ok := c.lenses[m.DefaultLens]; !ok {
			return nil, fmt.Errorf("projector %s: %w %q", m.ID, ErrUnknownLens, m.DefaultLens)
		}
		for _, id := range m.CompatibleLenses {
			if _, ok := c.lenses[id]; !ok {
				return nil, fmt.Errorf("projector %s: %w %q", m.ID, ErrUnknownLens, id)
			}
		}
		if _, dup := c.models[m.ID]; dup {
			return nil, fmt.Errorf("projector %s: duplicate id", m.ID)
		}
		c.models[m.ID] = m
		c.modelOrder = append(c.modelOrder, m.ID)
	}
	return c, nil
}

// LookupLens returns the catalog entry for a lens id.
//
// Parameters:
//   - id: the lens id
//
// Returns:
//   - Lens: the lens specification
//   - bool: false when the id is unknown
func LookupLens(id string) (Lens, bool) {
	l, ok := defaultCatalog().lenses[id]
	return l, ok
}

// LookupModel returns the catalog entry for a projector model id.
//
// Parameters:
//   - id: the model id
//
// Returns:
//   - Model: the model specification
//   - bool: false when the id is unknown
func LookupModel(id string) (Model, bool) {
	m, ok := defaultCatalog().models[id]
	if ok {
		m.CompatibleLenses = slices.Clone(m.CompatibleLenses)
	}
	return m, ok
}

// Lenses returns every lens in catalog order.
func Lenses() []Lens {
	c := defaultCatalog()
	out := make([]Lens, 0, len(c.lensOrder))
	for _, id := range c.lensOrder {
		out = append(out, c.lenses[id])
	}
	return out
}

// Models returns every projector model in catalog order.
func Models() []Model {
	c := defaultCatalog()
	out := make([]Model, 0, len(c.modelOrder))
	for _, id := range c.modelOrder {
		m, _ := LookupModel(id)
		out = append(out, m)
	}
	return out
}

// LensesByBrand returns the lenses of one manufacturer in catalog order.
func LensesByBrand(brand string) []Lens {
	var out []Lens
	for _, l := range Lenses() {
		if l.Brand == brand {
			out = append(out, l)
		}
	}
	return out
}

// ModelsByBrand returns the projector models of one manufacturer in catalog order.
func ModelsByBrand(brand string) []Model {
	var out []Model
	for _, m := range Models() {
		if m.Brand == brand {
			out = append(out, m)
		}
	}
	return out
}

// Brands returns the sorted set of projector manufacturers.
func Brands() []string {
	seen := make(map[string]struct{})
	for _, m := range defaultCatalog().models {
		seen[m.Brand] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for b := range seen {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// CompatibleLenses returns the lenses a projector model accepts.
//
// Parameters:
//   - modelID: the projector model id
//
// Returns:
//   - []Lens: the compatible lenses in the model's listed order
//   - error: ErrUnknownModel when the model id is unknown
func CompatibleLenses(modelID string) ([]Lens, error) {
	m, ok := LookupModel(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	out := make([]Lens, 0, len(m.CompatibleLenses))
	for _, id := range m.CompatibleLenses {
		l, _ := LookupLens(id)
		out = append(out, l)
	}
	return out, nil
}
