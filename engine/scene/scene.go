package scene

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
)

// Grid layout.
const (
	GridHalfExtent = 50
	GridLineCount  = (2*GridHalfExtent + 1) * 2
)

// Helper line colours.
var (
	GridColor           = [3]float32{0.3, 0.3, 0.3}
	GridAxisXColor      = [3]float32{1, 0, 0}
	GridAxisZColor      = [3]float32{0, 0, 1}
	FrustumActiveColor  = [3]float32{1, 0.8, 0.2}
	FrustumPassiveColor = [3]float32{0.45, 0.45, 0.45}
)

// Updater is advanced once per frame by Update. Timelines attach through this interface.
type Updater interface {
	Update(dt float32)
}

// Stats is a summary of the scene contents.
type Stats struct {
	Objects          int
	Projectors       int
	Cameras          int
	Lights           int
	ActiveProjectors int
	VisibleObjects   int
}

// Scene owns the drawables, projectors and lights of a session together with the viewer camera
// and the id allocator that numbers them. Lists keep insertion order.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// IDs returns the allocator every entity in this scene takes its id from.
	//
	// Returns:
	//   - *common.IDAllocator: the allocator
	IDs() *common.IDAllocator

	// Camera returns the viewer camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// AddDrawable appends a drawable.
	//
	// Parameters:
	//   - d: the drawable
	AddDrawable(d drawable.Drawable)

	// RemoveDrawable removes a drawable by id and releases its GPU resources.
	//
	// Parameters:
	//   - id: the drawable id
	//
	// Returns:
	//   - bool: false when no drawable has that id
	RemoveDrawable(id uint64) bool

	// Drawables returns all drawables in insertion order.
	//
	// Returns:
	//   - []drawable.Drawable: a copy of the list
	Drawables() []drawable.Drawable

	// VisibleObjects returns the drawables whose visible flag is set, in insertion order.
	//
	// Returns:
	//   - []drawable.Drawable: the visible drawables
	VisibleObjects() []drawable.Drawable

	// AddProjector appends a projector.
	//
	// Parameters:
	//   - p: the projector
	AddProjector(p projector.Projector)

	// RemoveProjector removes a projector by id and releases its texture.
	//
	// Parameters:
	//   - id: the projector id
	//
	// Returns:
	//   - bool: false when no projector has that id
	RemoveProjector(id uint64) bool

	// Projectors returns all projectors in insertion order.
	//
	// Returns:
	//   - []projector.Projector: a copy of the list
	Projectors() []projector.Projector

	// ActiveProjectors returns the projectors whose active flag is set, in insertion order.
	// The list is not truncated; the shadow manager decides which get slots.
	//
	// Returns:
	//   - []projector.Projector: the active projectors
	ActiveProjectors() []projector.Projector

	// AddLight appends a light, assigning it an id when it has none.
	//
	// Parameters:
	//   - l: the light
	AddLight(l light.Light)

	// RemoveLight removes a light by id.
	//
	// Parameters:
	//   - id: the light id
	//
	// Returns:
	//   - bool: false when no light has that id
	RemoveLight(id uint64) bool

	// Lights returns all lights in insertion order.
	//
	// Returns:
	//   - []light.Light: a copy of the list
	Lights() []light.Light

	// Target resolves any entity id to its property target.
	//
	// Parameters:
	//   - id: the entity id
	//
	// Returns:
	//   - property.Target: the entity
	//   - bool: false when no entity has that id
	Target(id uint64) (property.Target, bool)

	// Lighting returns the scene-wide base lighting.
	//
	// Returns:
	//   - light.Lighting: the lighting
	Lighting() light.Lighting

	// SetLighting replaces the base lighting. Values are normalized on store.
	//
	// Parameters:
	//   - l: the new lighting
	SetLighting(l light.Lighting)

	ShowHelpers() bool
	ShowGrid() bool
	ShowFrustums() bool
	ToggleHelpers()
	ToggleGrid()
	ToggleFrustums()
	SetHelpers(helpers, grid, frustums bool)

	// Stats summarizes the scene contents.
	//
	// Returns:
	//   - Stats: the counts
	Stats() Stats

	// GridLines returns the reference grid as line list vertices.
	// Axis lines through the origin are red for x and blue for z.
	//
	// Returns:
	//   - []model.GPULineVertex: two vertices per line, GridLineCount lines
	GridLines() []model.GPULineVertex

	// FrustumLines returns the 12 edges of a projector's frustum from the near plane to its target distance.
	//
	// Parameters:
	//   - p: the projector
	//
	// Returns:
	//   - []model.GPULineVertex: 24 vertices
	FrustumLines(p projector.Projector) []model.GPULineVertex

	// HelperLines returns the grid and frustum lines enabled by the helper toggles.
	//
	// Returns:
	//   - []model.GPULineVertex: the line list, empty when helpers are hidden
	HelperLines() []model.GPULineVertex

	// Attach registers an Updater advanced by Update.
	//
	// Parameters:
	//   - u: the updater
	Attach(u Updater)

	// Detach removes a previously attached Updater.
	//
	// Parameters:
	//   - u: the updater
	Detach(u Updater)

	// Update advances attached updaters and the camera.
	//
	// Parameters:
	//   - dt: frame time in seconds
	Update(dt float32)

	// Clear removes all drawables, projectors and lights, releasing their GPU resources.
	// Lighting, toggles, the camera and the id allocator are kept.
	Clear()

	// Release frees every GPU resource owned by the scene. Subsequent calls do nothing.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name string
	ids  *common.IDAllocator
	cam  camera.Camera

	drawables  []drawable.Drawable
	projectors []projector.Projector
	lights     []light.Light
	updaters   []Updater

	lighting     light.Lighting
	showHelpers  bool
	showGrid     bool
	showFrustums bool

	grid     []model.GPULineVertex
	released bool
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates an empty scene with default lighting and all helpers shown.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:           &sync.RWMutex{},
		name:         name,
		ids:          common.NewIDAllocator(),
		lighting:     light.DefaultLighting(),
		showHelpers:  true,
		showGrid:     true,
		showFrustums: true,
	}
	for _, option := range options {
		option(s)
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	s.grid = buildGrid()
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) IDs() *common.IDAllocator {
	return s.ids
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) AddDrawable(d drawable.Drawable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Observe(d.ID())
	s.drawables = append(s.drawables, d)
}

func (s *scene) RemoveDrawable(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.drawables, func(d drawable.Drawable) bool { return d.ID() == id })
	if i < 0 {
		return false
	}
	s.drawables[i].Release()
	s.drawables = slices.Delete(s.drawables, i, i+1)
	return true
}

func (s *scene) Drawables() []drawable.Drawable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.drawables)
}

func (s *scene) VisibleObjects() []drawable.Drawable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]drawable.Drawable, 0, len(s.drawables))
	for _, d := range s.drawables {
		if d.Visible() {
			out = append(out, d)
		}
	}
	return out
}

func (s *scene) AddProjector(p projector.Projector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids.Observe(p.ID())
	s.projectors = append(s.projectors, p)
}

func (s *scene) RemoveProjector(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.projectors, func(p projector.Projector) bool { return p.ID() == id })
	if i < 0 {
		return false
	}
	s.projectors[i].Release()
	s.projectors = slices.Delete(s.projectors, i, i+1)
	return true
}

func (s *scene) Projectors() []projector.Projector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projectors)
}

func (s *scene) ActiveProjectors() []projector.Projector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]projector.Projector, 0, len(s.projectors))
	for _, p := range s.projectors {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID() == 0 {
		l.SetID(s.ids.Next())
	} else {
		s.ids.Observe(l.ID())
	}
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.lights, func(l light.Light) bool { return l.ID() == id })
	if i < 0 {
		return false
	}
	s.lights = slices.Delete(s.lights, i, i+1)
	return true
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) Target(id uint64) (property.Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projectors {
		if p.ID() == id {
			return p, true
		}
	}
	for _, d := range s.drawables {
		if d.ID() == id {
			return d, true
		}
	}
	for _, l := range s.lights {
		if l.ID() == id {
			return l, true
		}
	}
	return nil, false
}

func (s *scene) Lighting() light.Lighting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lighting
}

func (s *scene) SetLighting(l light.Lighting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lighting = l.Normalized()
}

func (s *scene) ShowHelpers() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showHelpers
}

func (s *scene) ShowGrid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showGrid
}

func (s *scene) ShowFrustums() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showFrustums
}

func (s *scene) ToggleHelpers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showHelpers = !s.showHelpers
}

func (s *scene) ToggleGrid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showGrid = !s.showGrid
}

func (s *scene) ToggleFrustums() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showFrustums = !s.showFrustums
}

func (s *scene) SetHelpers(helpers, grid, frustums bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showHelpers = helpers
	s.showGrid = grid
	s.showFrustums = frustums
}

func (s *scene) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Objects:    len(s.drawables),
		Projectors: len(s.projectors),
		Cameras:    1,
		Lights:     len(s.lights),
	}
	for _, p := range s.projectors {
		if p.Active() {
			st.ActiveProjectors++
		}
	}
	for _, d := range s.drawables {
		if d.Visible() {
			st.VisibleObjects++
		}
	}
	return st
}

func (s *scene) GridLines() []model.GPULineVertex {
	return slices.Clone(s.grid)
}

func (s *scene) FrustumLines(p projector.Projector) []model.GPULineVertex {
	near, far, _ := p.ClipPlanes()
	reach := p.Target().Sub(p.Position()).Length()
	if reach <= near {
		reach = far
	}
	shiftH, shiftV := p.LensShift()
	nq, fq := common.FrustumCorners(p.FOV(), p.Aspect(), near, reach, shiftH, shiftV)

	color := FrustumPassiveColor
	if p.Active() {
		color = FrustumActiveColor
	}

	inv, ok := p.ViewMatrix().Inverse()
	if !ok {
		return nil
	}
	toWorld := func(q common.FrustumQuad) [4]common.Vec3 {
		return [4]common.Vec3{
			inv.TransformPoint(q.BL),
			inv.TransformPoint(q.BR),
			inv.TransformPoint(q.TR),
			inv.TransformPoint(q.TL),
		}
	}
	n, f := toWorld(nq), toWorld(fq)

	out := make([]model.GPULineVertex, 0, 24)
	line := func(a, b common.Vec3) {
		out = append(out, model.GPULineVertex{Position: a, Color: color}, model.GPULineVertex{Position: b, Color: color})
	}
	for i := range 4 {
		j := (i + 1) % 4
		line(n[i], n[j])
		line(f[i], f[j])
		line(n[i], f[i])
	}
	return out
}

func (s *scene) HelperLines() []model.GPULineVertex {
	s.mu.RLock()
	helpers, grid, frustums := s.showHelpers, s.showGrid, s.showFrustums
	projectors := slices.Clone(s.projectors)
	s.mu.RUnlock()

	if !helpers {
		return nil
	}
	var out []model.GPULineVertex
	if grid {
		out = append(out, s.grid...)
	}
	if frustums {
		for _, p := range projectors {
			out = append(out, s.FrustumLines(p)...)
		}
	}
	return out
}

func (s *scene) Attach(u Updater) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updaters = append(s.updaters, u)
}

func (s *scene) Detach(u Updater) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.updaters, u); i >= 0 {
		s.updaters = slices.Delete(s.updaters, i, i+1)
	}
}

func (s *scene) Update(dt float32) {
	s.mu.RLock()
	updaters := slices.Clone(s.updaters)
	cam := s.cam
	s.mu.RUnlock()

	// updaters write through entity setters and may call back into the scene
	for _, u := range updaters {
		u.Update(dt)
	}
	cam.Update()
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseEntities()
	slog.Debug("scene cleared", "scene", s.name)
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.releaseEntities()
	s.cam.Release()
	slog.Info("scene released", "scene", s.name)
}

func (s *scene) releaseEntities() {
	for _, d := range s.drawables {
		d.Release()
	}
	for _, p := range s.projectors {
		p.Release()
	}
	s.drawables = nil
	s.projectors = nil
	s.lights = nil
}

func buildGrid() []model.GPULineVertex {
	out := make([]model.GPULineVertex, 0, GridLineCount*2)
	ext := float32(GridHalfExtent)
	for i := -GridHalfExtent; i <= GridHalfExtent; i++ {
		c := GridColor
		if i == 0 {
			c = GridAxisXColor
		}
		z := float32(i)
		out = append(out,
			model.GPULineVertex{Position: [3]float32{-ext, 0, z}, Color: c},
			model.GPULineVertex{Position: [3]float32{ext, 0, z}, Color: c},
		)
	}
	for i := -GridHalfExtent; i <= GridHalfExtent; i++ {
		c := GridColor
		if i == 0 {
			c = GridAxisZColor
		}
		x := float32(i)
		out = append(out,
			model.GPULineVertex{Position: [3]float32{x, 0, -ext}, Color: c},
			model.GPULineVertex{Position: [3]float32{x, 0, ext}, Color: c},
		)
	}
	return out
}
