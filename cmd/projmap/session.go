package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine"
	"github.com/Carmen-Shannon/oxy-projector/engine/config"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/history"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/project"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/texture"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
)

// starterModel is the projector body placed in a new session.
const starterModel = "panasonic_pt_rq13k"

// keyframedProperties are recorded for the selected projector by the K shortcut.
var keyframedProperties = []property.Property{
	property.PositionX, property.PositionY, property.PositionZ, property.Intensity,
}

// imageBinding maps a projector name to an image file. An empty projector binds every projector.
type imageBinding struct {
	projector string
	path      string
}

// imageBindings collects repeated -image flags.
type imageBindings []imageBinding

func (b *imageBindings) String() string {
	parts := make([]string, 0, len(*b))
	for _, ib := range *b {
		if ib.projector == "" {
			parts = append(parts, ib.path)
			continue
		}
		parts = append(parts, ib.projector+"="+ib.path)
	}
	return strings.Join(parts, ",")
}

func (b *imageBindings) Set(v string) error {
	name, path, found := strings.Cut(v, "=")
	if !found {
		name, path = "", v
	}
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty image path")
	}
	*b = append(*b, imageBinding{projector: name, path: path})
	return nil
}

// populateStarter fills an empty scene with a floor, a cube, one projector aimed at the cube and
// a point light.
func populateStarter(sc scene.Scene) error {
	ids := sc.IDs()

	floorMesh, err := model.NewPrimitive(model.KindPlane, "Floor")
	if err != nil {
		return err
	}
	floor, err := drawable.NewDrawable(ids, floorMesh,
		drawable.WithName("Floor"),
		drawable.WithScale(common.Vec3{10, 1, 10}),
		drawable.WithShadows(false, true),
	)
	if err != nil {
		return err
	}
	sc.AddDrawable(floor)

	cubeMesh, err := model.NewPrimitive(model.KindCube, "Cube")
	if err != nil {
		return err
	}
	cube, err := drawable.NewDrawable(ids, cubeMesh,
		drawable.WithName("Cube"),
		drawable.WithPosition(common.Vec3{0, 1, 0}),
		drawable.WithScale(common.Vec3{2, 2, 2}),
	)
	if err != nil {
		return err
	}
	sc.AddDrawable(cube)

	p, err := projector.NewProjector(ids, starterModel, "",
		projector.WithName("Projector 1"),
		projector.WithTarget(common.Vec3{0, 1, 0}),
	)
	if err != nil {
		return err
	}
	sc.AddProjector(p)

	l, err := light.NewLightByName("point",
		light.WithID(ids.Next()),
		light.WithName("Key Light"),
		light.WithPosition(common.Vec3{5, 8, 5}),
	)
	if err != nil {
		return err
	}
	sc.AddLight(l)
	return nil
}

// session holds the state the interactive shortcuts operate on.
type session struct {
	eng  engine.Engine
	cfg  config.Config
	opts options

	mu       *sync.Mutex
	pattern  texture.Pattern
	bound    map[string][]uint64 // image path to projector ids
	selected int
	watcher  *texture.Watcher
}

func newSession(eng engine.Engine, cfg config.Config, opts options) *session {
	p, ok := texture.ParsePattern(opts.pattern)
	if !ok {
		p = ""
	}
	return &session{
		eng:     eng,
		cfg:     cfg,
		opts:    opts,
		mu:      &sync.Mutex{},
		pattern: p,
		bound:   make(map[string][]uint64),
	}
}

func (s *session) scene() scene.Scene {
	return s.eng.Scene()
}

func (s *session) timeline() timeline.Timeline {
	return s.eng.Timeline()
}

func (s *session) bindShortcuts() {
	s.eng.Bind(common.KeyS, true, s.save)
	s.eng.Bind(common.KeyO, true, func() { s.eng.Post(s.reload) })
	s.eng.Bind(common.KeyN, true, func() { s.eng.Post(s.reset) })
	s.eng.Bind(common.KeyR, true, s.writeReport)
	s.eng.Bind(common.KeyC, false, s.selectNext)
	s.eng.Bind(common.KeyP, false, s.toggleSelected)
	s.eng.Bind(common.KeyK, false, s.keyframeSelected)
	s.eng.Bind(common.KeyT, false, func() { s.eng.Post(s.nextPattern) })
}

func (s *session) save() {
	path := s.cfg.Paths.Project
	if err := project.Save(path, s.scene(), s.timeline()); err != nil {
		slog.Error("projmap: save failed", "path", path, "error", err)
		return
	}
	s.eng.History().Clear()
	slog.Info("projmap: project saved", "path", path)
}

// reload discards the session and applies the project file again. Runs on the render goroutine.
func (s *session) reload() {
	f, err := project.Load(s.cfg.Paths.Project)
	if err != nil {
		slog.Error("projmap: open failed", "path", s.cfg.Paths.Project, "error", err)
		return
	}
	issues, err := project.Apply(f, s.scene(), s.timeline())
	for _, is := range issues {
		slog.Warn("projmap: project issue", "issue", is.String())
	}
	if err != nil {
		slog.Error("projmap: open failed", "path", s.cfg.Paths.Project, "error", err)
		return
	}
	s.afterSceneChange()
	slog.Info("projmap: project opened", "path", s.cfg.Paths.Project)
}

// reset replaces the session with the starter scene. Runs on the render goroutine.
func (s *session) reset() {
	sc, tl := s.scene(), s.timeline()
	sc.Clear()
	sc.SetName("Untitled")
	tl.Stop()
	tl.ClearAnimation()
	if err := populateStarter(sc); err != nil {
		slog.Error("projmap: new session failed", "error", err)
	}
	s.afterSceneChange()
	slog.Info("projmap: new session")
}

func (s *session) afterSceneChange() {
	s.eng.History().Clear()
	s.mu.Lock()
	s.selected = 0
	s.mu.Unlock()
	s.assignImages(s.resolveBindings())
}

func (s *session) writeReport() {
	path := filepath.Join(s.cfg.Paths.Exports, "report_"+time.Now().Format("20060102_150405")+".txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Error("projmap: report failed", "error", err)
		return
	}
	out, err := os.Create(path)
	if err != nil {
		slog.Error("projmap: report failed", "error", err)
		return
	}
	defer out.Close()
	if err := project.WriteReport(out, s.scene(), time.Now()); err != nil {
		slog.Error("projmap: report failed", "path", path, "error", err)
		return
	}
	slog.Info("projmap: report written", "path", path)
}

// selectedProjector returns the projector the P and K shortcuts act on.
func (s *session) selectedProjector() (projector.Projector, bool) {
	ps := s.scene().Projectors()
	if len(ps) == 0 {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected %= len(ps)
	return ps[s.selected], true
}

func (s *session) selectNext() {
	s.mu.Lock()
	s.selected++
	s.mu.Unlock()
	if p, ok := s.selectedProjector(); ok {
		slog.Info("projmap: selected", "projector", p.Name(), "id", p.ID())
	}
}

func (s *session) toggleSelected() {
	p, ok := s.selectedProjector()
	if !ok {
		return
	}
	next := float32(1)
	if p.Active() {
		next = 0
	}
	change, ok := history.CaptureChange(p, property.Active, next)
	if !ok {
		return
	}
	s.eng.History().Do(history.NewPropertyAction(fmt.Sprintf("toggle %s", p.Name()), p, change))
	slog.Info("projmap: projector toggled", "projector", p.Name(), "active", p.Active())
}

func (s *session) keyframeSelected() {
	p, ok := s.selectedProjector()
	if !ok {
		return
	}
	tl := s.timeline()
	for _, prop := range keyframedProperties {
		if _, err := tl.AddKeyframe(p.ID(), prop, timeline.EaseInOutSine); err != nil {
			slog.Warn("projmap: keyframe failed", "projector", p.Name(), "property", prop.String(), "error", err)
		}
	}
	slog.Info("projmap: keyframe added", "projector", p.Name(), "time", tl.CurrentTime())
}

// nextPattern advances the test pattern shown by projectors without a bound image.
func (s *session) nextPattern() {
	all := texture.Patterns()
	s.mu.Lock()
	next := all[0]
	for i, p := range all {
		if p == s.pattern {
			next = all[(i+1)%len(all)]
		}
	}
	s.pattern = next
	s.mu.Unlock()

	s.assignImages(s.resolveBindings())
	slog.Info("projmap: test pattern", "pattern", string(next))
}

// resolveBindings maps every bound image path to projector ids. Relative paths missing from the
// working directory are looked up in the texture directory.
func (s *session) resolveBindings() map[string][]uint64 {
	out := make(map[string][]uint64)
	ps := s.scene().Projectors()
	for _, ib := range s.opts.images {
		path := ib.path
		if !filepath.IsAbs(path) {
			if _, err := os.Stat(path); err != nil {
				path = filepath.Join(s.cfg.Paths.Textures, path)
			}
		}
		matched := false
		for _, p := range ps {
			if ib.projector == "" || p.Name() == ib.projector {
				out[path] = append(out[path], p.ID())
				matched = true
			}
		}
		if !matched {
			slog.Warn("projmap: image bound to unknown projector", "projector", ib.projector, "path", ib.path)
		}
	}
	return out
}

// bindTextures decodes the bound images, uploads them, and starts watching them for changes.
func (s *session) bindTextures(ctx context.Context) {
	s.assignImages(s.resolveBindings())
	if !s.opts.watch || len(s.opts.images) == 0 {
		return
	}

	w, err := texture.NewWatcher(ctx)
	if err != nil {
		slog.Warn("projmap: image hot reload disabled", "error", err)
		return
	}
	s.mu.Lock()
	s.watcher = w
	for path := range s.bound {
		if err := w.Add(path); err != nil {
			slog.Warn("projmap: cannot watch image", "path", path, "error", err)
		}
	}
	s.mu.Unlock()

	go func() {
		for changed := range w.Changes() {
			s.reloadImage(changed)
		}
	}()
}

// assignImages decodes every bound image on the worker pool and posts the uploads. Projectors
// left without an image get the current test pattern.
func (s *session) assignImages(bindings map[string][]uint64) {
	paths := make([]string, 0, len(bindings))
	for path := range bindings {
		paths = append(paths, path)
	}

	covered := make(map[uint64]bool)
	for _, res := range texture.LoadBatch(paths, 0) {
		if res.Err != nil {
			slog.Warn("projmap: image skipped", "path", res.Path, "error", res.Err)
			continue
		}
		ids := bindings[res.Path]
		for _, id := range ids {
			covered[id] = true
		}
		s.post(res.Path, res.Image, ids)
	}

	s.mu.Lock()
	s.bound = bindings
	pattern := s.pattern
	s.mu.Unlock()
	if pattern == "" {
		return
	}

	var bare []uint64
	for _, p := range s.scene().Projectors() {
		if !covered[p.ID()] {
			bare = append(bare, p.ID())
		}
	}
	if len(bare) == 0 {
		return
	}
	img, err := texture.GeneratePattern(pattern, s.opts.patternSize[0], s.opts.patternSize[1])
	if err != nil {
		slog.Warn("projmap: pattern failed", "pattern", string(pattern), "error", err)
		return
	}
	s.post("pattern_"+string(pattern), img, bare)
}

func (s *session) reloadImage(path string) {
	s.mu.Lock()
	ids := s.bound[path]
	s.mu.Unlock()
	if len(ids) == 0 {
		return
	}
	img, err := texture.Load(path)
	if err != nil {
		slog.Warn("projmap: image reload failed", "path", path, "error", err)
		return
	}
	s.post(path, img, ids)
	slog.Info("projmap: image reloaded", "path", path, "projectors", len(ids))
}

// post queues one upload per projector on the render goroutine. Each projector owns its texture
// since SetTexture releases the one it replaces.
func (s *session) post(label string, img image.Image, ids []uint64) {
	s.eng.Post(func() {
		for _, id := range ids {
			p := s.findProjector(id)
			if p == nil {
				continue
			}
			tex, err := texture.Upload(s.eng.Renderer(), label, img)
			if err != nil {
				slog.Warn("projmap: upload failed", "label", label, "error", err)
				return
			}
			p.SetTexture(tex)
		}
	})
}

func (s *session) findProjector(id uint64) projector.Projector {
	for _, p := range s.scene().Projectors() {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// applySettings picks up the settings that can change while running.
func (s *session) applySettings(next config.Config, level *slog.LevelVar) {
	if lvl, err := config.ParseLevel(next.LogLevel); err == nil {
		level.Set(lvl)
	}
	s.eng.SetTickRate(next.Render.TickRate)
	s.eng.SetRenderFrameLimit(next.Render.FrameLimit)
	if next.Render.Profiling {
		s.eng.EnableProfiler()
	} else {
		s.eng.DisableProfiler()
	}
	c := next.Render.ClearColor
	present := renderer.PresentModeFor(next.Window.VSync)
	s.eng.Post(func() {
		r := s.eng.Renderer()
		r.SetClearColor(c[0], c[1], c[2])
		if err := r.SetPresentMode(present); err != nil {
			slog.Warn("projmap: present mode not applied", "mode", present, "err", err)
		}
	})

	s.mu.Lock()
	s.cfg.LogLevel = next.LogLevel
	s.cfg.Render = next.Render
	s.cfg.Window.VSync = next.Window.VSync
	s.mu.Unlock()
	slog.Info("projmap: settings applied", "log_level", next.LogLevel, "tick_rate", next.Render.TickRate)
}
