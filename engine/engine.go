package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/Carmen-Shannon/oxy-projector/engine/compositor"
	"github.com/Carmen-Shannon/oxy-projector/engine/history"
	"github.com/Carmen-Shannon/oxy-projector/engine/profiler"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/shadow"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
	"github.com/Carmen-Shannon/oxy-projector/engine/window"
)

// frameErrorLogEvery limits repeated frame failures to one log line per this many frames.
const frameErrorLogEvery = 300

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	releaseOnce sync.Once

	window     window.Window
	renderer   renderer.Renderer
	scene      scene.Scene
	timeline   timeline.Timeline
	history    history.History
	shadows    shadow.Manager
	compositor compositor.Compositor
	input      *input

	shadowResolution int

	tasksMu *sync.Mutex
	tasks   []func()

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	frameErrors      int
}

// Engine is the main entry point for the projection mapping session.
// It owns the shadow pass manager and compositor, drives the frame sequence on the render
// goroutine and advances the scene and timeline on the tick goroutine.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, nil when running headless
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Scene returns the scene being rendered.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Timeline returns the timeline attached to the scene.
	//
	// Returns:
	//   - timeline.Timeline: the timeline
	Timeline() timeline.Timeline

	// History returns the undo stack the Ctrl+Z and Ctrl+Y shortcuts operate on.
	//
	// Returns:
	//   - history.History: the history
	History() history.History

	// Shadows returns the shadow pass manager.
	//
	// Returns:
	//   - shadow.Manager: the manager
	Shadows() shadow.Manager

	// Compositor returns the main pass compositor.
	//
	// Returns:
	//   - compositor.Compositor: the compositor
	Compositor() compositor.Compositor

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// FrameStats returns the latest profiler sample. It stays zero while profiling is disabled.
	//
	// Returns:
	//   - profiler.Stats: frame rate and memory figures
	FrameStats() profiler.Stats

	// SetTickRate sets the engine tick rate in frames per second.
	// The scene, timeline and tick callback are updated at this rate.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick after the scene update.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Bind registers a keyboard shortcut, replacing any default on the same key.
	// A nil action removes the binding.
	//
	// Parameters:
	//   - keyCode: the key, see common key codes
	//   - ctrl: whether a control key must be held
	//   - action: the function run on the window thread when the key is pressed
	Bind(keyCode uint32, ctrl bool, action func())

	// Post queues a function to run on the render goroutine before the next frame.
	// GPU work such as texture uploads must go through Post.
	//
	// Parameters:
	//   - task: the function to run
	Post(task func())

	// RenderFrame runs queued tasks and renders one frame: shadow slot assignment, compositor
	// uniform upload, the per projector depth passes, the main pass and present.
	//
	// Returns:
	//   - error: the first failing stage, wrapped
	RenderFrame() error

	// Run starts the tick and render goroutines and processes window messages until the window
	// closes, then releases all GPU resources.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Release frees the compositor, shadow targets, scene resources and renderer.
	// Subsequent calls do nothing.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates an engine with the provided options.
// A scene and a timeline bound to it are created when not supplied, and the timeline is
// attached to the scene so scene updates advance playback.
//
// Parameters:
//   - options: functional options for engine configuration (renderer, window, scene, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: ErrNoRenderer, or a wrapped shadow manager or compositor creation error
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		tasksMu:          &sync.Mutex{},
		profiler:         profiler.NewProfiler(),
		engineTickRate:   time.Second / 60,
		shadowResolution: shadow.DefaultResolution,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		return nil, ErrNoRenderer
	}
	if e.scene == nil {
		e.scene = scene.NewScene("Untitled")
	}
	if e.timeline == nil {
		e.timeline = timeline.NewTimeline(e.scene)
	}
	if e.history == nil {
		e.history = history.NewHistory()
	}
	e.scene.Attach(e.timeline)

	shadows, err := shadow.NewManager(e.renderer, shadow.WithResolution(e.shadowResolution))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	comp, err := compositor.NewCompositor(e.renderer, shadows)
	if err != nil {
		shadows.Release()
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.shadows = shadows
	e.compositor = comp

	e.input = newInput(func() camera.CameraController {
		if cam := e.scene.Camera(); cam != nil {
			return cam.Controller()
		}
		return nil
	})
	e.bindDefaults()

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.Post(func() { e.resize(width, height) })
		})
		e.window.SetKeyDownCallback(e.input.keyDown)
		e.window.SetKeyUpCallback(e.input.keyUp)
		e.window.SetMiddleMouseDownCallback(e.input.middleDown)
		e.window.SetMiddleMouseUpCallback(e.input.middleUp)
		e.window.SetMouseMoveCallback(e.input.mouseMove)
		e.window.SetScrollCallback(e.input.scroll)
	}

	slog.Info("engine: ready", "shadow_resolution", shadows.Resolution(), "tick", e.engineTickRate)
	return e, nil
}

// bindDefaults installs the editor shortcuts.
func (e *engine) bindDefaults() {
	for i, p := range camera.Presets {
		preset := p
		e.input.bind(uint32(common.Key1+i), false, func() {
			if cam := e.scene.Camera(); cam != nil {
				cam.Controller().ApplyPreset(preset)
				slog.Debug("engine: camera preset", "preset", string(preset))
			}
		})
	}
	e.input.bind(common.KeySpace, false, func() { e.timeline.TogglePlay() })
	e.input.bind(common.KeyG, false, e.scene.ToggleGrid)
	e.input.bind(common.KeyF, false, e.scene.ToggleFrustums)
	e.input.bind(common.KeyH, false, e.scene.ToggleHelpers)
	e.input.bind(common.KeyZ, true, func() { e.history.Undo() })
	e.input.bind(common.KeyY, true, func() { e.history.Redo() })
	e.input.bind(common.KeyEsc, false, e.Quit)
	if e.window != nil {
		e.input.bind(common.KeyF11, false, e.window.ToggleFullscreen)
	}
}

func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := e.renderer.Resize(width, height); err != nil {
		slog.Warn("engine: resize failed", "width", width, "height", height, "error", err)
		return
	}
	if cam := e.scene.Camera(); cam != nil {
		cam.SetAspect(float32(width) / float32(height))
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Timeline() timeline.Timeline {
	return e.timeline
}

func (e *engine) History() history.History {
	return e.history
}

func (e *engine) Shadows() shadow.Manager {
	return e.shadows
}

func (e *engine) Compositor() compositor.Compositor {
	return e.compositor
}

func (e *engine) Bind(keyCode uint32, ctrl bool, action func()) {
	e.input.bind(keyCode, ctrl, action)
}

func (e *engine) Post(task func()) {
	if task == nil {
		return
	}
	e.tasksMu.Lock()
	defer e.tasksMu.Unlock()
	e.tasks = append(e.tasks, task)
}

func (e *engine) runTasks() {
	e.tasksMu.Lock()
	tasks := e.tasks
	e.tasks = nil
	e.tasksMu.Unlock()

	for _, task := range tasks {
		task()
	}
}

func (e *engine) RenderFrame() error {
	e.runTasks()

	frames := shadow.Frames(e.shadows.Assign(e.scene.ActiveProjectors()))
	if err := e.compositor.Prepare(e.scene, frames); err != nil {
		return fmt.Errorf("engine: prepare: %w", err)
	}
	if err := e.shadows.Render(frames, e.scene.VisibleObjects()); err != nil {
		return fmt.Errorf("engine: shadow pass: %w", err)
	}
	if err := e.compositor.Render(); err != nil {
		return fmt.Errorf("engine: main pass: %w", err)
	}
	e.renderer.Present()
	return nil
}

func (e *engine) Run() {
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	<-e.quitChannel
	e.wg.Wait()
	e.Release()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			slog.Warn("engine: close window", "error", err)
		}
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

func (e *engine) Release() {
	e.releaseOnce.Do(func() {
		e.compositor.Release()
		e.shadows.Release()
		e.scene.Release()
		e.renderer.Release()
		slog.Info("engine: released")
	})
}

// handle launches the tick and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.running = true
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Applies camera input, updates the scene (which advances the timeline) and fires the tick
// callback. Listens for dynamic rate changes via tickRateChannel and exits when the quit channel
// is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.input.tick(dt)
			e.scene.Update(dt)
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("engine: render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if err := e.RenderFrame(); err != nil {
				if e.frameErrors%frameErrorLogEvery == 0 {
					slog.Error("engine: frame failed", "error", err, "failures", e.frameErrors+1)
				}
				e.frameErrors++
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) FrameStats() profiler.Stats {
	return e.profiler.Last()
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
