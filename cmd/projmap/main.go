// Command projmap previews multi-projector mapping of a scene with per projector shadowing.
//
// Without output flags it opens a window and renders the project. The -report, -validate and
// -export-patterns flags run headless and exit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/engine"
	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/Carmen-Shannon/oxy-projector/engine/config"
	"github.com/Carmen-Shannon/oxy-projector/engine/project"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/texture"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
	"github.com/Carmen-Shannon/oxy-projector/engine/window"
)

func init() {
	// GLFW must be driven from the main thread.
	runtime.LockOSThread()
}

type options struct {
	configPath     string
	projectPath    string
	logLevel       string
	pattern        string
	images         imageBindings
	reportPath     string
	validate       bool
	exportPatterns string
	exportFormat   string
	patternSize    [2]int
	watch          bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{patternSize: [2]int{texture.DefaultPatternWidth, texture.DefaultPatternHeight}}
	fset := flag.NewFlagSet("projmap", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&opts.configPath, "config", config.DefaultFileName, "settings file")
	fset.StringVar(&opts.projectPath, "project", "", "project file, overrides paths.project")
	fset.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error, overrides log_level")
	fset.StringVar(&opts.pattern, "pattern", string(texture.PatternGrid), "test pattern for projectors without an image, empty for none")
	fset.Var(&opts.images, "image", "projector=path image binding, repeatable; a bare path binds every projector")
	fset.StringVar(&opts.reportPath, "report", "", "write the technical report to this file (- for stdout) and exit")
	fset.BoolVar(&opts.validate, "validate", false, "validate the project file and exit")
	fset.StringVar(&opts.exportPatterns, "export-patterns", "", "write every test pattern into this directory and exit")
	fset.StringVar(&opts.exportFormat, "export-format", string(texture.FormatWebP), "pattern export format, webp or png")
	fset.IntVar(&opts.patternSize[0], "pattern-width", texture.DefaultPatternWidth, "generated pattern width")
	fset.IntVar(&opts.patternSize[1], "pattern-height", texture.DefaultPatternHeight, "generated pattern height")
	fset.BoolVar(&opts.watch, "watch", true, "reload settings and bound images when they change on disk")
	if err := fset.Parse(args); err != nil {
		return options{}, err
	}
	if opts.pattern != "" {
		if _, ok := texture.ParsePattern(opts.pattern); !ok {
			return options{}, fmt.Errorf("%w: %q", texture.ErrUnknownPattern, opts.pattern)
		}
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("projmap: fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := &slog.LevelVar{}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	lvl, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	level.Set(lvl)

	if opts.projectPath != "" {
		cfg.Paths.Project = opts.projectPath
	}

	if opts.exportPatterns != "" {
		return exportPatterns(opts)
	}

	file, err := loadProject(cfg.Paths.Project)
	if err != nil {
		return err
	}

	if opts.validate {
		return validate(file, stdout)
	}
	if opts.reportPath != "" {
		return report(file, opts.reportPath, stdout)
	}
	return preview(cfg, opts, file, level)
}

// loadProject reads the project file. A missing file yields the starter session.
func loadProject(path string) (*project.File, error) {
	f, err := project.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("projmap: no project file, starting a new session", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func exportPatterns(opts options) error {
	written, err := texture.ExportPatterns(opts.exportPatterns, opts.patternSize[0], opts.patternSize[1], texture.Format(opts.exportFormat))
	if err != nil {
		return err
	}
	slog.Info("projmap: patterns exported", "dir", opts.exportPatterns, "files", len(written))
	return nil
}

func validate(f *project.File, stdout io.Writer) error {
	if f == nil {
		return errors.New("projmap: validate: no project file")
	}
	issues := project.Validate(*f)
	for _, is := range issues {
		fmt.Fprintln(stdout, is.String())
	}
	if project.HasErrors(issues) {
		return project.ErrInvalid
	}
	fmt.Fprintf(stdout, "%d issue(s), project is loadable\n", len(issues))
	return nil
}

func report(f *project.File, path string, stdout io.Writer) error {
	sc := scene.NewScene("Untitled")
	defer sc.Release()
	if f == nil {
		if err := populateStarter(sc); err != nil {
			return err
		}
	} else if _, err := project.Apply(*f, sc, nil); err != nil {
		return err
	}

	if path == "-" {
		return project.WriteReport(stdout, sc, time.Now())
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("projmap: report: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("projmap: report: %w", err)
	}
	if err := project.WriteReport(out, sc, time.Now()); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("projmap: report: %w", err)
	}
	slog.Info("projmap: report written", "path", path)
	return nil
}

func preview(cfg config.Config, opts options, f *project.File, level *slog.LevelVar) error {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithFullscreen(cfg.Window.Fullscreen, cfg.Window.Monitor),
	)
	if err != nil {
		return err
	}

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(renderer.PresentModeFor(cfg.Window.VSync)),
		renderer.WithMSAA(renderer.MSAAFromSamples(cfg.Window.MSAA)),
		renderer.WithClearColor(cfg.Render.ClearColor[0], cfg.Render.ClearColor[1], cfg.Render.ClearColor[2]),
	)
	if err != nil {
		return fmt.Errorf("projmap: renderer: %w", err)
	}

	preset, err := camera.ParsePreset(cfg.Camera.Preset)
	if err != nil {
		slog.Warn("projmap: unknown camera preset", "preset", cfg.Camera.Preset)
		preset = camera.PresetPerspective
	}
	ctrl := camera.NewCameraController(
		camera.WithMoveSpeed(cfg.Camera.MoveSpeed),
		camera.WithRotateSpeed(cfg.Camera.RotateSpeed),
		camera.WithZoomSpeed(cfg.Camera.ZoomSpeed),
	)
	ctrl.ApplyPreset(preset)
	cam := camera.NewCamera(
		camera.WithFov(cfg.Camera.FOV),
		camera.WithAspect(float32(win.Width())/float32(max(win.Height(), 1))),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithController(ctrl),
	)

	sc := scene.NewScene("Untitled", scene.WithCamera(cam))
	tl := timeline.NewTimeline(sc)
	if f == nil {
		err = populateStarter(sc)
	} else {
		var issues []project.Issue
		issues, err = project.Apply(*f, sc, tl)
		for _, is := range issues {
			slog.Warn("projmap: project issue", "issue", is.String())
		}
	}
	if err != nil {
		sc.Release()
		r.Release()
		return err
	}

	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithScene(sc),
		engine.WithTimeline(tl),
		engine.WithShadowResolution(cfg.Render.ShadowResolution),
		engine.WithTickRate(cfg.Render.TickRate),
		engine.WithRenderFrameLimit(cfg.Render.FrameLimit),
		engine.WithProfiling(cfg.Render.Profiling),
	)
	if err != nil {
		sc.Release()
		r.Release()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	go func() {
		select {
		case <-interrupt:
			eng.Quit()
		case <-ctx.Done():
		}
	}()

	s := newSession(eng, cfg, opts)
	s.bindShortcuts()
	s.bindTextures(ctx)

	if opts.watch {
		if err := config.Watch(ctx, opts.configPath, func(next config.Config, err error) {
			if err == nil {
				s.applySettings(next, level)
			}
		}); err != nil {
			slog.Warn("projmap: settings hot reload disabled", "error", err)
		}
	}

	win.SetTitle(cfg.Window.Title + " - " + sc.Name())
	slog.Info("projmap: running", "project", cfg.Paths.Project, "projectors", len(sc.Projectors()))
	eng.Run()
	return nil
}
