// Package config loads and saves the TOML settings file of the application and watches it for
// changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the settings file looked up next to the working directory.
const DefaultFileName = "projmap.toml"

// Config holds every persisted setting.
type Config struct {
	LogLevel string `toml:"log_level"`

	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Camera CameraConfig `toml:"camera"`
	Paths  PathsConfig  `toml:"paths"`
}

// WindowConfig describes the main window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
	MSAA   int    `toml:"msaa"`

	// Fullscreen opens the preview on Monitor, usually the projector output.
	Fullscreen bool `toml:"fullscreen"`
	Monitor    int  `toml:"monitor"`
}

// RenderConfig holds frame loop and pass settings.
type RenderConfig struct {
	ShadowResolution int        `toml:"shadow_resolution"`
	ClearColor       [3]float64 `toml:"clear_color"`
	TickRate         float64    `toml:"tick_rate"`
	FrameLimit       float64    `toml:"frame_limit"`
	Profiling        bool       `toml:"profiling"`
}

// CameraConfig holds the viewer camera settings.
type CameraConfig struct {
	FOV         float32 `toml:"fov"`
	Near        float32 `toml:"near"`
	Far         float32 `toml:"far"`
	MoveSpeed   float32 `toml:"move_speed"`
	RotateSpeed float32 `toml:"rotate_speed"`
	ZoomSpeed   float32 `toml:"zoom_speed"`
	Preset      string  `toml:"preset"`
}

// PathsConfig locates files the application reads and writes. Relative paths resolve against
// the directory of the settings file.
type PathsConfig struct {
	Assets   string `toml:"assets"`
	Textures string `toml:"textures"`
	Project  string `toml:"project"`
	Exports  string `toml:"exports"`
}

// Default returns the built-in settings.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:  "Projection Mapper",
			Width:  1600,
			Height: 900,
			VSync:  true,
			MSAA:   4,
		},
		Render: RenderConfig{
			ShadowResolution: 2048,
			ClearColor:       [3]float64{0.1, 0.1, 0.12},
			TickRate:         60,
		},
		Camera: CameraConfig{
			FOV:         45,
			Near:        0.1,
			Far:         1000,
			MoveSpeed:   10,
			RotateSpeed: 0.3,
			ZoomSpeed:   1,
			Preset:      "perspective",
		},
		Paths: PathsConfig{
			Assets:   "assets",
			Textures: "textures",
			Project:  "project.yaml",
			Exports:  "exports",
		},
	}
}

// Load reads a TOML settings file. Settings missing from the file keep their default values.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the settings, resolved against the file's directory
//   - error: a wrapped read, parse or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes TOML settings over the defaults and validates them.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the settings, paths unresolved
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault reads path when it exists and falls back to the defaults otherwise.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the settings
//   - error: a wrapped parse error; a missing file is not an error
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("config: no settings file, using defaults", "path", path)
		cfg = Default()
		cfg.Resolve(filepath.Dir(path))
		return cfg, nil
	}
	return Config{}, err
}

// Save writes the settings as TOML, creating parent directories as needed.
//
// Parameters:
//   - path: the file to write
//
// Returns:
//   - error: a wrapped encode or write error
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Resolve fills zero settings with defaults and makes relative paths absolute against baseDir.
//
// Parameters:
//   - baseDir: the directory relative paths are joined to, usually the settings file's directory
func (c *Config) Resolve(baseDir string) {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Window.Title == "" {
		c.Window.Title = d.Window.Title
	}
	if c.Window.Width <= 0 {
		c.Window.Width = d.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = d.Window.Height
	}
	if c.Window.MSAA <= 0 {
		c.Window.MSAA = 1
	}
	if c.Render.ShadowResolution <= 0 {
		c.Render.ShadowResolution = d.Render.ShadowResolution
	}
	if c.Render.TickRate <= 0 {
		c.Render.TickRate = d.Render.TickRate
	}
	if c.Camera.FOV <= 0 {
		c.Camera.FOV = d.Camera.FOV
	}
	if c.Camera.Near <= 0 {
		c.Camera.Near = d.Camera.Near
	}
	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = max(d.Camera.Far, c.Camera.Near*2)
	}
	if c.Camera.Preset == "" {
		c.Camera.Preset = d.Camera.Preset
	}

	c.Paths.Assets = resolvePath(baseDir, c.Paths.Assets, d.Paths.Assets)
	c.Paths.Textures = resolvePath(baseDir, c.Paths.Textures, d.Paths.Textures)
	c.Paths.Project = resolvePath(baseDir, c.Paths.Project, d.Paths.Project)
	c.Paths.Exports = resolvePath(baseDir, c.Paths.Exports, d.Paths.Exports)
}

func resolvePath(baseDir, p, fallback string) string {
	if p == "" {
		p = fallback
	}
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// Validate reports the first setting outside its allowed range.
//
// Returns:
//   - error: ErrInvalid or ErrUnknownLogLevel wrapped with the setting name
func (c Config) Validate() error {
	switch c.Window.MSAA {
	case 0, 1, 4, 8, 16:
	default:
		return fmt.Errorf("%w: window.msaa %d (want 1, 4, 8 or 16)", ErrInvalid, c.Window.MSAA)
	}
	if r := c.Render.ShadowResolution; r != 0 && (r < 64 || r > 8192 || r&(r-1) != 0) {
		return fmt.Errorf("%w: render.shadow_resolution %d (want a power of two in [64, 8192])", ErrInvalid, r)
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: render.clear_color[%d] %g", ErrInvalid, i, v)
		}
	}
	if c.Camera.FOV < 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera.fov %g", ErrInvalid, c.Camera.FOV)
	}
	if c.LogLevel != "" {
		if _, err := ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// ParseLevel maps a log level name to its slog level.
//
// Parameters:
//   - name: debug, info, warn or error, case insensitive
//
// Returns:
//   - slog.Level: the level
//   - error: ErrUnknownLogLevel
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, name)
}
