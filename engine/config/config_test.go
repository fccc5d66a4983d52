package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2048, cfg.Render.ShadowResolution)
	assert.Equal(t, "perspective", cfg.Camera.Preset)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultFileName)

	cfg := Default()
	cfg.Window.Width = 1280
	cfg.Render.Profiling = true
	cfg.Paths.Textures = "/abs/textures"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1280, got.Window.Width)
	assert.True(t, got.Render.Profiling)
	assert.Equal(t, "/abs/textures", got.Paths.Textures)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "project.yaml"), got.Paths.Project)
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("log_level = \"debug\"\n[window]\nwidth = 800\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, Default().Window.Height, cfg.Window.Height)
	assert.Equal(t, Default().Camera, cfg.Camera)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"msaa", "[window]\nmsaa = 3\n", ErrInvalid},
		{"shadow size", "[render]\nshadow_resolution = 1000\n", ErrInvalid},
		{"clear colour", "[render]\nclear_color = [0.0, 2.0, 0.0]\n", ErrInvalid},
		{"fov", "[camera]\nfov = 190.0\n", ErrInvalid},
		{"log level", "log_level = \"loud\"\n", ErrUnknownLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.is)
		})
	}

	_, err := Parse([]byte("[window]\nunknown = 1\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("not toml"))
	assert.Error(t, err)
}

func TestResolveFillsZeroValues(t *testing.T) {
	var cfg Config
	cfg.Camera.Near = 5
	cfg.Camera.Far = 1
	cfg.Resolve("/base")

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1600, cfg.Window.Width)
	assert.Equal(t, 1, cfg.Window.MSAA)
	assert.Equal(t, float32(1000), cfg.Camera.Far)
	assert.Equal(t, filepath.Join("/base", "textures"), cfg.Paths.Textures)
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, Default().Window, cfg.Window)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[window]\nmsaa = 5\n"), 0o644))
	_, err = LoadOrDefault(bad)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("trace")
	assert.ErrorIs(t, err, ErrUnknownLogLevel)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, Default().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	require.NoError(t, Watch(ctx, path, func(c Config, err error) {
		if err == nil {
			changes <- c
		}
	}))

	cfg := Default()
	cfg.Window.Width = 640
	require.NoError(t, cfg.Save(path))

	select {
	case got := <-changes:
		assert.Equal(t, 640, got.Window.Width)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}
