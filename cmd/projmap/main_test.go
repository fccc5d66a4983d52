package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/engine/project"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/texture"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseFlags([]string{
		"-image", "Left=left.png",
		"-image", "all.webp",
		"-pattern", "checkerboard",
		"-watch=false",
	}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "checkerboard", opts.pattern)
	assert.False(t, opts.watch)
	assert.Equal(t, imageBindings{{projector: "Left", path: "left.png"}, {path: "all.webp"}}, opts.images)
	assert.Equal(t, "Left=left.png,all.webp", opts.images.String())
	assert.Equal(t, [2]int{texture.DefaultPatternWidth, texture.DefaultPatternHeight}, opts.patternSize)

	_, err = parseFlags([]string{"-pattern", "plaid"}, &stderr)
	assert.ErrorIs(t, err, texture.ErrUnknownPattern)

	_, err = parseFlags([]string{"-image", "Left="}, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-h"}, &stderr)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestStarterScene(t *testing.T) {
	sc := scene.NewScene("Untitled")
	defer sc.Release()
	require.NoError(t, populateStarter(sc))

	stats := sc.Stats()
	assert.Equal(t, 2, stats.Objects)
	assert.Equal(t, 1, stats.Projectors)
	assert.Equal(t, 1, stats.Lights)
	require.Len(t, sc.Projectors(), 1)
	assert.Equal(t, starterModel, sc.Projectors()[0].Model().ID)
	assert.Empty(t, project.Validate(project.Capture(sc, nil, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))))
}

func TestRunExportsPatterns(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-config", filepath.Join(dir, "missing.toml"),
		"-export-patterns", filepath.Join(dir, "out"),
		"-export-format", "png",
		"-pattern-width", "64",
		"-pattern-height", "36",
	}, &stdout, &stderr)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, len(texture.Patterns()))
}

func TestRunReportWithoutProject(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-config", filepath.Join(dir, "missing.toml"),
		"-project", filepath.Join(dir, "none.yaml"),
		"-report", "-",
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "PROJECTION MAPPING TECHNICAL REPORT")
	assert.Contains(t, stdout.String(), "Projector 1")
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "show.yaml")

	sc := scene.NewScene("Show")
	defer sc.Release()
	require.NoError(t, populateStarter(sc))
	require.NoError(t, project.Save(path, sc, timeline.NewTimeline(sc)))

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-config", filepath.Join(dir, "missing.toml"),
		"-project", path,
		"-validate",
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "0 issue(s)")

	err = run([]string{
		"-config", filepath.Join(dir, "missing.toml"),
		"-project", filepath.Join(dir, "none.yaml"),
		"-validate",
	}, &stdout, &stderr)
	assert.Error(t, err)
}
