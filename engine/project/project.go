// Package project saves and loads editing sessions as YAML documents and renders plain-text
// technical reports of the projector setup.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
	"gopkg.in/yaml.v3"
)

// Version is the document version written by Save and accepted by Load.
const Version = "1.0"

// File is the persisted form of a session.
type File struct {
	Version  string       `yaml:"version"`
	Created  string       `yaml:"created"`
	Name     string       `yaml:"name,omitempty"`
	Scene    SceneData    `yaml:"scene"`
	Timeline TimelineData `yaml:"timeline"`
}

// SceneData lists the entities of the scene.
type SceneData struct {
	Objects    []ObjectData    `yaml:"objects"`
	Projectors []ProjectorData `yaml:"projectors"`
	Lights     []LightData     `yaml:"lights,omitempty"`
}

// ObjectData is one drawable.
type ObjectData struct {
	ID            uint64     `yaml:"id"`
	Name          string     `yaml:"name"`
	Type          string     `yaml:"type"`
	Position      [3]float32 `yaml:"position,flow"`
	Rotation      [4]float32 `yaml:"rotation,flow,omitempty"` // quaternion x, y, z, w
	Scale         [3]float32 `yaml:"scale,flow"`
	Visible       bool       `yaml:"visible"`
	Color         [3]float32 `yaml:"color,flow"`
	CastShadow    *bool      `yaml:"cast_shadow,omitempty"`
	ReceiveShadow *bool      `yaml:"receive_shadow,omitempty"`
}

// ProjectorData is one projector. The fields after Active are optional on load.
type ProjectorData struct {
	ID         uint64     `yaml:"id"`
	Name       string     `yaml:"name"`
	ModelID    string     `yaml:"model_id"`
	LensID     string     `yaml:"lens_id"`
	Position   [3]float32 `yaml:"position,flow"`
	ThrowRatio float32    `yaml:"throw_ratio"`
	LensShiftH float32    `yaml:"lens_shift_h"`
	LensShiftV float32    `yaml:"lens_shift_v"`
	KeystoneH  float32    `yaml:"keystone_h"`
	KeystoneV  float32    `yaml:"keystone_v"`
	Intensity  float32    `yaml:"intensity"`
	Active     bool       `yaml:"active"`

	Target          *[3]float32   `yaml:"target,flow,omitempty"`
	Orientation     string        `yaml:"orientation,omitempty"`
	KeystoneCorners *CornersData  `yaml:"keystone_corners,omitempty"`
	CornerPin       *CornersData  `yaml:"corner_pin,omitempty"`
	SoftEdge        *SoftEdgeData `yaml:"soft_edge,omitempty"`
}

// CornersData holds one X/Y offset per image corner in percent.
type CornersData struct {
	TL [2]float32 `yaml:"tl,flow"`
	TR [2]float32 `yaml:"tr,flow"`
	BL [2]float32 `yaml:"bl,flow"`
	BR [2]float32 `yaml:"br,flow"`
}

// SoftEdgeData is the blend margin configuration.
type SoftEdgeData struct {
	Left   float32 `yaml:"left"`
	Right  float32 `yaml:"right"`
	Top    float32 `yaml:"top"`
	Bottom float32 `yaml:"bottom"`
	Gamma  float32 `yaml:"gamma"`
}

// LightData is one scene light.
type LightData struct {
	ID        uint64     `yaml:"id"`
	Name      string     `yaml:"name"`
	Type      string     `yaml:"type"`
	Position  [3]float32 `yaml:"position,flow"`
	Direction [3]float32 `yaml:"direction,flow"`
	Color     [3]float32 `yaml:"color,flow"`
	Intensity float32    `yaml:"intensity"`
	Range     float32    `yaml:"range"`
	Enabled   bool       `yaml:"enabled"`
}

// TimelineData is the playback state and clips of the timeline.
type TimelineData struct {
	Duration      float32    `yaml:"duration"`
	CurrentTime   float32    `yaml:"current_time"`
	Loop          bool       `yaml:"loop"`
	PlaybackSpeed float32    `yaml:"playback_speed"`
	Clips         []ClipData `yaml:"clips"`
}

// ClipData is one animation clip.
type ClipData struct {
	Name      string         `yaml:"name"`
	Duration  float32        `yaml:"duration"`
	Keyframes []KeyframeData `yaml:"keyframes"`
}

// KeyframeData is one keyframe. Property holds the registry name, e.g. "position.x".
type KeyframeData struct {
	Time     float32 `yaml:"time"`
	TargetID uint64  `yaml:"target_id"`
	Property string  `yaml:"property"`
	Value    float32 `yaml:"value"`
	Easing   string  `yaml:"easing"`
}

// Capture snapshots a scene and timeline into a File.
//
// Parameters:
//   - sc: the scene
//   - tl: the timeline, nil for an empty one
//   - created: the creation timestamp written in RFC 3339
//
// Returns:
//   - File: the document
func Capture(sc scene.Scene, tl timeline.Timeline, created time.Time) File {
	f := File{
		Version: Version,
		Created: created.Format(time.RFC3339),
		Name:    sc.Name(),
	}
	for _, d := range sc.Drawables() {
		f.Scene.Objects = append(f.Scene.Objects, captureObject(d))
	}
	for _, p := range sc.Projectors() {
		f.Scene.Projectors = append(f.Scene.Projectors, captureProjector(p))
	}
	for _, l := range sc.Lights() {
		f.Scene.Lights = append(f.Scene.Lights, captureLight(l))
	}
	f.Timeline = captureTimeline(tl)
	return f
}

func captureObject(d drawable.Drawable) ObjectData {
	q := d.Rotation()
	cast, receive := d.CastShadow(), d.ReceiveShadow()
	return ObjectData{
		ID:            d.ID(),
		Name:          d.Name(),
		Type:          string(d.Kind()),
		Position:      d.Position(),
		Rotation:      [4]float32{q.X, q.Y, q.Z, q.W},
		Scale:         d.Scale(),
		Visible:       d.Visible(),
		Color:         d.Color(),
		CastShadow:    &cast,
		ReceiveShadow: &receive,
	}
}

func captureProjector(p projector.Projector) ProjectorData {
	shiftH, shiftV := p.LensShift()
	keyV, keyH := p.Keystone()
	target := [3]float32(p.Target())
	soft := p.SoftEdge()
	return ProjectorData{
		ID:              p.ID(),
		Name:            p.Name(),
		ModelID:         p.Model().ID,
		LensID:          p.Lens().ID,
		Position:        p.Position(),
		ThrowRatio:      p.ThrowRatio(),
		LensShiftH:      shiftH,
		LensShiftV:      shiftV,
		KeystoneH:       keyH,
		KeystoneV:       keyV,
		Intensity:       p.Intensity(),
		Active:          p.Active(),
		Target:          &target,
		Orientation:     string(p.Orientation()),
		KeystoneCorners: cornersData(p.KeystoneCorners()),
		CornerPin:       cornersData(p.CornerPin()),
		SoftEdge: &SoftEdgeData{
			Left:   soft.Left,
			Right:  soft.Right,
			Top:    soft.Top,
			Bottom: soft.Bottom,
			Gamma:  soft.Gamma,
		},
	}
}

func cornersData(c common.Corners) *CornersData {
	return &CornersData{TL: c.TL, TR: c.TR, BL: c.BL, BR: c.BR}
}

func captureLight(l light.Light) LightData {
	return LightData{
		ID:        l.ID(),
		Name:      l.Name(),
		Type:      l.Type().String(),
		Position:  l.Position(),
		Direction: l.Direction(),
		Color:     l.Color(),
		Intensity: l.Intensity(),
		Range:     l.Range(),
		Enabled:   l.Enabled(),
	}
}

func captureTimeline(tl timeline.Timeline) TimelineData {
	if tl == nil {
		return TimelineData{
			Duration:      timeline.DefaultDuration,
			PlaybackSpeed: timeline.DefaultSpeed,
		}
	}
	td := TimelineData{
		Duration:      tl.Duration(),
		CurrentTime:   tl.CurrentTime(),
		Loop:          tl.Loop(),
		PlaybackSpeed: tl.Speed(),
	}
	for _, c := range tl.Clips() {
		cd := ClipData{Name: c.Name(), Duration: c.Duration()}
		for _, k := range c.Keyframes() {
			cd.Keyframes = append(cd.Keyframes, KeyframeData{
				Time:     k.Time,
				TargetID: k.TargetID,
				Property: k.Property.String(),
				Value:    k.Value,
				Easing:   k.Easing,
			})
		}
		td.Clips = append(td.Clips, cd)
	}
	return td
}

// Marshal encodes a File as YAML.
//
// Parameters:
//   - f: the document
//
// Returns:
//   - []byte: the YAML bytes
//   - error: a wrapped encode error
func Marshal(f File) ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("project: encode: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a YAML document and checks its version.
//
// Parameters:
//   - data: the YAML bytes
//
// Returns:
//   - File: the document
//   - error: a wrapped decode error, or ErrUnsupportedVersion
func Unmarshal(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("project: decode: %w", err)
	}
	if f.Version != Version {
		return File{}, fmt.Errorf("%w: %q", ErrUnsupportedVersion, f.Version)
	}
	return f, nil
}

// Save captures the session and writes it to path, creating parent directories as needed.
//
// Parameters:
//   - path: the file to write
//   - sc: the scene
//   - tl: the timeline, may be nil
//
// Returns:
//   - error: a wrapped encode or write error
func Save(path string, sc scene.Scene, tl timeline.Timeline) error {
	data, err := Marshal(Capture(sc, tl, time.Now()))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("project: create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("project: write %s: %w", path, err)
	}
	return nil
}

// Load reads a project file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - File: the document
//   - error: a wrapped read or decode error
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("project: read %s: %w", path, err)
	}
	f, err := Unmarshal(data)
	if err != nil {
		return File{}, fmt.Errorf("project: load %s: %w", path, err)
	}
	return f, nil
}
