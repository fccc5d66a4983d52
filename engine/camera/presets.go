package camera

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-projector/common"
)

// Preset names one of the standard viewpoints.
type Preset string

const (
	PresetTop         Preset = "top"
	PresetFront       Preset = "front"
	PresetLeft        Preset = "left"
	PresetRight       Preset = "right"
	PresetBack        Preset = "back"
	PresetPerspective Preset = "perspective"
)

// presetDistance is the orbit distance of the axis-aligned presets.
const presetDistance float32 = 20

type presetDef struct {
	position           common.Vec3
	up                 common.Vec3
	azimuth, elevation float32
}

var yUp = common.Vec3{0, 1, 0}

var presets = map[Preset]presetDef{
	PresetTop:         {position: common.Vec3{0, presetDistance, 0}, up: common.Vec3{0, 0, -1}, azimuth: 0, elevation: 90},
	PresetFront:       {position: common.Vec3{0, 0, presetDistance}, up: yUp, azimuth: 90, elevation: 0},
	PresetLeft:        {position: common.Vec3{-presetDistance, 0, 0}, up: yUp, azimuth: 0, elevation: 0},
	PresetRight:       {position: common.Vec3{presetDistance, 0, 0}, up: yUp, azimuth: 180, elevation: 0},
	PresetBack:        {position: common.Vec3{0, 0, -presetDistance}, up: yUp, azimuth: 270, elevation: 0},
	PresetPerspective: {position: DefaultPosition, up: yUp, azimuth: DefaultAzimuth, elevation: DefaultElevation},
}

// Presets lists the presets in keyboard shortcut order (keys 1 to 6).
var Presets = []Preset{PresetTop, PresetFront, PresetLeft, PresetRight, PresetBack, PresetPerspective}

// ParsePreset maps a preset name to a Preset.
//
// Parameters:
//   - s: the preset name
//
// Returns:
//   - Preset: the preset
//   - error: an error for unknown names
func ParsePreset(s string) (Preset, error) {
	if _, ok := presets[Preset(s)]; ok {
		return Preset(s), nil
	}
	return "", fmt.Errorf("camera: unknown preset %q", s)
}
