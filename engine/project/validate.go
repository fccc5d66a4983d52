package project

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
)

// IssueLevel represents severity of validation issue.
type IssueLevel string

const (
	// IssueError indicates an entry that cannot be loaded.
	IssueError IssueLevel = "error"
	// IssueWarning indicates an entry that loads with adjustments or is skipped.
	IssueWarning IssueLevel = "warning"
)

// Issue codes.
const (
	CodeVersion         = "version"
	CodeCreated         = "created"
	CodeDuplicateID     = "duplicate_id"
	CodeUnknownType     = "unknown_type"
	CodeUnknownModel    = "unknown_model"
	CodeUnknownLens     = "unknown_lens"
	CodeIncompatible    = "incompatible_lens"
	CodeThrowRange      = "throw_range"
	CodeOrientation     = "orientation"
	CodeUnknownLight    = "unknown_light"
	CodeUnknownProperty = "unknown_property"
	CodeUnknownTarget   = "unknown_target"
	CodeUnknownEasing   = "unknown_easing"
	CodeTime            = "time"
)

// Issue represents a validation issue.
type Issue struct {
	Level   IssueLevel `yaml:"level"`
	Code    string     `yaml:"code,omitempty"`
	Message string     `yaml:"message"`
	Path    string     `yaml:"path,omitempty"`
}

// String formats the issue for logs.
func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Level, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Level, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Level == IssueError {
			return true
		}
	}
	return false
}

// Validate checks a document against the catalogs and the property registry.
//
// Parameters:
//   - f: the document
//
// Returns:
//   - []Issue: every problem found, in document order
func Validate(f File) []Issue {
	var out []Issue
	add := func(level IssueLevel, code, path, format string, args ...any) {
		out = append(out, Issue{Level: level, Code: code, Message: fmt.Sprintf(format, args...), Path: path})
	}

	if f.Version != Version {
		add(IssueError, CodeVersion, "version", "unsupported version %q", f.Version)
	}
	if f.Created != "" {
		if _, err := time.Parse(time.RFC3339, f.Created); err != nil {
			add(IssueWarning, CodeCreated, "created", "not an RFC 3339 timestamp: %q", f.Created)
		}
	}

	ids := map[uint64]string{}
	claim := func(id uint64, path string) {
		if id == 0 {
			return
		}
		if prev, ok := ids[id]; ok {
			add(IssueError, CodeDuplicateID, path, "id %d already used by %s", id, prev)
			return
		}
		ids[id] = path
	}

	for i, o := range f.Scene.Objects {
		path := fmt.Sprintf("scene.objects[%d]", i)
		claim(o.ID, path)
		if k, ok := model.ParseKind(o.Type); !ok || k == model.KindCustom {
			add(IssueWarning, CodeUnknownType, path, "object type %q cannot be rebuilt, skipped", o.Type)
		}
	}

	for i, p := range f.Scene.Projectors {
		path := fmt.Sprintf("scene.projectors[%d]", i)
		claim(p.ID, path)
		out = append(out, validateProjector(p, path)...)
	}

	for i, l := range f.Scene.Lights {
		path := fmt.Sprintf("scene.lights[%d]", i)
		claim(l.ID, path)
		if _, err := light.ParseLightType(l.Type); err != nil {
			add(IssueWarning, CodeUnknownLight, path, "light type %q, skipped", l.Type)
		}
	}

	if f.Timeline.Duration < 0 {
		add(IssueWarning, CodeTime, "timeline.duration", "negative duration %g, default used", f.Timeline.Duration)
	}
	for ci, c := range f.Timeline.Clips {
		for ki, k := range c.Keyframes {
			path := fmt.Sprintf("timeline.clips[%d].keyframes[%d]", ci, ki)
			if _, err := property.Parse(k.Property); err != nil {
				add(IssueWarning, CodeUnknownProperty, path, "property %q, skipped", k.Property)
			}
			if _, ok := ids[k.TargetID]; !ok {
				add(IssueWarning, CodeUnknownTarget, path, "target %d is not in the scene", k.TargetID)
			}
			if k.Easing != "" && !timeline.IsEasing(k.Easing) {
				add(IssueWarning, CodeUnknownEasing, path, "easing %q, linear used", k.Easing)
			}
			if k.Time < 0 {
				add(IssueWarning, CodeTime, path, "negative time %g, skipped", k.Time)
			}
		}
	}
	return out
}

func validateProjector(p ProjectorData, path string) []Issue {
	var out []Issue
	m, ok := projector.LookupModel(p.ModelID)
	if !ok {
		return append(out, Issue{Level: IssueError, Code: CodeUnknownModel, Path: path,
			Message: fmt.Sprintf("unknown projector model %q", p.ModelID)})
	}
	lensID := p.LensID
	if lensID == "" {
		lensID = m.DefaultLens
	}
	lens, ok := projector.LookupLens(lensID)
	if !ok {
		return append(out, Issue{Level: IssueError, Code: CodeUnknownLens, Path: path,
			Message: fmt.Sprintf("unknown lens %q", lensID)})
	}

	compatible := false
	for _, id := range m.CompatibleLenses {
		if id == lensID {
			compatible = true
			break
		}
	}
	if !compatible {
		out = append(out, Issue{Level: IssueWarning, Code: CodeIncompatible, Path: path,
			Message: fmt.Sprintf("lens %q is not listed for model %q", lensID, p.ModelID)})
	}
	if p.ThrowRatio != 0 && (p.ThrowRatio < lens.ThrowMin || p.ThrowRatio > lens.ThrowMax) {
		out = append(out, Issue{Level: IssueWarning, Code: CodeThrowRange, Path: path,
			Message: fmt.Sprintf("throw ratio %.3f outside lens range [%.2f, %.2f], clamped", p.ThrowRatio, lens.ThrowMin, lens.ThrowMax)})
	}
	switch projector.Orientation(p.Orientation) {
	case "", projector.OrientationLandscape, projector.OrientationPortrait:
	default:
		out = append(out, Issue{Level: IssueWarning, Code: CodeOrientation, Path: path,
			Message: fmt.Sprintf("orientation %q, landscape used", p.Orientation)})
	}
	return out
}
