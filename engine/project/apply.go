package project

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
	"github.com/Carmen-Shannon/oxy-projector/engine/property"
	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
	"github.com/Carmen-Shannon/oxy-projector/engine/timeline"
)

// Apply replaces the contents of a scene and timeline with a document. Entries reported as
// warnings are adjusted or skipped; any error aborts before the scene is touched.
//
// Parameters:
//   - f: the document
//   - sc: the scene to fill, cleared first
//   - tl: the timeline to fill, may be nil
//
// Returns:
//   - []Issue: the validation issues
//   - error: ErrInvalid when an issue is an error, or a wrapped entity construction error
func Apply(f File, sc scene.Scene, tl timeline.Timeline) ([]Issue, error) {
	issues := Validate(f)
	if HasErrors(issues) {
		return issues, fmt.Errorf("%w: %d issues", ErrInvalid, len(issues))
	}

	sc.Clear()
	if f.Name != "" {
		sc.SetName(f.Name)
	}
	ids := sc.IDs()

	for _, o := range f.Scene.Objects {
		kind, ok := model.ParseKind(o.Type)
		if !ok || kind == model.KindCustom {
			continue
		}
		d, err := buildObject(ids, kind, o)
		if err != nil {
			return issues, fmt.Errorf("project: object %d: %w", o.ID, err)
		}
		sc.AddDrawable(d)
	}

	for _, pd := range f.Scene.Projectors {
		p, err := buildProjector(ids, pd)
		if err != nil {
			return issues, fmt.Errorf("project: projector %d: %w", pd.ID, err)
		}
		sc.AddProjector(p)
	}

	for _, ld := range f.Scene.Lights {
		l, err := light.NewLightByName(ld.Type,
			light.WithID(ld.ID),
			light.WithName(ld.Name),
			light.WithPosition(ld.Position),
			light.WithDirection(ld.Direction),
			light.WithColor(ld.Color),
			light.WithIntensity(ld.Intensity),
			light.WithRange(ld.Range),
			light.WithEnabled(ld.Enabled),
		)
		if err != nil {
			continue
		}
		sc.AddLight(l)
	}

	if tl != nil {
		applyTimeline(f.Timeline, tl)
	}
	slog.Info("project: applied", "objects", len(sc.Drawables()), "projectors", len(sc.Projectors()),
		"lights", len(sc.Lights()), "issues", len(issues))
	return issues, nil
}

func buildObject(ids *common.IDAllocator, kind model.Kind, o ObjectData) (drawable.Drawable, error) {
	m, err := model.NewPrimitive(kind, o.Name)
	if err != nil {
		return nil, err
	}
	opts := []drawable.DrawableBuilderOption{
		drawable.WithID(o.ID),
		drawable.WithName(o.Name),
		drawable.WithPosition(o.Position),
		drawable.WithScale(o.Scale),
		drawable.WithColor(o.Color),
		drawable.WithVisible(o.Visible),
	}
	if o.CastShadow != nil || o.ReceiveShadow != nil {
		cast, receive := true, true
		if o.CastShadow != nil {
			cast = *o.CastShadow
		}
		if o.ReceiveShadow != nil {
			receive = *o.ReceiveShadow
		}
		opts = append(opts, drawable.WithShadows(cast, receive))
	}
	d, err := drawable.NewDrawable(ids, m, opts...)
	if err != nil {
		return nil, err
	}
	if o.Rotation != ([4]float32{}) {
		d.SetRotation(common.Quat{X: o.Rotation[0], Y: o.Rotation[1], Z: o.Rotation[2], W: o.Rotation[3]}.Normalize())
	}
	return d, nil
}

func buildProjector(ids *common.IDAllocator, pd ProjectorData) (projector.Projector, error) {
	opts := []projector.ProjectorBuilderOption{
		projector.WithID(pd.ID),
		projector.WithName(pd.Name),
		projector.WithOrientation(projector.Orientation(pd.Orientation)),
		projector.WithPosition(pd.Position),
		projector.WithLensShift(pd.LensShiftH, pd.LensShiftV),
		projector.WithKeystone(pd.KeystoneV, pd.KeystoneH),
		projector.WithIntensity(pd.Intensity),
		projector.WithActive(pd.Active),
	}
	if pd.ThrowRatio != 0 {
		opts = append(opts, projector.WithThrowRatio(pd.ThrowRatio))
	}
	if pd.Target != nil {
		opts = append(opts, projector.WithTarget(*pd.Target))
	}
	p, err := projector.NewProjector(ids, pd.ModelID, pd.LensID, opts...)
	if err != nil {
		return nil, err
	}

	applyCorners(pd.KeystoneCorners, p.SetKeystoneCorner)
	applyCorners(pd.CornerPin, p.SetCornerPin)
	if s := pd.SoftEdge; s != nil {
		p.SetSoftEdge(s.Left, s.Right, s.Top, s.Bottom)
		if s.Gamma > 0 {
			p.SetSoftEdgeGamma(s.Gamma)
		}
	}
	return p, nil
}

func applyCorners(c *CornersData, set func(projector.Corner, float32, float32)) {
	if c == nil {
		return
	}
	set(projector.CornerTL, c.TL[0], c.TL[1])
	set(projector.CornerTR, c.TR[0], c.TR[1])
	set(projector.CornerBL, c.BL[0], c.BL[1])
	set(projector.CornerBR, c.BR[0], c.BR[1])
}

func applyTimeline(td TimelineData, tl timeline.Timeline) {
	for _, c := range tl.Clips() {
		tl.RemoveClip(c.Name())
	}
	tl.Stop()
	tl.SetDuration(timeline.DefaultDuration)
	tl.SetDuration(td.Duration)
	tl.SetLoop(td.Loop)
	tl.SetSpeed(td.PlaybackSpeed)

	for _, cd := range td.Clips {
		tl.CreateClip(cd.Name)
		tl.SetActiveClip(cd.Name)
		for _, kd := range cd.Keyframes {
			p, err := property.Parse(kd.Property)
			if err != nil || kd.Time < 0 {
				continue
			}
			tl.InsertKeyframe(timeline.Keyframe{
				Time:     kd.Time,
				TargetID: kd.TargetID,
				Property: p,
				Value:    kd.Value,
				Easing:   kd.Easing,
			})
		}
	}
	if clips := tl.Clips(); len(clips) > 0 {
		tl.SetActiveClip(clips[0].Name())
	}
	tl.Seek(td.CurrentTime)
}
