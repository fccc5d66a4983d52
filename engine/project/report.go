package project

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/engine/scene"
)

// WriteReport writes a plain-text technical report of the projector setup: one spec sheet per
// projector followed by scene totals.
//
// Parameters:
//   - w: the destination
//   - sc: the scene
//   - generated: the timestamp printed in the header
//
// Returns:
//   - error: the first write error
func WriteReport(w io.Writer, sc scene.Scene, generated time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(tw, rule)
	fmt.Fprintln(tw, "PROJECTION MAPPING TECHNICAL REPORT")
	fmt.Fprintln(tw, rule)
	fmt.Fprintf(tw, "Scene:\t%s\n", sc.Name())
	fmt.Fprintf(tw, "Generated:\t%s\n", generated.Format(time.RFC3339))
	fmt.Fprintln(tw)

	projectors := sc.Projectors()
	for i, p := range projectors {
		s := p.Spec()
		state := "inactive"
		if s.Active {
			state = "active"
		}
		fmt.Fprintf(tw, "PROJECTOR %d: %s (%s)\n", i+1, s.Name, state)
		fmt.Fprintln(tw, strings.Repeat("-", 40))
		fmt.Fprintf(tw, "  Model:\t%s\n", s.ModelName)
		fmt.Fprintf(tw, "  Brightness:\t%d lm\n", s.Lumens)
		fmt.Fprintf(tw, "  Resolution:\t%s\n", s.Resolution)
		fmt.Fprintf(tw, "  Aspect ratio:\t%.3f\n", s.Aspect)
		fmt.Fprintf(tw, "  Lens:\t%s\n", s.LensName)
		fmt.Fprintf(tw, "  Throw ratio:\t%.2f:1\n", s.ThrowRatio)
		fmt.Fprintf(tw, "  Field of view:\t%.1f deg\n", s.FOV)
		fmt.Fprintf(tw, "  Position:\t(%.2f, %.2f, %.2f) m\n", s.Position[0], s.Position[1], s.Position[2])
		fmt.Fprintf(tw, "  Target:\t(%.2f, %.2f, %.2f) m\n", s.Target[0], s.Target[1], s.Target[2])
		fmt.Fprintf(tw, "  Intensity:\t%.0f%%\n", s.Intensity*100)
		fmt.Fprintf(tw, "  Lens shift:\tH %+.1f%%  V %+.1f%%\n", s.LensShiftH, s.LensShiftV)
		fmt.Fprintf(tw, "  Keystone:\tH %+.1f%%  V %+.1f%%\n", s.KeystoneH, s.KeystoneV)
		fmt.Fprintf(tw, "  Throw distance:\t%.2f m\n", s.Distance)
		fmt.Fprintf(tw, "  Image size:\t%.2f x %.2f m\n", s.ImageWidth, s.ImageHeight)
		fmt.Fprintf(tw, "  Illuminance:\t%.0f lx\n", s.Illuminance)
		fmt.Fprintln(tw)
	}

	st := sc.Stats()
	fmt.Fprintln(tw, "SUMMARY")
	fmt.Fprintln(tw, strings.Repeat("-", 40))
	fmt.Fprintf(tw, "  Projectors:\t%d (%d active)\n", st.Projectors, st.ActiveProjectors)
	fmt.Fprintf(tw, "  Objects:\t%d (%d visible)\n", st.Objects, st.VisibleObjects)
	fmt.Fprintf(tw, "  Lights:\t%d\n", st.Lights)
	fmt.Fprintln(tw, rule)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("project: write report: %w", err)
	}
	return nil
}
