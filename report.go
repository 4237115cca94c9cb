package plate

import (
	"fmt"
	"io"
	"strings"

	"github.com/soypat/plate/boundary"
)

// WriteReport writes a plain text summary of res to w.
func (s *Session) WriteReport(w io.Writer, res *Result) error {
	_, err := io.WriteString(w, s.Report(res))
	return err
}

// Report returns a plain text summary of res.
func (s *Session) Report(res *Result) string {
	var b strings.Builder
	cfg := s.Config
	fmt.Fprintf(&b, "PLATE RUN %s (%s)\n", res.ID, res.Mode)
	fmt.Fprintf(&b, "Status: %s\n\n", res.Status)

	in := res.Info
	fmt.Fprintf(&b, "Surface: %s\n", cfg.Surface.Type)
	fmt.Fprintf(&b, "Area: %.1f m²\n", in.Area)
	fmt.Fprintf(&b, "Size: %.1f x %.1f x %.1f m\n", in.Width, in.Height, in.Length)
	if in.Developable {
		b.WriteString("Surface is developable\n\n")
	} else {
		fmt.Fprintf(&b, "Surface is not developable (K in [%.3g, %.3g]), development is approximate\n\n", in.MinCurvature, in.MaxCurvature)
	}

	if res.Map != nil {
		sz := res.Map.Size()
		fmt.Fprintf(&b, "Development: %.2f x %.2f", sz.X, sz.Y)
		if res.Map.Fallback {
			b.WriteString(" (bounding box)")
		}
		b.WriteString("\n")
	}
	l := res.Layout
	fmt.Fprintf(&b, "Sheets required: %d (%gx%gm)\n", l.Count(), cfg.Sheet.Width, cfg.Sheet.Height)
	fmt.Fprintf(&b, "Grid: %dx%d, %d discarded\n", l.Cols, l.Rows, l.Discarded())
	if res.Quadrants {
		b.WriteString("Projection failed, quadrant sheets used\n")
	}
	b.WriteString("Corner mapping:")
	for st := boundary.Nearest; st <= boundary.Identity; st++ {
		fmt.Fprintf(&b, " %s=%d", st, res.Mapping[st])
	}
	var projected float64
	for i := range l.Tiles {
		projected += l.Tiles[i].ProjectedArea()
	}
	fmt.Fprintf(&b, "\nProjected sheet area: %.1f m²\n", projected)
	fmt.Fprintf(&b, "Welds: %d\n\n", len(res.Welds))

	f := res.Field
	if len(f.Values) > 0 {
		fmt.Fprintf(&b, "Field %s: min %.4g, max %.4g, mean %.4g\n", f.Policy, f.Summary.Min, f.Summary.Max, f.Summary.Mean)
		b.WriteString("ISO levels:")
		for i, lv := range f.Levels.Thresholds {
			fmt.Fprintf(&b, " %g(%d)", lv, f.Summary.Histogram[i])
		}
		fmt.Fprintf(&b, "\nContours: %d\n", len(f.Contours))
		if f.InPlane != 0 || f.Bending != 0 {
			fmt.Fprintf(&b, "Strain split: in-plane %.4g, bending %.4g\n", f.InPlane, f.Bending)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Toolpath O%d: %d paths, %d segments, %d discarded\n",
		res.Program.ID, res.Toolpath.Groups, res.Toolpath.Segments, res.Toolpath.Discarded)
	if sim := res.Simulation; len(sim.Vertices) > 0 {
		fmt.Fprintf(&b, "Forming simulation: max deformation %.1f, deviation %.2f x %.2f x %.2f\n",
			sim.MaxZ, sim.Deviation.X, sim.Deviation.Y, sim.Deviation.Z)
	}
	return b.String()
}
