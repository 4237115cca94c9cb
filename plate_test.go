package plate_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/plate"
	"github.com/soypat/plate/boundary"
	"github.com/soypat/plate/config"
	"github.com/soypat/plate/field"
	"github.com/soypat/plate/surface"
	"github.com/soypat/plate/toolpath"
	"gonum.org/v1/gonum/spatial/r3"
)

// blind is a surface that cannot be sampled, projected onto or hit.
type blind struct{}

func (blind) Domain() (surface.Domain, error)                 { return surface.Domain{}, errors.New("no domain") }
func (blind) Evaluate(u, v float64) r3.Vec                    { return r3.Vec{} }
func (blind) ClosestParameter(r3.Vec) (u, v float64, ok bool) { return 0, 0, false }
func (blind) Bounds() r3.Box                                  { return r3.Box{Max: r3.Vec{X: 12, Y: 4, Z: 1}} }

func cylinderSession(t *testing.T, mode config.Mode) *plate.Session {
	t.Helper()
	s, err := plate.NewSession(config.Defaults(mode))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func onCylinder(p r3.Vec) bool {
	r := math.Hypot(p.X, p.Y)
	return math.Abs(r-3) < 1e-9 && p.Z >= -1e-9 && p.Z <= 8+1e-9
}

func TestRunCylinder(t *testing.T) {
	s := cylinderSession(t, config.ModeDevelop)
	var logs bytes.Buffer
	s.Log = plate.NewLogger(&logs, "debug")
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != plate.OK {
		t.Errorf("want ok status, got %s", res.Status)
	}
	if res.Map.Fallback || res.Table.Len() != 400 {
		t.Errorf("unexpected development: fallback=%v samples=%d", res.Map.Fallback, res.Table.Len())
	}
	l := res.Layout
	if l.Count() != 10 || l.Discarded() != 2 || l.Cols != 2 || l.Rows != 6 {
		t.Errorf("unexpected layout: %d sheets, %d discarded, %dx%d", l.Count(), l.Discarded(), l.Cols, l.Rows)
	}
	if res.Mapping[boundary.Nearest] != 40 || res.Mapping.Degraded() {
		t.Errorf("unexpected mapping stats %v", res.Mapping)
	}
	for _, tl := range l.Tiles {
		for k, p := range tl.Mapped {
			if !onCylinder(p) {
				t.Errorf("tile %d corner %d not on cylinder: %v", tl.ID, k, p)
			}
		}
	}
	if len(res.Welds) == 0 {
		t.Error("expected welds between neighbouring sheets")
	}
	if len(res.Field.Values) != 625 {
		t.Errorf("want 625 field values, got %d", len(res.Field.Values))
	}
	if res.Toolpath.Groups != 10 || res.Program.ID != toolpath.DefaultProgram {
		t.Errorf("unexpected toolpath %+v", res.Toolpath)
	}
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, path := range res.Paths {
		for _, p := range path {
			if !onCylinder(p) {
				t.Fatalf("toolpath point off surface: %v", p)
			}
			minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
		}
	}
	// Sheet outlines span the full cylinder height.
	if minZ > 1e-9 || maxZ < 8-1e-9 {
		t.Errorf("toolpath spans z in [%g, %g], want [0, 8]", minZ, maxZ)
	}
	progMax := math.Inf(-1)
	for _, p := range toolpath.Points(res.Program.Instructions) {
		progMax = math.Max(progMax, p.Z)
	}
	if math.Abs(progMax-8) > 1e-3 {
		t.Errorf("want program to reach z=8, max z is %g", progMax)
	}
	if res.Simulation.MaxZ != field.DefaultDepth || res.Simulation.Deviation.X != 6 {
		t.Errorf("unexpected forming simulation: max z %g, deviation %v", res.Simulation.MaxZ, res.Simulation.Deviation)
	}
	report := s.Report(res)
	for _, want := range []string{"Sheets required: 10", "Status: ok", s.ID.String(), "Projected sheet area", "Forming simulation"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if !strings.Contains(logs.String(), "stage=toolpath") {
		t.Errorf("expected stage events in log output:\n%s", logs.String())
	}
}

func TestAnalyzeCentroid(t *testing.T) {
	cfg := config.Defaults(config.ModeDevelop)
	cfg.Field.Policy = "centroid"
	s, err := plate.NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	fr, err := s.Analyze()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fr.Summary.Max-field.DefaultCentroidK) > 1e-12 {
		t.Errorf("want centroid field to peak at %g, got %g", field.DefaultCentroidK, fr.Summary.Max)
	}
	if math.Abs(fr.InPlane-0.7*fr.Summary.Max) > 1e-15 || math.Abs(fr.Bending-0.3*fr.Summary.Max) > 1e-15 {
		t.Errorf("unexpected strain split %g/%g of %g", fr.InPlane, fr.Bending, fr.Summary.Max)
	}
	report := s.Report(&plate.Result{Field: fr})
	if !strings.Contains(report, "Strain split") {
		t.Errorf("report missing strain split:\n%s", report)
	}
}

func TestProjectCylinder(t *testing.T) {
	s := cylinderSession(t, config.ModeProject)
	res, err := s.Project()
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != plate.OK || res.Quadrants {
		t.Errorf("unexpected status %s quadrants=%v", res.Status, res.Quadrants)
	}
	if res.Layout.Count() != 3 {
		t.Fatalf("want 3 projected sheets, got %d", res.Layout.Count())
	}
	for _, tl := range res.Layout.Tiles {
		for k, p := range tl.Mapped {
			if !onCylinder(p) {
				t.Errorf("tile %d corner %d not on cylinder: %v", tl.ID, k, p)
			}
		}
	}
}

func TestDegradedRuns(t *testing.T) {
	s := &plate.Session{Config: config.Defaults(config.ModeProject), Surface: blind{}}
	res, err := s.Project()
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != plate.Degraded || !res.Quadrants || res.Layout.Count() != 4 {
		t.Errorf("want quadrant fallback, got status %s with %d sheets", res.Status, res.Layout.Count())
	}
	if res.Mapping[boundary.Identity] != 16 {
		t.Errorf("want all corners identity mapped, got %v", res.Mapping)
	}

	s.Config = config.Defaults(config.ModeDevelop)
	res, err = s.Develop()
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != plate.Degraded || !res.Map.Fallback || res.Layout.Count() != 4 {
		t.Errorf("want bounding box development, got status %s fallback=%v sheets=%d",
			res.Status, res.Map.Fallback, res.Layout.Count())
	}
	// Identity keeps the flat corner on the base plane.
	if got := res.Layout.Tiles[0].Mapped[2]; got != (r3.Vec{X: 6, Y: 2}) {
		t.Errorf("unexpected identity mapping %v", got)
	}
}

func TestRunCanceled(t *testing.T) {
	s := cylinderSession(t, config.ModeDevelop)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled error, got %v", err)
	}
	if res.Status != plate.Failed {
		t.Errorf("want failed status, got %s", res.Status)
	}
}

func TestSave(t *testing.T) {
	if testing.Short() {
		t.Skip("renders preview")
	}
	s := cylinderSession(t, config.ModeDevelop)
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a := plate.NewArtifacts(filepath.Join(t.TempDir(), "cyl"))
	if err := s.Save(context.Background(), res, a); err != nil {
		t.Fatal(err)
	}
	for _, path := range a.All() {
		fi, err := os.Stat(path)
		if err != nil {
			t.Error(err)
		} else if fi.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
	fp, err := os.Open(a.GCode)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	prog, err := toolpath.Parse(fp)
	if err != nil {
		t.Fatal(err)
	}
	if len(toolpath.Points(prog.Instructions)) != 2*res.Toolpath.Segments {
		t.Errorf("want two moves per segment, got %d points for %d segments",
			len(toolpath.Points(prog.Instructions)), res.Toolpath.Segments)
	}
}
