package export_test

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/soypat/plate/boundary"
	"github.com/soypat/plate/develop"
	"github.com/soypat/plate/export"
	"github.com/soypat/plate/field"
	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/tile"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func layout(t *testing.T) tile.Layout {
	t.Helper()
	tl := tile.Tiler{SheetW: 6, SheetH: 2, MinArea: 2}
	l, err := tl.Layout(r2.Box{Max: r2.Vec{X: 12, Y: 4}})
	if err != nil {
		t.Fatal(err)
	}
	for i := range l.Tiles {
		tt := &l.Tiles[i]
		for j, p := range tt.Flat {
			tt.Mapped[j] = d3.FromR2(p, 1)
		}
		tt.Center = d3.Set(tt.Mapped[:]).Mean()
		tt.Resolved = true
	}
	return l
}

func TestGeoJSON(t *testing.T) {
	l := layout(t)
	var buf bytes.Buffer
	if err := export.WriteGeoJSON(&buf, l.Tiles); err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != l.Count() {
		t.Fatalf("want %d features, got %d", l.Count(), len(fc.Features))
	}
	for i, f := range fc.Features {
		if a := planar.Area(f.Geometry); math.Abs(a-l.Tiles[i].Area) > 1e-9 {
			t.Errorf("feature %d: want area %v, got %v", i, l.Tiles[i].Area, a)
		}
		if f.Properties["label"] != export.Label(l.Tiles[i]) {
			t.Errorf("feature %d: unexpected label %v", i, f.Properties["label"])
		}
		// Corners mapped straight up keep their flat area in projection.
		if pa, _ := f.Properties["projected_area"].(float64); math.Abs(pa-l.Tiles[i].Area) > 1e-9 {
			t.Errorf("feature %d: want projected area %v, got %v", i, l.Tiles[i].Area, f.Properties["projected_area"])
		}
	}
}

func TestCreateDXF(t *testing.T) {
	l := layout(t)
	path := filepath.Join(t.TempDir(), "layout.dxf")
	dr := export.Drawing{
		Layout: l,
		Welds:  boundary.Welds(l.Tiles, boundary.DefaultWeldDistance),
		Contours: []field.Contour{
			{Level: 2, Value: 150, Center: r3.Vec{X: 6, Y: 2}, Radius: 1, Points: 3},
		},
		Links: []develop.Link{{P: r3.Vec{X: 1, Y: 1, Z: 2}, Flat: r2.Vec{X: 1, Y: 1}}},
	}
	if err := export.CreateDXF(path, dr); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(b)
	for _, want := range []string{export.LayerTiles, export.LayerBoundary, export.LayerWelds, export.LayerDevelopment, "ISO_150", "P4"} {
		if !strings.Contains(text, want) {
			t.Errorf("drawing missing %q", want)
		}
	}
	if err := export.CreateDXF(path, export.Drawing{}); err == nil {
		t.Error("expected error for empty layout")
	}
}

func TestPlot(t *testing.T) {
	var pts []r3.Vec
	var vals []float64
	for i := 0; i < 50; i++ {
		x := float64(i) / 50
		pts = append(pts, r3.Vec{X: x, Y: x * x})
		vals = append(vals, field.Stress{}.Evaluate(i, make([]r3.Vec, 50)))
	}
	var buf bytes.Buffer
	pl := export.DefaultPlot("stress")
	if err := pl.WritePNG(&buf, pts, vals, field.DefaultLevels()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Error("empty image")
	}
	if err := pl.WritePNG(&buf, pts, vals[1:], field.DefaultLevels()); err == nil {
		t.Error("expected error for mismatched values")
	}
}
