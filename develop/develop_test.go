package develop_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/plate/develop"
	"github.com/soypat/plate/sample"
	"github.com/soypat/plate/surface"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDevelopCylinder(t *testing.T) {
	cyl, _ := surface.NewCylinder(r3.Vec{}, 3, 8)
	table, err := sample.Sample(cyl, 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	m, err := develop.New(cyl, table, develop.DefaultScale)
	if err != nil {
		t.Fatal(err)
	}
	if m.Fallback || !m.HasTable() {
		t.Fatal("expected table backed development")
	}
	want := r2.Box{Max: r2.Vec{X: 10, Y: 10}}
	if m.Extents != want {
		t.Errorf("want extents %v, got %v", want, m.Extents)
	}
	if len(m.Flat) != table.Len() {
		t.Fatalf("flat points %d != samples %d", len(m.Flat), table.Len())
	}
	for i, p := range table.Points {
		f := m.Forward(p.U, p.V)
		if f != m.Flat[i] {
			t.Errorf("sample %d: forward %v differs from stored %v", i, f, m.Flat[i])
		}
	}
	mid := m.Forward(3*math.Pi, 4)
	if math.Abs(mid.X-5) > 1e-12 || math.Abs(mid.Y-5) > 1e-12 {
		t.Errorf("domain center should map to (5,5), got %v", mid)
	}
	if got := len(m.Mesh()); got != 2*19*19 {
		t.Errorf("want %d mesh triangles, got %d", 2*19*19, got)
	}
	if got := len(m.Links(5)); got != 80 {
		t.Errorf("want 80 links, got %d", got)
	}
}

func TestForwardIgnoresSurface(t *testing.T) {
	wave := surface.Wave()
	table, _ := sample.Sample(wave, 4, 4)
	m, err := develop.New(wave, table, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Forward depends on domain and scale only.
	m.Table = sample.Table{}
	if got := m.Forward(8, 4); got != (r2.Vec{X: 2, Y: 1}) {
		t.Errorf("want (2,1), got %v", got)
	}
}

func TestBoundingBoxFallback(t *testing.T) {
	wave := surface.Wave()
	m, err := develop.New(wave, sample.Table{}, develop.DefaultScale)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Fallback || m.HasTable() {
		t.Fatal("expected bounding box development")
	}
	bb := wave.Bounds()
	want := r2.Box{Min: r2.Vec{X: bb.Min.X, Y: bb.Min.Y}, Max: r2.Vec{X: bb.Max.X, Y: bb.Max.Y}}
	if m.Extents != want {
		t.Errorf("want extents %v, got %v", want, m.Extents)
	}
	if got := m.Forward(1.5, 2.5); got != (r2.Vec{X: 1.5, Y: 2.5}) {
		t.Errorf("fallback forward should be identity, got %v", got)
	}
	if len(m.Mesh()) != 2 {
		t.Error("fallback mesh should be a single rectangle")
	}
	if len(m.Links(1)) != 0 {
		t.Error("fallback development has no links")
	}
}

func TestDevelopErrors(t *testing.T) {
	wave := surface.Wave()
	table, _ := sample.Sample(wave, 3, 3)
	for _, scale := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := develop.New(wave, table, scale); !errors.Is(err, develop.ErrScale) {
			t.Errorf("scale %v: want ErrScale, got %v", scale, err)
		}
	}
	if _, err := develop.New(nil, sample.Table{}, 1); !errors.Is(err, develop.ErrSurface) {
		t.Errorf("want ErrSurface, got %v", err)
	}
	if _, err := develop.BoundingBox(r3.Box{Max: r3.Vec{X: 1, Z: 1}}); err == nil {
		t.Error("expected error for box without Y extent")
	}
}
