package sample_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/plate/sample"
	"github.com/soypat/plate/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// brokenSurface has a domain that cannot be queried.
type brokenSurface struct{ surface.Surface }

func (brokenSurface) Domain() (surface.Domain, error) {
	return surface.Domain{}, errors.New("no domain")
}

// nanSurface evaluates to NaN at the domain corner.
type nanSurface struct{ *surface.Plane }

func (s nanSurface) Evaluate(u, v float64) r3.Vec {
	if u == 1 && v == 1 {
		return r3.Vec{X: math.NaN()}
	}
	return s.Plane.Evaluate(u, v)
}

func TestSampleSize(t *testing.T) {
	cyl, _ := surface.NewCylinder(r3.Vec{}, 3, 8)
	for _, s := range []surface.Surface{cyl, surface.Wave(), surface.WaveGrid()} {
		for _, n := range [][2]int{{2, 2}, {20, 20}, {15, 7}, {3, 11}} {
			table, err := sample.Sample(s, n[0], n[1])
			if err != nil {
				t.Fatal(err)
			}
			if table.Len() != n[0]*n[1] || table.NU != n[0] || table.NV != n[1] {
				t.Errorf("%T %v: got table of %d (%d×%d)", s, n, table.Len(), table.NU, table.NV)
			}
		}
	}
}

func TestSampleOrderAndEnds(t *testing.T) {
	s := surface.Wave()
	table, err := sample.Sample(s, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	dom, _ := s.Domain()
	first, last := table.Points[0], table.Points[table.Len()-1]
	if first.U != dom.UMin || first.V != dom.VMin || last.U != dom.UMax || last.V != dom.VMax {
		t.Errorf("domain ends not sampled: first %+v last %+v", first, last)
	}
	// v varies fastest.
	if table.Points[1].U != dom.UMin || table.Points[1].V != 4 {
		t.Errorf("unexpected second sample %+v", table.Points[1])
	}
	for i := 0; i < table.NU; i++ {
		for j := 0; j < table.NV; j++ {
			p := table.At(i, j)
			if p.P != s.Evaluate(p.U, p.V) {
				t.Errorf("sample (%d,%d) does not match surface", i, j)
			}
		}
	}
}

func TestSampleErrors(t *testing.T) {
	pl, _ := surface.NewPlane(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	for _, test := range []struct {
		s      surface.Surface
		nu, nv int
		want   error
	}{
		{s: pl, nu: 1, nv: 5, want: sample.ErrResolution},
		{s: pl, nu: 5, nv: 0, want: sample.ErrResolution},
		{s: brokenSurface{pl}, nu: 5, nv: 5, want: sample.ErrDomain},
		{s: nil, nu: 5, nv: 5, want: sample.ErrDomain},
		{s: nanSurface{pl}, nu: 5, nv: 5, want: sample.ErrEvaluate},
	} {
		table, err := sample.Sample(test.s, test.nu, test.nv)
		if !errors.Is(err, test.want) {
			t.Errorf("want %v, got %v", test.want, err)
		}
		if !table.Empty() {
			t.Error("failed sampling must return an empty table")
		}
	}
}
