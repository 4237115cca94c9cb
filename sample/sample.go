// Package sample evaluates parametric surfaces on uniform parameter grids.
package sample

import (
	"errors"
	"fmt"

	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrResolution is returned when fewer than two samples per
	// direction are requested.
	ErrResolution = errors.New("sample resolution must be at least 2×2")
	// ErrDomain is returned when the surface domain cannot be queried.
	ErrDomain = errors.New("surface domain unavailable")
	// ErrEvaluate is returned when the surface yields a non-finite point.
	ErrEvaluate = errors.New("non-finite surface evaluation")
)

// Point is a surface sample.
type Point struct {
	U, V float64
	P    r3.Vec
}

// Table is an NU×NV grid of samples. Point (i, j), with i along u, is
// stored at index i*NV+j.
type Table struct {
	NU, NV int
	Domain surface.Domain
	Points []Point
}

// Sample evaluates s on an nu×nv grid spanning its whole domain with
// both ends included. On error the returned table is empty.
func Sample(s surface.Surface, nu, nv int) (Table, error) {
	if nu < 2 || nv < 2 {
		return Table{}, fmt.Errorf("%w: got %d×%d", ErrResolution, nu, nv)
	}
	if s == nil {
		return Table{}, fmt.Errorf("%w: nil surface", ErrDomain)
	}
	dom, err := s.Domain()
	if err == nil {
		err = dom.Validate()
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrDomain, err)
	}
	du, dv := dom.Span()
	pts := make([]Point, 0, nu*nv)
	for i := 0; i < nu; i++ {
		u := dom.UMin + du*float64(i)/float64(nu-1)
		for j := 0; j < nv; j++ {
			v := dom.VMin + dv*float64(j)/float64(nv-1)
			p := s.Evaluate(u, v)
			if !d3.Finite(p) {
				return Table{}, fmt.Errorf("%w at (u=%g, v=%g)", ErrEvaluate, u, v)
			}
			pts = append(pts, Point{U: u, V: v, P: p})
		}
	}
	return Table{NU: nu, NV: nv, Domain: dom, Points: pts}, nil
}

// Len returns the number of samples in the table.
func (t Table) Len() int { return len(t.Points) }

// Empty reports whether the table holds no samples.
func (t Table) Empty() bool { return len(t.Points) == 0 }

// At returns sample (i, j).
func (t Table) At(i, j int) Point { return t.Points[i*t.NV+j] }

// Positions returns the 3D positions of all samples in table order.
func (t Table) Positions() []r3.Vec {
	pos := make([]r3.Vec, len(t.Points))
	for i := range t.Points {
		pos[i] = t.Points[i].P
	}
	return pos
}
