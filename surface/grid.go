package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a bilinear patch through a NU×NV grid of control points
// stored with index i*NV+j. Its domain is [0, NU-1]×[0, NV-1] so that
// integer parameters land exactly on grid points.
type Grid struct {
	NU, NV int
	Points []r3.Vec
	s      *solver
}

// NewGrid returns the bilinear surface through points.
func NewGrid(nu, nv int, points []r3.Vec) (*Grid, error) {
	if nu < 2 || nv < 2 {
		return nil, errors.New("grid needs at least 2×2 points")
	}
	if len(points) != nu*nv {
		return nil, fmt.Errorf("grid of %d×%d needs %d points, got %d", nu, nv, nu*nv, len(points))
	}
	for i, p := range points {
		if !d3.Finite(p) {
			return nil, fmt.Errorf("grid point %d is not finite", i)
		}
	}
	g := &Grid{NU: nu, NV: nv, Points: append([]r3.Vec(nil), points...)}
	dom, _ := g.Domain()
	g.s = newSolver(g.Evaluate, dom)
	return g, nil
}

// WaveGrid returns the 5×5 point grid sampled from z = 2 sin(x/5) cos(y/5)
// at 2 unit spacing.
func WaveGrid() *Grid {
	pts := make([]r3.Vec, 0, 25)
	for i := 0; i < 5; i++ {
		x := float64(i) * 2
		for j := 0; j < 5; j++ {
			y := float64(j) * 2
			pts = append(pts, r3.Vec{X: x, Y: y, Z: math.Sin(x/5) * math.Cos(y/5) * 2})
		}
	}
	g, err := NewGrid(5, 5, pts)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grid) Domain() (Domain, error) {
	d := Domain{UMax: float64(g.NU - 1), VMax: float64(g.NV - 1)}
	return d, d.Validate()
}

func (g *Grid) Evaluate(u, v float64) r3.Vec {
	u = math.Max(0, math.Min(float64(g.NU-1), u))
	v = math.Max(0, math.Min(float64(g.NV-1), v))
	i := int(math.Min(math.Floor(u), float64(g.NU-2)))
	j := int(math.Min(math.Floor(v), float64(g.NV-2)))
	fu, fv := u-float64(i), v-float64(j)
	p00 := g.Points[i*g.NV+j]
	p01 := g.Points[i*g.NV+j+1]
	p10 := g.Points[(i+1)*g.NV+j]
	p11 := g.Points[(i+1)*g.NV+j+1]
	a := r3.Add(r3.Scale(1-fv, p00), r3.Scale(fv, p01))
	b := r3.Add(r3.Scale(1-fv, p10), r3.Scale(fv, p11))
	return r3.Add(r3.Scale(1-fu, a), r3.Scale(fu, b))
}

func (g *Grid) ClosestParameter(p r3.Vec) (u, v float64, ok bool) {
	if g.s == nil {
		return 0, 0, false
	}
	return g.s.closest(p)
}

// Bounds of a bilinear patch are the bounds of its control points.
func (g *Grid) Bounds() r3.Box {
	set := d3.Set(g.Points)
	return r3.Box{Min: set.Min(), Max: set.Max()}
}
