package surface

import (
	"errors"
	"math"

	"github.com/soypat/plate/internal/d2"
	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Graph is a height field z = F(x, y) over the rectangle Extent. The
// parameters are the x and y coordinates themselves.
type Graph struct {
	F      func(x, y float64) float64
	Extent r2.Box
	s      *solver
	bb     r3.Box
}

// NewGraph returns the height field surface of f over extent.
func NewGraph(f func(x, y float64) float64, extent r2.Box) (*Graph, error) {
	if f == nil {
		return nil, errors.New("nil height function")
	}
	g := &Graph{F: f, Extent: extent}
	dom, err := g.Domain()
	if err != nil {
		return nil, err
	}
	g.s = newSolver(g.Evaluate, dom)
	g.bb = evalBounds(g.Evaluate, dom, 33)
	return g, nil
}

// Wave returns the sinusoidal test surface z = 2 sin(x/5) cos(y/5)
// over [0,8]×[0,8].
func Wave() *Graph {
	g, err := NewGraph(func(x, y float64) float64 {
		return math.Sin(x/5) * math.Cos(y/5) * 2
	}, r2.Box{Max: r2.Vec{X: 8, Y: 8}})
	if err != nil {
		panic(err)
	}
	return g
}

// Dome returns a paraboloid cap z = h(1 - (x²+y²)/r²) over the square
// [-r, r]². It has positive Gaussian curvature everywhere.
func Dome(r, h float64) (*Graph, error) {
	if r <= 0 {
		return nil, errors.New("dome radius must be positive")
	}
	return NewGraph(func(x, y float64) float64 {
		return h * (1 - (x*x+y*y)/(r*r))
	}, r2.Box{Min: r2.Vec{X: -r, Y: -r}, Max: r2.Vec{X: r, Y: r}})
}

func (g *Graph) Domain() (Domain, error) {
	d := Domain{UMin: g.Extent.Min.X, UMax: g.Extent.Max.X, VMin: g.Extent.Min.Y, VMax: g.Extent.Max.Y}
	return d, d.Validate()
}

func (g *Graph) Evaluate(u, v float64) r3.Vec {
	return r3.Vec{X: u, Y: v, Z: g.F(u, v)}
}

func (g *Graph) ClosestParameter(p r3.Vec) (u, v float64, ok bool) {
	if g.s == nil {
		return 0, 0, false
	}
	return g.s.closest(p)
}

func (g *Graph) Bounds() r3.Box { return g.bb }

// Raycast intersects vertical rays analytically. Other rays report no
// hit so callers fall back to tessellated intersection.
func (g *Graph) Raycast(origin, dir r3.Vec) (r3.Vec, bool) {
	if dir.X != 0 || dir.Y != 0 || dir.Z == 0 {
		return r3.Vec{}, false
	}
	if !d2.Box(g.Extent).Contains(d3.Lower(origin)) {
		return r3.Vec{}, false
	}
	hit := g.Evaluate(origin.X, origin.Y)
	if (hit.Z-origin.Z)*dir.Z < 0 {
		return r3.Vec{}, false // surface is behind the ray
	}
	return hit, true
}
