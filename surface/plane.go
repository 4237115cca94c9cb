package surface

import (
	"errors"
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ Raycaster = (*Plane)(nil)

// Plane is the parallelogram Origin + u*U + v*V for u, v in [0, 1].
type Plane struct {
	Origin r3.Vec
	U, V   r3.Vec
}

// NewPlane returns a planar patch spanned by u and v from origin.
func NewPlane(origin, u, v r3.Vec) (*Plane, error) {
	if r3.Norm(r3.Cross(u, v)) < 1e-12 {
		return nil, errors.New("plane span vectors are parallel or zero")
	}
	return &Plane{Origin: origin, U: u, V: v}, nil
}

func (p *Plane) Domain() (Domain, error) {
	d := Domain{UMax: 1, VMax: 1}
	if r3.Norm(r3.Cross(p.U, p.V)) < 1e-12 {
		return d, ErrDomain
	}
	return d, nil
}

func (p *Plane) Evaluate(u, v float64) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(u, p.U), r3.Scale(v, p.V)))
}

// ClosestParameter solves the 2×2 normal equations of the orthogonal
// projection of q onto the plane and clamps to the patch.
func (p *Plane) ClosestParameter(q r3.Vec) (u, v float64, ok bool) {
	d := r3.Sub(q, p.Origin)
	uu, uv, vv := r3.Dot(p.U, p.U), r3.Dot(p.U, p.V), r3.Dot(p.V, p.V)
	du, dv := r3.Dot(d, p.U), r3.Dot(d, p.V)
	det := uu*vv - uv*uv
	if math.Abs(det) < 1e-18 || !d3.Finite(q) {
		return 0, 0, false
	}
	u = (du*vv - dv*uv) / det
	v = (dv*uu - du*uv) / det
	return math.Max(0, math.Min(1, u)), math.Max(0, math.Min(1, v)), true
}

func (p *Plane) Bounds() r3.Box {
	c := [4]r3.Vec{p.Evaluate(0, 0), p.Evaluate(1, 0), p.Evaluate(1, 1), p.Evaluate(0, 1)}
	set := d3.Set(c[:])
	return r3.Box{Min: set.Min(), Max: set.Max()}
}

// Raycast intersects the ray with the patch.
func (p *Plane) Raycast(origin, dir r3.Vec) (r3.Vec, bool) {
	n := r3.Cross(p.U, p.V)
	den := r3.Dot(n, dir)
	if math.Abs(den) < 1e-12 {
		return r3.Vec{}, false
	}
	t := r3.Dot(n, r3.Sub(p.Origin, origin)) / den
	if t < 0 {
		return r3.Vec{}, false
	}
	hit := r3.Add(origin, r3.Scale(t, dir))
	u, v, ok := p.ClosestParameter(hit)
	if !ok || !d3.EqualWithin(p.Evaluate(u, v), hit, 1e-9) {
		return r3.Vec{}, false // outside the patch
	}
	return hit, true
}
