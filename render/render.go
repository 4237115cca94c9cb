package render

import (
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertices are ordered counter-clockwise
// when viewed from the side the normal points to.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle. Degenerate
// triangles return the zero vector.
func (t Triangle3) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))
	norm := r3.Norm(n)
	if norm == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, n)
}

// Area returns the area of the triangle.
func (t Triangle3) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0])))
}

// Degenerate returns true if two vertices of the triangle are within tol of each other.
func (t Triangle3) Degenerate(tol float64) bool {
	return r3.Norm(r3.Sub(t.V[0], t.V[1])) <= tol ||
		r3.Norm(r3.Sub(t.V[1], t.V[2])) <= tol ||
		r3.Norm(r3.Sub(t.V[2], t.V[0])) <= tol
}

// Intersect returns the distance along the ray (origin, dir) at which
// the ray hits the triangle. dir need not be normalized; the returned
// distance is in units of dir. Hits behind the origin are not reported.
// Möller–Trumbore algorithm.
func (t Triangle3) Intersect(origin, dir r3.Vec) (float64, bool) {
	const eps = 1e-12
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	p := r3.Cross(dir, e2)
	det := r3.Dot(e1, p)
	if math.Abs(det) < eps {
		return 0, false // parallel to triangle plane
	}
	inv := 1 / det
	s := r3.Sub(origin, t.V[0])
	u := r3.Dot(s, p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(s, e1)
	v := r3.Dot(dir, q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	dist := r3.Dot(e2, q) * inv
	if dist < 0 {
		return 0, false
	}
	return dist, true
}

// Bounds returns the bounding box of a model. An empty model returns
// the zero box.
func Bounds(model []Triangle3) r3.Box {
	if len(model) == 0 {
		return r3.Box{}
	}
	bb := d3.Box{Min: model[0].V[0], Max: model[0].V[0]}
	for i := range model {
		for _, v := range model[i].V {
			bb = bb.Include(v)
		}
	}
	return r3.Box(bb)
}

// Raycast returns the closest intersection of the ray with the model.
func Raycast(model []Triangle3, origin, dir r3.Vec) (r3.Vec, bool) {
	best := math.Inf(1)
	for i := range model {
		d, ok := model[i].Intersect(origin, dir)
		if ok && d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return r3.Vec{}, false
	}
	return r3.Add(origin, r3.Scale(best, dir)), true
}
