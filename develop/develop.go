// Package develop flattens sampled surfaces onto the plane by scaling
// their parameter domain.
//
// The flattening is an affine map of (u, v) into [0,S]×[0,S]. It is
// only dimensionally faithful for developable surfaces with a close to
// isometric parameterization.
package develop

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/plate/internal/d2"
	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/render"
	"github.com/soypat/plate/sample"
	"github.com/soypat/plate/surface"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultScale is the edge length of the flattened parameter square.
const DefaultScale = 10.0

var (
	ErrScale   = errors.New("development scale must be positive and finite")
	ErrSurface = errors.New("no surface to develop")
)

// Map is the development of a surface. When Fallback is set the map was
// built from the surface bounding box and carries no sample table; flat
// coordinates are then the surface's own XY coordinates.
type Map struct {
	Domain surface.Domain
	Scale  float64
	Table  sample.Table
	// Flat holds the flattened coordinate of each table sample.
	Flat     []r2.Vec
	Extents  r2.Box
	Fallback bool
}

// New develops the sampled surface s. An empty table yields the
// bounding box development of s.
func New(s surface.Surface, table sample.Table, scale float64) (*Map, error) {
	if !(scale > 0) || math.IsInf(scale, 1) {
		return nil, fmt.Errorf("%w: %g", ErrScale, scale)
	}
	if table.Empty() {
		if s == nil {
			return nil, ErrSurface
		}
		return BoundingBox(s.Bounds())
	}
	if err := table.Domain.Validate(); err != nil {
		return nil, err
	}
	m := &Map{
		Domain: table.Domain,
		Scale:  scale,
		Table:  table,
		Flat:   make([]r2.Vec, table.Len()),
	}
	for i, p := range table.Points {
		m.Flat[i] = m.Forward(p.U, p.V)
	}
	m.Extents = r2.Box(d2.Set(m.Flat).Bounds())
	return m, nil
}

// BoundingBox returns a development that is the XY rectangle of box.
func BoundingBox(box r3.Box) (*Map, error) {
	if !d3.Finite(box.Min) || !d3.Finite(box.Max) {
		return nil, errors.New("non-finite bounding box")
	}
	ext := r2.Box{Min: d3.Lower(box.Min), Max: d3.Lower(box.Max)}
	if ext.Max.X <= ext.Min.X || ext.Max.Y <= ext.Min.Y {
		return nil, fmt.Errorf("bounding box has no XY extent: %v", box)
	}
	return &Map{
		Domain:   surface.Domain{UMin: ext.Min.X, UMax: ext.Max.X, VMin: ext.Min.Y, VMax: ext.Max.Y},
		Scale:    1,
		Extents:  ext,
		Fallback: true,
	}, nil
}

// Forward maps parameter (u, v) into the plane. It depends only on the
// domain and scale. For bounding box developments Forward is the identity.
func (m *Map) Forward(u, v float64) r2.Vec {
	if m.Fallback {
		return r2.Vec{X: u, Y: v}
	}
	du, dv := m.Domain.Span()
	return r2.Vec{
		X: (u - m.Domain.UMin) / du * m.Scale,
		Y: (v - m.Domain.VMin) / dv * m.Scale,
	}
}

// HasTable reports whether the development carries samples for
// nearest neighbour inversion.
func (m *Map) HasTable() bool { return !m.Fallback && !m.Table.Empty() }

// Size returns the width and height of the flattened extents.
func (m *Map) Size() r2.Vec { return d2.Box(m.Extents).Size() }

// Mesh returns the flattened grid on the z=0 plane as two triangles per
// sample cell.
func (m *Map) Mesh() []render.Triangle3 {
	if !m.HasTable() {
		v := d2.Box(m.Extents).Vertices()
		var c [4]r3.Vec
		for i := range v {
			c[i] = d3.FromR2(v[i], 0)
		}
		return []render.Triangle3{
			{V: [3]r3.Vec{c[0], c[1], c[2]}},
			{V: [3]r3.Vec{c[0], c[2], c[3]}},
		}
	}
	flat := make([]r3.Vec, len(m.Flat))
	for i := range m.Flat {
		flat[i] = d3.FromR2(m.Flat[i], 0)
	}
	return surface.GridMesh(m.Table.NU, m.Table.NV, flat)
}

// Link pairs a surface sample with its flattened image.
type Link struct {
	P    r3.Vec
	Flat r2.Vec
}

// Links returns every step-th sample paired with its flattened point.
func (m *Map) Links(step int) []Link {
	if step < 1 {
		step = 1
	}
	var links []Link
	for i := 0; i < len(m.Flat); i += step {
		links = append(links, Link{P: m.Table.Points[i].P, Flat: m.Flat[i]})
	}
	return links
}
