// Package boundary maps points of a flattened layout back onto the
// surface they were developed from.
package boundary

import (
	"math"

	"github.com/soypat/plate/develop"
	"github.com/soypat/plate/internal/d2"
	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/surface"
	"github.com/soypat/plate/tile"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Strategy identifies how a flattened point was mapped onto the surface.
type Strategy uint8

// Mapping strategies in the order they are attempted.
const (
	Unresolved Strategy = iota
	// Nearest returns the sample whose flattened point is closest.
	Nearest
	// Closest projects the point onto the surface with ClosestParameter.
	Closest
	// Ray casts axis aligned rays from the point onto the surface.
	Ray
	// Identity returns the flattened point itself on the z=0 plane.
	Identity
)

func (s Strategy) String() string {
	switch s {
	case Nearest:
		return "nearest"
	case Closest:
		return "closest"
	case Ray:
		return "ray"
	case Identity:
		return "identity"
	}
	return "unresolved"
}

// DefaultWeldDistance is the largest distance between tile centers for
// which a weld line is generated.
const DefaultWeldDistance = 8.0

// DefaultTessellation is the per-direction sample count of the mesh
// built for ray projection on surfaces that cannot cast rays themselves.
const DefaultTessellation = 32

// rayDirs are tried in order by the Ray strategy.
var rayDirs = [...]r3.Vec{
	{Z: 1}, {Z: -1},
	{Y: 1}, {Y: -1},
	{X: 1}, {X: -1},
}

// Mapping is the surface point a flattened point resolved to.
type Mapping struct {
	P        r3.Vec
	Strategy Strategy
}

// Mapper resolves flattened points to surface points. Strategies are
// tried in the order Nearest, Closest, Ray, Identity and the first
// success is returned. Mapping never fails. A Mapper is not safe for
// concurrent use.
type Mapper struct {
	surf surface.Surface
	dev  *develop.Map

	memo    map[r2.Vec]Mapping
	tessRes int
	mesh    surface.Mesh
	meshOK  bool
	meshErr error
}

// Option configures a Mapper.
type Option func(*Mapper)

// Memoize caches mappings per flattened coordinate so that corners
// shared by adjacent tiles are resolved once.
func Memoize(enable bool) Option {
	return func(m *Mapper) {
		if enable {
			m.memo = make(map[r2.Vec]Mapping)
		} else {
			m.memo = nil
		}
	}
}

// Tessellation sets the resolution of the mesh used for ray projection.
func Tessellation(n int) Option {
	return func(m *Mapper) {
		if n >= 2 {
			m.tessRes = n
		}
	}
}

// NewMapper returns a mapper onto s using the samples of dev. Either
// may be nil, in which case the strategies that need them are skipped.
func NewMapper(s surface.Surface, dev *develop.Map, opts ...Option) *Mapper {
	m := &Mapper{surf: s, dev: dev, tessRes: DefaultTessellation}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map resolves p. Calls with equal arguments return equal results.
func (m *Mapper) Map(p r2.Vec) Mapping {
	if m.memo != nil {
		if got, ok := m.memo[p]; ok {
			return got
		}
	}
	got := m.resolve(p)
	if m.memo != nil {
		m.memo[p] = got
	}
	return got
}

func (m *Mapper) resolve(p r2.Vec) Mapping {
	if got, ok := m.nearest(p); ok {
		return Mapping{P: got, Strategy: Nearest}
	}
	q := d3.FromR2(p, 0)
	if m.dev == nil || !m.dev.HasTable() {
		if got, ok := m.closest(q); ok {
			return Mapping{P: got, Strategy: Closest}
		}
	}
	if got, ok := m.ray(q); ok {
		return Mapping{P: got, Strategy: Ray}
	}
	return Mapping{P: q, Strategy: Identity}
}

// nearest performs a linear scan of the development samples. Ties are
// broken by table order.
func (m *Mapper) nearest(p r2.Vec) (r3.Vec, bool) {
	if m.dev == nil || !m.dev.HasTable() || !d2.Finite(p) {
		return r3.Vec{}, false
	}
	best, bestDist := -1, math.Inf(1)
	for i, f := range m.dev.Flat {
		if d := d2.Dist(f, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return r3.Vec{}, false
	}
	return m.dev.Table.Points[best].P, true
}

func (m *Mapper) closest(q r3.Vec) (r3.Vec, bool) {
	if m.surf == nil {
		return r3.Vec{}, false
	}
	u, v, ok := m.surf.ClosestParameter(q)
	if !ok {
		return r3.Vec{}, false
	}
	got := m.surf.Evaluate(u, v)
	return got, d3.Finite(got)
}

// ray casts along rayDirs in order. A direction the surface's own
// Raycaster misses is retried on the tessellation.
func (m *Mapper) ray(q r3.Vec) (r3.Vec, bool) {
	if m.surf == nil || !d3.Finite(q) {
		return r3.Vec{}, false
	}
	caster, _ := m.surf.(surface.Raycaster)
	for _, dir := range rayDirs {
		if caster != nil {
			if got, ok := caster.Raycast(q, dir); ok && d3.Finite(got) {
				return got, true
			}
		}
		mesh, err := m.tessellation()
		if err != nil {
			continue
		}
		if got, ok := mesh.Raycast(q, dir); ok && d3.Finite(got) {
			return got, true
		}
	}
	return r3.Vec{}, false
}

// tessellation lazily builds the mesh used for ray projection.
func (m *Mapper) tessellation() (surface.Mesh, error) {
	if !m.meshOK {
		m.mesh, m.meshErr = surface.Tessellate(m.surf, m.tessRes, m.tessRes)
		m.meshOK = true
	}
	return m.mesh, m.meshErr
}

// Stats counts mapped points per strategy.
type Stats [Identity + 1]int

func (s *Stats) add(st Strategy) { s[st]++ }

// Degraded reports whether any point fell back to the identity mapping.
func (s Stats) Degraded() bool { return s[Identity] > 0 }

// Total returns the number of mapped points.
func (s Stats) Total() (n int) {
	for _, c := range s {
		n += c
	}
	return n
}

// MapTile maps the four corners of t and sets its center to their mean.
func (m *Mapper) MapTile(t *tile.Tile) (st Stats) {
	for k, c := range t.Flat {
		got := m.Map(c)
		t.Mapped[k] = got.P
		t.Strategies[k] = uint8(got.Strategy)
		st.add(got.Strategy)
	}
	t.Center = d3.Set(t.Mapped[:]).Mean()
	t.Resolved = true
	return st
}

// MapTiles maps every tile in place.
func (m *Mapper) MapTiles(tiles []tile.Tile) (st Stats) {
	for i := range tiles {
		ts := m.MapTile(&tiles[i])
		for k := range st {
			st[k] += ts[k]
		}
	}
	return st
}

// MapLine maps n+1 evenly spaced points of the segment from a to b.
func (m *Mapper) MapLine(a, b r2.Vec, n int) []Mapping {
	if n < 1 {
		n = 1
	}
	out := make([]Mapping, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		out[i] = m.Map(r2.Add(a, r2.Scale(t, r2.Sub(b, a))))
	}
	return out
}

// Points returns the surface points of mappings.
func Points(mappings []Mapping) []r3.Vec {
	pts := make([]r3.Vec, len(mappings))
	for i := range mappings {
		pts[i] = mappings[i].P
	}
	return pts
}

// Weld joins the mapped centers of two neighbouring tiles.
type Weld struct {
	// IDs of the joined tiles.
	A, B       int
	Start, End r3.Vec
	Distance   float64
}

// Welds returns a weld for every tile pair whose mapped centers are
// closer than maxDist. Pairs are ordered by tile index.
func Welds(tiles []tile.Tile, maxDist float64) []Weld {
	var welds []Weld
	for i := range tiles {
		for j := i + 1; j < len(tiles); j++ {
			a, b := tiles[i].Center, tiles[j].Center
			d := r3.Norm(r3.Sub(b, a))
			if d < maxDist {
				welds = append(welds, Weld{A: tiles[i].ID, B: tiles[j].ID, Start: a, End: b, Distance: d})
			}
		}
	}
	return welds
}
