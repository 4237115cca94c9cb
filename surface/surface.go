// Package surface defines the parametric surface capability consumed by
// the plate forming pipeline along with a few analytic and sampled
// adapters.
package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a parametric surface patch mapping a rectangular
// parameter domain into 3D space.
type Surface interface {
	// Domain returns the parameter domain of the surface. Surfaces
	// whose domain cannot be queried return an error.
	Domain() (Domain, error)
	// Evaluate returns the point at parameter (u, v).
	Evaluate(u, v float64) r3.Vec
	// ClosestParameter returns the parameter of the surface point
	// closest to p. ok is false if no parameter could be found.
	ClosestParameter(p r3.Vec) (u, v float64, ok bool)
	// Bounds returns the 3D bounding box of the surface.
	Bounds() r3.Box
}

// Raycaster is implemented by surfaces that can intersect rays
// directly. dir need not be normalized.
type Raycaster interface {
	Raycast(origin, dir r3.Vec) (r3.Vec, bool)
}

// ErrDomain is returned when a surface domain is degenerate or non-finite.
var ErrDomain = errors.New("invalid surface domain")

// Domain is a rectangular parameter domain.
type Domain struct {
	UMin, UMax float64
	VMin, VMax float64
}

// Validate returns an error wrapping ErrDomain if a span of d is
// non-finite or not strictly positive.
func (d Domain) Validate() error {
	for _, f := range [4]float64{d.UMin, d.UMax, d.VMin, d.VMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite bound in %v", ErrDomain, d)
		}
	}
	if d.UMax <= d.UMin || d.VMax <= d.VMin {
		return fmt.Errorf("%w: empty span in %v", ErrDomain, d)
	}
	return nil
}

// Span returns the lengths of the u and v intervals.
func (d Domain) Span() (du, dv float64) {
	return d.UMax - d.UMin, d.VMax - d.VMin
}

// Lerp returns the parameter at fractions (fu, fv) of the domain.
func (d Domain) Lerp(fu, fv float64) (u, v float64) {
	du, dv := d.Span()
	return d.UMin + du*fu, d.VMin + dv*fv
}

// Clamp limits (u, v) to the domain.
func (d Domain) Clamp(u, v float64) (float64, float64) {
	return math.Max(d.UMin, math.Min(d.UMax, u)), math.Max(d.VMin, math.Min(d.VMax, v))
}

func (d Domain) String() string {
	return fmt.Sprintf("u[%g, %g] v[%g, %g]", d.UMin, d.UMax, d.VMin, d.VMax)
}

// evalBounds computes the bounding box of f over dom by sampling an
// n×n grid. Used by adapters with no closed form box.
func evalBounds(f func(u, v float64) r3.Vec, dom Domain, n int) r3.Box {
	first := f(dom.UMin, dom.VMin)
	bb := d3.Box{Min: first, Max: first}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			bb = bb.Include(f(dom.Lerp(float64(i)/float64(n-1), float64(j)/float64(n-1))))
		}
	}
	return r3.Box(bb)
}
