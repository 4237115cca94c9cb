package surface

import (
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// DevelopableTol is the largest absolute Gaussian curvature for which a
// surface is considered developable.
const DevelopableTol = 1e-6

// Info summarizes the geometry of a surface.
type Info struct {
	Area float64
	// Extents of the bounding box along X, Y and Z.
	Width, Height, Length float64
	// Gaussian curvature range over the sampled interior.
	MinCurvature, MaxCurvature float64
	Developable                bool
}

// Analyze samples s on an n×n grid and reports its approximate area,
// extents and Gaussian curvature.
func Analyze(s Surface, n int) (Info, error) {
	mesh, err := Tessellate(s, n, n)
	if err != nil {
		return Info{}, err
	}
	dom, _ := s.Domain()
	var info Info
	for i := range mesh {
		info.Area += mesh[i].Area()
	}
	size := d3.Box(s.Bounds()).Size()
	info.Width, info.Height, info.Length = size.X, size.Y, size.Z
	info.MinCurvature, info.MaxCurvature = math.Inf(1), math.Inf(-1)
	// Interior samples only so central differences stay in the domain.
	for i := 1; i < n-1; i++ {
		for j := 1; j < n-1; j++ {
			u, v := dom.Lerp(float64(i)/float64(n-1), float64(j)/float64(n-1))
			k := GaussianCurvature(s, dom, u, v)
			if math.IsNaN(k) {
				continue
			}
			info.MinCurvature = math.Min(info.MinCurvature, k)
			info.MaxCurvature = math.Max(info.MaxCurvature, k)
		}
	}
	if math.IsInf(info.MinCurvature, 1) {
		info.MinCurvature, info.MaxCurvature = 0, 0
	}
	info.Developable = math.Max(math.Abs(info.MinCurvature), math.Abs(info.MaxCurvature)) <= DevelopableTol
	return info, nil
}

// GaussianCurvature estimates K = (LN - M²)/(EG - F²) at (u, v) with
// central finite differences. Singular points return NaN.
func GaussianCurvature(s Surface, dom Domain, u, v float64) float64 {
	du, dv := dom.Span()
	hu, hv := du*1e-3, dv*1e-3
	p := s.Evaluate(u, v)
	pu1, pu0 := s.Evaluate(u+hu, v), s.Evaluate(u-hu, v)
	pv1, pv0 := s.Evaluate(u, v+hv), s.Evaluate(u, v-hv)
	su := r3.Scale(1/(2*hu), r3.Sub(pu1, pu0))
	sv := r3.Scale(1/(2*hv), r3.Sub(pv1, pv0))
	suu := r3.Scale(1/(hu*hu), r3.Add(r3.Sub(pu1, r3.Scale(2, p)), pu0))
	svv := r3.Scale(1/(hv*hv), r3.Add(r3.Sub(pv1, r3.Scale(2, p)), pv0))
	suv := r3.Scale(1/(4*hu*hv), r3.Sub(
		r3.Sub(s.Evaluate(u+hu, v+hv), s.Evaluate(u+hu, v-hv)),
		r3.Sub(s.Evaluate(u-hu, v+hv), s.Evaluate(u-hu, v-hv)),
	))
	n := r3.Cross(su, sv)
	nn := r3.Norm(n)
	if nn < 1e-15 {
		return math.NaN()
	}
	n = r3.Scale(1/nn, n)
	e, f, g := r3.Dot(su, su), r3.Dot(su, sv), r3.Dot(sv, sv)
	l, m, nc := r3.Dot(suu, n), r3.Dot(suv, n), r3.Dot(svv, n)
	return (l*nc - m*m) / (e*g - f*f)
}
