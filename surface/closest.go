package surface

import (
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"
)

// defaultIndexResolution is the per-axis count of samples stored in
// the kd-tree used to seed closest parameter searches.
const defaultIndexResolution = 24

// solver finds the parameter of the point of a surface closest to a
// query point. A kd-tree lookup over sampled points gives the initial
// guess which is then refined with Nelder-Mead over the parameter domain.
type solver struct {
	f   func(u, v float64) r3.Vec
	dom Domain
	ix  index
}

func newSolver(f func(u, v float64) r3.Vec, dom Domain) *solver {
	return &solver{f: f, dom: dom, ix: newIndex(f, dom, defaultIndexResolution)}
}

func (s *solver) closest(p r3.Vec) (u, v float64, ok bool) {
	if !d3.Finite(p) {
		return 0, 0, false
	}
	seed := s.ix.nearest(p)
	du, dv := s.dom.Span()
	// Work in normalized parameters so the simplex is well scaled.
	obj := func(x []float64) float64 {
		u, v := s.dom.Clamp(s.dom.Lerp(x[0], x[1]))
		return r3.Norm2(r3.Sub(s.f(u, v), p))
	}
	x0 := []float64{(seed.U - s.dom.UMin) / du, (seed.V - s.dom.VMin) / dv}
	settings := &optimize.Settings{
		MajorIterations: 200,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Iterations: 20,
		},
	}
	res, err := optimize.Minimize(optimize.Problem{Func: obj}, x0, settings, &optimize.NelderMead{})
	bestU, bestV := seed.U, seed.V
	best := r3.Norm2(r3.Sub(seed.P, p))
	if err == nil && res != nil && res.F < best {
		bestU, bestV = s.dom.Clamp(s.dom.Lerp(res.X[0], res.X[1]))
		best = res.F
	}
	if math.IsNaN(best) {
		return 0, 0, false
	}
	return bestU, bestV, true
}
