// Package field assigns synthetic forming strain and stress values to
// surface points.
//
// The fields are placeholders for a real forming analysis. All
// policies satisfy Field so that consumers do not depend on how values
// are produced.
package field

import (
	"fmt"
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field evaluates a scalar for point i of pts.
type Field interface {
	Evaluate(i int, pts []r3.Vec) float64
}

// batch is implemented by fields that are cheaper to evaluate over all
// points at once.
type batch interface {
	Values(pts []r3.Vec) []float64
}

// Values evaluates f for every point of pts.
func Values(f Field, pts []r3.Vec) []float64 {
	if b, ok := f.(batch); ok {
		return b.Values(pts)
	}
	vals := make([]float64, len(pts))
	for i := range pts {
		vals[i] = f.Evaluate(i, pts)
	}
	return vals
}

// ByName returns the field policy registered under name.
func ByName(name string) (Field, error) {
	switch name {
	case "centroid":
		return Centroid{K: DefaultCentroidK}, nil
	case "stress":
		return Stress{}, nil
	case "strain", "":
		return Strain{}, nil
	case "ramp":
		return Ramp{Step: DefaultRampStep}, nil
	}
	return nil, fmt.Errorf("unknown field policy %q", name)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// position returns x = i/n.
func position(i int, pts []r3.Vec) float64 {
	if len(pts) == 0 {
		return 0
	}
	return float64(i) / float64(len(pts))
}

// Stress is the index based synthetic stress field in MPa,
// 50 + 150·sin(2πx)·sin(3πx) clamped to [10, 300] with x = i/n.
type Stress struct{}

func (Stress) Evaluate(i int, pts []r3.Vec) float64 {
	x := position(i, pts)
	return clamp(50+150*math.Sin(2*math.Pi*x)*math.Sin(3*math.Pi*x), 10, 300)
}

// Strain is the index based synthetic strain field,
// 0.02 + 0.05·sin(2πx) clamped to [0.001, 0.1] with x = i/n.
type Strain struct{}

func (Strain) Evaluate(i int, pts []r3.Vec) float64 {
	x := position(i, pts)
	return clamp(0.02+0.05*math.Sin(2*math.Pi*x), 0.001, 0.1)
}

// DefaultRampStep is the strain increment between consecutive segments.
const DefaultRampStep = 0.001

// Ramp grows linearly with the index: Step·(i+1).
type Ramp struct {
	Step float64
}

func (r Ramp) Evaluate(i int, _ []r3.Vec) float64 {
	return r.Step * float64(i+1)
}

// DefaultCentroidK is the strain at the point farthest from the centroid.
const DefaultCentroidK = 0.01

// Centroid is proportional to the XY distance from the centroid of all
// points, normalized by the largest such distance. Values lie in [0, K].
type Centroid struct {
	K float64
}

func (c Centroid) Evaluate(i int, pts []r3.Vec) float64 {
	center, maxDist := centroidXY(pts)
	if maxDist == 0 {
		return 0
	}
	return c.K * xyDist(pts[i], center) / maxDist
}

func (c Centroid) Values(pts []r3.Vec) []float64 {
	vals := make([]float64, len(pts))
	center, maxDist := centroidXY(pts)
	if maxDist == 0 {
		return vals
	}
	for i := range pts {
		vals[i] = c.K * xyDist(pts[i], center) / maxDist
	}
	return vals
}

// Split divides a centroid strain into its in-plane and bending parts.
func (Centroid) Split(strain float64) (inplane, bending float64) {
	return 0.7 * strain, 0.3 * strain
}

func centroidXY(pts []r3.Vec) (center r3.Vec, maxDist float64) {
	center = d3.Set(pts).Mean()
	for _, p := range pts {
		maxDist = math.Max(maxDist, xyDist(p, center))
	}
	return center, maxDist
}

func xyDist(a, b r3.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
