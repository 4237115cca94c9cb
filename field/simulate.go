package field

import (
	"errors"

	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/render"
	"github.com/soypat/plate/surface"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default forming simulation parameters.
const (
	DefaultDivisions = 10
	DefaultDepth     = 20.0
)

// Simulation is the placeholder result of forming a flat plate: a
// parabolic dish of the given depth over the plate footprint.
type Simulation struct {
	Divisions int
	// Vertices has (Divisions+1)² entries with index i*(Divisions+1)+j.
	Vertices []r3.Vec
	// Deviation is the size of the deformed plate bounding box.
	Deviation r3.Vec
	// MaxZ is the largest deformation height.
	MaxZ float64
}

// Simulate deforms a flat plate spanning box into
// z = depth·(1 - x²/mx²)(1 - y²/my²) around the box center.
func Simulate(box r2.Box, divisions int, depth float64) (Simulation, error) {
	if divisions < 1 {
		return Simulation{}, errors.New("simulation needs at least one division")
	}
	half := r2.Scale(0.5, r2.Sub(box.Max, box.Min))
	if !(half.X > 0) || !(half.Y > 0) {
		return Simulation{}, errors.New("degenerate plate footprint")
	}
	center := r2.Add(box.Min, half)
	n := divisions + 1
	sim := Simulation{Divisions: divisions, Vertices: make([]r3.Vec, 0, n*n)}
	for i := 0; i < n; i++ {
		x := box.Min.X + (box.Max.X-box.Min.X)*float64(i)/float64(divisions)
		for j := 0; j < n; j++ {
			y := box.Min.Y + (box.Max.Y-box.Min.Y)*float64(j)/float64(divisions)
			dx, dy := x-center.X, y-center.Y
			z := depth * (1 - dx*dx/(half.X*half.X)) * (1 - dy*dy/(half.Y*half.Y))
			sim.Vertices = append(sim.Vertices, r3.Vec{X: x, Y: y, Z: z})
		}
	}
	set := d3.Set(sim.Vertices)
	min, max := set.Min(), set.Max()
	sim.Deviation = r3.Sub(max, min)
	sim.MaxZ = max.Z
	return sim, nil
}

// Mesh triangulates the deformed plate.
func (s Simulation) Mesh() []render.Triangle3 {
	return surface.GridMesh(s.Divisions+1, s.Divisions+1, s.Vertices)
}
