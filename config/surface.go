package config

import (
	"fmt"

	"github.com/soypat/plate/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface types understood by Surface.Build.
const (
	SurfaceCylinder = "cylinder"
	SurfaceWave     = "wave"
	SurfaceWaveGrid = "wavegrid"
	SurfaceDome     = "dome"
	SurfacePlane    = "plane"
)

// Surface describes the target surface of a run. Fields not used by
// Type are ignored.
type Surface struct {
	Type string `yaml:"type" toml:"type"`
	// Base of a cylinder.
	Base   [3]float64 `yaml:"base" toml:"base"`
	Radius float64    `yaml:"radius" toml:"radius"`
	Height float64    `yaml:"height" toml:"height"`
	// Origin and spans of a plane patch.
	Origin [3]float64 `yaml:"origin" toml:"origin"`
	U      [3]float64 `yaml:"u" toml:"u"`
	V      [3]float64 `yaml:"v" toml:"v"`
}

// DefaultSurface is a 3 m radius, 8 m tall cylinder.
func DefaultSurface() Surface {
	return Surface{Type: SurfaceCylinder, Radius: 3, Height: 8}
}

// Validate builds the surface and reports any construction error.
func (s Surface) Validate() error {
	_, err := s.Build()
	return err
}

// Build constructs the surface.
func (s Surface) Build() (surface.Surface, error) {
	var (
		srf surface.Surface
		err error
	)
	switch s.Type {
	case SurfaceCylinder, "":
		srf, err = surface.NewCylinder(vec(s.Base), s.Radius, s.Height)
	case SurfaceWave:
		srf = surface.Wave()
	case SurfaceWaveGrid:
		srf = surface.WaveGrid()
	case SurfaceDome:
		srf, err = surface.Dome(s.Radius, s.Height)
	case SurfacePlane:
		srf, err = surface.NewPlane(vec(s.Origin), vec(s.U), vec(s.V))
	default:
		return nil, fmt.Errorf("%w: unknown surface type %q", ErrInvalid, s.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s surface: %v", ErrInvalid, s.Type, err)
	}
	return srf, nil
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
