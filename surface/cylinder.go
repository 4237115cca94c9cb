package surface

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var _ Raycaster = (*Cylinder)(nil)

// Cylinder is the lateral face of a vertical cylinder. The u parameter
// is arc length around the circumference in [0, 2πR] and v is height
// above Base in [0, Height].
type Cylinder struct {
	Base   r3.Vec
	Radius float64
	Height float64
}

// NewCylinder returns a cylinder with its base circle centered at base.
func NewCylinder(base r3.Vec, radius, height float64) (*Cylinder, error) {
	if radius <= 0 || height <= 0 {
		return nil, errors.New("cylinder radius and height must be positive")
	}
	return &Cylinder{Base: base, Radius: radius, Height: height}, nil
}

func (c *Cylinder) Domain() (Domain, error) {
	d := Domain{UMax: 2 * math.Pi * c.Radius, VMax: c.Height}
	return d, d.Validate()
}

func (c *Cylinder) Evaluate(u, v float64) r3.Vec {
	theta := u / c.Radius
	return r3.Vec{
		X: c.Base.X + c.Radius*math.Cos(theta),
		Y: c.Base.Y + c.Radius*math.Sin(theta),
		Z: c.Base.Z + v,
	}
}

// ClosestParameter projects p radially onto the cylinder. Points on the
// axis have no unique closest point and report ok=false.
func (c *Cylinder) ClosestParameter(p r3.Vec) (u, v float64, ok bool) {
	dx, dy := p.X-c.Base.X, p.Y-c.Base.Y
	if math.Hypot(dx, dy) < 1e-12 || math.IsNaN(dx+dy+p.Z) {
		return 0, 0, false
	}
	theta := math.Atan2(dy, dx)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	v = math.Max(0, math.Min(c.Height, p.Z-c.Base.Z))
	return theta * c.Radius, v, true
}

func (c *Cylinder) Bounds() r3.Box {
	return r3.Box{
		Min: r3.Vec{X: c.Base.X - c.Radius, Y: c.Base.Y - c.Radius, Z: c.Base.Z},
		Max: r3.Vec{X: c.Base.X + c.Radius, Y: c.Base.Y + c.Radius, Z: c.Base.Z + c.Height},
	}
}

// Raycast intersects the ray with the lateral face and returns the
// nearest hit in front of origin.
func (c *Cylinder) Raycast(origin, dir r3.Vec) (r3.Vec, bool) {
	ox, oy := origin.X-c.Base.X, origin.Y-c.Base.Y
	a := dir.X*dir.X + dir.Y*dir.Y
	if a < 1e-18 {
		return r3.Vec{}, false // ray parallel to axis
	}
	b := 2 * (ox*dir.X + oy*dir.Y)
	cc := ox*ox + oy*oy - c.Radius*c.Radius
	disc := b*b - 4*a*cc
	if disc < 0 {
		return r3.Vec{}, false
	}
	sq := math.Sqrt(disc)
	for _, t := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t < 0 {
			continue
		}
		hit := r3.Add(origin, r3.Scale(t, dir))
		if z := hit.Z - c.Base.Z; z >= 0 && z <= c.Height {
			return hit, true
		}
	}
	return r3.Vec{}, false
}
