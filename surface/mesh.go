package surface

import (
	"errors"
	"fmt"

	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/render"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ Raycaster = Mesh(nil)

// Mesh is a triangle soup approximating a surface.
type Mesh []render.Triangle3

// Raycast returns the nearest intersection of the ray with the mesh.
func (m Mesh) Raycast(origin, dir r3.Vec) (r3.Vec, bool) {
	return render.Raycast(m, origin, dir)
}

// Tessellate evaluates s on an nu×nv grid over its domain and returns
// two triangles per grid cell. Cells collapsing to a line or point,
// such as those at a pole, are skipped.
func Tessellate(s Surface, nu, nv int) (Mesh, error) {
	if nu < 2 || nv < 2 {
		return nil, errors.New("tessellation needs at least 2 samples per direction")
	}
	dom, err := s.Domain()
	if err != nil {
		return nil, err
	}
	if err = dom.Validate(); err != nil {
		return nil, err
	}
	grid := make([]r3.Vec, nu*nv)
	for i := 0; i < nu; i++ {
		for j := 0; j < nv; j++ {
			p := s.Evaluate(dom.Lerp(float64(i)/float64(nu-1), float64(j)/float64(nv-1)))
			if !d3.Finite(p) {
				return nil, fmt.Errorf("non-finite surface point at sample (%d,%d)", i, j)
			}
			grid[i*nv+j] = p
		}
	}
	return GridMesh(nu, nv, grid), nil
}

// GridMesh triangulates a point grid with index i*nv+j.
func GridMesh(nu, nv int, grid []r3.Vec) Mesh {
	const tol = 1e-12
	mesh := make(Mesh, 0, 2*(nu-1)*(nv-1))
	for i := 0; i < nu-1; i++ {
		for j := 0; j < nv-1; j++ {
			p00 := grid[i*nv+j]
			p10 := grid[(i+1)*nv+j]
			p11 := grid[(i+1)*nv+j+1]
			p01 := grid[i*nv+j+1]
			for _, tri := range [2]render.Triangle3{
				{V: [3]r3.Vec{p00, p10, p11}},
				{V: [3]r3.Vec{p00, p11, p01}},
			} {
				if !tri.Degenerate(tol) {
					mesh = append(mesh, tri)
				}
			}
		}
	}
	return mesh
}
