package render

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera of a shaded preview. Model coordinates
// are fitted into a bi-unit cube centered at the origin before
// rendering, so Eye and LookAt are given in that space.
type View struct {
	Width, Height int
	// Supersampling factor. Values below 1 are treated as 1.
	Scale     int
	Eye       r3.Vec
	LookAt    r3.Vec
	Up        r3.Vec
	Near, Far float64
	// Hex color strings such as "#468966".
	Color      string
	Background string
}

// DefaultView returns an isometric-ish view suitable for most surfaces.
func DefaultView() View {
	return View{
		Width:      800,
		Height:     600,
		Scale:      2,
		Eye:        r3.Vec{X: 3, Y: -4, Z: 3},
		Up:         r3.Vec{Z: 1},
		Near:       1,
		Far:        20,
		Color:      "#468966",
		Background: "#FFF8E3",
	}
}

// Preview renders model with a phong shader as seen from view.
func Preview(model []Triangle3, view View) (image.Image, error) {
	if len(model) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview dimensions must be positive")
	}
	if view.Near <= 0 || view.Far <= view.Near {
		return nil, errors.New("invalid near/far clipping planes")
	}
	scale := view.Scale
	if scale < 1 {
		scale = 1
	}
	tris := make([]*fauxgl.Triangle, 0, len(model))
	for i := range model {
		if model[i].Degenerate(0) {
			continue
		}
		tris = append(tris, fauxgl.NewTriangleForPoints(
			fauxV(model[i].V[0]), fauxV(model[i].V[1]), fauxV(model[i].V[2])))
	}
	if len(tris) == 0 {
		return nil, errors.New("model has only degenerate triangles")
	}
	const fovy = 30 // vertical field of view in degrees
	var (
		eye    = fauxV(view.Eye)
		center = fauxV(view.LookAt)
		up     = fauxV(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)
	mesh := fauxgl.NewTriangleMesh(tris)
	mesh.BiUnitCube()
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	// Open surfaces are visible from both sides.
	context.Cull = fauxgl.CullNone
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if scale > 1 {
		// downsample for antialiasing
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// CreatePNG renders model and saves the preview to path.
func CreatePNG(path string, model []Triangle3, view View) error {
	img, err := Preview(model, view)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func fauxV(v r3.Vec) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}
