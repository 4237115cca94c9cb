package plate

import (
	"context"
	"errors"
	"os"

	"github.com/soypat/plate/export"
	"github.com/soypat/plate/render"
	"github.com/soypat/plate/surface"
	"golang.org/x/sync/errgroup"
)

// linkStep is the sample stride of development links drawn in the DXF.
const linkStep = 5

// Artifacts are the paths of the files written for a run.
type Artifacts struct {
	GCode      string
	DXF        string
	GeoJSON    string
	SurfaceSTL string
	FlatSTL    string
	FormingSTL string
	FieldPNG   string
	Preview    string
	Report     string
}

// NewArtifacts returns the artifact paths starting with prefix.
func NewArtifacts(prefix string) Artifacts {
	return Artifacts{
		GCode:      prefix + ".nc",
		DXF:        prefix + ".dxf",
		GeoJSON:    prefix + ".geojson",
		SurfaceSTL: prefix + "_surface.stl",
		FlatSTL:    prefix + "_flat.stl",
		FormingSTL: prefix + "_forming.stl",
		FieldPNG:   prefix + "_field.png",
		Preview:    prefix + "_preview.png",
		Report:     prefix + ".txt",
	}
}

// All returns every path of a.
func (a Artifacts) All() []string {
	return []string{a.GCode, a.DXF, a.GeoJSON, a.SurfaceSTL, a.FlatSTL, a.FormingSTL, a.FieldPNG, a.Preview, a.Report}
}

// Save writes every artifact of res concurrently. The first error
// cancels the remaining writes.
func (s *Session) Save(ctx context.Context, res *Result, a Artifacts) error {
	if res == nil || res.Map == nil || res.Status == Failed {
		return errors.New("no result to save")
	}
	log := s.logger()
	g, ctx := errgroup.WithContext(ctx)
	write := func(path string, fn func(*os.File) error) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fp, err := os.Create(path)
			if err != nil {
				return err
			}
			err = fn(fp)
			if cerr := fp.Close(); err == nil {
				err = cerr
			}
			if err == nil {
				log.Debug("wrote artifact", "path", path)
			}
			return err
		})
	}
	write(a.GCode, func(fp *os.File) error {
		_, err := res.Program.WriteTo(fp)
		return err
	})
	write(a.GeoJSON, func(fp *os.File) error {
		return export.WriteGeoJSON(fp, res.Layout.Tiles)
	})
	write(a.FieldPNG, func(fp *os.File) error {
		return export.DefaultPlot(res.Field.Policy).WritePNG(fp, res.Field.Points, res.Field.Values, res.Field.Levels)
	})
	write(a.Report, func(fp *os.File) error {
		return s.WriteReport(fp, res)
	})
	g.Go(func() error {
		return export.CreateDXF(a.DXF, export.Drawing{
			Layout:   res.Layout,
			Welds:    res.Welds,
			Contours: res.Field.Contours,
			Links:    res.Map.Links(linkStep),
		})
	})
	g.Go(func() error {
		return render.CreateSTL(a.FlatSTL, res.Map.Mesh())
	})
	if len(res.Simulation.Vertices) > 0 {
		g.Go(func() error {
			return render.CreateSTL(a.FormingSTL, res.Simulation.Mesh())
		})
	}
	mesh, err := surface.Tessellate(s.Surface, s.Config.Sample.NU, s.Config.Sample.NV)
	if err != nil {
		log.Warn("surface not tessellated, skipping surface artifacts", "err", err)
	} else {
		g.Go(func() error {
			return render.CreateSTL(a.SurfaceSTL, mesh)
		})
		g.Go(func() error {
			return render.CreatePNG(a.Preview, mesh, render.DefaultView())
		})
	}
	return g.Wait()
}
