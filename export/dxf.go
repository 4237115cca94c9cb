// Package export writes presentation artifacts of a plate run: CAD
// drawings of the sheet layout, GeoJSON layouts and field plots.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/plate/boundary"
	"github.com/soypat/plate/develop"
	"github.com/soypat/plate/field"
	"github.com/soypat/plate/internal/d2"
	"github.com/soypat/plate/tile"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"
)

// Layer names of the drawing.
const (
	LayerTiles     = "TILES"
	LayerBoundary  = "BOUNDARY"
	LayerDivisions = "DIVISIONS"
	LayerWelds     = "WELDS"
	LayerLabels    = "LABELS"
	LayerISO       = "ISO"

	// LayerDevelopment joins surface samples to their flattened points.
	LayerDevelopment = "DEVELOPMENT"
)

// DefaultLabelHeight is the height of tile labels relative to the
// smallest sheet dimension.
const DefaultLabelHeight = 0.1

// isoColors are the ACI colors of ISO contour levels, blue to red.
var isoColors = []color.ColorNumber{color.Blue, 150, color.Cyan, color.Green, color.Yellow, color.Red}

// Drawing holds what goes into a DXF file.
type Drawing struct {
	Layout   tile.Layout
	Welds    []boundary.Weld
	Contours []field.Contour
	Links    []develop.Link
}

// Label returns the text drawn for a tile.
func Label(t tile.Tile) string { return fmt.Sprintf("P%d", t.ID) }

// CreateDXF writes the drawing to a DXF file at path. Flat tiles go on
// their own layer, mapped boundaries are drawn in 3D.
func CreateDXF(path string, dr Drawing) error {
	if len(dr.Layout.Tiles) == 0 {
		return errors.New("no tiles to draw")
	}
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	d.AddLayer(LayerTiles, color.White, dxf.DefaultLineType, true)
	for _, t := range dr.Layout.Tiles {
		lwp := entity.NewLwPolyline(len(t.Flat) + 1)
		for j := range lwp.Vertices {
			p := t.Flat[j%len(t.Flat)]
			lwp.Vertices[j] = []float64{p.X, p.Y}
		}
		d.AddEntity(lwp)
	}

	d.AddLayer(LayerBoundary, color.Red, dxf.DefaultLineType, true)
	for _, t := range dr.Layout.Tiles {
		if !t.Resolved {
			continue
		}
		out := t.Outline()
		for j := 0; j+1 < len(out); j++ {
			a, b := out[j], out[j+1]
			if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
				return err
			}
		}
	}

	d.AddLayer(LayerDivisions, color.Cyan, dxf.DefaultLineType, true)
	for _, l := range dr.Layout.Divisions() {
		if _, err := d.Line(l.Start.X, l.Start.Y, 0, l.End.X, l.End.Y, 0); err != nil {
			return err
		}
	}

	if len(dr.Links) > 0 {
		d.AddLayer(LayerDevelopment, color.Magenta, dxf.DefaultLineType, true)
		for _, l := range dr.Links {
			if _, err := d.Line(l.P.X, l.P.Y, l.P.Z, l.Flat.X, l.Flat.Y, 0); err != nil {
				return err
			}
		}
	}

	d.AddLayer(LayerWelds, color.Yellow, dxf.DefaultLineType, true)
	for _, w := range dr.Welds {
		if _, err := d.Line(w.Start.X, w.Start.Y, w.Start.Z, w.End.X, w.End.Y, w.End.Z); err != nil {
			return err
		}
	}

	d.AddLayer(LayerLabels, color.Green, dxf.DefaultLineType, true)
	for _, t := range dr.Layout.Tiles {
		size := t.Size()
		c := d2.Set(t.Flat[:]).Bounds().Center()
		h := DefaultLabelHeight * math.Min(size.X, size.Y)
		if _, err := d.Text(Label(t), c.X, c.Y, 0, h); err != nil {
			return err
		}
	}

	for _, c := range dr.Contours {
		name := fmt.Sprintf("%s_%g", LayerISO, c.Value)
		d.AddLayer(name, isoColors[c.Level%len(isoColors)], dxf.DefaultLineType, true)
		if _, err := d.Circle(c.Center.X, c.Center.Y, c.Center.Z, c.Radius); err != nil {
			return err
		}
	}
	return d.SaveAs(path)
}
