package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/soypat/plate/field"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plot is a top view scatter plot of field values colored by ISO level.
type Plot struct {
	Title         string
	Width, Height vg.Length
	// Radius of the point glyphs.
	Radius vg.Length
}

// DefaultPlot returns a 6x6 inch plot.
func DefaultPlot(title string) Plot {
	return Plot{Title: title, Width: 6 * vg.Inch, Height: 6 * vg.Inch, Radius: vg.Points(3)}
}

// WritePNG plots pts by their XY coordinates with one series per level
// and writes the PNG image to w.
func (pl Plot) WritePNG(w io.Writer, pts []r3.Vec, values []float64, l field.Levels) error {
	if len(pts) == 0 || len(pts) != len(values) {
		return errors.New("need one value per point")
	}
	if err := l.Validate(); err != nil {
		return err
	}
	groups := make([]plotter.XYs, len(l.Thresholds))
	for i, p := range pts {
		k := l.Classify(values[i])
		groups[k] = append(groups[k], plotter.XY{X: p.X, Y: p.Y})
	}
	p := plot.New()
	p.Title.Text = pl.Title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Legend.Top = true
	for k, xys := range groups {
		if len(xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		s.GlyphStyle = draw.GlyphStyle{Color: l.Colors[k], Radius: pl.Radius, Shape: draw.CircleGlyph{}}
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("≤ %g", l.Thresholds[k]), s)
	}
	wt, err := p.WriterTo(pl.Width, pl.Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
