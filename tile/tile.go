// Package tile partitions a flattened rectangle into fixed size
// manufacturing sheets.
package tile

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/plate/internal/d2"
	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default sheet parameters.
const (
	DefaultSheetWidth  = 6.0
	DefaultSheetHeight = 2.0
	DefaultMinArea     = 2.0
)

var (
	// ErrPitch is returned when the weld allowance leaves no usable
	// sheet pitch.
	ErrPitch   = errors.New("non-positive effective sheet pitch")
	ErrExtents = errors.New("invalid tiling extents")
)

// Tile is a single sheet of a layout. Corners are ordered
// (x1,y1), (x2,y1), (x2,y2), (x1,y2).
type Tile struct {
	// ID is the 1-based ordinal of the tile among all layout candidates.
	ID       int
	Col, Row int
	Flat     [4]r2.Vec
	Mapped   [4]r3.Vec
	// Strategies holds the boundary.Strategy used to map each corner.
	Strategies [4]uint8
	Resolved   bool
	Area       float64
	Center     r3.Vec
}

// Valid reports whether the tile is large enough and fully mapped.
func (t *Tile) Valid(minArea float64) bool {
	return t.Resolved && t.Area >= minArea
}

// Size returns the flat width and height of the tile.
func (t *Tile) Size() r2.Vec {
	return r2.Sub(t.Flat[2], t.Flat[0])
}

// ProjectedArea returns the shoelace area of the mapped corners
// projected onto the XY plane.
func (t *Tile) ProjectedArea() float64 {
	var xy [4]r2.Vec
	for i := range t.Mapped {
		xy[i] = d3.Lower(t.Mapped[i])
	}
	return Shoelace(xy[:])
}

// Outline returns the closed mapped boundary of the tile.
func (t *Tile) Outline() []r3.Vec {
	return []r3.Vec{t.Mapped[0], t.Mapped[1], t.Mapped[2], t.Mapped[3], t.Mapped[0]}
}

// Shoelace returns the area of the closed polygon pts.
func Shoelace(pts []r2.Vec) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// Tiler lays out sheets of SheetW×SheetH. Adjacent sheets overlap by
// Weld so the layout pitch is the sheet size minus Weld.
type Tiler struct {
	SheetW, SheetH float64
	Weld           float64
	// Tiles with area below MinArea are discarded.
	MinArea float64
}

// Pitch returns the effective horizontal and vertical sheet pitch.
func (tl Tiler) Pitch() (pw, ph float64, err error) {
	pw, ph = tl.SheetW-tl.Weld, tl.SheetH-tl.Weld
	if tl.Weld < 0 || math.IsNaN(tl.Weld) {
		return 0, 0, fmt.Errorf("negative weld allowance %g", tl.Weld)
	}
	if !(pw > 0) || !(ph > 0) || math.IsInf(pw, 0) || math.IsInf(ph, 0) {
		return 0, 0, fmt.Errorf("%w: sheet %g×%g with weld allowance %g", ErrPitch, tl.SheetW, tl.SheetH, tl.Weld)
	}
	return pw, ph, nil
}

// Layout is the result of tiling a rectangle.
type Layout struct {
	Extents        r2.Box
	PitchW, PitchH float64
	Cols, Rows     int
	// Candidates is Cols*Rows, the tile count before area filtering.
	Candidates int
	Tiles      []Tile
}

// Count returns the number of kept tiles.
func (l Layout) Count() int { return len(l.Tiles) }

// Discarded returns the number of candidates dropped for being too small.
func (l Layout) Discarded() int { return l.Candidates - len(l.Tiles) }

// Layout tiles ext. Columns are iterated in the outer loop and rows in
// the inner loop. The last column and row are clipped to ext.
func (tl Tiler) Layout(ext r2.Box) (Layout, error) {
	pw, ph, err := tl.Pitch()
	if err != nil {
		return Layout{}, err
	}
	if !d2.Finite(ext.Min) || !d2.Finite(ext.Max) || ext.Max.X < ext.Min.X || ext.Max.Y < ext.Min.Y {
		return Layout{}, fmt.Errorf("%w: %v", ErrExtents, ext)
	}
	size := d2.Box(ext).Size()
	l := Layout{
		Extents: ext,
		PitchW:  pw,
		PitchH:  ph,
		Cols:    int(math.Ceil(size.X / pw)),
		Rows:    int(math.Ceil(size.Y / ph)),
	}
	l.Candidates = l.Cols * l.Rows
	id := 0
	for i := 0; i < l.Cols; i++ {
		x1 := ext.Min.X + float64(i)*pw
		x2 := math.Min(x1+tl.SheetW, ext.Max.X)
		for j := 0; j < l.Rows; j++ {
			id++
			y1 := ext.Min.Y + float64(j)*ph
			y2 := math.Min(y1+tl.SheetH, ext.Max.Y)
			t := newTile(id, i, j, r2.Box{Min: r2.Vec{X: x1, Y: y1}, Max: r2.Vec{X: x2, Y: y2}})
			if t.Area < tl.MinArea {
				continue
			}
			l.Tiles = append(l.Tiles, t)
		}
	}
	return l, nil
}

func newTile(id, col, row int, b r2.Box) Tile {
	t := Tile{ID: id, Col: col, Row: row, Flat: d2.Box(b).Vertices()}
	t.Area = Shoelace(t.Flat[:])
	return t
}

// Line is a division line of a layout.
type Line struct {
	Start, End r2.Vec
	Vertical   bool
	// Index is the 1-based column or row boundary index.
	Index int
}

// Divisions returns the interior vertical then horizontal division
// lines at pitch multiples.
func (l Layout) Divisions() []Line {
	var lines []Line
	for i := 1; i < l.Cols; i++ {
		x := l.Extents.Min.X + float64(i)*l.PitchW
		lines = append(lines, Line{
			Start:    r2.Vec{X: x, Y: l.Extents.Min.Y},
			End:      r2.Vec{X: x, Y: l.Extents.Max.Y},
			Vertical: true,
			Index:    i,
		})
	}
	for j := 1; j < l.Rows; j++ {
		y := l.Extents.Min.Y + float64(j)*l.PitchH
		lines = append(lines, Line{
			Start: r2.Vec{X: l.Extents.Min.X, Y: y},
			End:   r2.Vec{X: l.Extents.Max.X, Y: y},
			Index: j,
		})
	}
	return lines
}

// Quadrants splits box into four tiles ordered bottom-left,
// bottom-right, top-right and top-left with IDs 1 to 4.
func Quadrants(box r2.Box) []Tile {
	c := d2.Box(box).Center()
	return []Tile{
		newTile(1, 0, 0, r2.Box{Min: box.Min, Max: c}),
		newTile(2, 1, 0, r2.Box{Min: r2.Vec{X: c.X, Y: box.Min.Y}, Max: r2.Vec{X: box.Max.X, Y: c.Y}}),
		newTile(3, 1, 1, r2.Box{Min: c, Max: box.Max}),
		newTile(4, 0, 1, r2.Box{Min: r2.Vec{X: box.Min.X, Y: c.Y}, Max: r2.Vec{X: c.X, Y: box.Max.Y}}),
	}
}
