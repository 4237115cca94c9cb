package field

import (
	"errors"
	"image/color"
	"math"

	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultStressLevels are the ISO stress thresholds in MPa.
var DefaultStressLevels = []float64{50, 100, 150, 200, 250, 300}

// DefaultStressColors go from blue for the lowest level to red for the highest.
var DefaultStressColors = []color.RGBA{
	{R: 0, G: 0, B: 255, A: 255},
	{R: 0, G: 128, B: 255, A: 255},
	{R: 0, G: 255, B: 255, A: 255},
	{R: 0, G: 255, B: 128, A: 255},
	{R: 255, G: 255, B: 0, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
}

// Levels buckets scalar values into ISO bands.
type Levels struct {
	// Thresholds in ascending order.
	Thresholds []float64
	// Colors has one entry per threshold.
	Colors []color.RGBA
}

// DefaultLevels returns the ISO stress levels and colors.
func DefaultLevels() Levels {
	return Levels{
		Thresholds: append([]float64(nil), DefaultStressLevels...),
		Colors:     append([]color.RGBA(nil), DefaultStressColors...),
	}
}

// NewLevels returns levels for thresholds colored by interpolating
// DefaultStressColors.
func NewLevels(thresholds []float64) (Levels, error) {
	l := Levels{Thresholds: append([]float64(nil), thresholds...)}
	n := len(thresholds)
	for i := 0; i < n; i++ {
		var f float64
		if n > 1 {
			f = float64(i) / float64(n-1)
		}
		l.Colors = append(l.Colors, ramp(f))
	}
	return l, l.Validate()
}

// Validate checks thresholds are non-empty, finite and strictly ascending.
func (l Levels) Validate() error {
	if len(l.Thresholds) == 0 {
		return errors.New("no ISO levels")
	}
	if len(l.Colors) != len(l.Thresholds) {
		return errors.New("ISO level and color count mismatch")
	}
	for i, t := range l.Thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return errors.New("non-finite ISO level")
		}
		if i > 0 && t <= l.Thresholds[i-1] {
			return errors.New("ISO levels must be strictly ascending")
		}
	}
	return nil
}

// Classify returns the index of the first threshold v does not exceed.
// Values above every threshold saturate to the last index. Levels
// without thresholds return -1.
func (l Levels) Classify(v float64) int {
	for i, t := range l.Thresholds {
		if v <= t {
			return i
		}
	}
	return len(l.Thresholds) - 1
}

// Color returns the color of the band v falls in, or the zero color if
// the band has none.
func (l Levels) Color(v float64) color.RGBA {
	i := l.Classify(v)
	if i < 0 || i >= len(l.Colors) {
		return color.RGBA{}
	}
	return l.Colors[i]
}

// ramp interpolates the default stress colors at f in [0, 1].
func ramp(f float64) color.RGBA {
	c := DefaultStressColors
	pos := f * float64(len(c)-1)
	i := int(math.Floor(pos))
	if i >= len(c)-1 {
		return c[len(c)-1]
	}
	t := pos - float64(i)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
	}
	return color.RGBA{R: lerp(c[i].R, c[i+1].R), G: lerp(c[i].G, c[i+1].G), B: lerp(c[i].B, c[i+1].B), A: 255}
}

// Contour approximates an ISO line with a horizontal circle.
type Contour struct {
	Level int
	Value float64
	// Center is the mean of the points near the level.
	Center r3.Vec
	// Radius is the mean XY distance of those points to Center.
	Radius float64
	Points int
}

// Contours returns a circle for every level with at least three points
// whose value lies strictly within tol of the level.
func Contours(pts []r3.Vec, values []float64, l Levels, tol float64) []Contour {
	var out []Contour
	for li, level := range l.Thresholds {
		var near d3.Set
		for i, v := range values {
			if i < len(pts) && math.Abs(v-level) < tol {
				near = append(near, pts[i])
			}
		}
		if len(near) < 3 {
			continue
		}
		c := Contour{Level: li, Value: level, Center: near.Mean(), Points: len(near)}
		for _, p := range near {
			c.Radius += xyDist(p, c.Center)
		}
		c.Radius /= float64(len(near))
		out = append(out, c)
	}
	return out
}

// Summary holds the range of a set of field values.
type Summary struct {
	Min, Max, Mean float64
	// Histogram counts values per ISO level.
	Histogram []int
}

// Summarize computes value statistics classified against l.
func Summarize(values []float64, l Levels) Summary {
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1), Histogram: make([]int, len(l.Thresholds))}
	if len(values) == 0 {
		return Summary{Histogram: s.Histogram}
	}
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Mean += v
		if len(l.Thresholds) > 0 {
			s.Histogram[l.Classify(v)]++
		}
	}
	s.Mean /= float64(len(values))
	return s
}
