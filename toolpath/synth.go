package toolpath

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/soypat/plate/field"
	"github.com/soypat/plate/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default synthesizer parameters.
const (
	DefaultForceCap   = 30.0
	DefaultForceScale = 100.0
	DefaultFeed       = 600.0
	DefaultMinLength  = 1e-9
	DefaultMaxGroups  = 10
	DefaultProgram    = 1000
)

// Segment is a straight forming pass carrying the strain to apply.
type Segment struct {
	Start, End r3.Vec
	Length     float64
	Strain     float64
}

// NewSegment returns the segment from start to end.
func NewSegment(start, end r3.Vec, strain float64) Segment {
	return Segment{Start: start, End: end, Length: r3.Norm(r3.Sub(end, start)), Strain: strain}
}

// Segments splits the polyline poly into segments longer than minLen.
// Segment i gets the strain f assigns to point i of poly.
func Segments(poly []r3.Vec, f field.Field, minLen float64) []Segment {
	var segs []Segment
	for i := 0; i+1 < len(poly); i++ {
		s := NewSegment(poly[i], poly[i+1], f.Evaluate(i, poly))
		if s.Length > minLen {
			segs = append(segs, s)
		}
	}
	return segs
}

// GridLines returns n evenly spaced interior horizontal lines followed
// by n vertical lines across box on the z=0 plane.
func GridLines(box r2.Box, n int) [][]r3.Vec {
	var lines [][]r3.Vec
	for i := 1; i <= n; i++ {
		y := box.Min.Y + (box.Max.Y-box.Min.Y)*float64(i)/float64(n+1)
		lines = append(lines, []r3.Vec{{X: box.Min.X, Y: y}, {X: box.Max.X, Y: y}})
	}
	for i := 1; i <= n; i++ {
		x := box.Min.X + (box.Max.X-box.Min.X)*float64(i)/float64(n+1)
		lines = append(lines, []r3.Vec{{X: x, Y: box.Min.Y}, {X: x, Y: box.Max.Y}})
	}
	return lines
}

// Synthesizer converts segment groups into a Program.
type Synthesizer struct {
	ForceCap   float64
	ForceScale float64
	Feed       float64
	// Segments no longer than MinLength are discarded.
	MinLength float64
	// MaxGroups limits the number of groups emitted. Zero means no limit.
	MaxGroups int
	// Program number written in the header.
	Program int
}

// DefaultSynthesizer returns a synthesizer with default parameters.
func DefaultSynthesizer() Synthesizer {
	return Synthesizer{
		ForceCap:   DefaultForceCap,
		ForceScale: DefaultForceScale,
		Feed:       DefaultFeed,
		MinLength:  DefaultMinLength,
		MaxGroups:  DefaultMaxGroups,
		Program:    DefaultProgram,
	}
}

// Force returns the head force for strain, capped at ForceCap.
func (sy Synthesizer) Force(strain float64) float64 {
	return math.Min(sy.ForceCap, sy.ForceCap*strain*sy.ForceScale)
}

// Stats counts what a synthesis emitted and discarded.
type Stats struct {
	Groups    int
	Segments  int
	Discarded int
}

// Synthesize emits one commented group per entry of groups. Each
// segment becomes a rapid to its start, a force set, an engaged move to
// its end and a force clear. Degenerate segments are skipped.
func (sy Synthesizer) Synthesize(groups [][]Segment) (Program, Stats) {
	prog := Program{ID: sy.Program}
	var st Stats
	for gi, g := range groups {
		if sy.MaxGroups > 0 && st.Groups >= sy.MaxGroups {
			for _, s := range groups[gi:] {
				st.Discarded += len(s)
			}
			break
		}
		var body []Instruction
		for _, s := range g {
			if !(s.Length > sy.MinLength) || !d3.Finite(s.Start) || !d3.Finite(s.End) || math.IsNaN(s.Strain) {
				st.Discarded++
				continue
			}
			body = append(body,
				Rapid{X: s.Start.X, Y: s.Start.Y, Z: s.Start.Z},
				SetForce{Value: sy.Force(s.Strain)},
				Engage{X: s.End.X, Y: s.End.Y, Z: s.End.Z, Feed: sy.Feed},
				ClearForce{},
			)
			st.Segments++
		}
		if len(body) == 0 {
			continue
		}
		st.Groups++
		prog.Instructions = append(prog.Instructions, Comment{Text: fmt.Sprintf("Path %d", st.Groups)})
		prog.Instructions = append(prog.Instructions, body...)
	}
	return prog, st
}

// Program is a framed instruction stream.
type Program struct {
	ID           int
	Instructions []Instruction
}

var footer = [...]string{"G00 Z50.000", "G28 X0 Y0", "M30", "%"}

// WriteTo writes the G-code text of the program to w.
func (p Program) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	writeLine := func(s string) error {
		c, err := bw.WriteString(s + "\n")
		n += int64(c)
		return err
	}
	header := [...]string{"%", fmt.Sprintf("O%d (PLATE FORMING)", p.ID), "G90 G94 G17 G21", "G28 G91 Z0", "G90", ""}
	for _, l := range header {
		if err := writeLine(l); err != nil {
			return n, err
		}
	}
	for i, in := range p.Instructions {
		if _, ok := in.(Comment); ok && i > 0 {
			// blank line closes the previous group
			if err := writeLine(""); err != nil {
				return n, err
			}
		}
		if err := writeLine(in.GCode()); err != nil {
			return n, err
		}
	}
	if len(p.Instructions) > 0 {
		if err := writeLine(""); err != nil {
			return n, err
		}
	}
	for _, l := range footer {
		if err := writeLine(l); err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
