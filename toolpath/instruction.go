// Package toolpath turns strain carrying path segments into forming
// machine instructions and their G-code text form.
package toolpath

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Instruction is a single toolpath command. The set of implementations
// is closed: Rapid, Engage, SetForce, ClearForce and Comment.
type Instruction interface {
	// GCode returns the text line of the instruction.
	GCode() string
	instruction()
}

// Rapid is a non-cutting positioning move (G00).
type Rapid struct {
	X, Y, Z float64
}

// Engage is a working move at a feed rate (G01).
type Engage struct {
	X, Y, Z float64
	Feed    float64
}

// SetForce engages the forming head with a force (M102).
type SetForce struct {
	Value float64
}

// ClearForce disengages the forming head (M104).
type ClearForce struct{}

// Comment is a G-code comment line.
type Comment struct {
	Text string
}

func (r Rapid) GCode() string {
	return fmt.Sprintf("G00 X%.3f Y%.3f Z%.3f", r.X, r.Y, r.Z)
}

func (e Engage) GCode() string {
	return fmt.Sprintf("G01 X%.3f Y%.3f Z%.3f F%.1f", e.X, e.Y, e.Z, e.Feed)
}

func (f SetForce) GCode() string { return fmt.Sprintf("M102 P%.1f", f.Value) }
func (ClearForce) GCode() string  { return "M104" }
func (c Comment) GCode() string   { return "(" + c.Text + ")" }

func (Rapid) instruction()      {}
func (Engage) instruction()     {}
func (SetForce) instruction()   {}
func (ClearForce) instruction() {}
func (Comment) instruction()    {}

// Vec returns the target of the move.
func (r Rapid) Vec() r3.Vec { return r3.Vec{X: r.X, Y: r.Y, Z: r.Z} }

// Vec returns the target of the move.
func (e Engage) Vec() r3.Vec { return r3.Vec{X: e.X, Y: e.Y, Z: e.Z} }

// Points returns the targets of the moves among instrs in order.
func Points(instrs []Instruction) []r3.Vec {
	var pts []r3.Vec
	for _, in := range instrs {
		switch m := in.(type) {
		case Rapid:
			pts = append(pts, m.Vec())
		case Engage:
			pts = append(pts, m.Vec())
		}
	}
	return pts
}
