package toolpath_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/soypat/plate/field"
	"github.com/soypat/plate/toolpath"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestForce(t *testing.T) {
	sy := toolpath.DefaultSynthesizer()
	for _, test := range []struct {
		strain, want float64
	}{
		{0.05, 30},
		{0.01, 30},
		{0.001, 3},
		{0, 0},
	} {
		if got := sy.Force(test.strain); math.Abs(got-test.want) > 1e-12 {
			t.Errorf("force for strain %v: want %v, got %v", test.strain, test.want, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	sy := toolpath.DefaultSynthesizer()
	seg := toolpath.NewSegment(r3.Vec{X: 1.234, Y: 5.678}, r3.Vec{X: 9, Y: 5.678}, 0.001)
	prog, st := sy.Synthesize([][]toolpath.Segment{{seg}})
	if st.Groups != 1 || st.Segments != 1 || st.Discarded != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
	var buf bytes.Buffer
	n, err := prog.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}
	text := buf.String()
	for _, want := range []string{"M102 P3.0", "G01 X9.000 Y5.678 Z0.000 F600.0", "(Path 1)"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	got, err := toolpath.Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != toolpath.DefaultProgram {
		t.Errorf("want program %d, got %d", toolpath.DefaultProgram, got.ID)
	}
	pts := toolpath.Points(got.Instructions)
	want := []r3.Vec{{X: 1.234, Y: 5.678}, {X: 9, Y: 5.678}}
	if len(pts) != len(want) {
		t.Fatalf("want %d points, got %d: %v", len(want), len(pts), pts)
	}
	for i := range want {
		if r3.Norm(r3.Sub(pts[i], want[i])) > 1e-3 {
			t.Errorf("point %d: want %v, got %v", i, want[i], pts[i])
		}
	}
	if len(got.Instructions) != len(prog.Instructions) {
		t.Errorf("want %d instructions parsed, got %d", len(prog.Instructions), len(got.Instructions))
	}
}

func TestFraming(t *testing.T) {
	sy := toolpath.DefaultSynthesizer()
	a := toolpath.NewSegment(r3.Vec{}, r3.Vec{X: 1}, 0.01)
	b := toolpath.NewSegment(r3.Vec{Y: 1}, r3.Vec{X: 1, Y: 1}, 0.01)
	prog, _ := sy.Synthesize([][]toolpath.Segment{{a}, {b}})
	var buf bytes.Buffer
	if _, err := prog.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	head := []string{"%", "O1000 (PLATE FORMING)", "G90 G94 G17 G21", "G28 G91 Z0", "G90", "", "(Path 1)"}
	for i, want := range head {
		if lines[i] != want {
			t.Errorf("header line %d: want %q, got %q", i, want, lines[i])
		}
	}
	tail := []string{"M104", "", "G00 Z50.000", "G28 X0 Y0", "M30", "%"}
	off := len(lines) - len(tail)
	for i, want := range tail {
		if lines[off+i] != want {
			t.Errorf("footer line %d: want %q, got %q", i, want, lines[off+i])
		}
	}
	// 6 header, 2 groups of comment + 4 lines + blank, 4 footer.
	if len(lines) != 6+2*6+4 {
		t.Errorf("unexpected line count %d:\n%s", len(lines), buf.String())
	}
	if lines[11] != "" || lines[12] != "(Path 2)" {
		t.Errorf("groups should be separated by a blank line, got %q %q", lines[11], lines[12])
	}
}

func TestSynthesizeDiscard(t *testing.T) {
	sy := toolpath.DefaultSynthesizer()
	sy.MaxGroups = 1
	good := toolpath.NewSegment(r3.Vec{}, r3.Vec{X: 1}, 0.01)
	zero := toolpath.NewSegment(r3.Vec{X: 1}, r3.Vec{X: 1}, 0.01)
	nan := toolpath.NewSegment(r3.Vec{X: math.NaN()}, r3.Vec{X: 1}, 0.01)
	prog, st := sy.Synthesize([][]toolpath.Segment{{zero}, {nan, good}, {good, good}})
	if st.Groups != 1 || st.Segments != 1 || st.Discarded != 4 {
		t.Errorf("unexpected stats %+v", st)
	}
	if c, ok := prog.Instructions[0].(toolpath.Comment); !ok || c.Text != "Path 1" {
		t.Errorf("first instruction should be the group comment, got %v", prog.Instructions[0])
	}
	if len(prog.Instructions) != 5 {
		t.Errorf("want 5 instructions, got %d", len(prog.Instructions))
	}

	// Groups past the default limit are dropped whole.
	many := make([][]toolpath.Segment, 12)
	for i := range many {
		many[i] = []toolpath.Segment{good}
	}
	_, st = toolpath.DefaultSynthesizer().Synthesize(many)
	if st.Groups != toolpath.DefaultMaxGroups || st.Discarded != 2 {
		t.Errorf("want %d groups and 2 discarded, got %+v", toolpath.DefaultMaxGroups, st)
	}
}

func TestSegmentsAndGrid(t *testing.T) {
	lines := toolpath.GridLines(r2.Box{Max: r2.Vec{X: 6, Y: 6}}, 5)
	if len(lines) != 10 {
		t.Fatalf("want 10 lines, got %d", len(lines))
	}
	if lines[0][0].Y != 1 || lines[4][0].Y != 5 || lines[5][0].X != 1 || lines[9][1].Y != 6 {
		t.Errorf("unexpected grid lines %v", lines)
	}
	poly := []r3.Vec{{}, {X: 1}, {X: 1}, {X: 3}}
	segs := toolpath.Segments(poly, field.Ramp{Step: field.DefaultRampStep}, toolpath.DefaultMinLength)
	if len(segs) != 2 {
		t.Fatalf("want 2 segments, got %d", len(segs))
	}
	if segs[0].Strain != 0.001 || math.Abs(segs[1].Strain-0.003) > 1e-15 || segs[1].Length != 2 {
		t.Errorf("unexpected segments %+v", segs)
	}
}

func TestParseError(t *testing.T) {
	_, err := toolpath.Parse(strings.NewReader("%\nG01 X1.0 Yfoo\n%\n"))
	if err == nil {
		t.Fatal("expected malformed word error")
	}
	prog, err := toolpath.Parse(strings.NewReader("G00 Z50.000\nG01 X1 Y2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Instructions) != 1 {
		t.Fatalf("retract without XY should be skipped, got %v", prog.Instructions)
	}
	if e := prog.Instructions[0].(toolpath.Engage); e.Z != 0 || e.X != 1 || e.Y != 2 {
		t.Errorf("unexpected move %+v", e)
	}
}
