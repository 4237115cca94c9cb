package render_test

import (
	"bytes"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/render"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

// unitSquare is a square of side 1 on the XY plane split in two triangles.
func unitSquare(z float64) []render.Triangle3 {
	a := r3.Vec{X: 0, Y: 0, Z: z}
	b := r3.Vec{X: 1, Y: 0, Z: z}
	c := r3.Vec{X: 1, Y: 1, Z: z}
	d := r3.Vec{X: 0, Y: 1, Z: z}
	return []render.Triangle3{
		{V: [3]r3.Vec{a, b, c}},
		{V: [3]r3.Vec{a, c, d}},
	}
}

func TestTriangleNormalArea(t *testing.T) {
	model := unitSquare(0)
	for i, tri := range model {
		if !d3.EqualWithin(tri.Normal(), r3.Vec{Z: 1}, 1e-12) {
			t.Errorf("triangle %d: want normal +Z, got %v", i, tri.Normal())
		}
		if got := tri.Area(); got != 0.5 {
			t.Errorf("triangle %d: want area 0.5, got %v", i, got)
		}
	}
	degen := render.Triangle3{V: [3]r3.Vec{{}, {}, {X: 1}}}
	if !degen.Degenerate(0) {
		t.Error("expected degenerate triangle")
	}
	if degen.Normal() != (r3.Vec{}) {
		t.Error("degenerate triangle should have zero normal")
	}
}

func TestRaycast(t *testing.T) {
	model := unitSquare(2)
	for _, test := range []struct {
		origin, dir r3.Vec
		want        r3.Vec
		hit         bool
	}{
		{origin: r3.Vec{X: 0.25, Y: 0.5}, dir: r3.Vec{Z: 1}, want: r3.Vec{X: 0.25, Y: 0.5, Z: 2}, hit: true},
		{origin: r3.Vec{X: 0.25, Y: 0.5, Z: 5}, dir: r3.Vec{Z: -1}, want: r3.Vec{X: 0.25, Y: 0.5, Z: 2}, hit: true},
		{origin: r3.Vec{X: 0.25, Y: 0.5}, dir: r3.Vec{Z: -1}, hit: false}, // plane is behind origin
		{origin: r3.Vec{X: 3, Y: 0.5}, dir: r3.Vec{Z: 1}, hit: false},
		{origin: r3.Vec{X: 0.5, Y: 0.5}, dir: r3.Vec{X: 1}, hit: false}, // parallel
	} {
		got, ok := render.Raycast(model, test.origin, test.dir)
		if ok != test.hit {
			t.Errorf("ray %v->%v: want hit=%v, got %v", test.origin, test.dir, test.hit, ok)
			continue
		}
		if ok && !d3.EqualWithin(got, test.want, 1e-12) {
			t.Errorf("ray %v->%v: want %v, got %v", test.origin, test.dir, test.want, got)
		}
	}
}

func TestBounds(t *testing.T) {
	model := append(unitSquare(-1), unitSquare(3)...)
	bb := render.Bounds(model)
	want := r3.Box{Min: r3.Vec{Z: -1}, Max: r3.Vec{X: 1, Y: 1, Z: 3}}
	if bb != want {
		t.Errorf("want bounds %v, got %v", want, bb)
	}
	if render.Bounds(nil) != (r3.Box{}) {
		t.Error("empty model should have zero bounds")
	}
}

func TestSTLCreateWriteRead(t *testing.T) {
	model := append(unitSquare(0), unitSquare(1.5)...)
	filename := filepath.Join(t.TempDir(), "square.stl")
	err := render.CreateSTL(filename, model)
	if err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	bfile, err := io.ReadAll(fp)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84+50*len(model) {
		t.Fatalf("unexpected STL length %d", b.Len())
	}
	if b.String() != string(bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	got, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("want %d triangles, got %d", len(model), len(got))
	}
	for i := range model {
		for k := 0; k < 3; k++ {
			if !d3.EqualWithin(got[i].V[k], model[i].V[k], 1e-6) {
				t.Errorf("triangle %d vertex %d: want %v, got %v", i, k, model[i].V[k], got[i].V[k])
			}
		}
	}
}

func TestSTLErrors(t *testing.T) {
	if err := render.WriteSTL(io.Discard, nil); err == nil {
		t.Error("expected error writing empty model")
	}
	if _, err := render.ReadSTL(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Error("expected error on short header")
	}
	var b bytes.Buffer
	degen := []render.Triangle3{{V: [3]r3.Vec{{}, {}, {X: 1}}}}
	if err := render.WriteSTL(&b, degen); err != nil {
		t.Fatal(err)
	}
	if _, err := render.ReadSTL(&b); err == nil {
		t.Error("expected degenerate triangle error")
	}
	b.Reset()
	if err := render.WriteSTL(&b, unitSquare(0)); err != nil {
		t.Fatal(err)
	}
	truncated := b.Bytes()[:b.Len()-10]
	if _, err := render.ReadSTL(bytes.NewReader(truncated)); err == nil {
		t.Error("expected error on truncated triangle data")
	}
}

func TestPreviewDeterministic(t *testing.T) {
	model := append(unitSquare(0), render.Triangle3{V: [3]r3.Vec{{}, {X: 1}, {X: 0.5, Y: 0.5, Z: 1}}})
	view := render.DefaultView()
	view.Width, view.Height = 64, 48
	var pngs [2][]byte
	for i := range pngs {
		img, err := render.Preview(model, view)
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != view.Width || img.Bounds().Dy() != view.Height {
			t.Fatalf("unexpected image size %v", img.Bounds())
		}
		var b bytes.Buffer
		if err := png.Encode(&b, img); err != nil {
			t.Fatal(err)
		}
		pngs[i] = b.Bytes()
	}
	equal, err := cmpimg.EqualApprox("png", pngs[0], pngs[1], 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("repeated previews differ")
	}
	view.Far = 0
	if _, err := render.Preview(model, view); err == nil {
		t.Error("expected clipping plane error")
	}
}
