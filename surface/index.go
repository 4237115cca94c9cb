package surface

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = kdSamples{}
	_ kdtree.Comparable = kdSample{}
)

// index is a kd-tree of surface points tagged with their parameters.
// It provides the starting guess for closest parameter refinement.
type index struct {
	tree *kdtree.Tree
}

func newIndex(f func(u, v float64) r3.Vec, dom Domain, n int) index {
	samples := make(kdSamples, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u, v := dom.Lerp(float64(i)/float64(n-1), float64(j)/float64(n-1))
			samples = append(samples, kdSample{P: f(u, v), U: u, V: v})
		}
	}
	return index{tree: kdtree.New(samples, false)}
}

// nearest returns the sample closest to p.
func (ix index) nearest(p r3.Vec) kdSample {
	got, _ := ix.tree.Nearest(kdSample{P: p})
	return got.(kdSample)
}

type kdSamples []kdSample

type kdSample struct {
	P    r3.Vec
	U, V float64
}

func (k kdSamples) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdSamples) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdSamples) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), samples: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdSamples) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdSample) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdSample), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdSample) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdSample) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.P, b.(kdSample).P))
}

// c = a.dim - b.dim
func kdComp(a, b kdSample, dim int) float64 {
	switch dim {
	case 0:
		return a.P.X - b.P.X
	case 1:
		return a.P.Y - b.P.Y
	}
	return a.P.Z - b.P.Z
}

type kdPlane struct {
	dim     int
	samples kdSamples
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.samples[i], p.samples[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}
func (p kdPlane) Len() int {
	return len(p.samples)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.samples = p.samples[start:end]
	return p
}
