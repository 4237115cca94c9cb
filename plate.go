// Package plate turns curved parametric surfaces into flat manufacturing
// sheets and forming toolpaths.
//
// A Session runs the pipeline: the surface is sampled, developed into
// the plane and tiled into sheets whose boundaries are mapped back onto
// the surface. A synthetic strain field drives the force of the forming
// toolpath that closes the run.
package plate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/soypat/plate/boundary"
	"github.com/soypat/plate/config"
	"github.com/soypat/plate/develop"
	"github.com/soypat/plate/field"
	"github.com/soypat/plate/internal/d3"
	"github.com/soypat/plate/sample"
	"github.com/soypat/plate/surface"
	"github.com/soypat/plate/tile"
	"github.com/soypat/plate/toolpath"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Status is the outcome of a run.
type Status int

const (
	// OK means every stage succeeded on its primary path.
	OK Status = iota
	// Degraded means the run completed using a fallback: bounding box
	// development, quadrant sheets or identity mapped corners.
	Degraded
	// Failed means the run stopped with an error.
	Failed
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result holds the structured output of every stage of a run.
type Result struct {
	ID     uuid.UUID
	Mode   config.Mode
	Status Status
	Info   surface.Info
	Table  sample.Table
	Map    *develop.Map
	Layout tile.Layout
	// Quadrants is set when projection produced no sheet and the
	// footprint quadrants were used instead.
	Quadrants bool
	Mapping   boundary.Stats
	Welds     []boundary.Weld
	Field     FieldResult
	Program   toolpath.Program
	Toolpath  toolpath.Stats
	// Paths are the draped processing lines the program was built from.
	Paths [][]r3.Vec
	// Simulation is the placeholder forming of a flat plate spanning
	// the surface footprint.
	Simulation field.Simulation
}

// FieldResult holds the evaluated field of a run.
type FieldResult struct {
	Policy   string
	Points   []r3.Vec
	Values   []float64
	Levels   field.Levels
	Summary  field.Summary
	Contours []field.Contour
	// InPlane and Bending split the largest strain of the centroid policy.
	InPlane, Bending float64
}

// Session runs the pipeline on one surface with one configuration.
// A Session is not safe for concurrent use.
type Session struct {
	Config  config.Config
	Surface surface.Surface
	ID      uuid.UUID
	// Log receives stage events. It discards everything by default.
	Log *slog.Logger
}

// NewSession validates cfg and builds its surface.
func NewSession(cfg config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := cfg.Surface.Build()
	if err != nil {
		return nil, err
	}
	return &Session{Config: cfg, Surface: s, ID: uuid.New(), Log: newNopLogger()}, nil
}

// Run executes the sheet stage of the configured mode followed by the
// field and toolpath stages.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch s.Config.Mode {
	case config.ModeProject:
		res, err = s.Project()
	default:
		res, err = s.Develop()
	}
	if err != nil {
		return res, err
	}
	if err = ctx.Err(); err != nil {
		return res, s.fail(res, err)
	}
	res.Info, err = surface.Analyze(s.Surface, s.Config.Sample.NU)
	if err != nil {
		s.logger().Warn("surface analysis unavailable", "err", err)
	}
	res.Field, err = s.Analyze()
	if err != nil {
		return res, s.fail(res, err)
	}
	if err = ctx.Err(); err != nil {
		return res, s.fail(res, err)
	}
	res.Paths, res.Program, res.Toolpath, err = s.Toolpath(res)
	if err != nil {
		return res, s.fail(res, err)
	}
	bb := s.Surface.Bounds()
	res.Simulation, err = field.Simulate(r2.Box{Min: d3.Lower(bb.Min), Max: d3.Lower(bb.Max)}, field.DefaultDivisions, field.DefaultDepth)
	if err != nil {
		s.logger().Warn("forming not simulated", "stage", "field", "err", err)
	} else {
		s.logger().Debug("forming simulated", "stage", "field", "max_z", res.Simulation.MaxZ)
	}
	s.logger().Info("run complete", "status", res.Status, "sheets", res.Layout.Count())
	return res, nil
}

// Develop samples the surface, flattens it and tiles the development.
// Tile corners are mapped back onto the surface. A surface that cannot
// be sampled is developed from its bounding box and the result is
// Degraded.
func (s *Session) Develop() (*Result, error) {
	cfg := s.Config
	log := s.logger()
	res := &Result{ID: s.ID, Mode: config.ModeDevelop}
	table, err := sample.Sample(s.Surface, cfg.Sample.NU, cfg.Sample.NV)
	if err != nil {
		log.Warn("sampling failed, using bounding box development", "stage", "sample", "err", err)
	} else {
		log.Debug("sampled", "stage", "sample", "points", table.Len())
	}
	res.Table = table
	res.Map, err = develop.New(s.Surface, table, cfg.Develop.Scale)
	if err != nil {
		return res, s.fail(res, err)
	}
	if res.Map.Fallback {
		res.Status = Degraded
	}
	log.Debug("developed", "stage", "develop", "extents", res.Map.Size(), "fallback", res.Map.Fallback)

	res.Layout, err = cfg.Tiler().Layout(res.Map.Extents)
	if err != nil {
		return res, s.fail(res, err)
	}
	log.Debug("tiled", "stage", "tile", "cols", res.Layout.Cols, "rows", res.Layout.Rows,
		"sheets", res.Layout.Count(), "discarded", res.Layout.Discarded())

	m := s.mapper(res.Map)
	res.Mapping = m.MapTiles(res.Layout.Tiles)
	s.finishSheets(res)
	return res, nil
}

// Project tiles the XY footprint of the surface with sheets overlapping
// by the configured weld and projects their corners onto the surface.
// Sheets with a corner the surface could not be found under are
// dropped. When none remain the footprint quadrants are used instead.
func (s *Session) Project() (*Result, error) {
	cfg := s.Config
	log := s.logger()
	res := &Result{ID: s.ID, Mode: config.ModeProject}
	var err error
	res.Map, err = develop.BoundingBox(s.Surface.Bounds())
	if err != nil {
		return res, s.fail(res, err)
	}
	res.Layout, err = cfg.Tiler().Layout(res.Map.Extents)
	if err != nil {
		return res, s.fail(res, err)
	}
	m := s.mapper(res.Map)
	kept := res.Layout.Tiles[:0]
	for i := range res.Layout.Tiles {
		t := res.Layout.Tiles[i]
		st := m.MapTile(&t)
		if st.Degraded() || !t.Valid(cfg.Sheet.MinArea) {
			continue
		}
		for k := range st {
			res.Mapping[k] += st[k]
		}
		kept = append(kept, t)
	}
	res.Layout.Tiles = kept
	log.Debug("projected", "stage", "map", "sheets", len(kept), "candidates", res.Layout.Candidates)
	if len(kept) == 0 {
		log.Warn("projection produced no sheets, using quadrants", "stage", "tile")
		res.Quadrants = true
		res.Status = Degraded
		res.Layout.Tiles = tile.Quadrants(res.Map.Extents)
		res.Mapping = m.MapTiles(res.Layout.Tiles)
	}
	s.finishSheets(res)
	return res, nil
}

func (s *Session) finishSheets(res *Result) {
	if res.Mapping.Degraded() {
		res.Status = Degraded
	}
	res.Welds = boundary.Welds(res.Layout.Tiles, s.Config.Boundary.WeldDistance)
	s.logger().Info("sheets ready", "stage", "map", "mode", res.Mode, "sheets", res.Layout.Count(),
		"identity", res.Mapping[boundary.Identity], "welds", len(res.Welds), "status", res.Status)
}

// Analyze evaluates the configured field policy on a density×density
// sample of the surface and derives its ISO contours.
func (s *Session) Analyze() (FieldResult, error) {
	cfg := s.Config
	fr := FieldResult{Policy: cfg.Field.Policy}
	f, err := field.ByName(cfg.Field.Policy)
	if err != nil {
		return fr, err
	}
	fr.Levels, err = cfg.Levels()
	if err != nil {
		return fr, err
	}
	table, err := sample.Sample(s.Surface, cfg.Field.Density, cfg.Field.Density)
	if err != nil {
		return fr, fmt.Errorf("field samples: %w", err)
	}
	fr.Points = table.Positions()
	fr.Values = field.Values(f, fr.Points)
	fr.Summary = field.Summarize(fr.Values, fr.Levels)
	fr.Contours = field.Contours(fr.Points, fr.Values, fr.Levels, contourTol(fr.Levels))
	if c, ok := f.(field.Centroid); ok && len(fr.Values) > 0 {
		fr.InPlane, fr.Bending = c.Split(fr.Summary.Max)
	}
	s.logger().Debug("field evaluated", "stage", "field", "policy", fr.Policy,
		"min", fr.Summary.Min, "max", fr.Summary.Max, "contours", len(fr.Contours))
	return fr, nil
}

// contourTol is half the smallest gap between consecutive levels.
func contourTol(l field.Levels) float64 {
	tol := math.Inf(1)
	for i := 1; i < len(l.Thresholds); i++ {
		tol = math.Min(tol, l.Thresholds[i]-l.Thresholds[i-1])
	}
	if math.IsInf(tol, 1) {
		return math.Abs(l.Thresholds[0]) / 2
	}
	return tol / 2
}

// Toolpath synthesizes the forming program of res. In develop mode each
// sheet outline is one group, traced through the development of res. In
// project mode processing lines cross the footprint and are draped onto
// the surface.
func (s *Session) Toolpath(res *Result) ([][]r3.Vec, toolpath.Program, toolpath.Stats, error) {
	cfg := s.Config
	if res == nil || res.Map == nil {
		return nil, toolpath.Program{}, toolpath.Stats{}, errors.New("toolpath needs a developed result")
	}
	strain, err := field.ByName(cfg.Toolpath.Strain)
	if err != nil {
		return nil, toolpath.Program{}, toolpath.Stats{}, err
	}
	m := s.mapper(res.Map)
	n := cfg.Field.Density - 1
	var paths [][]r3.Vec
	if res.Mode == config.ModeProject {
		for _, line := range toolpath.GridLines(res.Map.Extents, cfg.Toolpath.Lines) {
			paths = append(paths, boundary.Points(m.MapLine(d3.Lower(line[0]), d3.Lower(line[1]), n)))
		}
	} else {
		for i := range res.Layout.Tiles {
			paths = append(paths, outline(m, &res.Layout.Tiles[i], n))
		}
	}
	groups := make([][]toolpath.Segment, len(paths))
	for i, path := range paths {
		groups[i] = toolpath.Segments(path, strain, cfg.Toolpath.MinSegment)
	}
	prog, st := cfg.Synthesizer().Synthesize(groups)
	s.logger().Info("toolpath synthesized", "stage", "toolpath", "groups", st.Groups,
		"segments", st.Segments, "discarded", st.Discarded)
	if st.Segments == 0 {
		return paths, prog, st, errors.New("toolpath has no segments")
	}
	return paths, prog, st, nil
}

// outline traces the closed flat boundary of t on the surface with n
// subdivisions per edge.
func outline(m *boundary.Mapper, t *tile.Tile, n int) []r3.Vec {
	var path []r3.Vec
	for k := range t.Flat {
		edge := boundary.Points(m.MapLine(t.Flat[k], t.Flat[(k+1)%4], n))
		if k > 0 {
			edge = edge[1:]
		}
		path = append(path, edge...)
	}
	return path
}

func (s *Session) mapper(dev *develop.Map) *boundary.Mapper {
	b := s.Config.Boundary
	return boundary.NewMapper(s.Surface, dev, boundary.Memoize(b.Memoize), boundary.Tessellation(b.Tessellation))
}

func (s *Session) fail(res *Result, err error) error {
	if res != nil {
		res.Status = Failed
	}
	s.logger().Error("run failed", "err", err)
	return err
}

func (s *Session) logger() *slog.Logger {
	if s.Log == nil {
		return newNopLogger()
	}
	return s.Log.With("session", s.ID.String())
}
