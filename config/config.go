// Package config holds the run options of a plate session, their per
// mode defaults and the YAML and TOML file loaders.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soypat/plate/boundary"
	"github.com/soypat/plate/develop"
	"github.com/soypat/plate/field"
	"github.com/soypat/plate/tile"
	"github.com/soypat/plate/toolpath"
)

// Mode selects how sheets are laid out.
type Mode string

const (
	// ModeDevelop flattens the surface, tiles the development and maps
	// tile boundaries back onto the surface.
	ModeDevelop Mode = "develop"
	// ModeProject tiles the XY footprint of the surface with overlapping
	// sheets and projects them onto it.
	ModeProject Mode = "project"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the read-only option set of a run.
type Config struct {
	Mode     Mode     `yaml:"mode" toml:"mode"`
	Sheet    Sheet    `yaml:"sheet" toml:"sheet"`
	Sample   Sample   `yaml:"sample" toml:"sample"`
	Develop  Develop  `yaml:"develop" toml:"develop"`
	Field    Field    `yaml:"field" toml:"field"`
	Toolpath Toolpath `yaml:"toolpath" toml:"toolpath"`
	Boundary Boundary `yaml:"boundary" toml:"boundary"`
	Log      Log      `yaml:"log" toml:"log"`
	Surface  Surface  `yaml:"surface" toml:"surface"`
	// Output is the path prefix of written artifacts.
	Output string `yaml:"output" toml:"output"`
}

type Sheet struct {
	Width   float64 `yaml:"width" toml:"width"`
	Height  float64 `yaml:"height" toml:"height"`
	Weld    float64 `yaml:"weld" toml:"weld"`
	MinArea float64 `yaml:"min_area" toml:"min_area"`
}

type Sample struct {
	NU int `yaml:"nu" toml:"nu"`
	NV int `yaml:"nv" toml:"nv"`
}

type Develop struct {
	Scale float64 `yaml:"scale" toml:"scale"`
}

type Field struct {
	// Density is the per-direction sample count of field evaluation.
	Density int       `yaml:"density" toml:"density"`
	Levels  []float64 `yaml:"levels" toml:"levels"`
	Policy  string    `yaml:"policy" toml:"policy"`
}

type Toolpath struct {
	ForceCap   float64 `yaml:"force_cap" toml:"force_cap"`
	ForceScale float64 `yaml:"force_scale" toml:"force_scale"`
	Feed       float64 `yaml:"feed" toml:"feed"`
	Program    int     `yaml:"program" toml:"program"`
	MinSegment float64 `yaml:"min_segment" toml:"min_segment"`
	MaxGroups  int     `yaml:"max_groups" toml:"max_groups"`
	// Lines is the number of horizontal and of vertical processing lines.
	Lines int `yaml:"lines" toml:"lines"`
	// Strain names the field policy giving segment strain.
	Strain string `yaml:"strain" toml:"strain"`
}

type Boundary struct {
	Memoize      bool    `yaml:"memoize" toml:"memoize"`
	WeldDistance float64 `yaml:"weld_distance" toml:"weld_distance"`
	Tessellation int     `yaml:"tessellation" toml:"tessellation"`
}

type Log struct {
	Level string `yaml:"level" toml:"level"`
}

// Defaults returns the options of mode. An empty mode means ModeDevelop.
func Defaults(mode Mode) Config {
	if mode == "" {
		mode = ModeDevelop
	}
	cfg := Config{
		Mode: mode,
		Sheet: Sheet{
			Width:   tile.DefaultSheetWidth,
			Height:  tile.DefaultSheetHeight,
			Weld:    0.01,
			MinArea: tile.DefaultMinArea,
		},
		Sample:  Sample{NU: 20, NV: 20},
		Develop: Develop{Scale: develop.DefaultScale},
		Field: Field{
			Density: 25,
			Levels:  append([]float64(nil), field.DefaultStressLevels...),
			Policy:  "stress",
		},
		Toolpath: Toolpath{
			ForceCap:   toolpath.DefaultForceCap,
			ForceScale: toolpath.DefaultForceScale,
			Feed:       toolpath.DefaultFeed,
			Program:    toolpath.DefaultProgram,
			MinSegment: toolpath.DefaultMinLength,
			MaxGroups:  toolpath.DefaultMaxGroups,
			Lines:      5,
			Strain:     "ramp",
		},
		Boundary: Boundary{
			WeldDistance: boundary.DefaultWeldDistance,
			Tessellation: boundary.DefaultTessellation,
		},
		Log:     Log{Level: "info"},
		Surface: DefaultSurface(),
		Output:  "plate",
	}
	if mode == ModeProject {
		cfg.Sheet.Weld = 0.05
		cfg.Sample = Sample{NU: 15, NV: 15}
	}
	return cfg
}

// Validate reports the first invalid option wrapped in ErrInvalid.
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}
	switch c.Mode {
	case ModeDevelop, ModeProject:
	default:
		return bad("unknown mode %q", c.Mode)
	}
	if !positive(c.Sheet.Width) || !positive(c.Sheet.Height) {
		return bad("sheet size %gx%g", c.Sheet.Width, c.Sheet.Height)
	}
	if _, _, err := c.Tiler().Pitch(); err != nil {
		return bad("%v", err)
	}
	if c.Sheet.MinArea < 0 || math.IsNaN(c.Sheet.MinArea) {
		return bad("min_area %g", c.Sheet.MinArea)
	}
	if c.Sample.NU < 2 || c.Sample.NV < 2 {
		return bad("sample resolution %dx%d", c.Sample.NU, c.Sample.NV)
	}
	if !positive(c.Develop.Scale) {
		return bad("develop scale %g", c.Develop.Scale)
	}
	if c.Field.Density < 2 {
		return bad("field density %d", c.Field.Density)
	}
	if _, err := c.Levels(); err != nil {
		return bad("%v", err)
	}
	if _, err := field.ByName(c.Field.Policy); err != nil {
		return bad("%v", err)
	}
	if _, err := field.ByName(c.Toolpath.Strain); err != nil {
		return bad("%v", err)
	}
	tp := c.Toolpath
	if !positive(tp.ForceCap) || !positive(tp.ForceScale) || !positive(tp.Feed) {
		return bad("toolpath force_cap=%g force_scale=%g feed=%g", tp.ForceCap, tp.ForceScale, tp.Feed)
	}
	if tp.Program < 0 || tp.MaxGroups < 0 || tp.Lines < 0 || tp.MinSegment < 0 {
		return bad("negative toolpath option")
	}
	if !positive(c.Boundary.WeldDistance) || c.Boundary.Tessellation < 1 {
		return bad("boundary weld_distance=%g tessellation=%d", c.Boundary.WeldDistance, c.Boundary.Tessellation)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return bad("log level %q", c.Log.Level)
	}
	return c.Surface.Validate()
}

// Tiler returns the sheet tiler of the options.
func (c Config) Tiler() tile.Tiler {
	return tile.Tiler{SheetW: c.Sheet.Width, SheetH: c.Sheet.Height, Weld: c.Sheet.Weld, MinArea: c.Sheet.MinArea}
}

// Levels returns the ISO levels of the options.
func (c Config) Levels() (field.Levels, error) {
	if equalFloats(c.Field.Levels, field.DefaultStressLevels) {
		return field.DefaultLevels(), nil
	}
	return field.NewLevels(c.Field.Levels)
}

// Synthesizer returns the toolpath synthesizer of the options.
func (c Config) Synthesizer() toolpath.Synthesizer {
	tp := c.Toolpath
	return toolpath.Synthesizer{
		ForceCap:   tp.ForceCap,
		ForceScale: tp.ForceScale,
		Feed:       tp.Feed,
		MinLength:  tp.MinSegment,
		MaxGroups:  tp.MaxGroups,
		Program:    tp.Program,
	}
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
