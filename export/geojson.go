package export

import (
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/soypat/plate/tile"
)

// Features returns one polygon feature per tile of the flat layout.
// Rings are closed and counter-clockwise.
func Features(tiles []tile.Tile) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range tiles {
		ring := make(orb.Ring, 0, len(t.Flat)+1)
		for _, p := range t.Flat {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		ring = append(ring, ring[0])
		f := geojson.NewFeature(orb.Polygon{ring})
		f.ID = t.ID
		f.Properties["label"] = Label(t)
		f.Properties["col"] = t.Col
		f.Properties["row"] = t.Row
		f.Properties["area"] = t.Area
		f.Properties["projected_area"] = t.ProjectedArea()
		f.Properties["resolved"] = t.Resolved
		strategies := make([]int, len(t.Strategies))
		for i, s := range t.Strategies {
			strategies[i] = int(s)
		}
		f.Properties["strategies"] = strategies
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the flat layout of tiles to w as a feature collection.
func WriteGeoJSON(w io.Writer, tiles []tile.Tile) error {
	b, err := Features(tiles).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
