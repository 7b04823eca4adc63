package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

type featureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	ID         any            `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// nameKeys are the property names world datasets use for the country name,
// in order of preference.
var nameKeys = []string{"name", "NAME", "ADMIN", "admin", "name_en"}

// ParseGeoJSON decodes a FeatureCollection of Polygon/MultiPolygon features.
// Features without a name or with other geometry types are skipped.
func ParseGeoJSON(r io.Reader) ([]*Feature, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode boundaries: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("boundaries: expected FeatureCollection, got %q", fc.Type)
	}

	features := make([]*Feature, 0, len(fc.Features))
	for _, gf := range fc.Features {
		name := featureName(gf.Properties)
		if name == "" || gf.Geometry == nil {
			continue
		}

		var polygons []Polygon
		switch gf.Geometry.Type {
		case "Polygon":
			var coords [][][]float64
			if err := json.Unmarshal(gf.Geometry.Coordinates, &coords); err != nil {
				return nil, fmt.Errorf("boundaries: bad polygon for %s: %w", name, err)
			}
			polygons = []Polygon{toPolygon(coords)}
		case "MultiPolygon":
			var coords [][][][]float64
			if err := json.Unmarshal(gf.Geometry.Coordinates, &coords); err != nil {
				return nil, fmt.Errorf("boundaries: bad multipolygon for %s: %w", name, err)
			}
			for _, c := range coords {
				polygons = append(polygons, toPolygon(c))
			}
		default:
			continue
		}

		f := &Feature{Name: name, Polygons: polygons}
		if id, ok := gf.ID.(string); ok {
			f.Code = id
		}
		if err := f.computeBounds(); err != nil {
			continue
		}
		features = append(features, f)
	}

	return features, nil
}

func featureName(props map[string]any) string {
	for _, key := range nameKeys {
		if v, ok := props[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// toPolygon converts GeoJSON [lon, lat] positions
func toPolygon(coords [][][]float64) Polygon {
	poly := make(Polygon, 0, len(coords))
	for _, ringCoords := range coords {
		ring := make(Ring, 0, len(ringCoords))
		for _, pos := range ringCoords {
			if len(pos) < 2 {
				continue
			}
			ring = append(ring, Point{Lat: pos[1], Lon: pos[0]})
		}
		poly = append(poly, ring)
	}
	return poly
}

func (f *Feature) computeBounds() error {
	f.Min = Point{Lat: math.Inf(1), Lon: math.Inf(1)}
	f.Max = Point{Lat: math.Inf(-1), Lon: math.Inf(-1)}

	n := 0
	for _, poly := range f.Polygons {
		if len(poly) == 0 {
			continue
		}
		for _, p := range poly[0] {
			f.Min.Lat = math.Min(f.Min.Lat, p.Lat)
			f.Min.Lon = math.Min(f.Min.Lon, p.Lon)
			f.Max.Lat = math.Max(f.Max.Lat, p.Lat)
			f.Max.Lon = math.Max(f.Max.Lon, p.Lon)
			n++
		}
	}

	if n == 0 {
		return errors.New("empty geometry")
	}
	return nil
}
