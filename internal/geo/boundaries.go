// Package geo holds the map model: the world-boundaries dataset with an
// R-Tree for hit testing, the map view state and tile math.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dhconnelly/rtreego"
)

const (
	tolerance   = 1e-9
	minChildren = 4
	maxChildren = 16
	dimensions  = 2
)

// ErrNoFeature is returned when no boundary contains the point
var ErrNoFeature = errors.New("no boundary at point")

// Ring is a closed polygon ring
type Ring []Point

// Polygon is an outer ring followed by zero or more holes
type Polygon []Ring

// Feature is one country boundary of the dataset
type Feature struct {
	Name     string
	Code     string
	Polygons []Polygon
	Min, Max Point
}

// Center returns the center of the feature's bounding box. A feature
// spanning most of the globe in longitude crosses the antimeridian (Russia,
// Fiji), so its center is taken from the vertex average of its largest outer
// ring instead.
func (f *Feature) Center() Point {
	if f.Max.Lon-f.Min.Lon > 180 {
		if c, ok := f.ringCentroid(); ok {
			return c
		}
	}
	return Point{
		Lat: (f.Min.Lat + f.Max.Lat) / 2,
		Lon: (f.Min.Lon + f.Max.Lon) / 2,
	}
}

func (f *Feature) ringCentroid() (Point, bool) {
	var largest Ring
	for _, poly := range f.Polygons {
		if len(poly) > 0 && len(poly[0]) > len(largest) {
			largest = poly[0]
		}
	}
	if len(largest) == 0 {
		return Point{}, false
	}

	var sum Point
	for _, p := range largest {
		sum.Lat += p.Lat
		sum.Lon += p.Lon
	}
	n := float64(len(largest))
	return Point{Lat: sum.Lat / n, Lon: sum.Lon / n}, true
}

// Contains reports whether p lies inside the feature (even-odd rule, holes
// excluded).
func (f *Feature) Contains(p Point) bool {
	for _, poly := range f.Polygons {
		if len(poly) == 0 || !ringContains(poly[0], p) {
			continue
		}
		inHole := false
		for _, hole := range poly[1:] {
			if ringContains(hole, p) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

func ringContains(ring Ring, p Point) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) &&
			p.Lon < (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lon {
			inside = !inside
		}
	}
	return inside
}

// spatialFeature wraps a Feature for R-Tree indexing
type spatialFeature struct {
	*Feature
	rect *rtreego.Rect
}

func (sf *spatialFeature) Bounds() *rtreego.Rect {
	return sf.rect
}

// Boundaries is a thread-safe index of boundary features
type Boundaries struct {
	tree     *rtreego.Rtree
	mu       sync.RWMutex
	features map[string]*Feature
}

// NewBoundaries indexes features
func NewBoundaries(features []*Feature) (*Boundaries, error) {
	b := &Boundaries{
		tree:     rtreego.NewTree(dimensions, minChildren, maxChildren),
		features: make(map[string]*Feature, len(features)),
	}

	for _, f := range features {
		rect, err := rtreego.NewRect(
			rtreego.Point{f.Min.Lat, f.Min.Lon},
			[]float64{
				f.Max.Lat - f.Min.Lat + tolerance,
				f.Max.Lon - f.Min.Lon + tolerance,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("invalid bounds for %s: %w", f.Name, err)
		}
		b.tree.Insert(&spatialFeature{Feature: f, rect: rect})
		b.features[strings.ToLower(f.Name)] = f
	}

	return b, nil
}

// FeatureAt returns the feature containing p
func (b *Boundaries) FeatureAt(p Point) (*Feature, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	candidates := b.tree.SearchIntersect(rtreego.Point{p.Lat, p.Lon}.ToRect(tolerance))
	for _, c := range candidates {
		sf, ok := c.(*spatialFeature)
		if !ok {
			continue
		}
		if sf.Contains(p) {
			return sf.Feature, nil
		}
	}
	return nil, ErrNoFeature
}

// Lookup returns a feature by name, case-insensitively
func (b *Boundaries) Lookup(name string) (*Feature, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	f, ok := b.features[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Size returns the number of indexed features
func (b *Boundaries) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.tree.Size()
}

// LoadBoundaries reads a GeoJSON FeatureCollection from an http(s) URL or a
// local file path.
func LoadBoundaries(ctx context.Context, source string, client *http.Client) (*Boundaries, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build boundaries request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch boundaries: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch boundaries: status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open boundaries file: %w", err)
		}
		r = f
	}
	defer r.Close()

	features, err := ParseGeoJSON(r)
	if err != nil {
		return nil, err
	}
	return NewBoundaries(features)
}
