package geo

import (
	"math"
	"strconv"
	"strings"
)

// Zoom levels used by the explorer
const (
	DefaultZoom = 5
	SearchZoom  = 10
	CountryZoom = 5
	MaxTileZoom = 19
)

// Point is a WGS84 coordinate pair
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Marker is a labelled pin on the map
type Marker struct {
	Point Point  `json:"point"`
	Label string `json:"label"`
}

// MapView is the current view state of the map
type MapView struct {
	Center      Point   `json:"center"`
	Zoom        int     `json:"zoom"`
	Marker      *Marker `json:"marker,omitempty"`
	Highlighted string  `json:"highlighted,omitempty"`
}

// DefaultView is the view shown before any search
func DefaultView() MapView {
	return MapView{
		Center: Point{Lat: 20.5937, Lon: 78.9629},
		Zoom:   DefaultZoom,
	}
}

// Tile returns the slippy-map tile coordinates containing p at zoom.
func Tile(p Point, zoom int) (x, y int) {
	if zoom < 0 {
		zoom = 0
	}
	if zoom > MaxTileZoom {
		zoom = MaxTileZoom
	}
	n := math.Exp2(float64(zoom))

	// Web Mercator is undefined at the poles
	lat := math.Max(-85.05112878, math.Min(85.05112878, p.Lat))
	latRad := lat * math.Pi / 180

	x = int(math.Floor((p.Lon + 180) / 360 * n))
	y = int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	maxIndex := int(n) - 1
	x = clamp(x, 0, maxIndex)
	y = clamp(y, 0, maxIndex)
	return x, y
}

// TileURL expands a tile template such as
// https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png for the view's center.
func TileURL(template string, view MapView) string {
	x, y := Tile(view.Center, view.Zoom)
	r := strings.NewReplacer(
		"{s}", "a",
		"{z}", strconv.Itoa(clamp(view.Zoom, 0, MaxTileZoom)),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	)
	return r.Replace(template)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
