package explorer

import (
	"context"
	"errors"
	"strings"

	"travelsnap/internal/backend"
	"travelsnap/internal/countries"
	"travelsnap/internal/geo"
	"travelsnap/internal/render"
)

// Notices shown by the search flow
const (
	MsgEmptyQuery         = "Enter a location to search."
	MsgLocationFailed     = "Failed to fetch location"
	MsgWeatherFailed      = "Failed to fetch weather"
	MsgAttractionsFailed  = "Failed to fetch attractions"
	MsgBoundariesNotReady = "Country boundaries are not loaded yet."
)

// Search resolves free text to a location and runs the weather and
// attractions chain for it.
func (e *Explorer) Search(ctx context.Context, ui UI, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		ui.Alert(MsgEmptyQuery)
		return ErrEmptyInput
	}

	e.mu.Lock()
	e.state.View.Highlighted = ""
	e.mu.Unlock()

	return e.explore(ctx, ui, query, geo.SearchZoom)
}

// ClickBoundary recenters on the country under (lat, lon) and runs the chain
// with the country's name as the query. A click outside every boundary does
// nothing and returns geo.ErrNoFeature.
func (e *Explorer) ClickBoundary(ctx context.Context, ui UI, lat, lon float64) error {
	bounds := e.boundaryIndex()
	if bounds == nil {
		ui.Alert(MsgBoundariesNotReady)
		return ErrNoBoundaries
	}

	feature, err := bounds.FeatureAt(geo.Point{Lat: lat, Lon: lon})
	if errors.Is(err, ErrNoBoundaries) {
		ui.Alert(MsgBoundariesNotReady)
		return err
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.state.View.Center = feature.Center()
	e.state.View.Zoom = geo.CountryZoom
	e.state.View.Highlighted = feature.Name
	e.mu.Unlock()

	return e.explore(ctx, ui, feature.Name, geo.CountryZoom)
}

// Hover highlights the country under (lat, lon) and fetches its metadata.
// It is independent of the search chain and shows no notices.
func (e *Explorer) Hover(ctx context.Context, lat, lon float64) (*countries.Info, error) {
	e.mu.Lock()
	bounds, lookup := e.boundaries, e.countries
	e.mu.Unlock()
	if bounds == nil {
		return nil, ErrNoBoundaries
	}

	feature, err := bounds.FeatureAt(geo.Point{Lat: lat, Lon: lon})
	if errors.Is(err, ErrNoBoundaries) {
		return nil, err
	}
	if err != nil {
		e.mu.Lock()
		e.state.View.Highlighted = ""
		e.state.Hovered = ""
		e.state.Country = nil
		e.mu.Unlock()
		return nil, err
	}

	e.mu.Lock()
	if e.state.Hovered != feature.Name {
		e.state.Country = nil
	}
	e.state.View.Highlighted = feature.Name
	e.state.Hovered = feature.Name
	e.mu.Unlock()

	if lookup == nil {
		return &countries.Info{Name: feature.Name}, nil
	}

	info, err := lookup.Lookup(ctx, feature.Name)
	if err != nil {
		e.log.Debug("Country lookup failed", "country", feature.Name, "error", err)
		return nil, err
	}

	e.mu.Lock()
	if e.state.Hovered == feature.Name {
		e.state.Country = info
	}
	e.mu.Unlock()
	return info, nil
}

// RefreshWeather fetches the weather for the current location again
func (e *Explorer) RefreshWeather(ctx context.Context, ui UI) error {
	e.mu.Lock()
	loc := e.state.Location
	e.mu.Unlock()

	w, err := e.fetchWeather(ctx, loc)
	if err != nil {
		return e.fail(ui, "weather", err, MsgWeatherFailed)
	}

	e.mu.Lock()
	e.state.Weather = w
	e.state.WeatherText = render.WeatherText(w)
	e.mu.Unlock()
	return nil
}

// explore runs geocode, recenter, weather and attractions in order. A failed
// step aborts the rest; what earlier steps rendered stays visible.
func (e *Explorer) explore(ctx context.Context, ui UI, query string, zoom int) error {
	e.setPhase(PhaseSearching)

	loc, err := e.api.Geocode(ctx, query)
	if err != nil {
		return e.fail(ui, "geocode", err, MsgLocationFailed)
	}

	center := geo.Point{Lat: loc.Latitude, Lon: loc.Longitude}
	e.mu.Lock()
	e.state.Location = loc
	e.state.View.Center = center
	e.state.View.Zoom = zoom
	e.state.View.Marker = &geo.Marker{Point: center, Label: loc.DisplayName}
	e.mu.Unlock()

	weather, err := e.fetchWeather(ctx, loc)
	if err != nil {
		return e.fail(ui, "weather", err, MsgWeatherFailed)
	}

	e.mu.Lock()
	e.state.Weather = weather
	e.state.WeatherText = render.WeatherText(weather)
	e.mu.Unlock()

	list, err := e.fetchAttractions(ctx, loc)
	if err != nil {
		return e.fail(ui, "attractions", err, MsgAttractionsFailed)
	}

	e.setPhase(PhaseRendering)
	cards := render.Cards(list)

	e.mu.Lock()
	e.state.Cards = cards
	e.state.Generation++
	e.state.Phase = PhaseIdle
	e.mu.Unlock()

	e.log.Debug("Search completed", "query", query, "attractions", len(list))
	return nil
}

func (e *Explorer) fetchWeather(ctx context.Context, loc *backend.Location) (*backend.Weather, error) {
	if loc == nil {
		return nil, backend.ErrNoLocation
	}
	return e.api.Weather(ctx, loc.Latitude, loc.Longitude)
}

func (e *Explorer) fetchAttractions(ctx context.Context, loc *backend.Location) ([]backend.Attraction, error) {
	if loc == nil {
		return nil, backend.ErrNoLocation
	}
	return e.api.Attractions(ctx, loc.Latitude, loc.Longitude)
}

func (e *Explorer) boundaryIndex() BoundaryIndex {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.boundaries
}

// IsNoFeature reports whether err means no boundary was under the point
func IsNoFeature(err error) bool {
	return errors.Is(err, geo.ErrNoFeature)
}
