// Package explorer is the client interaction controller. It binds user
// triggers (login, search, boundary clicks, favorite buttons) to backend calls
// and keeps the view state the surfaces render: the map view, the weather
// line and the current attraction cards.
package explorer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"travelsnap/internal/backend"
	"travelsnap/internal/countries"
	"travelsnap/internal/geo"
	"travelsnap/internal/render"
	"travelsnap/internal/session"
)

var (
	// ErrEmptyInput is returned when a required text input is blank
	ErrEmptyInput = errors.New("empty input")
	// ErrStaleAction is returned when an action belongs to cards that are no
	// longer rendered
	ErrStaleAction = errors.New("stale action")
	// ErrUnknownAction is returned for an action kind no handler is bound to
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoBoundaries is returned by boundary interactions when no dataset is loaded
	ErrNoBoundaries = errors.New("boundaries not loaded")
)

// View is a navigation target
type View string

const (
	ViewLogin     View = "login"
	ViewRegister  View = "register"
	ViewMap       View = "map"
	ViewFavorites View = "favorites"
)

// Phase is the state of the search flow
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSearching Phase = "searching"
	PhaseRendering Phase = "rendering"
)

// UI is the surface a call reports to. Alert shows a notice, Navigate moves
// to another view.
type UI interface {
	Alert(msg string)
	Navigate(v View)
}

// Backend is the travel backend as the explorer uses it
type Backend interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.TokenResponse, error)
	Register(ctx context.Context, creds backend.Credentials) error
	Geocode(ctx context.Context, query string) (*backend.Location, error)
	Weather(ctx context.Context, lat, lon float64) (*backend.Weather, error)
	Attractions(ctx context.Context, lat, lon float64) ([]backend.Attraction, error)
	Favorites(ctx context.Context) ([]backend.Favorite, error)
	AddFavorite(ctx context.Context, attractionID int) (*backend.Favorite, error)
	RemoveFavorite(ctx context.Context, favoriteID int) error
}

// CountryLookup fetches metadata for a country name
type CountryLookup interface {
	Lookup(ctx context.Context, name string) (*countries.Info, error)
}

// BoundaryIndex finds the boundary feature under a point. An index that is
// still loading answers ErrNoBoundaries.
type BoundaryIndex interface {
	FeatureAt(p geo.Point) (*geo.Feature, error)
}

// State is a snapshot of what the surfaces render
type State struct {
	Phase       Phase             `json:"phase"`
	View        geo.MapView       `json:"view"`
	Location    *backend.Location `json:"location,omitempty"`
	Weather     *backend.Weather  `json:"weather,omitempty"`
	WeatherText string            `json:"weather_text,omitempty"`
	Cards       []render.Card     `json:"cards"`
	Generation  int               `json:"generation"`

	Favorites           []render.Card `json:"favorites,omitempty"`
	FavoritesGeneration int           `json:"favorites_generation"`

	Hovered string          `json:"hovered,omitempty"`
	Country *countries.Info `json:"country,omitempty"`
}

// Explorer is the controller shared by the CLI, the TUI and the web front end.
// Overlapping triggers are not coordinated: each completes and the last one
// to write the state wins.
type Explorer struct {
	sessions session.Manager
	api      Backend
	log      *slog.Logger

	mu         sync.Mutex
	state      State
	countries  CountryLookup
	boundaries BoundaryIndex
}

// New creates an explorer over the given session and backend
func New(sessions session.Manager, api Backend, log *slog.Logger) *Explorer {
	if log == nil {
		log = slog.Default()
	}
	return &Explorer{
		sessions: sessions,
		api:      api,
		log:      log,
		state: State{
			Phase: PhaseIdle,
			View:  geo.DefaultView(),
			Cards: []render.Card{},
		},
	}
}

// SetCountries enables country metadata on hover
func (e *Explorer) SetCountries(c CountryLookup) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.countries = c
}

// SetBoundaries enables boundary hover and click. It may be called after
// startup once the dataset has loaded.
func (e *Explorer) SetBoundaries(b BoundaryIndex) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.boundaries = b
}

// Snapshot returns a copy of the current state
func (e *Explorer) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	s.Cards = append([]render.Card{}, e.state.Cards...)
	if e.state.Favorites != nil {
		s.Favorites = append([]render.Card{}, e.state.Favorites...)
	}
	if e.state.View.Marker != nil {
		m := *e.state.View.Marker
		s.View.Marker = &m
	}
	return s
}

func (e *Explorer) setPhase(p Phase) {
	e.mu.Lock()
	e.state.Phase = p
	e.mu.Unlock()
}

// fail reports err to the user and returns the flow to idle. The notice is
// the backend's detail when it sent one, fallback otherwise.
func (e *Explorer) fail(ui UI, op string, err error, fallback string) error {
	e.setPhase(PhaseIdle)
	e.log.Warn("Explorer operation failed", "op", op, "error", err)
	ui.Alert(backend.Message(err, fallback))
	return err
}
