// Package app wires configuration into the explorer shared by the command
// line, the terminal UI and the web front end.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"travelsnap/internal/backend"
	"travelsnap/internal/config"
	"travelsnap/internal/consul"
	"travelsnap/internal/countries"
	"travelsnap/internal/explorer"
	"travelsnap/internal/geo"
	"travelsnap/internal/session"
)

// App holds the wired components
type App struct {
	Config   *config.Config
	Store    session.Store
	Sessions session.Manager
	Backend  *backend.Client
	Explorer *explorer.Explorer
	Consul   *consul.Client

	resolver   backend.Resolver
	countries  *countries.Client
	boundaries *boundaryHolder
	log        *slog.Logger
}

// boundaryHolder is shared by every explorer so that those created before
// the dataset finished loading see it once it arrives
type boundaryHolder struct {
	b atomic.Pointer[geo.Boundaries]
}

func (h *boundaryHolder) FeatureAt(p geo.Point) (*geo.Feature, error) {
	b := h.b.Load()
	if b == nil {
		return nil, explorer.ErrNoBoundaries
	}
	return b.FeatureAt(p)
}

// New builds the session manager, the backend client and the explorer from
// cfg. Boundaries are not loaded here; see LoadBoundaries.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg, boundaries: &boundaryHolder{}, log: log}

	store, err := NewSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.Sessions = session.NewManager(store)

	a.resolver = backend.StaticURL(cfg.BackendURL)
	if cfg.BackendService != "" || cfg.ConsulRegister {
		a.Consul, err = consul.NewClientWithToken(cfg.ConsulAddr, cfg.ConsulToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create consul client: %w", err)
		}
	}
	if cfg.BackendService != "" {
		a.resolver = consul.NewResolver(a.Consul, cfg.BackendService)
		log.Debug("Resolving backend through Consul", "service", cfg.BackendService)
	}

	if cfg.CountriesURL != "" {
		a.countries = countries.NewClient(cfg.CountriesURL, cfg.RequestTimeout)
	}

	a.Backend = backend.NewClient(a.resolver, a.Sessions, cfg.RequestTimeout, log)
	a.Explorer = a.newExplorer(a.Sessions, a.Backend)

	return a, nil
}

// NewExplorer builds an explorer with its own backend client reading the
// token from sessions. The web front end makes one per browser.
func (a *App) NewExplorer(sessions session.Manager) *explorer.Explorer {
	return a.newExplorer(sessions, backend.NewClient(a.resolver, sessions, a.Config.RequestTimeout, a.log))
}

func (a *App) newExplorer(sessions session.Manager, client *backend.Client) *explorer.Explorer {
	ex := explorer.New(sessions, client, a.log)
	if a.countries != nil {
		ex.SetCountries(a.countries)
	}
	ex.SetBoundaries(a.boundaries)
	return ex
}

// NewSessionStore returns the token store selected by cfg
func NewSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.SessionStore {
	case config.SessionStoreFile:
		return session.NewFileStore(cfg.SessionFile), nil
	case config.SessionStoreRedis:
		return session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

// LoadBoundaries reads the configured boundary source and hands the index
// to every explorer. It does nothing when no source is configured.
func (a *App) LoadBoundaries(ctx context.Context) error {
	if a.Config.BoundariesSource == "" {
		return nil
	}

	start := time.Now()
	b, err := geo.LoadBoundaries(ctx, a.Config.BoundariesSource, &http.Client{Timeout: a.Config.RequestTimeout})
	if err != nil {
		return err
	}
	a.boundaries.b.Store(b)

	a.log.Info("Country boundaries loaded",
		"source", a.Config.BoundariesSource,
		"countries", b.Size(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
