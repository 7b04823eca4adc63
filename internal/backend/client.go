// Package backend is the client for the travel backend REST API: auth,
// geocoding, weather, attractions and favorites.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travelsnap/internal/session"
)

// Resolver yields the backend base URL for a request
type Resolver interface {
	BaseURL(ctx context.Context) (string, error)
}

// StaticURL is a Resolver for a fixed base URL
type StaticURL string

// BaseURL returns the fixed URL
func (u StaticURL) BaseURL(ctx context.Context) (string, error) {
	return string(u), nil
}

// Client calls the travel backend. Authenticated calls read the bearer token
// from the session on every request.
type Client struct {
	resolver Resolver
	sessions session.Manager
	http     *http.Client
	log      *slog.Logger
}

// NewClient creates a backend client. A zero timeout leaves requests unbounded.
func NewClient(resolver Resolver, sessions session.Manager, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		resolver: resolver,
		sessions: sessions,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Login exchanges credentials for a bearer token. It does not store the token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, false, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login response carries no access_token")
	}
	return &resp, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, creds, false, nil)
}

// Geocode resolves free text to a location
func (c *Client) Geocode(ctx context.Context, query string) (*Location, error) {
	var loc Location
	params := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, "/location/", params, nil, false, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Weather fetches the current weather at lat, lon
func (c *Client) Weather(ctx context.Context, lat, lon float64) (*Weather, error) {
	var w Weather
	if err := c.do(ctx, http.MethodGet, "/weather", coords(lat, lon), nil, false, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Attractions lists attractions near lat, lon in backend order
func (c *Client) Attractions(ctx context.Context, lat, lon float64) ([]Attraction, error) {
	var list []Attraction
	if err := c.do(ctx, http.MethodGet, "/attractions", coords(lat, lon), nil, false, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Favorites lists the user's favorites
func (c *Client) Favorites(ctx context.Context) ([]Favorite, error) {
	var list favoriteList
	if err := c.do(ctx, http.MethodGet, "/favorites/", nil, nil, true, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddFavorite bookmarks an attraction
func (c *Client) AddFavorite(ctx context.Context, attractionID int) (*Favorite, error) {
	var fav Favorite
	body := AddFavoriteRequest{AttractionID: attractionID}
	if err := c.do(ctx, http.MethodPost, "/favorites/", nil, body, true, &fav); err != nil {
		return nil, err
	}
	if fav.AttractionID == 0 {
		fav.AttractionID = attractionID
	}
	return &fav, nil
}

// RemoveFavorite deletes a favorite by id
func (c *Client) RemoveFavorite(ctx context.Context, favoriteID int) error {
	return c.do(ctx, http.MethodDelete, "/favorites/"+strconv.Itoa(favoriteID), nil, nil, true, nil)
}

func coords(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, auth bool, out any) error {
	op := method + " " + path

	var token string
	if auth {
		t, err := c.sessions.Token(ctx)
		if errors.Is(err, session.ErrNoToken) {
			return ErrMissingToken
		}
		if err != nil {
			return err
		}
		token = t
	}

	base, err := c.resolver.BaseURL(ctx)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	target := strings.TrimRight(base, "/") + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Backend request failed", "op", op, "error", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	c.log.Debug("Backend request completed",
		"op", op,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
