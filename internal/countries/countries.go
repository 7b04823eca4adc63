// Package countries looks up country metadata (capital, region, population)
// from the REST Countries service.
package countries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

var (
	// ErrEmptyName is returned when no country name is given
	ErrEmptyName = errors.New("country name is required")
	// ErrNotFound is returned when the provider knows no such country
	ErrNotFound = errors.New("country not found")
)

// Info is the metadata shown for a hovered country
type Info struct {
	Name       string    `json:"name"`
	Capital    string    `json:"capital,omitempty"`
	Region     string    `json:"region,omitempty"`
	Population int64     `json:"population"`
	Flag       string    `json:"flag,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	Languages  []string  `json:"languages,omitempty"`
	LatLng     []float64 `json:"latlng,omitempty"`
}

// restCountry mirrors the subset of the v3.1 payload we read
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital    []string                   `json:"capital"`
	Region     string                     `json:"region"`
	Population int64                      `json:"population"`
	Flags      map[string]string          `json:"flags"`
	Currencies map[string]json.RawMessage `json:"currencies"`
	Languages  map[string]string          `json:"languages"`
	LatLng     []float64                  `json:"latlng"`
}

// Client queries REST Countries
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL (for example
// https://restcountries.com/v3.1). A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Lookup returns metadata for the country with exactly this name
func (c *Client) Lookup(ctx context.Context, name string) (*Info, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	target := fmt.Sprintf("%s/name/%s?fullText=true", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("countries: failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("countries: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("countries: unexpected status %d", resp.StatusCode)
	}

	var payload []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("countries: failed to decode response: %w", err)
	}
	if len(payload) == 0 {
		return nil, ErrNotFound
	}

	return toInfo(payload[0]), nil
}

func toInfo(rc restCountry) *Info {
	info := &Info{
		Name:       rc.Name.Common,
		Region:     rc.Region,
		Population: rc.Population,
		Flag:       rc.Flags["svg"],
		LatLng:     rc.LatLng,
	}
	if info.Region == "" {
		info.Region = "Unknown"
	}
	if len(rc.Capital) > 0 {
		info.Capital = rc.Capital[0]
	}

	// map order is random; pick the alphabetically first code for stable output
	codes := make([]string, 0, len(rc.Currencies))
	for code := range rc.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	if len(codes) > 0 {
		info.Currency = codes[0]
	}

	for _, lang := range rc.Languages {
		info.Languages = append(info.Languages, lang)
	}
	sort.Strings(info.Languages)

	return info
}
