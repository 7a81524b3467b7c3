package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gitlab.com/tinyland/lab/hearth/pkg/cache"
)

const (
	zippopotamBase = "https://api.zippopotam.us"
	geocodeTTL     = 30 * 24 * time.Hour
)

// Location is a resolved postal code. Name is "Unknown location" when the
// lookup fails, so widgets can render a placeholder without special cases.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Known     bool    `json:"known"`
}

// UnknownLocation is returned when a postal code cannot be resolved.
var UnknownLocation = Location{Name: "Unknown location"}

// Geocoder resolves postal codes to coordinates via the Zippopotam API,
// with successful lookups cached on disk. Postal codes change rarely so
// cache entries live for 30 days.
type Geocoder struct {
	client  *http.Client
	cache   *cache.Store
	baseURL string
}

// NewGeocoder builds a geocoder backed by the given cache store. A nil
// store disables caching.
func NewGeocoder(store *cache.Store) *Geocoder {
	return &Geocoder{
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   store,
		baseURL: zippopotamBase,
	}
}

// lookupURL builds the request URL for a country/postal pair.
func (g *Geocoder) lookupURL(country, postal string) string {
	return fmt.Sprintf("%s/%s/%s", g.baseURL, url.PathEscape(country), url.PathEscape(postal))
}

// Resolve returns coordinates for a postal code. It returns
// UnknownLocation with a nil error when the code is simply not found;
// network and decode failures return an error.
func (g *Geocoder) Resolve(ctx context.Context, country, postal string) (Location, error) {
	if postal == "" {
		return UnknownLocation, nil
	}
	if country == "" {
		country = "us"
	}

	cacheKey := "geocode:" + country + ":" + postal
	if g.cache != nil {
		if loc, ok := cache.GetTyped[Location](g.cache, cacheKey); ok {
			return loc, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.lookupURL(country, postal), nil)
	if err != nil {
		return UnknownLocation, fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return UnknownLocation, fmt.Errorf("geocode: fetch %s/%s: %w", country, postal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return UnknownLocation, nil
	}
	if resp.StatusCode != http.StatusOK {
		return UnknownLocation, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return UnknownLocation, fmt.Errorf("geocode: read response: %w", err)
	}

	loc, err := parseZippopotam(body)
	if err != nil {
		return UnknownLocation, err
	}

	if g.cache != nil {
		_ = cache.PutTypedWithTTL(g.cache, cacheKey, loc, geocodeTTL)
	}
	return loc, nil
}

// zippopotamResponse mirrors the subset of the API payload we use.
// Coordinates arrive as strings.
type zippopotamResponse struct {
	Places []struct {
		PlaceName string `json:"place name"`
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"places"`
}

func parseZippopotam(body []byte) (Location, error) {
	var zr zippopotamResponse
	if err := json.Unmarshal(body, &zr); err != nil {
		return UnknownLocation, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(zr.Places) == 0 {
		return UnknownLocation, nil
	}

	p := zr.Places[0]
	lat, err := strconv.ParseFloat(p.Latitude, 64)
	if err != nil {
		return UnknownLocation, fmt.Errorf("geocode: bad latitude %q: %w", p.Latitude, err)
	}
	lon, err := strconv.ParseFloat(p.Longitude, 64)
	if err != nil {
		return UnknownLocation, fmt.Errorf("geocode: bad longitude %q: %w", p.Longitude, err)
	}

	return Location{Name: p.PlaceName, Latitude: lat, Longitude: lon, Known: true}, nil
}
