package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nmtamm/IntelligentTourPlanner/internal/platform/obs"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// Cache is the persistent query cache consulted before calling Nominatim.
type Cache interface {
	Get(ctx context.Context, query string) (ports.GeocodeResult, bool, error)
	Put(ctx context.Context, query string, result ports.GeocodeResult) error
}

// NominatimGeocoder implements Geocoder against the OSM Nominatim API.
//
// It coordinates:
//   - Query normalization
//   - Persistent geocode caching
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use. Nominatim's usage policy requires
// an identifying User-Agent on every request.
type NominatimGeocoder struct {
	session   *http.Client
	baseURL   string
	userAgent string
	cache     Cache
}

func NewNominatimGeocoder(baseURL, userAgent string, cache Cache) (*NominatimGeocoder, error) {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if userAgent == "" {
		return nil, errors.New("nominatim geocoder: user agent is empty")
	}

	return &NominatimGeocoder{
		session:   &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		userAgent: userAgent,
		cache:     cache,
	}, nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Forward resolves a free-text query to a single best-match location.
func (g *NominatimGeocoder) Forward(ctx context.Context, query string) (_ ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "nominatim.Forward")(&err)

	norm := normalize(query)
	if norm == "" {
		return ports.GeocodeResult{}, errors.New("forward geocode: query must not be empty")
	}

	if g.cache != nil {
		hit, ok, err := g.cache.Get(ctx, norm)
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else if ok {
			return hit, nil
		}
	}

	q := url.Values{}
	q.Set("q", norm)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	endpoint := g.baseURL + "/search?" + q.Encode()

	var decoded []nominatimPlace
	if err := g.getJSON(ctx, endpoint, &decoded); err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("forward geocode %q: %w", norm, err)
	}
	if len(decoded) == 0 {
		return ports.GeocodeResult{}, fmt.Errorf("no geocode results for %q", norm)
	}

	result, err := toResult(decoded[0])
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("forward geocode %q: %w", norm, err)
	}

	if g.cache != nil {
		if putErr := g.cache.Put(ctx, norm, result); putErr != nil {
			log.Printf("geocode cache write failed: %v", putErr)
		}
	}

	return result, nil
}

// Reverse resolves coordinates to the nearest known location. Reverse lookups
// are not cached; coordinate keys rarely repeat exactly.
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (_ ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "nominatim.Reverse")(&err)

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "jsonv2")
	endpoint := g.baseURL + "/reverse?" + q.Encode()

	var decoded nominatimPlace
	if err := g.getJSON(ctx, endpoint, &decoded); err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("reverse geocode (%v, %v): %w", lat, lon, err)
	}
	if decoded.Lat == "" || decoded.Lon == "" {
		return ports.GeocodeResult{}, fmt.Errorf("no reverse geocode result for (%v, %v)", lat, lon)
	}

	result, err := toResult(decoded)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("reverse geocode (%v, %v): %w", lat, lon, err)
	}

	return result, nil
}

func toResult(p nominatimPlace) (ports.GeocodeResult, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}

	name := p.Name
	if name == "" {
		name = p.DisplayName
	}

	return ports.GeocodeResult{
		Lat:     lat,
		Lon:     lon,
		Name:    name,
		Address: p.DisplayName,
	}, nil
}

// getJSON issues a GET and decodes the body, retrying transient failures.
func (g *NominatimGeocoder) getJSON(ctx context.Context, endpoint string, out any) error {
	const maxAttempts = 3
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		retryable, err := g.getJSONOnce(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable || attempt == maxAttempts {
			return lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return lastErr
}

func (g *NominatimGeocoder) getJSONOnce(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == 429 {
		b, _ := io.ReadAll(resp.Body)
		return true, fmt.Errorf("nominatim status %d: %s", resp.StatusCode, string(b))
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("nominatim status %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode nominatim response: %w", err)
	}

	return false, nil
}
