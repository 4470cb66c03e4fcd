package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]ports.GeocodeResult
}

func (c *memoryCache) Get(ctx context.Context, query string) (ports.GeocodeResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[query]
	return r, ok, nil
}

func (c *memoryCache) Put(ctx context.Context, query string, result ports.GeocodeResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]ports.GeocodeResult)
	}
	c.entries[query] = result
	return nil
}

func TestForwardResolvesAndCaches(t *testing.T) {
	var searchCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "tour-planner-test" {
			t.Errorf("missing user agent, got %q", r.Header.Get("User-Agent"))
		}
		if got := r.URL.Query().Get("q"); got != "Ben Thanh Market" {
			t.Errorf("query not normalized: %q", got)
		}
		searchCalls++
		w.Write([]byte(`[{"lat":"10.7725","lon":"106.6980","name":"Ben Thanh Market","display_name":"Ben Thanh Market, District 1, Ho Chi Minh City"}]`))
	}))
	defer srv.Close()

	c := &memoryCache{}
	g, err := NewNominatimGeocoder(srv.URL, "tour-planner-test", c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := g.Forward(context.Background(), "  Ben Thanh   Market ")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got.Lat != 10.7725 || got.Lon != 106.6980 {
		t.Fatalf("got (%v, %v)", got.Lat, got.Lon)
	}
	if got.Name != "Ben Thanh Market" {
		t.Fatalf("got name %q", got.Name)
	}

	// Repeating the lookup must be served from the cache.
	if _, err := g.Forward(context.Background(), "Ben Thanh Market"); err != nil {
		t.Fatalf("cached forward: %v", err)
	}
	if searchCalls != 1 {
		t.Fatalf("search called %d times, want 1", searchCalls)
	}
}

func TestForwardNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g, _ := NewNominatimGeocoder(srv.URL, "tour-planner-test", nil)

	if _, err := g.Forward(context.Background(), "nowhere at all"); err == nil {
		t.Fatalf("expected error for empty result set")
	}
}

func TestReverseResolvesCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"lat":"21.0285","lon":"105.8542","name":"Hoan Kiem Lake","display_name":"Hoan Kiem Lake, Hanoi, Vietnam"}`))
	}))
	defer srv.Close()

	g, _ := NewNominatimGeocoder(srv.URL, "tour-planner-test", nil)

	got, err := g.Reverse(context.Background(), 21.0285, 105.8542)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if got.Address != "Hoan Kiem Lake, Hanoi, Vietnam" {
		t.Fatalf("got address %q", got.Address)
	}
}
