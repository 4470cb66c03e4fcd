package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

func TestOptimizeRouteNormalizesFieldNaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/route/optimize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var body []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(body) != 2 {
			t.Errorf("expected 2 points in request, got %d", len(body))
		}

		// Mixed lat/lon and latitude/longitude naming on purpose.
		resp := map[string]any{
			"optimized_route": []map[string]any{
				{"lat": 10.1, "lon": 106.1, "name": "A"},
				{"latitude": 10.2, "longitude": 106.2, "name": "B"},
			},
			"distance_km":        12.5,
			"duration_min":       34.0,
			"geometry":           "abc",
			"instructions":       [][]string{{"Head north"}},
			"segment_geometries": []string{"seg0"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	provider, err := NewRemoteRouteProvider(srv.URL, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := provider.OptimizeRoute(context.Background(), []ports.RoutePoint{
		{Name: "A", Lat: 10.1, Lon: 106.1},
		{Name: "B", Lat: 10.2, Lon: 106.2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got.Points))
	}
	if got.Points[1].Lat != 10.2 || got.Points[1].Lon != 106.2 {
		t.Fatalf("latitude/longitude naming not normalized: %+v", got.Points[1])
	}
	if got.DistanceKm != 12.5 || got.DurationMin != 34.0 {
		t.Fatalf("metrics not decoded: %+v", got)
	}
}

func TestOptimizeRouteStripsLeadingAnchor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"optimized_route": []map[string]any{
				{"lat": 10.0, "lon": 106.0, "name": "Current Location"},
				{"lat": 10.1, "lon": 106.1, "name": "A"},
				{"lat": 10.2, "lon": 106.2, "name": "B"},
			},
			"instructions":       [][]string{{"leave current location"}, {"go to B"}},
			"segment_geometries": []string{"anchor-leg", "a-to-b"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	provider, _ := NewRemoteRouteProvider(srv.URL, "")

	got, err := provider.OptimizeRoute(context.Background(), []ports.RoutePoint{
		{Name: "Current Location", Lat: 10.0, Lon: 106.0, Anchor: true},
		{Name: "A", Lat: 10.1, Lon: 106.1},
		{Name: "B", Lat: 10.2, Lon: 106.2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Points) != 2 || got.Points[0].Name != "A" {
		t.Fatalf("anchor not stripped: %+v", got.Points)
	}
	if len(got.SegmentGeometries) != 1 || got.SegmentGeometries[0] != "a-to-b" {
		t.Fatalf("anchor segment not stripped: %v", got.SegmentGeometries)
	}
	if len(got.Instructions) != 1 || got.Instructions[0][0] != "go to B" {
		t.Fatalf("anchor instructions not stripped: %v", got.Instructions)
	}
}

func TestOptimizeRouteServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "no feasible route"})
	}))
	defer srv.Close()

	provider, _ := NewRemoteRouteProvider(srv.URL, "")

	_, err := provider.OptimizeRoute(context.Background(), []ports.RoutePoint{
		{Name: "A"}, {Name: "B"},
	})
	if err == nil {
		t.Fatalf("expected error for service failure")
	}
}
