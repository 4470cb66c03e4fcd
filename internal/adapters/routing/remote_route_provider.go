package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nmtamm/IntelligentTourPlanner/internal/platform/obs"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// RemoteRouteProvider implements RouteProvider against the route
// optimization service's HTTP API.
//
// It coordinates:
//   - Field-naming normalization (lat/lon vs latitude/longitude)
//   - Synthetic current-location anchor stripping
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type RemoteRouteProvider struct {
	session *http.Client
	baseURL string
	apiKey  string
}

func NewRemoteRouteProvider(baseURL, apiKey string) (*RemoteRouteProvider, error) {
	if baseURL == "" {
		return nil, errors.New("route service base URL is empty")
	}

	return &RemoteRouteProvider{
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}, nil
}

type optimizePoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// The service may report coordinates as lat/lon or latitude/longitude
// depending on version; pointers distinguish absent from zero.
type optimizedPoint struct {
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Name      string   `json:"name"`
}

type optimizeResponse struct {
	OptimizedRoute    []optimizedPoint `json:"optimized_route"`
	DistanceKm        float64          `json:"distance_km"`
	DurationMin       float64          `json:"duration_min"`
	Geometry          string           `json:"geometry"`
	Instructions      [][]string       `json:"instructions"`
	SegmentGeometries []string         `json:"segment_geometries"`
	Error             string           `json:"error"`
}

// OptimizeRoute posts the ordered points to the optimization service and
// normalizes its response. A leading anchor point is stripped from the
// result together with its leading segment, so the returned arrays are
// indexed by persisted-destination segments only.
func (p *RemoteRouteProvider) OptimizeRoute(
	ctx context.Context,
	points []ports.RoutePoint,
) (_ ports.OptimizedRoute, err error) {
	defer obs.Time(ctx, "routing.OptimizeRoute")(&err)

	if len(points) < 2 {
		return ports.OptimizedRoute{}, errors.New("optimize route: need at least two points")
	}

	body := make([]optimizePoint, 0, len(points))
	for _, pt := range points {
		body = append(body, optimizePoint{Lat: pt.Lat, Lon: pt.Lon, Name: pt.Name})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ports.OptimizedRoute{}, fmt.Errorf("marshal optimize request: %w", err)
	}

	endpoint := p.baseURL + "/api/route/optimize"
	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.OptimizedRoute{}, fmt.Errorf("optimize request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded optimizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.OptimizedRoute{}, fmt.Errorf("decode optimize response: %w", err)
	}
	if decoded.Error != "" {
		return ports.OptimizedRoute{}, fmt.Errorf("optimize service: %s", decoded.Error)
	}
	if len(decoded.OptimizedRoute) == 0 {
		return ports.OptimizedRoute{}, errors.New("optimize service returned no route")
	}

	out := ports.OptimizedRoute{
		DistanceKm:        decoded.DistanceKm,
		DurationMin:       decoded.DurationMin,
		Geometry:          decoded.Geometry,
		Instructions:      decoded.Instructions,
		SegmentGeometries: decoded.SegmentGeometries,
	}

	out.Points = make([]ports.RoutePoint, 0, len(decoded.OptimizedRoute))
	for i, pt := range decoded.OptimizedRoute {
		norm, err := normalizePoint(pt)
		if err != nil {
			return ports.OptimizedRoute{}, fmt.Errorf("optimized route entry %d: %w", i, err)
		}
		out.Points = append(out.Points, norm)
	}

	anchor := anchorName(points)
	if anchor != "" {
		out, err = stripAnchor(out, anchor)
		if err != nil {
			return ports.OptimizedRoute{}, err
		}
	}

	return out, nil
}

func normalizePoint(pt optimizedPoint) (ports.RoutePoint, error) {
	lat := pt.Lat
	if lat == nil {
		lat = pt.Latitude
	}
	lon := pt.Lon
	if lon == nil {
		lon = pt.Longitude
	}
	if lat == nil || lon == nil {
		return ports.RoutePoint{}, fmt.Errorf("point %q is missing coordinates", pt.Name)
	}

	return ports.RoutePoint{Name: pt.Name, Lat: *lat, Lon: *lon}, nil
}

func anchorName(points []ports.RoutePoint) string {
	for _, pt := range points {
		if pt.Anchor {
			return pt.Name
		}
	}
	return ""
}

// stripAnchor drops the synthetic current-location point from the visiting
// order. The anchor is not a persisted destination; the optimizer keeps it
// as the fixed start, so it must lead the response.
func stripAnchor(route ports.OptimizedRoute, anchor string) (ports.OptimizedRoute, error) {
	idx := -1
	for i, pt := range route.Points {
		if pt.Name == anchor {
			idx = i
			break
		}
	}
	if idx < 0 {
		return route, nil
	}
	if idx != 0 {
		return ports.OptimizedRoute{}, fmt.Errorf("anchor %q not at route start (position %d)", anchor, idx)
	}

	route.Points = route.Points[1:]
	if len(route.Instructions) > 0 {
		route.Instructions = route.Instructions[1:]
	}
	if len(route.SegmentGeometries) > 0 {
		route.SegmentGeometries = route.SegmentGeometries[1:]
	}
	return route, nil
}
