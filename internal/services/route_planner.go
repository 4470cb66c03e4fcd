package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
	"github.com/nmtamm/IntelligentTourPlanner/internal/geo"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// CurrentLocationName labels the synthetic anchor point supplied when the
// traveler's position prefixes the optimization input. It is never persisted.
const CurrentLocationName = "Current Location"

// ErrSuperseded reports that a newer optimization request for the same day
// was issued while this one was in flight. The stale result is discarded and
// the trip is returned unchanged.
var ErrSuperseded = errors.New("route optimization superseded by a newer request")

// NearestNeighborOrder produces a visiting order using a greedy
// nearest-neighbor walk over great-circle distance.
//
// The walk starts from points[0] and repeatedly selects the closest remaining
// point; ties break in list order (first seen wins). Two or fewer points keep
// their input order since reordering cannot help.
func NearestNeighborOrder(points []domain.Destination) []domain.Destination {
	if len(points) <= 2 {
		out := make([]domain.Destination, len(points))
		copy(out, points)
		return out
	}

	ordered := make([]domain.Destination, 0, len(points))
	ordered = append(ordered, points[0])

	remaining := make([]domain.Destination, len(points)-1)
	copy(remaining, points[1:])

	for len(remaining) > 0 {
		current := ordered[len(ordered)-1]

		best := 0
		bestDist := geo.HaversineKm(current.Latitude, current.Longitude, remaining[0].Latitude, remaining[0].Longitude)
		for i := 1; i < len(remaining); i++ {
			d := geo.HaversineKm(current.Latitude, current.Longitude, remaining[i].Latitude, remaining[i].Longitude)
			if d < bestDist {
				best = i
				bestDist = d
			}
		}

		ordered = append(ordered, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return ordered
}

// RoutePlanner computes optimized visiting orders for a day's destinations.
//
// A remote RouteProvider supplies the full result (order, metrics, geometry,
// turn instructions); without one the planner falls back to the local
// nearest-neighbor heuristic, which yields an order but no metrics.
//
// Optimization requests for the same day supersede each other: each request
// takes a monotonically increasing token and only the holder of the latest
// token may apply its response. The planner is safe for concurrent use.
type RoutePlanner struct {
	Provider ports.RouteProvider

	mu     sync.Mutex
	tokens map[string]uint64
}

func NewRoutePlanner(provider ports.RouteProvider) *RoutePlanner {
	return &RoutePlanner{
		Provider: provider,
		tokens:   make(map[string]uint64),
	}
}

func (p *RoutePlanner) begin(dayID string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[dayID]++
	return p.tokens[dayID]
}

func (p *RoutePlanner) isCurrent(dayID string, token uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokens[dayID] == token
}

// OptimizeDayLocal orders a day's destinations with the local heuristic and
// stores the result on the day. No route metrics are produced.
func (p *RoutePlanner) OptimizeDayLocal(trip domain.Trip, dayID string) (domain.Trip, error) {
	day, ok := trip.Day(dayID)
	if !ok {
		return trip, fmt.Errorf("optimize day: no day with id %q", dayID)
	}
	if len(day.Destinations) < 2 {
		return trip, domain.NewValidationError(domain.CodeInsufficientDestinations,
			"route optimization needs at least two destinations")
	}

	day = day.WithRoute(domain.RouteResult{
		Route: NearestNeighborOrder(day.Destinations),
	})
	return trip.WithDay(day), nil
}

// OptimizeDay requests an externally optimized route for the day, optionally
// anchored at the traveler's current location, and stores the result.
//
// On any remote failure the day's prior optimized route is preserved
// untouched and the unchanged trip is returned alongside the error. A
// response that arrives after a newer request for the same day was issued is
// discarded with ErrSuperseded.
func (p *RoutePlanner) OptimizeDay(ctx context.Context, trip domain.Trip, dayID string, current *domain.Coordinates) (domain.Trip, error) {
	if p.Provider == nil {
		return p.OptimizeDayLocal(trip, dayID)
	}

	day, ok := trip.Day(dayID)
	if !ok {
		return trip, fmt.Errorf("optimize day: no day with id %q", dayID)
	}

	need := 2
	if current != nil {
		need = 1
	}
	if len(day.Destinations) < need {
		return trip, domain.NewValidationError(domain.CodeInsufficientDestinations,
			"route optimization needs at least two destinations, or one plus a current location")
	}

	token := p.begin(dayID)

	points := make([]ports.RoutePoint, 0, len(day.Destinations)+1)
	if current != nil {
		points = append(points, ports.RoutePoint{
			Name:   CurrentLocationName,
			Lat:    current.Lat,
			Lon:    current.Lon,
			Anchor: true,
		})
	}
	for _, dest := range day.Destinations {
		points = append(points, ports.RoutePoint{
			Name: dest.Name,
			Lat:  dest.Latitude,
			Lon:  dest.Longitude,
		})
	}

	res, err := p.Provider.OptimizeRoute(ctx, points)
	if err != nil {
		return trip, &domain.OptimizationError{Cause: err}
	}

	if !p.isCurrent(dayID, token) {
		return trip, ErrSuperseded
	}

	route, err := matchRoute(res.Points, day.Destinations)
	if err != nil {
		return trip, &domain.OptimizationError{Cause: err}
	}

	if err := checkSegments(len(route), res); err != nil {
		return trip, &domain.OptimizationError{Cause: err}
	}

	day = day.WithRoute(domain.RouteResult{
		Route:             route,
		DistanceKm:        res.DistanceKm,
		DurationMin:       res.DurationMin,
		Geometry:          res.Geometry,
		Instructions:      res.Instructions,
		SegmentGeometries: res.SegmentGeometries,
	})
	return trip.WithDay(day), nil
}

// matchRoute correlates the provider's ordered points back to the day's
// destinations so the stored route keeps the persisted identities. Matching
// is by name first, then by closest coordinates; every destination must be
// consumed exactly once or the response is malformed.
func matchRoute(points []ports.RoutePoint, dests []domain.Destination) ([]domain.Destination, error) {
	if len(points) != len(dests) {
		return nil, fmt.Errorf("optimized route has %d points, want %d", len(points), len(dests))
	}

	used := make([]bool, len(dests))
	route := make([]domain.Destination, 0, len(points))

	for _, pt := range points {
		idx := -1
		for i, dest := range dests {
			if !used[i] && dest.Name == pt.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			bestDist := 0.0
			for i, dest := range dests {
				if used[i] {
					continue
				}
				d := geo.HaversineKm(pt.Lat, pt.Lon, dest.Latitude, dest.Longitude)
				if idx < 0 || d < bestDist {
					idx = i
					bestDist = d
				}
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("optimized route point %q matches no destination", pt.Name)
		}

		used[idx] = true
		route = append(route, dests[idx])
	}

	return route, nil
}

// checkSegments validates that the per-segment arrays are parallel to the
// visiting order: segment i connects route[i] to route[i+1].
func checkSegments(routeLen int, res ports.OptimizedRoute) error {
	want := routeLen - 1
	if want < 0 {
		want = 0
	}

	if len(res.Instructions) != 0 && len(res.Instructions) != want {
		return fmt.Errorf("instructions cover %d segments, want %d", len(res.Instructions), want)
	}
	if len(res.SegmentGeometries) != 0 && len(res.SegmentGeometries) != want {
		return fmt.Errorf("segment geometries cover %d segments, want %d", len(res.SegmentGeometries), want)
	}
	return nil
}
