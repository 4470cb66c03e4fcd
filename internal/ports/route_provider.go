package ports

import "context"

// RoutePoint is one input point for route optimization. The first point may
// be a synthetic current-location anchor that is not a persisted Destination.
type RoutePoint struct {
	Name   string
	Lat    float64
	Lon    float64
	Anchor bool
}

// OptimizedRoute is the normalized response of a route optimization service:
// a visiting order over the input points plus route metrics. Anchor points
// are already stripped, so segment i connects Points[i] to Points[i+1].
type OptimizedRoute struct {
	Points            []RoutePoint
	DistanceKm        float64
	DurationMin       float64
	Geometry          string
	Instructions      [][]string
	SegmentGeometries []string
}

// Contract for computing an optimized visiting order over a day's
// destinations through an external routing service.
type RouteProvider interface {
	// OptimizeRoute returns the optimal visiting order for the given points.
	// Implementations must normalize provider-specific field naming and never
	// return a partially valid result.
	OptimizeRoute(ctx context.Context, points []RoutePoint) (OptimizedRoute, error)
}
