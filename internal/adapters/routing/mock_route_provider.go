package routing

import (
	"context"
	"errors"

	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
)

// MockRouteProvider returns a canned result, an error, or runs a custom
// function. Used by planner and handler tests.
type MockRouteProvider struct {
	Result ports.OptimizedRoute
	Err    error
	Fn     func(ctx context.Context, points []ports.RoutePoint) (ports.OptimizedRoute, error)

	Calls int
}

func (p *MockRouteProvider) OptimizeRoute(ctx context.Context, points []ports.RoutePoint) (ports.OptimizedRoute, error) {
	p.Calls++
	if p.Fn != nil {
		return p.Fn(ctx, points)
	}
	if p.Err != nil {
		return ports.OptimizedRoute{}, p.Err
	}
	if len(p.Result.Points) == 0 {
		return ports.OptimizedRoute{}, errors.New("mock route provider: no result configured")
	}
	return p.Result, nil
}
