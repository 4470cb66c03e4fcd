package ports

import (
	"context"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
)

// TripSummary is the listing projection of a stored trip.
type TripSummary struct {
	TripID   int64
	Name     string
	Currency string
	DayCount int
}

// Port: a boundary for persisting and loading whole Trip plans.
// A save replaces the stored plan wholesale; partial updates go through the
// immutable Trip operations and a subsequent save.
type TripRepository interface {
	// SaveTrip stores the trip and returns its identifier. A tripID of 0
	// creates a new plan; a non-zero tripID replaces the stored one.
	SaveTrip(ctx context.Context, tripID int64, trip domain.Trip) (int64, error)
	// GetTrip loads a stored trip with days, destinations and costs in order.
	GetTrip(ctx context.Context, tripID int64) (domain.Trip, error)
	// ListTrips returns summaries of all stored trips.
	ListTrips(ctx context.Context) ([]TripSummary, error)
	// DeleteTrip removes a stored trip and its whole subtree.
	DeleteTrip(ctx context.Context, tripID int64) error
}

// Port: a boundary for reading the importable places dataset.
type PlaceRepository interface {
	// ListPlaces returns all places available for import.
	ListPlaces(ctx context.Context) ([]domain.Place, error)
}
