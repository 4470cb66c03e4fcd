package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/nmtamm/IntelligentTourPlanner/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func sampleTrip() domain.Trip {
	trip := domain.NewTrip("Vietnam", "USD")
	trip.Members = 2
	trip.StartDate = "2026-09-01"
	trip.EndDate = "2026-09-03"

	day := trip.Days[0]
	day = day.WithDestination(domain.NewDestination("Ben Thanh Market", "District 1", 10.7725, 106.6980))
	day = day.WithDestination(domain.NewDestination("War Remnants Museum", "District 3", 10.7794, 106.6920))

	day = day.WithRoute(domain.RouteResult{
		Route:             []domain.Destination{day.Destinations[1], day.Destinations[0]},
		DistanceKm:        1.4,
		DurationMin:       6,
		Geometry:          "abc123",
		Instructions:      [][]string{{"Head south", "Arrive"}},
		SegmentGeometries: []string{"seg0"},
	})

	trip = trip.WithDay(day)
	trip = trip.AddDay()
	return trip
}

func TestSaveAndGetTripRoundTrip(t *testing.T) {
	repo := NewSqliteTripRepository(newTestDB(t))
	ctx := context.Background()

	trip := sampleTrip()
	id, err := repo.SaveTrip(ctx, 0, trip)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == 0 {
		t.Fatalf("save returned zero id")
	}

	got, err := repo.GetTrip(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Name != "Vietnam" || got.Currency != "USD" || got.Members != 2 {
		t.Fatalf("trip header mismatch: %+v", got)
	}
	if len(got.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(got.Days))
	}
	if got.Days[0].DayNumber != 1 || got.Days[1].DayNumber != 2 {
		t.Fatalf("day numbering lost: %d, %d", got.Days[0].DayNumber, got.Days[1].DayNumber)
	}

	day := got.Days[0]
	if len(day.Destinations) != 2 {
		t.Fatalf("got %d destinations, want 2", len(day.Destinations))
	}
	if day.Destinations[0].Name != "Ben Thanh Market" {
		t.Fatalf("destination order lost: %q first", day.Destinations[0].Name)
	}
	if len(day.Destinations[0].Costs) != 1 {
		t.Fatalf("cost items lost: %d", len(day.Destinations[0].Costs))
	}

	if len(day.OptimizedRoute) != 2 || day.OptimizedRoute[0].Name != "War Remnants Museum" {
		t.Fatalf("optimized order lost: %+v", day.OptimizedRoute)
	}
	if day.RouteDistanceKm != 1.4 || day.RouteGeometry != "abc123" {
		t.Fatalf("route metrics lost: %+v", day)
	}
	if len(day.RouteInstructions) != 1 || day.RouteInstructions[0][0] != "Head south" {
		t.Fatalf("instructions lost: %+v", day.RouteInstructions)
	}
}

func TestSaveReplacesStoredTrip(t *testing.T) {
	repo := NewSqliteTripRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.SaveTrip(ctx, 0, sampleTrip())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	smaller := domain.NewTrip("Vietnam (short)", "VND")
	if _, err := repo.SaveTrip(ctx, id, smaller); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := repo.GetTrip(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Vietnam (short)" || got.Currency != "VND" {
		t.Fatalf("resave did not replace header: %+v", got)
	}
	if len(got.Days) != 1 || len(got.Days[0].Destinations) != 0 {
		t.Fatalf("resave did not replace subtree: %+v", got.Days)
	}
}

func TestListAndDeleteTrips(t *testing.T) {
	repo := NewSqliteTripRepository(newTestDB(t))
	ctx := context.Background()

	first, _ := repo.SaveTrip(ctx, 0, sampleTrip())
	second, _ := repo.SaveTrip(ctx, 0, domain.NewTrip("Japan", "JPY"))

	summaries, err := repo.ListTrips(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].TripID != first || summaries[0].DayCount != 2 {
		t.Fatalf("unexpected first summary: %+v", summaries[0])
	}

	if err := repo.DeleteTrip(ctx, first); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTrip(ctx, first); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("get deleted: %v", err)
	}

	summaries, _ = repo.ListTrips(ctx)
	if len(summaries) != 1 || summaries[0].TripID != second {
		t.Fatalf("unexpected summaries after delete: %+v", summaries)
	}

	if err := repo.DeleteTrip(ctx, first); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}
